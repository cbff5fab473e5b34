package logger

import (
	"fmt"
)

var displayLevel string = "info"
var level string = displayLevel

func GetLevel() string {
	return level
}

func SetDisplayLevel(lvl string) {
	displayLevel = lvl
	Infof("Set logger display level to %v\n", displayLevel)
}

func SetLevel(lvl string) {
	if lvl == "" {
		level = "debug"
	} else {
		level = lvl
	}
	Debugf("Set logger level to %v\n", level)
}

func Log(args ...interface{}) {
	if level == "error" {
		Error(args...)
	} else if level == "debug" {
		Debug(args...)
	} else {
		Info(args...)
	}
}

func Debug(args ...interface{}) {
	if level == "debug" {
		fmt.Println(args...)
	}
}

func Info(args ...interface{}) {
	if level != "error" {
		fmt.Println(args...)
	}
}

func Error(args ...interface{}) {
	fmt.Println(args...)
}

func Logf(template string, args ...interface{}) {
	if level == "error" {
		Errorf(template, args...)
	} else if level == "debug" {
		Debugf(template, args...)
	} else {
		Infof(template, args...)
	}
}

func Debugf(template string, args ...interface{}) {
	if level == "debug" {
		fmt.Printf(template, args...)
	}
}

func Infof(template string, args ...interface{}) {
	if level != "error" {
		fmt.Printf(template, args...)
	}
}

func Errorf(template string, args ...interface{}) {
	fmt.Printf(template, args...)
}
