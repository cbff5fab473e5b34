package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/tantralabs/arbiter/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

func getSecret(secretName string) string {
	svc := secretsmanager.New(session.New(), aws.NewConfig().WithRegion("us-west-1"))
	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}

	result, err := svc.GetSecretValue(input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			fmt.Println(aerr.Code(), aerr.Error())
		} else {
			fmt.Println(err.Error())
		}
		return "error"
	}

	// Depending on whether the secret is a string or binary, one of these
	// fields will be populated.
	if result.SecretString != nil {
		return *result.SecretString
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(result.SecretBinary)))
	n, err := base64.StdEncoding.Decode(decoded, result.SecretBinary)
	if err != nil {
		fmt.Println("Base64 Decode Error:", err)
		return "error"
	}
	return string(decoded[:n])
}

// LoadSecret Load a secret file containing database credentials from a
// local json file or from an amazon secrets file
func LoadSecret(file string, cloud bool) models.Secret {
	var secret models.Secret
	if cloud {
		secretFile := getSecret(file)
		json.Unmarshal([]byte(secretFile), &secret)
		return secret
	}
	fmt.Printf("Loading secret from file: %v\n", file)
	secretFile, err := os.ReadFile(file)
	if err != nil {
		log.Println(err.Error())
	}
	json.Unmarshal(secretFile, &secret)
	return secret
}

func CalculateDifference(x float64, y float64) float64 {
	//Get percentage difference between 2 numbers
	if y == 0 {
		y = 1
	}
	return (x - y) / y
}

// SubArrs Subtract a slice from another slice of the same length
func SubArrs(a []float64, b []float64) []float64 {
	n := make([]float64, len(a))
	for i := range a {
		n[i] = a[i] - b[i]
	}
	return n
}

// MulArrs Multiply a slice by another slice of the same length
func MulArrs(a []float64, b []float64) []float64 {
	n := make([]float64, len(a))
	for i := range a {
		n[i] = a[i] * b[i]
	}
	return n
}

// MulArr Multiply a slice by a float
func MulArr(arr []float64, multiple float64) []float64 {
	a := make([]float64, len(arr))
	for i := range arr {
		a[i] = arr[i] * multiple
	}
	return a
}

// DivArr Divide all elements of a slice by a float
func DivArr(arr []float64, divisor float64) []float64 {
	a := make([]float64, len(arr))
	for i := range arr {
		a[i] = arr[i] / divisor
	}
	return a
}

// SumArr Get the sum of all elements in a slice
func SumArr(arr []float64) float64 {
	sum := 0.0
	for i := range arr {
		sum = sum + arr[i]
	}
	return sum
}

// AbsSumArr Get the L1 norm of a slice
func AbsSumArr(arr []float64) float64 {
	sum := 0.0
	for i := range arr {
		sum = sum + math.Abs(arr[i])
	}
	return sum
}

// CreateKeyValuePairs make a string interface human readable
func CreateKeyValuePairs(m map[string]interface{}, ignoreLowerCase bool, oldBytes ...*bytes.Buffer) string {
	var b *bytes.Buffer
	if len(oldBytes) > 0 {
		b = oldBytes[0]
	} else {
		b = new(bytes.Buffer)
	}
	fmt.Fprint(b, "\n{\n")
	for key, value := range m {
		firstLetter := string(key[0])
		upperCaseFirstLetter := strings.ToUpper(firstLetter)
		if !ignoreLowerCase || upperCaseFirstLetter == firstLetter {
			rv := reflect.ValueOf(value)
			if rv.Kind() == reflect.Struct {
				fmt.Fprint(b, " ", key, ": ")
				CreateKeyValuePairs(structs.Map(value), ignoreLowerCase, b)
			} else {
				fmt.Fprint(b, " ", key, ": ", value, ",\n")
			}
		}
	}
	fmt.Fprint(b, "}\n")
	return b.String()
}

func round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func ToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(round(num*output)) / output
}

// StringInSlice check if a string is in a list of strings
func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}
