package utils

import (
	"math"
	"testing"
)

func TestSumArr(t *testing.T) {
	if got := SumArr([]float64{1, 2, 3.5}); got != 6.5 {
		t.Error("SumArr =", got)
	}
	if got := SumArr(nil); got != 0 {
		t.Error("SumArr(nil) =", got)
	}
}

func TestAbsSumArr(t *testing.T) {
	if got := AbsSumArr([]float64{-1.5, 0.5}); got != 2 {
		t.Error("AbsSumArr =", got)
	}
}

func TestMulArrs(t *testing.T) {
	got := MulArrs([]float64{2, 3}, []float64{4, 5})
	if got[0] != 8 || got[1] != 15 {
		t.Error("MulArrs =", got)
	}
}

func TestCalculateDifference(t *testing.T) {
	if got := CalculateDifference(110, 100); math.Abs(got-0.10) > 1e-12 {
		t.Error("CalculateDifference =", got)
	}
	// Zero base falls back to 1 instead of dividing by zero.
	if got := CalculateDifference(2, 0); got != 1 {
		t.Error("CalculateDifference(2, 0) =", got)
	}
}

func TestToFixed(t *testing.T) {
	if got := ToFixed(1.23456, 3); got != 1.235 {
		t.Error("ToFixed =", got)
	}
	if got := ToFixed(-1.23456, 2); got != -1.23 {
		t.Error("ToFixed negative =", got)
	}
}

func TestStringInSlice(t *testing.T) {
	if !StringInSlice("b", []string{"a", "b"}) || StringInSlice("c", []string{"a", "b"}) {
		t.Error("StringInSlice misbehaving")
	}
}
