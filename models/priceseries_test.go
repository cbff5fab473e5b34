package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func sampleSeries() *PriceSeries {
	series := &PriceSeries{Name: "sample", Assets: []string{"AAA", "BBB"}}
	prices := [][]float64{{100, 50}, {110, 45}, {121, 54}, {121, 54}}
	for i, row := range prices {
		series.Dates = append(series.Dates, time.Date(2020, 1, 1+i, 0, 0, 0, 0, time.UTC))
		series.Close = append(series.Close, row)
	}
	return series
}

func TestPriceSeriesValidate(t *testing.T) {
	if err := sampleSeries().Validate(); err != nil {
		t.Fatal(err)
	}

	dup := sampleSeries()
	dup.Assets = []string{"AAA", "AAA"}
	if err := dup.Validate(); !errors.Is(err, ErrData) {
		t.Error("duplicate labels should be a data error, got", err)
	}

	gap := sampleSeries()
	gap.Close[2][1] = math.NaN()
	if err := gap.Validate(); !errors.Is(err, ErrData) {
		t.Error("NaN price should be a data error, got", err)
	}

	unordered := sampleSeries()
	unordered.Dates[2] = unordered.Dates[1]
	if err := unordered.Validate(); !errors.Is(err, ErrData) {
		t.Error("repeated date should be a data error, got", err)
	}
}

func TestPriceSeriesWindow(t *testing.T) {
	window := sampleSeries().Window(2, 2)
	if window.NumRows() != 2 {
		t.Fatal("window rows =", window.NumRows())
	}
	if window.Close[0][0] != 110 || window.Close[1][0] != 121 {
		t.Error("window must end at the given row inclusive")
	}
}

func TestPriceSeriesLinearReturns(t *testing.T) {
	r := sampleSeries().LinearReturns(1)
	if len(r.Returns) != 3 {
		t.Fatal("expected 3 return rows, got", len(r.Returns))
	}
	if math.Abs(r.Returns[0][0]-0.10) > 1e-12 {
		t.Error("first return =", r.Returns[0][0], ", want 0.10")
	}
	if math.Abs(r.Returns[0][1]-(-0.10)) > 1e-12 {
		t.Error("first return of BBB =", r.Returns[0][1], ", want -0.10")
	}
	if r.Returns[2][0] != 0 {
		t.Error("flat price must yield zero return")
	}
}

func TestReturnSeriesWealth(t *testing.T) {
	series := &ReturnSeries{Returns: []float64{0.10, -0.10}}
	wealth := series.Wealth()
	if math.Abs(wealth[0]-1.10) > 1e-12 || math.Abs(wealth[1]-0.99) > 1e-12 {
		t.Error("wealth =", wealth)
	}
}

func TestWeightScheduleAppendCopies(t *testing.T) {
	schedule := NewWeightSchedule([]string{"AAA"})
	weights := []float64{1}
	schedule.Append(time.Now(), weights)
	weights[0] = 0
	if schedule.Weights[0][0] != 1 {
		t.Error("Append must copy the weight vector")
	}
}

func TestUnavailableSentinel(t *testing.T) {
	if !IsUnavailable(Unavailable()) {
		t.Error("sentinel must satisfy IsUnavailable")
	}
	if IsUnavailable(0) {
		t.Error("zero is a real value, not the sentinel")
	}
	perf := UnavailablePerformance()
	for i, v := range perf.Vector() {
		if !IsUnavailable(v) {
			t.Error("field", PerformanceFields()[i], "not unavailable")
		}
	}
}
