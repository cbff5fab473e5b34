package models

import "time"

// WeightSchedule is the sparse sequence of target weight vectors chosen by
// a backtest run, one row per rebalancing date. Every row is either a
// freshly optimized vector or an exact copy of the previous row; drift
// renormalization happens only in the return accountant.
type WeightSchedule struct {
	Assets  []string
	Dates   []time.Time
	Weights [][]float64
}

func NewWeightSchedule(assets []string) *WeightSchedule {
	return &WeightSchedule{Assets: assets}
}

// Append records the target weights applied on date. The slice is copied so
// later mutation by the caller cannot corrupt the schedule.
func (w *WeightSchedule) Append(date time.Time, weights []float64) {
	w.Dates = append(w.Dates, date)
	w.Weights = append(w.Weights, append([]float64(nil), weights...))
}

func (w *WeightSchedule) NumRows() int {
	return len(w.Dates)
}
