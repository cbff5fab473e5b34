package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// Execution lags supported by the return accountant. Same-day applies a
// weight decided on date d starting with d's next return row (a 1-row
// shift that avoids look-ahead); next-day adds one more row.
const (
	LagSameDay = "same-day"
	LagNextDay = "next-day"
)

// BacktestOptions control one rolling backtest run.
type BacktestOptions struct {
	RollingWindow   int     `json:"rolling_window"`
	OptimizeEvery   int     `json:"optimize_every"`
	RebalanceEvery  int     `json:"rebalance_every"`
	Shortselling    bool    `json:"shortselling"`
	Leverage        float64 `json:"leverage"`
	ReturnPortfolio bool    `json:"return_portfolio"`
	ExecutionLag    string  `json:"execution_lag"`
}

// DefaultBacktestOptions returns the standard daily setup: a one-year
// lookback reoptimized monthly and rebalanced daily, long-only, no
// leverage.
func DefaultBacktestOptions() BacktestOptions {
	return BacktestOptions{
		RollingWindow:  252,
		OptimizeEvery:  20,
		RebalanceEvery: 1,
		Leverage:       1.0,
		ExecutionLag:   LagSameDay,
	}
}

// WithDefaults fills unset fields so a zero-valued options struct behaves
// like DefaultBacktestOptions.
func (o BacktestOptions) WithDefaults() BacktestOptions {
	def := DefaultBacktestOptions()
	if o.RollingWindow == 0 {
		o.RollingWindow = def.RollingWindow
	}
	if o.OptimizeEvery == 0 {
		o.OptimizeEvery = def.OptimizeEvery
	}
	if o.RebalanceEvery == 0 {
		o.RebalanceEvery = def.RebalanceEvery
	}
	if o.Leverage == 0 {
		o.Leverage = def.Leverage
	}
	if o.ExecutionLag == "" {
		o.ExecutionLag = def.ExecutionLag
	}
	return o
}

// GraderConfig is the file-driven setup for a grading run.
type GraderConfig struct {
	DataDir       string          `json:"data_dir"`
	SubmissionDir string          `json:"submission_dir"`
	ExportDir     string          `json:"export_dir"`
	LogLevel      string          `json:"log_level"`
	Options       BacktestOptions `json:"options"`
	Weights       CriteriaWeights `json:"weights"`
}

// LoadConfig loads a grader config from a JSON file.
func LoadConfig(fileName string) (GraderConfig, error) {
	config := GraderConfig{
		Options: DefaultBacktestOptions(),
		Weights: CriteriaWeights{Sharpe: 7, MaxDrawdown: 1, CPUTime: 1, FailureRatio: 1},
	}
	file, err := os.ReadFile(fileName)
	if err != nil {
		return config, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := json.Unmarshal(file, &config); err != nil {
		return config, fmt.Errorf("%w: %s: %v", ErrConfig, fileName, err)
	}
	return config, nil
}
