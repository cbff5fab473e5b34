package models

import (
	"errors"
	"math"
	"time"
)

// ErrConfig marks invalid scheduling parameters, mismatched shapes or bad
// ranking weights. Configuration errors abort the call before any
// simulation work and are never retried.
var ErrConfig = errors.New("configuration error")

// ErrData marks missing values or index mismatches in price/return data.
var ErrData = errors.New("data error")

// Unavailable is the sentinel carried by numeric result fields that were
// never computed, e.g. because the run failed. Use IsUnavailable to test
// for it; direct comparison does not work for NaN.
func Unavailable() float64 {
	return math.NaN()
}

func IsUnavailable(x float64) bool {
	return math.IsNaN(x)
}

// Performance is the fixed vector of statistics computed from a return
// series. MaxDrawdown is a positive magnitude.
type Performance struct {
	Sharpe        float64
	MaxDrawdown   float64
	AnnReturn     float64
	AnnVolatility float64
	Sortino       float64
	VaR95         float64
}

func UnavailablePerformance() Performance {
	return Performance{
		Sharpe:        Unavailable(),
		MaxDrawdown:   Unavailable(),
		AnnReturn:     Unavailable(),
		AnnVolatility: Unavailable(),
		Sortino:       Unavailable(),
		VaR95:         Unavailable(),
	}
}

// Vector returns the statistics in a fixed order, matching PerformanceFields.
func (p Performance) Vector() []float64 {
	return []float64{p.Sharpe, p.MaxDrawdown, p.AnnReturn, p.AnnVolatility, p.Sortino, p.VaR95}
}

func PerformanceFromVector(v []float64) Performance {
	return Performance{
		Sharpe:        v[0],
		MaxDrawdown:   v[1],
		AnnReturn:     v[2],
		AnnVolatility: v[3],
		Sortino:       v[4],
		VaR95:         v[5],
	}
}

// PerformanceFields names the entries of Performance.Vector, in order.
func PerformanceFields() []string {
	return []string{"sharpe", "max_drawdown", "ann_return", "ann_volatility", "sortino", "var_95"}
}

// BacktestResult is the record of one (allocation function, dataset) run.
// It is created once and never mutated. Failure == true implies every
// numeric field except CPUTime holds the Unavailable sentinel; CPUTime is
// only meaningful on success.
type BacktestResult struct {
	ID          string // unique backtest id
	Dataset     string
	Returns     *ReturnSeries
	Wealth      []float64
	Performance Performance
	CPUTime     time.Duration
	Failure     bool
	Messages    []string
	Portfolio   *WeightSchedule // only retained when ReturnPortfolio was requested
}

// BatchResult aggregates one allocation function's runs across datasets.
type BatchResult struct {
	Runs           []BacktestResult // one per dataset, in input order
	Summary        Performance      // elementwise median over successful datasets
	CPUTimeAverage float64          // mean elapsed seconds over successful datasets
	FailureRatio   float64          // (#failed datasets) / (#datasets)
}

// PerformanceMatrix returns one Performance column per dataset in input
// order, failed datasets included (as Unavailable vectors).
func (b *BatchResult) PerformanceMatrix() []Performance {
	cols := make([]Performance, len(b.Runs))
	for i, run := range b.Runs {
		cols[i] = run.Performance
	}
	return cols
}

// SubmissionResult pairs a submission's external identity with its batch
// aggregation, for ranking.
type SubmissionResult struct {
	Name  string
	ID    string
	Batch BatchResult
}

// CriteriaWeights weighs the four leaderboard ranking criteria. Weights
// must be non-negative and not all zero; they are normalized by their sum.
type CriteriaWeights struct {
	Sharpe       float64 `json:"sharpe"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	CPUTime      float64 `json:"cpu_time"`
	FailureRatio float64 `json:"failure_ratio"`
}

// LeaderboardEntry carries one submission's percentile scores. Entries
// with a 100% failure ratio are invalid: they hold no scores and sort
// after every valid entry.
type LeaderboardEntry struct {
	Name          string
	ID            string
	Valid         bool
	SharpeScore   float64
	DrawdownScore float64
	CPUTimeScore  float64
	FailureScore  float64
	FinalScore    float64
}

type Leaderboard struct {
	Entries []LeaderboardEntry
}
