package arbiter

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tantralabs/arbiter/logger"
	"github.com/tantralabs/arbiter/metrics"
	"github.com/tantralabs/arbiter/models"
)

// weightTolerance is the numerical slack allowed when validating the
// no-shortselling and leverage constraints.
const weightTolerance = 1e-6

// RunBacktest drives one allocation function over one price series. It
// schedules optimize/rebalance events over the rebalance grid, invokes the
// allocation function on the trailing window at every optimization date,
// validates the portfolio constraints and hands the completed weight
// schedule to the return accountant.
//
// A returned error is a configuration or data error and means no
// simulation ran. Allocation and constraint failures are not errors: they
// terminate the run and are reported inside the result, so a failing
// candidate never crashes its caller.
func RunBacktest(fn models.AllocationFunc, prices *models.PriceSeries, opts models.BacktestOptions) (models.BacktestResult, error) {
	opts = opts.WithDefaults()
	result := models.BacktestResult{
		ID:          uuid.New().String(),
		Dataset:     prices.Name,
		Performance: models.UnavailablePerformance(),
	}

	if err := prices.Validate(); err != nil {
		return result, err
	}
	if err := validateOptions(prices, opts); err != nil {
		return result, err
	}

	logger.Debugf("Running backtest %v on %v: %d rows, %d assets\n", result.ID, prices.Name, prices.NumRows(), prices.NumAssets())
	start := time.Now()

	schedule := models.NewWeightSchedule(prices.Assets)
	optimizeStride := opts.OptimizeEvery / opts.RebalanceEvery
	var current []float64

	for step, i := 0, opts.RollingWindow-1; i < prices.NumRows(); step, i = step+1, i+opts.RebalanceEvery {
		if step%optimizeStride == 0 {
			window := prices.Window(i, opts.RollingWindow)
			weights, err := callAllocation(fn, window)
			if err != nil {
				result.Failure = true
				result.Messages = append(result.Messages, fmt.Sprintf("%v at rebalance date %v", err, prices.Dates[i].Format("2006-01-02")))
				break
			}
			current = weights
		}
		// On non-optimization dates the previous target is a literal hold;
		// drift accounting happens in the return accountant, not here.

		if msg := checkConstraints(current, prices.Assets, opts); msg != "" {
			result.Failure = true
			result.Messages = append(result.Messages, fmt.Sprintf("%v at rebalance date %v", msg, prices.Dates[i].Format("2006-01-02")))
			break
		}
		schedule.Append(prices.Dates[i], current)
	}
	elapsed := time.Since(start)

	if opts.ReturnPortfolio {
		result.Portfolio = schedule
	}
	if result.Failure {
		logger.Debugf("Backtest %v failed: %v\n", result.ID, result.Messages)
		return result, nil
	}

	returnMatrix := prices.LinearReturns(opts.RollingWindow - 1)
	series, err := AccumulateReturns(returnMatrix, schedule, opts.ExecutionLag)
	if err != nil {
		return result, err
	}

	result.Returns = series
	result.Wealth = series.Wealth()
	result.Performance = metrics.Compute(series.Returns)
	result.CPUTime = elapsed
	log.Println("Backtest", prices.Name, "finished in", elapsed)
	return result, nil
}

func validateOptions(prices *models.PriceSeries, opts models.BacktestOptions) error {
	if opts.RollingWindow < 2 {
		return fmt.Errorf("%w: rolling window must be at least 2, got %d", models.ErrConfig, opts.RollingWindow)
	}
	if opts.RollingWindow >= prices.NumRows() {
		return fmt.Errorf("%w: rolling window %d does not leave any out-of-sample rows in %q (%d rows)",
			models.ErrConfig, opts.RollingWindow, prices.Name, prices.NumRows())
	}
	if opts.OptimizeEvery < 1 || opts.RebalanceEvery < 1 {
		return fmt.Errorf("%w: cadences must be positive, got optimize_every=%d rebalance_every=%d",
			models.ErrConfig, opts.OptimizeEvery, opts.RebalanceEvery)
	}
	// Every optimization date must coincide with a rebalance date.
	if opts.OptimizeEvery%opts.RebalanceEvery != 0 {
		return fmt.Errorf("%w: optimize_every=%d is not a multiple of rebalance_every=%d",
			models.ErrConfig, opts.OptimizeEvery, opts.RebalanceEvery)
	}
	if opts.Leverage <= 0 {
		return fmt.Errorf("%w: leverage must be positive, got %v", models.ErrConfig, opts.Leverage)
	}
	if opts.ExecutionLag != models.LagSameDay && opts.ExecutionLag != models.LagNextDay {
		return fmt.Errorf("%w: unknown execution lag %q", models.ErrConfig, opts.ExecutionLag)
	}
	return nil
}

// callAllocation invokes the untrusted allocation function through a
// recover boundary. A panic, a returned error or numerically invalid
// output all come back as a plain error, so faults never unwind across
// unit-of-work boundaries.
func callAllocation(fn models.AllocationFunc, window *models.PriceSeries) (weights []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			weights = nil
			err = fmt.Errorf("allocation function panicked: %v", r)
		}
	}()
	weights, err = fn(window)
	if err != nil {
		return nil, fmt.Errorf("allocation function failed: %v", err)
	}
	if len(weights) != window.NumAssets() {
		return nil, fmt.Errorf("allocation function returned %d weights for %d assets", len(weights), window.NumAssets())
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("allocation function returned invalid weight %v for asset %v", w, window.Assets[i])
		}
	}
	return weights, nil
}

func checkConstraints(weights []float64, assets []string, opts models.BacktestOptions) string {
	if !opts.Shortselling {
		for i, w := range weights {
			if w < -weightTolerance {
				return fmt.Sprintf("shortselling constraint violated: weight %.6f on asset %v", w, assets[i])
			}
		}
	}
	l1 := 0.0
	for _, w := range weights {
		l1 += math.Abs(w)
	}
	if l1 > opts.Leverage+weightTolerance {
		return fmt.Sprintf("leverage constraint violated: ||w||_1 = %.6f exceeds %.2f", l1, opts.Leverage)
	}
	return ""
}
