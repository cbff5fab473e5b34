package arbiter

import (
	"runtime"
	"sort"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"

	"github.com/tantralabs/arbiter/logger"
	"github.com/tantralabs/arbiter/models"
)

// RunBatch evaluates one allocation function against every dataset and
// aggregates the per-dataset results. Datasets are mutually independent:
// each (function, dataset) pair runs as its own unit of work on a bounded
// worker pool, and one dataset's failure never affects a sibling's result.
// A returned error is a configuration error and aborts the whole batch.
func RunBatch(fn models.AllocationFunc, datasets []*models.PriceSeries, opts models.BacktestOptions) (models.BatchResult, error) {
	runs := make([]models.BacktestResult, len(datasets))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range datasets {
		i := i
		g.Go(func() error {
			var unitOpts models.BacktestOptions
			copier.Copy(&unitOpts, &opts)
			res, err := RunBacktest(fn, datasets[i], unitOpts)
			if err != nil {
				return err
			}
			runs[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.BatchResult{}, err
	}
	return aggregateRuns(runs), nil
}

// RunBatchAll evaluates every submission against the shared datasets. All
// (submission, dataset) pairs are dispatched to one worker pool; per-
// submission aggregation happens only after the pool drains, because the
// median summary needs the full successful subset.
func RunBatchAll(subs []models.Submission, datasets []*models.PriceSeries, opts models.BacktestOptions) ([]models.SubmissionResult, error) {
	runs := make([][]models.BacktestResult, len(subs))
	for s := range subs {
		runs[s] = make([]models.BacktestResult, len(datasets))
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for s := range subs {
		s := s
		for i := range datasets {
			i := i
			g.Go(func() error {
				var unitOpts models.BacktestOptions
				copier.Copy(&unitOpts, &opts)
				res, err := RunBacktest(subs[s].Fn, datasets[i], unitOpts)
				if err != nil {
					return err
				}
				runs[s][i] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]models.SubmissionResult, len(subs))
	for s, sub := range subs {
		results[s] = models.SubmissionResult{
			Name:  sub.Name,
			ID:    sub.ID,
			Batch: aggregateRuns(runs[s]),
		}
		logger.Infof("%v: failure ratio %.2f, median sharpe %.3f\n", sub.Name, results[s].Batch.FailureRatio, results[s].Batch.Summary.Sharpe)
	}
	return results, nil
}

func aggregateRuns(runs []models.BacktestResult) models.BatchResult {
	batch := models.BatchResult{
		Runs:           runs,
		Summary:        models.UnavailablePerformance(),
		CPUTimeAverage: models.Unavailable(),
	}

	var success []models.BacktestResult
	for _, run := range runs {
		if run.Failure {
			continue
		}
		success = append(success, run)
	}
	if len(runs) > 0 {
		batch.FailureRatio = float64(len(runs)-len(success)) / float64(len(runs))
	}
	// An empty successful subset gets no numeric summary, same as a 100%
	// failure ratio.
	if len(success) == 0 {
		return batch
	}

	fields := len(models.PerformanceFields())
	medians := make([]float64, fields)
	column := make([]float64, len(success))
	for f := 0; f < fields; f++ {
		for i, run := range success {
			column[i] = run.Performance.Vector()[f]
		}
		medians[f] = median(column)
	}
	batch.Summary = models.PerformanceFromVector(medians)

	total := 0.0
	for _, run := range success {
		total += run.CPUTime.Seconds()
	}
	batch.CPUTimeAverage = total / float64(len(success))
	return batch
}

// median interpolates between the two middle values for even counts.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
