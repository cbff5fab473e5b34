package arbiter

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tantralabs/arbiter/models"
)

// RankSubmissions produces the weighted multi-criterion leaderboard over a
// cohort of batch results. The four criteria are median sharpe ratio,
// median max drawdown, average cpu time and failure ratio; each is scored
// as a rank percentile within the cohort and combined with the normalized
// weights. Submissions that failed on every dataset carry no scores and
// sort last, in input order.
func RankSubmissions(results []models.SubmissionResult, weights models.CriteriaWeights) (*models.Leaderboard, error) {
	norm, err := normalizeWeights(weights)
	if err != nil {
		return nil, err
	}

	var valid []int
	var invalid []int
	for i, res := range results {
		if res.Batch.FailureRatio < 1 && !models.IsUnavailable(res.Batch.Summary.Sharpe) {
			valid = append(valid, i)
		} else {
			invalid = append(invalid, i)
		}
	}

	// Higher sharpe is better; drawdown, cpu time and failure ratio are
	// negated so that higher always means better before the transform.
	sharpe := make([]float64, len(valid))
	drawdown := make([]float64, len(valid))
	cpuTime := make([]float64, len(valid))
	failure := make([]float64, len(valid))
	for k, i := range valid {
		batch := results[i].Batch
		sharpe[k] = batch.Summary.Sharpe
		drawdown[k] = -batch.Summary.MaxDrawdown
		cpuTime[k] = -batch.CPUTimeAverage
		failure[k] = -batch.FailureRatio
	}
	sharpeScore := percentileScores(sharpe)
	drawdownScore := percentileScores(drawdown)
	cpuTimeScore := percentileScores(cpuTime)
	failureScore := percentileScores(failure)

	board := &models.Leaderboard{}
	for k, i := range valid {
		entry := models.LeaderboardEntry{
			Name:          results[i].Name,
			ID:            results[i].ID,
			Valid:         true,
			SharpeScore:   sharpeScore[k],
			DrawdownScore: drawdownScore[k],
			CPUTimeScore:  cpuTimeScore[k],
			FailureScore:  failureScore[k],
		}
		entry.FinalScore = norm.Sharpe*entry.SharpeScore +
			norm.MaxDrawdown*entry.DrawdownScore +
			norm.CPUTime*entry.CPUTimeScore +
			norm.FailureRatio*entry.FailureScore
		board.Entries = append(board.Entries, entry)
	}
	// Stable: ties keep input order.
	sort.SliceStable(board.Entries, func(a, b int) bool {
		return board.Entries[a].FinalScore > board.Entries[b].FinalScore
	})

	for _, i := range invalid {
		board.Entries = append(board.Entries, models.LeaderboardEntry{
			Name:          results[i].Name,
			ID:            results[i].ID,
			SharpeScore:   models.Unavailable(),
			DrawdownScore: models.Unavailable(),
			CPUTimeScore:  models.Unavailable(),
			FailureScore:  models.Unavailable(),
			FinalScore:    models.Unavailable(),
		})
	}
	return board, nil
}

func normalizeWeights(w models.CriteriaWeights) (models.CriteriaWeights, error) {
	if w.Sharpe < 0 || w.MaxDrawdown < 0 || w.CPUTime < 0 || w.FailureRatio < 0 {
		return w, fmt.Errorf("%w: criteria weights must be non-negative", models.ErrConfig)
	}
	sum := w.Sharpe + w.MaxDrawdown + w.CPUTime + w.FailureRatio
	if sum == 0 {
		return w, fmt.Errorf("%w: criteria weights sum to zero", models.ErrConfig)
	}
	w.Sharpe /= sum
	w.MaxDrawdown /= sum
	w.CPUTime /= sum
	w.FailureRatio /= sum
	return w, nil
}

// percentileScores maps each value to its affinely corrected empirical-CDF
// rank on [0,100]: the cohort minimum scores exactly 0 and the maximum
// exactly 100, so scores are comparable across cohorts of different sizes.
// Tied values share a score.
func percentileScores(x []float64) []float64 {
	m := float64(len(x))
	out := make([]float64, len(x))
	if len(x) == 1 {
		// The affine correction is undefined for a cohort of one; a lone
		// entry is trivially the best.
		out[0] = 100
		return out
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	for i, v := range x {
		ecdf := stat.CDF(v, stat.Empirical, sorted, nil)
		out[i] = 100 * (ecdf - 1/m) / (1 - 1/m)
	}
	return out
}
