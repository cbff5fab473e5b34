package arbiter

import (
	"errors"
	"math"
	"testing"

	"github.com/tantralabs/arbiter/models"
)

func submissionResult(name string, sharpe, drawdown, cpu, failureRatio float64) models.SubmissionResult {
	summary := models.Performance{Sharpe: sharpe, MaxDrawdown: drawdown}
	if failureRatio == 1 {
		summary = models.UnavailablePerformance()
	}
	return models.SubmissionResult{
		Name: name,
		ID:   name,
		Batch: models.BatchResult{
			Summary:        summary,
			CPUTimeAverage: cpu,
			FailureRatio:   failureRatio,
		},
	}
}

func TestRankSubmissionsPercentileBounds(t *testing.T) {
	results := []models.SubmissionResult{
		submissionResult("worst", 0.5, 0.30, 3, 0),
		submissionResult("mid", 1.0, 0.20, 2, 0),
		submissionResult("best", 2.0, 0.10, 1, 0),
	}
	board, err := RankSubmissions(results, models.CriteriaWeights{Sharpe: 1, MaxDrawdown: 1, CPUTime: 1, FailureRatio: 1})
	if err != nil {
		t.Fatal(err)
	}
	if board.Entries[0].Name != "best" || board.Entries[2].Name != "worst" {
		t.Fatal("unexpected ordering:", board.Entries)
	}
	top := board.Entries[0]
	if top.SharpeScore != 100 || top.DrawdownScore != 100 || top.CPUTimeScore != 100 {
		t.Error("best entry must score exactly 100 per criterion, got", top)
	}
	bottom := board.Entries[2]
	if bottom.SharpeScore != 0 || bottom.DrawdownScore != 0 || bottom.CPUTimeScore != 0 {
		t.Error("worst entry must score exactly 0 per criterion, got", bottom)
	}
	mid := board.Entries[1]
	if mid.SharpeScore != 50 {
		t.Error("middle of three must score 50, got", mid.SharpeScore)
	}
	// Identical failure ratios tie at the top of the criterion.
	if top.FailureScore != bottom.FailureScore {
		t.Error("tied failure ratios must share a score")
	}
}

func TestRankSubmissionsMonotonicity(t *testing.T) {
	base := []models.SubmissionResult{
		submissionResult("a", 1.0, 0.2, 2, 0),
		submissionResult("b", 1.5, 0.2, 2, 0),
		submissionResult("c", 2.0, 0.2, 2, 0),
	}
	weights := models.CriteriaWeights{Sharpe: 7, MaxDrawdown: 1, CPUTime: 1, FailureRatio: 1}
	before, err := RankSubmissions(base, weights)
	if err != nil {
		t.Fatal(err)
	}
	scoreBefore, rankBefore := findEntry(t, before, "b")

	// Raising b's sharpe while everything else stays fixed must not hurt it.
	base[1] = submissionResult("b", 3.0, 0.2, 2, 0)
	after, err := RankSubmissions(base, weights)
	if err != nil {
		t.Fatal(err)
	}
	scoreAfter, rankAfter := findEntry(t, after, "b")
	if scoreAfter < scoreBefore {
		t.Error("final score dropped from", scoreBefore, "to", scoreAfter)
	}
	if rankAfter > rankBefore {
		t.Error("rank worsened from", rankBefore, "to", rankAfter)
	}
}

func TestRankSubmissionsInvalidLast(t *testing.T) {
	results := []models.SubmissionResult{
		submissionResult("deadbeat", 0, 0, 0, 1),
		submissionResult("ok", 1.0, 0.2, 2, 0.5),
		submissionResult("crashed", 0, 0, 0, 1),
	}
	board, err := RankSubmissions(results, models.CriteriaWeights{Sharpe: 1, MaxDrawdown: 1, CPUTime: 1, FailureRatio: 1})
	if err != nil {
		t.Fatal(err)
	}
	if board.Entries[0].Name != "ok" || !board.Entries[0].Valid {
		t.Fatal("the only valid entry must rank first")
	}
	// Invalid entries keep input order and carry no scores.
	if board.Entries[1].Name != "deadbeat" || board.Entries[2].Name != "crashed" {
		t.Error("invalid entries out of input order:", board.Entries)
	}
	for _, e := range board.Entries[1:] {
		if e.Valid || !models.IsUnavailable(e.FinalScore) {
			t.Error("invalid entry carries a score:", e)
		}
	}
	// A lone valid entry is trivially the best on every criterion.
	if board.Entries[0].FinalScore != 100 {
		t.Error("single valid entry must score 100, got", board.Entries[0].FinalScore)
	}
}

func TestRankSubmissionsWeightValidation(t *testing.T) {
	results := []models.SubmissionResult{submissionResult("a", 1, 0.1, 1, 0)}
	if _, err := RankSubmissions(results, models.CriteriaWeights{}); !errors.Is(err, models.ErrConfig) {
		t.Error("zero-sum weights should be a config error, got", err)
	}
	if _, err := RankSubmissions(results, models.CriteriaWeights{Sharpe: -1, MaxDrawdown: 2}); !errors.Is(err, models.ErrConfig) {
		t.Error("negative weights should be a config error, got", err)
	}
}

func TestPercentileScoresTies(t *testing.T) {
	scores := percentileScores([]float64{1, 1, 2, 3})
	if scores[0] != scores[1] {
		t.Error("tied values must share a percentile")
	}
	if scores[3] != 100 {
		t.Error("maximum must score 100, got", scores[3])
	}
	if math.Abs(scores[0]-(100*(0.5-0.25)/0.75)) > 1e-9 {
		t.Error("tied minimum pair percentile =", scores[0])
	}
}

func findEntry(t *testing.T, board *models.Leaderboard, name string) (score float64, rank int) {
	t.Helper()
	for i, e := range board.Entries {
		if e.Name == name {
			return e.FinalScore, i
		}
	}
	t.Fatal("entry not found:", name)
	return 0, 0
}
