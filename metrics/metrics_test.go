package metrics

import (
	"math"
	"testing"

	"github.com/tantralabs/arbiter/models"
)

func TestComputeEmpty(t *testing.T) {
	perf := Compute(nil)
	if !models.IsUnavailable(perf.Sharpe) || !models.IsUnavailable(perf.MaxDrawdown) {
		t.Error("empty series must yield unavailable metrics")
	}
}

func TestComputeConstantReturns(t *testing.T) {
	returns := make([]float64, 252)
	for i := range returns {
		returns[i] = 0.001
	}
	perf := Compute(returns)
	// Zero volatility: the sharpe fallback kicks in rather than emitting NaN.
	if perf.Sharpe != -100 {
		t.Error("sharpe fallback = ", perf.Sharpe)
	}
	if perf.MaxDrawdown != 0 {
		t.Error("monotone wealth has no drawdown, got", perf.MaxDrawdown)
	}
	want := math.Pow(1.001, 252) - 1
	if math.Abs(perf.AnnReturn-want) > 1e-9 {
		t.Error("annualized return =", perf.AnnReturn, ", want", want)
	}
	if perf.AnnVolatility != 0 {
		t.Error("constant series has zero volatility, got", perf.AnnVolatility)
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Up 10%, down 20%, partial recovery: trough is 0.88 of the 1.10 peak.
	returns := []float64{0.10, -0.20, 0.05}
	got := MaxDrawdown(returns)
	if math.Abs(got-0.20) > 1e-12 {
		t.Error("max drawdown =", got, ", want 0.20")
	}
}

func TestSharpeSign(t *testing.T) {
	up := []float64{0.01, 0.02, 0.01, 0.03, 0.01}
	down := []float64{-0.01, -0.02, -0.01, -0.03, -0.01}
	if Compute(up).Sharpe <= 0 {
		t.Error("positive drift must have positive sharpe")
	}
	if Compute(down).Sharpe >= 0 {
		t.Error("negative drift must have negative sharpe")
	}
}

func TestVaRPositiveForVolatileSeries(t *testing.T) {
	returns := []float64{0.02, -0.02, 0.015, -0.018, 0.01, -0.02}
	if v := VaR(returns, 0.95); v <= 0 {
		t.Error("95% VaR of a centered volatile series must be a positive loss, got", v)
	}
	if v := VaR(make([]float64, 10), 0.95); v != 0 {
		t.Error("degenerate series has zero VaR, got", v)
	}
}
