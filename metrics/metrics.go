// Package metrics computes the fixed performance vector consumed by the
// backtest engine. Pure functions of the return series, no side effects.
package metrics

import (
	"math"

	gaussian "github.com/chobie/go-gaussian"
	"gonum.org/v1/gonum/stat"

	"github.com/tantralabs/arbiter/models"
)

// TradingDays is the annualization base for daily return series.
const TradingDays = 252

// Compute derives the performance vector from a daily portfolio return
// series. An empty series yields the Unavailable sentinel in every field.
func Compute(returns []float64) models.Performance {
	if len(returns) == 0 {
		return models.UnavailablePerformance()
	}

	mean, std := stat.MeanStdDev(returns, nil)

	sharpe := mean / std * math.Sqrt(TradingDays)
	if math.IsNaN(sharpe) {
		sharpe = -100
	}

	sortino := mean / downsideDeviation(returns) * math.Sqrt(TradingDays)
	if math.IsNaN(sortino) || math.IsInf(sortino, 0) {
		sortino = -100
	}

	return models.Performance{
		Sharpe:        sharpe,
		MaxDrawdown:   MaxDrawdown(returns),
		AnnReturn:     annualizedReturn(returns),
		AnnVolatility: std * math.Sqrt(TradingDays),
		Sortino:       sortino,
		VaR95:         VaR(returns, 0.95),
	}
}

// MaxDrawdown walks the cumulative-wealth curve and returns the largest
// peak-to-trough loss as a positive fraction.
func MaxDrawdown(returns []float64) float64 {
	nav := 1.0
	peak := 1.0
	drawdown := 0.0
	for _, ret := range returns {
		nav *= 1 + ret
		if nav > peak {
			peak = nav
		}
		dd := 1 - nav/peak
		if dd > drawdown {
			drawdown = dd
		}
	}
	return drawdown
}

// VaR is the parametric value-at-risk at the given confidence level,
// reported as a positive daily loss fraction under a normal fit.
func VaR(returns []float64, confidence float64) float64 {
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	dist := gaussian.NewGaussian(mean, std*std)
	return -dist.Ppf(1 - confidence)
}

func annualizedReturn(returns []float64) float64 {
	nav := 1.0
	for _, ret := range returns {
		nav *= 1 + ret
	}
	if nav <= 0 {
		return -1
	}
	return math.Pow(nav, TradingDays/float64(len(returns))) - 1
}

func downsideDeviation(returns []float64) float64 {
	sum := 0.0
	for _, ret := range returns {
		if ret < 0 {
			sum += ret * ret
		}
	}
	return math.Sqrt(sum / float64(len(returns)))
}
