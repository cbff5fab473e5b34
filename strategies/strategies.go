// Package strategies ships reference allocation functions. They double as
// grading fixtures and as examples of the AllocationFunc contract.
package strategies

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/tantralabs/arbiter/models"
)

// Uniform allocates 1/N to every asset in the window.
func Uniform() models.AllocationFunc {
	return func(window *models.PriceSeries) ([]float64, error) {
		n := window.NumAssets()
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
		return weights, nil
	}
}

// Momentum holds an equal split of the assets trading above their simple
// moving average; the rest of the book stays in cash.
func Momentum(lookback int) models.AllocationFunc {
	return func(window *models.PriceSeries) ([]float64, error) {
		if lookback < 2 || lookback > window.NumRows() {
			return nil, fmt.Errorf("momentum lookback %d out of range for a %d-row window", lookback, window.NumRows())
		}
		weights := make([]float64, window.NumAssets())
		var above []int
		for j := 0; j < window.NumAssets(); j++ {
			sma := talib.Sma(assetCloses(window, j), lookback)
			last := window.Close[window.NumRows()-1][j]
			if last > sma[len(sma)-1] {
				above = append(above, j)
			}
		}
		for _, j := range above {
			weights[j] = 1 / float64(len(above))
		}
		return weights, nil
	}
}

// InverseVolatility weighs assets by the inverse of their realized return
// volatility over the window, normalized to a fully invested book.
func InverseVolatility() models.AllocationFunc {
	return func(window *models.PriceSeries) ([]float64, error) {
		n := window.NumAssets()
		inv := make([]float64, n)
		total := 0.0
		for j := 0; j < n; j++ {
			closes := assetCloses(window, j)
			returns := make([]float64, len(closes)-1)
			for i := 1; i < len(closes); i++ {
				returns[i-1] = closes[i]/closes[i-1] - 1
			}
			_, std := stat.MeanStdDev(returns, nil)
			if std == 0 || math.IsNaN(std) {
				return nil, fmt.Errorf("asset %v has zero return volatility over the window", window.Assets[j])
			}
			inv[j] = 1 / std
			total += inv[j]
		}
		for j := range inv {
			inv[j] /= total
		}
		return inv, nil
	}
}

func assetCloses(window *models.PriceSeries, j int) []float64 {
	closes := make([]float64, window.NumRows())
	for i := range closes {
		closes[i] = window.Close[i][j]
	}
	return closes
}
