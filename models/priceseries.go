package models

import (
	"fmt"
	"math"
	"time"
)

// PriceSeries is a dense table of asset closing prices. Rows are trading
// dates in strictly increasing order, columns are assets. The series is
// owned by the caller and treated as read-only by the engine, which makes
// it safe to share across concurrent backtest runs.
type PriceSeries struct {
	Name   string
	Assets []string
	Dates  []time.Time
	Close  [][]float64 // Close[i][j] is the close of Assets[j] on Dates[i]
}

func (p *PriceSeries) NumRows() int {
	return len(p.Dates)
}

func (p *PriceSeries) NumAssets() int {
	return len(p.Assets)
}

// Validate checks the structural invariants the engine relies on: at least
// one asset, unique labels, strictly increasing dates, rectangular shape
// and no missing values.
func (p *PriceSeries) Validate() error {
	if p.NumAssets() < 1 {
		return fmt.Errorf("%w: price series %q has no asset columns", ErrData, p.Name)
	}
	seen := make(map[string]bool, p.NumAssets())
	for _, asset := range p.Assets {
		if seen[asset] {
			return fmt.Errorf("%w: duplicate asset column %q in %q", ErrData, asset, p.Name)
		}
		seen[asset] = true
	}
	if len(p.Close) != len(p.Dates) {
		return fmt.Errorf("%w: %q has %d price rows for %d dates", ErrData, p.Name, len(p.Close), len(p.Dates))
	}
	for i, row := range p.Close {
		if len(row) != p.NumAssets() {
			return fmt.Errorf("%w: row %d of %q has %d columns, want %d", ErrData, i, p.Name, len(row), p.NumAssets())
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: missing or invalid price at row %d asset %q in %q", ErrData, i, p.Assets[j], p.Name)
			}
		}
		if i > 0 && !p.Dates[i].After(p.Dates[i-1]) {
			return fmt.Errorf("%w: dates not strictly increasing at row %d in %q", ErrData, i, p.Name)
		}
	}
	return nil
}

// Window returns the trailing window of length rows ending at row end
// (inclusive). The returned series shares the underlying price storage.
func (p *PriceSeries) Window(end, length int) *PriceSeries {
	start := end - length + 1
	return &PriceSeries{
		Name:   p.Name,
		Assets: p.Assets,
		Dates:  p.Dates[start : end+1],
		Close:  p.Close[start : end+1],
	}
}

// LinearReturns derives the dense linear-return matrix for rows from..T-1,
// where the return at row i is Close[i]/Close[i-1] - 1. from must be >= 1.
func (p *PriceSeries) LinearReturns(from int) *ReturnMatrix {
	n := p.NumAssets()
	rows := make([][]float64, 0, p.NumRows()-from)
	for i := from; i < p.NumRows(); i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = p.Close[i][j]/p.Close[i-1][j] - 1
		}
		rows = append(rows, row)
	}
	return &ReturnMatrix{
		Assets:  p.Assets,
		Dates:   p.Dates[from:],
		Returns: rows,
	}
}

// ReturnMatrix is a dense matrix of per-asset linear returns with the same
// column layout as the PriceSeries it was derived from.
type ReturnMatrix struct {
	Assets  []string
	Dates   []time.Time
	Returns [][]float64
}

// ReturnSeries is the realized daily portfolio return series produced by
// the return accountant.
type ReturnSeries struct {
	Dates   []time.Time
	Returns []float64
}

// Wealth compounds the return series into a cumulative-wealth curve
// starting from 1.
func (r *ReturnSeries) Wealth() []float64 {
	wealth := make([]float64, len(r.Returns))
	nav := 1.0
	for i, ret := range r.Returns {
		nav *= 1 + ret
		wealth[i] = nav
	}
	return wealth
}
