package arbiter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tantralabs/arbiter/models"
)

// AccumulateReturns converts a sparse weight schedule plus a dense
// linear-return matrix into the realized daily portfolio return series.
//
// The recurrence carries the uninvested cash fraction explicitly (cash can
// be negative under leverage, representing borrowing) and renormalizes the
// end-of-period holdings by the day's NAV change, so exposure compounds
// correctly between rebalances without any trading. Weights decided on
// date d take effect after the execution lag: one return row later for
// same-day execution, two for next-day.
func AccumulateReturns(r *models.ReturnMatrix, w *models.WeightSchedule, lag string) (*models.ReturnSeries, error) {
	shift, err := lagShift(lag)
	if err != nil {
		return nil, err
	}
	if err := validateAlignment(r, w); err != nil {
		return nil, err
	}

	// Expand the sparse schedule into per-row targets at the shifted
	// positions. Decisions too close to the end never take effect.
	rowOf := make(map[int64]int, len(r.Dates))
	for i, d := range r.Dates {
		rowOf[d.Unix()] = i
	}
	targets := make([][]float64, len(r.Dates))
	first := -1
	for k, d := range w.Dates {
		i, ok := rowOf[d.Unix()]
		if !ok {
			return nil, fmt.Errorf("%w: rebalance date %v not present in the return matrix", models.ErrData, d.Format("2006-01-02"))
		}
		if i+shift >= len(r.Dates) {
			continue
		}
		targets[i+shift] = w.Weights[k]
		if first < 0 || i+shift < first {
			first = i + shift
		}
	}
	if first < 0 {
		return &models.ReturnSeries{}, nil
	}

	series := &models.ReturnSeries{
		Dates:   r.Dates[first:],
		Returns: make([]float64, 0, len(r.Dates)-first),
	}

	// invested is the NAV-fraction holding vector carried across days: the
	// fresh target on rebalance days, drifted holdings otherwise.
	var eop []float64
	for i := first; i < len(r.Dates); i++ {
		row := r.Returns[i]
		invested := targets[i]
		if invested == nil {
			invested = eop
		}

		cash := 1 - floats.Sum(invested)
		ret := floats.Dot(row, invested)

		eop = make([]float64, len(invested))
		for j := range invested {
			eop[j] = (1 + row[j]) * invested[j]
		}

		navChange := cash + floats.Sum(eop)
		if navChange == 0 {
			return nil, fmt.Errorf("%w: portfolio value reached zero on %v", models.ErrData, r.Dates[i].Format("2006-01-02"))
		}
		floats.Scale(1/navChange, eop)

		series.Returns = append(series.Returns, ret)
	}
	return series, nil
}

func lagShift(lag string) (int, error) {
	switch lag {
	case "", models.LagSameDay:
		return 1, nil
	case models.LagNextDay:
		return 2, nil
	}
	return 0, fmt.Errorf("%w: unknown execution lag %q", models.ErrConfig, lag)
}

func validateAlignment(r *models.ReturnMatrix, w *models.WeightSchedule) error {
	if len(r.Assets) != len(w.Assets) {
		return fmt.Errorf("%w: return matrix has %d assets, weight schedule has %d", models.ErrData, len(r.Assets), len(w.Assets))
	}
	for i := range r.Assets {
		if r.Assets[i] != w.Assets[i] {
			return fmt.Errorf("%w: asset column mismatch at %d: %q vs %q", models.ErrData, i, r.Assets[i], w.Assets[i])
		}
	}
	for i, row := range r.Returns {
		if len(row) != len(r.Assets) {
			return fmt.Errorf("%w: return row %d has %d columns, want %d", models.ErrData, i, len(row), len(r.Assets))
		}
		for j, v := range row {
			// The first row may be undefined when the matrix starts at the
			// series origin; anything later must be dense.
			if i > 0 && (math.IsNaN(v) || math.IsInf(v, 0)) {
				return fmt.Errorf("%w: missing return at row %d asset %q", models.ErrData, i, r.Assets[j])
			}
		}
		if i > 0 && !r.Dates[i].After(r.Dates[i-1]) {
			return fmt.Errorf("%w: return dates not strictly increasing at row %d", models.ErrData, i)
		}
	}
	for i := 1; i < len(w.Dates); i++ {
		if !w.Dates[i].After(w.Dates[i-1]) {
			return fmt.Errorf("%w: rebalance dates not strictly increasing at row %d", models.ErrData, i)
		}
	}
	return nil
}
