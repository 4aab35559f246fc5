package grade

import (
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

// WeightedAverage returns Σ(value × coefficient) / Σ(coefficient) over the
// grades whose subject has a coefficient in `coefficients`, rounded to 2 decimals,
// and the number of grades that entered the mean.
// The average is null when no grade counts or the coefficients sum to zero.
func WeightedAverage(grades []Grade, coefficients map[string]float64) (null.Float64, int) {
	var points, coefSum float64
	var counted int
	for _, g := range grades {
		coef, ok := coefficients[g.SubjectID]
		if !ok {
			continue
		}
		points += g.Value * coef
		coefSum += coef
		counted++
	}
	if counted == 0 || coefSum == 0 {
		return null.Float64{}, counted
	}
	return null.Float64From(core.Round2(points / coefSum)), counted
}
