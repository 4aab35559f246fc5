package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestWeightedAverage(t *testing.T) {
	coefs := map[string]float64{"algo": 2, "stats": 1, "free": 0}
	tests := []struct {
		name        string
		grades      []Grade
		wantAverage null.Float64
		wantCounted int
	}{
		{name: "no grades", wantAverage: null.Float64{}},
		{
			name:        "weighted",
			grades:      []Grade{{SubjectID: "algo", Value: 16}, {SubjectID: "stats", Value: 10}},
			wantAverage: null.Float64From(14),
			wantCounted: 2,
		},
		{
			name:        "rounded to 2 decimals",
			grades:      []Grade{{SubjectID: "algo", Value: 12}, {SubjectID: "stats", Value: 13}},
			wantAverage: null.Float64From(12.33),
			wantCounted: 2,
		},
		{
			name:        "unknown subjects are skipped",
			grades:      []Grade{{SubjectID: "algo", Value: 8}, {SubjectID: "gone", Value: 20}},
			wantAverage: null.Float64From(8),
			wantCounted: 1,
		},
		{
			name:        "zero coefficients only",
			grades:      []Grade{{SubjectID: "free", Value: 15}},
			wantAverage: null.Float64{},
			wantCounted: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, counted := WeightedAverage(tt.grades, coefs)
			assert.Equal(t, tt.wantAverage, avg)
			assert.Equal(t, tt.wantCounted, counted)
		})
	}
}

func TestRankAverages(t *testing.T) {
	avgs := []StudentAverage{
		{Name: "Zoé Aka"},
		{Name: "Yao Kouassi", Average: null.Float64From(14)},
		{Name: "Ali Bamba", Average: null.Float64From(9.5)},
		{Name: "Awa Koné", Average: null.Float64From(14)},
		{Name: "Jean Yao", Average: null.Float64From(17)},
	}
	RankAverages(avgs)

	names := make([]string, len(avgs))
	ranks := make([]null.Int, len(avgs))
	for i, a := range avgs {
		names[i] = a.Name
		ranks[i] = a.Rank
	}
	assert.Equal(t, []string{"Jean Yao", "Awa Koné", "Yao Kouassi", "Ali Bamba", "Zoé Aka"}, names)
	assert.Equal(t, []null.Int{null.IntFrom(1), null.IntFrom(2), null.IntFrom(2), null.IntFrom(3), {}}, ranks)
}
