package staff

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supinter/ums/core"
)

func TestComputeTotals(t *testing.T) {
	hours := []Hours{
		{ID: "1", ProfessorID: "p1", ClassID: "c1", AcademicYearID: "y1", TotalHoursPlanned: 30, HoursDone: 3},
		{ID: "2", ProfessorID: "p1", ClassID: "c1", AcademicYearID: "y1", TotalHoursPlanned: 30, HoursDone: 2.5},
		{ID: "3", ProfessorID: "p1", ClassID: "c2", AcademicYearID: "y1", TotalHoursPlanned: 4, HoursDone: 3},
		{ID: "4", ProfessorID: "p1", ClassID: "c2", AcademicYearID: "y1", TotalHoursPlanned: 4, HoursDone: 3},
		{ID: "5", ProfessorID: "p2", ClassID: "c1", AcademicYearID: "y1", TotalHoursPlanned: 10, HoursDone: 1},
		{ID: "6", ProfessorID: "p1", ClassID: "c1", AcademicYearID: "y2", TotalHoursPlanned: 20, HoursDone: 0},
	}
	ComputeTotals(hours)

	want := map[string][2]float64{
		"1": {5.5, 24.5},
		"2": {5.5, 24.5},
		"3": {6, 0}, // overrun does not go negative
		"4": {6, 0},
		"5": {1, 9},
		"6": {0, 20},
	}
	for _, h := range hours {
		assert.Equal(t, want[h.ID][0], h.TotalHoursDone, "total of %s", h.ID)
		assert.Equal(t, want[h.ID][1], h.HoursRemaining, "remaining of %s", h.ID)
	}
}

func TestHoursInput_Validate(t *testing.T) {
	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	core.InitValidators(validate, translator)

	valid := func() HoursInput {
		id := "6f1c2b1e-5e2a-4d8e-9d3c-1b2a3c4d5e6f"
		return HoursInput{
			ProfessorID:       id,
			AcademicYearID:    id,
			FormationID:       id,
			FiliereID:         id,
			LevelID:           id,
			ClassID:           id,
			TotalHoursPlanned: 30,
			Date:              "2024-11-04",
			StartTime:         " 08:00",
			EndTime:           "10:30 ",
			HoursDone:         2.5,
		}
	}

	in := valid()
	require.NoError(t, in.Validate(validate))
	assert.Equal(t, "08:00", in.StartTime)
	assert.Equal(t, "10:30", in.EndTime)

	for _, times := range [][2]string{{"10:00", "09:59"}, {"10:00", "10:00"}} {
		in = valid()
		in.StartTime, in.EndTime = times[0], times[1]
		err := in.Validate(validate)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []core.FieldError{{Field: "end_time", Error: "l'heure de fin doit suivre l'heure de début"}}, vErr.Fields)
	}

	in = valid()
	in.StartTime = "8:00"
	assert.Error(t, in.Validate(validate))

	in = valid()
	in.HoursDone = -1
	assert.Error(t, in.Validate(validate))
}
