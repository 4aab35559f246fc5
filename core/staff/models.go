package staff

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

type Professor struct {
	ID         string      `json:"id" db:"id"`
	FirstName  string      `json:"first_name" db:"first_name"`
	LastName   string      `json:"last_name" db:"last_name"`
	Phone      string      `json:"phone" db:"phone"`
	Email      null.String `json:"email" db:"email"`
	Specialty  string      `json:"specialty" db:"specialty"`
	CampusID   string      `json:"campus_id" db:"campus_id"`
	CampusName string      `json:"campus_name" db:"campus_name"`
	CreatedAt  time.Time   `json:"-" db:"created_at"`
}

func (p Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}

type ProfessorInput struct {
	FirstName string `json:"first_name" validate:"required,notblank"`
	LastName  string `json:"last_name" validate:"required,notblank"`
	Phone     string `json:"phone" validate:"required,notblank"`
	Email     string `json:"email" validate:"omitempty,email"`
	Specialty string `json:"specialty" validate:"required,notblank"`
	CampusID  string `json:"campus_id" validate:"required,uuid"`
}

func (in *ProfessorInput) Validate(validate *validator.Validate) error {
	in.FirstName = core.CleanString(in.FirstName)
	in.LastName = core.CleanString(in.LastName)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Specialty = core.CleanString(in.Specialty)
	return validate.Struct(in)
}

type ProfessorFilter struct {
	CampusID string `query:"campus_id"`
}

// Hours is one teaching session of a professor in a class.
type Hours struct {
	ID                string  `json:"id" db:"id"`
	ProfessorID       string  `json:"professor_id" db:"professor_id"`
	ProfessorName     string  `json:"professor_name" db:"professor_name"`
	AcademicYearID    string  `json:"academic_year_id" db:"academic_year_id"`
	FormationID       string  `json:"formation_id" db:"formation_id"`
	FiliereID         string  `json:"filiere_id" db:"filiere_id"`
	LevelID           string  `json:"level_id" db:"level_id"`
	ClassID           string  `json:"class_id" db:"class_id"`
	TotalHoursPlanned float64 `json:"total_hours_planned" db:"total_hours_planned"`
	Date              string  `json:"date" db:"date"`
	StartTime         string  `json:"start_time" db:"start_time"`
	EndTime           string  `json:"end_time" db:"end_time"`
	HoursDone         float64 `json:"hours_done" db:"hours_done"`
	// TotalHoursDone sums HoursDone over the sessions of the same professor, class and academic year.
	TotalHoursDone float64   `json:"total_hours_done" db:"-"`
	HoursRemaining float64   `json:"hours_remaining" db:"-"`
	CampusID       string    `json:"-" db:"campus_id"`
	CreatedAt      time.Time `json:"-" db:"created_at"`
}

type hoursGroup struct {
	professorID, classID, academicYearID string
}

func (h Hours) group() hoursGroup {
	return hoursGroup{professorID: h.ProfessorID, classID: h.ClassID, academicYearID: h.AcademicYearID}
}

// ComputeTotals sets TotalHoursDone and HoursRemaining on every session.
// Each session group must be complete in `hours`.
func ComputeTotals(hours []Hours) {
	done := make(map[hoursGroup]float64)
	for _, h := range hours {
		done[h.group()] += h.HoursDone
	}
	for i := range hours {
		total := done[hours[i].group()]
		hours[i].TotalHoursDone = core.Round2(total)
		remaining := hours[i].TotalHoursPlanned - total
		if remaining < 0 {
			remaining = 0
		}
		hours[i].HoursRemaining = core.Round2(remaining)
	}
}

type HoursInput struct {
	ProfessorID       string  `json:"professor_id" validate:"required,uuid"`
	AcademicYearID    string  `json:"academic_year_id" validate:"required,uuid"`
	FormationID       string  `json:"formation_id" validate:"required,uuid"`
	FiliereID         string  `json:"filiere_id" validate:"required,uuid"`
	LevelID           string  `json:"level_id" validate:"required,uuid"`
	ClassID           string  `json:"class_id" validate:"required,uuid"`
	TotalHoursPlanned float64 `json:"total_hours_planned" validate:"gte=0"`
	Date              string  `json:"date" validate:"required,isodate"`
	StartTime         string  `json:"start_time" validate:"required,hhmm"`
	EndTime           string  `json:"end_time" validate:"required,hhmm"`
	HoursDone         float64 `json:"hours_done" validate:"gte=0"`
}

func (in *HoursInput) Validate(validate *validator.Validate) error {
	in.StartTime = core.CleanString(in.StartTime)
	in.EndTime = core.CleanString(in.EndTime)
	if err := validate.Struct(in); err != nil {
		return err
	}
	// zero padded HH:MM strings order like the times they represent
	if in.StartTime >= in.EndTime {
		return core.NewFieldsError(core.FieldError{Field: "end_time", Error: "l'heure de fin doit suivre l'heure de début"})
	}
	return nil
}

type HoursFilter struct {
	ProfessorID    string `query:"professor_id"`
	AcademicYearID string `query:"academic_year_id"`
	ClassID        string `query:"class_id"`
	CampusID       string `query:"-"`
}

type Staff struct {
	ID             string      `json:"id" db:"id"`
	FirstName      string      `json:"first_name" db:"first_name"`
	LastName       string      `json:"last_name" db:"last_name"`
	BirthDate      string      `json:"birth_date" db:"birth_date"`
	BirthPlace     string      `json:"birth_place" db:"birth_place"`
	Function       string      `json:"function" db:"function"`
	Phone          null.String `json:"phone" db:"phone"`
	CampusID       string      `json:"campus_id" db:"campus_id"`
	AcademicYearID string      `json:"academic_year_id" db:"academic_year_id"`
	CampusName     string      `json:"campus_name" db:"campus_name"`
	Photo          null.String `json:"photo" db:"photo"`
	CreatedAt      time.Time   `json:"-" db:"created_at"`
}

func (s Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}

type StaffInput struct {
	FirstName      string `json:"first_name" validate:"required,notblank"`
	LastName       string `json:"last_name" validate:"required,notblank"`
	BirthDate      string `json:"birth_date" validate:"required,isodate"`
	BirthPlace     string `json:"birth_place" validate:"required,notblank"`
	Function       string `json:"function" validate:"required,notblank"`
	Phone          string `json:"phone"`
	CampusID       string `json:"campus_id" validate:"required,uuid"`
	AcademicYearID string `json:"academic_year_id" validate:"required,uuid"`
	Photo          string `json:"photo"`
}

func (in *StaffInput) Validate(validate *validator.Validate) error {
	in.FirstName = core.CleanString(in.FirstName)
	in.LastName = core.CleanString(in.LastName)
	in.BirthPlace = core.CleanString(in.BirthPlace)
	in.Function = core.CleanString(in.Function)
	in.Phone = core.CleanString(in.Phone)
	in.Photo = core.CleanString(in.Photo)
	return validate.Struct(in)
}

type StaffFilter struct {
	CampusID       string `query:"campus_id"`
	AcademicYearID string `query:"academic_year_id"`
}
