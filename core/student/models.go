package student

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
)

const (
	StatusAssigned   = "affecté"
	StatusUnassigned = "non_affecté"

	GenderMale   = "M"
	GenderFemale = "F"

	DefaultNationality = "Ivoirienne"

	// TuitionCategory is the finance category of tuition payments.
	TuitionCategory = "Scolarité"
)

type Student struct {
	ID                    string      `json:"id" db:"id"`
	Matricule             string      `json:"matricule" db:"matricule"`
	PermanentID           string      `json:"permanent_id" db:"permanent_id"`
	Photo                 null.String `json:"photo" db:"photo"`
	MatriculeBac          null.String `json:"matricule_bac" db:"matricule_bac"`
	NumeroTableBac        null.String `json:"numero_table_bac" db:"numero_table_bac"`
	CampusID              string      `json:"campus_id" db:"campus_id"`
	AcademicYearID        string      `json:"academic_year_id" db:"academic_year_id"`
	FormationID           string      `json:"formation_id" db:"formation_id"`
	FiliereID             string      `json:"filiere_id" db:"filiere_id"`
	LevelID               string      `json:"level_id" db:"level_id"`
	ClassID               string      `json:"class_id" db:"class_id"`
	Status                string      `json:"status" db:"status"`
	FirstName             string      `json:"first_name" db:"first_name"`
	LastName              string      `json:"last_name" db:"last_name"`
	BirthDate             string      `json:"birth_date" db:"birth_date"`
	BirthPlace            string      `json:"birth_place" db:"birth_place"`
	Gender                string      `json:"gender" db:"gender"`
	Phone                 string      `json:"phone" db:"phone"`
	Email                 null.String `json:"email" db:"email"`
	Nationality           string      `json:"nationality" db:"nationality"`
	EmergencyContactName  null.String `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone null.String `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	TuitionAmount         float64     `json:"tuition_amount" db:"tuition_amount"`
	TuitionPaid           float64     `json:"tuition_paid" db:"tuition_paid"`
	TuitionRemaining      float64     `json:"tuition_remaining" db:"-"`
	IsExonerated          bool        `json:"is_exonerated" db:"is_exonerated"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at"`

	FormationName    string `json:"formation_name" db:"formation_name"`
	FiliereName      string `json:"filiere_name" db:"filiere_name"`
	LevelName        string `json:"level_name" db:"level_name"`
	ClassName        string `json:"class_name" db:"class_name"`
	CampusName       string `json:"campus_name" db:"campus_name"`
	AcademicYearName string `json:"academic_year_name" db:"academic_year_name"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// SetTuitionPaid records the sum of the student's tuition payments and derives what is left to pay.
func (s *Student) SetTuitionPaid(paid float64) {
	s.TuitionPaid = core.Round2(paid)
	if s.IsExonerated {
		s.TuitionRemaining = 0
		return
	}
	s.TuitionRemaining = core.Round2(math.Max(s.TuitionAmount-paid, 0))
}

// StudentInput holds the editable fields of a Student, for creation and full replacement.
type StudentInput struct {
	PermanentID           string  `json:"permanent_id" validate:"required,notblank"`
	Photo                 string  `json:"photo"`
	MatriculeBac          string  `json:"matricule_bac"`
	NumeroTableBac        string  `json:"numero_table_bac"`
	CampusID              string  `json:"campus_id" validate:"required,uuid"`
	AcademicYearID        string  `json:"academic_year_id" validate:"required,uuid"`
	FormationID           string  `json:"formation_id" validate:"required,uuid"`
	FiliereID             string  `json:"filiere_id" validate:"required,uuid"`
	LevelID               string  `json:"level_id" validate:"required,uuid"`
	ClassID               string  `json:"class_id" validate:"required,uuid"`
	Status                string  `json:"status" validate:"required,status"`
	FirstName             string  `json:"first_name" validate:"required,notblank"`
	LastName              string  `json:"last_name" validate:"required,notblank"`
	BirthDate             string  `json:"birth_date" validate:"required,isodate"`
	BirthPlace            string  `json:"birth_place" validate:"required,notblank"`
	Gender                string  `json:"gender" validate:"required,gender"`
	Phone                 string  `json:"phone" validate:"required,notblank"`
	Email                 string  `json:"email" validate:"omitempty,email"`
	Nationality           string  `json:"nationality" validate:"required"`
	EmergencyContactName  string  `json:"emergency_contact_name"`
	EmergencyContactPhone string  `json:"emergency_contact_phone"`
	TuitionAmount         float64 `json:"tuition_amount" validate:"gte=0"`
	IsExonerated          bool    `json:"is_exonerated"`
}

func (in *StudentInput) Validate(validate *validator.Validate) error {
	in.PermanentID = core.CleanString(in.PermanentID)
	in.Photo = core.CleanString(in.Photo)
	in.MatriculeBac = core.CleanString(in.MatriculeBac)
	in.NumeroTableBac = core.CleanString(in.NumeroTableBac)
	in.FirstName = core.CleanString(in.FirstName)
	in.LastName = core.CleanString(in.LastName)
	in.BirthPlace = core.CleanString(in.BirthPlace)
	in.Gender = core.CleanString(in.Gender)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.EmergencyContactName = core.CleanString(in.EmergencyContactName)
	in.EmergencyContactPhone = core.CleanString(in.EmergencyContactPhone)
	if in.Status = core.CleanString(in.Status); in.Status == "" {
		in.Status = StatusUnassigned
	}
	if in.Nationality = core.CleanString(in.Nationality); in.Nationality == "" {
		in.Nationality = DefaultNationality
	}
	return validate.Struct(in)
}

// ReenrollInput moves a Student to a new academic year and position in the curriculum.
type ReenrollInput struct {
	AcademicYearID string `json:"academic_year_id" validate:"required,uuid"`
	FormationID    string `json:"formation_id" validate:"required,uuid"`
	FiliereID      string `json:"filiere_id" validate:"required,uuid"`
	LevelID        string `json:"level_id" validate:"required,uuid"`
	ClassID        string `json:"class_id" validate:"required,uuid"`
	Status         string `json:"status" validate:"required,status"`
}

func (in *ReenrollInput) Validate(validate *validator.Validate) error {
	if in.Status = core.CleanString(in.Status); in.Status == "" {
		in.Status = StatusUnassigned
	}
	return validate.Struct(in)
}

type QueryFilter struct {
	AcademicYearID string `query:"academic_year_id"`
	FormationID    string `query:"formation_id"`
	FiliereID      string `query:"filiere_id"`
	LevelID        string `query:"level_id"`
	ClassID        string `query:"class_id"`
	CampusID       string `query:"campus_id"`
	Status         string `query:"status"`
	// Search does a case-insensitive match on the names, matricule, phone or email.
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
	qf.Search = core.CleanString(qf.Search)
}

type Absence struct {
	ID             string      `json:"id" db:"id"`
	StudentID      string      `json:"student_id" db:"student_id"`
	StudentName    string      `json:"student_name" db:"student_name"`
	AcademicYearID string      `json:"academic_year_id" db:"academic_year_id"`
	Date           string      `json:"date" db:"date"`
	Hours          float64     `json:"hours" db:"hours"`
	Reason         null.String `json:"reason" db:"reason"`
	// TotalHours sums every absence of the student in the academic year.
	TotalHours float64   `json:"total_hours" db:"total_hours"`
	CampusID   string    `json:"-" db:"campus_id"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
}

type AbsenceInput struct {
	StudentID      string  `json:"student_id" validate:"required,uuid"`
	AcademicYearID string  `json:"academic_year_id" validate:"required,uuid"`
	Date           string  `json:"date" validate:"required,isodate"`
	Hours          float64 `json:"hours" validate:"required,gt=0"`
	Reason         string  `json:"reason"`
}

func (in *AbsenceInput) Validate(validate *validator.Validate) error {
	in.Date = core.CleanString(in.Date)
	in.Reason = core.CleanString(in.Reason)
	return validate.Struct(in)
}

type AbsenceFilter struct {
	StudentID      string `query:"student_id"`
	AcademicYearID string `query:"academic_year_id"`
	CampusID       string `query:"-"`
}

// ChainChecker verifies curriculum references, see catalog.Service.CheckChain.
type ChainChecker interface {
	CheckChain(ctx context.Context, chain catalog.Chain) error
}
