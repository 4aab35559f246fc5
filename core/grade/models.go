package grade

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// PassingValue is the grade from which a subject's credits are earned.
const PassingValue = 10

type Grade struct {
	ID             string    `json:"id" db:"id"`
	StudentID      string    `json:"student_id" db:"student_id"`
	SubjectID      string    `json:"subject_id" db:"subject_id"`
	SubjectName    string    `json:"subject_name" db:"subject_name"`
	Semester       int       `json:"semester" db:"semester"`
	AcademicYearID string    `json:"academic_year_id" db:"academic_year_id"`
	Value          float64   `json:"value" db:"value"`
	CampusID       string    `json:"-" db:"campus_id"`
	CreatedAt      time.Time `json:"-" db:"created_at"`
}

type GradeInput struct {
	StudentID      string   `json:"student_id" validate:"required,uuid"`
	SubjectID      string   `json:"subject_id" validate:"required,uuid"`
	Semester       int      `json:"semester" validate:"semester"`
	AcademicYearID string   `json:"academic_year_id" validate:"required,uuid"`
	Value          *float64 `json:"value" validate:"required,gte=0,lte=20"`
}

func (in *GradeInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

type QueryFilter struct {
	StudentID      string   `query:"student_id"`
	AcademicYearID string   `query:"academic_year_id"`
	Semester       int      `query:"semester"`
	SubjectID      string   `query:"subject_id"`
	StudentIDs     []string `query:"-"`
	CampusID       string   `query:"-"`
}

type AveragesQuery struct {
	ClassID        string `query:"class_id" json:"class_id" validate:"required,uuid"`
	AcademicYearID string `query:"academic_year_id" json:"academic_year_id" validate:"required,uuid"`
	Semester       int    `query:"semester" json:"semester" validate:"semester"`
}

func (q *AveragesQuery) Validate(validate *validator.Validate) error {
	return validate.Struct(q)
}

type StudentAverage struct {
	StudentID      string       `json:"student_id"`
	Matricule      string       `json:"matricule"`
	Name           string       `json:"name"`
	Average        null.Float64 `json:"average"`
	GradedSubjects int          `json:"graded_subjects"`
	Rank           null.Int     `json:"rank"`
}

type BulletinQuery struct {
	AcademicYearID string `query:"academic_year_id" json:"academic_year_id" validate:"required,uuid"`
	Semester       int    `query:"semester" json:"semester" validate:"semester"`
}

func (q *BulletinQuery) Validate(validate *validator.Validate) error {
	return validate.Struct(q)
}

type BulletinLine struct {
	SubjectID   string       `json:"subject_id"`
	SubjectName string       `json:"subject_name"`
	SubjectCode string       `json:"subject_code"`
	Coefficient float64      `json:"coefficient"`
	Credits     int          `json:"credits"`
	Grade       null.Float64 `json:"grade"`
	Points      null.Float64 `json:"points"`
}

// Bulletin is a student's report card for one semester.
type Bulletin struct {
	StudentID      string         `json:"student_id"`
	Matricule      string         `json:"matricule"`
	StudentName    string         `json:"student_name"`
	FormationName  string         `json:"formation_name"`
	FiliereName    string         `json:"filiere_name"`
	LevelName      string         `json:"level_name"`
	ClassName      string         `json:"class_name"`
	AcademicYearID string         `json:"academic_year_id"`
	Semester       int            `json:"semester"`
	Subjects       []BulletinLine `json:"subjects"`
	Average        null.Float64   `json:"average"`
	CreditsEarned  int            `json:"credits_earned"`
	CreditsTotal   int            `json:"credits_total"`
}

// RankAverages sorts `avgs` by descending average and sets dense ranks: equal
// averages share a rank and the next average gets the following one.
// Students without an average come last, unranked.
func RankAverages(avgs []StudentAverage) {
	sort.SliceStable(avgs, func(i, j int) bool {
		a, b := avgs[i], avgs[j]
		if a.Average.Valid != b.Average.Valid {
			return a.Average.Valid
		}
		if a.Average.Valid && a.Average.Float64 != b.Average.Float64 {
			return a.Average.Float64 > b.Average.Float64
		}
		return a.Name < b.Name
	})

	rank := 0
	for i := range avgs {
		if !avgs[i].Average.Valid {
			avgs[i].Rank = null.Int{}
			continue
		}
		if i == 0 || avgs[i].Average.Float64 != avgs[i-1].Average.Float64 {
			rank++
		}
		avgs[i].Rank = null.IntFrom(rank)
	}
}
