package catalog

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

const (
	DefaultCredits     = 2
	DefaultCoefficient = 1.0
	DefaultLevelOrder  = 1
)

type Campus struct {
	ID      string      `json:"id" db:"id"`
	Name    string      `json:"name" db:"name"`
	Address null.String `json:"address" db:"address"`
	Phone   null.String `json:"phone" db:"phone"`
}

type CampusInput struct {
	Name    string `json:"name" validate:"required,notblank"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (in *CampusInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Address = core.CleanString(in.Address)
	in.Phone = core.CleanString(in.Phone)
	return validate.Struct(in)
}

type AcademicYear struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	StartDate null.String `json:"start_date" db:"start_date"`
	EndDate   null.String `json:"end_date" db:"end_date"`
	IsActive  bool        `json:"is_active" db:"is_active"`
}

type AcademicYearInput struct {
	Name      string `json:"name" validate:"required,notblank"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
	IsActive  bool   `json:"is_active"`
}

func (in *AcademicYearInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.StartDate = core.CleanString(in.StartDate)
	in.EndDate = core.CleanString(in.EndDate)
	if err := validate.Struct(in); err != nil {
		return err
	}
	// YYYY-MM-DD strings order like the dates they represent
	if in.StartDate != "" && in.EndDate != "" && in.EndDate < in.StartDate {
		return core.NewFieldsError(core.FieldError{Field: "end_date", Error: "la date de fin doit suivre la date de début"})
	}
	return nil
}

type Formation struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}

type FormationInput struct {
	Name string `json:"name" validate:"required,notblank"`
	Code string `json:"code" validate:"required,notblank"`
}

func (in *FormationInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanString(in.Code)
	return validate.Struct(in)
}

type Filiere struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Code         string      `json:"code" db:"code"`
	FormationIDs []string    `json:"formation_ids" db:"-"`
	Formations   []Formation `json:"formations" db:"-"`
}

// IsLinkedTo reports whether the filière is offered by the formation.
func (f Filiere) IsLinkedTo(formationID string) bool {
	for _, id := range f.FormationIDs {
		if id == formationID {
			return true
		}
	}
	return false
}

type FiliereInput struct {
	Name         string   `json:"name" validate:"required,notblank"`
	Code         string   `json:"code" validate:"required,notblank"`
	FormationIDs []string `json:"formation_ids" validate:"required,min=1,dive,uuid"`
}

func (in *FiliereInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanString(in.Code)
	seen := make(map[string]bool, len(in.FormationIDs))
	ids := make([]string, 0, len(in.FormationIDs))
	for _, id := range in.FormationIDs {
		if id = core.CleanString(id); !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	in.FormationIDs = ids
	return validate.Struct(in)
}

type Level struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Order int    `json:"order" db:"order"`
}

type LevelInput struct {
	Name  string `json:"name" validate:"required,notblank"`
	Order *int   `json:"order" validate:"omitempty,gte=0"`
}

func (in *LevelInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	if in.Order == nil {
		order := DefaultLevelOrder
		in.Order = &order
	}
	return validate.Struct(in)
}

type Class struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Code           string `json:"code" db:"code"`
	FormationID    string `json:"formation_id" db:"formation_id"`
	FiliereID      string `json:"filiere_id" db:"filiere_id"`
	LevelID        string `json:"level_id" db:"level_id"`
	CampusID       string `json:"campus_id" db:"campus_id"`
	AcademicYearID string `json:"academic_year_id" db:"academic_year_id"`
	FormationName  string `json:"formation_name" db:"formation_name"`
	FiliereName    string `json:"filiere_name" db:"filiere_name"`
	LevelName      string `json:"level_name" db:"level_name"`
	CampusName     string `json:"campus_name" db:"campus_name"`
}

type ClassInput struct {
	Name           string `json:"name" validate:"required,notblank"`
	Code           string `json:"code" validate:"required,notblank"`
	FormationID    string `json:"formation_id" validate:"required,uuid"`
	FiliereID      string `json:"filiere_id" validate:"required,uuid"`
	LevelID        string `json:"level_id" validate:"required,uuid"`
	CampusID       string `json:"campus_id" validate:"required,uuid"`
	AcademicYearID string `json:"academic_year_id" validate:"required,uuid"`
}

func (in *ClassInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanString(in.Code)
	return validate.Struct(in)
}

type ClassFilter struct {
	AcademicYearID string `query:"academic_year_id"`
	FormationID    string `query:"formation_id"`
	FiliereID      string `query:"filiere_id"`
	LevelID        string `query:"level_id"`
	CampusID       string `query:"campus_id"`
}

type Subject struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Code        string  `json:"code" db:"code"`
	Credits     int     `json:"credits" db:"credits"`
	Coefficient float64 `json:"coefficient" db:"coefficient"`
	FormationID string  `json:"formation_id" db:"formation_id"`
	FiliereID   string  `json:"filiere_id" db:"filiere_id"`
	LevelID     string  `json:"level_id" db:"level_id"`
}

type SubjectInput struct {
	Name        string   `json:"name" validate:"required,notblank"`
	Code        string   `json:"code" validate:"required,notblank"`
	Credits     *int     `json:"credits" validate:"omitempty,gte=0"`
	Coefficient *float64 `json:"coefficient" validate:"omitempty,gt=0"`
	FormationID string   `json:"formation_id" validate:"required,uuid"`
	FiliereID   string   `json:"filiere_id" validate:"required,uuid"`
	LevelID     string   `json:"level_id" validate:"required,uuid"`
}

func (in *SubjectInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanString(in.Code)
	if in.Credits == nil {
		credits := DefaultCredits
		in.Credits = &credits
	}
	if in.Coefficient == nil {
		coef := DefaultCoefficient
		in.Coefficient = &coef
	}
	return validate.Struct(in)
}

type SubjectFilter struct {
	FormationID string `query:"formation_id"`
	FiliereID   string `query:"filiere_id"`
	LevelID     string `query:"level_id"`
}

// Chain is a position in the formation -> filière -> level -> class taxonomy.
// Empty fields are not checked.
type Chain struct {
	FormationID    string
	FiliereID      string
	LevelID        string
	ClassID        string
	AcademicYearID string
	CampusID       string
}

type CascadeQuery struct {
	FormationID    string `query:"formation_id"`
	FiliereID      string `query:"filiere_id"`
	LevelID        string `query:"level_id"`
	AcademicYearID string `query:"academic_year_id"`
	CampusID       string `query:"campus_id"`
}

// CascadeOptions holds the dropdown options of the next steps of a Chain.
type CascadeOptions struct {
	Filieres []Filiere `json:"filieres"`
	Levels   []Level   `json:"levels"`
	Classes  []Class   `json:"classes"`
	Subjects []Subject `json:"subjects"`
}
