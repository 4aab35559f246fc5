package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

var (
	// errors
	ErrCampusNotFound       = core.NewNotFoundError("Campus non trouvé")
	ErrAcademicYearNotFound = core.NewNotFoundError("Année académique non trouvée")
	ErrFormationNotFound    = core.NewNotFoundError("Formation non trouvée")
	ErrFiliereNotFound      = core.NewNotFoundError("Filière non trouvée")
	ErrLevelNotFound        = core.NewNotFoundError("Niveau non trouvé")
	ErrClassNotFound        = core.NewNotFoundError("Classe non trouvée")
	ErrSubjectNotFound      = core.NewNotFoundError("Matière non trouvée")
)

type Repository interface {
	CreateCampus(ctx context.Context, campus Campus) (Campus, error)
	QueryCampuses(ctx context.Context) ([]Campus, error)
	GetCampus(ctx context.Context, id string) (Campus, error)
	UpdateCampus(ctx context.Context, campus Campus) (Campus, error)
	DeleteCampus(ctx context.Context, id string) error

	// CreateAcademicYear and UpdateAcademicYear deactivate every other year,
	// in the same transaction, when the saved year is active.
	CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error)
	QueryAcademicYears(ctx context.Context) ([]AcademicYear, error)
	GetAcademicYear(ctx context.Context, id string) (AcademicYear, error)
	UpdateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error)
	DeleteAcademicYear(ctx context.Context, id string) error

	CreateFormation(ctx context.Context, formation Formation) (Formation, error)
	QueryFormations(ctx context.Context) ([]Formation, error)
	GetFormation(ctx context.Context, id string) (Formation, error)
	UpdateFormation(ctx context.Context, formation Formation) (Formation, error)
	DeleteFormation(ctx context.Context, id string) error

	// CreateFiliere and UpdateFiliere replace the formation links with filiere.FormationIDs.
	CreateFiliere(ctx context.Context, filiere Filiere) (Filiere, error)
	// QueryFilieres returns the filières linked to formationID, or all of them when empty.
	QueryFilieres(ctx context.Context, formationID string) ([]Filiere, error)
	GetFiliere(ctx context.Context, id string) (Filiere, error)
	UpdateFiliere(ctx context.Context, filiere Filiere) (Filiere, error)
	DeleteFiliere(ctx context.Context, id string) error

	CreateLevel(ctx context.Context, level Level) (Level, error)
	// QueryLevels returns the levels ordered by Level.Order.
	QueryLevels(ctx context.Context) ([]Level, error)
	GetLevel(ctx context.Context, id string) (Level, error)
	UpdateLevel(ctx context.Context, level Level) (Level, error)
	DeleteLevel(ctx context.Context, id string) error

	CreateClass(ctx context.Context, class Class) (Class, error)
	QueryClasses(ctx context.Context, filter ClassFilter) ([]Class, error)
	GetClass(ctx context.Context, id string) (Class, error)
	UpdateClass(ctx context.Context, class Class) (Class, error)
	DeleteClass(ctx context.Context, id string) error

	CreateSubject(ctx context.Context, subject Subject) (Subject, error)
	QuerySubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error)
	GetSubject(ctx context.Context, id string) (Subject, error)
	UpdateSubject(ctx context.Context, subject Subject) (Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// Service manages the curriculum taxonomy and the campuses and academic years it hangs on.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(vala.IsNotNil(repo, "repo")).CheckAndPanic()
	return &Service{repo: repo}
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

// Campuses

func (svc *Service) CreateCampus(ctx context.Context, in CampusInput) (Campus, error) {
	return svc.repo.CreateCampus(ctx, Campus{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Address: nullString(in.Address),
		Phone:   nullString(in.Phone),
	})
}

func (svc *Service) QueryCampuses(ctx context.Context) ([]Campus, error) {
	return svc.repo.QueryCampuses(ctx)
}

func (svc *Service) GetCampus(ctx context.Context, id string) (Campus, error) {
	if !isUUID(id) {
		return Campus{}, ErrCampusNotFound
	}
	return svc.repo.GetCampus(ctx, id)
}

func (svc *Service) UpdateCampus(ctx context.Context, id string, in CampusInput) (Campus, error) {
	if _, err := svc.GetCampus(ctx, id); err != nil {
		return Campus{}, err
	}
	return svc.repo.UpdateCampus(ctx, Campus{
		ID:      id,
		Name:    in.Name,
		Address: nullString(in.Address),
		Phone:   nullString(in.Phone),
	})
}

func (svc *Service) DeleteCampus(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrCampusNotFound
	}
	return svc.repo.DeleteCampus(ctx, id)
}

// Academic years

func (svc *Service) CreateAcademicYear(ctx context.Context, in AcademicYearInput) (AcademicYear, error) {
	return svc.repo.CreateAcademicYear(ctx, AcademicYear{
		ID:        uuid.NewString(),
		Name:      in.Name,
		StartDate: nullString(in.StartDate),
		EndDate:   nullString(in.EndDate),
		IsActive:  in.IsActive,
	})
}

func (svc *Service) QueryAcademicYears(ctx context.Context) ([]AcademicYear, error) {
	return svc.repo.QueryAcademicYears(ctx)
}

func (svc *Service) GetAcademicYear(ctx context.Context, id string) (AcademicYear, error) {
	if !isUUID(id) {
		return AcademicYear{}, ErrAcademicYearNotFound
	}
	return svc.repo.GetAcademicYear(ctx, id)
}

func (svc *Service) UpdateAcademicYear(ctx context.Context, id string, in AcademicYearInput) (AcademicYear, error) {
	if _, err := svc.GetAcademicYear(ctx, id); err != nil {
		return AcademicYear{}, err
	}
	return svc.repo.UpdateAcademicYear(ctx, AcademicYear{
		ID:        id,
		Name:      in.Name,
		StartDate: nullString(in.StartDate),
		EndDate:   nullString(in.EndDate),
		IsActive:  in.IsActive,
	})
}

func (svc *Service) DeleteAcademicYear(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrAcademicYearNotFound
	}
	return svc.repo.DeleteAcademicYear(ctx, id)
}

// Formations

func (svc *Service) CreateFormation(ctx context.Context, in FormationInput) (Formation, error) {
	return svc.repo.CreateFormation(ctx, Formation{ID: uuid.NewString(), Name: in.Name, Code: in.Code})
}

func (svc *Service) QueryFormations(ctx context.Context) ([]Formation, error) {
	return svc.repo.QueryFormations(ctx)
}

func (svc *Service) GetFormation(ctx context.Context, id string) (Formation, error) {
	if !isUUID(id) {
		return Formation{}, ErrFormationNotFound
	}
	return svc.repo.GetFormation(ctx, id)
}

func (svc *Service) UpdateFormation(ctx context.Context, id string, in FormationInput) (Formation, error) {
	if _, err := svc.GetFormation(ctx, id); err != nil {
		return Formation{}, err
	}
	return svc.repo.UpdateFormation(ctx, Formation{ID: id, Name: in.Name, Code: in.Code})
}

func (svc *Service) DeleteFormation(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrFormationNotFound
	}
	return svc.repo.DeleteFormation(ctx, id)
}

// Filières

func (svc *Service) checkFormations(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := svc.GetFormation(ctx, id); err != nil {
			if errors.Cause(err) == ErrFormationNotFound {
				return core.NewFieldsError(core.FieldError{Field: "formation_ids", Error: "formation introuvable: " + id})
			}
			return errors.Wrap(err, "checking formations")
		}
	}
	return nil
}

func (svc *Service) CreateFiliere(ctx context.Context, in FiliereInput) (Filiere, error) {
	if err := svc.checkFormations(ctx, in.FormationIDs); err != nil {
		return Filiere{}, err
	}
	return svc.repo.CreateFiliere(ctx, Filiere{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Code:         in.Code,
		FormationIDs: in.FormationIDs,
	})
}

func (svc *Service) QueryFilieres(ctx context.Context, formationID string) ([]Filiere, error) {
	return svc.repo.QueryFilieres(ctx, formationID)
}

func (svc *Service) GetFiliere(ctx context.Context, id string) (Filiere, error) {
	if !isUUID(id) {
		return Filiere{}, ErrFiliereNotFound
	}
	return svc.repo.GetFiliere(ctx, id)
}

func (svc *Service) UpdateFiliere(ctx context.Context, id string, in FiliereInput) (Filiere, error) {
	if _, err := svc.GetFiliere(ctx, id); err != nil {
		return Filiere{}, err
	}
	if err := svc.checkFormations(ctx, in.FormationIDs); err != nil {
		return Filiere{}, err
	}
	return svc.repo.UpdateFiliere(ctx, Filiere{ID: id, Name: in.Name, Code: in.Code, FormationIDs: in.FormationIDs})
}

func (svc *Service) DeleteFiliere(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrFiliereNotFound
	}
	return svc.repo.DeleteFiliere(ctx, id)
}

// Levels

func (svc *Service) CreateLevel(ctx context.Context, in LevelInput) (Level, error) {
	return svc.repo.CreateLevel(ctx, Level{ID: uuid.NewString(), Name: in.Name, Order: *in.Order})
}

func (svc *Service) QueryLevels(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryLevels(ctx)
}

func (svc *Service) GetLevel(ctx context.Context, id string) (Level, error) {
	if !isUUID(id) {
		return Level{}, ErrLevelNotFound
	}
	return svc.repo.GetLevel(ctx, id)
}

func (svc *Service) UpdateLevel(ctx context.Context, id string, in LevelInput) (Level, error) {
	if _, err := svc.GetLevel(ctx, id); err != nil {
		return Level{}, err
	}
	return svc.repo.UpdateLevel(ctx, Level{ID: id, Name: in.Name, Order: *in.Order})
}

func (svc *Service) DeleteLevel(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrLevelNotFound
	}
	return svc.repo.DeleteLevel(ctx, id)
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, scope core.Scope, in ClassInput) (Class, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.CheckChain(ctx, Chain{
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		AcademicYearID: in.AcademicYearID,
		CampusID:       in.CampusID,
	}); err != nil {
		return Class{}, err
	}
	return svc.repo.CreateClass(ctx, classFromInput(uuid.NewString(), in))
}

func (svc *Service) QueryClasses(ctx context.Context, scope core.Scope, filter ClassFilter) ([]Class, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) GetClass(ctx context.Context, scope core.Scope, id string) (Class, error) {
	if !isUUID(id) {
		return Class{}, ErrClassNotFound
	}
	class, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if !scope.Allows(class.CampusID) {
		return Class{}, ErrClassNotFound
	}
	return class, nil
}

func (svc *Service) UpdateClass(ctx context.Context, scope core.Scope, id string, in ClassInput) (Class, error) {
	if _, err := svc.GetClass(ctx, scope, id); err != nil {
		return Class{}, err
	}
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.CheckChain(ctx, Chain{
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		AcademicYearID: in.AcademicYearID,
		CampusID:       in.CampusID,
	}); err != nil {
		return Class{}, err
	}
	return svc.repo.UpdateClass(ctx, classFromInput(id, in))
}

func (svc *Service) DeleteClass(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.GetClass(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, id)
}

func classFromInput(id string, in ClassInput) Class {
	return Class{
		ID:             id,
		Name:           in.Name,
		Code:           in.Code,
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		CampusID:       in.CampusID,
		AcademicYearID: in.AcademicYearID,
	}
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, in SubjectInput) (Subject, error) {
	if err := svc.CheckChain(ctx, Chain{FormationID: in.FormationID, FiliereID: in.FiliereID, LevelID: in.LevelID}); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, subjectFromInput(uuid.NewString(), in))
}

func (svc *Service) QuerySubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	if !isUUID(id) {
		return Subject{}, ErrSubjectNotFound
	}
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, in SubjectInput) (Subject, error) {
	if _, err := svc.GetSubject(ctx, id); err != nil {
		return Subject{}, err
	}
	if err := svc.CheckChain(ctx, Chain{FormationID: in.FormationID, FiliereID: in.FiliereID, LevelID: in.LevelID}); err != nil {
		return Subject{}, err
	}
	return svc.repo.UpdateSubject(ctx, subjectFromInput(id, in))
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrSubjectNotFound
	}
	return svc.repo.DeleteSubject(ctx, id)
}

func subjectFromInput(id string, in SubjectInput) Subject {
	return Subject{
		ID:          id,
		Name:        in.Name,
		Code:        in.Code,
		Credits:     *in.Credits,
		Coefficient: *in.Coefficient,
		FormationID: in.FormationID,
		FiliereID:   in.FiliereID,
		LevelID:     in.LevelID,
	}
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
