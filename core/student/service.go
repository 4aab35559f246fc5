package student

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
)

const (
	matriculePrefix      = "ESI"
	maxMatriculeAttempts = 5
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("Étudiant non trouvé")
	ErrAbsenceNotFound = core.NewNotFoundError("Absence non trouvée")

	errMatriculeExhausted = errors.New("could not allocate a free matricule")
)

type Repository interface {
	// CountMatricules counts the students whose matricule starts with prefix.
	CountMatricules(ctx context.Context, prefix string) (int, error)
	// CreateStudent returns core.ErrDuplicate when the matricule is taken.
	CreateStudent(ctx context.Context, stu Student) (Student, error)
	// QueryStudents, GetStudent and UpdateStudent return students with their
	// reference names and their paid tuition.
	QueryStudents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	UpdateStudent(ctx context.Context, stu Student) (Student, error)
	// DeleteStudent also deletes the student's grades, absences and archives.
	DeleteStudent(ctx context.Context, id string) error

	CreateAbsence(ctx context.Context, abs Absence) (Absence, error)
	QueryAbsences(ctx context.Context, filter AbsenceFilter) ([]Absence, error)
	GetAbsence(ctx context.Context, id string) (Absence, error)
	DeleteAbsence(ctx context.Context, id string) error
}

type Service struct {
	repo  Repository
	chain ChainChecker
}

func NewService(repo Repository, chain ChainChecker) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(chain, "chain"),
	).CheckAndPanic()

	return &Service{repo: repo, chain: chain}
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func (svc *Service) checkChain(ctx context.Context, in StudentInput) error {
	return svc.chain.CheckChain(ctx, catalog.Chain{
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		ClassID:        in.ClassID,
		AcademicYearID: in.AcademicYearID,
		CampusID:       in.CampusID,
	})
}

// Create enrolls a new student under a generated matricule ESI<year><n>,
// n being one more than the number of matricules already issued that year.
func (svc *Service) Create(ctx context.Context, scope core.Scope, in StudentInput) (Student, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.checkChain(ctx, in); err != nil {
		return Student{}, err
	}

	stu := applyInput(Student{
		ID:        uuid.NewString(),
		CreatedAt: core.NowFunc().UTC(),
	}, in)

	prefix := fmt.Sprintf("%s%d", matriculePrefix, core.NowFunc().Year())
	count, err := svc.repo.CountMatricules(ctx, prefix)
	if err != nil {
		return Student{}, errors.Wrap(err, "counting matricules")
	}
	for attempt := 1; attempt <= maxMatriculeAttempts; attempt++ {
		stu.Matricule = fmt.Sprintf("%s%04d", prefix, count+attempt)
		created, err := svc.repo.CreateStudent(ctx, stu)
		if errors.Cause(err) == core.ErrDuplicate {
			continue // a concurrent enrollment took it
		}
		if err != nil {
			return Student{}, errors.Wrap(err, "creating student")
		}
		return created, nil
	}
	return Student{}, errMatriculeExhausted
}

func (svc *Service) Query(ctx context.Context, scope core.Scope, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryStudents(ctx, filter, ordering...)
}

func (svc *Service) Get(ctx context.Context, scope core.Scope, id string) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrNotFound
	}
	stu, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !scope.Allows(stu.CampusID) {
		return Student{}, ErrNotFound
	}
	return stu, nil
}

// Update replaces every editable field; the matricule never changes.
func (svc *Service) Update(ctx context.Context, scope core.Scope, id string, in StudentInput) (Student, error) {
	stu, err := svc.Get(ctx, scope, id)
	if err != nil {
		return Student{}, err
	}
	in.CampusID = scope.Campus(in.CampusID)
	if err = svc.checkChain(ctx, in); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, applyInput(stu, in))
}

func (svc *Service) Delete(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.Get(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// Reenroll moves the student to another academic year, keeping the campus.
func (svc *Service) Reenroll(ctx context.Context, scope core.Scope, id string, in ReenrollInput) (Student, error) {
	stu, err := svc.Get(ctx, scope, id)
	if err != nil {
		return Student{}, err
	}
	err = svc.chain.CheckChain(ctx, catalog.Chain{
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		ClassID:        in.ClassID,
		AcademicYearID: in.AcademicYearID,
		CampusID:       stu.CampusID,
	})
	if err != nil {
		return Student{}, err
	}

	stu.AcademicYearID = in.AcademicYearID
	stu.FormationID = in.FormationID
	stu.FiliereID = in.FiliereID
	stu.LevelID = in.LevelID
	stu.ClassID = in.ClassID
	stu.Status = in.Status
	return svc.repo.UpdateStudent(ctx, stu)
}

func applyInput(stu Student, in StudentInput) Student {
	stu.PermanentID = in.PermanentID
	stu.Photo = nullString(in.Photo)
	stu.MatriculeBac = nullString(in.MatriculeBac)
	stu.NumeroTableBac = nullString(in.NumeroTableBac)
	stu.CampusID = in.CampusID
	stu.AcademicYearID = in.AcademicYearID
	stu.FormationID = in.FormationID
	stu.FiliereID = in.FiliereID
	stu.LevelID = in.LevelID
	stu.ClassID = in.ClassID
	stu.Status = in.Status
	stu.FirstName = in.FirstName
	stu.LastName = in.LastName
	stu.BirthDate = in.BirthDate
	stu.BirthPlace = in.BirthPlace
	stu.Gender = in.Gender
	stu.Phone = in.Phone
	stu.Email = nullString(in.Email)
	stu.Nationality = in.Nationality
	stu.EmergencyContactName = nullString(in.EmergencyContactName)
	stu.EmergencyContactPhone = nullString(in.EmergencyContactPhone)
	stu.TuitionAmount = in.TuitionAmount
	stu.IsExonerated = in.IsExonerated
	return stu
}

// Absences

func (svc *Service) CreateAbsence(ctx context.Context, scope core.Scope, in AbsenceInput) (Absence, error) {
	if _, err := svc.Get(ctx, scope, in.StudentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Absence{}, core.NewFieldsError(core.FieldError{Field: "student_id", Error: ErrNotFound.Error()})
		}
		return Absence{}, err
	}
	if err := svc.chain.CheckChain(ctx, catalog.Chain{AcademicYearID: in.AcademicYearID}); err != nil {
		return Absence{}, err
	}
	return svc.repo.CreateAbsence(ctx, Absence{
		ID:             uuid.NewString(),
		StudentID:      in.StudentID,
		AcademicYearID: in.AcademicYearID,
		Date:           in.Date,
		Hours:          in.Hours,
		Reason:         nullString(in.Reason),
		CreatedAt:      core.NowFunc().UTC(),
	})
}

func (svc *Service) QueryAbsences(ctx context.Context, scope core.Scope, filter AbsenceFilter) ([]Absence, error) {
	filter.CampusID = scope.Campus("")
	return svc.repo.QueryAbsences(ctx, filter)
}

func (svc *Service) DeleteAbsence(ctx context.Context, scope core.Scope, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrAbsenceNotFound
	}
	abs, err := svc.repo.GetAbsence(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Allows(abs.CampusID) {
		return ErrAbsenceNotFound
	}
	return svc.repo.DeleteAbsence(ctx, id)
}
