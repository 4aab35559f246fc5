package staff

import (
	"context"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
)

var (
	// errors
	ErrProfessorNotFound = core.NewNotFoundError("Professeur non trouvé")
	ErrHoursNotFound     = core.NewNotFoundError("Heures non trouvées")
	ErrStaffNotFound     = core.NewNotFoundError("Personnel non trouvé")
)

type (
	Repository interface {
		CreateProfessor(ctx context.Context, prof Professor) (Professor, error)
		QueryProfessors(ctx context.Context, filter ProfessorFilter) ([]Professor, error)
		GetProfessor(ctx context.Context, id string) (Professor, error)
		UpdateProfessor(ctx context.Context, prof Professor) (Professor, error)
		DeleteProfessor(ctx context.Context, id string) error

		// Hours are returned with their professor's name and campus.
		CreateHours(ctx context.Context, hours Hours) (Hours, error)
		QueryHours(ctx context.Context, filter HoursFilter) ([]Hours, error)
		GetHours(ctx context.Context, id string) (Hours, error)
		UpdateHours(ctx context.Context, hours Hours) (Hours, error)
		DeleteHours(ctx context.Context, id string) error

		CreateStaff(ctx context.Context, member Staff) (Staff, error)
		QueryStaff(ctx context.Context, filter StaffFilter) ([]Staff, error)
		GetStaff(ctx context.Context, id string) (Staff, error)
		UpdateStaff(ctx context.Context, member Staff) (Staff, error)
		DeleteStaff(ctx context.Context, id string) error
	}

	ChainChecker interface {
		CheckChain(ctx context.Context, chain catalog.Chain) error
	}

	Service struct {
		repo  Repository
		chain ChainChecker
	}
)

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

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Professors

func (svc *Service) CreateProfessor(ctx context.Context, scope core.Scope, in ProfessorInput) (Professor, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID}); err != nil {
		return Professor{}, err
	}
	return svc.repo.CreateProfessor(ctx, professorFromInput(Professor{
		ID:        uuid.NewString(),
		CreatedAt: core.NowFunc().UTC(),
	}, in))
}

func (svc *Service) QueryProfessors(ctx context.Context, scope core.Scope, filter ProfessorFilter) ([]Professor, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryProfessors(ctx, filter)
}

func (svc *Service) GetProfessor(ctx context.Context, scope core.Scope, id string) (Professor, error) {
	if !isUUID(id) {
		return Professor{}, ErrProfessorNotFound
	}
	prof, err := svc.repo.GetProfessor(ctx, id)
	if err != nil {
		return Professor{}, err
	}
	if !scope.Allows(prof.CampusID) {
		return Professor{}, ErrProfessorNotFound
	}
	return prof, nil
}

func (svc *Service) UpdateProfessor(ctx context.Context, scope core.Scope, id string, in ProfessorInput) (Professor, error) {
	prof, err := svc.GetProfessor(ctx, scope, id)
	if err != nil {
		return Professor{}, err
	}
	in.CampusID = scope.Campus(in.CampusID)
	if err = svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID}); err != nil {
		return Professor{}, err
	}
	return svc.repo.UpdateProfessor(ctx, professorFromInput(prof, in))
}

func (svc *Service) DeleteProfessor(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.GetProfessor(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteProfessor(ctx, id)
}

func professorFromInput(prof Professor, in ProfessorInput) Professor {
	prof.FirstName = in.FirstName
	prof.LastName = in.LastName
	prof.Phone = in.Phone
	prof.Email = nullString(in.Email)
	prof.Specialty = in.Specialty
	prof.CampusID = in.CampusID
	return prof
}

// Hours

// checkHours returns the professor of the session once its references are checked.
func (svc *Service) checkHours(ctx context.Context, scope core.Scope, in HoursInput) (Professor, error) {
	prof, err := svc.GetProfessor(ctx, scope, in.ProfessorID)
	if err != nil {
		if errors.Cause(err) == ErrProfessorNotFound {
			return Professor{}, core.NewFieldsError(core.FieldError{Field: "professor_id", Error: ErrProfessorNotFound.Error()})
		}
		return Professor{}, err
	}
	return prof, svc.chain.CheckChain(ctx, catalog.Chain{
		FormationID:    in.FormationID,
		FiliereID:      in.FiliereID,
		LevelID:        in.LevelID,
		ClassID:        in.ClassID,
		AcademicYearID: in.AcademicYearID,
		CampusID:       prof.CampusID,
	})
}

// withTotals reloads the session group of `hours` to fill its totals.
func (svc *Service) withTotals(ctx context.Context, hours Hours) (Hours, error) {
	group, err := svc.repo.QueryHours(ctx, HoursFilter{
		ProfessorID:    hours.ProfessorID,
		AcademicYearID: hours.AcademicYearID,
		ClassID:        hours.ClassID,
	})
	if err != nil {
		return Hours{}, errors.Wrap(err, "querying hours group")
	}
	ComputeTotals(group)
	for _, h := range group {
		if h.ID == hours.ID {
			return h, nil
		}
	}
	return hours, nil
}

func (svc *Service) CreateHours(ctx context.Context, scope core.Scope, in HoursInput) (Hours, error) {
	prof, err := svc.checkHours(ctx, scope, in)
	if err != nil {
		return Hours{}, err
	}
	hours, err := svc.repo.CreateHours(ctx, hoursFromInput(Hours{
		ID:        uuid.NewString(),
		CreatedAt: core.NowFunc().UTC(),
	}, prof, in))
	if err != nil {
		return Hours{}, errors.Wrap(err, "creating hours")
	}
	return svc.withTotals(ctx, hours)
}

func (svc *Service) QueryHours(ctx context.Context, scope core.Scope, filter HoursFilter) ([]Hours, error) {
	filter.CampusID = scope.Campus("")
	hours, err := svc.repo.QueryHours(ctx, filter)
	if err != nil {
		return nil, err
	}
	ComputeTotals(hours)
	return hours, nil
}

func (svc *Service) GetHours(ctx context.Context, scope core.Scope, id string) (Hours, error) {
	if !isUUID(id) {
		return Hours{}, ErrHoursNotFound
	}
	hours, err := svc.repo.GetHours(ctx, id)
	if err != nil {
		return Hours{}, err
	}
	if !scope.Allows(hours.CampusID) {
		return Hours{}, ErrHoursNotFound
	}
	return svc.withTotals(ctx, hours)
}

func (svc *Service) UpdateHours(ctx context.Context, scope core.Scope, id string, in HoursInput) (Hours, error) {
	hours, err := svc.GetHours(ctx, scope, id)
	if err != nil {
		return Hours{}, err
	}
	prof, err := svc.checkHours(ctx, scope, in)
	if err != nil {
		return Hours{}, err
	}
	if hours, err = svc.repo.UpdateHours(ctx, hoursFromInput(hours, prof, in)); err != nil {
		return Hours{}, errors.Wrap(err, "updating hours")
	}
	return svc.withTotals(ctx, hours)
}

func (svc *Service) DeleteHours(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.GetHours(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteHours(ctx, id)
}

func hoursFromInput(hours Hours, prof Professor, in HoursInput) Hours {
	hours.ProfessorID = prof.ID
	hours.ProfessorName = prof.FullName()
	hours.CampusID = prof.CampusID
	hours.AcademicYearID = in.AcademicYearID
	hours.FormationID = in.FormationID
	hours.FiliereID = in.FiliereID
	hours.LevelID = in.LevelID
	hours.ClassID = in.ClassID
	hours.TotalHoursPlanned = in.TotalHoursPlanned
	hours.Date = in.Date
	hours.StartTime = in.StartTime
	hours.EndTime = in.EndTime
	hours.HoursDone = in.HoursDone
	return hours
}

// Staff

func (svc *Service) CreateStaff(ctx context.Context, scope core.Scope, in StaffInput) (Staff, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID, AcademicYearID: in.AcademicYearID}); err != nil {
		return Staff{}, err
	}
	return svc.repo.CreateStaff(ctx, staffFromInput(Staff{
		ID:        uuid.NewString(),
		CreatedAt: core.NowFunc().UTC(),
	}, in))
}

func (svc *Service) QueryStaff(ctx context.Context, scope core.Scope, filter StaffFilter) ([]Staff, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryStaff(ctx, filter)
}

func (svc *Service) GetStaff(ctx context.Context, scope core.Scope, id string) (Staff, error) {
	if !isUUID(id) {
		return Staff{}, ErrStaffNotFound
	}
	member, err := svc.repo.GetStaff(ctx, id)
	if err != nil {
		return Staff{}, err
	}
	if !scope.Allows(member.CampusID) {
		return Staff{}, ErrStaffNotFound
	}
	return member, nil
}

func (svc *Service) UpdateStaff(ctx context.Context, scope core.Scope, id string, in StaffInput) (Staff, error) {
	member, err := svc.GetStaff(ctx, scope, id)
	if err != nil {
		return Staff{}, err
	}
	in.CampusID = scope.Campus(in.CampusID)
	if err = svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID, AcademicYearID: in.AcademicYearID}); err != nil {
		return Staff{}, err
	}
	return svc.repo.UpdateStaff(ctx, staffFromInput(member, in))
}

func (svc *Service) DeleteStaff(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.GetStaff(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteStaff(ctx, id)
}

func staffFromInput(member Staff, in StaffInput) Staff {
	member.FirstName = in.FirstName
	member.LastName = in.LastName
	member.BirthDate = in.BirthDate
	member.BirthPlace = in.BirthPlace
	member.Function = in.Function
	member.Phone = nullString(in.Phone)
	member.CampusID = in.CampusID
	member.AcademicYearID = in.AcademicYearID
	member.Photo = nullString(in.Photo)
	return member
}
