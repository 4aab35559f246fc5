package archive

import (
	"context"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/student"
)

var errTextUnknown = "élément introuvable"

type (
	Repository interface {
		CreateArchive(ctx context.Context, arc Archive) (Archive, error)
		// QueryArchives returns the matching archives, most recent download first.
		QueryArchives(ctx context.Context, filter QueryFilter) ([]Archive, error)
	}

	StudentGetter interface {
		Get(ctx context.Context, scope core.Scope, id string) (student.Student, error)
	}

	StaffGetter interface {
		GetStaff(ctx context.Context, scope core.Scope, id string) (staff.Staff, error)
	}

	ChainChecker interface {
		CheckChain(ctx context.Context, chain catalog.Chain) error
	}

	Service struct {
		repo     Repository
		students StudentGetter
		staff    StaffGetter
		chain    ChainChecker
	}
)

func NewService(repo Repository, students StudentGetter, staffSvc StaffGetter, chain ChainChecker) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(staffSvc, "staffSvc"),
		vala.IsNotNil(chain, "chain"),
	).CheckAndPanic()

	return &Service{repo: repo, students: students, staff: staffSvc, chain: chain}
}

// Create logs a document download made by `downloader` now.
func (svc *Service) Create(ctx context.Context, scope core.Scope, downloader string, in ArchiveInput) (Archive, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID, AcademicYearID: in.AcademicYearID}); err != nil {
		return Archive{}, err
	}

	name, err := svc.holderName(ctx, scope, in)
	if err != nil {
		return Archive{}, err
	}
	if in.DownloadedBy == "" {
		in.DownloadedBy = downloader
	}
	return svc.repo.CreateArchive(ctx, Archive{
		ID:             uuid.NewString(),
		DocumentType:   in.DocumentType,
		StudentID:      in.StudentID,
		StudentName:    null.StringFrom(name),
		AcademicYearID: in.AcademicYearID,
		CampusID:       in.CampusID,
		DownloadedBy:   in.DownloadedBy,
		DownloadedAt:   core.NowFunc().UTC(),
	})
}

// holderName returns the name of the document holder: a staff member for staff cards, a student otherwise.
func (svc *Service) holderName(ctx context.Context, scope core.Scope, in ArchiveInput) (string, error) {
	var (
		name string
		err  error
	)
	if in.DocumentType == DocStaffCard {
		var member staff.Staff
		if member, err = svc.staff.GetStaff(ctx, scope, in.StudentID); err == nil {
			name = member.FullName()
		}
	} else {
		var stu student.Student
		if stu, err = svc.students.Get(ctx, scope, in.StudentID); err == nil {
			name = stu.FullName()
		}
	}
	if core.IsNotFound(err) {
		return "", core.NewFieldsError(core.FieldError{Field: "student_id", Error: errTextUnknown})
	}
	return name, errors.Wrap(err, "getting document holder")
}

func (svc *Service) Query(ctx context.Context, scope core.Scope, filter QueryFilter) ([]Archive, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryArchives(ctx, filter)
}

func (svc *Service) DocumentTypes() []DocumentType {
	dts := make([]DocumentType, len(DocumentTypes))
	copy(dts, DocumentTypes)
	return dts
}
