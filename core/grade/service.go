package grade

import (
	"context"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/student"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("Note non trouvée")

	errTextDuplicate  = "une note existe déjà pour cette matière, ce semestre et cette année"
	errTextUnknown    = "élément introuvable"
	errTextCurriculum = "la matière ne fait pas partie du cursus de l'étudiant"
)

type (
	Repository interface {
		// CreateGrade and UpdateGrade return core.ErrDuplicate when the student
		// already has a grade for the subject, semester and academic year.
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		QueryGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		GetGrade(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, grd Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
		// UpsertGrades stores every grade in one transaction, replacing the value
		// of the existing grade with the same student, subject, semester and year.
		UpsertGrades(ctx context.Context, grds []Grade) ([]Grade, error)
	}

	StudentService interface {
		Query(ctx context.Context, scope core.Scope, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
		Get(ctx context.Context, scope core.Scope, id string) (student.Student, error)
	}

	CatalogService interface {
		CheckChain(ctx context.Context, chain catalog.Chain) error
		GetClass(ctx context.Context, scope core.Scope, id string) (catalog.Class, error)
		GetSubject(ctx context.Context, id string) (catalog.Subject, error)
		QuerySubjects(ctx context.Context, filter catalog.SubjectFilter) ([]catalog.Subject, error)
	}

	Service struct {
		repo     Repository
		students StudentService
		catalog  CatalogService
	}
)

func NewService(repo Repository, students StudentService, catalogSvc CatalogService) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(catalogSvc, "catalogSvc"),
	).CheckAndPanic()

	return &Service{repo: repo, students: students, catalog: catalogSvc}
}

// check verifies the references of `in` and returns the graded student and subject.
func (svc *Service) check(ctx context.Context, scope core.Scope, in GradeInput) (student.Student, catalog.Subject, error) {
	var fldErrs []core.FieldError

	stu, err := svc.students.Get(ctx, scope, in.StudentID)
	if core.IsNotFound(err) {
		fldErrs = append(fldErrs, core.FieldError{Field: "student_id", Error: errTextUnknown})
	} else if err != nil {
		return student.Student{}, catalog.Subject{}, errors.Wrap(err, "getting student")
	}
	sub, err := svc.catalog.GetSubject(ctx, in.SubjectID)
	if core.IsNotFound(err) {
		fldErrs = append(fldErrs, core.FieldError{Field: "subject_id", Error: errTextUnknown})
	} else if err != nil {
		return student.Student{}, catalog.Subject{}, errors.Wrap(err, "getting subject")
	}
	if len(fldErrs) > 0 {
		return student.Student{}, catalog.Subject{}, core.NewFieldsError(fldErrs...)
	}
	if sub.FormationID != stu.FormationID || sub.FiliereID != stu.FiliereID || sub.LevelID != stu.LevelID {
		return student.Student{}, catalog.Subject{}, core.NewFieldsError(core.FieldError{Field: "subject_id", Error: errTextCurriculum})
	}

	if err = svc.catalog.CheckChain(ctx, catalog.Chain{AcademicYearID: in.AcademicYearID}); err != nil {
		return student.Student{}, catalog.Subject{}, err
	}
	return stu, sub, nil
}

func duplicateError() error {
	return core.NewFieldsError(core.FieldError{Field: "subject_id", Error: errTextDuplicate})
}

func (svc *Service) Create(ctx context.Context, scope core.Scope, in GradeInput) (Grade, error) {
	stu, sub, err := svc.check(ctx, scope, in)
	if err != nil {
		return Grade{}, err
	}
	grd, err := svc.repo.CreateGrade(ctx, fromInput(Grade{
		ID:        uuid.NewString(),
		CreatedAt: core.NowFunc().UTC(),
	}, stu, sub, in))
	if errors.Cause(err) == core.ErrDuplicate {
		return Grade{}, duplicateError()
	}
	return grd, err
}

func (svc *Service) Query(ctx context.Context, scope core.Scope, filter QueryFilter) ([]Grade, error) {
	filter.CampusID = scope.Campus("")
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, scope core.Scope, id string) (Grade, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Grade{}, ErrNotFound
	}
	grd, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if !scope.Allows(grd.CampusID) {
		return Grade{}, ErrNotFound
	}
	return grd, nil
}

func (svc *Service) Update(ctx context.Context, scope core.Scope, id string, in GradeInput) (Grade, error) {
	grd, err := svc.Get(ctx, scope, id)
	if err != nil {
		return Grade{}, err
	}
	stu, sub, err := svc.check(ctx, scope, in)
	if err != nil {
		return Grade{}, err
	}
	grd, err = svc.repo.UpdateGrade(ctx, fromInput(grd, stu, sub, in))
	if errors.Cause(err) == core.ErrDuplicate {
		return Grade{}, duplicateError()
	}
	return grd, err
}

func (svc *Service) Delete(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.Get(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteGrade(ctx, id)
}

// BulkUpsert saves a grade entry grid. Nothing is stored unless every input is valid.
func (svc *Service) BulkUpsert(ctx context.Context, scope core.Scope, ins []GradeInput) ([]Grade, error) {
	now := core.NowFunc().UTC()
	grds := make([]Grade, 0, len(ins))
	for _, in := range ins {
		stu, sub, err := svc.check(ctx, scope, in)
		if err != nil {
			return nil, err
		}
		grds = append(grds, fromInput(Grade{ID: uuid.NewString(), CreatedAt: now}, stu, sub, in))
	}
	if len(grds) == 0 {
		return []Grade{}, nil
	}
	return svc.repo.UpsertGrades(ctx, grds)
}

// Averages ranks the students of a class by their weighted average for the semester.
func (svc *Service) Averages(ctx context.Context, scope core.Scope, q AveragesQuery) ([]StudentAverage, error) {
	students, err := svc.students.Query(ctx, scope, student.QueryFilter{
		ClassID:        q.ClassID,
		AcademicYearID: q.AcademicYearID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		return []StudentAverage{}, nil
	}

	ids := make([]string, len(students))
	for i, stu := range students {
		ids[i] = stu.ID
	}
	grds, err := svc.repo.QueryGrades(ctx, QueryFilter{
		AcademicYearID: q.AcademicYearID,
		Semester:       q.Semester,
		StudentIDs:     ids,
		CampusID:       scope.Campus(""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	byStudent := make(map[string][]Grade)
	for _, g := range grds {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	cls, err := svc.catalog.GetClass(ctx, scope, q.ClassID)
	if err != nil {
		return nil, errors.Wrap(err, "getting class")
	}
	subjects, err := svc.catalog.QuerySubjects(ctx, catalog.SubjectFilter{
		FormationID: cls.FormationID,
		FiliereID:   cls.FiliereID,
		LevelID:     cls.LevelID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	coefficients := make(map[string]float64, len(subjects))
	for _, sub := range subjects {
		coefficients[sub.ID] = sub.Coefficient
	}

	avgs := make([]StudentAverage, len(students))
	for i, stu := range students {
		avg, graded := WeightedAverage(byStudent[stu.ID], coefficients)
		avgs[i] = StudentAverage{
			StudentID:      stu.ID,
			Matricule:      stu.Matricule,
			Name:           stu.FullName(),
			Average:        avg,
			GradedSubjects: graded,
		}
	}
	RankAverages(avgs)
	return avgs, nil
}

// Bulletin lists the subjects of the student's curriculum with their grade for
// the semester, the weighted average and the earned credits.
func (svc *Service) Bulletin(ctx context.Context, scope core.Scope, studentID string, q BulletinQuery) (Bulletin, error) {
	stu, err := svc.students.Get(ctx, scope, studentID)
	if err != nil {
		return Bulletin{}, err
	}
	subjects, err := svc.catalog.QuerySubjects(ctx, catalog.SubjectFilter{
		FormationID: stu.FormationID,
		FiliereID:   stu.FiliereID,
		LevelID:     stu.LevelID,
	})
	if err != nil {
		return Bulletin{}, errors.Wrap(err, "querying subjects")
	}
	grds, err := svc.repo.QueryGrades(ctx, QueryFilter{
		StudentID:      stu.ID,
		AcademicYearID: q.AcademicYearID,
		Semester:       q.Semester,
	})
	if err != nil {
		return Bulletin{}, errors.Wrap(err, "querying grades")
	}
	bySubject := make(map[string]Grade, len(grds))
	for _, g := range grds {
		bySubject[g.SubjectID] = g
	}

	blt := Bulletin{
		StudentID:      stu.ID,
		Matricule:      stu.Matricule,
		StudentName:    stu.FullName(),
		FormationName:  stu.FormationName,
		FiliereName:    stu.FiliereName,
		LevelName:      stu.LevelName,
		ClassName:      stu.ClassName,
		AcademicYearID: q.AcademicYearID,
		Semester:       q.Semester,
		Subjects:       make([]BulletinLine, 0, len(subjects)),
	}
	coefficients := make(map[string]float64, len(subjects))
	graded := make([]Grade, 0, len(subjects))
	for _, sub := range subjects {
		line := BulletinLine{
			SubjectID:   sub.ID,
			SubjectName: sub.Name,
			SubjectCode: sub.Code,
			Coefficient: sub.Coefficient,
			Credits:     sub.Credits,
		}
		blt.CreditsTotal += sub.Credits
		coefficients[sub.ID] = sub.Coefficient
		if g, ok := bySubject[sub.ID]; ok {
			line.Grade = null.Float64From(g.Value)
			line.Points = null.Float64From(core.Round2(g.Value * sub.Coefficient))
			if g.Value >= PassingValue {
				blt.CreditsEarned += sub.Credits
			}
			graded = append(graded, g)
		}
		blt.Subjects = append(blt.Subjects, line)
	}
	blt.Average, _ = WeightedAverage(graded, coefficients)
	return blt, nil
}

func fromInput(grd Grade, stu student.Student, sub catalog.Subject, in GradeInput) Grade {
	grd.StudentID = stu.ID
	grd.SubjectID = sub.ID
	grd.SubjectName = sub.Name
	grd.Semester = in.Semester
	grd.AcademicYearID = in.AcademicYearID
	grd.Value = *in.Value
	grd.CampusID = stu.CampusID
	return grd
}
