package grade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/student"
)

type studentStub struct{ students []student.Student }

func (s studentStub) Query(context.Context, core.Scope, student.QueryFilter, ...core.DBOrdering) ([]student.Student, error) {
	return s.students, nil
}

func (s studentStub) Get(_ context.Context, _ core.Scope, id string) (student.Student, error) {
	for _, stu := range s.students {
		if stu.ID == id {
			return stu, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

type catalogStub struct {
	class    catalog.Class
	subjects []catalog.Subject
}

func (c catalogStub) CheckChain(context.Context, catalog.Chain) error { return nil }

func (c catalogStub) GetClass(context.Context, core.Scope, string) (catalog.Class, error) {
	return c.class, nil
}

func (c catalogStub) GetSubject(_ context.Context, id string) (catalog.Subject, error) {
	for _, sub := range c.subjects {
		if sub.ID == id {
			return sub, nil
		}
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (c catalogStub) QuerySubjects(_ context.Context, f catalog.SubjectFilter) ([]catalog.Subject, error) {
	var subs []catalog.Subject
	for _, sub := range c.subjects {
		if sub.FormationID == f.FormationID && sub.FiliereID == f.FiliereID && sub.LevelID == f.LevelID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

type gradeRepoStub struct {
	Repository
	grades []Grade
}

func (r gradeRepoStub) QueryGrades(context.Context, QueryFilter) ([]Grade, error) {
	return r.grades, nil
}

func newStubService(grades ...Grade) *Service {
	stu := student.Student{ID: "s1", Matricule: "ESI20250001", FirstName: "Awa", LastName: "Koné", FormationID: "lic", FiliereID: "inf", LevelID: "l1"}
	return NewService(
		gradeRepoStub{grades: grades},
		studentStub{students: []student.Student{stu}},
		catalogStub{
			class: catalog.Class{ID: "cls", FormationID: "lic", FiliereID: "inf", LevelID: "l1"},
			subjects: []catalog.Subject{
				{ID: "algo", Coefficient: 2, Credits: 3, FormationID: "lic", FiliereID: "inf", LevelID: "l1"},
				{ID: "res", Coefficient: 1, Credits: 2, FormationID: "lic", FiliereID: "inf", LevelID: "l2"},
			},
		},
	)
}

func TestService_Averages_classCurriculum(t *testing.T) {
	// the "res" grade predates a level change and is not part of the class curriculum
	svc := newStubService(
		Grade{StudentID: "s1", SubjectID: "algo", Value: 16},
		Grade{StudentID: "s1", SubjectID: "res", Value: 1},
	)
	ctx := context.Background()
	scope := core.Scope{Unrestricted: true}

	avgs, err := svc.Averages(ctx, scope, AveragesQuery{ClassID: "cls", Semester: 1})
	require.NoError(t, err)
	require.Len(t, avgs, 1)
	assert.Equal(t, null.Float64From(16), avgs[0].Average)
	assert.Equal(t, 1, avgs[0].GradedSubjects)

	blt, err := svc.Bulletin(ctx, scope, "s1", BulletinQuery{Semester: 1})
	require.NoError(t, err)
	assert.Equal(t, avgs[0].Average, blt.Average)
}

func TestService_Create_curriculum(t *testing.T) {
	svc := newStubService()
	value := 12.0
	_, err := svc.Create(context.Background(), core.Scope{Unrestricted: true}, GradeInput{
		StudentID: "s1", SubjectID: "res", Semester: 1, Value: &value,
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []core.FieldError{{Field: "subject_id", Error: errTextCurriculum}}, vErr.Fields)
}
