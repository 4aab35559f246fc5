package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/tests"
)

func Test_dashboardApi_stats(t *testing.T) {
	c := resetDB(t)
	ctx := context.Background()

	order := 2
	l2, err := deps.CatalogSvc.CreateLevel(ctx, catalog.LevelInput{Name: "L2", Order: &order})
	require.NoError(t, err)
	l2Class, err := deps.CatalogSvc.CreateClass(ctx, founderScope, catalog.ClassInput{
		Name:           "L2 Info A",
		Code:           "L2-INF-A",
		FormationID:    c.Formation.ID,
		FiliereID:      c.Filiere.ID,
		LevelID:        l2.ID,
		CampusID:       c.Campus.ID,
		AcademicYearID: c.Year.ID,
	})
	require.NoError(t, err)
	testutil.CreateStudent(t, deps.StudentSvc, c, "Awa", "Koné")
	testutil.CreateStudent(t, deps.StudentSvc, c, "Yao", "Kouassi")
	in := testutil.StudentInput(c, "Ali", "Bamba")
	in.LevelID = l2.ID
	in.ClassID = l2Class.ID
	_, err = deps.StudentSvc.Create(ctx, founderScope, in)
	require.NoError(t, err)

	_, err = deps.StaffSvc.CreateProfessor(ctx, founderScope, staff.ProfessorInput{
		FirstName: "Ibrahim", LastName: "Touré", Phone: "0505", Specialty: "Maths", CampusID: c.Campus.ID,
	})
	require.NoError(t, err)
	for _, tx := range []finance.TransactionInput{
		{Date: "2024-10-02", Type: finance.TypeIncome, Category: "Scolarité", Amount: 300000, CampusID: c.Campus.ID},
		{Date: "2024-10-20", Type: finance.TypeExpense, Category: "Salaires", Amount: 120000, CampusID: c.Campus.ID},
		{Date: "2024-10-21", Type: finance.TypeExpense, Category: "Loyer", Amount: 50000, CampusID: c.OtherCampus.ID},
	} {
		tx.AcademicYearID = c.Year.ID
		_, err = deps.FinanceSvc.Create(ctx, founderScope, tx)
		require.NoError(t, err)
	}

	type groupCount map[string]interface{}
	type stats struct {
		TotalStudents       int          `json:"total_students"`
		TotalProfessors     int          `json:"total_professors"`
		TotalClasses        int          `json:"total_classes"`
		TotalFormations     int          `json:"total_formations"`
		TotalFilieres       int          `json:"total_filieres"`
		StudentsByFormation []groupCount `json:"students_by_formation"`
		StudentsByFiliere   []groupCount `json:"students_by_filiere"`
		StudentsByLevel     []groupCount `json:"students_by_level"`
		TotalIncome         float64      `json:"total_income"`
		TotalExpenses       float64      `json:"total_expenses"`
		Balance             float64      `json:"balance"`
	}
	get := func(t *testing.T, token, query string) stats {
		rec := do(http.MethodGet, "/api/dashboard/stats"+query, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s stats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		return s
	}

	t.Run("campus director", func(t *testing.T) {
		s := get(t, getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID)), "")
		assert.Equal(t, 3, s.TotalStudents)
		assert.Equal(t, 1, s.TotalProfessors)
		assert.Equal(t, 2, s.TotalClasses)
		assert.Equal(t, 1, s.TotalFormations)
		assert.Equal(t, 1, s.TotalFilieres)
		assert.Equal(t, []groupCount{
			{"formation_id": c.Formation.ID, "formation_name": "Licence", "count": 3.0},
		}, s.StudentsByFormation)
		assert.Equal(t, []groupCount{
			{"filiere_id": c.Filiere.ID, "filiere_name": "Informatique", "count": 3.0},
		}, s.StudentsByFiliere)
		assert.Equal(t, []groupCount{
			{"level_id": c.Level.ID, "level_name": "L1", "count": 2.0},
			{"level_id": l2.ID, "level_name": "L2", "count": 1.0},
		}, s.StudentsByLevel)
		assert.Equal(t, 300000.0, s.TotalIncome)
		assert.Equal(t, 120000.0, s.TotalExpenses)
		assert.Equal(t, 180000.0, s.Balance)
	})

	t.Run("other campus", func(t *testing.T) {
		s := get(t, getToken(t, createStaffUser(t, user.RoleDirector, c.OtherCampus.ID)), "?campus_id="+c.Campus.ID)
		assert.Zero(t, s.TotalStudents)
		assert.Zero(t, s.TotalProfessors)
		assert.Empty(t, s.StudentsByLevel)
		assert.Equal(t, 50000.0, s.TotalExpenses)
		assert.Equal(t, -50000.0, s.Balance)
	})

	t.Run("founder sees every campus", func(t *testing.T) {
		founder := getToken(t, createFounder(t))
		s := get(t, founder, "")
		assert.Equal(t, 3, s.TotalStudents)
		assert.Equal(t, 170000.0, s.TotalExpenses)

		s = get(t, founder, "?campus_id="+c.OtherCampus.ID)
		assert.Zero(t, s.TotalStudents)
		assert.Equal(t, 50000.0, s.TotalExpenses)
	})
}
