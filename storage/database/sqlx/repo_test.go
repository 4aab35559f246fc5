package sqlxrepos_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/grade"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/storage/database"
	sqlxrepos "github.com/supinter/ums/storage/database/sqlx"
	"github.com/supinter/ums/tests"
)

var founder = core.Scope{Unrestricted: true}

// prepareDB migrates the database at TEST_DATABASE_URL and empties it.
func prepareDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := database.OpenURL(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(`TRUNCATE campuses, users, academic_years, formations, filieres, levels, subjects,
		professors, transactions, archives CASCADE`)
	require.NoError(t, err)
	return db
}

type services struct {
	catalog  *catalog.Service
	students *student.Service
	grades   *grade.Service
	finance  *finance.Service
}

func newServices(db *sqlx.DB) services {
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db), catalogSvc)
	return services{
		catalog:  catalogSvc,
		students: studentSvc,
		grades:   grade.NewService(sqlxrepos.NewGradeRepository(db), studentSvc, catalogSvc),
		finance:  finance.NewService(sqlxrepos.NewFinanceRepository(db), studentSvc, catalogSvc),
	}
}

func TestCatalogRepository(t *testing.T) {
	db := prepareDB(t)
	svc := newServices(db)
	ctx := context.Background()
	c := testutil.SeedCatalog(t, svc.catalog)

	t.Run("one active academic year", func(t *testing.T) {
		next, err := svc.catalog.CreateAcademicYear(ctx, catalog.AcademicYearInput{
			Name: "2025-2026", StartDate: "2025-10-01", EndDate: "2026-07-31", IsActive: true,
		})
		require.NoError(t, err)
		assert.True(t, next.IsActive)

		prev, err := svc.catalog.GetAcademicYear(ctx, c.Year.ID)
		require.NoError(t, err)
		assert.False(t, prev.IsActive)
		assert.Equal(t, "2024-10-01", prev.StartDate.String)
	})

	t.Run("filiere links", func(t *testing.T) {
		filieres, err := svc.catalog.QueryFilieres(ctx, c.Formation.ID)
		require.NoError(t, err)
		require.Len(t, filieres, 1)
		assert.Equal(t, []string{c.Formation.ID}, filieres[0].FormationIDs)
	})

	t.Run("referenced records cannot be deleted", func(t *testing.T) {
		assert.Equal(t, core.ErrInUse, svc.catalog.DeleteCampus(ctx, c.Campus.ID))
		assert.NoError(t, svc.catalog.DeleteCampus(ctx, c.OtherCampus.ID))
		_, err := svc.catalog.GetCampus(ctx, c.OtherCampus.ID)
		assert.True(t, core.IsNotFound(err))
	})
}

func TestStudentRepository(t *testing.T) {
	db := prepareDB(t)
	svc := newServices(db)
	ctx := context.Background()
	c := testutil.SeedCatalog(t, svc.catalog)

	awa := testutil.CreateStudent(t, svc.students, c, "Awa", "Koné")
	yao := testutil.CreateStudent(t, svc.students, c, "Yao", "Kouassi")
	assert.NotEqual(t, awa.Matricule, yao.Matricule)
	assert.Equal(t, "L1 Info A", awa.ClassName)
	assert.Equal(t, "2004-03-15", awa.BirthDate)

	t.Run("tuition paid from transactions", func(t *testing.T) {
		for _, in := range []finance.TransactionInput{
			{Type: finance.TypeIncome, Category: student.TuitionCategory, Amount: 200000.25},
			{Type: finance.TypeIncome, Category: student.TuitionCategory, Amount: 50000.25},
			{Type: finance.TypeIncome, Category: "Inscription", Amount: 25000},
		} {
			in.Date = "2024-10-15"
			in.StudentID = awa.ID
			in.CampusID = c.Campus.ID
			in.AcademicYearID = c.Year.ID
			_, err := svc.finance.Create(ctx, founder, in)
			require.NoError(t, err)
		}
		got, err := svc.students.Get(ctx, founder, awa.ID)
		require.NoError(t, err)
		assert.Equal(t, 250000.5, got.TuitionPaid)
		assert.Equal(t, 249999.5, got.TuitionRemaining)
	})

	t.Run("grades upsert", func(t *testing.T) {
		value := 12.0
		in := grade.GradeInput{StudentID: yao.ID, SubjectID: c.Subject.ID, Semester: 1, AcademicYearID: c.Year.ID, Value: &value}
		first, err := svc.grades.BulkUpsert(ctx, founder, []grade.GradeInput{in})
		require.NoError(t, err)

		value = 17
		second, err := svc.grades.BulkUpsert(ctx, founder, []grade.GradeInput{in})
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, 17.0, second[0].Value)
		assert.Equal(t, "Algorithmique", second[0].SubjectName)
	})

	t.Run("delete cascades", func(t *testing.T) {
		arcRepo := sqlxrepos.NewArchiveRepository(db)
		_, err := arcRepo.CreateArchive(ctx, archive.Archive{
			ID:             uuid.NewString(),
			DocumentType:   archive.DocBulletin,
			StudentID:      yao.ID,
			StudentName:    null.StringFrom(yao.FullName()),
			AcademicYearID: c.Year.ID,
			CampusID:       c.Campus.ID,
			DownloadedBy:   "Agent",
			DownloadedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)

		require.NoError(t, svc.students.Delete(ctx, founder, yao.ID))
		grds, err := svc.grades.Query(ctx, founder, grade.QueryFilter{StudentID: yao.ID})
		require.NoError(t, err)
		assert.Empty(t, grds)
		_, err = svc.students.Get(ctx, founder, yao.ID)
		assert.True(t, core.IsNotFound(err))

		arcs, err := arcRepo.QueryArchives(ctx, archive.QueryFilter{StudentID: yao.ID})
		require.NoError(t, err)
		require.Len(t, arcs, 1)
		assert.Equal(t, "Yao Kouassi", arcs[0].StudentName.String)
	})
}

func TestUserRepository(t *testing.T) {
	db := prepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)
	ctx := context.Background()
	c := testutil.SeedCatalog(t, catalog.NewService(sqlxrepos.NewCatalogRepository(db)))

	usr := testutil.CreateUser(t, repo, "Awa Koné", "awa@supinter.ci", "pwd", user.RoleDirector, c.Campus.ID, true)
	got, err := repo.GetUser(ctx, user.GetFilter{Email: "awa@supinter.ci"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, c.Campus.Name, got.CampusName.String)

	found, err := repo.CampusExists(ctx, c.Campus.ID)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = repo.CreateUser(ctx, usr)
	assert.Equal(t, core.ErrDuplicate, err)

	users, err := repo.QueryUsers(ctx, user.QueryFilter{Search: "SUPINTER"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, repo.DeleteUser(ctx, usr.ID))
	_, err = repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	assert.True(t, core.IsNotFound(err))
}
