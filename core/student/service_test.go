package student

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
)

type chainStub struct{ err error }

func (c chainStub) CheckChain(context.Context, catalog.Chain) error { return c.err }

// repoStub issues matricules from a fixed set of taken ones.
type repoStub struct {
	Repository
	taken   map[string]bool
	counted string
}

func (r *repoStub) CountMatricules(_ context.Context, prefix string) (int, error) {
	r.counted = prefix
	return len(r.taken), nil
}

func (r *repoStub) CreateStudent(_ context.Context, stu Student) (Student, error) {
	if r.taken[stu.Matricule] {
		return Student{}, core.ErrDuplicate
	}
	r.taken[stu.Matricule] = true
	return stu, nil
}

func TestService_Create_matricule(t *testing.T) {
	core.NowFunc = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()
	ctx := context.Background()
	scope := core.Scope{CampusID: "campus-1"}

	t.Run("next number of the year", func(t *testing.T) {
		repo := &repoStub{taken: map[string]bool{"ESI20250001": true, "ESI20250002": true}}
		stu, err := NewService(repo, chainStub{}).Create(ctx, scope, StudentInput{CampusID: "campus-2", FirstName: "Awa"})
		require.NoError(t, err)
		assert.Equal(t, "ESI2025", repo.counted)
		assert.Equal(t, "ESI20250003", stu.Matricule)
		assert.Equal(t, "campus-1", stu.CampusID)
	})

	t.Run("skips numbers taken concurrently", func(t *testing.T) {
		repo := &repoStub{taken: map[string]bool{"ESI20250001": true, "ESI20250002": true}}
		repo.taken["ESI20250004"] = true // counted as 3, so 0004 then 0005 are tried
		stu, err := NewService(repo, chainStub{}).Create(ctx, scope, StudentInput{})
		require.NoError(t, err)
		assert.Equal(t, "ESI20250005", stu.Matricule)
	})

	t.Run("gives up", func(t *testing.T) {
		repo := &repoStub{taken: map[string]bool{}}
		for i := 1; i <= maxMatriculeAttempts; i++ {
			repo.taken[fmt.Sprintf("ESI2025%04d", i+maxMatriculeAttempts)] = true
		}
		// count reports the taken ones, so every attempt collides
		_, err := NewService(repo, chainStub{}).Create(ctx, scope, StudentInput{})
		assert.Equal(t, errMatriculeExhausted, err)
	})

	t.Run("chain error", func(t *testing.T) {
		chainErr := core.NewFieldsError(core.FieldError{Field: "class_id", Error: "la classe ne correspond pas à la sélection"})
		_, err := NewService(&repoStub{taken: map[string]bool{}}, chainStub{err: chainErr}).Create(ctx, scope, StudentInput{})
		assert.Equal(t, chainErr, err)
	})
}

func TestStudent_SetTuitionPaid(t *testing.T) {
	stu := Student{TuitionAmount: 500000}
	stu.SetTuitionPaid(250000.504)
	assert.Equal(t, 250000.5, stu.TuitionPaid)
	assert.Equal(t, 249999.5, stu.TuitionRemaining)

	stu.SetTuitionPaid(600000)
	assert.Equal(t, 0.0, stu.TuitionRemaining)

	stu = Student{TuitionAmount: 500000, IsExonerated: true}
	stu.SetTuitionPaid(1000)
	assert.Equal(t, 1000.0, stu.TuitionPaid)
	assert.Equal(t, 0.0, stu.TuitionRemaining)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Student{
		{
			Matricule: "ESI20250001", LastName: "Koné", FirstName: "Awa",
			FormationName: "Licence", FiliereName: "Informatique", LevelName: "L1", ClassName: "L1 Info A",
			Phone: "0700000000", Email: null.StringFrom("awa@mail.ci"),
		},
		{Matricule: "ESI20250002", LastName: "Kouassi; Jr", FirstName: "Yao"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"Matricule;Nom;Prénom;Formation;Filière;Niveau;Classe;Téléphone;Email\n"+
			"ESI20250001;Koné;Awa;Licence;Informatique;L1;L1 Info A;0700000000;awa@mail.ci\n"+
			"ESI20250002;\"Kouassi; Jr\";Yao;;;;;;\n",
		buf.String(),
	)
}

func TestExportFilename(t *testing.T) {
	core.NowFunc = func() time.Time { return time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()
	assert.Equal(t, "etudiants_2025-01-31.csv", ExportFilename())
}
