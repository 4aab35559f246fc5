package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/grade"
)

const selectGrades = `
SELECT g.id, g.student_id, g.subject_id, su.name AS subject_name, g.semester, g.academic_year_id, g.value,
       st.campus_id, g.created_at
FROM grades g
JOIN subjects su ON su.id = g.subject_id
JOIN students st ON st.id = g.student_id`

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	const q = `
INSERT INTO grades (id, student_id, subject_id, semester, academic_year_id, value, created_at)
VALUES (:id, :student_id, :subject_id, :semester, :academic_year_id, :value, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, grd); err != nil {
		return grade.Grade{}, writeErr(err, "inserting grade")
	}
	return repo.GetGrade(ctx, grd.ID)
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	var cond conditions
	cond.eq("g.student_id", filter.StudentID)
	cond.eq("g.academic_year_id", filter.AcademicYearID)
	cond.eq("g.subject_id", filter.SubjectID)
	cond.eq("st.campus_id", filter.CampusID)
	if filter.Semester != 0 {
		cond.add("g.semester = ?", filter.Semester)
	}
	if filter.StudentIDs != nil {
		if len(filter.StudentIDs) == 0 {
			return []grade.Grade{}, nil
		}
		cond.add("g.student_id IN (?)", filter.StudentIDs)
	}

	q, args, err := sqlx.In(selectGrades+cond.String()+` ORDER BY g.semester, su.name`, cond.args...)
	if err != nil {
		return nil, errors.Wrap(err, "building grades query")
	}
	grds := make([]grade.Grade, 0)
	err = repo.db.SelectContext(ctx, &grds, repo.db.Rebind(q), args...)
	return grds, errors.Wrap(err, "querying grades")
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	var grd grade.Grade
	if err := repo.db.GetContext(ctx, &grd, selectGrades+` WHERE g.id = $1`, id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "getting grade")
	}
	return grd, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	const q = `
UPDATE grades
SET student_id = :student_id, subject_id = :subject_id, semester = :semester,
    academic_year_id = :academic_year_id, value = :value
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, grd)
	if err != nil {
		return grade.Grade{}, writeErr(err, "updating grade")
	}
	if err = mustAffect(res, grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return repo.GetGrade(ctx, grd.ID)
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting grade")
	}
	return mustAffect(res, grade.ErrNotFound)
}

func (repo *gradeRepository) UpsertGrades(ctx context.Context, grds []grade.Grade) ([]grade.Grade, error) {
	const q = `
INSERT INTO grades (id, student_id, subject_id, semester, academic_year_id, value, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, subject_id, semester, academic_year_id) DO UPDATE SET value = EXCLUDED.value
RETURNING id`

	ids := make([]string, 0, len(grds))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, g := range grds {
			var id string
			err := tx.GetContext(ctx, &id, q, g.ID, g.StudentID, g.SubjectID, g.Semester, g.AcademicYearID, g.Value, g.CreatedAt)
			if err != nil {
				return errors.Wrap(err, "upserting grade")
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved := make([]grade.Grade, 0, len(ids))
	for _, id := range ids {
		g, err := repo.GetGrade(ctx, id)
		if err != nil {
			return nil, err
		}
		saved = append(saved, g)
	}
	return saved, nil
}
