package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/archive"
)

// an archive belongs to a student, or to a staff member for staff cards
const selectArchives = `
SELECT a.id, a.document_type, a.student_id,
       COALESCE(s.first_name || ' ' || s.last_name, st.first_name || ' ' || st.last_name, a.student_name) AS student_name,
       a.academic_year_id, a.campus_id, a.downloaded_by, a.downloaded_at
FROM archives a
LEFT JOIN students s ON s.id = a.student_id
LEFT JOIN staff st ON st.id = a.student_id`

type archiveRepository struct {
	db *sqlx.DB
}

var _ archive.Repository = (*archiveRepository)(nil) // interface compliance check

func NewArchiveRepository(db *sqlx.DB) *archiveRepository {
	return &archiveRepository{db: db}
}

func (repo *archiveRepository) CreateArchive(ctx context.Context, arc archive.Archive) (archive.Archive, error) {
	const q = `
INSERT INTO archives (id, document_type, student_id, student_name, academic_year_id, campus_id, downloaded_by, downloaded_at)
VALUES (:id, :document_type, :student_id, :student_name, :academic_year_id, :campus_id, :downloaded_by, :downloaded_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, arc); err != nil {
		return archive.Archive{}, writeErr(err, "inserting archive")
	}
	var saved archive.Archive
	if err := repo.db.GetContext(ctx, &saved, selectArchives+` WHERE a.id = $1`, arc.ID); err != nil {
		return archive.Archive{}, errors.Wrap(err, "getting archive")
	}
	return saved, nil
}

func (repo *archiveRepository) QueryArchives(ctx context.Context, filter archive.QueryFilter) ([]archive.Archive, error) {
	var cond conditions
	cond.eq("a.campus_id", filter.CampusID)
	cond.eq("a.academic_year_id", filter.AcademicYearID)
	cond.eq("a.document_type", filter.DocumentType)
	cond.eq("a.student_id", filter.StudentID)

	arcs := make([]archive.Archive, 0)
	q := selectArchives + cond.String() + ` ORDER BY a.downloaded_at DESC`
	err := repo.db.SelectContext(ctx, &arcs, repo.db.Rebind(q), cond.args...)
	return arcs, errors.Wrap(err, "querying archives")
}
