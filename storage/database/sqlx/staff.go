package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/staff"
)

const (
	selectProfessors = `
SELECT p.id, p.first_name, p.last_name, p.phone, p.email, p.specialty, p.campus_id, c.name AS campus_name, p.created_at
FROM professors p
JOIN campuses c ON c.id = p.campus_id`

	selectHours = `
SELECT h.id, h.professor_id, p.first_name || ' ' || p.last_name AS professor_name, h.academic_year_id,
       h.formation_id, h.filiere_id, h.level_id, h.class_id, h.total_hours_planned,
       to_char(h.date, 'YYYY-MM-DD') AS date, h.start_time, h.end_time, h.hours_done, p.campus_id, h.created_at
FROM professor_hours h
JOIN professors p ON p.id = h.professor_id`

	selectStaff = `
SELECT s.id, s.first_name, s.last_name, to_char(s.birth_date, 'YYYY-MM-DD') AS birth_date, s.birth_place,
       s.function, s.phone, s.campus_id, s.academic_year_id, c.name AS campus_name, s.photo, s.created_at
FROM staff s
JOIN campuses c ON c.id = s.campus_id`
)

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{db: db}
}

// Professors

func (repo *staffRepository) CreateProfessor(ctx context.Context, prof staff.Professor) (staff.Professor, error) {
	const q = `
INSERT INTO professors (id, first_name, last_name, phone, email, specialty, campus_id, created_at)
VALUES (:id, :first_name, :last_name, :phone, :email, :specialty, :campus_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, prof); err != nil {
		return staff.Professor{}, writeErr(err, "inserting professor")
	}
	return repo.GetProfessor(ctx, prof.ID)
}

func (repo *staffRepository) QueryProfessors(ctx context.Context, filter staff.ProfessorFilter) ([]staff.Professor, error) {
	var cond conditions
	cond.eq("p.campus_id", filter.CampusID)

	profs := make([]staff.Professor, 0)
	q := selectProfessors + cond.String() + ` ORDER BY p.last_name, p.first_name`
	err := repo.db.SelectContext(ctx, &profs, repo.db.Rebind(q), cond.args...)
	return profs, errors.Wrap(err, "querying professors")
}

func (repo *staffRepository) GetProfessor(ctx context.Context, id string) (staff.Professor, error) {
	var prof staff.Professor
	if err := repo.db.GetContext(ctx, &prof, selectProfessors+` WHERE p.id = $1`, id); err != nil {
		return staff.Professor{}, trapNoRowsErr(err, staff.ErrProfessorNotFound, "getting professor")
	}
	return prof, nil
}

func (repo *staffRepository) UpdateProfessor(ctx context.Context, prof staff.Professor) (staff.Professor, error) {
	const q = `
UPDATE professors
SET first_name = :first_name, last_name = :last_name, phone = :phone, email = :email,
    specialty = :specialty, campus_id = :campus_id
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, prof)
	if err != nil {
		return staff.Professor{}, writeErr(err, "updating professor")
	}
	if err = mustAffect(res, staff.ErrProfessorNotFound); err != nil {
		return staff.Professor{}, err
	}
	return repo.GetProfessor(ctx, prof.ID)
}

func (repo *staffRepository) DeleteProfessor(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM professors WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting professor")
	}
	return mustAffect(res, staff.ErrProfessorNotFound)
}

// Hours

func (repo *staffRepository) CreateHours(ctx context.Context, hours staff.Hours) (staff.Hours, error) {
	const q = `
INSERT INTO professor_hours (
    id, professor_id, academic_year_id, formation_id, filiere_id, level_id, class_id,
    total_hours_planned, date, start_time, end_time, hours_done, created_at
) VALUES (
    :id, :professor_id, :academic_year_id, :formation_id, :filiere_id, :level_id, :class_id,
    :total_hours_planned, :date, :start_time, :end_time, :hours_done, :created_at
)`
	if _, err := repo.db.NamedExecContext(ctx, q, hours); err != nil {
		return staff.Hours{}, writeErr(err, "inserting hours")
	}
	return repo.GetHours(ctx, hours.ID)
}

func (repo *staffRepository) QueryHours(ctx context.Context, filter staff.HoursFilter) ([]staff.Hours, error) {
	var cond conditions
	cond.eq("h.professor_id", filter.ProfessorID)
	cond.eq("h.academic_year_id", filter.AcademicYearID)
	cond.eq("h.class_id", filter.ClassID)
	cond.eq("p.campus_id", filter.CampusID)

	hours := make([]staff.Hours, 0)
	q := selectHours + cond.String() + ` ORDER BY h.date DESC, h.start_time DESC`
	err := repo.db.SelectContext(ctx, &hours, repo.db.Rebind(q), cond.args...)
	return hours, errors.Wrap(err, "querying hours")
}

func (repo *staffRepository) GetHours(ctx context.Context, id string) (staff.Hours, error) {
	var hours staff.Hours
	if err := repo.db.GetContext(ctx, &hours, selectHours+` WHERE h.id = $1`, id); err != nil {
		return staff.Hours{}, trapNoRowsErr(err, staff.ErrHoursNotFound, "getting hours")
	}
	return hours, nil
}

func (repo *staffRepository) UpdateHours(ctx context.Context, hours staff.Hours) (staff.Hours, error) {
	const q = `
UPDATE professor_hours
SET professor_id = :professor_id, academic_year_id = :academic_year_id, formation_id = :formation_id,
    filiere_id = :filiere_id, level_id = :level_id, class_id = :class_id,
    total_hours_planned = :total_hours_planned, date = :date, start_time = :start_time,
    end_time = :end_time, hours_done = :hours_done
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, hours)
	if err != nil {
		return staff.Hours{}, writeErr(err, "updating hours")
	}
	if err = mustAffect(res, staff.ErrHoursNotFound); err != nil {
		return staff.Hours{}, err
	}
	return repo.GetHours(ctx, hours.ID)
}

func (repo *staffRepository) DeleteHours(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM professor_hours WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting hours")
	}
	return mustAffect(res, staff.ErrHoursNotFound)
}

// Staff

func (repo *staffRepository) CreateStaff(ctx context.Context, member staff.Staff) (staff.Staff, error) {
	const q = `
INSERT INTO staff (id, first_name, last_name, birth_date, birth_place, function, phone, campus_id, academic_year_id, photo, created_at)
VALUES (:id, :first_name, :last_name, :birth_date, :birth_place, :function, :phone, :campus_id, :academic_year_id, :photo, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, member); err != nil {
		return staff.Staff{}, writeErr(err, "inserting staff")
	}
	return repo.GetStaff(ctx, member.ID)
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter staff.StaffFilter) ([]staff.Staff, error) {
	var cond conditions
	cond.eq("s.campus_id", filter.CampusID)
	cond.eq("s.academic_year_id", filter.AcademicYearID)

	members := make([]staff.Staff, 0)
	q := selectStaff + cond.String() + ` ORDER BY s.last_name, s.first_name`
	err := repo.db.SelectContext(ctx, &members, repo.db.Rebind(q), cond.args...)
	return members, errors.Wrap(err, "querying staff")
}

func (repo *staffRepository) GetStaff(ctx context.Context, id string) (staff.Staff, error) {
	var member staff.Staff
	if err := repo.db.GetContext(ctx, &member, selectStaff+` WHERE s.id = $1`, id); err != nil {
		return staff.Staff{}, trapNoRowsErr(err, staff.ErrStaffNotFound, "getting staff")
	}
	return member, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, member staff.Staff) (staff.Staff, error) {
	const q = `
UPDATE staff
SET first_name = :first_name, last_name = :last_name, birth_date = :birth_date, birth_place = :birth_place,
    function = :function, phone = :phone, campus_id = :campus_id, academic_year_id = :academic_year_id, photo = :photo
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, member)
	if err != nil {
		return staff.Staff{}, writeErr(err, "updating staff")
	}
	if err = mustAffect(res, staff.ErrStaffNotFound); err != nil {
		return staff.Staff{}, err
	}
	return repo.GetStaff(ctx, member.ID)
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting staff")
	}
	return mustAffect(res, staff.ErrStaffNotFound)
}
