package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/student"
)

const (
	selectStudents = `
SELECT s.id, s.matricule, s.permanent_id, s.photo, s.matricule_bac, s.numero_table_bac, s.campus_id,
       s.academic_year_id, s.formation_id, s.filiere_id, s.level_id, s.class_id, s.status, s.first_name,
       s.last_name, to_char(s.birth_date, 'YYYY-MM-DD') AS birth_date, s.birth_place, s.gender, s.phone,
       s.email, s.nationality, s.emergency_contact_name, s.emergency_contact_phone, s.tuition_amount,
       s.is_exonerated, s.created_at,
       COALESCE((
           SELECT SUM(t.amount) FROM transactions t
           WHERE t.student_id = s.id AND t.type = '` + finance.TypeIncome + `' AND t.category = '` + student.TuitionCategory + `'
       ), 0) AS tuition_paid,
       fo.name AS formation_name, fi.name AS filiere_name, le.name AS level_name, cl.name AS class_name,
       ca.name AS campus_name, ay.name AS academic_year_name
FROM students s
JOIN formations fo ON fo.id = s.formation_id
JOIN filieres fi ON fi.id = s.filiere_id
JOIN levels le ON le.id = s.level_id
JOIN classes cl ON cl.id = s.class_id
JOIN campuses ca ON ca.id = s.campus_id
JOIN academic_years ay ON ay.id = s.academic_year_id`

	selectAbsences = `
SELECT a.id, a.student_id, s.first_name || ' ' || s.last_name AS student_name, a.academic_year_id,
       to_char(a.date, 'YYYY-MM-DD') AS date, a.hours, a.reason, s.campus_id, a.created_at,
       (SELECT SUM(a2.hours) FROM student_absences a2
        WHERE a2.student_id = a.student_id AND a2.academic_year_id = a.academic_year_id) AS total_hours
FROM student_absences a
JOIN students s ON s.id = a.student_id`
)

var studentOrderings = map[string]string{
	"matricule":  "s.matricule",
	"last_name":  "s.last_name",
	"first_name": "s.first_name",
	"created_at": "s.created_at",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CountMatricules(ctx context.Context, prefix string) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM students WHERE matricule LIKE $1`, prefix+"%")
	return n, errors.Wrap(err, "counting matricules")
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	const q = `
INSERT INTO students (
    id, matricule, permanent_id, photo, matricule_bac, numero_table_bac, campus_id, academic_year_id,
    formation_id, filiere_id, level_id, class_id, status, first_name, last_name, birth_date, birth_place,
    gender, phone, email, nationality, emergency_contact_name, emergency_contact_phone, tuition_amount,
    is_exonerated, created_at
) VALUES (
    :id, :matricule, :permanent_id, :photo, :matricule_bac, :numero_table_bac, :campus_id, :academic_year_id,
    :formation_id, :filiere_id, :level_id, :class_id, :status, :first_name, :last_name, :birth_date, :birth_place,
    :gender, :phone, :email, :nationality, :emergency_contact_name, :emergency_contact_phone, :tuition_amount,
    :is_exonerated, :created_at
)`
	if _, err := repo.db.NamedExecContext(ctx, q, stu); err != nil {
		return student.Student{}, writeErr(err, "inserting student")
	}
	return repo.GetStudent(ctx, stu.ID)
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	var cond conditions
	cond.eq("s.academic_year_id", filter.AcademicYearID)
	cond.eq("s.formation_id", filter.FormationID)
	cond.eq("s.filiere_id", filter.FiliereID)
	cond.eq("s.level_id", filter.LevelID)
	cond.eq("s.class_id", filter.ClassID)
	cond.eq("s.campus_id", filter.CampusID)
	cond.eq("s.status", filter.Status)
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		cond.add(
			"(s.first_name ILIKE ? OR s.last_name ILIKE ? OR s.matricule ILIKE ? OR s.phone ILIKE ? OR s.email ILIKE ?)",
			val, val, val, val, val)
	}

	students := make([]student.Student, 0)
	q := selectStudents + cond.String() + orderBy(ordering, studentOrderings, "s.last_name, s.first_name")
	if err := repo.db.SelectContext(ctx, &students, repo.db.Rebind(q), cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	for i := range students {
		students[i].SetTuitionPaid(students[i].TuitionPaid)
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var stu student.Student
	if err := repo.db.GetContext(ctx, &stu, selectStudents+` WHERE s.id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	stu.SetTuitionPaid(stu.TuitionPaid)
	return stu, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	const q = `
UPDATE students
SET permanent_id = :permanent_id, photo = :photo, matricule_bac = :matricule_bac,
    numero_table_bac = :numero_table_bac, campus_id = :campus_id, academic_year_id = :academic_year_id,
    formation_id = :formation_id, filiere_id = :filiere_id, level_id = :level_id, class_id = :class_id,
    status = :status, first_name = :first_name, last_name = :last_name, birth_date = :birth_date,
    birth_place = :birth_place, gender = :gender, phone = :phone, email = :email, nationality = :nationality,
    emergency_contact_name = :emergency_contact_name, emergency_contact_phone = :emergency_contact_phone,
    tuition_amount = :tuition_amount, is_exonerated = :is_exonerated
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, stu)
	if err != nil {
		return student.Student{}, writeErr(err, "updating student")
	}
	if err = mustAffect(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return repo.GetStudent(ctx, stu.ID)
}

// DeleteStudent relies on the schema to delete grades and absences and to
// detach transactions. Archives keep the holder name they were logged with.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting student")
	}
	return mustAffect(res, student.ErrNotFound)
}

// Absences

func (repo *studentRepository) CreateAbsence(ctx context.Context, abs student.Absence) (student.Absence, error) {
	const q = `
INSERT INTO student_absences (id, student_id, academic_year_id, date, hours, reason, created_at)
VALUES (:id, :student_id, :academic_year_id, :date, :hours, :reason, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, abs); err != nil {
		return student.Absence{}, writeErr(err, "inserting absence")
	}
	return repo.GetAbsence(ctx, abs.ID)
}

func (repo *studentRepository) QueryAbsences(ctx context.Context, filter student.AbsenceFilter) ([]student.Absence, error) {
	var cond conditions
	cond.eq("a.student_id", filter.StudentID)
	cond.eq("a.academic_year_id", filter.AcademicYearID)
	cond.eq("s.campus_id", filter.CampusID)

	absences := make([]student.Absence, 0)
	q := selectAbsences + cond.String() + ` ORDER BY a.date DESC, a.created_at DESC`
	err := repo.db.SelectContext(ctx, &absences, repo.db.Rebind(q), cond.args...)
	return absences, errors.Wrap(err, "querying absences")
}

func (repo *studentRepository) GetAbsence(ctx context.Context, id string) (student.Absence, error) {
	var abs student.Absence
	if err := repo.db.GetContext(ctx, &abs, selectAbsences+` WHERE a.id = $1`, id); err != nil {
		return student.Absence{}, trapNoRowsErr(err, student.ErrAbsenceNotFound, "getting absence")
	}
	return abs, nil
}

func (repo *studentRepository) DeleteAbsence(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student_absences WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting absence")
	}
	return mustAffect(res, student.ErrAbsenceNotFound)
}
