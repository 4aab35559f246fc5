package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// withDerived fills the reference names and the paid tuition of `stu`.
func (repo *studentRepository) withDerived(stu student.Student) student.Student {
	stu.FormationName = repo.db.formations[stu.FormationID].Name
	stu.FiliereName = repo.db.filieres[stu.FiliereID].Name
	stu.LevelName = repo.db.levels[stu.LevelID].Name
	stu.ClassName = repo.db.classes[stu.ClassID].Name
	stu.CampusName = repo.db.campuses[stu.CampusID].Name
	stu.AcademicYearName = repo.db.academicYears[stu.AcademicYearID].Name

	var paid float64
	for _, t := range repo.db.transactions {
		if t.StudentID.String == stu.ID && t.Type == finance.TypeIncome && t.Category == student.TuitionCategory {
			paid += t.Amount
		}
	}
	stu.SetTuitionPaid(paid)
	return stu
}

func (repo *studentRepository) CountMatricules(ctx context.Context, prefix string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, s := range repo.db.students {
		if strings.HasPrefix(s.Matricule, prefix) {
			n++
		}
	}
	return n, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.students {
		if s.Matricule == stu.Matricule {
			return student.Student{}, core.ErrDuplicate
		}
	}
	repo.db.students[stu.ID] = stu
	return repo.withDerived(stu), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.students {
		if !matches(filter.AcademicYearID, s.AcademicYearID) ||
			!matches(filter.FormationID, s.FormationID) ||
			!matches(filter.FiliereID, s.FiliereID) ||
			!matches(filter.LevelID, s.LevelID) ||
			!matches(filter.ClassID, s.ClassID) ||
			!matches(filter.CampusID, s.CampusID) ||
			!matches(filter.Status, s.Status) {
			continue
		}
		if q := filter.Search; q != "" &&
			!containsFold(s.FirstName, q) && !containsFold(s.LastName, q) &&
			!containsFold(s.Matricule, q) && !containsFold(s.Phone, q) && !containsFold(s.Email.String, q) {
			continue
		}
		students = append(students, repo.withDerived(s))
	}

	byName := func(a, b student.Student) bool {
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	}
	sortBy(students, ordering, map[string]func(a, b student.Student) bool{
		"matricule":  func(a, b student.Student) bool { return a.Matricule < b.Matricule },
		"last_name":  byName,
		"first_name": func(a, b student.Student) bool { return a.FirstName < b.FirstName },
		"created_at": func(a, b student.Student) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}, byName)
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if s, ok := repo.db.students[id]; ok {
		return repo.withDerived(s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.students[stu.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[stu.ID] = stu
	return repo.withDerived(stu), nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}

	for gid, g := range repo.db.grades {
		if g.StudentID == id {
			delete(repo.db.grades, gid)
		}
	}
	for aid, a := range repo.db.absences {
		if a.StudentID == id {
			delete(repo.db.absences, aid)
		}
	}
	for tid, t := range repo.db.transactions {
		if t.StudentID.String == id {
			t.StudentID = null.String{}
			t.StudentName = null.String{}
			repo.db.transactions[tid] = t
		}
	}
	delete(repo.db.students, id)
	return nil
}

// Absences

func (repo *studentRepository) withTotal(abs student.Absence) student.Absence {
	stu := repo.db.students[abs.StudentID]
	abs.StudentName = stu.FullName()
	abs.CampusID = stu.CampusID

	var total float64
	for _, a := range repo.db.absences {
		if a.StudentID == abs.StudentID && a.AcademicYearID == abs.AcademicYearID {
			total += a.Hours
		}
	}
	abs.TotalHours = core.Round2(total)
	return abs
}

func (repo *studentRepository) CreateAbsence(ctx context.Context, abs student.Absence) (student.Absence, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.students[abs.StudentID]; !ok {
		return student.Absence{}, student.ErrNotFound
	}
	repo.db.absences[abs.ID] = abs
	return repo.withTotal(abs), nil
}

func (repo *studentRepository) QueryAbsences(ctx context.Context, filter student.AbsenceFilter) ([]student.Absence, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	absences := make([]student.Absence, 0)
	for _, a := range repo.db.absences {
		if !matches(filter.StudentID, a.StudentID) || !matches(filter.AcademicYearID, a.AcademicYearID) {
			continue
		}
		a = repo.withTotal(a)
		if !matches(filter.CampusID, a.CampusID) {
			continue
		}
		absences = append(absences, a)
	}
	sort.Slice(absences, func(i, j int) bool {
		if absences[i].Date != absences[j].Date {
			return absences[i].Date > absences[j].Date
		}
		return absences[i].CreatedAt.After(absences[j].CreatedAt)
	})
	return absences, nil
}

func (repo *studentRepository) GetAbsence(ctx context.Context, id string) (student.Absence, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if a, ok := repo.db.absences[id]; ok {
		return repo.withTotal(a), nil
	}
	return student.Absence{}, student.ErrAbsenceNotFound
}

func (repo *studentRepository) DeleteAbsence(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.absences[id]; !ok {
		return student.ErrAbsenceNotFound
	}
	delete(repo.db.absences, id)
	return nil
}
