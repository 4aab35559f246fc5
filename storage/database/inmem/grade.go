package inmemdb

import (
	"context"
	"sort"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) withNames(grd grade.Grade) grade.Grade {
	grd.SubjectName = repo.db.subjects[grd.SubjectID].Name
	grd.CampusID = repo.db.students[grd.StudentID].CampusID
	return grd
}

func sameSlot(a, b grade.Grade) bool {
	return a.StudentID == b.StudentID && a.SubjectID == b.SubjectID &&
		a.Semester == b.Semester && a.AcademicYearID == b.AcademicYearID
}

// findSlot returns the stored grade occupying the slot of `grd`, other than `grd` itself.
func (repo *gradeRepository) findSlot(grd grade.Grade) (grade.Grade, bool) {
	for _, g := range repo.db.grades {
		if g.ID != grd.ID && sameSlot(g, grd) {
			return g, true
		}
	}
	return grade.Grade{}, false
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, taken := repo.findSlot(grd); taken {
		return grade.Grade{}, core.ErrDuplicate
	}
	repo.db.grades[grd.ID] = grd
	return repo.withNames(grd), nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var studentIDs map[string]bool
	if filter.StudentIDs != nil {
		studentIDs = make(map[string]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			studentIDs[id] = true
		}
	}

	grds := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if !matches(filter.StudentID, g.StudentID) ||
			!matches(filter.AcademicYearID, g.AcademicYearID) ||
			!matches(filter.SubjectID, g.SubjectID) ||
			(filter.Semester != 0 && filter.Semester != g.Semester) ||
			(studentIDs != nil && !studentIDs[g.StudentID]) {
			continue
		}
		g = repo.withNames(g)
		if matches(filter.CampusID, g.CampusID) {
			grds = append(grds, g)
		}
	}
	sort.Slice(grds, func(i, j int) bool {
		if grds[i].Semester != grds[j].Semester {
			return grds[i].Semester < grds[j].Semester
		}
		return grds[i].SubjectName < grds[j].SubjectName
	})
	return grds, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if g, ok := repo.db.grades[id]; ok {
		return repo.withNames(g), nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.grades[grd.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	if _, taken := repo.findSlot(grd); taken {
		return grade.Grade{}, core.ErrDuplicate
	}
	repo.db.grades[grd.ID] = grd
	return repo.withNames(grd), nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	return nil
}

func (repo *gradeRepository) UpsertGrades(ctx context.Context, grds []grade.Grade) ([]grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	saved := make([]grade.Grade, 0, len(grds))
	for _, grd := range grds {
		if existing, ok := repo.findSlot(grd); ok {
			existing.Value = grd.Value
			grd = existing
		}
		repo.db.grades[grd.ID] = grd
		saved = append(saved, repo.withNames(grd))
	}
	return saved, nil
}
