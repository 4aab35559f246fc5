package inmemdb

import (
	"context"
	"sort"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Campuses

func (repo *catalogRepository) CreateCampus(ctx context.Context, campus catalog.Campus) (catalog.Campus, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.campuses[campus.ID] = campus
	return campus, nil
}

func (repo *catalogRepository) QueryCampuses(ctx context.Context) ([]catalog.Campus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	campuses := make([]catalog.Campus, 0, len(repo.db.campuses))
	for _, c := range repo.db.campuses {
		campuses = append(campuses, c)
	}
	sort.Slice(campuses, func(i, j int) bool { return campuses[i].Name < campuses[j].Name })
	return campuses, nil
}

func (repo *catalogRepository) GetCampus(ctx context.Context, id string) (catalog.Campus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if c, ok := repo.db.campuses[id]; ok {
		return c, nil
	}
	return catalog.Campus{}, catalog.ErrCampusNotFound
}

func (repo *catalogRepository) UpdateCampus(ctx context.Context, campus catalog.Campus) (catalog.Campus, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.campuses[campus.ID]; !ok {
		return catalog.Campus{}, catalog.ErrCampusNotFound
	}
	repo.db.campuses[campus.ID] = campus
	return campus, nil
}

func (repo *catalogRepository) campusInUse(id string) bool {
	for _, u := range repo.db.users {
		if u.CampusID.String == id {
			return true
		}
	}
	for _, c := range repo.db.classes {
		if c.CampusID == id {
			return true
		}
	}
	for _, s := range repo.db.students {
		if s.CampusID == id {
			return true
		}
	}
	for _, p := range repo.db.professors {
		if p.CampusID == id {
			return true
		}
	}
	for _, s := range repo.db.staff {
		if s.CampusID == id {
			return true
		}
	}
	for _, t := range repo.db.transactions {
		if t.CampusID == id {
			return true
		}
	}
	for _, a := range repo.db.archives {
		if a.CampusID == id {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) DeleteCampus(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.campuses[id]; !ok {
		return catalog.ErrCampusNotFound
	}
	if repo.campusInUse(id) {
		return core.ErrInUse
	}
	delete(repo.db.campuses, id)
	return nil
}

// Academic years

// saveAcademicYear stores `year`, deactivating every other year when it is active.
func (repo *catalogRepository) saveAcademicYear(year catalog.AcademicYear) {
	if year.IsActive {
		for id, y := range repo.db.academicYears {
			if id != year.ID && y.IsActive {
				y.IsActive = false
				repo.db.academicYears[id] = y
			}
		}
	}
	repo.db.academicYears[year.ID] = year
}

func (repo *catalogRepository) CreateAcademicYear(ctx context.Context, year catalog.AcademicYear) (catalog.AcademicYear, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.saveAcademicYear(year)
	return year, nil
}

func (repo *catalogRepository) QueryAcademicYears(ctx context.Context) ([]catalog.AcademicYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	years := make([]catalog.AcademicYear, 0, len(repo.db.academicYears))
	for _, y := range repo.db.academicYears {
		years = append(years, y)
	}
	// most recent first
	sort.Slice(years, func(i, j int) bool { return years[i].Name > years[j].Name })
	return years, nil
}

func (repo *catalogRepository) GetAcademicYear(ctx context.Context, id string) (catalog.AcademicYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if y, ok := repo.db.academicYears[id]; ok {
		return y, nil
	}
	return catalog.AcademicYear{}, catalog.ErrAcademicYearNotFound
}

func (repo *catalogRepository) UpdateAcademicYear(ctx context.Context, year catalog.AcademicYear) (catalog.AcademicYear, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.academicYears[year.ID]; !ok {
		return catalog.AcademicYear{}, catalog.ErrAcademicYearNotFound
	}
	repo.saveAcademicYear(year)
	return year, nil
}

func (repo *catalogRepository) academicYearInUse(id string) bool {
	for _, c := range repo.db.classes {
		if c.AcademicYearID == id {
			return true
		}
	}
	for _, s := range repo.db.students {
		if s.AcademicYearID == id {
			return true
		}
	}
	for _, a := range repo.db.absences {
		if a.AcademicYearID == id {
			return true
		}
	}
	for _, h := range repo.db.hours {
		if h.AcademicYearID == id {
			return true
		}
	}
	for _, s := range repo.db.staff {
		if s.AcademicYearID == id {
			return true
		}
	}
	for _, g := range repo.db.grades {
		if g.AcademicYearID == id {
			return true
		}
	}
	for _, t := range repo.db.transactions {
		if t.AcademicYearID == id {
			return true
		}
	}
	for _, a := range repo.db.archives {
		if a.AcademicYearID == id {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) DeleteAcademicYear(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.academicYears[id]; !ok {
		return catalog.ErrAcademicYearNotFound
	}
	if repo.academicYearInUse(id) {
		return core.ErrInUse
	}
	delete(repo.db.academicYears, id)
	return nil
}

// Formations

func (repo *catalogRepository) CreateFormation(ctx context.Context, formation catalog.Formation) (catalog.Formation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.formations[formation.ID] = formation
	return formation, nil
}

func (repo *catalogRepository) QueryFormations(ctx context.Context) ([]catalog.Formation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	formations := make([]catalog.Formation, 0, len(repo.db.formations))
	for _, f := range repo.db.formations {
		formations = append(formations, f)
	}
	sort.Slice(formations, func(i, j int) bool { return formations[i].Name < formations[j].Name })
	return formations, nil
}

func (repo *catalogRepository) GetFormation(ctx context.Context, id string) (catalog.Formation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if f, ok := repo.db.formations[id]; ok {
		return f, nil
	}
	return catalog.Formation{}, catalog.ErrFormationNotFound
}

func (repo *catalogRepository) UpdateFormation(ctx context.Context, formation catalog.Formation) (catalog.Formation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.formations[formation.ID]; !ok {
		return catalog.Formation{}, catalog.ErrFormationNotFound
	}
	repo.db.formations[formation.ID] = formation
	return formation, nil
}

func (repo *catalogRepository) formationInUse(id string) bool {
	for _, f := range repo.db.filieres {
		if f.IsLinkedTo(id) {
			return true
		}
	}
	for _, c := range repo.db.classes {
		if c.FormationID == id {
			return true
		}
	}
	for _, s := range repo.db.subjects {
		if s.FormationID == id {
			return true
		}
	}
	for _, s := range repo.db.students {
		if s.FormationID == id {
			return true
		}
	}
	for _, h := range repo.db.hours {
		if h.FormationID == id {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) DeleteFormation(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.formations[id]; !ok {
		return catalog.ErrFormationNotFound
	}
	if repo.formationInUse(id) {
		return core.ErrInUse
	}
	delete(repo.db.formations, id)
	return nil
}

// Filières

func (repo *catalogRepository) withFormations(filiere catalog.Filiere) catalog.Filiere {
	ids := make([]string, 0, len(filiere.FormationIDs))
	formations := make([]catalog.Formation, 0, len(filiere.FormationIDs))
	for _, id := range filiere.FormationIDs {
		if f, ok := repo.db.formations[id]; ok {
			ids = append(ids, id)
			formations = append(formations, f)
		}
	}
	sort.Slice(formations, func(i, j int) bool { return formations[i].Name < formations[j].Name })
	filiere.FormationIDs = ids
	filiere.Formations = formations
	return filiere
}

func (repo *catalogRepository) CreateFiliere(ctx context.Context, filiere catalog.Filiere) (catalog.Filiere, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	filiere.FormationIDs = append([]string(nil), filiere.FormationIDs...)
	repo.db.filieres[filiere.ID] = filiere
	return repo.withFormations(filiere), nil
}

func (repo *catalogRepository) QueryFilieres(ctx context.Context, formationID string) ([]catalog.Filiere, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	filieres := make([]catalog.Filiere, 0, len(repo.db.filieres))
	for _, f := range repo.db.filieres {
		if formationID == "" || f.IsLinkedTo(formationID) {
			filieres = append(filieres, repo.withFormations(f))
		}
	}
	sort.Slice(filieres, func(i, j int) bool { return filieres[i].Name < filieres[j].Name })
	return filieres, nil
}

func (repo *catalogRepository) GetFiliere(ctx context.Context, id string) (catalog.Filiere, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if f, ok := repo.db.filieres[id]; ok {
		return repo.withFormations(f), nil
	}
	return catalog.Filiere{}, catalog.ErrFiliereNotFound
}

func (repo *catalogRepository) UpdateFiliere(ctx context.Context, filiere catalog.Filiere) (catalog.Filiere, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.filieres[filiere.ID]; !ok {
		return catalog.Filiere{}, catalog.ErrFiliereNotFound
	}
	filiere.FormationIDs = append([]string(nil), filiere.FormationIDs...)
	repo.db.filieres[filiere.ID] = filiere
	return repo.withFormations(filiere), nil
}

func (repo *catalogRepository) filiereInUse(id string) bool {
	for _, c := range repo.db.classes {
		if c.FiliereID == id {
			return true
		}
	}
	for _, s := range repo.db.subjects {
		if s.FiliereID == id {
			return true
		}
	}
	for _, s := range repo.db.students {
		if s.FiliereID == id {
			return true
		}
	}
	for _, h := range repo.db.hours {
		if h.FiliereID == id {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) DeleteFiliere(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.filieres[id]; !ok {
		return catalog.ErrFiliereNotFound
	}
	if repo.filiereInUse(id) {
		return core.ErrInUse
	}
	delete(repo.db.filieres, id)
	return nil
}

// Levels

func (repo *catalogRepository) CreateLevel(ctx context.Context, level catalog.Level) (catalog.Level, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.levels[level.ID] = level
	return level, nil
}

func (repo *catalogRepository) QueryLevels(ctx context.Context) ([]catalog.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	levels := make([]catalog.Level, 0, len(repo.db.levels))
	for _, l := range repo.db.levels {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Order != levels[j].Order {
			return levels[i].Order < levels[j].Order
		}
		return levels[i].Name < levels[j].Name
	})
	return levels, nil
}

func (repo *catalogRepository) GetLevel(ctx context.Context, id string) (catalog.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if l, ok := repo.db.levels[id]; ok {
		return l, nil
	}
	return catalog.Level{}, catalog.ErrLevelNotFound
}

func (repo *catalogRepository) UpdateLevel(ctx context.Context, level catalog.Level) (catalog.Level, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.levels[level.ID]; !ok {
		return catalog.Level{}, catalog.ErrLevelNotFound
	}
	repo.db.levels[level.ID] = level
	return level, nil
}

func (repo *catalogRepository) levelInUse(id string) bool {
	for _, c := range repo.db.classes {
		if c.LevelID == id {
			return true
		}
	}
	for _, s := range repo.db.subjects {
		if s.LevelID == id {
			return true
		}
	}
	for _, s := range repo.db.students {
		if s.LevelID == id {
			return true
		}
	}
	for _, h := range repo.db.hours {
		if h.LevelID == id {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) DeleteLevel(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.levels[id]; !ok {
		return catalog.ErrLevelNotFound
	}
	if repo.levelInUse(id) {
		return core.ErrInUse
	}
	delete(repo.db.levels, id)
	return nil
}

// Classes

func (repo *catalogRepository) withClassNames(class catalog.Class) catalog.Class {
	class.FormationName = repo.db.formations[class.FormationID].Name
	class.FiliereName = repo.db.filieres[class.FiliereID].Name
	class.LevelName = repo.db.levels[class.LevelID].Name
	class.CampusName = repo.db.campuses[class.CampusID].Name
	return class
}

func (repo *catalogRepository) CreateClass(ctx context.Context, class catalog.Class) (catalog.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.classes[class.ID] = class
	return repo.withClassNames(class), nil
}

func (repo *catalogRepository) QueryClasses(ctx context.Context, filter catalog.ClassFilter) ([]catalog.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]catalog.Class, 0)
	for _, c := range repo.db.classes {
		if matches(filter.AcademicYearID, c.AcademicYearID) &&
			matches(filter.FormationID, c.FormationID) &&
			matches(filter.FiliereID, c.FiliereID) &&
			matches(filter.LevelID, c.LevelID) &&
			matches(filter.CampusID, c.CampusID) {
			classes = append(classes, repo.withClassNames(c))
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *catalogRepository) GetClass(ctx context.Context, id string) (catalog.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if c, ok := repo.db.classes[id]; ok {
		return repo.withClassNames(c), nil
	}
	return catalog.Class{}, catalog.ErrClassNotFound
}

func (repo *catalogRepository) UpdateClass(ctx context.Context, class catalog.Class) (catalog.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.classes[class.ID]; !ok {
		return catalog.Class{}, catalog.ErrClassNotFound
	}
	repo.db.classes[class.ID] = class
	return repo.withClassNames(class), nil
}

func (repo *catalogRepository) DeleteClass(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.classes[id]; !ok {
		return catalog.ErrClassNotFound
	}
	for _, s := range repo.db.students {
		if s.ClassID == id {
			return core.ErrInUse
		}
	}
	for _, h := range repo.db.hours {
		if h.ClassID == id {
			return core.ErrInUse
		}
	}
	delete(repo.db.classes, id)
	return nil
}

// Subjects

func (repo *catalogRepository) CreateSubject(ctx context.Context, subject catalog.Subject) (catalog.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.subjects[subject.ID] = subject
	return subject, nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context, filter catalog.SubjectFilter) ([]catalog.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]catalog.Subject, 0)
	for _, s := range repo.db.subjects {
		if matches(filter.FormationID, s.FormationID) &&
			matches(filter.FiliereID, s.FiliereID) &&
			matches(filter.LevelID, s.LevelID) {
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *catalogRepository) GetSubject(ctx context.Context, id string) (catalog.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) UpdateSubject(ctx context.Context, subject catalog.Subject) (catalog.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.subjects[subject.ID]; !ok {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}
	repo.db.subjects[subject.ID] = subject
	return subject, nil
}

func (repo *catalogRepository) DeleteSubject(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.subjects[id]; !ok {
		return catalog.ErrSubjectNotFound
	}
	for _, g := range repo.db.grades {
		if g.SubjectID == id {
			return core.ErrInUse
		}
	}
	delete(repo.db.subjects, id)
	return nil
}
