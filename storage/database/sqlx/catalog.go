package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/catalog"
)

const (
	selectAcademicYears = `
SELECT id, name, to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(end_date, 'YYYY-MM-DD') AS end_date, is_active
FROM academic_years`

	selectClasses = `
SELECT cl.id, cl.name, cl.code, cl.formation_id, cl.filiere_id, cl.level_id, cl.campus_id, cl.academic_year_id,
       fo.name AS formation_name, fi.name AS filiere_name, le.name AS level_name, ca.name AS campus_name
FROM classes cl
JOIN formations fo ON fo.id = cl.formation_id
JOIN filieres fi ON fi.id = cl.filiere_id
JOIN levels le ON le.id = cl.level_id
JOIN campuses ca ON ca.id = cl.campus_id`

	selectSubjects = `
SELECT id, name, code, credits, coefficient, formation_id, filiere_id, level_id
FROM subjects`
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// deleteByID deletes the row `id` of `table`.
func (repo *catalogRepository) deleteByID(ctx context.Context, table, id string, notFound error) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting from "+table)
	}
	return mustAffect(res, notFound)
}

// Campuses

func (repo *catalogRepository) CreateCampus(ctx context.Context, campus catalog.Campus) (catalog.Campus, error) {
	const q = `INSERT INTO campuses (id, name, address, phone) VALUES (:id, :name, :address, :phone)`
	if _, err := repo.db.NamedExecContext(ctx, q, campus); err != nil {
		return catalog.Campus{}, writeErr(err, "inserting campus")
	}
	return campus, nil
}

func (repo *catalogRepository) QueryCampuses(ctx context.Context) ([]catalog.Campus, error) {
	campuses := make([]catalog.Campus, 0)
	err := repo.db.SelectContext(ctx, &campuses, `SELECT id, name, address, phone FROM campuses ORDER BY name`)
	return campuses, errors.Wrap(err, "querying campuses")
}

func (repo *catalogRepository) GetCampus(ctx context.Context, id string) (catalog.Campus, error) {
	var campus catalog.Campus
	if err := repo.db.GetContext(ctx, &campus, `SELECT id, name, address, phone FROM campuses WHERE id = $1`, id); err != nil {
		return catalog.Campus{}, trapNoRowsErr(err, catalog.ErrCampusNotFound, "getting campus")
	}
	return campus, nil
}

func (repo *catalogRepository) UpdateCampus(ctx context.Context, campus catalog.Campus) (catalog.Campus, error) {
	const q = `UPDATE campuses SET name = :name, address = :address, phone = :phone WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, campus)
	if err != nil {
		return catalog.Campus{}, writeErr(err, "updating campus")
	}
	return campus, mustAffect(res, catalog.ErrCampusNotFound)
}

func (repo *catalogRepository) DeleteCampus(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "campuses", id, catalog.ErrCampusNotFound)
}

// Academic years

func (repo *catalogRepository) saveAcademicYear(ctx context.Context, year catalog.AcademicYear, q string) (catalog.AcademicYear, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if year.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_active = FALSE WHERE is_active AND id <> $1`, year.ID); err != nil {
				return errors.Wrap(err, "deactivating academic years")
			}
		}
		res, err := tx.NamedExecContext(ctx, q, year)
		if err != nil {
			return writeErr(err, "saving academic year")
		}
		return mustAffect(res, catalog.ErrAcademicYearNotFound)
	})
	if err != nil {
		return catalog.AcademicYear{}, err
	}
	return year, nil
}

func (repo *catalogRepository) CreateAcademicYear(ctx context.Context, year catalog.AcademicYear) (catalog.AcademicYear, error) {
	const q = `
INSERT INTO academic_years (id, name, start_date, end_date, is_active)
VALUES (:id, :name, :start_date, :end_date, :is_active)`
	return repo.saveAcademicYear(ctx, year, q)
}

func (repo *catalogRepository) QueryAcademicYears(ctx context.Context) ([]catalog.AcademicYear, error) {
	years := make([]catalog.AcademicYear, 0)
	err := repo.db.SelectContext(ctx, &years, selectAcademicYears+` ORDER BY name DESC`)
	return years, errors.Wrap(err, "querying academic years")
}

func (repo *catalogRepository) GetAcademicYear(ctx context.Context, id string) (catalog.AcademicYear, error) {
	var year catalog.AcademicYear
	if err := repo.db.GetContext(ctx, &year, selectAcademicYears+` WHERE id = $1`, id); err != nil {
		return catalog.AcademicYear{}, trapNoRowsErr(err, catalog.ErrAcademicYearNotFound, "getting academic year")
	}
	return year, nil
}

func (repo *catalogRepository) UpdateAcademicYear(ctx context.Context, year catalog.AcademicYear) (catalog.AcademicYear, error) {
	const q = `
UPDATE academic_years
SET name = :name, start_date = :start_date, end_date = :end_date, is_active = :is_active
WHERE id = :id`
	return repo.saveAcademicYear(ctx, year, q)
}

func (repo *catalogRepository) DeleteAcademicYear(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "academic_years", id, catalog.ErrAcademicYearNotFound)
}

// Formations

func (repo *catalogRepository) CreateFormation(ctx context.Context, formation catalog.Formation) (catalog.Formation, error) {
	if _, err := repo.db.NamedExecContext(ctx, `INSERT INTO formations (id, name, code) VALUES (:id, :name, :code)`, formation); err != nil {
		return catalog.Formation{}, writeErr(err, "inserting formation")
	}
	return formation, nil
}

func (repo *catalogRepository) QueryFormations(ctx context.Context) ([]catalog.Formation, error) {
	formations := make([]catalog.Formation, 0)
	err := repo.db.SelectContext(ctx, &formations, `SELECT id, name, code FROM formations ORDER BY name`)
	return formations, errors.Wrap(err, "querying formations")
}

func (repo *catalogRepository) GetFormation(ctx context.Context, id string) (catalog.Formation, error) {
	var formation catalog.Formation
	if err := repo.db.GetContext(ctx, &formation, `SELECT id, name, code FROM formations WHERE id = $1`, id); err != nil {
		return catalog.Formation{}, trapNoRowsErr(err, catalog.ErrFormationNotFound, "getting formation")
	}
	return formation, nil
}

func (repo *catalogRepository) UpdateFormation(ctx context.Context, formation catalog.Formation) (catalog.Formation, error) {
	res, err := repo.db.NamedExecContext(ctx, `UPDATE formations SET name = :name, code = :code WHERE id = :id`, formation)
	if err != nil {
		return catalog.Formation{}, writeErr(err, "updating formation")
	}
	return formation, mustAffect(res, catalog.ErrFormationNotFound)
}

func (repo *catalogRepository) DeleteFormation(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "formations", id, catalog.ErrFormationNotFound)
}

// Filières

type filiereLink struct {
	FiliereID string `db:"filiere_id"`
	catalog.Formation
}

// withFormations loads the linked formations of every filière.
func (repo *catalogRepository) withFormations(ctx context.Context, filieres []catalog.Filiere) error {
	if len(filieres) == 0 {
		return nil
	}
	ids := make([]string, len(filieres))
	for i, f := range filieres {
		ids[i] = f.ID
	}
	q, args, err := sqlx.In(`
SELECT ff.filiere_id, fo.id, fo.name, fo.code
FROM filiere_formations ff
JOIN formations fo ON fo.id = ff.formation_id
WHERE ff.filiere_id IN (?)
ORDER BY fo.name`, ids)
	if err != nil {
		return errors.Wrap(err, "building formation links query")
	}
	var links []filiereLink
	if err = repo.db.SelectContext(ctx, &links, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "querying formation links")
	}

	byFiliere := make(map[string][]catalog.Formation)
	for _, l := range links {
		byFiliere[l.FiliereID] = append(byFiliere[l.FiliereID], l.Formation)
	}
	for i := range filieres {
		formations := byFiliere[filieres[i].ID]
		filieres[i].Formations = make([]catalog.Formation, 0, len(formations))
		filieres[i].FormationIDs = make([]string, 0, len(formations))
		for _, f := range formations {
			filieres[i].Formations = append(filieres[i].Formations, f)
			filieres[i].FormationIDs = append(filieres[i].FormationIDs, f.ID)
		}
	}
	return nil
}

func (repo *catalogRepository) saveFiliere(ctx context.Context, filiere catalog.Filiere, q string) (catalog.Filiere, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, q, filiere)
		if err != nil {
			return writeErr(err, "saving filiere")
		}
		if err = mustAffect(res, catalog.ErrFiliereNotFound); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM filiere_formations WHERE filiere_id = $1`, filiere.ID); err != nil {
			return errors.Wrap(err, "unlinking formations")
		}
		for _, formationID := range filiere.FormationIDs {
			_, err = tx.ExecContext(ctx, `INSERT INTO filiere_formations (filiere_id, formation_id) VALUES ($1, $2)`, filiere.ID, formationID)
			if err != nil {
				return errors.Wrap(err, "linking formation")
			}
		}
		return nil
	})
	if err != nil {
		return catalog.Filiere{}, err
	}
	return repo.GetFiliere(ctx, filiere.ID)
}

func (repo *catalogRepository) CreateFiliere(ctx context.Context, filiere catalog.Filiere) (catalog.Filiere, error) {
	return repo.saveFiliere(ctx, filiere, `INSERT INTO filieres (id, name, code) VALUES (:id, :name, :code)`)
}

func (repo *catalogRepository) QueryFilieres(ctx context.Context, formationID string) ([]catalog.Filiere, error) {
	var cond conditions
	if formationID != "" {
		cond.add("id IN (SELECT filiere_id FROM filiere_formations WHERE formation_id = ?)", formationID)
	}
	filieres := make([]catalog.Filiere, 0)
	q := `SELECT id, name, code FROM filieres` + cond.String() + ` ORDER BY name`
	if err := repo.db.SelectContext(ctx, &filieres, repo.db.Rebind(q), cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying filieres")
	}
	return filieres, repo.withFormations(ctx, filieres)
}

func (repo *catalogRepository) GetFiliere(ctx context.Context, id string) (catalog.Filiere, error) {
	filieres := make([]catalog.Filiere, 1)
	if err := repo.db.GetContext(ctx, &filieres[0], `SELECT id, name, code FROM filieres WHERE id = $1`, id); err != nil {
		return catalog.Filiere{}, trapNoRowsErr(err, catalog.ErrFiliereNotFound, "getting filiere")
	}
	if err := repo.withFormations(ctx, filieres); err != nil {
		return catalog.Filiere{}, err
	}
	return filieres[0], nil
}

func (repo *catalogRepository) UpdateFiliere(ctx context.Context, filiere catalog.Filiere) (catalog.Filiere, error) {
	return repo.saveFiliere(ctx, filiere, `UPDATE filieres SET name = :name, code = :code WHERE id = :id`)
}

func (repo *catalogRepository) DeleteFiliere(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "filieres", id, catalog.ErrFiliereNotFound)
}

// Levels

func (repo *catalogRepository) CreateLevel(ctx context.Context, level catalog.Level) (catalog.Level, error) {
	if _, err := repo.db.NamedExecContext(ctx, `INSERT INTO levels (id, name, "order") VALUES (:id, :name, :order)`, level); err != nil {
		return catalog.Level{}, writeErr(err, "inserting level")
	}
	return level, nil
}

func (repo *catalogRepository) QueryLevels(ctx context.Context) ([]catalog.Level, error) {
	levels := make([]catalog.Level, 0)
	err := repo.db.SelectContext(ctx, &levels, `SELECT id, name, "order" FROM levels ORDER BY "order", name`)
	return levels, errors.Wrap(err, "querying levels")
}

func (repo *catalogRepository) GetLevel(ctx context.Context, id string) (catalog.Level, error) {
	var level catalog.Level
	if err := repo.db.GetContext(ctx, &level, `SELECT id, name, "order" FROM levels WHERE id = $1`, id); err != nil {
		return catalog.Level{}, trapNoRowsErr(err, catalog.ErrLevelNotFound, "getting level")
	}
	return level, nil
}

func (repo *catalogRepository) UpdateLevel(ctx context.Context, level catalog.Level) (catalog.Level, error) {
	res, err := repo.db.NamedExecContext(ctx, `UPDATE levels SET name = :name, "order" = :order WHERE id = :id`, level)
	if err != nil {
		return catalog.Level{}, writeErr(err, "updating level")
	}
	return level, mustAffect(res, catalog.ErrLevelNotFound)
}

func (repo *catalogRepository) DeleteLevel(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "levels", id, catalog.ErrLevelNotFound)
}

// Classes

func (repo *catalogRepository) CreateClass(ctx context.Context, class catalog.Class) (catalog.Class, error) {
	const q = `
INSERT INTO classes (id, name, code, formation_id, filiere_id, level_id, campus_id, academic_year_id)
VALUES (:id, :name, :code, :formation_id, :filiere_id, :level_id, :campus_id, :academic_year_id)`
	if _, err := repo.db.NamedExecContext(ctx, q, class); err != nil {
		return catalog.Class{}, writeErr(err, "inserting class")
	}
	return repo.GetClass(ctx, class.ID)
}

func (repo *catalogRepository) QueryClasses(ctx context.Context, filter catalog.ClassFilter) ([]catalog.Class, error) {
	var cond conditions
	cond.eq("cl.academic_year_id", filter.AcademicYearID)
	cond.eq("cl.formation_id", filter.FormationID)
	cond.eq("cl.filiere_id", filter.FiliereID)
	cond.eq("cl.level_id", filter.LevelID)
	cond.eq("cl.campus_id", filter.CampusID)

	classes := make([]catalog.Class, 0)
	q := selectClasses + cond.String() + ` ORDER BY cl.name`
	err := repo.db.SelectContext(ctx, &classes, repo.db.Rebind(q), cond.args...)
	return classes, errors.Wrap(err, "querying classes")
}

func (repo *catalogRepository) GetClass(ctx context.Context, id string) (catalog.Class, error) {
	var class catalog.Class
	if err := repo.db.GetContext(ctx, &class, selectClasses+` WHERE cl.id = $1`, id); err != nil {
		return catalog.Class{}, trapNoRowsErr(err, catalog.ErrClassNotFound, "getting class")
	}
	return class, nil
}

func (repo *catalogRepository) UpdateClass(ctx context.Context, class catalog.Class) (catalog.Class, error) {
	const q = `
UPDATE classes
SET name = :name, code = :code, formation_id = :formation_id, filiere_id = :filiere_id, level_id = :level_id,
    campus_id = :campus_id, academic_year_id = :academic_year_id
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, class)
	if err != nil {
		return catalog.Class{}, writeErr(err, "updating class")
	}
	if err = mustAffect(res, catalog.ErrClassNotFound); err != nil {
		return catalog.Class{}, err
	}
	return repo.GetClass(ctx, class.ID)
}

func (repo *catalogRepository) DeleteClass(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "classes", id, catalog.ErrClassNotFound)
}

// Subjects

func (repo *catalogRepository) CreateSubject(ctx context.Context, subject catalog.Subject) (catalog.Subject, error) {
	const q = `
INSERT INTO subjects (id, name, code, credits, coefficient, formation_id, filiere_id, level_id)
VALUES (:id, :name, :code, :credits, :coefficient, :formation_id, :filiere_id, :level_id)`
	if _, err := repo.db.NamedExecContext(ctx, q, subject); err != nil {
		return catalog.Subject{}, writeErr(err, "inserting subject")
	}
	return subject, nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context, filter catalog.SubjectFilter) ([]catalog.Subject, error) {
	var cond conditions
	cond.eq("formation_id", filter.FormationID)
	cond.eq("filiere_id", filter.FiliereID)
	cond.eq("level_id", filter.LevelID)

	subjects := make([]catalog.Subject, 0)
	q := selectSubjects + cond.String() + ` ORDER BY name`
	err := repo.db.SelectContext(ctx, &subjects, repo.db.Rebind(q), cond.args...)
	return subjects, errors.Wrap(err, "querying subjects")
}

func (repo *catalogRepository) GetSubject(ctx context.Context, id string) (catalog.Subject, error) {
	var subject catalog.Subject
	if err := repo.db.GetContext(ctx, &subject, selectSubjects+` WHERE id = $1`, id); err != nil {
		return catalog.Subject{}, trapNoRowsErr(err, catalog.ErrSubjectNotFound, "getting subject")
	}
	return subject, nil
}

func (repo *catalogRepository) UpdateSubject(ctx context.Context, subject catalog.Subject) (catalog.Subject, error) {
	const q = `
UPDATE subjects
SET name = :name, code = :code, credits = :credits, coefficient = :coefficient,
    formation_id = :formation_id, filiere_id = :filiere_id, level_id = :level_id
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, subject)
	if err != nil {
		return catalog.Subject{}, writeErr(err, "updating subject")
	}
	return subject, mustAffect(res, catalog.ErrSubjectNotFound)
}

func (repo *catalogRepository) DeleteSubject(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "subjects", id, catalog.ErrSubjectNotFound)
}
