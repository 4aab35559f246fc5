package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
)

const (
	errTextUnknown          = "élément introuvable"
	errTextFiliereFormation = "la filière n'appartient pas à cette formation"
	errTextClassMismatch    = "la classe ne correspond pas à la sélection"
)

// CheckChain verifies that every non-empty reference of `chain` exists and that
// the references agree with each other: the filière is linked to the formation
// and the class belongs to the selected formation, filière, level, academic year and campus.
func (svc *Service) CheckChain(ctx context.Context, chain Chain) error {
	var fldErrs []core.FieldError
	unknown := func(field string, err error, notFound error) error {
		if errors.Cause(err) == notFound {
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: errTextUnknown})
			return nil
		}
		return errors.Wrapf(err, "checking %s", field)
	}

	if chain.FormationID != "" {
		if _, err := svc.GetFormation(ctx, chain.FormationID); err != nil {
			if err = unknown("formation_id", err, ErrFormationNotFound); err != nil {
				return err
			}
		}
	}
	if chain.FiliereID != "" {
		filiere, err := svc.GetFiliere(ctx, chain.FiliereID)
		if err != nil {
			if err = unknown("filiere_id", err, ErrFiliereNotFound); err != nil {
				return err
			}
		} else if chain.FormationID != "" && !filiere.IsLinkedTo(chain.FormationID) {
			fldErrs = append(fldErrs, core.FieldError{Field: "filiere_id", Error: errTextFiliereFormation})
		}
	}
	if chain.LevelID != "" {
		if _, err := svc.GetLevel(ctx, chain.LevelID); err != nil {
			if err = unknown("level_id", err, ErrLevelNotFound); err != nil {
				return err
			}
		}
	}
	if chain.AcademicYearID != "" {
		if _, err := svc.GetAcademicYear(ctx, chain.AcademicYearID); err != nil {
			if err = unknown("academic_year_id", err, ErrAcademicYearNotFound); err != nil {
				return err
			}
		}
	}
	if chain.CampusID != "" {
		if _, err := svc.GetCampus(ctx, chain.CampusID); err != nil {
			if err = unknown("campus_id", err, ErrCampusNotFound); err != nil {
				return err
			}
		}
	}
	if chain.ClassID != "" {
		class, err := svc.GetClass(ctx, core.Scope{Unrestricted: true}, chain.ClassID)
		if err != nil {
			if err = unknown("class_id", err, ErrClassNotFound); err != nil {
				return err
			}
		} else if !classMatches(class, chain) {
			fldErrs = append(fldErrs, core.FieldError{Field: "class_id", Error: errTextClassMismatch})
		}
	}

	if len(fldErrs) > 0 {
		return core.NewFieldsError(fldErrs...)
	}
	return nil
}

func classMatches(class Class, chain Chain) bool {
	matches := func(want, got string) bool { return want == "" || want == got }
	return matches(chain.FormationID, class.FormationID) &&
		matches(chain.FiliereID, class.FiliereID) &&
		matches(chain.LevelID, class.LevelID) &&
		matches(chain.AcademicYearID, class.AcademicYearID) &&
		matches(chain.CampusID, class.CampusID)
}

// Cascade returns the options of the chain steps whose prerequisites are given:
// filières need a formation, levels need a filière, classes and subjects need
// the formation, the filière and the level.
func (svc *Service) Cascade(ctx context.Context, scope core.Scope, q CascadeQuery) (CascadeOptions, error) {
	opts := CascadeOptions{
		Filieres: []Filiere{},
		Levels:   []Level{},
		Classes:  []Class{},
		Subjects: []Subject{},
	}
	var err error

	if q.FormationID != "" {
		if opts.Filieres, err = svc.QueryFilieres(ctx, q.FormationID); err != nil {
			return CascadeOptions{}, errors.Wrap(err, "querying filieres")
		}
	}
	if q.FiliereID != "" {
		if opts.Levels, err = svc.QueryLevels(ctx); err != nil {
			return CascadeOptions{}, errors.Wrap(err, "querying levels")
		}
	}
	if q.FormationID != "" && q.FiliereID != "" && q.LevelID != "" {
		opts.Classes, err = svc.QueryClasses(ctx, scope, ClassFilter{
			AcademicYearID: q.AcademicYearID,
			FormationID:    q.FormationID,
			FiliereID:      q.FiliereID,
			LevelID:        q.LevelID,
			CampusID:       q.CampusID,
		})
		if err != nil {
			return CascadeOptions{}, errors.Wrap(err, "querying classes")
		}
		opts.Subjects, err = svc.QuerySubjects(ctx, SubjectFilter{
			FormationID: q.FormationID,
			FiliereID:   q.FiliereID,
			LevelID:     q.LevelID,
		})
		if err != nil {
			return CascadeOptions{}, errors.Wrap(err, "querying subjects")
		}
	}
	return opts, nil
}
