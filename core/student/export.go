package student

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
)

var csvHeader = []string{"Matricule", "Nom", "Prénom", "Formation", "Filière", "Niveau", "Classe", "Téléphone", "Email"}

// ExportFilename is the attachment name of an export made today.
func ExportFilename() string {
	return "etudiants_" + core.Today() + ".csv"
}

// ExportCSV writes the students matching filter as `;` separated values.
func (svc *Service) ExportCSV(ctx context.Context, scope core.Scope, filter QueryFilter, w io.Writer) error {
	students, err := svc.Query(ctx, scope, filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return WriteCSV(w, students)
}

func WriteCSV(w io.Writer, students []Student) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, s := range students {
		row := []string{
			s.Matricule,
			s.LastName,
			s.FirstName,
			s.FormationName,
			s.FiliereName,
			s.LevelName,
			s.ClassName,
			s.Phone,
			s.Email.String,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	cw.Flush()
	return cw.Error()
}
