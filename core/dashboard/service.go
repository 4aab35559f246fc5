package dashboard

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/student"
)

// UnknownName labels a group whose reference no longer exists.
const UnknownName = "Inconnu"

type (
	StatsQuery struct {
		AcademicYearID string `query:"academic_year_id"`
		CampusID       string `query:"campus_id"`
	}

	// GroupCount is the number of students sharing a formation, a filière or a level.
	// It marshals as {"<Kind>_id", "<Kind>_name", "count"}.
	GroupCount struct {
		Kind  string
		ID    string
		Name  string
		Count int
	}

	Stats struct {
		TotalStudents       int          `json:"total_students"`
		TotalProfessors     int          `json:"total_professors"`
		TotalClasses        int          `json:"total_classes"`
		TotalFormations     int          `json:"total_formations"`
		TotalFilieres       int          `json:"total_filieres"`
		StudentsByFormation []GroupCount `json:"students_by_formation"`
		StudentsByFiliere   []GroupCount `json:"students_by_filiere"`
		StudentsByLevel     []GroupCount `json:"students_by_level"`
		TotalIncome         float64      `json:"total_income"`
		TotalExpenses       float64      `json:"total_expenses"`
		Balance             float64      `json:"balance"`
	}
)

type (
	StudentQuerier interface {
		Query(ctx context.Context, scope core.Scope, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
	}

	ProfessorQuerier interface {
		QueryProfessors(ctx context.Context, scope core.Scope, filter staff.ProfessorFilter) ([]staff.Professor, error)
	}

	CatalogQuerier interface {
		QueryClasses(ctx context.Context, scope core.Scope, filter catalog.ClassFilter) ([]catalog.Class, error)
		QueryFormations(ctx context.Context) ([]catalog.Formation, error)
		QueryFilieres(ctx context.Context, formationID string) ([]catalog.Filiere, error)
		QueryLevels(ctx context.Context) ([]catalog.Level, error)
	}

	TransactionQuerier interface {
		Query(ctx context.Context, scope core.Scope, filter finance.QueryFilter) ([]finance.Transaction, error)
	}

	Service struct {
		students     StudentQuerier
		professors   ProfessorQuerier
		catalog      CatalogQuerier
		transactions TransactionQuerier
	}
)

func NewService(students StudentQuerier, professors ProfessorQuerier, catalogSvc CatalogQuerier, transactions TransactionQuerier) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(professors, "professors"),
		vala.IsNotNil(catalogSvc, "catalogSvc"),
		vala.IsNotNil(transactions, "transactions"),
	).CheckAndPanic()

	return &Service{students: students, professors: professors, catalog: catalogSvc, transactions: transactions}
}

// Stats summarizes the students, professors, classes and finances visible to `scope`.
func (svc *Service) Stats(ctx context.Context, scope core.Scope, q StatsQuery) (Stats, error) {
	campusID := scope.Campus(q.CampusID)

	students, err := svc.students.Query(ctx, scope, student.QueryFilter{AcademicYearID: q.AcademicYearID, CampusID: campusID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}
	profs, err := svc.professors.QueryProfessors(ctx, scope, staff.ProfessorFilter{CampusID: campusID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying professors")
	}
	classes, err := svc.catalog.QueryClasses(ctx, scope, catalog.ClassFilter{AcademicYearID: q.AcademicYearID, CampusID: campusID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying classes")
	}
	formations, err := svc.catalog.QueryFormations(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying formations")
	}
	filieres, err := svc.catalog.QueryFilieres(ctx, "")
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying filieres")
	}
	levels, err := svc.catalog.QueryLevels(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying levels")
	}
	txs, err := svc.transactions.Query(ctx, scope, finance.QueryFilter{AcademicYearID: q.AcademicYearID, CampusID: campusID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying transactions")
	}

	formationNames := make(map[string]string, len(formations))
	for _, f := range formations {
		formationNames[f.ID] = f.Name
	}
	filiereNames := make(map[string]string, len(filieres))
	for _, f := range filieres {
		filiereNames[f.ID] = f.Name
	}
	levelNames := make(map[string]string, len(levels))
	for _, l := range levels {
		levelNames[l.ID] = l.Name
	}

	stats := Stats{
		TotalStudents:   len(students),
		TotalProfessors: len(profs),
		TotalClasses:    len(classes),
		TotalFormations: len(formations),
		TotalFilieres:   len(filieres),
		StudentsByFormation: countBy(students, "formation", formationNames, func(s student.Student) string {
			return s.FormationID
		}),
		StudentsByFiliere: countBy(students, "filiere", filiereNames, func(s student.Student) string {
			return s.FiliereID
		}),
		StudentsByLevel: countBy(students, "level", levelNames, func(s student.Student) string {
			return s.LevelID
		}),
	}
	bal := finance.ComputeBalance(txs, 0)
	stats.TotalIncome = bal.Income
	stats.TotalExpenses = bal.Expense
	stats.Balance = bal.Balance
	return stats, nil
}

// countBy groups students on key(s), biggest group first.
func countBy(students []student.Student, kind string, names map[string]string, key func(student.Student) string) []GroupCount {
	counts := make(map[string]int)
	for _, s := range students {
		if id := key(s); id != "" {
			counts[id]++
		}
	}
	groups := make([]GroupCount, 0, len(counts))
	for id, n := range counts {
		name, ok := names[id]
		if !ok {
			name = UnknownName
		}
		groups = append(groups, GroupCount{Kind: kind, ID: id, Name: name, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func (gc GroupCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		gc.Kind + "_id":   gc.ID,
		gc.Kind + "_name": gc.Name,
		"count":           gc.Count,
	})
}
