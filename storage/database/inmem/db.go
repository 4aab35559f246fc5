// Package inmemdb stores every record in process memory. It backs the
// `memory` database engine and the tests.
package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/grade"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
)

// DB holds the tables. A single lock guards them all so that reference checks
// and cascades see a consistent state.
type DB struct {
	sync.RWMutex

	users         map[string]user.User
	campuses      map[string]catalog.Campus
	academicYears map[string]catalog.AcademicYear
	formations    map[string]catalog.Formation
	filieres      map[string]catalog.Filiere
	levels        map[string]catalog.Level
	classes       map[string]catalog.Class
	subjects      map[string]catalog.Subject
	students      map[string]student.Student
	absences      map[string]student.Absence
	professors    map[string]staff.Professor
	hours         map[string]staff.Hours
	staff         map[string]staff.Staff
	grades        map[string]grade.Grade
	transactions  map[string]finance.Transaction
	archives      map[string]archive.Archive
}

func Open() *DB {
	return &DB{
		users:         make(map[string]user.User),
		campuses:      make(map[string]catalog.Campus),
		academicYears: make(map[string]catalog.AcademicYear),
		formations:    make(map[string]catalog.Formation),
		filieres:      make(map[string]catalog.Filiere),
		levels:        make(map[string]catalog.Level),
		classes:       make(map[string]catalog.Class),
		subjects:      make(map[string]catalog.Subject),
		students:      make(map[string]student.Student),
		absences:      make(map[string]student.Absence),
		professors:    make(map[string]staff.Professor),
		hours:         make(map[string]staff.Hours),
		staff:         make(map[string]staff.Staff),
		grades:        make(map[string]grade.Grade),
		transactions:  make(map[string]finance.Transaction),
		archives:      make(map[string]archive.Archive),
	}
}

// Flush empties every table.
func (db *DB) Flush() {
	fresh := Open()
	db.Lock()
	defer db.Unlock()
	db.users = fresh.users
	db.campuses = fresh.campuses
	db.academicYears = fresh.academicYears
	db.formations = fresh.formations
	db.filieres = fresh.filieres
	db.levels = fresh.levels
	db.classes = fresh.classes
	db.subjects = fresh.subjects
	db.students = fresh.students
	db.absences = fresh.absences
	db.professors = fresh.professors
	db.hours = fresh.hours
	db.staff = fresh.staff
	db.grades = fresh.grades
	db.transactions = fresh.transactions
	db.archives = fresh.archives
}

// matches reports whether `want` is empty or equal to `got`.
func matches(want, got string) bool {
	return want == "" || want == got
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortBy sorts `items` with the first ordering whose field has a comparator in
// `less`, falling back to `def`.
func sortBy[T any](items []T, orderings []core.DBOrdering, less map[string]func(a, b T) bool, def func(a, b T) bool) {
	cmp := def
	for _, ord := range orderings {
		if fn, ok := less[ord.Field]; ok {
			if ord.Ascending {
				cmp = fn
			} else {
				cmp = func(a, b T) bool { return fn(b, a) }
			}
			break
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return cmp(items[i], items[j]) })
}
