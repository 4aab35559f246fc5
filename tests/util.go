// Package testutil seeds records for the tests of the API and the admin CLI.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
)

var founder = core.Scope{Unrestricted: true}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, campusID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if campusID != "" {
		usr.CampusID = null.StringFrom(campusID)
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Catalog is a complete curriculum chain on one campus, plus a second campus.
type Catalog struct {
	Campus      catalog.Campus
	OtherCampus catalog.Campus
	Year        catalog.AcademicYear
	Formation   catalog.Formation
	Filiere     catalog.Filiere
	Level       catalog.Level
	Class       catalog.Class
	Subject     catalog.Subject
}

func SeedCatalog(t *testing.T, svc *catalog.Service) Catalog {
	ctx := context.Background()
	var (
		c   Catalog
		err error
	)
	fatal := func(step string) {
		if err != nil {
			t.Fatalf("SeedCatalog() failed at %s: %v", step, err)
		}
	}

	c.Campus, err = svc.CreateCampus(ctx, catalog.CampusInput{Name: "Abidjan Plateau"})
	fatal("campus")
	c.OtherCampus, err = svc.CreateCampus(ctx, catalog.CampusInput{Name: "Bouaké"})
	fatal("other campus")
	c.Year, err = svc.CreateAcademicYear(ctx, catalog.AcademicYearInput{
		Name: "2024-2025", StartDate: "2024-10-01", EndDate: "2025-07-31", IsActive: true,
	})
	fatal("academic year")
	c.Formation, err = svc.CreateFormation(ctx, catalog.FormationInput{Name: "Licence", Code: "LIC"})
	fatal("formation")
	c.Filiere, err = svc.CreateFiliere(ctx, catalog.FiliereInput{
		Name: "Informatique", Code: "INF", FormationIDs: []string{c.Formation.ID},
	})
	fatal("filiere")
	order := 1
	c.Level, err = svc.CreateLevel(ctx, catalog.LevelInput{Name: "L1", Order: &order})
	fatal("level")
	c.Class, err = svc.CreateClass(ctx, founder, catalog.ClassInput{
		Name:           "L1 Info A",
		Code:           "L1-INF-A",
		FormationID:    c.Formation.ID,
		FiliereID:      c.Filiere.ID,
		LevelID:        c.Level.ID,
		CampusID:       c.Campus.ID,
		AcademicYearID: c.Year.ID,
	})
	fatal("class")
	credits, coef := 3, 2.0
	c.Subject, err = svc.CreateSubject(ctx, catalog.SubjectInput{
		Name:        "Algorithmique",
		Code:        "ALGO1",
		Credits:     &credits,
		Coefficient: &coef,
		FormationID: c.Formation.ID,
		FiliereID:   c.Filiere.ID,
		LevelID:     c.Level.ID,
	})
	fatal("subject")
	return c
}

// StudentInput returns a valid enrollment of a student in the class of c.
func StudentInput(c Catalog, firstName, lastName string) student.StudentInput {
	return student.StudentInput{
		PermanentID:    "P-" + firstName + lastName,
		CampusID:       c.Campus.ID,
		AcademicYearID: c.Year.ID,
		FormationID:    c.Formation.ID,
		FiliereID:      c.Filiere.ID,
		LevelID:        c.Level.ID,
		ClassID:        c.Class.ID,
		Status:         student.StatusAssigned,
		FirstName:      firstName,
		LastName:       lastName,
		BirthDate:      "2004-03-15",
		BirthPlace:     "Abidjan",
		Gender:         student.GenderMale,
		Phone:          "0700000000",
		Nationality:    student.DefaultNationality,
		TuitionAmount:  500000,
	}
}

func CreateStudent(t *testing.T, svc *student.Service, c Catalog, firstName, lastName string) student.Student {
	stu, err := svc.Create(context.Background(), founder, StudentInput(c, firstName, lastName))
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}
