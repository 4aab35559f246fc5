package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/supinter/ums/apps/api/echo"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/user"
)

func Test_catalogApi_publicLists(t *testing.T) {
	c := resetDB(t)

	runHTTPTests(t, []httpTest{
		{name: "academic years", path: "/api/academic-years", wantData: marshallList(t, c.Year)},
		{name: "formations", path: "/api/formations", wantData: marshallList(t, c.Formation)},
		{name: "filieres", path: "/api/filieres", wantData: marshallList(t, c.Filiere)},
		{name: "filieres of formation", path: "/api/filieres?formation_id=" + c.Formation.ID, wantData: marshallList(t, c.Filiere)},
		{name: "filieres of unknown formation", path: "/api/filieres?formation_id=" + c.Campus.ID, wantData: marshallList(t)},
		{name: "levels", path: "/api/levels", wantData: marshallList(t, c.Level)},
		{name: "campus detail needs auth", path: "/api/campuses/" + c.Campus.ID, wantCode: http.StatusUnauthorized},
		{name: "classes need auth", path: "/api/classes", wantCode: http.StatusUnauthorized},
	})

	rec := do(http.MethodGet, "/api/campuses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var campuses []catalog.Campus
	decode(t, rec, &campuses)
	assert.ElementsMatch(t, []catalog.Campus{c.Campus, c.OtherCampus}, campuses)
}

func Test_catalogApi_campuses(t *testing.T) {
	c := resetDB(t)
	founder := getToken(t, createFounder(t))
	director := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))

	runHTTPTests(t, []httpTest{
		{
			name: "founder only", method: http.MethodPost, path: "/api/campuses", token: director,
			body: []byte(`{"name": "Yamoussoukro"}`), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "name required", method: http.MethodPost, path: "/api/campuses", token: founder,
			body: []byte(`{"name": "   "}`), wantCode: http.StatusBadRequest,
		},
		{name: "detail", path: "/api/campuses/" + c.Campus.ID, token: director, wantData: marshallObj(t, c.Campus)},
		{name: "not a uuid", path: "/api/campuses/abc", token: director, wantCode: http.StatusNotFound},
		{
			name: "in use", method: http.MethodDelete, path: "/api/campuses/" + c.Campus.ID, token: founder,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "cet élément est utilisé par d'autres enregistrements"}),
		},
		{
			name: "deleted", method: http.MethodDelete, path: "/api/campuses/" + c.OtherCampus.ID, token: founder,
			wantData: marshallObj(t, MessageResponse{Message: "Campus supprimé"}),
		},
	})

	t.Run("create & update", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/campuses", founder, []byte(`{"name": " Yamoussoukro ", "phone": "0102030405"}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var campus catalog.Campus
		decode(t, rec, &campus)
		assert.Equal(t, "Yamoussoukro", campus.Name)
		assert.Equal(t, "0102030405", campus.Phone.String)
		assert.False(t, campus.Address.Valid)

		rec = do(http.MethodPut, "/api/campuses/"+campus.ID, founder, []byte(`{"name": "Yakro"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &campus)
		assert.Equal(t, "Yakro", campus.Name)
		assert.False(t, campus.Phone.Valid)
	})
}

func Test_catalogApi_academicYears(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createFounder(t))

	runHTTPTests(t, []httpTest{
		{
			name: "end before start", method: http.MethodPost, path: "/api/academic-years", token: token,
			body:     []byte(`{"name": "2025-2026", "start_date": "2026-07-01", "end_date": "2025-10-01"}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"end_date": "la date de fin doit suivre la date de début"}),
		},
		{
			name: "bad date", method: http.MethodPost, path: "/api/academic-years", token: token,
			body: []byte(`{"name": "2025-2026", "start_date": "01/10/2025"}`), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("a new active year deactivates the others", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/academic-years", token, []byte(`{"name": "2025-2026", "start_date": "2025-10-01", "end_date": "2026-07-31", "is_active": true}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var year catalog.AcademicYear
		decode(t, rec, &year)
		assert.True(t, year.IsActive)

		rec = do(http.MethodGet, "/api/academic-years/"+c.Year.ID, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var old catalog.AcademicYear
		decode(t, rec, &old)
		assert.False(t, old.IsActive)
	})
}

func Test_catalogApi_filieres(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createFounder(t))

	rec := do(http.MethodPost, "/api/formations", token, []byte(`{"name": "Master", "code": "MAS"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var master catalog.Formation
	decode(t, rec, &master)

	runHTTPTests(t, []httpTest{
		{
			name: "formations required", method: http.MethodPost, path: "/api/filieres", token: token,
			body: []byte(`{"name": "Gestion", "code": "GES", "formation_ids": []}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown formation", method: http.MethodPost, path: "/api/filieres", token: token,
			body:     marshallObj(t, catalog.FiliereInput{Name: "Gestion", Code: "GES", FormationIDs: []string{c.Campus.ID}}),
			wantCode: http.StatusBadRequest,
		},
	})

	rec = do(http.MethodPut, "/api/filieres/"+c.Filiere.ID, token, marshallObj(t, catalog.FiliereInput{
		Name: "Informatique", Code: "INF", FormationIDs: []string{c.Formation.ID, master.ID, master.ID},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var filiere catalog.Filiere
	decode(t, rec, &filiere)
	assert.ElementsMatch(t, []string{c.Formation.ID, master.ID}, filiere.FormationIDs)

	rec = do(http.MethodGet, "/api/filieres?formation_id="+master.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var filieres []catalog.Filiere
	decode(t, rec, &filieres)
	require.Len(t, filieres, 1)
	assert.Equal(t, c.Filiere.ID, filieres[0].ID)
}

func Test_catalogApi_classes(t *testing.T) {
	c := resetDB(t)
	founder := getToken(t, createFounder(t))
	remote := getToken(t, createStaffUser(t, user.RoleDirector, c.OtherCampus.ID))
	local := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))

	input := catalog.ClassInput{
		Name:           "L1 Info B",
		Code:           "L1-INF-B",
		FormationID:    c.Formation.ID,
		FiliereID:      c.Filiere.ID,
		LevelID:        c.Level.ID,
		AcademicYearID: c.Year.ID,
	}

	runHTTPTests(t, []httpTest{
		{name: "own campus", path: "/api/classes", token: local, wantData: marshallList(t, c.Class)},
		{name: "other campus sees nothing", path: "/api/classes?campus_id=" + c.Campus.ID, token: remote, wantData: marshallList(t)},
		{name: "other campus detail", path: "/api/classes/" + c.Class.ID, token: remote, wantCode: http.StatusNotFound},
		{name: "founder filters", path: "/api/classes?campus_id=" + c.Campus.ID, token: founder, wantData: marshallList(t, c.Class)},
		{
			name: "founder must pick a campus", method: http.MethodPost, path: "/api/classes", token: founder,
			body: marshallObj(t, input), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"campus_id": "this field is required"}),
		},
		{
			name: "other campus delete", method: http.MethodDelete, path: "/api/classes/" + c.Class.ID, token: remote,
			wantCode: http.StatusNotFound,
		},
	})

	t.Run("campus is pinned for campus staff", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/classes", remote, marshallObj(t, input))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var class catalog.Class
		decode(t, rec, &class)
		assert.Equal(t, c.OtherCampus.ID, class.CampusID)
		assert.Equal(t, c.OtherCampus.Name, class.CampusName)
		assert.Equal(t, c.Filiere.Name, class.FiliereName)
	})

	t.Run("filiere must belong to the formation", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/formations", founder, []byte(`{"name": "BTS", "code": "BTS"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		var bts catalog.Formation
		decode(t, rec, &bts)

		bad := input
		bad.FormationID = bts.ID
		rec = do(http.MethodPost, "/api/classes", local, marshallObj(t, bad))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"filiere_id": "la filière n'appartient pas à cette formation"}),
		}, rec)
	})
}

func Test_catalogApi_subjectsAndCascade(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))

	t.Run("defaults", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/subjects", token, marshallObj(t, catalog.SubjectInput{
			Name: "Anglais", Code: "ANG1", FormationID: c.Formation.ID, FiliereID: c.Filiere.ID, LevelID: c.Level.ID,
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var subject catalog.Subject
		decode(t, rec, &subject)
		assert.Equal(t, catalog.DefaultCredits, subject.Credits)
		assert.Equal(t, catalog.DefaultCoefficient, subject.Coefficient)
	})

	t.Run("filter", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/subjects?level_id="+c.Level.ID, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var subjects []catalog.Subject
		decode(t, rec, &subjects)
		assert.Len(t, subjects, 2)
	})

	t.Run("cascade", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/cascade?formation_id="+c.Formation.ID, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var opts catalog.CascadeOptions
		decode(t, rec, &opts)
		assert.Len(t, opts.Filieres, 1)
		assert.Empty(t, opts.Levels)
		assert.Empty(t, opts.Classes)

		rec = do(http.MethodGet, "/api/cascade?formation_id="+c.Formation.ID+"&filiere_id="+c.Filiere.ID+"&level_id="+c.Level.ID, token)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &opts)
		assert.Len(t, opts.Levels, 1)
		assert.Len(t, opts.Subjects, 2)
		require.Len(t, opts.Classes, 1)
		assert.Equal(t, c.Class.ID, opts.Classes[0].ID)
	})

	runHTTPTests(t, []httpTest{
		{
			name: "delete subject", method: http.MethodDelete, path: "/api/subjects/" + c.Subject.ID, token: token,
			wantData: marshallObj(t, MessageResponse{Message: "Matière supprimée"}),
		},
		{name: "subject gone", path: "/api/subjects/" + c.Subject.ID, token: token, wantCode: http.StatusNotFound},
	})
}
