package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/supinter/ums/apps/api/echo"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/user"
)

func createProfessor(t *testing.T, token string) staff.Professor {
	rec := do(http.MethodPost, "/api/professors", token, marshallObj(t, staff.ProfessorInput{
		FirstName: "Ibrahim",
		LastName:  "Touré",
		Phone:     "0505050505",
		Email:     "I.Toure@Mail.ci",
		Specialty: "Mathématiques",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var prof staff.Professor
	decode(t, rec, &prof)
	return prof
}

func Test_staffApi_professors(t *testing.T) {
	c := resetDB(t)
	local := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleDirector, c.OtherCampus.ID))

	prof := createProfessor(t, local)
	assert.Equal(t, c.Campus.ID, prof.CampusID)
	assert.Equal(t, c.Campus.Name, prof.CampusName)
	assert.Equal(t, "i.toure@mail.ci", prof.Email.String)

	upd := staff.ProfessorInput{FirstName: "Ibrahim", LastName: "Touré", Phone: "0707", Specialty: "Statistiques"}
	runHTTPTests(t, []httpTest{
		{name: "list", path: "/api/professors", token: local, wantData: marshallList(t, prof)},
		{name: "list of another campus", path: "/api/professors", token: remote, wantData: marshallList(t)},
		{name: "detail of another campus", path: "/api/professors/" + prof.ID, token: remote, wantCode: http.StatusNotFound},
		{
			name: "specialty required", method: http.MethodPost, path: "/api/professors", token: local,
			body:     []byte(`{"first_name": "A", "last_name": "B", "phone": "01"}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"specialty": "this field is required"}),
		},
		{
			name: "update from another campus", method: http.MethodPut, path: "/api/professors/" + prof.ID, token: remote,
			body: marshallObj(t, upd), wantCode: http.StatusNotFound,
		},
	})

	rec := do(http.MethodPut, "/api/professors/"+prof.ID, local, marshallObj(t, upd))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated staff.Professor
	decode(t, rec, &updated)
	assert.Equal(t, "Statistiques", updated.Specialty)
	assert.False(t, updated.Email.Valid)

	runHTTPTests(t, []httpTest{
		{
			name: "delete", method: http.MethodDelete, path: "/api/professors/" + prof.ID, token: local,
			wantData: marshallObj(t, MessageResponse{Message: "Professeur supprimé"}),
		},
		{name: "gone", path: "/api/professors/" + prof.ID, token: local, wantCode: http.StatusNotFound},
	})
}

func Test_staffApi_hours(t *testing.T) {
	c := resetDB(t)
	local := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleDirector, c.OtherCampus.ID))
	prof := createProfessor(t, local)

	session := func(date, start, end string, done float64) staff.HoursInput {
		return staff.HoursInput{
			ProfessorID:       prof.ID,
			AcademicYearID:    c.Year.ID,
			FormationID:       c.Formation.ID,
			FiliereID:         c.Filiere.ID,
			LevelID:           c.Level.ID,
			ClassID:           c.Class.ID,
			TotalHoursPlanned: 30,
			Date:              date,
			StartTime:         start,
			EndTime:           end,
			HoursDone:         done,
		}
	}

	var first, second staff.Hours
	rec := do(http.MethodPost, "/api/professor-hours", local, marshallObj(t, session("2024-11-04", "08:00", "11:00", 3)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &first)
	assert.Equal(t, "Ibrahim Touré", first.ProfessorName)
	assert.Equal(t, 3.0, first.TotalHoursDone)
	assert.Equal(t, 27.0, first.HoursRemaining)

	rec = do(http.MethodPost, "/api/professor-hours", local, marshallObj(t, session("2024-11-05", "14:00", "16:30", 2.5)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &second)
	assert.Equal(t, 5.5, second.TotalHoursDone)
	assert.Equal(t, 24.5, second.HoursRemaining)

	t.Run("totals cover the whole group", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/professor-hours/"+first.ID, local)
		require.Equal(t, http.StatusOK, rec.Code)
		var got staff.Hours
		decode(t, rec, &got)
		assert.Equal(t, 5.5, got.TotalHoursDone)

		rec = do(http.MethodGet, "/api/professor-hours?professor_id="+prof.ID, local)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []staff.Hours
		decode(t, rec, &list)
		require.Len(t, list, 2)
		for _, h := range list {
			assert.Equal(t, 24.5, h.HoursRemaining)
		}
	})

	remoteSession := session("2024-11-06", "08:00", "09:00", 1)
	remoteSession.ProfessorID = createProfessor(t, remote).ID

	runHTTPTests(t, []httpTest{
		{
			name: "end before start", method: http.MethodPost, path: "/api/professor-hours", token: local,
			body:     marshallObj(t, session("2024-11-06", "10:00", "09:00", 1)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"end_time": "l'heure de fin doit suivre l'heure de début"}),
		},
		{
			name: "bad time", method: http.MethodPost, path: "/api/professor-hours", token: local,
			body: marshallObj(t, session("2024-11-06", "8h", "09:00", 1)), wantCode: http.StatusBadRequest,
		},
		{
			name: "professor of another campus", method: http.MethodPost, path: "/api/professor-hours", token: remote,
			body:     marshallObj(t, session("2024-11-06", "08:00", "09:00", 1)),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"professor_id": "Professeur non trouvé"}),
		},
		{
			name: "class of another campus", method: http.MethodPost, path: "/api/professor-hours", token: remote,
			body:     marshallObj(t, remoteSession),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"class_id": "la classe ne correspond pas à la sélection"}),
		},
		{name: "hidden from another campus", path: "/api/professor-hours", token: remote, wantData: marshallList(t)},
		{
			name: "delete", method: http.MethodDelete, path: "/api/professor-hours/" + second.ID, token: local,
			wantData: marshallObj(t, MessageResponse{Message: "Heures supprimées"}),
		},
	})
}

func Test_staffApi_staff(t *testing.T) {
	c := resetDB(t)
	founder := getToken(t, createFounder(t))
	remote := getToken(t, createStaffUser(t, user.RoleDirector, c.OtherCampus.ID))

	in := staff.StaffInput{
		FirstName:      "Mariam",
		LastName:       "Ouattara",
		BirthDate:      "1990-05-12",
		BirthPlace:     "Korhogo",
		Function:       "Comptable",
		CampusID:       c.Campus.ID,
		AcademicYearID: c.Year.ID,
	}
	rec := do(http.MethodPost, "/api/staff", founder, marshallObj(t, in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var member staff.Staff
	decode(t, rec, &member)
	assert.Equal(t, c.Campus.ID, member.CampusID)

	runHTTPTests(t, []httpTest{
		{name: "list", path: "/api/staff?campus_id=" + c.Campus.ID, token: founder, wantData: marshallList(t, member)},
		{name: "list of another campus", path: "/api/staff", token: remote, wantData: marshallList(t)},
		{name: "detail of another campus", path: "/api/staff/" + member.ID, token: remote, wantCode: http.StatusNotFound},
		{
			name: "unknown academic year", method: http.MethodPost, path: "/api/staff", token: remote,
			body: marshallObj(t, staff.StaffInput{
				FirstName: "A", LastName: "B", BirthDate: "1990-01-01", BirthPlace: "C", Function: "D", AcademicYearID: c.Campus.ID,
			}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"academic_year_id": "élément introuvable"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/api/staff/" + member.ID, token: founder,
			wantData: marshallObj(t, MessageResponse{Message: "Membre du personnel supprimé"}),
		},
	})
}
