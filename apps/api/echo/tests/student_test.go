package tests

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/supinter/ums/apps/api/echo"
	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
	emailsvc "github.com/supinter/ums/services/email"
	"github.com/supinter/ums/tests"
)

func studentIDs(students []student.Student) []string {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return ids
}

func Test_studentApi_create(t *testing.T) {
	c := resetDB(t)
	local := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleSecretary, c.OtherCampus.ID))
	prefix := fmt.Sprintf("ESI%d", core.NowFunc().Year())

	t.Run("matricules follow each other", func(t *testing.T) {
		for i, name := range []string{"Kouassi", "Yao"} {
			in := testutil.StudentInput(c, "Jean", name)
			in.Status = ""
			in.Nationality = ""
			rec := do(http.MethodPost, "/api/students", local, marshallObj(t, in))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var stu student.Student
			decode(t, rec, &stu)
			assert.Equal(t, fmt.Sprintf("%s%04d", prefix, i+1), stu.Matricule)
			assert.Equal(t, student.StatusUnassigned, stu.Status)
			assert.Equal(t, student.DefaultNationality, stu.Nationality)
			assert.Equal(t, c.Class.Name, stu.ClassName)
			assert.Equal(t, 500000.0, stu.TuitionRemaining)
		}
	})

	t.Run("class of another campus", func(t *testing.T) {
		// the class sits on the first campus, remote staff enroll on theirs
		rec := do(http.MethodPost, "/api/students", remote, marshallObj(t, testutil.StudentInput(c, "Awa", "Traoré")))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"class_id": "la classe ne correspond pas à la sélection"}),
		}, rec)
	})

	in := testutil.StudentInput(c, "Awa", "Traoré")
	in.Gender = "X"
	in.BirthDate = "15/03/2004"
	runHTTPTests(t, []httpTest{
		{
			name: "invalid fields", method: http.MethodPost, path: "/api/students", token: local, body: marshallObj(t, in),
			wantCode: http.StatusBadRequest,
		},
		{name: "auth required", method: http.MethodPost, path: "/api/students", body: marshallObj(t, in), wantCode: http.StatusUnauthorized},
	})
}

func Test_studentApi_query(t *testing.T) {
	c := resetDB(t)
	founder := getToken(t, createFounder(t))
	local := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleSecretary, c.OtherCampus.ID))

	koffi := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")
	aya := testutil.CreateStudent(t, deps.StudentSvc, c, "Aya", "Diallo")

	list := func(t *testing.T, token, path string) []string {
		rec := do(http.MethodGet, path, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var students []student.Student
		decode(t, rec, &students)
		return studentIDs(students)
	}

	assert.Equal(t, []string{koffi.ID, aya.ID}, list(t, local, "/api/students"))
	assert.Equal(t, []string{aya.ID, koffi.ID}, list(t, local, "/api/students?ordering=-last_name"))
	assert.Equal(t, []string{aya.ID}, list(t, founder, "/api/students?search=DIAL"))
	assert.Equal(t, []string{koffi.ID}, list(t, local, "/api/students?search="+koffi.Matricule))
	assert.Empty(t, list(t, remote, "/api/students"))
	assert.Empty(t, list(t, local, "/api/students?status="+student.StatusUnassigned))
	assert.Len(t, list(t, founder, "/api/students?class_id="+c.Class.ID), 2)

	runHTTPTests(t, []httpTest{
		{name: "detail", path: "/api/students/" + koffi.ID, token: local, wantData: marshallObj(t, koffi)},
		{name: "detail of another campus", path: "/api/students/" + koffi.ID, token: remote, wantCode: http.StatusNotFound},
		{name: "not a uuid", path: "/api/students/123", token: local, wantCode: http.StatusNotFound},
	})
}

func Test_studentApi_export(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	rec := do(http.MethodGet, "/api/students/export.csv", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="etudiants_`+core.Today()+`.csv"`, rec.Header().Get("Content-Disposition"))

	r := csv.NewReader(strings.NewReader(rec.Body.String()))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Matricule", rows[0][0])
	assert.Equal(t, []string{stu.Matricule, "Bamba", "Koffi", "Licence", "Informatique", "L1", "L1 Info A", "0700000000", ""}, rows[1])

	t.Run("by email", func(t *testing.T) {
		usr := createStaffUser(t, user.RoleDirector, c.Campus.ID)
		rec := do(http.MethodPost, "/api/students/export/email?level_id="+c.Level.ID, getToken(t, usr))
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, MessageResponse{Message: "Export envoyé à " + usr.Email})}, rec)

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, usr.Email, msg.To[0].Address)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "etudiants_"+core.Today()+".csv", msg.Attachments[0].Filename)
		assert.Equal(t, "text/csv; charset=utf-8", msg.Attachments[0].ContentType)

		content, err := base64.StdEncoding.DecodeString(msg.Attachments[0].Content.String())
		require.NoError(t, err)
		assert.Contains(t, string(content), stu.Matricule+";Bamba;Koffi")
	})

	runHTTPTests(t, []httpTest{
		{name: "by email needs a token", method: http.MethodPost, path: "/api/students/export/email", wantCode: http.StatusUnauthorized},
	})
}

func Test_studentApi_update(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	in := testutil.StudentInput(c, "Koffi", "Bamba-Kouadio")
	in.IsExonerated = true
	rec := do(http.MethodPut, "/api/students/"+stu.ID, token, marshallObj(t, in))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated student.Student
	decode(t, rec, &updated)
	assert.Equal(t, stu.Matricule, updated.Matricule)
	assert.Equal(t, "Bamba-Kouadio", updated.LastName)
	assert.Zero(t, updated.TuitionRemaining)
}

func Test_studentApi_tuition(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createStaffUser(t, user.RoleAccountant, c.Campus.ID))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	for _, amount := range []float64{150000, 100000.5} {
		rec := do(http.MethodPost, "/api/transactions", token, marshallObj(t, finance.TransactionInput{
			Date:           "2024-11-05",
			Type:           finance.TypeIncome,
			Category:       student.TuitionCategory,
			Amount:         amount,
			StudentID:      stu.ID,
			AcademicYearID: c.Year.ID,
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(http.MethodGet, "/api/students/"+stu.ID, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got student.Student
	decode(t, rec, &got)
	assert.Equal(t, 250000.5, got.TuitionPaid)
	assert.Equal(t, 249999.5, got.TuitionRemaining)
}

func Test_studentApi_reenroll(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createFounder(t))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	rec := do(http.MethodPost, "/api/academic-years", token, []byte(`{"name": "2025-2026", "is_active": true}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var next struct{ ID string }
	decode(t, rec, &next)

	body := func(yearID, classID string) []byte {
		return marshallObj(t, student.ReenrollInput{
			AcademicYearID: yearID,
			FormationID:    c.Formation.ID,
			FiliereID:      c.Filiere.ID,
			LevelID:        c.Level.ID,
			ClassID:        classID,
			Status:         student.StatusAssigned,
		})
	}

	// the class belongs to the previous year
	rec = do(http.MethodPost, "/api/students/"+stu.ID+"/reenroll", token, body(next.ID, c.Class.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/api/classes", token, []byte(fmt.Sprintf(
		`{"name": "L1 Info A", "code": "L1-INF-A-25", "formation_id": %q, "filiere_id": %q, "level_id": %q, "campus_id": %q, "academic_year_id": %q}`,
		c.Formation.ID, c.Filiere.ID, c.Level.ID, c.Campus.ID, next.ID,
	)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var class struct{ ID string }
	decode(t, rec, &class)

	rec = do(http.MethodPost, "/api/students/"+stu.ID+"/reenroll", token, body(next.ID, class.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved student.Student
	decode(t, rec, &moved)
	assert.Equal(t, next.ID, moved.AcademicYearID)
	assert.Equal(t, class.ID, moved.ClassID)
	assert.Equal(t, c.Campus.ID, moved.CampusID)
	assert.Equal(t, stu.Matricule, moved.Matricule)
}

func Test_studentApi_absences(t *testing.T) {
	c := resetDB(t)
	local := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleSecretary, c.OtherCampus.ID))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	var last student.Absence
	for _, abs := range []student.AbsenceInput{
		{StudentID: stu.ID, AcademicYearID: c.Year.ID, Date: "2024-11-04", Hours: 2},
		{StudentID: stu.ID, AcademicYearID: c.Year.ID, Date: "2024-11-06", Hours: 1.5, Reason: " Malade "},
	} {
		rec := do(http.MethodPost, "/api/student-absences", local, marshallObj(t, abs))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &last)
	}
	assert.Equal(t, 3.5, last.TotalHours)
	assert.Equal(t, "Malade", last.Reason.String)
	assert.Equal(t, "Koffi Bamba", last.StudentName)

	rec := do(http.MethodGet, "/api/student-absences?student_id="+stu.ID, local)
	require.Equal(t, http.StatusOK, rec.Code)
	var absences []student.Absence
	decode(t, rec, &absences)
	require.Len(t, absences, 2)
	assert.Equal(t, "2024-11-06", absences[0].Date)

	runHTTPTests(t, []httpTest{
		{
			name: "student of another campus", method: http.MethodPost, path: "/api/student-absences", token: remote,
			body:     marshallObj(t, student.AbsenceInput{StudentID: stu.ID, AcademicYearID: c.Year.ID, Date: "2024-11-07", Hours: 1}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"student_id": "Étudiant non trouvé"}),
		},
		{
			name: "hours required", method: http.MethodPost, path: "/api/student-absences", token: local,
			body:     marshallObj(t, student.AbsenceInput{StudentID: stu.ID, AcademicYearID: c.Year.ID, Date: "2024-11-07"}),
			wantCode: http.StatusBadRequest,
		},
		{name: "hidden from another campus", path: "/api/student-absences", token: remote, wantData: marshallList(t)},
		{name: "delete from another campus", method: http.MethodDelete, path: "/api/student-absences/" + last.ID, token: remote, wantCode: http.StatusNotFound},
		{
			name: "delete", method: http.MethodDelete, path: "/api/student-absences/" + last.ID, token: local,
			wantData: marshallObj(t, MessageResponse{Message: "Absence supprimée"}),
		},
	})
}

func Test_studentApi_delete(t *testing.T) {
	c := resetDB(t)
	token := getToken(t, createStaffUser(t, user.RoleDirector, c.Campus.ID))
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Koffi", "Bamba")

	rec := do(http.MethodPost, "/api/student-absences", token, marshallObj(t, student.AbsenceInput{
		StudentID: stu.ID, AcademicYearID: c.Year.ID, Date: "2024-11-04", Hours: 2,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	runHTTPTests(t, []httpTest{
		{
			name: "delete", method: http.MethodDelete, path: "/api/students/" + stu.ID, token: token,
			wantData: marshallObj(t, MessageResponse{Message: "Étudiant supprimé"}),
		},
		{name: "gone", path: "/api/students/" + stu.ID, token: token, wantCode: http.StatusNotFound},
		{name: "absences gone", path: "/api/student-absences", token: token, wantData: marshallList(t)},
	})
}
