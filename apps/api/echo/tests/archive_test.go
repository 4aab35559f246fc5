package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/tests"
)

func Test_archiveApi(t *testing.T) {
	c := resetDB(t)
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Awa", "Koné")
	member, err := deps.StaffSvc.CreateStaff(context.Background(), founderScope, staff.StaffInput{
		FirstName:      "Mariam",
		LastName:       "Ouattara",
		BirthDate:      "1990-05-12",
		BirthPlace:     "Korhogo",
		Function:       "Comptable",
		CampusID:       c.Campus.ID,
		AcademicYearID: c.Year.ID,
	})
	require.NoError(t, err)

	local := getToken(t, createStaffUser(t, user.RoleSecretary, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleSecretary, c.OtherCampus.ID))

	// distinct download times
	now := time.Now()
	core.NowFunc = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	defer func() { core.NowFunc = time.Now }()

	post := func(t *testing.T, in archive.ArchiveInput) archive.Archive {
		rec := do(http.MethodPost, "/api/archives", local, marshallObj(t, in))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var arc archive.Archive
		decode(t, rec, &arc)
		return arc
	}

	certificate := post(t, archive.ArchiveInput{
		DocumentType:   archive.DocCertificateScolarite,
		StudentID:      stu.ID,
		AcademicYearID: c.Year.ID,
	})
	assert.Equal(t, "Awa Koné", certificate.StudentName.String)
	assert.Equal(t, "Agent secretary", certificate.DownloadedBy)
	assert.Equal(t, c.Campus.ID, certificate.CampusID)

	card := post(t, archive.ArchiveInput{
		DocumentType:   archive.DocStaffCard,
		StudentID:      member.ID,
		AcademicYearID: c.Year.ID,
		DownloadedBy:   "  Service scolarité ",
	})
	assert.Equal(t, "Mariam Ouattara", card.StudentName.String)
	assert.Equal(t, "Service scolarité", card.DownloadedBy)

	runHTTPTests(t, []httpTest{
		{
			name: "unknown document type", method: http.MethodPost, path: "/api/archives", token: local,
			body: marshallObj(t, archive.ArchiveInput{DocumentType: "passport", StudentID: stu.ID, AcademicYearID: c.Year.ID}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"document_type": "unknown document type"}),
		},
		{
			name: "student card for a staff member", method: http.MethodPost, path: "/api/archives", token: local,
			body:     marshallObj(t, archive.ArchiveInput{DocumentType: archive.DocStudentCard, StudentID: member.ID, AcademicYearID: c.Year.ID}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"student_id": "élément introuvable"}),
		},
		{
			name: "student of another campus", method: http.MethodPost, path: "/api/archives", token: remote,
			body:     marshallObj(t, archive.ArchiveInput{DocumentType: archive.DocBulletin, StudentID: stu.ID, AcademicYearID: c.Year.ID}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"student_id": "élément introuvable"}),
		},
		{name: "list, newest first", path: "/api/archives", token: local, wantData: marshallList(t, card, certificate)},
		{
			name: "list by document type", path: "/api/archives?document_type=" + archive.DocStaffCard, token: local,
			wantData: marshallList(t, card),
		},
		{name: "hidden from another campus", path: "/api/archives", token: remote, wantData: marshallList(t)},
		{name: "document types", path: "/api/archives/document-types", token: local, wantData: marshallObj(t, archive.DocumentTypes)},
		{name: "auth required", path: "/api/archives", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
	})

	require.NoError(t, deps.StudentSvc.Delete(context.Background(), founderScope, stu.ID))
	runHTTPTests(t, []httpTest{
		{name: "kept after the student is deleted", path: "/api/archives", token: local, wantData: marshallList(t, card, certificate)},
	})
}
