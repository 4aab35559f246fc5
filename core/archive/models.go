package archive

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

const (
	DocCertificateFrequentation = "certificate_frequentation"
	DocCertificateScolarite     = "certificate_scolarite"
	DocCertificateAdmission     = "certificate_admission"
	DocAttestationAuth          = "attestation_auth"
	DocBulletin                 = "bulletin"
	DocDiploma                  = "diploma"
	DocStudentCard              = "student_card"
	DocStaffCard                = "staff_card"
)

type DocumentType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var DocumentTypes = []DocumentType{
	{Value: DocCertificateFrequentation, Label: "Certificat de fréquentation"},
	{Value: DocCertificateScolarite, Label: "Certificat de scolarité"},
	{Value: DocCertificateAdmission, Label: "Certificat d'admission"},
	{Value: DocAttestationAuth, Label: "Attestation d'authentification"},
	{Value: DocBulletin, Label: "Bulletin"},
	{Value: DocDiploma, Label: "Diplôme"},
	{Value: DocStudentCard, Label: "Carte étudiante"},
	{Value: DocStaffCard, Label: "Carte professionnelle"},
}

func IsDocumentType(s string) bool {
	for _, dt := range DocumentTypes {
		if dt.Value == s {
			return true
		}
	}
	return false
}

// Archive logs the download of a generated document.
// StudentID holds the staff member's id for staff cards.
type Archive struct {
	ID             string      `json:"id" db:"id"`
	DocumentType   string      `json:"document_type" db:"document_type"`
	StudentID      string      `json:"student_id" db:"student_id"`
	StudentName    null.String `json:"student_name" db:"student_name"`
	AcademicYearID string      `json:"academic_year_id" db:"academic_year_id"`
	CampusID       string      `json:"campus_id" db:"campus_id"`
	DownloadedBy   string      `json:"downloaded_by" db:"downloaded_by"`
	DownloadedAt   time.Time   `json:"downloaded_at" db:"downloaded_at"`
}

type ArchiveInput struct {
	DocumentType   string `json:"document_type" validate:"required,doctype"`
	StudentID      string `json:"student_id" validate:"required,uuid"`
	AcademicYearID string `json:"academic_year_id" validate:"required,uuid"`
	CampusID       string `json:"campus_id" validate:"required,uuid"`
	DownloadedBy   string `json:"downloaded_by"`
}

func (in *ArchiveInput) Validate(validate *validator.Validate) error {
	in.DocumentType = core.CleanString(in.DocumentType)
	in.DownloadedBy = core.CleanString(in.DownloadedBy)
	return validate.Struct(in)
}

type QueryFilter struct {
	CampusID       string `query:"campus_id"`
	AcademicYearID string `query:"academic_year_id"`
	DocumentType   string `query:"document_type"`
	StudentID      string `query:"student_id"`
}
