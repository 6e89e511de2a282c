package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

// MedicalReport is a clinical document issued by a doctor for a patient,
// optionally tied to the appointment it came out of. File bytes live in
// external storage; only attachment metadata is kept here.
type MedicalReport struct {
	ID            uuid.UUID           `json:"id"`
	AppointmentID *uuid.UUID          `json:"appointment_id,omitempty"`
	DoctorID      directory.DoctorID  `json:"doctor_id"`
	PatientID     directory.PatientID `json:"patient_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	ReportType    string              `json:"report_type,omitempty"`
	Attachments   []Attachment        `json:"attachments,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`

	DoctorName string `json:"doctor_name,omitempty"`
}

// Attachment is metadata about a stored file, not the file itself.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	ReportID    uuid.UUID `json:"report_id"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
