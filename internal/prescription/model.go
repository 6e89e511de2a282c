package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

// Prescription is a set of medication orders issued by a doctor for a
// patient, optionally linked to the medical report it was based on.
type Prescription struct {
	ID        uuid.UUID           `json:"id"`
	ReportID  *uuid.UUID          `json:"report_id,omitempty"`
	DoctorID  directory.DoctorID  `json:"doctor_id"`
	PatientID directory.PatientID `json:"patient_id"`
	Notes     string              `json:"notes,omitempty"`
	Items     []Item              `json:"items"`
	CreatedAt time.Time           `json:"created_at"`

	DoctorName string `json:"doctor_name,omitempty"`
}

// Item is one medication line on a prescription.
type Item struct {
	ID             uuid.UUID `json:"id"`
	PrescriptionID uuid.UUID `json:"prescription_id"`
	MedicineName   string    `json:"medicine_name"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	DurationDays   int       `json:"duration_days,omitempty"`
	Instructions   string    `json:"instructions,omitempty"`
}
