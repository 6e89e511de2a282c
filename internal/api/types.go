package api

import "time"

type BookAppointmentRequest struct {
	ClinicID         string    `json:"clinic_id"`
	DoctorAccountID  string    `json:"doctor_account_id,omitempty"`
	PatientAccountID string    `json:"patient_account_id"`
	Specialization   string    `json:"specialization,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Reason           string    `json:"reason,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type DoctorNotesRequest struct {
	Notes string `json:"notes"`
}

type CreateReportRequest struct {
	AppointmentID    string                   `json:"appointment_id,omitempty"`
	DoctorAccountID  string                   `json:"doctor_account_id"`
	PatientAccountID string                   `json:"patient_account_id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	ReportType       string                   `json:"report_type,omitempty"`
	Attachments      []ReportAttachmentInput  `json:"attachments,omitempty"`
}

type ReportAttachmentInput struct {
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

type CreatePrescriptionRequest struct {
	ReportID         string                  `json:"report_id,omitempty"`
	DoctorAccountID  string                  `json:"doctor_account_id"`
	PatientAccountID string                  `json:"patient_account_id"`
	Notes            string                  `json:"notes,omitempty"`
	Items            []PrescriptionItemInput `json:"items"`
}

type PrescriptionItemInput struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}
