package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/prescription"
	"github.com/healsync/healsync-backend/internal/report"
)

func createReportHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		create := report.CreateRequest{
			Title:       req.Title,
			Description: req.Description,
			ReportType:  req.ReportType,
		}

		var ok bool
		if create.DoctorAccount, create.PatientAccount, ok = parseAccountPair(w, req.DoctorAccountID, req.PatientAccountID); !ok {
			return
		}

		if req.AppointmentID != "" {
			apptID, err := uuid.Parse(req.AppointmentID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
				return
			}
			create.AppointmentID = &apptID
		}

		for _, att := range req.Attachments {
			create.Attachments = append(create.Attachments, report.AttachmentInput{
				FileName:    att.FileName,
				FileURL:     att.FileURL,
				SizeBytes:   att.SizeBytes,
				ContentType: att.ContentType,
			})
		}

		created, err := svc.Create(r.Context(), create)
		if err != nil {
			handleRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func listPatientReportsHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := parseAccountParam(w, r)
		if !ok {
			return
		}

		reports, err := svc.ListByPatientAccount(r.Context(), accountID)
		if err != nil {
			handleRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, reports)
	}
}

func createPrescriptionHandler(svc *prescription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		create := prescription.CreateRequest{Notes: req.Notes}

		var ok bool
		if create.DoctorAccount, create.PatientAccount, ok = parseAccountPair(w, req.DoctorAccountID, req.PatientAccountID); !ok {
			return
		}

		if req.ReportID != "" {
			reportID, err := uuid.Parse(req.ReportID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_report_id", "report_id must be a valid UUID")
				return
			}
			create.ReportID = &reportID
		}

		for _, item := range req.Items {
			create.Items = append(create.Items, prescription.ItemInput{
				MedicineName: item.MedicineName,
				Dosage:       item.Dosage,
				Frequency:    item.Frequency,
				DurationDays: item.DurationDays,
				Instructions: item.Instructions,
			})
		}

		created, err := svc.Create(r.Context(), create)
		if err != nil {
			handleRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func listPatientPrescriptionsHandler(svc *prescription.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := parseAccountParam(w, r)
		if !ok {
			return
		}

		prescriptions, err := svc.ListByPatientAccount(r.Context(), accountID)
		if err != nil {
			handleRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, prescriptions)
	}
}

func parseAccountParam(w http.ResponseWriter, r *http.Request) (directory.AccountID, bool) {
	accountID, err := directory.ParseAccountID(chi.URLParam(r, "accountId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_account_id", "accountId must be a valid UUID")
		return directory.AccountID{}, false
	}
	return accountID, true
}

func parseAccountPair(w http.ResponseWriter, doctorRaw, patientRaw string) (directory.AccountID, directory.AccountID, bool) {
	doctorAccount, err := directory.ParseAccountID(doctorRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_account_id", "doctor_account_id must be a valid UUID")
		return directory.AccountID{}, directory.AccountID{}, false
	}
	patientAccount, err := directory.ParseAccountID(patientRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_account_id", "patient_account_id must be a valid UUID")
		return directory.AccountID{}, directory.AccountID{}, false
	}
	return doctorAccount, patientAccount, true
}

func handleRecordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, directory.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, report.ErrReportNotFound):
		writeError(w, http.StatusNotFound, "report_not_found", err.Error())
	case errors.Is(err, prescription.ErrPrescriptionNotFound):
		writeError(w, http.StatusNotFound, "prescription_not_found", err.Error())
	case errors.Is(err, report.ErrValidation), errors.Is(err, prescription.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
