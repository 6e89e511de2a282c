package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/appointment"
	"github.com/healsync/healsync-backend/internal/directory"
	redisclient "github.com/healsync/healsync-backend/internal/redis"
)

func bookAppointmentHandler(scheduler *appointment.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
			return
		}

		book := appointment.BookRequest{
			ClinicID:       clinicID,
			Specialization: req.Specialization,
			Start:          req.StartTime,
			End:            req.EndTime,
			Reason:         req.Reason,
		}

		patientAccount, err := directory.ParseAccountID(req.PatientAccountID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_account_id", "patient_account_id must be a valid UUID")
			return
		}
		book.PatientAccount = patientAccount

		if req.DoctorAccountID != "" {
			doctorAccount, err := directory.ParseAccountID(req.DoctorAccountID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_doctor_account_id", "doctor_account_id must be a valid UUID")
				return
			}
			book.DoctorAccount = &doctorAccount
		}

		appt, err := scheduler.Book(r.Context(), book)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func getAppointmentHandler(scheduler *appointment.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		appt, err := scheduler.GetAppointment(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func listDoctorAppointmentsHandler(scheduler *appointment.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, status, ok := parseListParams(w, r)
		if !ok {
			return
		}

		appts, err := scheduler.ListByDoctorAccount(r.Context(), accountID, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appts)
	}
}

func listPatientAppointmentsHandler(scheduler *appointment.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, status, ok := parseListParams(w, r)
		if !ok {
			return
		}

		appts, err := scheduler.ListByPatientAccount(r.Context(), accountID, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appts)
	}
}

func updateStatusHandler(lifecycle *appointment.Lifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		status, err := appointment.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}

		appt, err := lifecycle.SetStatus(r.Context(), id, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func cancelAppointmentHandler(lifecycle *appointment.Lifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req CancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := lifecycle.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func doctorNotesHandler(lifecycle *appointment.Lifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		var req DoctorNotesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := lifecycle.SetDoctorNotes(r.Context(), id, req.Notes)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseListParams(w http.ResponseWriter, r *http.Request) (directory.AccountID, *appointment.Status, bool) {
	accountID, err := directory.ParseAccountID(chi.URLParam(r, "accountId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_account_id", "accountId must be a valid UUID")
		return directory.AccountID{}, nil, false
	}

	var status *appointment.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := appointment.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return directory.AccountID{}, nil, false
		}
		status = &parsed
	}

	return accountID, status, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, directory.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrSchedulingConflict):
		writeError(w, http.StatusConflict, "scheduling_conflict", err.Error())
	case errors.Is(err, appointment.ErrNoAvailableDoctor):
		writeError(w, http.StatusConflict, "no_available_doctor", err.Error())
	case errors.Is(err, appointment.ErrDoctorBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "booking_in_progress", "doctor is currently being booked, please retry shortly")
	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
