package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/metrics"
	"github.com/healsync/healsync-backend/internal/notify"
	redisclient "github.com/healsync/healsync-backend/internal/redis"
)

const (
	EventAppointmentRequested = "APPOINTMENT_REQUESTED"
	EventStatusChanged        = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

var (
	ErrValidation         = errors.New("invalid request")
	ErrSchedulingConflict = errors.New("doctor has an overlapping appointment at this time")
	ErrNoAvailableDoctor  = errors.New("no doctor available for the selected specialization")
	ErrDoctorBeingBooked  = errors.New("doctor is currently being booked, please retry")
)

// Scheduler books appointments: it resolves the target doctor (explicit or
// first-fit by specialization), verifies the requested window is free, and
// persists the appointment in REQUESTED state.
type Scheduler struct {
	repo     Repository
	dir      directory.Directory
	locker   redisclient.Locker
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewScheduler(repo Repository, dir directory.Directory, locker redisclient.Locker, notifier notify.Notifier, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		repo:     repo,
		dir:      dir,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
	}
}

// BookRequest carries account identities; the scheduler translates them to
// profile identities before anything touches the appointment store.
// If both DoctorAccount and Specialization are set, the explicit doctor
// wins and the specialization is ignored.
type BookRequest struct {
	ClinicID       uuid.UUID
	DoctorAccount  *directory.AccountID
	PatientAccount directory.AccountID
	Specialization string
	Start          time.Time
	End            time.Time
	Reason         string
}

// Book runs the overlap check and the insert under a per-doctor lock so two
// concurrent bookings for the same doctor cannot both observe a free window.
func (s *Scheduler) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if !req.Start.Before(req.End) {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	if req.DoctorAccount == nil && strings.TrimSpace(req.Specialization) == "" {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: either a doctor or a specialization must be selected", ErrValidation)
	}

	var (
		booked *Appointment
		err    error
	)
	if req.DoctorAccount != nil {
		booked, err = s.bookExplicitDoctor(ctx, req)
	} else {
		booked, err = s.bookBySpecialization(ctx, req)
	}
	if err != nil {
		metrics.BookingsTotal.WithLabelValues(bookingOutcome(err)).Inc()
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("booked").Inc()
	populateNames(ctx, s.dir, booked)

	// Post-commit, best-effort. The booking has already succeeded; a mail
	// failure is logged and counted, never surfaced.
	if patient, perr := s.dir.PatientByID(ctx, booked.PatientID); perr == nil {
		notify.Emit(ctx, s.notifier, s.logger, notify.Event{
			Kind:      notify.KindAppointmentRequested,
			Recipient: patient.Email,
			Data: map[string]string{
				"patient_name": patient.FullName,
				"doctor_name":  displayDoctorName(booked),
				"start_time":   booked.StartTime.Format(time.RFC3339),
			},
		})
	}

	return booked, nil
}

func (s *Scheduler) bookExplicitDoctor(ctx context.Context, req BookRequest) (*Appointment, error) {
	doc, err := s.dir.DoctorByAccount(ctx, *req.DoctorAccount)
	if err != nil {
		return nil, err
	}

	created, err := s.bookWithDoctor(ctx, doc, req)
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBeingBooked
		}
		return nil, err
	}
	return created, nil
}

// bookBySpecialization is deterministic first-fit over the directory's
// specialization ordering, not load-balanced or randomized. A candidate
// whose lock is held by another booking counts as busy and is skipped.
func (s *Scheduler) bookBySpecialization(ctx context.Context, req BookRequest) (*Appointment, error) {
	candidates, err := s.dir.DoctorsBySpecialization(ctx, req.Specialization)
	if err != nil {
		return nil, fmt.Errorf("list doctors by specialization: %w", err)
	}

	for _, doc := range candidates {
		created, err := s.bookWithDoctor(ctx, doc, req)
		if errors.Is(err, ErrSchedulingConflict) || errors.Is(err, redisclient.ErrLockNotAcquired) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return created, nil
	}

	return nil, ErrNoAvailableDoctor
}

// bookWithDoctor holds the doctor lock across the overlap check and the
// insert; this is the critical section of the whole subsystem.
func (s *Scheduler) bookWithDoctor(ctx context.Context, doc *directory.DoctorProfile, req BookRequest) (*Appointment, error) {
	var created *Appointment

	err := s.locker.WithDoctorLock(ctx, doc.ID.UUID(), func(lockCtx context.Context) error {
		overlap, err := s.repo.ExistsOverlap(lockCtx, doc.ID, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap {
			return ErrSchedulingConflict
		}

		patient, err := s.dir.PatientByAccount(lockCtx, req.PatientAccount)
		if err != nil {
			return err
		}

		appt, err := s.repo.Create(lockCtx, &Appointment{
			ClinicID:  req.ClinicID,
			DoctorID:  doc.ID,
			PatientID: patient.ID,
			StartTime: req.Start,
			EndTime:   req.End,
			Status:    StatusRequested,
			Reason:    req.Reason,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		logEvent(lockCtx, s.repo, s.logger, appt.ID, EventAppointmentRequested, map[string]any{
			"doctor_id":  doc.ID.String(),
			"patient_id": patient.ID.String(),
			"start_time": req.Start,
			"end_time":   req.End,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetAppointment retrieves one appointment with display names populated.
func (s *Scheduler) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	populateNames(ctx, s.dir, appt)
	return appt, nil
}

// ListByDoctorAccount lists a doctor's appointments by their account
// identity. A missing profile yields an empty list, not an error.
func (s *Scheduler) ListByDoctorAccount(ctx context.Context, accountID directory.AccountID, status *Status) ([]*Appointment, error) {
	doc, err := s.dir.DoctorByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return []*Appointment{}, nil
		}
		return nil, err
	}

	appts, err := s.repo.ListByDoctor(ctx, doc.ID, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	populateNames(ctx, s.dir, appts...)
	return appts, nil
}

// ListByPatientAccount is the patient-side counterpart of
// ListByDoctorAccount.
func (s *Scheduler) ListByPatientAccount(ctx context.Context, accountID directory.AccountID, status *Status) ([]*Appointment, error) {
	patient, err := s.dir.PatientByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return []*Appointment{}, nil
		}
		return nil, err
	}

	appts, err := s.repo.ListByPatient(ctx, patient.ID, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	populateNames(ctx, s.dir, appts...)
	return appts, nil
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSchedulingConflict), errors.Is(err, ErrDoctorBeingBooked):
		return "conflict"
	case errors.Is(err, ErrNoAvailableDoctor):
		return "no_doctor"
	case errors.Is(err, ErrValidation),
		errors.Is(err, directory.ErrDoctorNotFound),
		errors.Is(err, directory.ErrPatientNotFound):
		return "rejected"
	default:
		return "error"
	}
}

func displayDoctorName(a *Appointment) string {
	if a.DoctorName != "" {
		return a.DoctorName
	}
	return "Doctor"
}

// populateNames joins display names from the directory at read time. Lookup
// failures leave the names empty; they are a convenience, not data.
func populateNames(ctx context.Context, dir directory.Directory, appts ...*Appointment) {
	for _, a := range appts {
		if a == nil {
			continue
		}
		if doc, err := dir.DoctorByID(ctx, a.DoctorID); err == nil {
			a.DoctorName = doc.FullName
		}
		if patient, err := dir.PatientByID(ctx, a.PatientID); err == nil {
			a.PatientName = patient.FullName
		}
	}
}

func logEvent(ctx context.Context, repo Repository, logger zerolog.Logger, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := repo.InsertEvent(ctx, ev); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", eventType).
			Stringer("appointment_id", appointmentID).
			Msg("failed to insert appointment event")
	}
}
