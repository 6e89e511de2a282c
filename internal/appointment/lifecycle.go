package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/metrics"
	"github.com/healsync/healsync-backend/internal/notify"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Lifecycle owns every mutation after booking: status transitions, the
// cancellation path, and the doctor-notes update.
type Lifecycle struct {
	repo     Repository
	dir      directory.Directory
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewLifecycle(repo Repository, dir directory.Directory, notifier notify.Notifier, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		logger:   logger,
	}
}

// SetStatus moves an appointment to next unless the current status is
// terminal. The update is compare-and-swap keyed on the observed status, so
// a concurrent transition makes the slower caller fail instead of silently
// overwriting.
func (l *Lifecycle) SetStatus(ctx context.Context, id uuid.UUID, next Status) (*Appointment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, string(next))
	}

	appt, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidTransition, appt.Status)
	}

	updated, err := l.repo.UpdateStatus(ctx, id, appt.Status, next)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost the CAS race: someone else transitioned first.
			return nil, fmt.Errorf("%w: appointment changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(next)).Inc()
	logEvent(ctx, l.repo, l.logger, updated.ID, EventStatusChanged, map[string]any{
		"from": appt.Status,
		"to":   next,
	})
	populateNames(ctx, l.dir, updated)

	if next == StatusConfirmed {
		l.notifyPatient(ctx, updated, notify.KindAppointmentConfirmed, nil)
	}

	return updated, nil
}

// Cancel is a terminal transition; it is the only operation that sets the
// cancellation reason, and the reason is required.
func (l *Lifecycle) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", ErrValidation)
	}

	appt, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidTransition, appt.Status)
	}

	updated, err := l.repo.CancelFrom(ctx, id, appt.Status, reason)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: appointment changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(StatusCancelled)).Inc()
	logEvent(ctx, l.repo, l.logger, updated.ID, EventAppointmentCancelled, map[string]any{
		"from":   appt.Status,
		"reason": reason,
	})
	populateNames(ctx, l.dir, updated)

	l.notifyPatient(ctx, updated, notify.KindAppointmentCancelled, map[string]string{"reason": reason})

	return updated, nil
}

// SetDoctorNotes overwrites the notes field with no status guard: notes may
// be written on appointments in any state, terminal included.
func (l *Lifecycle) SetDoctorNotes(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	updated, err := l.repo.UpdateNotes(ctx, id, notes)
	if err != nil {
		return nil, err
	}
	populateNames(ctx, l.dir, updated)
	return updated, nil
}

// RemindUpcoming notifies patients of confirmed appointments starting within
// lead from now. An appointment is marked reminded only after its
// notification went out, so a failed delivery is retried next run.
func (l *Lifecycle) RemindUpcoming(ctx context.Context, lead time.Duration) (int, error) {
	now := time.Now()
	appts, err := l.repo.ListConfirmedStartingBetween(ctx, now, now.Add(lead))
	if err != nil {
		return 0, fmt.Errorf("find upcoming appointments: %w", err)
	}

	sent := 0
	for _, appt := range appts {
		patient, err := l.dir.PatientByID(ctx, appt.PatientID)
		if err != nil {
			l.logger.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("cannot resolve patient for reminder")
			continue
		}
		populateNames(ctx, l.dir, appt)

		ev := notify.Event{
			Kind:      notify.KindAppointmentReminder,
			Recipient: patient.Email,
			Data: map[string]string{
				"patient_name": patient.FullName,
				"doctor_name":  displayDoctorName(appt),
				"start_time":   appt.StartTime.Format(time.RFC3339),
			},
		}
		if err := l.notifier.Notify(ctx, ev); err != nil {
			metrics.NotificationFailures.WithLabelValues(string(ev.Kind)).Inc()
			l.logger.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("reminder delivery failed")
			continue
		}

		if err := l.repo.MarkReminded(ctx, appt.ID, now); err != nil {
			l.logger.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("failed to mark appointment reminded")
			continue
		}
		metrics.RemindersSent.Inc()
		sent++
	}

	return sent, nil
}

func (l *Lifecycle) notifyPatient(ctx context.Context, appt *Appointment, kind notify.Kind, extra map[string]string) {
	patient, err := l.dir.PatientByID(ctx, appt.PatientID)
	if err != nil {
		l.logger.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("cannot resolve notification recipient")
		return
	}

	data := map[string]string{
		"patient_name": patient.FullName,
		"doctor_name":  displayDoctorName(appt),
		"start_time":   appt.StartTime.Format(time.RFC3339),
	}
	for k, v := range extra {
		data[k] = v
	}

	notify.Emit(ctx, l.notifier, l.logger, notify.Event{
		Kind:      kind,
		Recipient: patient.Email,
		Data:      data,
	})
}
