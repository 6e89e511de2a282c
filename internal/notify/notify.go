package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/metrics"
)

// Kind enumerates the notification events the backend emits.
type Kind string

const (
	KindAppointmentRequested Kind = "appointment_requested"
	KindAppointmentConfirmed Kind = "appointment_confirmed"
	KindAppointmentCancelled Kind = "appointment_cancelled"
	KindAppointmentReminder  Kind = "appointment_reminder"
	KindReportUploaded       Kind = "report_uploaded"
	KindPrescriptionCreated  Kind = "prescription_created"
)

// Event is a single notification to a single recipient. Data keys are
// template fields (patient_name, doctor_name, start_time, reason, ...).
type Event struct {
	Kind      Kind
	Recipient string
	Data      map[string]string
}

// Notifier delivers events best-effort. Callers emit only after their own
// state change is durable; a delivery error must never be propagated back
// into the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier stands in when no mail transport is configured. It writes the
// event to the log and always succeeds.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.logger.Info().
		Str("kind", string(ev.Kind)).
		Str("recipient", ev.Recipient).
		Fields(map[string]any{"data": ev.Data}).
		Msg("notification (mail delivery disabled)")
	return nil
}

// Emit delivers one event best-effort, detached from the caller's
// cancellation so an aborted request cannot strand a committed event.
// Failures are logged and counted, never returned.
func Emit(ctx context.Context, n Notifier, logger zerolog.Logger, ev Event) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := n.Notify(sendCtx, ev); err != nil {
		metrics.NotificationFailures.WithLabelValues(string(ev.Kind)).Inc()
		logger.Error().
			Err(err).
			Str("kind", string(ev.Kind)).
			Str("recipient", ev.Recipient).
			Msg("notification delivery failed")
	}
}
