package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus normalizes user input to a Status value.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}

// Terminal statuses accept no further transitions. Note that COMPLETED
// appointments still occupy their time slot for overlap purposes; only
// CANCELLED frees it.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo is the lifecycle guard: any non-terminal status may move
// to any valid status. The guard is deliberately not a full transition
// graph; a REQUESTED appointment may be completed directly without an
// intermediate confirmation.
func (s Status) CanTransitionTo(next Status) bool {
	return !s.Terminal() && next.Valid()
}

// Appointment is one scheduled encounter. DoctorID and PatientID are
// profile identities, never account identities.
type Appointment struct {
	ID                 uuid.UUID           `json:"id"`
	ClinicID           uuid.UUID           `json:"clinic_id"`
	DoctorID           directory.DoctorID  `json:"doctor_id"`
	PatientID          directory.PatientID `json:"patient_id"`
	StartTime          time.Time           `json:"start_time"`
	EndTime            time.Time           `json:"end_time"`
	Status             Status              `json:"status"`
	Reason             string              `json:"reason"`
	DoctorNotes        *string             `json:"doctor_notes,omitempty"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	RemindedAt         *time.Time          `json:"-"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// Display names joined from the directory at read time, never stored.
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
}

// Overlaps reports whether [start,end) intersects this appointment's window
// using half-open semantics: shared endpoints do not collide.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.Status != StatusCancelled && a.StartTime.Before(end) && a.EndTime.After(start)
}

// EventLog is an append-only audit row written alongside scheduling
// operations.
type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
