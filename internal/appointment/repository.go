package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the scheduler and the
// lifecycle service.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Listings, ordered by start time ascending. A nil status means all.
	ListByDoctor(ctx context.Context, doctorID directory.DoctorID, status *Status) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID directory.PatientID, status *Status) ([]*Appointment, error)

	// ExistsOverlap is the availability index: true when the doctor has a
	// non-cancelled appointment intersecting [start,end).
	ExistsOverlap(ctx context.Context, doctorID directory.DoctorID, start, end time.Time) (bool, error)

	// Compare-and-swap mutations: the row is updated only while its status
	// still equals from, so two racing transitions cannot both win.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	CancelFrom(ctx context.Context, id uuid.UUID, from Status, reason string) (*Appointment, error)

	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error)

	// Reminder worker
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*Appointment, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error

	// Audit trail
	InsertEvent(ctx context.Context, ev EventLog) error
}
