package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

var ErrPrescriptionNotFound = errors.New("prescription not found")

// Repository persists prescriptions with their items; items are never
// stored or returned detached from their prescription.
type Repository interface {
	Create(ctx context.Context, p *Prescription) (*Prescription, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID directory.PatientID) ([]*Prescription, error)
}
