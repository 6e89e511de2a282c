package report

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
)

var ErrReportNotFound = errors.New("medical report not found")

// Repository persists reports together with their attachment metadata.
type Repository interface {
	Create(ctx context.Context, r *MedicalReport) (*MedicalReport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error)
	ListByPatient(ctx context.Context, patientID directory.PatientID) ([]*MedicalReport, error)
}
