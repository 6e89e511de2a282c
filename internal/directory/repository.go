package directory

import (
	"context"
	"errors"
)

var (
	ErrDoctorNotFound  = errors.New("doctor profile not found")
	ErrPatientNotFound = errors.New("patient profile not found")
)

// Directory resolves account identities to scheduling profiles. Read-only:
// profile ownership lives with the account system, the scheduler only looks
// things up.
type Directory interface {
	DoctorByAccount(ctx context.Context, accountID AccountID) (*DoctorProfile, error)
	DoctorByID(ctx context.Context, id DoctorID) (*DoctorProfile, error)
	PatientByAccount(ctx context.Context, accountID AccountID) (*PatientProfile, error)
	PatientByID(ctx context.Context, id PatientID) (*PatientProfile, error)

	// DoctorsBySpecialization returns matching doctors in the directory's
	// natural order (full_name, id). The order is what makes first-fit
	// assignment deterministic.
	DoctorsBySpecialization(ctx context.Context, specialization string) ([]*DoctorProfile, error)
}
