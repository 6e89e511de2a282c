package directory

import (
	"time"

	"github.com/google/uuid"
)

// AccountID is the identity a caller authenticates with. It is never used to
// key appointments; the scheduler works on profile IDs only, and the
// translation happens in this package exactly once, at the boundary.
type AccountID uuid.UUID

// DoctorID is the scheduling identity of a doctor profile.
type DoctorID uuid.UUID

// PatientID is the scheduling identity of a patient profile.
type PatientID uuid.UUID

func (id AccountID) UUID() uuid.UUID { return uuid.UUID(id) }
func (id DoctorID) UUID() uuid.UUID  { return uuid.UUID(id) }
func (id PatientID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id DoctorID) String() string  { return uuid.UUID(id).String() }
func (id PatientID) String() string { return uuid.UUID(id).String() }

func (id AccountID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id DoctorID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id PatientID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *AccountID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DoctorID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PatientID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	return AccountID(u), err
}

// DoctorProfile is the scheduling view of a doctor. Email comes from the
// owning account and is carried here so notification recipients resolve
// without a second lookup.
type DoctorProfile struct {
	ID              DoctorID  `json:"id"`
	AccountID       AccountID `json:"account_id"`
	ClinicID        uuid.UUID `json:"clinic_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Specialization  string    `json:"specialization"`
	LicenseNumber   string    `json:"license_number"`
	ExperienceYears int       `json:"experience_years"`
	Bio             *string   `json:"bio,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PatientProfile is the scheduling view of a patient.
type PatientProfile struct {
	ID          PatientID  `json:"id"`
	AccountID   AccountID  `json:"account_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
