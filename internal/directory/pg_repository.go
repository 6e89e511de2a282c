package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

const doctorColumns = `
	d.id, d.account_id, d.clinic_id, d.full_name, a.email, d.specialization,
	d.license_number, d.experience_years, d.bio, d.created_at, d.updated_at`

const patientColumns = `
	p.id, p.account_id, p.full_name, a.email, p.phone, p.date_of_birth,
	p.created_at, p.updated_at`

func scanDoctor(row pgx.Row) (*DoctorProfile, error) {
	var (
		d          DoctorProfile
		id, acct   uuid.UUID
		bio        *string
	)

	err := row.Scan(
		&id,
		&acct,
		&d.ClinicID,
		&d.FullName,
		&d.Email,
		&d.Specialization,
		&d.LicenseNumber,
		&d.ExperienceYears,
		&bio,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.ID = DoctorID(id)
	d.AccountID = AccountID(acct)
	d.Bio = bio
	return &d, nil
}

func scanPatient(row pgx.Row) (*PatientProfile, error) {
	var (
		p        PatientProfile
		id, acct uuid.UUID
		dob      *time.Time
	)

	err := row.Scan(
		&id,
		&acct,
		&p.FullName,
		&p.Email,
		&p.Phone,
		&dob,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.ID = PatientID(id)
	p.AccountID = AccountID(acct)
	p.DateOfBirth = dob
	return &p, nil
}

func (r *PgDirectory) DoctorByAccount(ctx context.Context, accountID AccountID) (*DoctorProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctor_profiles d
		JOIN accounts a ON a.id = d.account_id
		WHERE d.account_id = $1
	`, accountID.UUID())
	return scanDoctor(row)
}

func (r *PgDirectory) DoctorByID(ctx context.Context, id DoctorID) (*DoctorProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctor_profiles d
		JOIN accounts a ON a.id = d.account_id
		WHERE d.id = $1
	`, id.UUID())
	return scanDoctor(row)
}

func (r *PgDirectory) PatientByAccount(ctx context.Context, accountID AccountID) (*PatientProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patient_profiles p
		JOIN accounts a ON a.id = p.account_id
		WHERE p.account_id = $1
	`, accountID.UUID())
	return scanPatient(row)
}

func (r *PgDirectory) PatientByID(ctx context.Context, id PatientID) (*PatientProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patient_profiles p
		JOIN accounts a ON a.id = p.account_id
		WHERE p.id = $1
	`, id.UUID())
	return scanPatient(row)
}

func (r *PgDirectory) DoctorsBySpecialization(ctx context.Context, specialization string) ([]*DoctorProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctor_profiles d
		JOIN accounts a ON a.id = d.account_id
		WHERE d.specialization = $1
		ORDER BY d.full_name, d.id
	`, specialization)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*DoctorProfile
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
