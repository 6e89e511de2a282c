package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healsync/healsync-backend/internal/directory"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, clinic_id, doctor_id, patient_id, start_time, end_time, status,
	reason, doctor_notes, cancellation_reason, reminded_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a                  Appointment
		doctorID           uuid.UUID
		patientID          uuid.UUID
		notes, cancelledFor *string
		remindedAt         *time.Time
	)

	err := row.Scan(
		&a.ID,
		&a.ClinicID,
		&doctorID,
		&patientID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Reason,
		&notes,
		&cancelledFor,
		&remindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.DoctorID = directory.DoctorID(doctorID)
	a.PatientID = directory.PatientID(patientID)
	a.DoctorNotes = notes
	a.CancellationReason = cancelledFor
	a.RemindedAt = remindedAt
	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, clinic_id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.ClinicID, a.DoctorID.UUID(), a.PatientID.UUID(), a.StartTime, a.EndTime, a.Status, a.Reason)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID directory.DoctorID, status *Status) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY start_time
	`, doctorID.UUID(), statusArg(status))
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID directory.PatientID, status *Status) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY start_time
	`, patientID.UUID(), statusArg(status))
}

// ExistsOverlap uses half-open interval intersection: a shared endpoint is
// not a conflict. COMPLETED rows still count; only CANCELLED is excluded.
func (r *PgRepository) ExistsOverlap(ctx context.Context, doctorID directory.DoctorID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND status <> 'CANCELLED'
			  AND start_time < $3
			  AND end_time > $2
		)
	`, doctorID.UUID(), start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) CancelFrom(ctx context.Context, id uuid.UUID, from Status, reason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'CANCELLED',
		    cancellation_reason = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
		RETURNING `+appointmentColumns+`
	`, id, from, reason)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET doctor_notes = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, notes)

	return scanAppointment(row)
}

func (r *PgRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'CONFIRMED'
		  AND reminded_at IS NULL
		  AND start_time >= $1
		  AND start_time < $2
		ORDER BY start_time
	`, from, to)
}

func (r *PgRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments SET reminded_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}

	return nil
}

func (r *PgRepository) list(ctx context.Context, sql string, args ...any) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func statusArg(s *Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
