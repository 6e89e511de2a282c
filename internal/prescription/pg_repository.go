package prescription

import (
	"context"
	"errors"
	"fmt"

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

const prescriptionColumns = `
	id, report_id, doctor_id, patient_id, notes, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var (
		p         Prescription
		doctorID  uuid.UUID
		patientID uuid.UUID
	)

	err := row.Scan(
		&p.ID,
		&p.ReportID,
		&doctorID,
		&patientID,
		&p.Notes,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	p.DoctorID = directory.DoctorID(doctorID)
	p.PatientID = directory.PatientID(patientID)
	return &p, nil
}

// Create inserts the prescription and its items in one transaction.
func (r *PgRepository) Create(ctx context.Context, p *Prescription) (*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin prescription tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO prescriptions
			(id, report_id, doctor_id, patient_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+prescriptionColumns+`
	`, uuid.New(), p.ReportID, p.DoctorID.UUID(), p.PatientID.UUID(), p.Notes)

	created, err := scanPrescription(row)
	if err != nil {
		return nil, fmt.Errorf("insert prescription: %w", err)
	}

	for _, item := range p.Items {
		var stored Item
		err := tx.QueryRow(ctx, `
			INSERT INTO prescription_items
				(id, prescription_id, medicine_name, dosage, frequency, duration_days, instructions)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, prescription_id, medicine_name, dosage, frequency, duration_days, instructions
		`, uuid.New(), created.ID, item.MedicineName, item.Dosage, item.Frequency, item.DurationDays, item.Instructions).Scan(
			&stored.ID, &stored.PrescriptionID, &stored.MedicineName, &stored.Dosage,
			&stored.Frequency, &stored.DurationDays, &stored.Instructions,
		)
		if err != nil {
			return nil, fmt.Errorf("insert prescription item: %w", err)
		}
		created.Items = append(created.Items, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit prescription tx: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE id = $1
	`, id)

	p, err := scanPrescription(row)
	if err != nil {
		return nil, err
	}
	if err := r.hydrateItems(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID directory.PatientID) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID.UUID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range result {
		if err := r.hydrateItems(ctx, p); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *PgRepository) hydrateItems(ctx context.Context, p *Prescription) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prescription_id, medicine_name, dosage, frequency, duration_days, instructions
		FROM prescription_items
		WHERE prescription_id = $1
		ORDER BY medicine_name
	`, p.ID)
	if err != nil {
		return fmt.Errorf("load prescription items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.PrescriptionID, &item.MedicineName, &item.Dosage,
			&item.Frequency, &item.DurationDays, &item.Instructions); err != nil {
			return err
		}
		p.Items = append(p.Items, item)
	}
	return rows.Err()
}
