package report

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

const reportColumns = `
	id, appointment_id, doctor_id, patient_id, title, description, report_type, created_at`

func scanReport(row pgx.Row) (*MedicalReport, error) {
	var (
		r         MedicalReport
		doctorID  uuid.UUID
		patientID uuid.UUID
	)

	err := row.Scan(
		&r.ID,
		&r.AppointmentID,
		&doctorID,
		&patientID,
		&r.Title,
		&r.Description,
		&r.ReportType,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	r.DoctorID = directory.DoctorID(doctorID)
	r.PatientID = directory.PatientID(patientID)
	return &r, nil
}

// Create inserts the report and its attachment rows in one transaction.
func (r *PgRepository) Create(ctx context.Context, rep *MedicalReport) (*MedicalReport, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO medical_reports
			(id, appointment_id, doctor_id, patient_id, title, description, report_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING `+reportColumns+`
	`, id, rep.AppointmentID, rep.DoctorID.UUID(), rep.PatientID.UUID(), rep.Title, rep.Description, rep.ReportType)

	created, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("insert medical report: %w", err)
	}

	for _, att := range rep.Attachments {
		var stored Attachment
		err := tx.QueryRow(ctx, `
			INSERT INTO report_attachments
				(id, report_id, file_name, file_url, size_bytes, content_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING id, report_id, file_name, file_url, size_bytes, content_type, created_at
		`, uuid.New(), created.ID, att.FileName, att.FileURL, att.SizeBytes, att.ContentType).Scan(
			&stored.ID, &stored.ReportID, &stored.FileName, &stored.FileURL,
			&stored.SizeBytes, &stored.ContentType, &stored.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert report attachment: %w", err)
		}
		created.Attachments = append(created.Attachments, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit report tx: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM medical_reports
		WHERE id = $1
	`, id)

	rep, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachTo(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID directory.PatientID) ([]*MedicalReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM medical_reports
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID.UUID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*MedicalReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rep := range result {
		if err := r.attachTo(ctx, rep); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *PgRepository) attachTo(ctx context.Context, rep *MedicalReport) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, file_name, file_url, size_bytes, content_type, created_at
		FROM report_attachments
		WHERE report_id = $1
		ORDER BY created_at
	`, rep.ID)
	if err != nil {
		return fmt.Errorf("load report attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.ReportID, &att.FileName, &att.FileURL,
			&att.SizeBytes, &att.ContentType, &att.CreatedAt); err != nil {
			return err
		}
		rep.Attachments = append(rep.Attachments, att)
	}
	return rows.Err()
}
