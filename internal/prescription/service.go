package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/notify"
)

var ErrValidation = errors.New("invalid prescription request")

// Service creates and lists prescriptions. Doctor and patient arrive as
// account identities and are resolved to profiles before storage.
type Service struct {
	repo     Repository
	dir      directory.Directory
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, dir directory.Directory, notifier notify.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		logger:   logger,
	}
}

type CreateRequest struct {
	ReportID       *uuid.UUID
	DoctorAccount  directory.AccountID
	PatientAccount directory.AccountID
	Notes          string
	Items          []ItemInput
}

type ItemInput struct {
	MedicineName string
	Dosage       string
	Frequency    string
	DurationDays int
	Instructions string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Prescription, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one medication item is required", ErrValidation)
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.MedicineName) == "" {
			return nil, fmt.Errorf("%w: every item needs a medicine name", ErrValidation)
		}
	}

	doc, err := s.dir.DoctorByAccount(ctx, req.DoctorAccount)
	if err != nil {
		return nil, err
	}
	patient, err := s.dir.PatientByAccount(ctx, req.PatientAccount)
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		ReportID:  req.ReportID,
		DoctorID:  doc.ID,
		PatientID: patient.ID,
		Notes:     req.Notes,
	}
	for _, item := range req.Items {
		p.Items = append(p.Items, Item{
			MedicineName: item.MedicineName,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Instructions: item.Instructions,
		})
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	created.DoctorName = doc.FullName

	notify.Emit(ctx, s.notifier, s.logger, notify.Event{
		Kind:      notify.KindPrescriptionCreated,
		Recipient: patient.Email,
		Data: map[string]string{
			"patient_name": patient.FullName,
			"doctor_name":  doc.FullName,
		},
	})

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateDoctorName(ctx, p)
	return p, nil
}

// ListByPatientAccount lists a patient's prescriptions with items hydrated,
// newest first. A missing patient profile yields an empty list.
func (s *Service) ListByPatientAccount(ctx context.Context, accountID directory.AccountID) ([]*Prescription, error) {
	patient, err := s.dir.PatientByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return []*Prescription{}, nil
		}
		return nil, err
	}

	prescriptions, err := s.repo.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions by patient: %w", err)
	}
	for _, p := range prescriptions {
		s.populateDoctorName(ctx, p)
	}
	return prescriptions, nil
}

func (s *Service) populateDoctorName(ctx context.Context, p *Prescription) {
	if doc, err := s.dir.DoctorByID(ctx, p.DoctorID); err == nil {
		p.DoctorName = doc.FullName
	}
}
