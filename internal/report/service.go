package report

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

var ErrValidation = errors.New("invalid report request")

// Service creates and lists medical reports. Callers identify the doctor and
// patient by account; the service resolves both to profile identities before
// anything is stored.
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
	AppointmentID  *uuid.UUID
	DoctorAccount  directory.AccountID
	PatientAccount directory.AccountID
	Title          string
	Description    string
	ReportType     string
	Attachments    []AttachmentInput
}

type AttachmentInput struct {
	FileName    string
	FileURL     string
	SizeBytes   int64
	ContentType string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*MedicalReport, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	for _, att := range req.Attachments {
		if strings.TrimSpace(att.FileName) == "" || strings.TrimSpace(att.FileURL) == "" {
			return nil, fmt.Errorf("%w: attachments need a file name and URL", ErrValidation)
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

	rep := &MedicalReport{
		AppointmentID: req.AppointmentID,
		DoctorID:      doc.ID,
		PatientID:     patient.ID,
		Title:         req.Title,
		Description:   req.Description,
		ReportType:    req.ReportType,
	}
	for _, att := range req.Attachments {
		rep.Attachments = append(rep.Attachments, Attachment{
			FileName:    att.FileName,
			FileURL:     att.FileURL,
			SizeBytes:   att.SizeBytes,
			ContentType: att.ContentType,
		})
	}

	created, err := s.repo.Create(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("create medical report: %w", err)
	}
	created.DoctorName = doc.FullName

	notify.Emit(ctx, s.notifier, s.logger, notify.Event{
		Kind:      notify.KindReportUploaded,
		Recipient: patient.Email,
		Data: map[string]string{
			"patient_name": patient.FullName,
			"doctor_name":  doc.FullName,
			"title":        created.Title,
		},
	})

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateDoctorName(ctx, rep)
	return rep, nil
}

// ListByPatientAccount lists a patient's reports, newest first. A missing
// patient profile yields an empty list, not an error.
func (s *Service) ListByPatientAccount(ctx context.Context, accountID directory.AccountID) ([]*MedicalReport, error) {
	patient, err := s.dir.PatientByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			return []*MedicalReport{}, nil
		}
		return nil, err
	}

	reports, err := s.repo.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("list reports by patient: %w", err)
	}
	for _, rep := range reports {
		s.populateDoctorName(ctx, rep)
	}
	return reports, nil
}

func (s *Service) populateDoctorName(ctx context.Context, rep *MedicalReport) {
	if doc, err := s.dir.DoctorByID(ctx, rep.DoctorID); err == nil {
		rep.DoctorName = doc.FullName
	}
}
