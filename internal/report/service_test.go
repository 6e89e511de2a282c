package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/notify"
)

type mockRepo struct {
	reports map[uuid.UUID]*MedicalReport
	order   []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{reports: make(map[uuid.UUID]*MedicalReport)}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalReport) (*MedicalReport, error) {
	stored := *r
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	for i := range stored.Attachments {
		stored.Attachments[i].ID = uuid.New()
		stored.Attachments[i].ReportID = stored.ID
	}
	m.reports[stored.ID] = &stored
	m.order = append(m.order, stored.ID)

	out := stored
	return &out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	out := *r
	return &out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID directory.PatientID) ([]*MedicalReport, error) {
	var result []*MedicalReport
	for _, id := range m.order {
		if r := m.reports[id]; r.PatientID == patientID {
			out := *r
			result = append(result, &out)
		}
	}
	return result, nil
}

type mockDirectory struct {
	doctor  *directory.DoctorProfile
	patient *directory.PatientProfile
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		doctor: &directory.DoctorProfile{
			ID:        directory.DoctorID(uuid.New()),
			AccountID: directory.AccountID(uuid.New()),
			FullName:  "Dr. Reyes",
			Email:     "reyes@clinic.example",
		},
		patient: &directory.PatientProfile{
			ID:        directory.PatientID(uuid.New()),
			AccountID: directory.AccountID(uuid.New()),
			FullName:  "Ada Patient",
			Email:     "ada@patients.example",
		},
	}
}

func (d *mockDirectory) DoctorByAccount(_ context.Context, accountID directory.AccountID) (*directory.DoctorProfile, error) {
	if d.doctor.AccountID == accountID {
		return d.doctor, nil
	}
	return nil, directory.ErrDoctorNotFound
}

func (d *mockDirectory) DoctorByID(_ context.Context, id directory.DoctorID) (*directory.DoctorProfile, error) {
	if d.doctor.ID == id {
		return d.doctor, nil
	}
	return nil, directory.ErrDoctorNotFound
}

func (d *mockDirectory) PatientByAccount(_ context.Context, accountID directory.AccountID) (*directory.PatientProfile, error) {
	if d.patient.AccountID == accountID {
		return d.patient, nil
	}
	return nil, directory.ErrPatientNotFound
}

func (d *mockDirectory) PatientByID(_ context.Context, id directory.PatientID) (*directory.PatientProfile, error) {
	if d.patient.ID == id {
		return d.patient, nil
	}
	return nil, directory.ErrPatientNotFound
}

func (d *mockDirectory) DoctorsBySpecialization(_ context.Context, _ string) ([]*directory.DoctorProfile, error) {
	return nil, nil
}

type fakeNotifier struct {
	events []notify.Event
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, ev notify.Event) error {
	n.events = append(n.events, ev)
	return n.err
}

func newService() (*Service, *mockRepo, *mockDirectory, *fakeNotifier) {
	repo := newMockRepo()
	dir := newMockDirectory()
	notifier := &fakeNotifier{}
	return NewService(repo, dir, notifier, zerolog.Nop()), repo, dir, notifier
}

func TestCreateResolvesAccountsToProfiles(t *testing.T) {
	svc, _, dir, notifier := newService()

	created, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Title:          "Blood Panel",
		ReportType:     "LAB",
		Attachments: []AttachmentInput{
			{FileName: "panel.pdf", FileURL: "https://files.example/panel.pdf", SizeBytes: 1024, ContentType: "application/pdf"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.DoctorID != dir.doctor.ID {
		t.Errorf("stored doctor ID must be the profile ID, got %s", created.DoctorID)
	}
	if created.PatientID != dir.patient.ID {
		t.Errorf("stored patient ID must be the profile ID, got %s", created.PatientID)
	}
	if len(created.Attachments) != 1 || created.Attachments[0].ReportID != created.ID {
		t.Errorf("attachment not linked to report: %+v", created.Attachments)
	}
	if created.DoctorName != "Dr. Reyes" {
		t.Errorf("doctor name not populated, got %q", created.DoctorName)
	}

	if len(notifier.events) != 1 || notifier.events[0].Kind != notify.KindReportUploaded {
		t.Fatalf("expected one report-uploaded notification, got %+v", notifier.events)
	}
	if notifier.events[0].Recipient != dir.patient.Email {
		t.Errorf("notification should go to the patient, got %q", notifier.events[0].Recipient)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _, dir, _ := newService()

	_, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Title:          "  ",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateRejectsIncompleteAttachment(t *testing.T) {
	svc, _, dir, _ := newService()

	_, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Title:          "X-Ray",
		Attachments:    []AttachmentInput{{FileName: "scan.png"}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateUnknownAccounts(t *testing.T) {
	svc, _, dir, _ := newService()

	_, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  directory.AccountID(uuid.New()),
		PatientAccount: dir.patient.AccountID,
		Title:          "Scan",
	})
	if !errors.Is(err, directory.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: directory.AccountID(uuid.New()),
		Title:          "Scan",
	})
	if !errors.Is(err, directory.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCreateSucceedsWhenNotifierFails(t *testing.T) {
	svc, repo, dir, notifier := newService()
	notifier.err = errors.New("smtp down")

	created, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Title:          "MRI",
	})
	if err != nil {
		t.Fatalf("notifier failure must not fail the create: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), created.ID); err != nil {
		t.Fatalf("report should be stored: %v", err)
	}
}

func TestListByPatientAccount(t *testing.T) {
	svc, _, dir, _ := newService()

	for _, title := range []string{"First", "Second"} {
		if _, err := svc.Create(context.Background(), CreateRequest{
			DoctorAccount:  dir.doctor.AccountID,
			PatientAccount: dir.patient.AccountID,
			Title:          title,
		}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	reports, err := svc.ListByPatientAccount(context.Background(), dir.patient.AccountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	for _, rep := range reports {
		if rep.DoctorName != "Dr. Reyes" {
			t.Errorf("doctor name not populated on listing: %q", rep.DoctorName)
		}
	}

	empty, err := svc.ListByPatientAccount(context.Background(), directory.AccountID(uuid.New()))
	if err != nil {
		t.Fatalf("unknown account should not error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("unknown account should yield an empty list, got %d", len(empty))
	}
}
