package prescription

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
	prescriptions map[uuid.UUID]*Prescription
	order         []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) (*Prescription, error) {
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	for i := range stored.Items {
		stored.Items[i].ID = uuid.New()
		stored.Items[i].PrescriptionID = stored.ID
	}
	m.prescriptions[stored.ID] = &stored
	m.order = append(m.order, stored.ID)

	out := stored
	return &out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	out := *p
	return &out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID directory.PatientID) ([]*Prescription, error) {
	var result []*Prescription
	for _, id := range m.order {
		if p := m.prescriptions[id]; p.PatientID == patientID {
			out := *p
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
			FullName:  "Dr. Okafor",
			Email:     "okafor@clinic.example",
		},
		patient: &directory.PatientProfile{
			ID:        directory.PatientID(uuid.New()),
			AccountID: directory.AccountID(uuid.New()),
			FullName:  "Ben Patient",
			Email:     "ben@patients.example",
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

func newService() (*Service, *mockDirectory, *fakeNotifier) {
	dir := newMockDirectory()
	notifier := &fakeNotifier{}
	return NewService(newMockRepo(), dir, notifier, zerolog.Nop()), dir, notifier
}

func TestCreateRequiresItems(t *testing.T) {
	svc, dir, _ := newService()

	_, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Notes:          "rest and fluids",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty items, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Items:          []ItemInput{{MedicineName: "  ", Dosage: "500mg"}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank medicine name, got %v", err)
	}
}

func TestCreateStoresProfileIDsAndNotifies(t *testing.T) {
	svc, dir, notifier := newService()

	created, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Notes:          "take with food",
		Items: []ItemInput{
			{MedicineName: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", DurationDays: 7},
			{MedicineName: "Ibuprofen", Dosage: "200mg", Frequency: "as needed"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.DoctorID != dir.doctor.ID || created.PatientID != dir.patient.ID {
		t.Errorf("prescription must carry profile IDs, got doctor=%s patient=%s", created.DoctorID, created.PatientID)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	for _, item := range created.Items {
		if item.PrescriptionID != created.ID {
			t.Errorf("item not linked to prescription: %+v", item)
		}
	}

	if len(notifier.events) != 1 || notifier.events[0].Kind != notify.KindPrescriptionCreated {
		t.Fatalf("expected one prescription-created notification, got %+v", notifier.events)
	}
	if notifier.events[0].Recipient != dir.patient.Email {
		t.Errorf("notification should go to the patient, got %q", notifier.events[0].Recipient)
	}
}

func TestCreateUnknownDoctorAccount(t *testing.T) {
	svc, dir, _ := newService()

	_, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  directory.AccountID(uuid.New()),
		PatientAccount: dir.patient.AccountID,
		Items:          []ItemInput{{MedicineName: "Amoxicillin"}},
	})
	if !errors.Is(err, directory.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreateSucceedsWhenNotifierFails(t *testing.T) {
	svc, dir, notifier := newService()
	notifier.err = errors.New("smtp down")

	if _, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Items:          []ItemInput{{MedicineName: "Amoxicillin"}},
	}); err != nil {
		t.Fatalf("notifier failure must not fail the create: %v", err)
	}
}

func TestListByPatientAccountHydratesItems(t *testing.T) {
	svc, dir, _ := newService()

	if _, err := svc.Create(context.Background(), CreateRequest{
		DoctorAccount:  dir.doctor.AccountID,
		PatientAccount: dir.patient.AccountID,
		Items:          []ItemInput{{MedicineName: "Amoxicillin", Dosage: "500mg"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.ListByPatientAccount(context.Background(), dir.patient.AccountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Items) != 1 {
		t.Fatalf("expected one prescription with one item, got %+v", list)
	}
	if list[0].DoctorName != "Dr. Okafor" {
		t.Errorf("doctor name not populated, got %q", list[0].DoctorName)
	}

	empty, err := svc.ListByPatientAccount(context.Background(), directory.AccountID(uuid.New()))
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown account should yield empty list, got %v, %v", empty, err)
	}
}
