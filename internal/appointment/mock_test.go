package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/notify"
	redisclient "github.com/healsync/healsync-backend/internal/redis"
)

var errLockHeld = redisclient.ErrLockNotAcquired

// -- Mock appointment repository --

type mockRepo struct {
	mu     sync.Mutex
	appts  map[uuid.UUID]*Appointment
	order  []uuid.UUID
	events []EventLog
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *a
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.appts[stored.ID] = &stored
	m.order = append(m.order, stored.ID)

	out := stored
	return &out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID directory.DoctorID, status *Status) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Appointment
	for _, id := range m.order {
		a := m.appts[id]
		if a.DoctorID != doctorID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out := *a
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID directory.PatientID, status *Status) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Appointment
	for _, id := range m.order {
		a := m.appts[id]
		if a.PatientID != patientID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out := *a
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockRepo) ExistsOverlap(_ context.Context, doctorID directory.DoctorID, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *mockRepo) CancelFrom(_ context.Context, id uuid.UUID, from Status, reason string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusCancelled
	a.CancellationReason = &reason
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *mockRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.DoctorNotes = &notes
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *mockRepo) ListConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Appointment
	for _, id := range m.order {
		a := m.appts[id]
		if a.Status != StatusConfirmed || a.RemindedAt != nil {
			continue
		}
		if a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		out := *a
		result = append(result, &out)
	}
	return result, nil
}

func (m *mockRepo) MarkReminded(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.RemindedAt = &at
	return nil
}

func (m *mockRepo) InsertEvent(_ context.Context, ev EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)
	return nil
}

// -- Mock directory --

type mockDirectory struct {
	doctors  map[directory.DoctorID]*directory.DoctorProfile
	patients map[directory.PatientID]*directory.PatientProfile
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		doctors:  make(map[directory.DoctorID]*directory.DoctorProfile),
		patients: make(map[directory.PatientID]*directory.PatientProfile),
	}
}

func (d *mockDirectory) addDoctor(name, specialization string) *directory.DoctorProfile {
	doc := &directory.DoctorProfile{
		ID:             directory.DoctorID(uuid.New()),
		AccountID:      directory.AccountID(uuid.New()),
		ClinicID:       uuid.New(),
		FullName:       name,
		Email:          name + "@clinic.example",
		Specialization: specialization,
	}
	d.doctors[doc.ID] = doc
	return doc
}

func (d *mockDirectory) addPatient(name string) *directory.PatientProfile {
	p := &directory.PatientProfile{
		ID:        directory.PatientID(uuid.New()),
		AccountID: directory.AccountID(uuid.New()),
		FullName:  name,
		Email:     name + "@patients.example",
	}
	d.patients[p.ID] = p
	return p
}

func (d *mockDirectory) DoctorByAccount(_ context.Context, accountID directory.AccountID) (*directory.DoctorProfile, error) {
	for _, doc := range d.doctors {
		if doc.AccountID == accountID {
			return doc, nil
		}
	}
	return nil, directory.ErrDoctorNotFound
}

func (d *mockDirectory) DoctorByID(_ context.Context, id directory.DoctorID) (*directory.DoctorProfile, error) {
	doc, ok := d.doctors[id]
	if !ok {
		return nil, directory.ErrDoctorNotFound
	}
	return doc, nil
}

func (d *mockDirectory) PatientByAccount(_ context.Context, accountID directory.AccountID) (*directory.PatientProfile, error) {
	for _, p := range d.patients {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, directory.ErrPatientNotFound
}

func (d *mockDirectory) PatientByID(_ context.Context, id directory.PatientID) (*directory.PatientProfile, error) {
	p, ok := d.patients[id]
	if !ok {
		return nil, directory.ErrPatientNotFound
	}
	return p, nil
}

func (d *mockDirectory) DoctorsBySpecialization(_ context.Context, specialization string) ([]*directory.DoctorProfile, error) {
	var result []*directory.DoctorProfile
	for _, doc := range d.doctors {
		if doc.Specialization == specialization {
			result = append(result, doc)
		}
	}
	// Natural directory order: (full_name, id).
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// -- Fake locker --

// fakeLocker runs the callback inline. Doctors listed in held behave as if
// another booking owns their lock.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[uuid.UUID]bool
	acquired []uuid.UUID
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[uuid.UUID]bool)}
}

func (l *fakeLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.held[doctorID] {
		l.mu.Unlock()
		return errLockHeld
	}
	l.acquired = append(l.acquired, doctorID)
	l.mu.Unlock()

	return fn(ctx)
}

// -- Fake notifier --

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, ev)
	return n.err
}

func (n *fakeNotifier) byKind(kind notify.Kind) []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result []notify.Event
	for _, ev := range n.events {
		if ev.Kind == kind {
			result = append(result, ev)
		}
	}
	return result
}
