package machine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -- Mock Repository --

type mockMachineRepo struct {
	store         map[uuid.UUID]*Machine
	interventions map[uuid.UUID]int
	faults        map[uuid.UUID]int
	failWith      error
}

func newMockMachineRepo() *mockMachineRepo {
	return &mockMachineRepo{
		store:         make(map[uuid.UUID]*Machine),
		interventions: make(map[uuid.UUID]int),
		faults:        make(map[uuid.UUID]int),
	}
}

func (m *mockMachineRepo) Create(_ context.Context, mc *Machine) error {
	if m.failWith != nil {
		return m.failWith
	}
	mc.ID = uuid.New()
	mc.CreatedAt = time.Now()
	mc.UpdatedAt = mc.CreatedAt
	m.store[mc.ID] = mc
	return nil
}

func (m *mockMachineRepo) GetByID(_ context.Context, id uuid.UUID) (*Machine, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	mc, ok := m.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return mc, nil
}

func (m *mockMachineRepo) Update(_ context.Context, mc *Machine) error {
	if _, ok := m.store[mc.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.store[mc.ID] = mc
	return nil
}

func (m *mockMachineRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockMachineRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Machine, int, error) {
	var r []*Machine
	for _, mc := range m.store {
		if st, ok := params["status"]; ok && mc.Status != st {
			continue
		}
		r = append(r, mc)
	}
	return r, len(r), nil
}

func (m *mockMachineRepo) CountReferences(_ context.Context, id uuid.UUID) (int, int, error) {
	return m.interventions[id], m.faults[id], nil
}

func (m *mockMachineRepo) SetMaintenanceDates(_ context.Context, id uuid.UUID, last, next *time.Time) error {
	mc, ok := m.store[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if last != nil {
		mc.LastMaintenance = last
	}
	if next != nil {
		mc.NextMaintenance = next
	}
	return nil
}

// -- Service Tests --

func TestCreateMachine_Success(t *testing.T) {
	svc := NewService(newMockMachineRepo())
	m := &Machine{Name: "Fresenius 4008S", SerialNumber: "FR-4008-001"}
	if err := svc.CreateMachine(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if m.Status != StatusOperational {
		t.Errorf("expected default status operational, got %q", m.Status)
	}
}

func TestCreateMachine_MissingName(t *testing.T) {
	svc := NewService(newMockMachineRepo())
	if err := svc.CreateMachine(context.Background(), &Machine{SerialNumber: "S1"}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreateMachine_MissingSerial(t *testing.T) {
	svc := NewService(newMockMachineRepo())
	if err := svc.CreateMachine(context.Background(), &Machine{Name: "M1"}); err == nil {
		t.Fatal("expected error for missing serial_number")
	}
}

func TestCreateMachine_InvalidStatus(t *testing.T) {
	svc := NewService(newMockMachineRepo())
	m := &Machine{Name: "M1", SerialNumber: "S1", Status: "bogus"}
	if err := svc.CreateMachine(context.Background(), m); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestCreateMachine_ValidStatuses(t *testing.T) {
	for _, s := range []string{StatusOperational, StatusMaintenance, StatusOutOfService} {
		svc := NewService(newMockMachineRepo())
		m := &Machine{Name: "M1", SerialNumber: "S1", Status: s}
		if err := svc.CreateMachine(context.Background(), m); err != nil {
			t.Errorf("status %q should be valid: %v", s, err)
		}
	}
}

func TestDeleteMachine_Unreferenced(t *testing.T) {
	repo := newMockMachineRepo()
	svc := NewService(repo)
	m := &Machine{Name: "M1", SerialNumber: "S1"}
	svc.CreateMachine(context.Background(), m)
	if err := svc.DeleteMachine(context.Background(), m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetMachine(context.Background(), m.ID); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestDeleteMachine_Referenced(t *testing.T) {
	repo := newMockMachineRepo()
	svc := NewService(repo)
	m := &Machine{Name: "M1", SerialNumber: "S1"}
	svc.CreateMachine(context.Background(), m)
	repo.interventions[m.ID] = 2

	err := svc.DeleteMachine(context.Background(), m.ID)
	if err == nil {
		t.Fatal("expected delete to be refused")
	}
	if !strings.HasPrefix(err.Error(), "Cannot delete machine") {
		t.Errorf("error = %q, want prefix 'Cannot delete machine'", err.Error())
	}
	if _, getErr := svc.GetMachine(context.Background(), m.ID); getErr != nil {
		t.Error("machine should still exist after refused delete")
	}
}

func TestRecordMaintenance(t *testing.T) {
	repo := newMockMachineRepo()
	svc := NewService(repo)
	m := &Machine{Name: "M1", SerialNumber: "S1"}
	svc.CreateMachine(context.Background(), m)

	performed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	next := performed.AddDate(0, 3, 0)
	if err := svc.RecordMaintenance(context.Background(), m.ID, performed, &next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetMachine(context.Background(), m.ID)
	if got.LastMaintenance == nil || !got.LastMaintenance.Equal(performed) {
		t.Errorf("last_maintenance = %v, want %v", got.LastMaintenance, performed)
	}
	if got.NextMaintenance == nil || !got.NextMaintenance.Equal(next) {
		t.Errorf("next_maintenance = %v, want %v", got.NextMaintenance, next)
	}
}

func TestSearchMachines_ByStatus(t *testing.T) {
	svc := NewService(newMockMachineRepo())
	svc.CreateMachine(context.Background(), &Machine{Name: "A", SerialNumber: "S1"})
	svc.CreateMachine(context.Background(), &Machine{Name: "B", SerialNumber: "S2", Status: StatusOutOfService})

	items, total, err := svc.SearchMachines(context.Background(), map[string]string{"status": StatusOutOfService}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 machine, got total=%d len=%d", total, len(items))
	}
}
