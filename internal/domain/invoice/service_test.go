package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockInvoiceRepo struct {
	store map[uuid.UUID]*Invoice
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{store: make(map[uuid.UUID]*Invoice)}
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	inv.IssuedAt = time.Now()
	m.store[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inv, nil
}

func (m *mockInvoiceRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := m.store[inv.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.store[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockInvoiceRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	var r []*Invoice
	for _, inv := range m.store {
		if st, ok := params["status"]; ok && inv.Status != st {
			continue
		}
		r = append(r, inv)
	}
	return r, len(r), nil
}

func TestCreateInvoice_Defaults(t *testing.T) {
	svc := NewService(newMockInvoiceRepo())
	inv := &Invoice{Number: "INV-2025-001", Amount: 120.50}
	if err := svc.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != StatusDraft {
		t.Errorf("status = %q, want draft", inv.Status)
	}
	if inv.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", inv.Currency)
	}
}

func TestCreateInvoice_MissingNumber(t *testing.T) {
	svc := NewService(newMockInvoiceRepo())
	if err := svc.CreateInvoice(context.Background(), &Invoice{Amount: 10}); err == nil {
		t.Fatal("expected error for missing number")
	}
}

func TestCreateInvoice_NegativeAmount(t *testing.T) {
	svc := NewService(newMockInvoiceRepo())
	if err := svc.CreateInvoice(context.Background(), &Invoice{Number: "X", Amount: -1}); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestUpdateInvoice_InvalidStatus(t *testing.T) {
	svc := NewService(newMockInvoiceRepo())
	inv := &Invoice{Number: "INV-1", Amount: 10}
	svc.CreateInvoice(context.Background(), inv)
	inv.Status = "overdue"
	if err := svc.UpdateInvoice(context.Background(), inv); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestSearchInvoices_ByStatus(t *testing.T) {
	svc := NewService(newMockInvoiceRepo())
	svc.CreateInvoice(context.Background(), &Invoice{Number: "A", Amount: 1})
	paid := &Invoice{Number: "B", Amount: 2, Status: StatusPaid}
	svc.CreateInvoice(context.Background(), paid)

	items, total, err := svc.SearchInvoices(context.Background(),
		map[string]string{"status": StatusPaid}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 invoice, got total=%d len=%d", total, len(items))
	}
}
