package invoice

import (
	"context"

	"github.com/google/uuid"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
)

type Service struct {
	invoices Repository
}

func NewService(invoices Repository) *Service {
	return &Service{invoices: invoices}
}

var validStatuses = map[string]bool{
	StatusDraft: true, StatusSent: true, StatusPaid: true, StatusCancelled: true,
}

func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.Number == "" {
		return apperr.Invalidf("number is required")
	}
	if inv.Amount < 0 {
		return apperr.Invalidf("amount must not be negative")
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}
	if inv.Status == "" {
		inv.Status = StatusDraft
	}
	if !validStatuses[inv.Status] {
		return apperr.Invalidf("invalid status: %s", inv.Status)
	}
	return s.invoices.Create(ctx, inv)
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.Status != "" && !validStatuses[inv.Status] {
		return apperr.Invalidf("invalid status: %s", inv.Status)
	}
	if inv.Amount < 0 {
		return apperr.Invalidf("amount must not be negative")
	}
	return s.invoices.Update(ctx, inv)
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.invoices.Delete(ctx, id)
}

func (s *Service) SearchInvoices(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.Search(ctx, params, limit, offset)
}
