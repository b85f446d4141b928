package ar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service builds receivables reports from the billing collaborator.
type Service struct {
	source InvoiceSource
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(source InvoiceSource) *Service {
	return &Service{source: source, now: time.Now}
}

// ReceivablesAging ages open patient invoices at asOf, defaulting to today.
func (s *Service) ReceivablesAging(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (AgingReport, error) {
	at := s.now()
	if asOf != nil {
		at = *asOf
	}
	invoices, err := s.source.OpenInvoices(ctx, tenantID)
	if err != nil {
		return AgingReport{}, err
	}
	return BuildAging(at, invoices), nil
}
