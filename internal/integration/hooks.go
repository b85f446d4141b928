package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// Poster persists posting requests.
type Poster interface {
	Post(ctx context.Context, req journals.PostingRequest) (journals.Entry, error)
}

// Hooks turns events into ledger entries.
type Hooks struct {
	poster   Poster
	resolver Resolver
	logger   *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(poster Poster, resolver Resolver, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{poster: poster, resolver: resolver, logger: logger}
}

// Handle builds and posts the entry for evt. A document whose amounts are all
// zero posts nothing and returns a zero Entry. Posting failures are wrapped
// in *PostError so callers can decide whether to queue a retry.
func (h *Hooks) Handle(ctx context.Context, tenantID uuid.UUID, evt Event) (journals.Entry, error) {
	if h == nil || h.poster == nil || h.resolver == nil {
		return journals.Entry{}, nil
	}
	req, err := evt.Build(ctx, tenantID, h.resolver)
	if errors.Is(err, ErrNothingToPost) {
		h.logger.Debug("integration event has no amounts", slog.String("kind", evt.Kind()))
		return journals.Entry{}, nil
	}
	if err != nil {
		return journals.Entry{}, classify(evt, err)
	}
	entry, err := h.poster.Post(ctx, req)
	if err != nil {
		perr := classify(evt, err)
		if perr.Retryable {
			h.logger.Warn("ledger posting deferred",
				slog.String("tenant_id", tenantID.String()),
				slog.String("source_id", *req.SourceID),
				slog.Any("error", err))
		}
		return journals.Entry{}, perr
	}
	return entry, nil
}

// PostError reports a document whose entry could not be posted. Retryable
// failures clear once someone reopens a period or fixes a mapping.
type PostError struct {
	Kind      string
	Err       error
	Retryable bool
	Message   string
}

func (e *PostError) Error() string {
	return e.Message
}

func (e *PostError) Unwrap() error {
	return e.Err
}

func classify(evt Event, err error) *PostError {
	kind := evt.Kind()
	switch {
	case errors.Is(err, shared.ErrPeriodClosed), errors.Is(err, shared.ErrYearClosed):
		return &PostError{Kind: kind, Err: err, Retryable: true,
			Message: fmt.Sprintf("%s: ledger period closed; posting pending", kind)}
	case errors.Is(err, shared.ErrNoCoveringPeriod):
		return &PostError{Kind: kind, Err: err, Retryable: true,
			Message: fmt.Sprintf("%s: no open period for document date; posting pending", kind)}
	case errors.Is(err, shared.ErrUnmappedSystemAccount):
		return &PostError{Kind: kind, Err: err, Retryable: true,
			Message: fmt.Sprintf("%s: system account mapping missing; posting pending", kind)}
	case db.IsTransient(err):
		return &PostError{Kind: kind, Err: err, Retryable: true,
			Message: fmt.Sprintf("%s: ledger busy; posting pending", kind)}
	case errors.Is(err, shared.ErrValidation):
		return &PostError{Kind: kind, Err: err,
			Message: fmt.Sprintf("%s: rejected by ledger: %s", kind, err.Error())}
	default:
		return &PostError{Kind: kind, Err: err,
			Message: fmt.Sprintf("%s: failed to post to ledger (%s)", kind, err.Error())}
	}
}
