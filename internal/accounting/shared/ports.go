package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingDocumentSource is implemented by origin modules that can list
// documents dated in a range which still block a close.
type PendingDocumentSource interface {
	PendingDocuments(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]PendingDocument, error)
}

// CollectPending queries every source and concatenates the results.
func CollectPending(ctx context.Context, sources []PendingDocumentSource, tenantID uuid.UUID, from, to time.Time) ([]PendingDocument, error) {
	var out []PendingDocument
	for _, src := range sources {
		if src == nil {
			continue
		}
		docs, err := src.PendingDocuments(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
	}
	return out, nil
}

// CacheInvalidator drops cached report results after ledger mutations.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}
