package httpx

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

// Tenant returns the tenant resolved by the tenant middleware.
func Tenant(r *http.Request) (uuid.UUID, error) {
	id, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		return uuid.Nil, shared.Invalid("tenant_id", "missing X-Tenant-ID header")
	}
	return id, nil
}
