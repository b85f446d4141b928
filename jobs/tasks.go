package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity re-verifies trial balance and entry balance per tenant.
	TaskLedgerIntegrity = "ledger:integrity"

	scopeAll = "all"
)

// IntegrityPayload scopes an integrity run to one tenant or to every tenant
// with an open current year.
type IntegrityPayload struct {
	Tenant string `json:"tenant"`
}

// NewIntegrityTask constructs an Asynq task. An empty tenant means all tenants.
func NewIntegrityTask(tenant string) (*asynq.Task, error) {
	if tenant == "" {
		tenant = scopeAll
	}
	if tenant != scopeAll {
		if _, err := uuid.Parse(tenant); err != nil {
			return nil, fmt.Errorf("integrity task: invalid tenant %q: %w", tenant, err)
		}
	}
	body, err := json.Marshal(IntegrityPayload{Tenant: tenant})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
