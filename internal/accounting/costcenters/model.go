package costcenters

import (
	"time"

	"github.com/google/uuid"
)

// CostCenter is a reporting dimension (department, ward, clinic) attached to entry lines.
type CostCenter struct {
	ID        int64     `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInput struct {
	Code string
	Name string
	Type string
}
