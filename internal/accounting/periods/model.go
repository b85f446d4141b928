package periods

import (
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// YearStatus enumerates financial year states.
type YearStatus string

const (
	YearStatusOpen     YearStatus = "OPEN"
	YearStatusClosed   YearStatus = "CLOSED"
	YearStatusArchived YearStatus = "ARCHIVED"
)

// Year is a tenant's financial year.
type Year struct {
	ID        int64      `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    YearStatus `json:"status"`
	IsCurrent bool       `json:"is_current"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	ClosedBy  *string    `json:"closed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Covers reports whether date falls inside the year.
func (y Year) Covers(date time.Time) bool {
	return shared.WithinDates(date, y.StartDate, y.EndDate)
}

// Period is one month (or clipped part of a month) inside a year.
type Period struct {
	ID          int64      `json:"id"`
	YearID      int64      `json:"year_id"`
	PeriodIndex int        `json:"period_index"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	IsOpen      bool       `json:"is_open"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// Covers reports whether date falls inside the period.
func (p Period) Covers(date time.Time) bool {
	return shared.WithinDates(date, p.StartDate, p.EndDate)
}

// Resolution is the year and period accepting postings for a date.
type Resolution struct {
	Year   Year   `json:"year"`
	Period Period `json:"period"`
}

// CreateYearInput describes a new financial year.
type CreateYearInput struct {
	Code        string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	MakeCurrent bool
}
