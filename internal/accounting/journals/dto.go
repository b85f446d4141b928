package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// PostingLine describes one line of a posting request.
type PostingLine struct {
	AccountID    int64
	CostCenterID *int64
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Description  string
}

// PostingRequest groups fields required to create or replace an entry.
type PostingRequest struct {
	TenantID     uuid.UUID
	EntryDate    time.Time
	Description  string
	SourceModule SourceModule
	SourceID     *string
	CreatedBy    string
	Lines        []PostingLine
}

// Normalize trims text, drops the clock from the date and rounds amounts to cents.
func (in PostingRequest) Normalize() PostingRequest {
	out := in
	out.EntryDate = shared.DateOnly(in.EntryDate)
	out.Description = strings.TrimSpace(in.Description)
	out.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if in.SourceID != nil {
		id := strings.TrimSpace(*in.SourceID)
		out.SourceID = &id
	}
	out.Lines = make([]PostingLine, len(in.Lines))
	for i, line := range in.Lines {
		line.Debit = shared.Round2(line.Debit)
		line.Credit = shared.Round2(line.Credit)
		line.Description = strings.TrimSpace(line.Description)
		out.Lines[i] = line
	}
	return out
}

// Totals sums both sides of the request.
func (in PostingRequest) Totals() (debit, credit decimal.Decimal) {
	for _, line := range in.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// Validate checks the request shape and that it balances.
func (in PostingRequest) Validate() error {
	if in.TenantID == uuid.Nil {
		return shared.Invalid("tenant_id", "required")
	}
	if in.EntryDate.IsZero() {
		return shared.Invalid("entry_date", "required")
	}
	if !in.SourceModule.Valid() {
		return shared.Invalidf("source_module", "unknown source module %q", in.SourceModule)
	}
	if in.SourceID != nil && *in.SourceID == "" {
		return shared.Invalid("source_id", "must not be blank when provided")
	}
	if len(in.Lines) < 2 {
		return shared.Invalid("lines", "at least two lines required")
	}
	for idx, line := range in.Lines {
		field := fmt.Sprintf("lines[%d]", idx)
		if line.AccountID <= 0 {
			return shared.Invalid(field+".account_id", "required")
		}
		if line.CostCenterID != nil && *line.CostCenterID <= 0 {
			return shared.Invalid(field+".cost_center_id", "invalid identifier")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.Invalid(field, "amounts must not be negative")
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return shared.Invalid(field, "line cannot be both debit and credit")
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return shared.Invalid(field, "line amount must not be zero")
		}
	}
	debit, credit := in.Totals()
	if !shared.NearlyEqual(debit, credit) {
		return shared.Unbalanced(debit, credit)
	}
	return nil
}

// ListFilter narrows entry listings.
type ListFilter struct {
	From         *time.Time
	To           *time.Time
	SourceModule SourceModule
	Limit        int
	Offset       int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
