package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error kinds shared across accounting packages. Compare with errors.Is.
var (
	ErrValidation            = errors.New("accounting: validation failed")
	ErrUnbalanced            = errors.New("accounting: entry is not balanced")
	ErrPeriodClosed          = errors.New("accounting: period closed")
	ErrYearClosed            = errors.New("accounting: financial year closed")
	ErrNoCoveringPeriod      = errors.New("accounting: no covering period")
	ErrUnmappedSystemAccount = errors.New("accounting: system account not mapped")
	ErrClosingPrecondition   = errors.New("accounting: closing precondition failed")
	ErrInternalConsistency   = errors.New("accounting: internal consistency check failed")
	ErrNotFound              = errors.New("accounting: not found")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Invalidf is Invalid with a formatted reason.
func Invalidf(field, format string, args ...any) *ValidationError {
	return Invalid(field, fmt.Sprintf(format, args...))
}

// Unbalanced reports debit and credit totals that differ beyond Tolerance.
func Unbalanced(debit, credit decimal.Decimal) *ValidationError {
	return &ValidationError{
		Field:  "lines",
		Reason: fmt.Sprintf("debit %s does not equal credit %s", debit.StringFixed(2), credit.StringFixed(2)),
		kind:   ErrUnbalanced,
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "accounting: " + e.Reason
	}
	return fmt.Sprintf("accounting: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.kind != nil {
		return []error{ErrValidation, e.kind}
	}
	return []error{ErrValidation}
}

// CalendarError is raised when a date cannot accept postings.
type CalendarError struct {
	Kind     error
	Date     time.Time
	YearID   int64
	PeriodID int64
}

func (e *CalendarError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(" for ")
	b.WriteString(e.Date.Format(time.DateOnly))
	if e.YearID != 0 {
		fmt.Fprintf(&b, " (year %d", e.YearID)
		if e.PeriodID != 0 {
			fmt.Fprintf(&b, ", period %d", e.PeriodID)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *CalendarError) Unwrap() error { return e.Kind }

// NoCoveringPeriod, YearClosed and PeriodClosed construct CalendarError values.
func NoCoveringPeriod(date time.Time, yearID int64) *CalendarError {
	return &CalendarError{Kind: ErrNoCoveringPeriod, Date: date, YearID: yearID}
}

func YearClosed(date time.Time, yearID int64) *CalendarError {
	return &CalendarError{Kind: ErrYearClosed, Date: date, YearID: yearID}
}

func PeriodClosed(date time.Time, yearID, periodID int64) *CalendarError {
	return &CalendarError{Kind: ErrPeriodClosed, Date: date, YearID: yearID, PeriodID: periodID}
}

// UnmappedSystemAccountError names a logical key without a usable account.
type UnmappedSystemAccountError struct {
	TenantID uuid.UUID
	Key      string
	Reason   string
}

func (e *UnmappedSystemAccountError) Error() string {
	msg := fmt.Sprintf("accounting: system account %s not mapped for tenant %s", e.Key, e.TenantID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnmappedSystemAccountError) Unwrap() error { return ErrUnmappedSystemAccount }

// PendingDocument is an origin document that still has to be posted or cancelled.
type PendingDocument struct {
	Source    string    `json:"source"`
	Reference string    `json:"reference"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status,omitempty"`
}

// ClosingPreconditionError lists what prevents a period or year from closing.
type ClosingPreconditionError struct {
	Reason           string
	OpenPeriods      []int
	PendingDocuments []PendingDocument
}

func (e *ClosingPreconditionError) Error() string {
	parts := make([]string, 0, 3)
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.OpenPeriods) > 0 {
		parts = append(parts, fmt.Sprintf("open periods %v", e.OpenPeriods))
	}
	if len(e.PendingDocuments) > 0 {
		parts = append(parts, fmt.Sprintf("%d pending documents", len(e.PendingDocuments)))
	}
	return "accounting: closing precondition failed: " + strings.Join(parts, "; ")
}

func (e *ClosingPreconditionError) Unwrap() error { return ErrClosingPrecondition }

// InternalConsistencyError signals totals that should always agree but did not.
type InternalConsistencyError struct {
	Check  string
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("accounting: %s: debit %s credit %s", e.Check, e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

func (e *InternalConsistencyError) Unwrap() error { return ErrInternalConsistency }

// NotFound wraps ErrNotFound with the entity name and identifier.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}
