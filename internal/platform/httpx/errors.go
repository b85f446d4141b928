// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// ErrBadRequest marks malformed requests (unparseable body or query).
var ErrBadRequest = errors.New("bad request")

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrPeriodClosed),
		errors.Is(err, shared.ErrYearClosed),
		errors.Is(err, shared.ErrNoCoveringPeriod),
		errors.Is(err, shared.ErrUnmappedSystemAccount),
		errors.Is(err, shared.ErrClosingPrecondition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	problem := ProblemDetail{
		Type:   problemType(err),
		Title:  http.StatusText(status),
		Status: status,
	}
	if status != http.StatusInternalServerError {
		problem.Detail = err.Error()
	}

	var validation *shared.ValidationError
	var calendar *shared.CalendarError
	var unmapped *shared.UnmappedSystemAccountError
	var precondition *shared.ClosingPreconditionError
	switch {
	case errors.As(err, &validation):
		problem.Errors = map[string]string{validation.Field: validation.Reason}
	case errors.As(err, &calendar):
		problem.Errors = map[string]any{
			"date":      calendar.Date.Format("2006-01-02"),
			"year_id":   calendar.YearID,
			"period_id": calendar.PeriodID,
		}
	case errors.As(err, &unmapped):
		problem.Errors = map[string]any{"key": unmapped.Key}
	case errors.As(err, &precondition):
		problem.Errors = map[string]any{
			"open_periods":      precondition.OpenPeriods,
			"pending_documents": precondition.PendingDocuments,
		}
	}
	JSON(w, status, problem)
}

func problemType(err error) string {
	switch {
	case errors.Is(err, shared.ErrUnbalanced):
		return "urn:ledger:unbalanced-entry"
	case errors.Is(err, shared.ErrValidation):
		return "urn:ledger:validation"
	case errors.Is(err, shared.ErrPeriodClosed):
		return "urn:ledger:period-closed"
	case errors.Is(err, shared.ErrYearClosed):
		return "urn:ledger:year-closed"
	case errors.Is(err, shared.ErrNoCoveringPeriod):
		return "urn:ledger:no-covering-period"
	case errors.Is(err, shared.ErrUnmappedSystemAccount):
		return "urn:ledger:unmapped-system-account"
	case errors.Is(err, shared.ErrClosingPrecondition):
		return "urn:ledger:closing-precondition"
	case errors.Is(err, shared.ErrInternalConsistency):
		return "urn:ledger:internal-consistency"
	case errors.Is(err, shared.ErrNotFound):
		return "urn:ledger:not-found"
	}
	return ""
}

// Fail logs server-side failures and writes the problem response.
func Fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if StatusFor(err) >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
	}
	RespondError(w, err)
}
