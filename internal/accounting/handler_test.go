package accounting

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHandlerMountsLedgerRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, New(Deps{Logger: logger})).MountRoutes(r)

	routes := map[string]bool{}
	require.NoError(t, chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	}))

	for _, want := range []string{
		"GET /accounts",
		"POST /accounts/seed",
		"GET /accounts/{id}/ledger",
		"GET /cost-centers",
		"PUT /system-accounts/{key}",
		"POST /years",
		"POST /periods/{id}/close",
		"GET /calendar/resolve",
		"POST /journals",
		"DELETE /journals/{id}",
		"GET /reports/trial-balance",
		"GET /reports/income-statement",
		"GET /reports/balance-sheet",
		"GET /reports/receivables-aging",
		"POST /years/{id}/close",
		"GET /years/{id}/close/preview",
		"POST /integration/events/{kind}",
		"GET /audit",
		"GET /audit/export.csv",
	} {
		require.True(t, routes[want], "missing route %s", want)
	}
}

func TestSeedRequiresTenant(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, New(Deps{Logger: logger})).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/accounts/seed", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
