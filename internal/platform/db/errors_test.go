package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_accounts_tenant_code"})
	require.True(t, IsUniqueViolation(unique, ""))
	require.True(t, IsUniqueViolation(unique, "uq_accounts_tenant_code"))
	require.False(t, IsUniqueViolation(unique, "uq_cost_centers_tenant_code"))
	require.False(t, IsTransient(unique))

	require.True(t, IsTransient(&pgconn.PgError{Code: "40001"}))
	require.True(t, IsTransient(fmt.Errorf("lock: %w", &pgconn.PgError{Code: "40P01"})))
	require.False(t, IsTransient(errors.New("connection reset")))
	require.False(t, IsTransient(nil))
}
