package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/jobs"
)

func TestTriggerIntegrity(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewJobsCLI(mr.Addr())
	require.NoError(t, err)
	defer c.Close()

	info, err := c.Trigger(context.Background(), "integrity", uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, jobs.TaskLedgerIntegrity, info.Type)

	_, err = c.Trigger(context.Background(), "integrity", "not-a-tenant")
	require.Error(t, err)

	_, err = c.Trigger(context.Background(), "warmup", "")
	require.Error(t, err)
}
