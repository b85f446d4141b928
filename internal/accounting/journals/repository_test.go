package journals

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db/dbtest"
)

func seedLedger(t *testing.T, pool *pgxpool.Pool, tenant uuid.UUID) (cash, revenue int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, type) VALUES ($1,'1100','Cash','ASSET') RETURNING id`, tenant).Scan(&cash))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, type) VALUES ($1,'4100','Outpatient revenue','REVENUE') RETURNING id`, tenant).Scan(&revenue))
	_, _, err := periods.NewService(periods.NewRepository(pool), nil, nil).CreateYear(ctx, tenant, periods.CreateYearInput{
		Code: "FY2024", StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31),
	})
	require.NoError(t, err)
	return cash, revenue
}

func TestConcurrentRepostsOfOneSourceSerialise(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	tenant := uuid.New()
	cash, revenue := seedLedger(t, pool, tenant)
	svc := NewService(NewRepository(pool), nil, nil, nil, nil)
	source := "INV-RACE-1"

	var g errgroup.Group
	for i := 1; i <= 8; i++ {
		value := amount(fmt.Sprintf("%d.00", 100*i))
		g.Go(func() error {
			_, err := svc.Post(ctx, PostingRequest{
				TenantID:     tenant,
				EntryDate:    date(2024, 3, 10),
				SourceModule: SourceBillingInvoice,
				SourceID:     &source,
				CreatedBy:    "billing",
				Lines: []PostingLine{
					{AccountID: cash, Debit: value},
					{AccountID: revenue, Credit: value},
				},
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	var entries, lines int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounting_entries WHERE tenant_id=$1 AND source_id=$2`, tenant, source).Scan(&entries))
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounting_entry_lines l JOIN accounting_entries e ON e.id=l.entry_id
WHERE e.tenant_id=$1 AND e.source_id=$2`, tenant, source).Scan(&lines))
	require.Equal(t, 1, entries)
	require.Equal(t, 2, lines)

	entry, err := svc.FindBySource(ctx, tenant, SourceBillingInvoice, source)
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[0].Debit.Add(entry.Lines[1].Debit).Equal(entry.Lines[0].Credit.Add(entry.Lines[1].Credit)))
}
