package audit

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubTimelineRepo struct {
	rows    []TimelineRow
	queries []Query
}

func (s *stubTimelineRepo) Timeline(_ context.Context, q Query) ([]TimelineRow, error) {
	s.queries = append(s.queries, q)
	rows := s.rows
	if q.Offset < len(rows) {
		rows = rows[q.Offset:]
	} else {
		rows = nil
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func mockRow(ts, actor, action, entity, entityID string) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{At: at, Actor: actor, Action: action, Entity: entity, EntityID: entityID}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		mockRow("2024-03-03T10:00:00Z", "cashier", "journal.post", "journal_entry", "3"),
		mockRow("2024-03-02T10:00:00Z", "cashier", "journal.post", "journal_entry", "2"),
		mockRow("2024-03-01T10:00:00Z", "controller", "period.close", "period", "1"),
	}}
	svc := NewService(repo)
	tenant := uuid.New()

	res, err := svc.Timeline(context.Background(), TimelineFilters{TenantID: tenant, PageSize: 2, Actor: "  cashier "})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.True(t, res.Paging.HasNext)
	require.Equal(t, 2, res.Paging.NextPage)
	require.Equal(t, 0, res.Paging.PrevPage)
	require.Equal(t, 3, repo.queries[0].Limit)
	require.Equal(t, "cashier", repo.queries[0].Actor)
	require.Equal(t, tenant, repo.queries[0].TenantID)

	res, err = svc.Timeline(context.Background(), TimelineFilters{TenantID: tenant, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.False(t, res.Paging.HasNext)
	require.Equal(t, 1, res.Paging.PrevPage)
	require.Equal(t, 2, repo.queries[1].Offset)
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	res, err := NewService(repo).Timeline(context.Background(), TimelineFilters{PageSize: 1000})
	require.NoError(t, err)
	require.Equal(t, maxPageSize, res.Paging.PageSize)
	require.NotNil(t, res.Rows)
}

func TestServiceExportReturnsAllRows(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		mockRow("2024-03-02T10:00:00Z", "cashier", "journal.post", "journal_entry", "2"),
		mockRow("2024-03-01T10:00:00Z", "controller", "year.close", "financial_year", "1"),
	}}
	rows, err := NewService(repo).Export(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Zero(t, repo.queries[0].Limit)
}

func TestWriteTimelineCSV(t *testing.T) {
	row := mockRow("2024-03-01T10:00:00Z", "controller", "year.close", "financial_year", "1")
	row.Meta = map[string]any{"net_profit": "500.00"}
	var buf bytes.Buffer
	err := WriteTimelineCSV(&buf, TimelineFilters{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, []TimelineRow{row})
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "# Report: Audit Timeline")
	require.Contains(t, out, "From: 2024-03-01  To: -")
	require.True(t, strings.Contains(out, `2024-03-01T10:00:00Z,controller,year.close,financial_year,1,"{""net_profit"":""500.00""}"`))
}
