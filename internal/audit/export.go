package audit

import (
	"encoding/json"
	"io"
	"time"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/export"
)

// WriteTimelineCSV menulis timeline sebagai CSV; meta disimpan sebagai JSON.
func WriteTimelineCSV(w io.Writer, filters TimelineFilters, rows []TimelineRow) error {
	s := export.NewStreamer(w)
	if err := s.Comment("Report: Audit Timeline"); err != nil {
		return err
	}
	if err := s.Comment("From: %s  To: %s  Rows: %d", dateOrAny(filters.From), dateOrAny(filters.To), len(rows)); err != nil {
		return err
	}
	if err := s.Row("At", "Actor", "Action", "Entity", "Entity ID", "Meta"); err != nil {
		return err
	}
	for _, row := range rows {
		meta := ""
		if len(row.Meta) > 0 {
			raw, err := json.Marshal(row.Meta)
			if err != nil {
				return err
			}
			meta = string(raw)
		}
		if err := s.Row(row.At.UTC().Format(time.RFC3339), row.Actor, row.Action, row.Entity, row.EntityID, meta); err != nil {
			return err
		}
	}
	return s.Close()
}

func dateOrAny(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
