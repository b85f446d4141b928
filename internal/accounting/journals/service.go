package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Metrics counts posting outcomes.
type Metrics interface {
	ObservePosting(sourceModule, result string)
}

type Service struct {
	repo    Repository
	audit   AuditPort
	cache   shared.CacheInvalidator
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, audit AuditPort, cache shared.CacheInvalidator, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates and persists an entry. An existing entry with the same
// (tenant, source module, source id) has its header and lines replaced.
func (s *Service) Post(ctx context.Context, req PostingRequest) (Entry, error) {
	if req.SourceModule == SourceClosing {
		s.observe(req.SourceModule, "rejected")
		return Entry{}, shared.Invalid("source_module", "CLOSING entries are reserved for year closing")
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		s.observe(req.SourceModule, "rejected")
		return Entry{}, err
	}

	var entry Entry
	var replaced bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if req.SourceID != nil {
			if err := tx.LockSource(ctx, req.TenantID, req.SourceModule, *req.SourceID); err != nil {
				return err
			}
		}
		res, err := resolveInTx(ctx, tx, req.TenantID, req.EntryDate)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, req.TenantID, req.Lines); err != nil {
			return err
		}

		header := Entry{
			TenantID:     req.TenantID,
			YearID:       res.Year.ID,
			PeriodID:     res.Period.ID,
			EntryDate:    req.EntryDate,
			Description:  req.Description,
			SourceModule: req.SourceModule,
			SourceID:     req.SourceID,
			CreatedBy:    req.CreatedBy,
		}
		var existing *Entry
		if req.SourceID != nil {
			existing, err = tx.FindBySourceForUpdate(ctx, req.TenantID, req.SourceModule, *req.SourceID)
			if err != nil {
				return err
			}
		}
		if existing != nil {
			year, period, err := tx.YearAndPeriodForShare(ctx, existing.YearID, existing.PeriodID)
			if err != nil {
				return err
			}
			if _, err := periods.CheckPeriod(existing.EntryDate, year, &period); err != nil {
				return err
			}
			header.ID = existing.ID
			entry, err = tx.UpdateEntryHeader(ctx, header)
			if err != nil {
				return err
			}
			if err := tx.DeleteLines(ctx, existing.ID); err != nil {
				return err
			}
			replaced = true
		} else {
			entry, err = tx.InsertEntry(ctx, header)
			if err != nil {
				return err
			}
		}
		entry.Lines, err = tx.InsertLines(ctx, entry.ID, toLines(req.Lines))
		return err
	})
	if err != nil {
		s.observe(req.SourceModule, resultFor(err))
		return Entry{}, err
	}

	action, result := "journal.post", "created"
	if replaced {
		action, result = "journal.replace", "replaced"
	}
	s.afterCommit(ctx, entry, action, req.CreatedBy, result)
	return entry, nil
}

// Delete removes a manual or opening-balance entry while its period is still open.
func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, entryID int64, actor string) error {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = tx.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.TenantID != tenantID {
			return shared.NotFound("journal entry", entryID)
		}
		if !entry.SourceModule.UserDeletable() {
			return shared.Invalidf("source_module", "entries from %s are protected", entry.SourceModule)
		}
		year, period, err := tx.YearAndPeriodForShare(ctx, entry.YearID, entry.PeriodID)
		if err != nil {
			return err
		}
		if _, err := periods.CheckPeriod(entry.EntryDate, year, &period); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, entry, "journal.delete", actor, "deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Entry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if entry.TenantID != tenantID {
		return Entry{}, shared.NotFound("journal entry", id)
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Entry, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.Invalid("from", "must not be after to")
	}
	if filter.SourceModule != "" && !filter.SourceModule.Valid() {
		return nil, shared.Invalidf("source_module", "unknown source module %q", filter.SourceModule)
	}
	return s.repo.List(ctx, tenantID, filter)
}

func (s *Service) FindBySource(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (Entry, error) {
	return s.repo.FindBySource(ctx, tenantID, module, sourceID)
}

// resolveInTx applies the calendar rules to rows read under FOR SHARE.
func resolveInTx(ctx context.Context, tx TxRepository, tenantID uuid.UUID, date time.Time) (periods.Resolution, error) {
	years, err := tx.YearsCovering(ctx, tenantID, date)
	if err != nil {
		return periods.Resolution{}, err
	}
	year, err := periods.SelectYear(date, years)
	if err != nil {
		return periods.Resolution{}, err
	}
	period, err := tx.PeriodCoveringForShare(ctx, year.ID, date)
	if err != nil {
		return periods.Resolution{}, err
	}
	return periods.CheckPeriod(date, year, period)
}

func checkReferences(ctx context.Context, tx TxRepository, tenantID uuid.UUID, lines []PostingLine) error {
	accountIDs := make([]int64, 0, len(lines))
	var costCenterIDs []int64
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
		if line.CostCenterID != nil {
			costCenterIDs = append(costCenterIDs, *line.CostCenterID)
		}
	}
	accs, err := tx.AccountsByID(ctx, uniqueIDs(accountIDs))
	if err != nil {
		return err
	}
	ccs, err := tx.CostCentersByID(ctx, uniqueIDs(costCenterIDs))
	if err != nil {
		return err
	}
	for idx, line := range lines {
		field := fmt.Sprintf("lines[%d].account_id", idx)
		acc, ok := accs[line.AccountID]
		switch {
		case !ok:
			return shared.Invalidf(field, "account %d does not exist", line.AccountID)
		case acc.TenantID != tenantID:
			return shared.Invalidf(field, "account %d belongs to another tenant", line.AccountID)
		case !acc.IsActive:
			return shared.Invalidf(field, "account %s is inactive", acc.Code)
		}
		if line.CostCenterID == nil {
			continue
		}
		field = fmt.Sprintf("lines[%d].cost_center_id", idx)
		cc, ok := ccs[*line.CostCenterID]
		switch {
		case !ok:
			return shared.Invalidf(field, "cost center %d does not exist", *line.CostCenterID)
		case cc.TenantID != tenantID:
			return shared.Invalidf(field, "cost center %d belongs to another tenant", *line.CostCenterID)
		case !cc.IsActive:
			return shared.Invalidf(field, "cost center %s is inactive", cc.Code)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toLines(in []PostingLine) []Line {
	out := make([]Line, 0, len(in))
	for _, line := range in {
		out = append(out, Line{
			AccountID:    line.AccountID,
			CostCenterID: line.CostCenterID,
			Debit:        line.Debit,
			Credit:       line.Credit,
			Description:  line.Description,
		})
	}
	return out
}

func (s *Service) afterCommit(ctx context.Context, entry Entry, action, actor, result string) {
	if s.audit != nil {
		meta := map[string]any{
			"source_module": entry.SourceModule,
			"entry_date":    entry.EntryDate.Format(time.DateOnly),
			"lines":         len(entry.Lines),
		}
		if entry.SourceID != nil {
			meta["source_id"] = *entry.SourceID
		}
		if err := s.audit.Record(ctx, internalShared.AuditLog{
			TenantID: entry.TenantID,
			Actor:    actor,
			Action:   action,
			Entity:   "accounting_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta:     meta,
			At:       s.now(),
		}); err != nil {
			s.logger.Warn("audit journal", slog.String("action", action), slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	s.observe(entry.SourceModule, result)
}

func (s *Service) observe(module SourceModule, result string) {
	if s.metrics != nil {
		s.metrics.ObservePosting(string(module), result)
	}
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return "rejected"
	case errors.Is(err, shared.ErrPeriodClosed), errors.Is(err, shared.ErrYearClosed), errors.Is(err, shared.ErrNoCoveringPeriod):
		return "calendar_rejected"
	default:
		return "failed"
	}
}
