package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type postRequest struct {
	EntryDate    string        `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Description  string        `json:"description" validate:"max=500"`
	SourceModule string        `json:"source_module" validate:"omitempty,max=64"`
	SourceID     *string       `json:"source_id" validate:"omitempty,min=1,max=128"`
	Lines        []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type lineRequest struct {
	AccountID    int64           `json:"account_id" validate:"required,gt=0"`
	CostCenterID *int64          `json:"cost_center_id" validate:"omitempty,gt=0"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description" validate:"max=500"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	filter := ListFilter{SourceModule: SourceModule(r.URL.Query().Get("source_module"))}
	if filter.From, err = httpx.QueryDate(r, "from"); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if filter.To, err = httpx.QueryDate(r, "to"); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	filter.Limit = queryInt(r, "limit")
	filter.Offset = queryInt(r, "offset")
	entries, err := h.service.List(r.Context(), tenantID, filter)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	entry, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var req postRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	date, err := time.Parse(time.DateOnly, req.EntryDate)
	if err != nil {
		httpx.Fail(w, r, h.logger, shared.Invalid("entry_date", "expected YYYY-MM-DD"))
		return
	}
	module := SourceModule(req.SourceModule)
	if module == "" {
		module = SourceManual
	}
	posting := PostingRequest{
		TenantID:     tenantID,
		EntryDate:    date,
		Description:  req.Description,
		SourceModule: module,
		SourceID:     req.SourceID,
		CreatedBy:    internalShared.ActorFromContext(r.Context()),
		Lines:        make([]PostingLine, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		posting.Lines = append(posting.Lines, PostingLine(line))
	}
	entry, err := h.service.Post(r.Context(), posting)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), tenantID, id, internalShared.ActorFromContext(r.Context())); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

