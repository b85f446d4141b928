package periods

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/years", h.listYears)
	r.Post("/years", h.createYear)
	r.Get("/years/{id}", h.getYear)
	r.Post("/years/{id}/current", h.setCurrent)
	r.Get("/years/{id}/periods", h.listPeriods)
	r.Post("/periods/{id}/close", h.closePeriod)
	r.Post("/periods/{id}/reopen", h.reopenPeriod)
	r.Get("/calendar/resolve", h.resolve)
}

type createYearRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"max=200"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	MakeCurrent bool   `json:"make_current"`
}

func (h *Handler) listYears(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	years, err := h.service.ListYears(r.Context(), tenantID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"years": years})
}

func (h *Handler) createYear(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var req createYearRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)
	year, periods, err := h.service.CreateYear(r.Context(), tenantID, CreateYearInput{
		Code:        req.Code,
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		MakeCurrent: req.MakeCurrent,
	})
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"year": year, "periods": periods})
}

func (h *Handler) getYear(w http.ResponseWriter, r *http.Request) {
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
	year, err := h.service.GetYear(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, year)
}

func (h *Handler) setCurrent(w http.ResponseWriter, r *http.Request) {
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
	year, err := h.service.SetCurrentYear(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, year)
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
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
	periods, err := h.service.ListPeriods(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": periods})
}

func (h *Handler) closePeriod(w http.ResponseWriter, r *http.Request) {
	h.togglePeriod(w, r, h.service.ClosePeriod)
}

func (h *Handler) reopenPeriod(w http.ResponseWriter, r *http.Request) {
	h.togglePeriod(w, r, h.service.ReopenPeriod)
}

func (h *Handler) togglePeriod(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, int64) (Period, error)) {
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
	period, err := op(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	date, err := httpx.QueryDate(r, "date")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if date == nil {
		httpx.Fail(w, r, h.logger, shared.Invalid("date", "required"))
		return
	}
	res, err := h.service.ResolvePeriod(r.Context(), tenantID, *date)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
