package periods

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

// Handler exposes fiscal period management over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers fiscal period routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Put("/{year}/{month}", h.handleSetStatus)
	})
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN CLOSED LOCKED"`
}

type periodResponse struct {
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Status   PeriodStatus `json:"status"`
	ClosedAt *time.Time   `json:"closedAt,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1900 {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", "year query parameter required")
		return
	}
	list, err := h.service.List(r.Context(), shared.TenantFromRequest(r), year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]periodResponse, 0, len(list))
	for _, p := range list {
		out = append(out, periodResponse{Year: p.Year, Month: p.Month, Status: p.Status, ClosedAt: p.ClosedAt})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil || year < 1900 || month < 1 || month > 12 {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", "year and month must form a valid period")
		return
	}
	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	period, err := h.service.SetStatus(r.Context(), shared.TenantFromRequest(r), year, month, PeriodStatus(req.Status))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, periodResponse{Year: period.Year, Month: period.Month, Status: period.Status, ClosedAt: period.ClosedAt})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "period operation failed", slog.Any("error", err))
		httpx.ProblemCode(w, status, shared.Code(err), "")
		return
	}
	httpx.ProblemCode(w, status, shared.Code(err), err.Error())
}
