package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

// Handler exposes the five ledger reports over JSON. All amounts serialise
// through decimal, so row values arrive exactly as stored.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/journal", h.handleJournal)
		r.Get("/general-ledger", h.handleGeneralLedger)
		r.Get("/trial-balance", h.handleTrialBalance)
		r.Get("/balance-sheet", h.handleBalanceSheet)
		r.Get("/income-statement", h.handleIncomeStatement)
	})
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}
	var voucherType *vouchers.VoucherType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := vouchers.VoucherType(raw)
		if !t.Valid() {
			httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", "unknown voucher type "+raw)
			return
		}
		voucherType = &t
	}
	journal, err := h.service.Journal(r.Context(), shared.TenantFromRequest(r), from, to, voucherType)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}

func (h *Handler) handleGeneralLedger(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}
	account := r.URL.Query().Get("account")
	if account == "" {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", "account query parameter required")
		return
	}
	ledger, err := h.service.GeneralLedger(r.Context(), shared.TenantFromRequest(r), account, from, to)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r, "asOf")
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), shared.TenantFromRequest(r), asOf)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r, "asOf")
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), shared.TenantFromRequest(r), asOf)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) handleIncomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}
	is, err := h.service.IncomeStatement(r.Context(), shared.TenantFromRequest(r), from, to)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, is)
}

func (h *Handler) parsePeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, ok := h.parseDate(w, r, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.parseDate(w, r, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", name+" query parameter required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", name+" must be a YYYY-MM-DD date")
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "report generation failed", slog.Any("error", err))
		httpx.ProblemCode(w, status, shared.Code(err), "")
		return
	}
	httpx.ProblemCode(w, status, shared.Code(err), err.Error())
}
