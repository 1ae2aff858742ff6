package vouchers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

// Handler exposes the voucher lifecycle over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/vouchers", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/post", h.handlePost)
		r.Post("/{id}/void", h.handleVoid)
	})
}

type entryRequest struct {
	AccountCode  string           `json:"accountCode" validate:"required"`
	ThirdPartyID *int64           `json:"thirdPartyId"`
	CostCenterID *int64           `json:"costCenterId"`
	Description  string           `json:"description"`
	Debit        decimal.Decimal  `json:"debit"`
	Credit       decimal.Decimal  `json:"credit"`
	BaseValue    *decimal.Decimal `json:"baseValue"`
	TaxValue     *decimal.Decimal `json:"taxValue"`
}

type createVoucherRequest struct {
	Type        string         `json:"type" validate:"required,oneof=INGRESO EGRESO AJUSTE APERTURA CIERRE"`
	Date        string         `json:"date" validate:"required,datetime=2006-01-02"`
	Description string         `json:"description"`
	Reference   string         `json:"reference"`
	Entries     []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

type updateVoucherRequest struct {
	Date        string         `json:"date" validate:"required,datetime=2006-01-02"`
	Description string         `json:"description"`
	Reference   string         `json:"reference"`
	Entries     []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

type entryResponse struct {
	LineNumber   int              `json:"lineNumber"`
	AccountCode  string           `json:"accountCode"`
	ThirdPartyID *int64           `json:"thirdPartyId,omitempty"`
	CostCenterID *int64           `json:"costCenterId,omitempty"`
	Description  string           `json:"description,omitempty"`
	Debit        decimal.Decimal  `json:"debit"`
	Credit       decimal.Decimal  `json:"credit"`
	BaseValue    *decimal.Decimal `json:"baseValue,omitempty"`
	TaxValue     *decimal.Decimal `json:"taxValue,omitempty"`
}

type voucherResponse struct {
	ID           int64           `json:"id"`
	Type         VoucherType     `json:"type"`
	Number       string          `json:"number"`
	Date         string          `json:"date"`
	Description  string          `json:"description,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Status       VoucherStatus   `json:"status"`
	FiscalYear   int             `json:"fiscalYear"`
	FiscalPeriod int             `json:"fiscalPeriod"`
	TotalDebit   decimal.Decimal `json:"totalDebit"`
	TotalCredit  decimal.Decimal `json:"totalCredit"`
	IsBalanced   bool            `json:"isBalanced"`
	PostedAt     *time.Time      `json:"postedAt,omitempty"`
	Entries      []entryResponse `json:"entries,omitempty"`
}

func toVoucherResponse(v Voucher) voucherResponse {
	resp := voucherResponse{
		ID:           v.ID,
		Type:         v.Type,
		Number:       v.Number,
		Date:         v.Date.Format("2006-01-02"),
		Description:  v.Description,
		Reference:    v.Reference,
		Status:       v.Status,
		FiscalYear:   v.FiscalYear,
		FiscalPeriod: v.FiscalPeriod,
		TotalDebit:   v.TotalDebit,
		TotalCredit:  v.TotalCredit,
		IsBalanced:   v.IsBalanced(),
		PostedAt:     v.PostedAt,
	}
	for _, e := range v.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			LineNumber:   e.LineNumber,
			AccountCode:  e.AccountCode,
			ThirdPartyID: e.ThirdPartyID,
			CostCenterID: e.CostCenterID,
			Description:  e.Description,
			Debit:        e.Debit,
			Credit:       e.Credit,
			BaseValue:    e.BaseValue,
			TaxValue:     e.TaxValue,
		})
	}
	return resp
}

func toEntryInputs(in []entryRequest) []EntryInput {
	out := make([]EntryInput, 0, len(in))
	for _, e := range in {
		out = append(out, EntryInput{
			AccountCode:  e.AccountCode,
			ThirdPartyID: e.ThirdPartyID,
			CostCenterID: e.CostCenterID,
			Description:  e.Description,
			Debit:        e.Debit,
			Credit:       e.Credit,
			BaseValue:    e.BaseValue,
			TaxValue:     e.TaxValue,
		})
	}
	return out
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	voucher, err := h.service.Create(r.Context(), CreateInput{
		TenantID:    shared.TenantFromRequest(r),
		Type:        VoucherType(req.Type),
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		Entries:     toEntryInputs(req.Entries),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toVoucherResponse(voucher))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	voucher, err := h.service.Update(r.Context(), shared.TenantFromRequest(r), id, UpdateInput{
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		Entries:     toEntryInputs(req.Entries),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toVoucherResponse(voucher))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	voucher, err := h.service.Post(r.Context(), shared.TenantFromRequest(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toVoucherResponse(voucher))
}

func (h *Handler) handleVoid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	voucher, err := h.service.Void(r.Context(), shared.TenantFromRequest(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toVoucherResponse(voucher))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), shared.TenantFromRequest(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	voucher, err := h.service.Get(r.Context(), shared.TenantFromRequest(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toVoucherResponse(voucher))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), shared.TenantFromRequest(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]voucherResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVoucherResponse(v))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_ID", "voucher id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "voucher operation failed", slog.Any("error", err))
		httpx.ProblemCode(w, status, shared.Code(err), "")
		return
	}
	httpx.ProblemCode(w, status, shared.Code(err), err.Error())
}
