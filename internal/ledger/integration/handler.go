package integration

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

// Handler exposes the integration adapter over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	builder  *Builder
	mappings *Repository
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, builder *Builder, mappings *Repository) *Handler {
	return &Handler{logger: logger, service: service, builder: builder, mappings: mappings, validate: validator.New()}
}

// MountRoutes registers integration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/integration", func(r chi.Router) {
		r.Post("/vouchers", h.handleRequestVoucher)
		r.Post("/documents/invoice", h.handleInvoice)
		r.Post("/documents/support-document", h.handleSupportDocument)
		r.Post("/documents/payroll", h.handlePayroll)
		r.Post("/documents/credit-note", h.handleCreditNote)
		r.Post("/documents/debit-note", h.handleDebitNote)
		r.Get("/mappings", h.handleListMappings)
		r.Put("/mappings/{key}", h.handleUpsertMapping)
	})
}

type requestEntry struct {
	AccountCode  string          `json:"accountCode" validate:"required"`
	ThirdPartyID *int64          `json:"thirdPartyId"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
}

type requestVoucherRequest struct {
	Type             string         `json:"type" validate:"required,oneof=INGRESO EGRESO AJUSTE APERTURA CIERRE"`
	SourceModule     string         `json:"sourceModule" validate:"required"`
	SourceDocumentID string         `json:"sourceDocumentId" validate:"required,uuid"`
	Date             string         `json:"date" validate:"required,datetime=2006-01-02"`
	Description      string         `json:"description"`
	Reference        string         `json:"reference"`
	Entries          []requestEntry `json:"entries" validate:"required,min=2,dive"`
}

type resultResponse struct {
	VoucherID     int64  `json:"voucherId"`
	VoucherNumber string `json:"voucherNumber,omitempty"`
	AlreadyLinked bool   `json:"alreadyLinked"`
}

func (h *Handler) handleRequestVoucher(w http.ResponseWriter, r *http.Request) {
	var req requestVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	entries := make([]vouchers.EntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, vouchers.EntryInput{
			AccountCode:  e.AccountCode,
			ThirdPartyID: e.ThirdPartyID,
			Description:  e.Description,
			Debit:        e.Debit,
			Credit:       e.Credit,
		})
	}
	h.request(w, r, RequestInput{
		TenantID:         shared.TenantFromRequest(r),
		Type:             vouchers.VoucherType(req.Type),
		SourceModule:     req.SourceModule,
		SourceDocumentID: uuid.MustParse(req.SourceDocumentID),
		Date:             date,
		Description:      req.Description,
		Reference:        req.Reference,
		Entries:          entries,
	})
}

type invoiceRequest struct {
	DocumentID string          `json:"documentId" validate:"required,uuid"`
	Number     string          `json:"number" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	CustomerID *int64          `json:"customerId"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeInvoiceShape(w, r)
	if !ok {
		return
	}
	tenantID := shared.TenantFromRequest(r)
	input, err := h.builder.Invoice(r.Context(), tenantID, InvoiceDocument{
		DocumentID: uuid.MustParse(req.DocumentID),
		Number:     req.Number,
		Date:       mustDate(req.Date),
		CustomerID: req.CustomerID,
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Total:      req.Total,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.request(w, r, input)
}

type supportDocumentRequest struct {
	DocumentID string          `json:"documentId" validate:"required,uuid"`
	Number     string          `json:"number" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	SupplierID *int64          `json:"supplierId"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
}

func (h *Handler) handleSupportDocument(w http.ResponseWriter, r *http.Request) {
	var req supportDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := h.builder.SupportDocument(r.Context(), shared.TenantFromRequest(r), SupportDocument{
		DocumentID: uuid.MustParse(req.DocumentID),
		Number:     req.Number,
		Date:       mustDate(req.Date),
		SupplierID: req.SupplierID,
		Subtotal:   req.Subtotal,
		Total:      req.Total,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.request(w, r, input)
}

type payrollRequest struct {
	DocumentID string          `json:"documentId" validate:"required,uuid"`
	Number     string          `json:"number" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	Earnings   decimal.Decimal `json:"earnings"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"netPay"`
}

func (h *Handler) handlePayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := h.builder.PayrollReceipt(r.Context(), shared.TenantFromRequest(r), PayrollReceipt{
		DocumentID: uuid.MustParse(req.DocumentID),
		Number:     req.Number,
		Date:       mustDate(req.Date),
		Earnings:   req.Earnings,
		Deductions: req.Deductions,
		NetPay:     req.NetPay,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.request(w, r, input)
}

func (h *Handler) handleCreditNote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeInvoiceShape(w, r)
	if !ok {
		return
	}
	input, err := h.builder.CreditNote(r.Context(), shared.TenantFromRequest(r), CreditNote{
		DocumentID: uuid.MustParse(req.DocumentID),
		Number:     req.Number,
		Date:       mustDate(req.Date),
		CustomerID: req.CustomerID,
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Total:      req.Total,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.request(w, r, input)
}

func (h *Handler) handleDebitNote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeInvoiceShape(w, r)
	if !ok {
		return
	}
	input, err := h.builder.DebitNote(r.Context(), shared.TenantFromRequest(r), DebitNote{
		DocumentID: uuid.MustParse(req.DocumentID),
		Number:     req.Number,
		Date:       mustDate(req.Date),
		CustomerID: req.CustomerID,
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Total:      req.Total,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.request(w, r, input)
}

type mappingRequest struct {
	AccountCode string `json:"accountCode" validate:"required"`
}

type mappingResponse struct {
	Key         string `json:"key"`
	AccountCode string `json:"accountCode"`
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	list, err := h.mappings.ListMappings(r.Context(), shared.TenantFromRequest(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]mappingResponse, 0, len(list))
	for _, m := range list {
		out = append(out, mappingResponse{Key: m.Key, AccountCode: m.AccountCode})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if !h.decode(w, r, &req) {
		return
	}
	key := chi.URLParam(r, "key")
	err := h.mappings.UpsertMapping(r.Context(), AccountMapping{
		TenantID:    shared.TenantFromRequest(r),
		Key:         key,
		AccountCode: req.AccountCode,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mappingResponse{Key: key, AccountCode: req.AccountCode})
}

func (h *Handler) request(w http.ResponseWriter, r *http.Request, input RequestInput) {
	result, err := h.service.RequestVoucher(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyLinked {
		status = http.StatusOK
	}
	httpx.JSON(w, status, resultResponse{
		VoucherID:     result.VoucherID,
		VoucherNumber: result.VoucherNumber,
		AlreadyLinked: result.AlreadyLinked,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return false
	}
	return true
}

func (h *Handler) decodeInvoiceShape(w http.ResponseWriter, r *http.Request) (invoiceRequest, bool) {
	var req invoiceRequest
	if !h.decode(w, r, &req) {
		return invoiceRequest{}, false
	}
	return req, true
}

func mustDate(raw string) time.Time {
	t, _ := time.Parse("2006-01-02", raw)
	return t
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrDocumentLocked) {
		httpx.ProblemCode(w, http.StatusConflict, "DOCUMENT_LOCKED", err.Error())
		return
	}
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "integration request failed", slog.Any("error", err))
		httpx.ProblemCode(w, status, shared.Code(err), "")
		return
	}
	httpx.ProblemCode(w, status, shared.Code(err), err.Error())
}
