package accounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/platform/httpx"
)

// Handler exposes the chart of accounts over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers chart of accounts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{code}", h.handleGet)
		r.Put("/{code}", h.handleUpdate)
	})
}

type createAccountRequest struct {
	Code               string `json:"code" validate:"required,numeric,min=1,max=6"`
	Name               string `json:"name" validate:"required"`
	Type               string `json:"type" validate:"required,oneof=ACTIVO PASIVO PATRIMONIO INGRESO GASTO COSTO"`
	ParentCode         *string `json:"parentCode"`
	Nature             string `json:"nature" validate:"required,oneof=DEBITO CREDITO"`
	RequiresThirdParty bool   `json:"requiresThirdParty"`
	RequiresCostCenter bool   `json:"requiresCostCenter"`
}

type updateAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"isActive"`
}

type accountResponse struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Type               AccountType `json:"type"`
	Level              int     `json:"level"`
	ParentCode         *string `json:"parentCode,omitempty"`
	Nature             Nature  `json:"nature"`
	RequiresThirdParty bool    `json:"requiresThirdParty"`
	RequiresCostCenter bool    `json:"requiresCostCenter"`
	IsActive           bool    `json:"isActive"`
	IsSystem           bool    `json:"isSystem"`
	IsLeaf             bool    `json:"isLeaf"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		Code:               a.Code,
		Name:               a.Name,
		Type:               a.Type,
		Level:              a.Level,
		ParentCode:         a.ParentCode,
		Nature:             a.Nature,
		RequiresThirdParty: a.RequiresThirdParty,
		RequiresCostCenter: a.RequiresCostCenter,
		IsActive:           a.IsActive,
		IsSystem:           a.IsSystem,
		IsLeaf:             a.IsLeaf(),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tenantID := shared.TenantFromRequest(r)
	var (
		list []Account
		err  error
	)
	if r.URL.Query().Get("postable") == "true" {
		list, err = h.service.ListActiveLeaf(r.Context(), tenantID)
	} else {
		list, err = h.service.List(r.Context(), tenantID)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), shared.TenantFromRequest(r), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), Account{
		TenantID:           shared.TenantFromRequest(r),
		Code:               req.Code,
		Name:               req.Name,
		Type:               AccountType(req.Type),
		ParentCode:         req.ParentCode,
		Nature:             Nature(req.Nature),
		RequiresThirdParty: req.RequiresThirdParty,
		RequiresCostCenter: req.RequiresCostCenter,
		IsActive:           true,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	account, err := h.service.Rename(r.Context(), shared.TenantFromRequest(r), chi.URLParam(r, "code"), req.Name, req.IsActive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, httpx.ErrDuplicate) {
		httpx.ProblemCode(w, http.StatusConflict, "DUPLICATE_ACCOUNT", err.Error())
		return
	}
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "account operation failed", slog.Any("error", err))
		httpx.ProblemCode(w, status, shared.Code(err), "")
		return
	}
	httpx.ProblemCode(w, status, shared.Code(err), err.Error())
}
