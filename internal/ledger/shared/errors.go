// Package shared holds the error taxonomy common to the ledger packages.
package shared

import (
	"errors"
	"net/http"
)

var (
	// ErrUnbalanced indicates voucher debits != credits at posting time.
	ErrUnbalanced = errors.New("ledger: voucher is not balanced")
	// ErrInvalidState indicates a lifecycle transition from the wrong status.
	ErrInvalidState = errors.New("ledger: invalid voucher state for operation")
	// ErrAccountNotFound indicates an unknown chart of accounts code.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrVoucherNotFound indicates a missing voucher id.
	ErrVoucherNotFound = errors.New("ledger: voucher not found")
	// ErrNonLeafAccount indicates a posting against a non level-4 account.
	ErrNonLeafAccount = errors.New("ledger: account does not accept postings")
	// ErrInactiveAccount indicates a posting against a disabled account.
	ErrInactiveAccount = errors.New("ledger: account is inactive")
	// ErrInvalidEntry indicates a line violating the debit-xor-credit rule.
	ErrInvalidEntry = errors.New("ledger: entry must carry exactly one of debit or credit")
	// ErrPeriodClosed indicates the fiscal period rejects new postings.
	ErrPeriodClosed = errors.New("ledger: fiscal period is closed")
	// ErrThirdPartyRequired indicates the account demands a third party.
	ErrThirdPartyRequired = errors.New("ledger: account requires a third party")
	// ErrCostCenterRequired indicates the account demands a cost center.
	ErrCostCenterRequired = errors.New("ledger: account requires a cost center")
	// ErrSourceAlreadyLinked indicates the source document already produced a voucher.
	ErrSourceAlreadyLinked = errors.New("ledger: source document already linked to a voucher")
	// ErrMappingNotFound indicates a missing event-to-account mapping.
	ErrMappingNotFound = errors.New("ledger: account mapping not found")
	// ErrInvalidRange indicates from > to in a report query.
	ErrInvalidRange = errors.New("ledger: from date is after to date")
	// ErrValidation indicates a structurally invalid request.
	ErrValidation = errors.New("ledger: invalid request")
)

// Code returns the stable machine-readable identifier for a ledger error.
// Callers branch on these values, never on the message text.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnbalanced):
		return "UNBALANCED_VOUCHER"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrVoucherNotFound):
		return "VOUCHER_NOT_FOUND"
	case errors.Is(err, ErrNonLeafAccount):
		return "NON_LEAF_ACCOUNT"
	case errors.Is(err, ErrInactiveAccount):
		return "INACTIVE_ACCOUNT"
	case errors.Is(err, ErrInvalidEntry):
		return "INVALID_ENTRY"
	case errors.Is(err, ErrPeriodClosed):
		return "PERIOD_CLOSED"
	case errors.Is(err, ErrThirdPartyRequired):
		return "THIRD_PARTY_REQUIRED"
	case errors.Is(err, ErrCostCenterRequired):
		return "COST_CENTER_REQUIRED"
	case errors.Is(err, ErrSourceAlreadyLinked):
		return "SOURCE_ALREADY_LINKED"
	case errors.Is(err, ErrMappingNotFound):
		return "MAPPING_NOT_FOUND"
	case errors.Is(err, ErrInvalidRange):
		return "INVALID_DATE_RANGE"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps a ledger error to the HTTP status used by the API layer.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrVoucherNotFound),
		errors.Is(err, ErrMappingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrSourceAlreadyLinked):
		return http.StatusConflict
	case errors.Is(err, ErrUnbalanced),
		errors.Is(err, ErrNonLeafAccount),
		errors.Is(err, ErrInactiveAccount),
		errors.Is(err, ErrInvalidEntry),
		errors.Is(err, ErrPeriodClosed),
		errors.Is(err, ErrThirdPartyRequired),
		errors.Is(err, ErrCostCenterRequired),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
