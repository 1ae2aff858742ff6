package accounts

import (
	"context"
	"fmt"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

// RepositoryPort abstracts account lookups for the service and for the
// voucher lifecycle, which validates postings against the registry.
type RepositoryPort interface {
	GetByCode(ctx context.Context, tenantID int64, code string) (Account, error)
	ListActiveLeaf(ctx context.Context, tenantID int64) ([]Account, error)
	ListByCodeRange(ctx context.Context, tenantID int64, accountType AccountType, start, end string) ([]Account, error)
	ListAll(ctx context.Context, tenantID int64) ([]Account, error)
	Insert(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, tenantID int64, code, name string, isActive bool) (Account, error)
}

// Service exposes chart of accounts operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the registry service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the account for a code.
func (s *Service) Get(ctx context.Context, tenantID int64, code string) (Account, error) {
	return s.repo.GetByCode(ctx, tenantID, code)
}

// ListActiveLeaf returns the postable accounts.
func (s *Service) ListActiveLeaf(ctx context.Context, tenantID int64) ([]Account, error) {
	return s.repo.ListActiveLeaf(ctx, tenantID)
}

// ListByCodeRange returns active leaf accounts of a type inside a code range.
func (s *Service) ListByCodeRange(ctx context.Context, tenantID int64, accountType AccountType, start, end string) ([]Account, error) {
	return s.repo.ListByCodeRange(ctx, tenantID, accountType, start, end)
}

// List returns the full chart for a tenant.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Account, error) {
	return s.repo.ListAll(ctx, tenantID)
}

// Create registers a new account after basic structural checks. The hierarchy
// level derives from the code's digit count; callers never set it directly.
func (s *Service) Create(ctx context.Context, a Account) (Account, error) {
	if a.Code == "" || a.Name == "" {
		return Account{}, fmt.Errorf("%w: code and name required", shared.ErrValidation)
	}
	a.Level = LevelForCode(a.Code)
	if a.Level == 0 {
		return Account{}, fmt.Errorf("%w: code %q does not fit the 1/2/4/6 digit layout", shared.ErrValidation, a.Code)
	}
	if a.Nature != NatureDebito && a.Nature != NatureCredito {
		return Account{}, fmt.Errorf("%w: nature must be DEBITO or CREDITO", shared.ErrValidation)
	}
	if a.Level > 1 {
		parent := a.Code[:parentLen(a.Level)]
		if _, err := s.repo.GetByCode(ctx, a.TenantID, parent); err != nil {
			return Account{}, fmt.Errorf("parent %s: %w", parent, err)
		}
		a.ParentCode = &parent
	}
	return s.repo.Insert(ctx, a)
}

func parentLen(level int) int {
	switch level {
	case 2:
		return 1
	case 3:
		return 2
	default:
		return 4
	}
}

// Rename updates display attributes without touching type or nature.
func (s *Service) Rename(ctx context.Context, tenantID int64, code, name string, isActive bool) (Account, error) {
	return s.repo.Update(ctx, tenantID, code, name, isActive)
}

// EnsurePostable verifies an account exists, is active, and is a leaf. The
// voucher lifecycle calls this for every entry before persisting.
func (s *Service) EnsurePostable(ctx context.Context, tenantID int64, code string) (Account, error) {
	account, err := s.repo.GetByCode(ctx, tenantID, code)
	if err != nil {
		return Account{}, err
	}
	if !account.IsActive {
		return Account{}, shared.ErrInactiveAccount
	}
	if !account.IsLeaf() {
		return Account{}, shared.ErrNonLeafAccount
	}
	return account, nil
}
