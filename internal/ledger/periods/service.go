package periods

import (
	"context"
	"errors"
	"time"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

// RepositoryPort abstracts period lookups.
type RepositoryPort interface {
	Get(ctx context.Context, tenantID int64, year, month int) (FiscalPeriod, error)
	Upsert(ctx context.Context, tenantID int64, year, month int, status PeriodStatus) (FiscalPeriod, error)
	List(ctx context.Context, tenantID int64, year int) ([]FiscalPeriod, error)
}

// Service manages fiscal period state and guards voucher posting.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the period service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// EnsureOpenForPosting rejects postings into CLOSED or LOCKED periods. A
// missing period row counts as OPEN: period gating is opt-in per bucket.
func (s *Service) EnsureOpenForPosting(ctx context.Context, tenantID int64, date time.Time) error {
	period, err := s.repo.Get(ctx, tenantID, date.Year(), int(date.Month()))
	if err != nil {
		if errors.Is(err, ErrPeriodNotFound) {
			return nil
		}
		return err
	}
	if period.Status != PeriodStatusOpen {
		return shared.ErrPeriodClosed
	}
	return nil
}

// SetStatus opens, closes, or locks a period bucket. Locked periods cannot be
// reopened through this path.
func (s *Service) SetStatus(ctx context.Context, tenantID int64, year, month int, status PeriodStatus) (FiscalPeriod, error) {
	current, err := s.repo.Get(ctx, tenantID, year, month)
	if err == nil && current.Status == PeriodStatusLocked && status != PeriodStatusLocked {
		return FiscalPeriod{}, shared.ErrInvalidState
	}
	if err != nil && !errors.Is(err, ErrPeriodNotFound) {
		return FiscalPeriod{}, err
	}
	return s.repo.Upsert(ctx, tenantID, year, month, status)
}

// List returns a tenant's period buckets for a year.
func (s *Service) List(ctx context.Context, tenantID int64, year int) ([]FiscalPeriod, error) {
	return s.repo.List(ctx, tenantID, year)
}
