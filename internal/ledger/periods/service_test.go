package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

type stubRepo struct {
	periods map[[2]int]FiscalPeriod
}

func newStubRepo() *stubRepo {
	return &stubRepo{periods: make(map[[2]int]FiscalPeriod)}
}

func (s *stubRepo) Get(_ context.Context, _ int64, year, month int) (FiscalPeriod, error) {
	p, ok := s.periods[[2]int{year, month}]
	if !ok {
		return FiscalPeriod{}, ErrPeriodNotFound
	}
	return p, nil
}

func (s *stubRepo) Upsert(_ context.Context, tenantID int64, year, month int, status PeriodStatus) (FiscalPeriod, error) {
	p := FiscalPeriod{TenantID: tenantID, Year: year, Month: month, Status: status}
	s.periods[[2]int{year, month}] = p
	return p, nil
}

func (s *stubRepo) List(_ context.Context, _ int64, year int) ([]FiscalPeriod, error) {
	var out []FiscalPeriod
	for key, p := range s.periods {
		if key[0] == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}

func TestEnsureOpenForPostingMissingBucketIsOpen(t *testing.T) {
	service := NewService(newStubRepo())
	assert.NoError(t, service.EnsureOpenForPosting(context.Background(), 1, date(2026, time.April)))
}

func TestEnsureOpenForPostingClosedPeriod(t *testing.T) {
	repo := newStubRepo()
	repo.periods[[2]int{2026, 4}] = FiscalPeriod{Year: 2026, Month: 4, Status: PeriodStatusClosed}
	service := NewService(repo)

	err := service.EnsureOpenForPosting(context.Background(), 1, date(2026, time.April))
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestEnsureOpenForPostingLockedPeriod(t *testing.T) {
	repo := newStubRepo()
	repo.periods[[2]int{2026, 4}] = FiscalPeriod{Year: 2026, Month: 4, Status: PeriodStatusLocked}
	service := NewService(repo)

	err := service.EnsureOpenForPosting(context.Background(), 1, date(2026, time.April))
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestSetStatusTransitions(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	closed, err := service.SetStatus(ctx, 1, 2026, 4, PeriodStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusClosed, closed.Status)

	reopened, err := service.SetStatus(ctx, 1, 2026, 4, PeriodStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusOpen, reopened.Status)
}

func TestSetStatusLockedIsFinal(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	_, err := service.SetStatus(ctx, 1, 2026, 4, PeriodStatusLocked)
	require.NoError(t, err)

	_, err = service.SetStatus(ctx, 1, 2026, 4, PeriodStatusOpen)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
