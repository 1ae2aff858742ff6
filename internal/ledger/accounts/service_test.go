package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
)

type stubRepo struct {
	accounts map[string]Account
	inserted []Account
}

func newStubRepo(accts ...Account) *stubRepo {
	repo := &stubRepo{accounts: make(map[string]Account)}
	for _, a := range accts {
		repo.accounts[a.Code] = a
	}
	return repo
}

func (s *stubRepo) GetByCode(_ context.Context, _ int64, code string) (Account, error) {
	a, ok := s.accounts[code]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (s *stubRepo) ListActiveLeaf(_ context.Context, _ int64) ([]Account, error) { return nil, nil }

func (s *stubRepo) ListByCodeRange(_ context.Context, _ int64, _ AccountType, _, _ string) ([]Account, error) {
	return nil, nil
}

func (s *stubRepo) ListAll(_ context.Context, _ int64) ([]Account, error) { return nil, nil }

func (s *stubRepo) Insert(_ context.Context, a Account) (Account, error) {
	a.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, a)
	s.accounts[a.Code] = a
	return a, nil
}

func (s *stubRepo) Update(_ context.Context, _ int64, code, name string, isActive bool) (Account, error) {
	a := s.accounts[code]
	a.Name = name
	a.IsActive = isActive
	s.accounts[code] = a
	return a, nil
}

func leaf(code string, accType AccountType, nature Nature) Account {
	return Account{
		TenantID: 1,
		Code:     code,
		Name:     "account " + code,
		Type:     accType,
		Level:    LevelForCode(code),
		Nature:   nature,
		IsActive: true,
	}
}

func TestLevelForCode(t *testing.T) {
	assert.Equal(t, 1, LevelForCode("1"))
	assert.Equal(t, 2, LevelForCode("13"))
	assert.Equal(t, 3, LevelForCode("1305"))
	assert.Equal(t, 4, LevelForCode("130505"))
	assert.Equal(t, 0, LevelForCode("130"))
	assert.Equal(t, 0, LevelForCode("1305050"))
}

func TestCreateDerivesLevelAndParent(t *testing.T) {
	repo := newStubRepo(leaf("1305", AccountTypeActivo, NatureDebito))
	service := NewService(repo)

	created, err := service.Create(context.Background(), Account{
		TenantID: 1,
		Code:     "130510",
		Name:     "Clientes del exterior",
		Type:     AccountTypeActivo,
		Nature:   NatureDebito,
	})
	require.NoError(t, err)
	assert.Equal(t, LeafLevel, created.Level)
	require.NotNil(t, created.ParentCode)
	assert.Equal(t, "1305", *created.ParentCode)
}

func TestCreateRejectsBadCodeLength(t *testing.T) {
	service := NewService(newStubRepo())
	_, err := service.Create(context.Background(), Account{
		TenantID: 1, Code: "130", Name: "x", Type: AccountTypeActivo, Nature: NatureDebito,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsMissingParent(t *testing.T) {
	service := NewService(newStubRepo())
	_, err := service.Create(context.Background(), Account{
		TenantID: 1, Code: "130505", Name: "Clientes", Type: AccountTypeActivo, Nature: NatureDebito,
	})
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestCreateRejectsBadNature(t *testing.T) {
	service := NewService(newStubRepo())
	_, err := service.Create(context.Background(), Account{
		TenantID: 1, Code: "1", Name: "Activo", Type: AccountTypeActivo, Nature: Nature("SALDO"),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEnsurePostable(t *testing.T) {
	inactive := leaf("130510", AccountTypeActivo, NatureDebito)
	inactive.IsActive = false
	group := leaf("1305", AccountTypeActivo, NatureDebito)
	repo := newStubRepo(leaf("130505", AccountTypeActivo, NatureDebito), inactive, group)
	service := NewService(repo)
	ctx := context.Background()

	_, err := service.EnsurePostable(ctx, 1, "130505")
	assert.NoError(t, err)

	_, err = service.EnsurePostable(ctx, 1, "130510")
	assert.ErrorIs(t, err, shared.ErrInactiveAccount)

	_, err = service.EnsurePostable(ctx, 1, "1305")
	assert.ErrorIs(t, err, shared.ErrNonLeafAccount)

	_, err = service.EnsurePostable(ctx, 1, "999999")
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}
