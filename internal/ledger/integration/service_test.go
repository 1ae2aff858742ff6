package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

type linkKey struct {
	tenantID int64
	module   string
	document uuid.UUID
}

// fakeStore keeps source links in memory. When failInsert is set the insert
// reports the unique-constraint sentinel, simulating a lost race.
type fakeStore struct {
	links      map[linkKey]SourceLink
	failInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{links: make(map[linkKey]SourceLink)}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, &fakeTxStore{store: f})
}

func (f *fakeStore) FindSourceLink(_ context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error) {
	link, ok := f.links[linkKey{tenantID, module, documentID}]
	if !ok {
		return SourceLink{}, ErrLinkNotFound
	}
	return link, nil
}

type fakeTxStore struct {
	vouchers.TxRepository
	store *fakeStore
}

func (f *fakeTxStore) FindSourceLink(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error) {
	return f.store.FindSourceLink(ctx, tenantID, module, documentID)
}

func (f *fakeTxStore) GetVoucherForUpdate(_ context.Context, tenantID, id int64) (vouchers.Voucher, error) {
	return vouchers.Voucher{ID: id, TenantID: tenantID, Number: fmt.Sprintf("ING-%04d", id), Status: vouchers.StatusPosted}, nil
}

func (f *fakeTxStore) InsertSourceLink(_ context.Context, link SourceLink) (SourceLink, error) {
	key := linkKey{link.TenantID, link.SourceModule, link.SourceDocumentID}
	if f.store.failInsert {
		return SourceLink{}, shared.ErrSourceAlreadyLinked
	}
	if _, exists := f.store.links[key]; exists {
		return SourceLink{}, shared.ErrSourceAlreadyLinked
	}
	link.ID = int64(len(f.store.links) + 1)
	f.store.links[key] = link
	return link, nil
}

// fakeLedger counts lifecycle calls and hands out sequential voucher ids.
type fakeLedger struct {
	created int
	posted  int
	nextID  int64
}

func (f *fakeLedger) CheckEntries(_ context.Context, _ int64, _ []vouchers.EntryInput) error {
	return nil
}

func (f *fakeLedger) CreateInTx(_ context.Context, _ vouchers.TxRepository, input vouchers.CreateInput) (vouchers.Voucher, error) {
	f.created++
	f.nextID++
	return vouchers.Voucher{ID: f.nextID, TenantID: input.TenantID, Type: input.Type, Number: "ING-0001"}, nil
}

func (f *fakeLedger) PostInTx(_ context.Context, _ vouchers.TxRepository, tenantID, id int64) (vouchers.Voucher, error) {
	f.posted++
	return vouchers.Voucher{ID: id, TenantID: tenantID, Number: "ING-0001", Status: vouchers.StatusPosted}, nil
}

func (f *fakeLedger) Get(_ context.Context, tenantID, id int64) (vouchers.Voucher, error) {
	return vouchers.Voucher{ID: id, TenantID: tenantID, Number: fmt.Sprintf("ING-%04d", id), Status: vouchers.StatusPosted}, nil
}

type fakeLocker struct {
	held     bool
	acquired int
	released int
}

func (f *fakeLocker) Acquire(_ context.Context, _ int64, _ string, _ uuid.UUID) (func(), error) {
	if f.held {
		return nil, ErrDocumentLocked
	}
	f.acquired++
	return func() { f.released++ }, nil
}

func sampleRequest(documentID uuid.UUID) RequestInput {
	return RequestInput{
		TenantID:         1,
		Type:             vouchers.VoucherTypeIngreso,
		SourceModule:     ModuleInvoicing,
		SourceDocumentID: documentID,
		Date:             time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Description:      "Factura venta FV-100",
		Entries: []vouchers.EntryInput{
			{AccountCode: "130505", Debit: decimal.RequireFromString("119000")},
			{AccountCode: "413501", Credit: decimal.RequireFromString("119000")},
		},
	}
}

func TestRequestVoucherCreatesAndPosts(t *testing.T) {
	store := newFakeStore()
	ledger := &fakeLedger{}
	locker := &fakeLocker{}
	service := NewService(store, ledger, locker, nil)

	result, err := service.RequestVoucher(context.Background(), sampleRequest(uuid.New()))
	require.NoError(t, err)
	assert.False(t, result.AlreadyLinked)
	assert.Equal(t, int64(1), result.VoucherID)
	assert.Equal(t, "ING-0001", result.VoucherNumber)
	assert.Equal(t, 1, ledger.created)
	assert.Equal(t, 1, ledger.posted)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
	assert.Len(t, store.links, 1)
}

func TestRequestVoucherReplayReturnsExisting(t *testing.T) {
	store := newFakeStore()
	ledger := &fakeLedger{}
	service := NewService(store, ledger, &fakeLocker{}, nil)
	ctx := context.Background()
	documentID := uuid.New()

	first, err := service.RequestVoucher(ctx, sampleRequest(documentID))
	require.NoError(t, err)

	second, err := service.RequestVoucher(ctx, sampleRequest(documentID))
	require.NoError(t, err)
	assert.True(t, second.AlreadyLinked)
	assert.Equal(t, first.VoucherID, second.VoucherID)
	assert.Equal(t, "ING-0001", second.VoucherNumber, "replay must carry the linked voucher's number")
	assert.Equal(t, 1, ledger.created, "replay must not create a second voucher")
	assert.Equal(t, 1, ledger.posted)
}

func TestRequestVoucherDistinctDocumentsGetDistinctVouchers(t *testing.T) {
	store := newFakeStore()
	ledger := &fakeLedger{}
	service := NewService(store, ledger, &fakeLocker{}, nil)
	ctx := context.Background()

	first, err := service.RequestVoucher(ctx, sampleRequest(uuid.New()))
	require.NoError(t, err)
	second, err := service.RequestVoucher(ctx, sampleRequest(uuid.New()))
	require.NoError(t, err)

	assert.NotEqual(t, first.VoucherID, second.VoucherID)
	assert.Equal(t, 2, ledger.created)
}

func TestRequestVoucherLostRaceRecoversWinner(t *testing.T) {
	store := newFakeStore()
	documentID := uuid.New()
	// The winner's link is already in place, but this transaction saw no link
	// at check time, so the insert collides.
	store.links[linkKey{1, ModuleInvoicing, documentID}] = SourceLink{VoucherID: 77}
	store.failInsert = true

	// A tx-scoped find that misses forces the create path.
	service := NewService(&raceStore{fakeStore: store}, &fakeLedger{}, nil, nil)

	result, err := service.RequestVoucher(context.Background(), sampleRequest(documentID))
	require.NoError(t, err)
	assert.True(t, result.AlreadyLinked)
	assert.Equal(t, int64(77), result.VoucherID)
	assert.Equal(t, "ING-0077", result.VoucherNumber)
}

// raceStore reports no link inside the transaction while the pool-side lookup
// sees the winner, reproducing a repeatable-read snapshot taken before the
// concurrent commit.
type raceStore struct {
	*fakeStore
}

func (r *raceStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, &raceTxStore{store: r.fakeStore})
}

type raceTxStore struct {
	vouchers.TxRepository
	store *fakeStore
}

func (r *raceTxStore) FindSourceLink(context.Context, int64, string, uuid.UUID) (SourceLink, error) {
	return SourceLink{}, ErrLinkNotFound
}

func (r *raceTxStore) InsertSourceLink(context.Context, SourceLink) (SourceLink, error) {
	return SourceLink{}, shared.ErrSourceAlreadyLinked
}

func TestRequestVoucherHeldLock(t *testing.T) {
	service := NewService(newFakeStore(), &fakeLedger{}, &fakeLocker{held: true}, nil)

	_, err := service.RequestVoucher(context.Background(), sampleRequest(uuid.New()))
	assert.ErrorIs(t, err, ErrDocumentLocked)
}

func TestRequestVoucherValidation(t *testing.T) {
	service := NewService(newFakeStore(), &fakeLedger{}, nil, nil)
	ctx := context.Background()

	missingModule := sampleRequest(uuid.New())
	missingModule.SourceModule = ""
	_, err := service.RequestVoucher(ctx, missingModule)
	assert.ErrorIs(t, err, shared.ErrValidation)

	missingDocument := sampleRequest(uuid.New())
	missingDocument.SourceDocumentID = uuid.Nil
	_, err = service.RequestVoucher(ctx, missingDocument)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
