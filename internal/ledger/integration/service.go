package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// Source module identifiers recorded on source links.
const (
	ModuleInvoicing   = "INVOICING"
	ModuleSupportDocs = "SUPPORT_DOCS"
	ModulePayroll     = "PAYROLL"
	ModuleCreditNotes = "CREDIT_NOTES"
	ModuleDebitNotes  = "DEBIT_NOTES"
)

// RequestInput describes one accounting request from an operational module.
type RequestInput struct {
	TenantID         int64
	Type             vouchers.VoucherType
	SourceModule     string
	SourceDocumentID uuid.UUID
	Date             time.Time
	Description      string
	Reference        string
	Entries          []vouchers.EntryInput
}

// Validate checks the request before any storage work.
func (in RequestInput) Validate() error {
	if in.SourceModule == "" {
		return fmt.Errorf("%w: source module required", shared.ErrValidation)
	}
	if in.SourceDocumentID == uuid.Nil {
		return fmt.Errorf("%w: source document id required", shared.ErrValidation)
	}
	create := vouchers.CreateInput{
		TenantID:    in.TenantID,
		Type:        in.Type,
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		Entries:     in.Entries,
	}
	return create.Validate()
}

// Result reports the voucher a request resolved to. AlreadyLinked is true
// when the document had produced a voucher earlier and no new one was made.
type Result struct {
	VoucherID     int64
	VoucherNumber string
	AlreadyLinked bool
}

// Store is the persistence surface of the adapter.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	FindSourceLink(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (SourceLink, error)
}

// Ledger is what the adapter needs from the voucher lifecycle manager.
type Ledger interface {
	CheckEntries(ctx context.Context, tenantID int64, entries []vouchers.EntryInput) error
	CreateInTx(ctx context.Context, tx vouchers.TxRepository, input vouchers.CreateInput) (vouchers.Voucher, error)
	PostInTx(ctx context.Context, tx vouchers.TxRepository, tenantID, id int64) (vouchers.Voucher, error)
	Get(ctx context.Context, tenantID, id int64) (vouchers.Voucher, error)
}

// Locker serialises concurrent requests for the same document.
type Locker interface {
	Acquire(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (func(), error)
}

// Service turns operational documents into posted vouchers exactly once per
// (module, document). The create, the post and the source link land in one
// transaction; any failure rolls all three back so a retry starts clean.
type Service struct {
	store  Store
	ledger Ledger
	locks  Locker
	log    *slog.Logger
}

// NewService constructs the integration adapter.
func NewService(store Store, ledger Ledger, locks Locker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, ledger: ledger, locks: locks, log: log}
}

// RequestVoucher creates and posts a voucher for a source document. Replays
// return the originally linked voucher instead of creating a second one.
func (s *Service) RequestVoucher(ctx context.Context, input RequestInput) (Result, error) {
	if err := input.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.ledger.CheckEntries(ctx, input.TenantID, input.Entries); err != nil {
		return Result{}, err
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, input.TenantID, input.SourceModule, input.SourceDocumentID)
		if err != nil {
			return Result{}, err
		}
		defer release()
	}

	var result Result
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		link, err := tx.FindSourceLink(ctx, input.TenantID, input.SourceModule, input.SourceDocumentID)
		if err == nil {
			linked, verr := tx.GetVoucherForUpdate(ctx, input.TenantID, link.VoucherID)
			if verr != nil {
				return verr
			}
			result = Result{VoucherID: link.VoucherID, VoucherNumber: linked.Number, AlreadyLinked: true}
			return nil
		}
		if !errors.Is(err, ErrLinkNotFound) {
			return err
		}

		voucher, err := s.ledger.CreateInTx(ctx, tx, vouchers.CreateInput{
			TenantID:    input.TenantID,
			Type:        input.Type,
			Date:        input.Date,
			Description: input.Description,
			Reference:   input.Reference,
			Entries:     input.Entries,
		})
		if err != nil {
			return err
		}
		posted, err := s.ledger.PostInTx(ctx, tx, input.TenantID, voucher.ID)
		if err != nil {
			return err
		}
		_, err = tx.InsertSourceLink(ctx, SourceLink{
			TenantID:         input.TenantID,
			SourceModule:     input.SourceModule,
			SourceDocumentID: input.SourceDocumentID,
			VoucherID:        posted.ID,
		})
		if err != nil {
			return err
		}
		result = Result{VoucherID: posted.ID, VoucherNumber: posted.Number}
		return nil
	})
	if errors.Is(err, shared.ErrSourceAlreadyLinked) {
		// Lost the race to a concurrent request: the transaction rolled back,
		// the winner's voucher is the answer.
		link, findErr := s.store.FindSourceLink(ctx, input.TenantID, input.SourceModule, input.SourceDocumentID)
		if findErr != nil {
			return Result{}, err
		}
		linked, verr := s.ledger.Get(ctx, input.TenantID, link.VoucherID)
		if verr != nil {
			return Result{}, verr
		}
		return Result{VoucherID: link.VoucherID, VoucherNumber: linked.Number, AlreadyLinked: true}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if result.AlreadyLinked {
		s.log.InfoContext(ctx, "source document already linked",
			slog.String("module", input.SourceModule),
			slog.String("document", input.SourceDocumentID.String()),
			slog.Int64("voucher_id", result.VoucherID))
	}
	return result, nil
}
