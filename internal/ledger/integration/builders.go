package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

// MappingSource resolves integration keys to tenant account codes.
type MappingSource interface {
	GetMapping(ctx context.Context, tenantID int64, key string) (AccountMapping, error)
}

// Builder assembles voucher requests for the operational document flows. Each
// build method resolves its account codes through the tenant mapping table, so
// two tenants can land the same document on different PUC accounts.
type Builder struct {
	mappings MappingSource
}

// NewBuilder constructs Builder.
func NewBuilder(mappings MappingSource) *Builder {
	return &Builder{mappings: mappings}
}

// InvoiceDocument is a posted sales invoice as seen by the ledger.
type InvoiceDocument struct {
	DocumentID uuid.UUID
	Number     string
	Date       time.Time
	CustomerID *int64
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// SupportDocument is a purchase support document (documento soporte).
type SupportDocument struct {
	DocumentID uuid.UUID
	Number     string
	Date       time.Time
	SupplierID *int64
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
}

// PayrollReceipt is a calculated payroll receipt ready for accounting.
type PayrollReceipt struct {
	DocumentID uuid.UUID
	Number     string
	Date       time.Time
	Earnings   decimal.Decimal
	Deductions decimal.Decimal
	NetPay     decimal.Decimal
}

// CreditNote reverses a sales invoice.
type CreditNote struct {
	DocumentID uuid.UUID
	Number     string
	Date       time.Time
	CustomerID *int64
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// DebitNote increases a customer's debt, mirroring an invoice.
type DebitNote struct {
	DocumentID uuid.UUID
	Number     string
	Date       time.Time
	CustomerID *int64
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

func (b *Builder) resolve(ctx context.Context, tenantID int64, key string) (string, error) {
	mapping, err := b.mappings.GetMapping(ctx, tenantID, key)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	return mapping.AccountCode, nil
}

func debitLine(code string, amount decimal.Decimal, thirdParty *int64, desc string) vouchers.EntryInput {
	return vouchers.EntryInput{AccountCode: code, Debit: amount, ThirdPartyID: thirdParty, Description: desc}
}

func creditLine(code string, amount decimal.Decimal, thirdParty *int64, desc string) vouchers.EntryInput {
	return vouchers.EntryInput{AccountCode: code, Credit: amount, ThirdPartyID: thirdParty, Description: desc}
}

// Invoice builds the INGRESO request for a sales invoice: receivable against
// revenue and, when the invoice carries tax, generated VAT.
func (b *Builder) Invoice(ctx context.Context, tenantID int64, doc InvoiceDocument) (RequestInput, error) {
	clientes, err := b.resolve(ctx, tenantID, KeyClientes)
	if err != nil {
		return RequestInput{}, err
	}
	ventas, err := b.resolve(ctx, tenantID, KeyVentas)
	if err != nil {
		return RequestInput{}, err
	}
	entries := []vouchers.EntryInput{
		debitLine(clientes, doc.Total, doc.CustomerID, "CxC cliente "+doc.Number),
		creditLine(ventas, doc.Subtotal, nil, "Ingreso venta"),
	}
	if doc.Tax.IsPositive() {
		iva, err := b.resolve(ctx, tenantID, KeyIVAGenerado)
		if err != nil {
			return RequestInput{}, err
		}
		entries = append(entries, creditLine(iva, doc.Tax, nil, "IVA generado"))
	}
	return RequestInput{
		TenantID:         tenantID,
		Type:             vouchers.VoucherTypeIngreso,
		SourceModule:     ModuleInvoicing,
		SourceDocumentID: doc.DocumentID,
		Date:             doc.Date,
		Description:      "Factura venta " + doc.Number,
		Reference:        doc.Number,
		Entries:          entries,
	}, nil
}

// SupportDocument builds the EGRESO request for a purchase support document:
// expense against payable.
func (b *Builder) SupportDocument(ctx context.Context, tenantID int64, doc SupportDocument) (RequestInput, error) {
	gasto, err := b.resolve(ctx, tenantID, KeyGastoServicios)
	if err != nil {
		return RequestInput{}, err
	}
	proveedores, err := b.resolve(ctx, tenantID, KeyProveedores)
	if err != nil {
		return RequestInput{}, err
	}
	return RequestInput{
		TenantID:         tenantID,
		Type:             vouchers.VoucherTypeEgreso,
		SourceModule:     ModuleSupportDocs,
		SourceDocumentID: doc.DocumentID,
		Date:             doc.Date,
		Description:      "Documento soporte " + doc.Number,
		Reference:        doc.Number,
		Entries: []vouchers.EntryInput{
			debitLine(gasto, doc.Subtotal, nil, "Gasto servicios"),
			creditLine(proveedores, doc.Total, doc.SupplierID, "CxP proveedor "+doc.Number),
		},
	}, nil
}

// PayrollReceipt builds the EGRESO request for a payroll receipt: payroll
// expense for gross earnings against net pay owed and withheld deductions.
func (b *Builder) PayrollReceipt(ctx context.Context, tenantID int64, doc PayrollReceipt) (RequestInput, error) {
	gasto, err := b.resolve(ctx, tenantID, KeyGastoNomina)
	if err != nil {
		return RequestInput{}, err
	}
	salarios, err := b.resolve(ctx, tenantID, KeySalariosPorPagar)
	if err != nil {
		return RequestInput{}, err
	}
	entries := []vouchers.EntryInput{
		debitLine(gasto, doc.Earnings, nil, "Gasto nómina"),
		creditLine(salarios, doc.NetPay, nil, "Neto a pagar"),
	}
	if doc.Deductions.IsPositive() {
		deducciones, err := b.resolve(ctx, tenantID, KeyDeduccionesNomina)
		if err != nil {
			return RequestInput{}, err
		}
		entries = append(entries, creditLine(deducciones, doc.Deductions, nil, "Deducciones nómina"))
	}
	return RequestInput{
		TenantID:         tenantID,
		Type:             vouchers.VoucherTypeEgreso,
		SourceModule:     ModulePayroll,
		SourceDocumentID: doc.DocumentID,
		Date:             doc.Date,
		Description:      "Nómina " + doc.Number,
		Reference:        doc.Number,
		Entries:          entries,
	}, nil
}

// CreditNote builds the AJUSTE request reversing an invoice: revenue and VAT
// come back as debits, the receivable is credited down.
func (b *Builder) CreditNote(ctx context.Context, tenantID int64, doc CreditNote) (RequestInput, error) {
	clientes, err := b.resolve(ctx, tenantID, KeyClientes)
	if err != nil {
		return RequestInput{}, err
	}
	ventas, err := b.resolve(ctx, tenantID, KeyVentas)
	if err != nil {
		return RequestInput{}, err
	}
	entries := []vouchers.EntryInput{
		debitLine(ventas, doc.Subtotal, nil, "Devolución venta "+doc.Number),
	}
	if doc.Tax.IsPositive() {
		iva, err := b.resolve(ctx, tenantID, KeyIVAGenerado)
		if err != nil {
			return RequestInput{}, err
		}
		entries = append(entries, debitLine(iva, doc.Tax, nil, "Devolución IVA"))
	}
	entries = append(entries, creditLine(clientes, doc.Total, doc.CustomerID, "Nota crédito cliente "+doc.Number))
	return RequestInput{
		TenantID:         tenantID,
		Type:             vouchers.VoucherTypeAjuste,
		SourceModule:     ModuleCreditNotes,
		SourceDocumentID: doc.DocumentID,
		Date:             doc.Date,
		Description:      "Nota crédito " + doc.Number,
		Reference:        doc.Number,
		Entries:          entries,
	}, nil
}

// DebitNote builds the AJUSTE request increasing a customer's debt, with the
// same shape as an invoice.
func (b *Builder) DebitNote(ctx context.Context, tenantID int64, doc DebitNote) (RequestInput, error) {
	clientes, err := b.resolve(ctx, tenantID, KeyClientes)
	if err != nil {
		return RequestInput{}, err
	}
	ventas, err := b.resolve(ctx, tenantID, KeyVentas)
	if err != nil {
		return RequestInput{}, err
	}
	entries := []vouchers.EntryInput{
		debitLine(clientes, doc.Total, doc.CustomerID, "Nota débito cliente "+doc.Number),
		creditLine(ventas, doc.Subtotal, nil, "Ingreso ND "+doc.Number),
	}
	if doc.Tax.IsPositive() {
		iva, err := b.resolve(ctx, tenantID, KeyIVAGenerado)
		if err != nil {
			return RequestInput{}, err
		}
		entries = append(entries, creditLine(iva, doc.Tax, nil, "IVA generado ND"))
	}
	return RequestInput{
		TenantID:         tenantID,
		Type:             vouchers.VoucherTypeAjuste,
		SourceModule:     ModuleDebitNotes,
		SourceDocumentID: doc.DocumentID,
		Date:             doc.Date,
		Description:      "Nota débito " + doc.Number,
		Reference:        doc.Number,
		Entries:          entries,
	}, nil
}
