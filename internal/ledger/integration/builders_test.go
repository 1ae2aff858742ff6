package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
)

type stubMappings struct {
	codes map[string]string
}

func (s *stubMappings) GetMapping(_ context.Context, tenantID int64, key string) (AccountMapping, error) {
	code, ok := s.codes[key]
	if !ok {
		return AccountMapping{}, shared.ErrMappingNotFound
	}
	return AccountMapping{TenantID: tenantID, Key: key, AccountCode: code}, nil
}

func defaultStubMappings() *stubMappings {
	codes := make(map[string]string, len(DefaultMappings))
	for key, code := range DefaultMappings {
		codes[key] = code
	}
	return &stubMappings{codes: codes}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func entryTotals(entries []vouchers.EntryInput) (debit, credit decimal.Decimal) {
	return vouchers.Totals(entries)
}

func TestBuilderInvoiceWithTax(t *testing.T) {
	builder := NewBuilder(defaultStubMappings())
	customer := int64(501)

	req, err := builder.Invoice(context.Background(), 1, InvoiceDocument{
		DocumentID: uuid.New(),
		Number:     "FV-100",
		Date:       time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		CustomerID: &customer,
		Subtotal:   dec("100000"),
		Tax:        dec("19000"),
		Total:      dec("119000"),
	})
	require.NoError(t, err)

	assert.Equal(t, vouchers.VoucherTypeIngreso, req.Type)
	assert.Equal(t, ModuleInvoicing, req.SourceModule)
	require.Len(t, req.Entries, 3)
	assert.Equal(t, "130505", req.Entries[0].AccountCode)
	assert.True(t, req.Entries[0].Debit.Equal(dec("119000")))
	require.NotNil(t, req.Entries[0].ThirdPartyID)
	assert.Equal(t, customer, *req.Entries[0].ThirdPartyID)
	assert.Equal(t, "413501", req.Entries[1].AccountCode)
	assert.Equal(t, "240801", req.Entries[2].AccountCode)

	debit, credit := entryTotals(req.Entries)
	assert.True(t, debit.Equal(credit))
}

func TestBuilderInvoiceWithoutTaxSkipsVATLine(t *testing.T) {
	builder := NewBuilder(defaultStubMappings())

	req, err := builder.Invoice(context.Background(), 1, InvoiceDocument{
		DocumentID: uuid.New(),
		Number:     "FV-101",
		Date:       time.Now(),
		Subtotal:   dec("100000"),
		Total:      dec("100000"),
	})
	require.NoError(t, err)
	assert.Len(t, req.Entries, 2)
}

func TestBuilderSupportDocument(t *testing.T) {
	builder := NewBuilder(defaultStubMappings())
	supplier := int64(88)

	req, err := builder.SupportDocument(context.Background(), 1, SupportDocument{
		DocumentID: uuid.New(),
		Number:     "DS-10",
		Date:       time.Now(),
		SupplierID: &supplier,
		Subtotal:   dec("500000"),
		Total:      dec("500000"),
	})
	require.NoError(t, err)

	assert.Equal(t, vouchers.VoucherTypeEgreso, req.Type)
	assert.Equal(t, ModuleSupportDocs, req.SourceModule)
	require.Len(t, req.Entries, 2)
	assert.Equal(t, "513501", req.Entries[0].AccountCode)
	assert.Equal(t, "220505", req.Entries[1].AccountCode)
	debit, credit := entryTotals(req.Entries)
	assert.True(t, debit.Equal(credit))
}

func TestBuilderPayrollReceipt(t *testing.T) {
	builder := NewBuilder(defaultStubMappings())

	req, err := builder.PayrollReceipt(context.Background(), 1, PayrollReceipt{
		DocumentID: uuid.New(),
		Number:     "NOM-2026-07",
		Date:       time.Now(),
		Earnings:   dec("3000000"),
		Deductions: dec("240000"),
		NetPay:     dec("2760000"),
	})
	require.NoError(t, err)

	require.Len(t, req.Entries, 3)
	assert.Equal(t, "510501", req.Entries[0].AccountCode)
	assert.Equal(t, "250501", req.Entries[1].AccountCode)
	assert.Equal(t, "237005", req.Entries[2].AccountCode)
	debit, credit := entryTotals(req.Entries)
	assert.True(t, debit.Equal(credit))
}

func TestBuilderCreditNoteReversesInvoice(t *testing.T) {
	builder := NewBuilder(defaultStubMappings())
	customer := int64(501)

	req, err := builder.CreditNote(context.Background(), 1, CreditNote{
		DocumentID: uuid.New(),
		Number:     "NC-5",
		Date:       time.Now(),
		CustomerID: &customer,
		Subtotal:   dec("100000"),
		Tax:        dec("19000"),
		Total:      dec("119000"),
	})
	require.NoError(t, err)

	assert.Equal(t, vouchers.VoucherTypeAjuste, req.Type)
	require.Len(t, req.Entries, 3)
	// Mirror image of the invoice: revenue and VAT debited, receivable credited.
	assert.True(t, req.Entries[0].Debit.Equal(dec("100000")))
	assert.Equal(t, "413501", req.Entries[0].AccountCode)
	assert.True(t, req.Entries[2].Credit.Equal(dec("119000")))
	assert.Equal(t, "130505", req.Entries[2].AccountCode)
}

func TestBuilderMissingMappingFails(t *testing.T) {
	builder := NewBuilder(&stubMappings{codes: map[string]string{}})

	_, err := builder.Invoice(context.Background(), 1, InvoiceDocument{
		DocumentID: uuid.New(),
		Number:     "FV-1",
		Date:       time.Now(),
		Subtotal:   dec("1"),
		Total:      dec("1"),
	})
	assert.ErrorIs(t, err, shared.ErrMappingNotFound)
}
