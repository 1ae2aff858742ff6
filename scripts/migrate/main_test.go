package main

import (
	"regexp"
	"strings"
	"testing"
)

var spacesRE = regexp.MustCompile(`\s+`)

func entryTableDDL(t *testing.T) string {
	t.Helper()
	for _, stmt := range statements {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS voucher_entries") {
			return spacesRE.ReplaceAllString(stmt, " ")
		}
	}
	t.Fatal("voucher_entries DDL missing")
	return ""
}

// Entry carries third-party and cost-center references as *int64, and the
// repository binds them directly, so the columns must be BIGINT.
func TestEntryReferenceColumnsAreBigint(t *testing.T) {
	ddl := entryTableDDL(t)

	if !strings.Contains(ddl, "third_party_id BIGINT") {
		t.Fatalf("third_party_id must be BIGINT, got:\n%s", ddl)
	}
	if !strings.Contains(ddl, "cost_center_id BIGINT") {
		t.Fatalf("cost_center_id must be BIGINT, got:\n%s", ddl)
	}
}

func TestEntryAmountColumnsAreNumeric(t *testing.T) {
	ddl := entryTableDDL(t)

	for _, col := range []string{"debit_amount", "credit_amount", "base_value", "tax_value"} {
		if !strings.Contains(ddl, col+" NUMERIC(18,2)") {
			t.Fatalf("%s must be NUMERIC(18,2), got:\n%s", col, ddl)
		}
	}
}
