package accounts

import "time"

// AccountType enumerates CoA classifications following the PUC layout.
type AccountType string

const (
	AccountTypeActivo     AccountType = "ACTIVO"
	AccountTypePasivo     AccountType = "PASIVO"
	AccountTypePatrimonio AccountType = "PATRIMONIO"
	AccountTypeIngreso    AccountType = "INGRESO"
	AccountTypeGasto      AccountType = "GASTO"
	AccountTypeCosto      AccountType = "COSTO"
)

// Nature tells whether an account's normal balance grows with debits or credits.
type Nature string

const (
	NatureDebito  Nature = "DEBITO"
	NatureCredito Nature = "CREDITO"
)

// LeafLevel is the only hierarchy level that accepts postings.
const LeafLevel = 4

// Account models a chart of accounts node. Codes are hierarchical:
// level 1 "1", level 2 "11", level 3 "1105", level 4 "110505".
type Account struct {
	ID                  int64
	TenantID            int64
	Code                string
	Name                string
	Type                AccountType
	Level               int
	ParentCode          *string
	Nature              Nature
	RequiresThirdParty  bool
	RequiresCostCenter  bool
	IsActive            bool
	IsSystem            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LevelForCode derives the hierarchy level from a code's digit count.
// Returns 0 for lengths outside the PUC layout.
func LevelForCode(code string) int {
	switch len(code) {
	case 1:
		return 1
	case 2:
		return 2
	case 4:
		return 3
	case 6:
		return LeafLevel
	default:
		return 0
	}
}

// IsLeaf reports whether the account may receive postings.
func (a Account) IsLeaf() bool {
	return a.Level == LeafLevel
}

// FullName renders "code - name" for display.
func (a Account) FullName() string {
	return a.Code + " - " + a.Name
}
