package integration

import (
	"time"

	"github.com/google/uuid"
)

// Mapping keys resolved against the tenant's account mapping table. Operational
// modules reference concepts, never raw account codes.
const (
	KeyClientes          = "CLIENTES"
	KeyVentas            = "VENTAS"
	KeyIVAGenerado       = "IVA_GENERADO"
	KeyProveedores       = "PROVEEDORES"
	KeyGastoServicios    = "GASTO_SERVICIOS"
	KeyGastoNomina       = "GASTO_NOMINA"
	KeySalariosPorPagar  = "SALARIOS_POR_PAGAR"
	KeyDeduccionesNomina = "DEDUCCIONES_NOMINA"
)

// DefaultMappings is the PUC seed applied to a new tenant. Every code can be
// remapped per tenant afterwards.
var DefaultMappings = map[string]string{
	KeyClientes:          "130505",
	KeyVentas:            "413501",
	KeyIVAGenerado:       "240801",
	KeyProveedores:       "220505",
	KeyGastoServicios:    "513501",
	KeyGastoNomina:       "510501",
	KeySalariosPorPagar:  "250501",
	KeyDeduccionesNomina: "237005",
}

// AccountMapping binds one integration concept to an account code for a tenant.
type AccountMapping struct {
	TenantID    int64
	Key         string
	AccountCode string
	UpdatedAt   time.Time
}

// SourceLink records that a source document already produced a voucher. The
// unique constraint on (tenant, module, document) is what makes RequestVoucher
// at-most-once.
type SourceLink struct {
	ID               int64
	TenantID         int64
	SourceModule     string
	SourceDocumentID uuid.UUID
	VoucherID        int64
	CreatedAt        time.Time
}
