package shared

import (
	"net/http"
	"strconv"
)

// DefaultTenantID is used when a request carries no tenant header, matching
// single-tenant deployments.
const DefaultTenantID int64 = 1

// TenantFromRequest reads the calling tenant from the X-Tenant-ID header.
func TenantFromRequest(r *http.Request) int64 {
	raw := r.Header.Get("X-Tenant-ID")
	if raw == "" {
		return DefaultTenantID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return DefaultTenantID
	}
	return id
}
