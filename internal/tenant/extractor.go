package tenant

import "strings"

// HeaderName is the request header carrying a tenant id.
const HeaderName = "X-Tenant-ID"

// ExtractID trims raw and treats an empty result as "absent". An absent
// tenant id means the request runs under the default context.
func ExtractID(raw string) string {
	return strings.TrimSpace(raw)
}
