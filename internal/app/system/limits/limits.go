// internal/app/system/limits/limits.go
package limits

// Request body and field size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size accepted for JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxGroupNameLen is the maximum length of a group name after
	// sanitization, in runes.
	MaxGroupNameLen = 80

	// MaxGroupDescriptionLen is the maximum length of a group description
	// after sanitization, in runes.
	MaxGroupDescriptionLen = 2000

	// MaxNotificationPageSize caps the limit parameter on notification
	// listings.
	MaxNotificationPageSize = 100
)
