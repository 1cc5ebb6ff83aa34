package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTrackingNumber creates a human-readable in-house tracking number.
// Format: {prefix}-{YYMMDD}-{8charHexUUID}
//
// Example:
//   - Input: prefix="VCE", now=2026-08-24
//   - Output: "VCE-260824-a3f8e2b1"
//
// The date segment lets warehouse staff eyeball parcel age; the UUID suffix
// keeps numbers globally unique without a sequence table.
func GenerateTrackingNumber(prefix string, now time.Time) string {
	return strings.ToUpper(prefix) + "-" + now.Format("060102") + "-" + generateShortUUID()
}

// GenerateOrderNumber creates the customer-facing opaque order number.
// Format: ORD-{YYMMDD}-{8charHexUUID}
func GenerateOrderNumber(now time.Time) string {
	return "ORD-" + now.Format("060102") + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID.
// This provides sufficient uniqueness while keeping IDs compact.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
