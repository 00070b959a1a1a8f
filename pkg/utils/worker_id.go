package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateWorkerID creates a short, human-readable worker ID.
// Format: {profession}-{8charHexUUID}
//
// Example:
//   - Input: profession="Wood Cutter"
//   - Output: "wood-cutter-a3f8e2b1"
//
// The profession part is lower-cased and spaces become hyphens so IDs stay
// safe in URLs, log fields and CLI arguments.
func GenerateWorkerID(profession string) string {
	prefix := normalizePrefix(profession)
	if prefix == "" {
		prefix = "worker"
	}
	return prefix + "-" + generateShortUUID()
}

// normalizePrefix lower-cases s and collapses whitespace and underscores
// into single hyphens
func normalizePrefix(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '_' || r == '\t' || r == '-'
	})
	return strings.Join(fields, "-")
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
