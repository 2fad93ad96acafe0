package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Keys whose values never belong in a log file. NIK is a national
// identity number; node passwords and bot tokens are credentials.
var sensitiveTokens = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"nik",
}

// SanitizeFields masks the values of secret-bearing fields. The field
// set itself is preserved so log lines stay greppable by key.
func SanitizeFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}

	sanitized := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if isSensitiveKey(field.Key) {
			sanitized = append(sanitized, zap.String(field.Key, "***"))
			continue
		}
		sanitized = append(sanitized, field)
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false
	}

	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	for _, token := range sensitiveTokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}
