package logger

import "strings"

const redactedValue = "***REDACTED***"

// Keys que nunca deben salir en claro (tokens, passwords, headers de auth).
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"credential",
	"bearer",
}

func redact(key string, v any) any {
	keyLower := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if !strings.Contains(keyLower, p) {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			return v
		}
		return redactedValue
	}
	return v
}

// RedactBearer enmascara el valor de un header Authorization dejando el esquema visible.
func RedactBearer(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, _, found := strings.Cut(header, " ")
	if !found {
		return redactedValue
	}
	return scheme + " " + redactedValue
}
