package redaction

import "strings"

const Placeholder = "[REDACTED]"

var (
	// nonSensitiveTokenKeys lists usage/accounting fields that contain the word
	// "token" but are plain counters, not secrets.
	nonSensitiveTokenKeys = map[string]struct{}{
		"tokens":        {},
		"token_count":   {},
		"token_budget":  {},
		"input_tokens":  {},
		"output_tokens": {},
		"max_tokens":    {},
	}

	sensitiveKeyFragments    = []string{"secret", "password", "authorization", "cookie", "credential", "api_key", "apikey"}
	sensitiveValueIndicators = []string{"bearer ", "sk-", "ghp_", "xoxb-", "-----begin", "access_token", "refresh_token"}
)

// IsSensitiveKey reports whether the provided key name likely references sensitive data.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(strings.TrimSpace(key))
	if lowerKey == "" {
		return false
	}

	if _, ok := nonSensitiveTokenKeys[lowerKey]; ok {
		return false
	}

	if lowerKey == "token" || lowerKey == "key" ||
		strings.HasSuffix(lowerKey, "_token") || strings.HasSuffix(lowerKey, "_key") {
		return true
	}

	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lowerKey, fragment) {
			return true
		}
	}
	return false
}

// LooksLikeSecret reports whether the provided value appears to contain secret material.
func LooksLikeSecret(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}

	lowerValue := strings.ToLower(trimmed)
	for _, indicator := range sensitiveValueIndicators {
		if strings.Contains(lowerValue, indicator) {
			return true
		}
	}

	return false
}

// RedactStringValue returns a redacted placeholder if the key or value appear sensitive.
func RedactStringValue(key, value string) string {
	if value == "" {
		return value
	}

	if IsSensitiveKey(key) || LooksLikeSecret(value) {
		return Placeholder
	}

	return value
}

// RedactStringMap clones and redacts the provided map of string key/value pairs.
func RedactStringMap(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}

	sanitized := make(map[string]string, len(values))
	for k, v := range values {
		sanitized[k] = RedactStringValue(k, v)
	}

	return sanitized
}
