package logging

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const redactedValue = "[REDACTED]"

var (
	bootNonce         = randomNonce()
	sensitiveKeyParts = []string{"password", "token", "authorization", "secret", "cookie"}
	fingerprintKeys   = map[string]struct{}{
		"email":         {},
		"phone":         {},
		"member_id":     {},
		"session_id":    {},
		"first_name":    {},
		"last_name":     {},
		"date_of_birth": {},
		"zip_code":      {},
	}
)

// PrivacyHook rewrites entry fields before they are formatted.
type PrivacyHook struct{}

func NewPrivacyHook() *PrivacyHook { return &PrivacyHook{} }

func (h *PrivacyHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *PrivacyHook) Fire(entry *logrus.Entry) error {
	if len(entry.Data) == 0 {
		return nil
	}
	entry.Data = SanitizeFields(entry.Data)
	return nil
}

// SanitizeFields returns a copy of fields with sensitive values redacted and
// personal values fingerprinted under a "<key>_fp" key.
func SanitizeFields(fields logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for key, value := range fields {
		lower := strings.ToLower(strings.TrimSpace(key))
		switch {
		case lower == logrus.ErrorKey:
			out[key] = value
		case isSensitiveKey(lower):
			out[key] = redactedValue
		case shouldFingerprintKey(lower):
			out[fingerprintKeyName(key)] = Fingerprint(fmt.Sprint(value))
		default:
			out[key] = value
		}
	}
	return out
}

// Fingerprint hashes value with a per-process nonce so the same value can be
// correlated within one run without being recoverable.
func Fingerprint(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(trimmed) + "|" + bootNonce))
	return "fp_" + hex.EncodeToString(sum[:8])
}

func isSensitiveKey(key string) bool {
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func shouldFingerprintKey(key string) bool {
	_, ok := fingerprintKeys[key]
	return ok
}

func fingerprintKeyName(key string) string {
	if strings.HasSuffix(strings.ToLower(key), "_fp") {
		return key
	}
	return key + "_fp"
}

func randomNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback_nonce"
	}
	return hex.EncodeToString(buf)
}
