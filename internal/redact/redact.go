// Package redact masks sensitive values in notification diagnostics.
package redact

import (
	"fmt"
	"strings"
)

// RedactedValue replaces masked values.
const RedactedValue = "[REDACTED]"

var sensitiveTokens = []string{
	"authorization",
	"cookie",
	"secret",
	"token",
	"password",
	"signature",
	"hash",
	"api_key",
	"apikey",
	"email",
	"phone",
	"card",
}

// Redactor masks sensitive headers, tokens and body fields. A nil or disabled
// Redactor returns every value unchanged.
type Redactor struct {
	enabled bool
	extra   []string
}

// New returns a Redactor. extraHeaders are matched case-insensitively in addition
// to the built-in sensitive keys.
func New(enabled bool, extraHeaders []string) *Redactor {
	extra := make([]string, 0, len(extraHeaders))
	for _, h := range extraHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			extra = append(extra, h)
		}
	}
	return &Redactor{enabled: enabled, extra: extra}
}

// Enabled reports whether values are masked.
func (r *Redactor) Enabled() bool {
	return r != nil && r.enabled
}

// Headers returns a copy of headers with sensitive values masked.
func (r *Redactor) Headers(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if r.Enabled() && r.sensitive(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = v
	}
	return out
}

// Token masks a computed or received authenticity token.
func (r *Redactor) Token(v string) string {
	if !r.Enabled() || v == "" {
		return v
	}
	return RedactedValue
}

// RawBody masks the raw request body, keeping only its size.
func (r *Redactor) RawBody(body []byte) string {
	if !r.Enabled() {
		return string(body)
	}
	return fmt.Sprintf("%s (%d bytes)", RedactedValue, len(body))
}

// Body masks sensitive keys in a decoded JSON document.
func (r *Redactor) Body(v any) any {
	if !r.Enabled() {
		return v
	}
	return r.value(v)
}

func (r *Redactor) value(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			if r.sensitive(key) {
				out[key] = RedactedValue
				continue
			}
			out[key] = r.value(val)
		}
		if name, ok := typed["name"].(string); ok && r.sensitive(name) {
			if _, hasValue := typed["value"]; hasValue {
				out["value"] = RedactedValue
			}
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = r.value(typed[i])
		}
		return out
	default:
		return v
	}
}

func (r *Redactor) sensitive(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	for _, h := range r.extra {
		if key == h {
			return true
		}
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}
