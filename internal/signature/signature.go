// Package signature verifies that a payment notification was sent by the gateway.
//
// Two policies exist and a deployment picks exactly one of them:
//
//   - header-md5: md5(rawBody + secret), compared with the signature=<hex> entry of a request header.
//   - properties-sha256: sha256(orderId + status + secret), compared with the HASH property of the payload.
//     Verification is skipped when the secret or the HASH property is missing.
//
// Verification never returns an error. Callers inspect the Result.
package signature

import (
	"crypto/md5" //nolint:gosec // the gateway contract mandates md5
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/DIMO-Network/payment-notify/internal/notification"
)

// Policy names a verification algorithm.
type Policy string

const (
	PolicyHeaderMD5        Policy = "header-md5"
	PolicyPropertiesSHA256 Policy = "properties-sha256"
)

const (
	// DefaultHeader is the header that carries the signature under the header-md5 policy.
	DefaultHeader = "OpenPayu-Signature"
	// HashProperty is the payload property that carries the hash under the properties-sha256 policy.
	HashProperty = "HASH"
)

// ErrMismatch is returned by Result.Err when the received token does not match.
var ErrMismatch = errors.New("signature mismatch")

// The key must start a word, so "nosignature=abc" carries no signature.
var signaturePattern = regexp.MustCompile(`(?i)\bsignature=([a-f0-9]+);?`)

// Result is the outcome of a verification.
type Result struct {
	Policy Policy
	// Verified is true only when a received token was compared and matched.
	Verified bool
	// Skipped is true when the policy allows the check to be bypassed.
	Skipped bool
	// Expected is the token computed locally. Empty when skipped.
	Expected string
	// Received is the token supplied by the caller, if any.
	Received string
	// ReceivedFound reports whether a token could be extracted at all.
	ReceivedFound bool
}

// Passed reports whether the notification should be acknowledged.
func (r Result) Passed() bool {
	return r.Verified || r.Skipped
}

// Err returns nil when the notification passed, otherwise an error wrapping ErrMismatch.
func (r Result) Err() error {
	if r.Passed() {
		return nil
	}
	if !r.ReceivedFound {
		return fmt.Errorf("%w: no token received under policy %s", ErrMismatch, r.Policy)
	}
	return fmt.Errorf("%w: policy %s", ErrMismatch, r.Policy)
}

// Outcome is a short label for the result, suitable for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Verified:
		return "verified"
	case r.Skipped:
		return "skipped"
	default:
		return "rejected"
	}
}

// Verifier checks the authenticity of a notification.
type Verifier interface {
	Policy() Policy
	Verify(ev *notification.Event) Result
}

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyHeaderMD5, PolicyPropertiesSHA256:
		return p, nil
	default:
		return "", fmt.Errorf("unknown signature policy %q", s)
	}
}

// New builds the Verifier for policy with the secret injected.
func New(policy Policy, secret, header string) (Verifier, error) {
	switch policy {
	case PolicyHeaderMD5:
		if secret == "" {
			return nil, fmt.Errorf("signature policy %s requires a secret", policy)
		}
		return NewHeaderMD5(secret, header), nil
	case PolicyPropertiesSHA256:
		return NewPropertiesSHA256(secret), nil
	default:
		return nil, fmt.Errorf("unknown signature policy %q", policy)
	}
}

// ExtractSignature returns the hex value of the signature=<hex> entry in a header value.
func ExtractSignature(header string) (string, bool) {
	match := signaturePattern.FindStringSubmatch(header)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DigestMD5 returns hex(md5(body + secret)).
func DigestMD5(body []byte, secret string) string {
	h := md5.New() //nolint:gosec
	h.Write(body)
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// DigestSHA256 returns hex(sha256(orderID + status + secret)).
func DigestSHA256(orderID, status, secret string) string {
	sum := sha256.Sum256([]byte(orderID + status + secret))
	return hex.EncodeToString(sum[:])
}

// SignHeader builds a header value the way the gateway does for the header-md5 policy.
func SignHeader(body []byte, secret string) string {
	return "sender=checkout;signature=" + DigestMD5(body, secret) + ";algorithm=MD5;content=DOCUMENT"
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
