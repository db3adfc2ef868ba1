package signature

import (
	"strings"

	"github.com/DIMO-Network/payment-notify/internal/notification"
)

// HeaderMD5 implements the header-md5 policy.
type HeaderMD5 struct {
	secret string
	header string
}

// NewHeaderMD5 creates a HeaderMD5 verifier. An empty header selects DefaultHeader.
func NewHeaderMD5(secret, header string) *HeaderMD5 {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderMD5{secret: secret, header: header}
}

// Policy returns PolicyHeaderMD5.
func (v *HeaderMD5) Policy() Policy { return PolicyHeaderMD5 }

// Header returns the name of the header the signature is read from.
func (v *HeaderMD5) Header() string { return v.header }

// Verify computes md5(rawBody + secret) and compares it with the signature in the header.
func (v *HeaderMD5) Verify(ev *notification.Event) Result {
	headerValue, _ := ev.Header(v.header)
	received, found := ExtractSignature(headerValue)
	expected := DigestMD5(ev.RawBody, v.secret)
	return Result{
		Policy:        PolicyHeaderMD5,
		Verified:      found && equal(received, expected),
		Expected:      expected,
		Received:      received,
		ReceivedFound: found,
	}
}

// PropertiesSHA256 implements the properties-sha256 policy.
type PropertiesSHA256 struct {
	secret string
}

// NewPropertiesSHA256 creates a PropertiesSHA256 verifier. An empty secret disables verification.
func NewPropertiesSHA256(secret string) *PropertiesSHA256 {
	return &PropertiesSHA256{secret: secret}
}

// Policy returns PolicyPropertiesSHA256.
func (v *PropertiesSHA256) Policy() Policy { return PolicyPropertiesSHA256 }

// Verify computes sha256(orderId + status + secret) and compares it with the HASH property.
func (v *PropertiesSHA256) Verify(ev *notification.Event) Result {
	received, found := ev.Payload.Property(HashProperty)
	if found && received == "" {
		found = false
	}
	if v.secret == "" || !found {
		return Result{
			Policy:        PolicyPropertiesSHA256,
			Skipped:       true,
			Received:      received,
			ReceivedFound: found,
		}
	}

	orderID, _ := ev.Payload.OrderID()
	status, _ := ev.Payload.Status()
	expected := DigestSHA256(orderID, string(status), v.secret)
	return Result{
		Policy:        PolicyPropertiesSHA256,
		Verified:      equal(received, expected),
		Expected:      expected,
		Received:      received,
		ReceivedFound: true,
	}
}
