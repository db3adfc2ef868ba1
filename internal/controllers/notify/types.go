package notify

import (
	"time"

	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/DIMO-Network/payment-notify/internal/signature"
)

// SignatureDiagnostics is the header-md5 verification echo shared by the
// acknowledgement and the rejection.
type SignatureDiagnostics struct {
	// ReceivedAt is the time the notification reached the receiver.
	ReceivedAt time.Time `json:"receivedAt"`
	// Verified is true when the signature matched.
	Verified bool             `json:"verified"`
	Policy   signature.Policy `json:"policy"`
	// SignatureHeader is the raw value of the signature header, null when absent.
	SignatureHeader *string `json:"signatureHeader"`
	// Signature is the token extracted from the header, null when none matched.
	Signature *string `json:"signature"`
	// CalculatedSignature is md5(rawBody + secret).
	CalculatedSignature string            `json:"calculatedSignature"`
	Headers             map[string]string `json:"headers"`
	RawBody             string            `json:"rawBody"`
	// ParsedBody is the decoded body, an empty object when the body is not valid JSON.
	ParsedBody    any    `json:"parsedBody"`
	OrderID       string `json:"orderId,omitempty"`
	ExtOrderID    string `json:"extOrderId,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
}

// NotificationReceivedResponse acknowledges a notification under the header-md5 policy.
type NotificationReceivedResponse struct {
	Message string `json:"message"`
	SignatureDiagnostics
}

// InvalidSignatureResponse rejects a notification under the header-md5 policy.
type InvalidSignatureResponse struct {
	Error string `json:"error"`
	SignatureDiagnostics
}

// HashAcknowledgement acknowledges a notification under the properties-sha256 policy.
type HashAcknowledgement struct {
	Status        string `json:"status"`
	OrderID       string `json:"orderId,omitempty"`
	ExtOrderID    string `json:"extOrderId,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	// Verified is true only when a HASH property was present and matched.
	Verified bool `json:"verified"`
	// VerificationSkipped is true when no secret is configured or no HASH was sent.
	VerificationSkipped bool             `json:"verificationSkipped"`
	ReceivedAt          time.Time        `json:"receivedAt"`
	Policy              signature.Policy `json:"policy"`
}

// InvalidHashResponse rejects a notification under the properties-sha256 policy.
type InvalidHashResponse struct {
	Error          string           `json:"error"`
	OrderID        string           `json:"orderId,omitempty"`
	PaymentStatus  string           `json:"paymentStatus,omitempty"`
	ReceivedHash   string           `json:"receivedHash"`
	CalculatedHash string           `json:"calculatedHash"`
	ReceivedAt     time.Time        `json:"receivedAt"`
	Policy         signature.Policy `json:"policy"`
}

// UsageResponse describes how to call the endpoint.
type UsageResponse struct {
	Message         string               `json:"message"`
	Usage           string               `json:"usage"`
	Policy          signature.Policy     `json:"policy"`
	SignatureHeader string               `json:"signatureHeader,omitempty"`
	ExamplePayload  notification.Payload `json:"examplePayload"`
}
