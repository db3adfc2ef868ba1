//go:generate go tool mockgen -source=notify_controller.go -destination=notify_controller_mock_test.go -package=notify
package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/DIMO-Network/payment-notify/internal/metrics"
	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/DIMO-Network/payment-notify/internal/redact"
	"github.com/DIMO-Network/payment-notify/internal/signature"
	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	receivedMessage       = "Notification received"
	invalidSignatureError = "Invalid signature"
	invalidHashError      = "Unauthorized: Invalid hash"
	internalError         = "Internal error"
)

// StatusHandler acts on the payment status of an accepted notification.
type StatusHandler interface {
	HandleStatus(ctx context.Context, ev *notification.Event) error
}

// NotifyController receives payment gateway notifications.
type NotifyController struct {
	verifier      signature.Verifier
	statusHandler StatusHandler
	handoff       StatusHandler
	redactor      *redact.Redactor
	now           func() time.Time
}

// NewNotifyController creates a new NotifyController.
// statusHandler runs for every accepted notification, including those whose verification was skipped.
// handoff runs only for notifications whose token was compared and matched; it may be nil.
// A nil redactor leaves diagnostics unmasked.
func NewNotifyController(verifier signature.Verifier, statusHandler, handoff StatusHandler, redactor *redact.Redactor) *NotifyController {
	return &NotifyController{
		verifier:      verifier,
		statusHandler: statusHandler,
		handoff:       handoff,
		redactor:      redactor,
		now:           time.Now,
	}
}

// Usage godoc
// @Summary      Describe the notification endpoint
// @Description  Returns how to send a notification and an example payload.
// @Tags         Notifications
// @Produce      json
// @Success      200  {object}  UsageResponse
// @Router       /notify [get]
func (n *NotifyController) Usage(c *fiber.Ctx) error {
	resp := UsageResponse{
		Message:        "Payment notification endpoint",
		Policy:         n.verifier.Policy(),
		ExamplePayload: examplePayload(),
	}
	switch n.verifier.Policy() {
	case signature.PolicyHeaderMD5:
		resp.SignatureHeader = n.signatureHeader()
		resp.Usage = fmt.Sprintf("POST a JSON body with the header %s: signature=<md5(rawBody + secret)>", resp.SignatureHeader)
	default:
		resp.Usage = fmt.Sprintf("POST a JSON or form body; add a %s property holding sha256(orderId + status + secret)", signature.HashProperty)
	}
	return c.JSON(resp)
}

// ReceiveNotification godoc
// @Summary      Receive a payment notification
// @Description  Verifies the authenticity of a gateway notification, logs it and acknowledges it.
// @Description  The response shape depends on the configured signature policy.
// @Tags         Notifications
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        OpenPayu-Signature  header    string  false  "signature=<hex>; used by the header-md5 policy"
// @Param        request             body      notification.Payload  true  "Gateway notification"
// @Success      200                 {object}  NotificationReceivedResponse
// @Success      200                 {object}  HashAcknowledgement
// @Failure      403                 {object}  InvalidSignatureResponse
// @Failure      403                 {object}  InvalidHashResponse
// @Failure      500                 "Internal error"
// @Router       /notify [post]
func (n *NotifyController) ReceiveNotification(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := zerolog.Ctx(ctx)

	ev := notification.NewEvent(n.now().UTC(), string(c.Request().Header.ContentType()), requestHeaders(c), bytes.Clone(c.Request().Body()))
	if ev.ParseErr != nil {
		metrics.ParseErrorsTotal.Inc()
		logger.Warn().Err(ev.ParseErr).Msg("Notification body could not be parsed")
	}

	result := n.verifier.Verify(ev)
	metrics.NotificationsTotal.WithLabelValues(string(result.Policy), result.Outcome()).Inc()
	n.logEvent(logger, ev, result)

	if !result.Passed() {
		return c.Status(fiber.StatusForbidden).JSON(n.rejection(ev, result))
	}

	if err := n.statusHandler.HandleStatus(ctx, ev); err != nil {
		return richerrors.Error{
			ExternalMsg: internalError,
			Err:         fmt.Errorf("failed to handle payment status: %w", err),
			Code:        fiber.StatusInternalServerError,
		}
	}
	if result.Verified && n.handoff != nil {
		if err := n.handoff.HandleStatus(ctx, ev); err != nil {
			return richerrors.Error{
				ExternalMsg: internalError,
				Err:         fmt.Errorf("failed to hand off payment status: %w", err),
				Code:        fiber.StatusInternalServerError,
			}
		}
	} else if _, ok := ev.Payload.Status(); ok && n.handoff != nil {
		logger.Info().Str("outcome", result.Outcome()).Msg("Payment status not handed off, notification is unverified")
	}
	if status, ok := ev.Payload.Status(); ok {
		label := "other"
		if status.Known() {
			label = string(status)
		}
		metrics.PaymentStatusTotal.WithLabelValues(label).Inc()
	}

	return c.JSON(n.acknowledgement(ev, result))
}

func (n *NotifyController) logEvent(logger *zerolog.Logger, ev *notification.Event, result signature.Result) {
	headerValue, headerFound := ev.Header(n.signatureHeader())
	entry := logger.Info()
	if err := result.Err(); err != nil {
		entry = logger.Warn().Err(err)
	}
	entry = entry.Time("receivedAt", ev.ReceivedAt).
		Str("policy", string(result.Policy)).
		Str("outcome", result.Outcome()).
		Bool("verified", result.Verified).
		Str("received", n.redactor.Token(result.Received)).
		Str("expected", n.redactor.Token(result.Expected)).
		Interface("headers", n.redactor.Headers(ev.Headers)).
		Str("rawBody", n.redactor.RawBody(ev.RawBody)).
		Interface("parsedBody", n.redactor.Body(ev.ParsedBody))
	if result.Policy == signature.PolicyHeaderMD5 && headerFound {
		entry = entry.Str("signatureHeader", n.redactor.Token(headerValue))
	}
	entry.Msg("Payment notification received")
}

func (n *NotifyController) acknowledgement(ev *notification.Event, result signature.Result) any {
	orderID, _ := ev.Payload.OrderID()
	extOrderID, _ := ev.Payload.ExtOrderID()
	status, _ := ev.Payload.Status()

	if result.Policy == signature.PolicyHeaderMD5 {
		return NotificationReceivedResponse{
			Message:              receivedMessage,
			SignatureDiagnostics: n.diagnostics(ev, result),
		}
	}
	return HashAcknowledgement{
		Status:              "OK",
		OrderID:             orderID,
		ExtOrderID:          extOrderID,
		PaymentStatus:       string(status),
		Verified:            result.Verified,
		VerificationSkipped: result.Skipped,
		ReceivedAt:          ev.ReceivedAt,
		Policy:              result.Policy,
	}
}

func (n *NotifyController) rejection(ev *notification.Event, result signature.Result) any {
	if result.Policy == signature.PolicyHeaderMD5 {
		return InvalidSignatureResponse{
			Error:                invalidSignatureError,
			SignatureDiagnostics: n.diagnostics(ev, result),
		}
	}
	orderID, _ := ev.Payload.OrderID()
	status, _ := ev.Payload.Status()
	return InvalidHashResponse{
		Error:          invalidHashError,
		OrderID:        orderID,
		PaymentStatus:  string(status),
		ReceivedHash:   n.redactor.Token(result.Received),
		CalculatedHash: n.calculatedToken(result),
		ReceivedAt:     ev.ReceivedAt,
		Policy:         result.Policy,
	}
}

func (n *NotifyController) diagnostics(ev *notification.Event, result signature.Result) SignatureDiagnostics {
	orderID, _ := ev.Payload.OrderID()
	extOrderID, _ := ev.Payload.ExtOrderID()
	status, _ := ev.Payload.Status()

	diag := SignatureDiagnostics{
		ReceivedAt:          ev.ReceivedAt,
		Verified:            result.Verified,
		Policy:              result.Policy,
		CalculatedSignature: n.calculatedToken(result),
		Headers:             n.redactor.Headers(ev.Headers),
		RawBody:             n.redactor.RawBody(ev.RawBody),
		ParsedBody:          n.redactor.Body(ev.ParsedBody),
		OrderID:             orderID,
		ExtOrderID:          extOrderID,
		PaymentStatus:       string(status),
	}
	if headerValue, ok := ev.Header(n.signatureHeader()); ok {
		masked := n.redactor.Token(headerValue)
		diag.SignatureHeader = &masked
	}
	if result.ReceivedFound {
		received := n.redactor.Token(result.Received)
		diag.Signature = &received
	}
	return diag
}

// calculatedToken is the expected token as echoed to the caller.
// Rejections always mask it; the log still carries it.
func (n *NotifyController) calculatedToken(result signature.Result) string {
	if !result.Passed() && result.Expected != "" {
		return redact.RedactedValue
	}
	return n.redactor.Token(result.Expected)
}

func (n *NotifyController) signatureHeader() string {
	if h, ok := n.verifier.(interface{ Header() string }); ok {
		return h.Header()
	}
	return signature.DefaultHeader
}

func requestHeaders(c *fiber.Ctx) map[string]string {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})
	return headers
}

func examplePayload() notification.Payload {
	return notification.Payload{
		Order: &notification.Order{
			OrderID:      "WZHF5FFDRJ140731GUEST000P01",
			ExtOrderID:   "order-1234",
			CurrencyCode: "PLN",
			TotalAmount:  "1000",
			Status:       string(notification.StatusCompleted),
		},
		Properties: []notification.Property{
			{Name: signature.HashProperty, Value: "<sha256(orderId + status + secret)>"},
		},
	}
}
