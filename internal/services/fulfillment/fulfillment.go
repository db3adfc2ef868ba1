//go:generate go tool mockgen -source=fulfillment.go -destination=fulfillment_mock_test.go -package=fulfillment
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DIMO-Network/cloudevent"
	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// EventType is the CloudEvent type of published payment notifications.
	EventType = "payment.notification"
	// DataVersion is the CloudEvent data version of PaymentStatusData.
	DataVersion = "payment.notification/v1.0"
)

// Handler reacts to the payment status carried by a verified notification.
type Handler interface {
	HandleStatus(ctx context.Context, ev *notification.Event) error
}

// Publisher sends messages to a topic.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// LogHandler writes one log line per payment status. It keeps no state.
type LogHandler struct{}

// HandleStatus logs the status of ev.
func (LogHandler) HandleStatus(ctx context.Context, ev *notification.Event) error {
	status, ok := ev.Payload.Status()
	if !ok {
		return nil
	}
	orderID, _ := ev.Payload.OrderID()
	logger := zerolog.Ctx(ctx).With().Str("orderId", orderID).Str("paymentStatus", string(status)).Logger()

	switch status {
	case notification.StatusCompleted:
		logger.Info().Msg("Payment completed")
	case notification.StatusWaitingForConfirmation:
		logger.Info().Msg("Payment waiting for confirmation")
	case notification.StatusCanceled:
		logger.Info().Msg("Payment canceled")
	case notification.StatusPending:
		logger.Info().Msg("Payment pending")
	default:
		logger.Warn().Msg("Payment status not recognized")
	}
	return nil
}

// PaymentStatusData is the data section of a published notification.
type PaymentStatusData struct {
	OrderID    string              `json:"orderId"`
	ExtOrderID string              `json:"extOrderId,omitempty"`
	Status     notification.Status `json:"status"`
	Amount     string              `json:"amount,omitempty"`
	Currency   string              `json:"currency,omitempty"`
}

// KafkaHandler forwards verified statuses to a topic as CloudEvents.
type KafkaHandler struct {
	publisher Publisher
	topic     string
	source    string
}

// NewKafkaHandler creates a KafkaHandler publishing to topic. source is the CloudEvent source.
func NewKafkaHandler(publisher Publisher, topic, source string) *KafkaHandler {
	return &KafkaHandler{
		publisher: publisher,
		topic:     topic,
		source:    source,
	}
}

// HandleStatus publishes the status of ev and waits for the broker acknowledgement.
func (k *KafkaHandler) HandleStatus(ctx context.Context, ev *notification.Event) error {
	event, ok := NewPaymentEvent(ev, k.source)
	if !ok {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	msg := message.NewMessage(event.ID, body)
	msg.SetContext(ctx)
	msg.Metadata.Set("ce-type", event.Type)
	if err := k.publisher.Publish(k.topic, msg); err != nil {
		return fmt.Errorf("failed to publish payment event: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("eventId", event.ID).Str("topic", k.topic).Msg("Payment event published")
	return nil
}

// NewPaymentEvent wraps the status of ev in a CloudEvent. It returns false when ev carries no status.
func NewPaymentEvent(ev *notification.Event, source string) (*cloudevent.CloudEvent[PaymentStatusData], bool) {
	status, ok := ev.Payload.Status()
	if !ok {
		return nil, false
	}
	orderID, _ := ev.Payload.OrderID()
	extOrderID, _ := ev.Payload.ExtOrderID()
	amount, _ := ev.Payload.Amount()
	currency, _ := ev.Payload.Currency()
	return &cloudevent.CloudEvent[PaymentStatusData]{
		CloudEventHeader: cloudevent.CloudEventHeader{
			ID:              uuid.New().String(),
			Source:          source,
			Subject:         orderID,
			Time:            ev.ReceivedAt.UTC(),
			DataContentType: "application/json",
			DataVersion:     DataVersion,
			Type:            EventType,
			SpecVersion:     "1.0",
		},
		Data: PaymentStatusData{
			OrderID:    orderID,
			ExtOrderID: extOrderID,
			Status:     status,
			Amount:     amount,
			Currency:   currency,
		},
	}, true
}

// Chain runs handlers in order and stops at the first error.
type Chain []Handler

// HandleStatus calls every handler in the chain.
func (c Chain) HandleStatus(ctx context.Context, ev *notification.Event) error {
	for _, h := range c {
		if err := h.HandleStatus(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
