package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/DIMO-Network/cloudevent"
	"github.com/DIMO-Network/payment-notify/internal/app"
	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/DIMO-Network/payment-notify/internal/services/fulfillment"
	"github.com/DIMO-Network/payment-notify/internal/signature"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyFlow(t *testing.T) {
	t.Parallel()
	tc := GetTestServices(t)

	settings := tc.Settings
	fiberApp, err := app.CreateServers(t.Context(), &settings, zerolog.New(os.Stdout))
	require.NoError(t, err)

	t.Log("Step 1: rejected notification is not published")
	rejected := notificationBody(t, "rejected-order", notification.StatusCompleted)
	code := postNotification(t, fiberApp, rejected, "signature=deadbeef;")
	require.Equal(t, fiber.StatusForbidden, code)

	t.Log("Step 2: notification without a status is acknowledged and not published")
	noStatus := []byte(`{"a":1}`)
	code = postNotification(t, fiberApp, noStatus, signature.SignHeader(noStatus, testSecret))
	require.Equal(t, fiber.StatusOK, code)

	t.Log("Step 3: verified notification is published")
	accepted := notificationBody(t, "accepted-order", notification.StatusCompleted)
	code = postNotification(t, fiberApp, accepted, signature.SignHeader(accepted, testSecret))
	require.Equal(t, fiber.StatusOK, code)

	messages, err := tc.Kafka.ReadMessages(settings.NotificationsTopic, 1, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	var event cloudevent.CloudEvent[fulfillment.PaymentStatusData]
	require.NoError(t, json.Unmarshal(messages[0].Value, &event))
	assert.Equal(t, fulfillment.EventType, event.Type)
	assert.Equal(t, settings.ServiceName, event.Source)
	assert.Equal(t, "accepted-order", event.Subject)
	assert.Equal(t, notification.StatusCompleted, event.Data.Status)
	assert.Equal(t, "PLN", event.Data.Currency)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	tc := GetTestServices(t)

	settings := tc.Settings
	fiberApp, err := app.CreateServers(t.Context(), &settings, zerolog.Nop())
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "/health", nil)
	require.NoError(t, err)
	resp, err := fiberApp.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func notificationBody(t *testing.T, orderID string, status notification.Status) []byte {
	t.Helper()
	body, err := json.Marshal(notification.Payload{
		Order: &notification.Order{
			OrderID:      orderID,
			ExtOrderID:   "ext-" + orderID,
			CurrencyCode: "PLN",
			TotalAmount:  "1000",
			Status:       string(status),
		},
	})
	require.NoError(t, err)
	return body
}

func postNotification(t *testing.T, fiberApp *fiber.App, body []byte, signatureHeader string) int {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, "/notify", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signature.DefaultHeader, signatureHeader)

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Log(string(raw))
	}
	return resp.StatusCode
}
