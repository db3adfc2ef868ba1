package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/DIMO-Network/payment-notify/internal/services/fulfillment"
	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/rs/zerolog"
)

const (
	// ForwardFailureCode is the code carried by errors caused by the downstream endpoint.
	ForwardFailureCode = -1

	defaultForwardTimeout = 10 * time.Second
	// Maximum response body size to read for error logging
	maxResponseBodySize = 1024
	userAgent           = "payment-notify/1.0"
)

// Forwarder posts verified payment statuses to a downstream fulfillment endpoint.
type Forwarder struct {
	client    *http.Client
	targetURL string
	source    string
}

// New creates a Forwarder. A nil client gets a default one with timeout.
func New(client *http.Client, targetURL, source string, timeout time.Duration) (*Forwarder, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid forward URL %q", targetURL)
	}
	if timeout <= 0 {
		timeout = defaultForwardTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Forwarder{
		client:    client,
		targetURL: targetURL,
		source:    source,
	}, nil
}

// HandleStatus sends the status of ev as a CloudEvent. Notifications without a status are ignored.
func (f *Forwarder) HandleStatus(ctx context.Context, ev *notification.Event) error {
	event, ok := fulfillment.NewPaymentEvent(ev, f.source)
	if !ok {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.targetURL, bytes.NewReader(body))
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return richerrors.Error{
				Code: ForwardFailureCode,
				Err:  fmt.Errorf("invalid URL: %w", err),
			}
		}
		return fmt.Errorf("failed to create forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/cloudevents+json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Ce-Id", event.ID)
	req.Header.Set("Ce-Type", event.Type)

	resp, err := f.client.Do(req)
	if err != nil {
		return richerrors.Error{
			Code: ForwardFailureCode,
			Err:  fmt.Errorf("failed to POST payment event: %w", err),
		}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		return richerrors.Error{
			Code: ForwardFailureCode,
			Err:  fmt.Errorf("forward endpoint returned status code %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	zerolog.Ctx(ctx).Debug().Str("eventId", event.ID).Int("statusCode", resp.StatusCode).Msg("Payment event forwarded")
	return nil
}
