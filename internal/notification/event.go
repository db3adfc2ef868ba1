package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ErrParse marks a body that could not be decoded into a Payload.
var ErrParse = errors.New("notification body could not be parsed")

const formContentType = "application/x-www-form-urlencoded"

// form keys that map onto the order section; everything else becomes a property.
var orderFormKeys = map[string]func(*Order, string){
	"orderId":      func(o *Order, v string) { o.OrderID = v },
	"extOrderId":   func(o *Order, v string) { o.ExtOrderID = v },
	"status":       func(o *Order, v string) { o.Status = v },
	"totalAmount":  func(o *Order, v string) { o.TotalAmount = v },
	"currencyCode": func(o *Order, v string) { o.CurrencyCode = v },
}

// Event is a single inbound notification. It lives for the duration of one request.
type Event struct {
	ReceivedAt  time.Time
	ContentType string
	RawBody     []byte
	// Headers are keyed by lower-case header name.
	Headers map[string]string
	Payload Payload
	// ParsedBody is the body decoded without a schema, echoed back for diagnostics.
	ParsedBody any
	// ParseErr is set when the body could not be decoded. It wraps ErrParse.
	ParseErr error
}

// NewEvent builds an Event and parses its body. Parsing never fails the event;
// on error ParseErr is set and the payload stays empty.
func NewEvent(receivedAt time.Time, contentType string, headers map[string]string, rawBody []byte) *Event {
	ev := &Event{
		ReceivedAt:  receivedAt,
		ContentType: contentType,
		RawBody:     rawBody,
		Headers:     make(map[string]string, len(headers)),
	}
	for k, v := range headers {
		ev.Headers[strings.ToLower(k)] = v
	}
	ev.Payload, ev.ParsedBody, ev.ParseErr = Parse(contentType, rawBody)
	return ev
}

// Header returns the value of the named header, matched case-insensitively.
func (e *Event) Header(name string) (string, bool) {
	v, ok := e.Headers[strings.ToLower(name)]
	return v, ok
}

// Parse decodes a raw body as a form or JSON document depending on contentType.
// The returned parsed value is never nil; it is an empty object when nothing could be decoded.
func Parse(contentType string, rawBody []byte) (Payload, any, error) {
	if isForm(contentType) {
		return parseForm(rawBody)
	}
	return parseJSON(rawBody)
}

func isForm(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == formContentType
}

func parseJSON(rawBody []byte) (Payload, any, error) {
	var payload Payload
	var parsed any
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return payload, map[string]any{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if parsed == nil {
		parsed = map[string]any{}
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return Payload{}, parsed, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return payload, parsed, nil
}

func parseForm(rawBody []byte) (Payload, any, error) {
	values, err := url.ParseQuery(string(bytes.TrimSpace(rawBody)))
	if err != nil {
		return Payload{}, map[string]any{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload Payload
	parsed := make(map[string]any, len(values))
	for _, key := range keys {
		value := values.Get(key)
		parsed[key] = value
		if set, ok := orderFormKeys[key]; ok {
			if payload.Order == nil {
				payload.Order = &Order{}
			}
			set(payload.Order, value)
			continue
		}
		payload.Properties = append(payload.Properties, Property{Name: key, Value: value})
	}
	return payload, parsed, nil
}
