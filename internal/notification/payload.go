package notification

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Status is the payment status reported by the gateway.
type Status string

const (
	StatusPending                Status = "PENDING"
	StatusWaitingForConfirmation Status = "WAITING_FOR_CONFIRMATION"
	StatusCompleted              Status = "COMPLETED"
	StatusCanceled               Status = "CANCELED"
)

// Known reports whether s is one of the statuses the gateway documents.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusWaitingForConfirmation, StatusCompleted, StatusCanceled:
		return true
	default:
		return false
	}
}

// Property is a free-form name/value pair attached to a notification.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Order is the order section of a notification. Every field is optional.
type Order struct {
	OrderID         string `json:"orderId,omitempty"`
	ExtOrderID      string `json:"extOrderId,omitempty"`
	OrderCreateDate string `json:"orderCreateDate,omitempty"`
	NotifyURL       string `json:"notifyUrl,omitempty"`
	CustomerIP      string `json:"customerIp,omitempty"`
	MerchantPosID   string `json:"merchantPosId,omitempty"`
	Description     string `json:"description,omitempty"`
	CurrencyCode    string `json:"currencyCode,omitempty"`
	TotalAmount     string `json:"totalAmount,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Payload is the parsed notification body.
// Use the accessor methods instead of reading fields directly; they report presence.
type Payload struct {
	Order                *Order     `json:"order,omitempty"`
	LocalReceiptDateTime string     `json:"localReceiptDateTime,omitempty"`
	Properties           []Property `json:"properties,omitempty"`
}

// OrderID returns the gateway order id.
func (p Payload) OrderID() (string, bool) {
	if p.Order == nil {
		return "", false
	}
	return present(p.Order.OrderID)
}

// ExtOrderID returns the merchant's own order id.
func (p Payload) ExtOrderID() (string, bool) {
	if p.Order == nil {
		return "", false
	}
	return present(p.Order.ExtOrderID)
}

// Status returns the payment status.
func (p Payload) Status() (Status, bool) {
	if p.Order == nil {
		return "", false
	}
	s, ok := present(p.Order.Status)
	return Status(s), ok
}

// Amount returns the order total in minor units, as sent.
func (p Payload) Amount() (string, bool) {
	if p.Order == nil {
		return "", false
	}
	return present(p.Order.TotalAmount)
}

// Currency returns the ISO currency code.
func (p Payload) Currency() (string, bool) {
	if p.Order == nil {
		return "", false
	}
	return present(p.Order.CurrencyCode)
}

// Property returns the value of the first property with the given name.
func (p Payload) Property(name string) (string, bool) {
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// orderFields sets Order fields by their JSON name.
var orderFields = map[string]func(*Order, string){
	"orderId":         func(o *Order, v string) { o.OrderID = v },
	"extOrderId":      func(o *Order, v string) { o.ExtOrderID = v },
	"orderCreateDate": func(o *Order, v string) { o.OrderCreateDate = v },
	"notifyUrl":       func(o *Order, v string) { o.NotifyURL = v },
	"customerIp":      func(o *Order, v string) { o.CustomerIP = v },
	"merchantPosId":   func(o *Order, v string) { o.MerchantPosID = v },
	"description":     func(o *Order, v string) { o.Description = v },
	"currencyCode":    func(o *Order, v string) { o.CurrencyCode = v },
	"totalAmount":     func(o *Order, v string) { o.TotalAmount = v },
	"status":          func(o *Order, v string) { o.Status = v },
}

// UnmarshalJSON decodes a notification section by section. A section of the
// wrong shape is dropped on its own so the rest of the body survives.
// Only a body that is not a JSON object is an error.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Payload{}
	if raw, ok := fields["order"]; ok && isObject(raw) {
		var order Order
		if err := json.Unmarshal(raw, &order); err == nil {
			p.Order = &order
		}
	}
	p.LocalReceiptDateTime = scalarString(fields["localReceiptDateTime"])

	var props []json.RawMessage
	if err := json.Unmarshal(fields["properties"], &props); err != nil {
		return nil
	}
	for _, raw := range props {
		if !isObject(raw) {
			continue
		}
		var prop Property
		if err := json.Unmarshal(raw, &prop); err == nil {
			p.Properties = append(p.Properties, prop)
		}
	}
	return nil
}

// UnmarshalJSON accepts any scalar for each order field.
func (o *Order) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*o = Order{}
	for name, raw := range fields {
		if set, ok := orderFields[name]; ok {
			set(o, scalarString(raw))
		}
	}
	return nil
}

// UnmarshalJSON accepts any scalar for the name and value, so {"value":151471228} reads as "151471228".
func (p *Property) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  json.RawMessage `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Name = scalarString(raw.Name)
	p.Value = scalarString(raw.Value)
	return nil
}

// scalarString returns a JSON string unquoted, null or absent as "", and any other value as its compact JSON text.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func present(v string) (string, bool) {
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
