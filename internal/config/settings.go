package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DIMO-Network/payment-notify/internal/signature"
)

const (
	defaultBodyLimit          = 1 << 20
	defaultNotificationsTopic = "topic.payment.notifications"
	defaultServiceName        = "payment-notify"
)

// Settings contains the application config
type Settings struct {
	Port        int    `env:"PORT"`
	MonPort     int    `env:"MON_PORT"`
	EnablePprof bool   `env:"ENABLE_PPROF"`
	LogLevel    string `env:"LOG_LEVEL"`
	ServiceName string `env:"SERVICE_NAME"`

	// PaymentSecretKey is the key shared with the payment gateway.
	PaymentSecretKey string `env:"PAYMENT_SECRET_KEY"`
	// SignaturePolicy is header-md5 or properties-sha256.
	SignaturePolicy string `env:"SIGNATURE_POLICY"`
	// SignatureHeader overrides the header read by the header-md5 policy.
	SignatureHeader string `env:"SIGNATURE_HEADER"`
	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int `env:"BODY_LIMIT"`

	// LogRedact masks sensitive values in notification logs and diagnostic responses.
	LogRedact bool `env:"LOG_REDACT"`
	// RedactHeaders is a comma separated list of extra header names to mask.
	RedactHeaders string `env:"REDACT_HEADERS"`

	// KafkaBrokers enables publishing of verified notifications when set.
	KafkaBrokers       string `env:"KAFKA_BROKERS"`
	NotificationsTopic string `env:"NOTIFICATIONS_TOPIC"`

	// ForwardURL enables forwarding of verified notifications over HTTP when set.
	ForwardURL     string        `env:"FORWARD_URL"`
	ForwardTimeout time.Duration `env:"FORWARD_TIMEOUT"`
}

// Validate applies defaults and checks that the verification settings are usable.
func (s *Settings) Validate() error {
	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}
	if s.BodyLimit <= 0 {
		s.BodyLimit = defaultBodyLimit
	}
	if s.NotificationsTopic == "" {
		s.NotificationsTopic = defaultNotificationsTopic
	}
	if s.SignaturePolicy == "" {
		s.SignaturePolicy = string(signature.PolicyHeaderMD5)
	}

	policy, err := signature.ParsePolicy(s.SignaturePolicy)
	if err != nil {
		return err
	}
	s.SignaturePolicy = string(policy)
	if policy == signature.PolicyHeaderMD5 && s.PaymentSecretKey == "" {
		return errors.New("PAYMENT_SECRET_KEY is required for the header-md5 signature policy")
	}
	if s.Port != 0 && s.Port == s.MonPort {
		return fmt.Errorf("PORT and MON_PORT must differ, both are %d", s.Port)
	}
	return nil
}

// Policy returns the configured signature policy. Call Validate first.
func (s *Settings) Policy() signature.Policy {
	return signature.Policy(s.SignaturePolicy)
}

// BrokerAddresses splits KafkaBrokers. It returns nil when publishing is disabled.
func (s *Settings) BrokerAddresses() []string {
	return splitList(s.KafkaBrokers)
}

// RedactHeaderNames splits RedactHeaders.
func (s *Settings) RedactHeaderNames() []string {
	return splitList(s.RedactHeaders)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
