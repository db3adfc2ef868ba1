// notify-client sends a signed sample payment notification to a running receiver.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"os"

	"github.com/DIMO-Network/payment-notify/internal/notification"
	"github.com/DIMO-Network/payment-notify/internal/signature"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	target := flag.String("url", "http://localhost:8080/notify", "receiver URL")
	policyName := flag.String("policy", string(signature.PolicyHeaderMD5), "signature policy: header-md5 or properties-sha256")
	secret := flag.String("secret", os.Getenv("PAYMENT_SECRET_KEY"), "shared secret")
	header := flag.String("header", signature.DefaultHeader, "signature header for the header-md5 policy")
	status := flag.String("status", string(notification.StatusCompleted), "payment status to report")
	orderID := flag.String("order-id", "", "gateway order id, random when empty")
	tamper := flag.Bool("tamper", false, "send a wrong signature")
	flag.Parse()

	policy, err := signature.ParsePolicy(*policyName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid policy")
	}
	if *orderID == "" {
		*orderID = uuid.NewString()
	}

	payload := notification.Payload{
		Order: &notification.Order{
			OrderID:      *orderID,
			ExtOrderID:   "ext-" + *orderID,
			CurrencyCode: "PLN",
			TotalAmount:  "1000",
			Status:       *status,
		},
	}
	if policy == signature.PolicyPropertiesSHA256 && *secret != "" {
		hash := signature.DigestSHA256(*orderID, *status, *secret)
		if *tamper {
			hash = signature.DigestSHA256(*orderID, *status, *secret+"x")
		}
		payload.Properties = append(payload.Properties, notification.Property{Name: signature.HashProperty, Value: hash})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to marshal payload")
	}

	agent := fiber.Post(*target).ContentType(fiber.MIMEApplicationJSON).Body(body)
	if policy == signature.PolicyHeaderMD5 {
		signingKey := *secret
		if *tamper {
			signingKey += "x"
		}
		agent.Set(*header, signature.SignHeader(body, signingKey))
	}

	code, resp, errs := agent.Bytes()
	if len(errs) > 0 {
		logger.Fatal().Err(errors.Join(errs...)).Msg("Failed to send notification")
	}
	logger.Info().Int("status", code).Bytes("response", resp).Str("orderId", *orderID).Msg("Notification sent")
}
