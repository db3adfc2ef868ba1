package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "github.com/DIMO-Network/payment-notify/docs" // Import Swagger docs
	"github.com/DIMO-Network/payment-notify/internal/config"
	"github.com/DIMO-Network/payment-notify/internal/controllers/notify"
	"github.com/DIMO-Network/payment-notify/internal/kafka"
	"github.com/DIMO-Network/payment-notify/internal/metrics"
	"github.com/DIMO-Network/payment-notify/internal/redact"
	"github.com/DIMO-Network/payment-notify/internal/services/forwarder"
	"github.com/DIMO-Network/payment-notify/internal/services/fulfillment"
	"github.com/DIMO-Network/payment-notify/internal/signature"
	"github.com/DIMO-Network/server-garage/pkg/fibercommon"
	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "Internal error"

func CreateServers(ctx context.Context, settings *config.Settings, logger zerolog.Logger) (*fiber.App, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	verifier, err := signature.New(settings.Policy(), settings.PaymentSecretKey, settings.SignatureHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature verifier: %w", err)
	}

	var handoff fulfillment.Chain
	if brokers := settings.BrokerAddresses(); len(brokers) > 0 {
		kafkaHandler, err := startNotificationsPublisher(ctx, logger, settings, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to start notifications publisher: %w", err)
		}
		handoff = append(handoff, kafkaHandler)
	}
	if settings.ForwardURL != "" {
		fwd, err := forwarder.New(nil, settings.ForwardURL, settings.ServiceName, settings.ForwardTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create forwarder: %w", err)
		}
		handoff = append(handoff, fwd)
		logger.Info().Msgf("Forwarding verified notifications to: %s", settings.ForwardURL)
	}

	redactor := redact.New(settings.LogRedact, settings.RedactHeaderNames())
	var handoffHandler notify.StatusHandler
	if len(handoff) > 0 {
		handoffHandler = handoff
	}
	controller := notify.NewNotifyController(verifier, fulfillment.LogHandler{}, handoffHandler, redactor)

	app := CreateFiberApp(logger, controller, settings)
	return app, nil
}

// CreateFiberApp sets up the API routes.
func CreateFiberApp(logger zerolog.Logger, controller *notify.NotifyController, settings *config.Settings) *fiber.App {
	logger.Info().Str("policy", settings.SignaturePolicy).Msg("Starting Payment Notify API...")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
		BodyLimit:             settings.BodyLimit,
		JSONEncoder: func(v any) ([]byte, error) {
			return sonic.Marshal(v)
		},
		JSONDecoder: func(data []byte, v any) error {
			return sonic.Unmarshal(data, v)
		},
	})
	app.Use(recover.New())
	app.Use(fibercommon.ContextLoggerMiddleware)
	app.Use(metrics.FiberMiddleware())

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"data": "Server is up and running",
		})
	})

	logger.Info().Msg("Registering routes...")
	app.Get("/notify", controller.Usage)
	app.Post("/notify", controller.ReceiveNotification)

	return app
}

// startNotificationsPublisher connects to Kafka and returns the handler that forwards verified statuses.
func startNotificationsPublisher(ctx context.Context, logger zerolog.Logger, settings *config.Settings, brokers []string) (*fulfillment.KafkaHandler, error) {
	clusterConfig := sarama.NewConfig()
	clusterConfig.Version = sarama.V2_8_1_0
	clusterConfig.Producer.RequiredAcks = sarama.WaitForAll

	publisher, err := kafka.NewPublisher(&kafka.Config{
		ClusterConfig:   clusterConfig,
		BrokerAddresses: brokers,
	})
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close notifications publisher")
		}
	}()

	logger.Info().Msgf("Notifications publisher started on topic: %s", settings.NotificationsTopic)
	return fulfillment.NewKafkaHandler(publisher, settings.NotificationsTopic, settings.ServiceName), nil
}

// ErrorHandler custom handler to log recovered errors using our logger and return json instead of string
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := internalErrorMessage

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else if richErr, ok := richerrors.AsRichError(err); ok {
		if richErr.ExternalMsg != "" {
			message = richErr.ExternalMsg
		}
		if richErr.Code >= fiber.StatusBadRequest {
			code = richErr.Code
		}
	}

	// log all errors except 404
	if code != fiber.StatusNotFound {
		logger := zerolog.Ctx(ctx.UserContext())
		logger.Err(err).Int("httpStatusCode", code).
			Str("httpPath", strings.TrimPrefix(ctx.Path(), "/")).
			Str("httpMethod", ctx.Method()).
			Msg("caught an error from http request")
	}

	return ctx.Status(code).JSON(errorResp{Error: message})
}

type errorResp struct {
	Error string `json:"error"`
}
