package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wm_kafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

type Config struct {
	ClusterConfig   *sarama.Config
	BrokerAddresses []string
}

// Publisher sends messages synchronously; Publish returns once the broker has acknowledged.
type Publisher struct {
	publisher *wm_kafka.Publisher
}

func NewPublisher(cfg *Config) (*Publisher, error) {
	saramaPublisherConfig := wm_kafka.DefaultSaramaSyncPublisherConfig()
	if cfg.ClusterConfig != nil {
		saramaPublisherConfig.Version = cfg.ClusterConfig.Version
		saramaPublisherConfig.Producer.RequiredAcks = cfg.ClusterConfig.Producer.RequiredAcks
	}

	publisher, err := wm_kafka.NewPublisher(
		wm_kafka.PublisherConfig{
			Brokers:               cfg.BrokerAddresses,
			Marshaler:             wm_kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaPublisherConfig,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &Publisher{publisher: publisher}, nil
}

// Publish sends messages to topic.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	if err := p.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
