package e2e_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type kafkaServer struct {
	container *kafka.KafkaContainer
	consumer  sarama.Consumer
}

func setupKafkaServer(t *testing.T) *kafkaServer {
	t.Helper()

	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("test-cluster"),
	)
	if err != nil {
		t.Fatalf("Failed to start Kafka container: %v", err)
	}

	brokers, err := kafkaContainer.Brokers(ctx)
	if err != nil {
		t.Fatalf("Failed to get Kafka brokers: %v", err)
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_8_1_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumer, err := sarama.NewConsumer(brokers, config)
	if err != nil {
		t.Fatalf("Failed to create consumer: %v", err)
	}

	return &kafkaServer{
		container: kafkaContainer,
		consumer:  consumer,
	}
}

// ReadMessages reads count messages from partition 0 of topic, oldest first.
func (k *kafkaServer) ReadMessages(topic string, count int, timeout time.Duration) ([]*sarama.ConsumerMessage, error) {
	partition, err := k.consumer.ConsumePartition(topic, 0, sarama.OffsetOldest)
	if err != nil {
		return nil, fmt.Errorf("failed to consume topic %s: %w", topic, err)
	}
	defer partition.Close() //nolint:errcheck

	deadline := time.After(timeout)
	messages := make([]*sarama.ConsumerMessage, 0, count)
	for len(messages) < count {
		select {
		case msg := <-partition.Messages():
			messages = append(messages, msg)
		case consumerErr := <-partition.Errors():
			return messages, consumerErr
		case <-deadline:
			return messages, fmt.Errorf("timed out after %s with %d of %d messages", timeout, len(messages), count)
		}
	}
	return messages, nil
}

// GetBrokerAddress returns the first broker address.
func (k *kafkaServer) GetBrokerAddress(t *testing.T) string {
	brokers, err := k.container.Brokers(t.Context())
	if err != nil {
		t.Fatalf("Failed to get Kafka brokers: %v", err)
	}
	if len(brokers) > 0 {
		return brokers[0]
	}
	t.Fatalf("No brokers found")
	return ""
}

// Close closes the consumer and terminates the container.
func (k *kafkaServer) Close() error {
	if k.consumer != nil {
		_ = k.consumer.Close()
	}
	if k.container != nil {
		return k.container.Terminate(context.Background())
	}
	return nil
}
