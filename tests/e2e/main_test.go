package e2e_test

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DIMO-Network/payment-notify/internal/config"
	"github.com/rs/zerolog"
)

const testSecret = "e2e-secret"

var (
	testServices        *TestServices
	globalTestContainer sync.Once
	srvcLock            sync.Mutex
)

type TestServices struct {
	Kafka    *kafkaServer
	refs     atomic.Int64
	Settings config.Settings
}

func GetTestServices(t *testing.T) *TestServices {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	srvcLock.Lock()
	globalTestContainer.Do(func() {
		logger := zerolog.New(os.Stdout).Level(zerolog.WarnLevel)
		zerolog.DefaultContextLogger = &logger

		kafka := setupKafkaServer(t)
		testServices = &TestServices{
			Kafka: kafka,
			Settings: config.Settings{
				Port:               8080,
				MonPort:            9090,
				ServiceName:        "payment-notify-e2e",
				PaymentSecretKey:   testSecret,
				KafkaBrokers:       kafka.GetBrokerAddress(t),
				NotificationsTopic: "test.payment.notifications",
			},
		}
	})
	srvcLock.Unlock()
	testServices.TeardownIfLastTest(t)
	return testServices
}

func (tc *TestServices) TeardownIfLastTest(t *testing.T) {
	tc.refs.Add(1)
	t.Cleanup(func() {
		refs := tc.refs.Add(-1)
		if refs != 0 {
			return
		}
		if err := tc.Kafka.Close(); err != nil {
			t.Logf("Error closing Kafka: %v", err)
		}
		// reset the onceSetup to allow the next test to run if this one is closed
		globalTestContainer = sync.Once{}
	})
}
