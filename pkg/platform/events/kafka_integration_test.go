//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"brique/internal/platform/kafka/producer"
	id "brique/pkg/domain"
	"brique/pkg/platform/events"
	"brique/pkg/testutil/containers"
)

type KafkaPublisherIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
	logger   *slog.Logger
}

func TestKafkaPublisherIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherIntegrationSuite))
}

func (s *KafkaPublisherIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.kafka = mgr.GetKafka(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}
	prod, err := producer.New(cfg, s.logger)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *KafkaPublisherIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

// TestEmitDeliversEvent verifies the full path from Emit to a consumable
// record: the event lands on the topic keyed by wallet, JSON-encoded, with
// the event_type header set.
func (s *KafkaPublisherIntegrationSuite) TestEmitDeliversEvent() {
	ctx := context.Background()
	topic := "test-ledger-events"

	err := s.kafka.CreateTopic(ctx, topic, 1, 1)
	s.Require().NoError(err)

	pub := events.NewKafkaPublisher(s.producer, topic, s.logger)

	wallet, err := id.ParseAddress("0x00000000000000000000000000000000000000cc")
	s.Require().NoError(err)

	ev := events.For(events.ActionSharesMinted, wallet)
	ev.AssetID = id.NewAssetID().String()
	ev.Quantity = 7
	s.Require().NoError(pub.Emit(ctx, ev))

	// Close drains the buffer, so delivery has happened by the time it returns.
	pub.Close()

	consumer, err := s.kafka.NewConsumer(ctx, "test-ledger-events-group", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == wallet.Hex()
	})
	s.Require().NotNil(record, "event should be consumable")

	var got events.Event
	s.Require().NoError(json.Unmarshal(record.Value, &got))
	s.Equal(events.ActionSharesMinted, got.Action)
	s.Equal(ev.AssetID, got.AssetID)
	s.Equal(uint64(7), got.Quantity)

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal(string(events.ActionSharesMinted), headers["event_type"])
}

// TestCloseIsIdempotent pins the shutdown contract: a second Close must not
// panic on the already-closed buffer.
func (s *KafkaPublisherIntegrationSuite) TestCloseIsIdempotent() {
	pub := events.NewKafkaPublisher(s.producer, "test-ledger-events-close", s.logger)
	pub.Close()
	pub.Close()
}
