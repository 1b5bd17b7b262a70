//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "storefront/pkg/domain"
	audit "storefront/pkg/platform/audit"
	"storefront/pkg/platform/audit/store/kafka"
	"storefront/pkg/testutil/containers"
)

type KafkaStoreSuite struct {
	suite.Suite
	broker *containers.RedpandaContainer
	store  *kafka.Store
	topic  string
}

func TestKafkaStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaStoreSuite))
}

func (s *KafkaStoreSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T())
	s.topic = "storefront.audit." + uuid.NewString()

	store, err := kafka.New([]string{s.broker.Broker}, s.topic)
	s.Require().NoError(err)
	s.store = store
	s.Require().NoError(s.store.EnsureTopic(context.Background(), 1, 1))
}

func (s *KafkaStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *KafkaStoreSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID := id.UserID(uuid.New())
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    string(audit.EventOrderPlaced),
		UserID:    userID,
		Subject:   "order-1",
	}))

	// Creating the topic twice is not an error.
	s.Require().NoError(s.store.EnsureTopic(ctx, 1, 1))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker.Broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	var got []audit.Event
	fetches.EachRecord(func(r *kgo.Record) {
		var e audit.Event
		s.Require().NoError(json.Unmarshal(r.Value, &e))
		got = append(got, e)
	})
	s.Require().Len(got, 1)
	s.Equal(userID, got[0].UserID)
	s.Equal(string(audit.EventOrderPlaced), got[0].Action)
}
