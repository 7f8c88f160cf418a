package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ovsidee/UniversityApp/internal/config"
	"github.com/ovsidee/UniversityApp/internal/events"
	"github.com/ovsidee/UniversityApp/internal/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishEncodesEvent", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var got events.Event
			if err := json.Unmarshal(val, &got); err != nil {
				return err
			}
			if got.ID == "" {
				return errors.New("event without id")
			}
			if got.Type != events.TypeStudentEnrolled || got.Key != "3:5" {
				return errors.New("unexpected event " + got.Type + " " + got.Key)
			}
			return nil
		})

		pub := events.NewKafkaPublisherWithProducer(producer, "university-events", logger.Discard())
		event := events.NewEvent(events.TypeStudentEnrolled, "3:5", map[string]int{"student_id": 3, "course_id": 5})

		require.NoError(t, pub.Publish(ctx, event))
		require.NoError(t, pub.Close())
	})

	t.Run("PublishFailure", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		pub := events.NewKafkaPublisherWithProducer(producer, "university-events", logger.Discard())

		err := pub.Publish(ctx, events.NewEvent(events.TypeGradeUpdated, "3:5", nil))
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, pub.Close())
	})
}

func TestNewEvent(t *testing.T) {
	first := events.NewEvent(events.TypeGradeUpdated, "3:5", nil)
	second := events.NewEvent(events.TypeGradeUpdated, "3:5", nil)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID, "each event gets its own id")
	assert.Equal(t, time.UTC, first.OccurredAt.Location())

	raw, err := first.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"`+first.ID+`"`)
}

func TestNew(t *testing.T) {
	t.Run("NoneIsNoop", func(t *testing.T) {
		pub, err := events.New(config.EventsConfig{Driver: "none"}, logger.Discard())
		require.NoError(t, err)
		assert.IsType(t, events.Noop{}, pub)
		assert.NoError(t, pub.Publish(context.Background(), events.NewEvent("x", "y", nil)))
	})

	t.Run("NATSUnreachable", func(t *testing.T) {
		pub, err := events.New(config.EventsConfig{Driver: "nats", NATSURL: "nats://127.0.0.1:1", Subject: "university.events"}, logger.Discard())
		assert.Error(t, err)
		assert.Nil(t, pub)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := events.New(config.EventsConfig{Driver: "carrier-pigeon"}, logger.Discard())
		assert.Error(t, err)
	})
}
