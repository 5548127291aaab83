package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"reddit-persona/config"
	"reddit-persona/trace"
)

const (
	headerEventType = "event_type"
	headerRequestID = "request_id"
	flushTimeoutMs  = 5000
)

// KafkaEventBus publishes generation events with an idempotent confluent-kafka producer.
type KafkaEventBus struct {
	producer *kafka.Producer
	brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"client.id":          "reddit-persona",
		"acks":               "all",
		"enable.idempotence": true,
		"message.timeout.ms": 30000,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer (%s): %w", brokers, err)
	}

	// 전달 보고서는 Publish 의 delivery 채널로 받으므로 여기서는 클라이언트 오류만 기록한다.
	go func() {
		for e := range p.Events() {
			if kerr, ok := e.(kafka.Error); ok {
				config.Logger.Errorf("kafka producer error: %v", kerr)
			}
		}
	}()

	return &KafkaEventBus{producer: p, brokers: brokers}, nil
}

func (k *KafkaEventBus) Close() {
	if k.producer == nil {
		return
	}
	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		config.Logger.Warnf("kafka producer closed with %d undelivered events", remaining)
	}
	k.producer.Close()
	config.Logger.Infof("kafka producer for %s closed", k.brokers)
}

// Publish blocks until the broker acknowledges the event or ctx ends.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	msg, err := newMessage(ctx, topic, event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("produce %s to %s: %w", event.Type, topic, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery report for %s: %v", event.ID, ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver %s: %w", event.ID, m.TopicPartition.Error)
		}
		config.DebugWithFields("event delivered", config.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"topic":      topic,
			"partition":  m.TopicPartition.Partition,
			"offset":     m.TopicPartition.Offset.String(),
		})
		return nil
	}
}

// newMessage 는 이벤트를 Kafka 메시지로 바꾼다. Key 가 비어 있으면 이벤트 ID 로 파티셔닝한다.
func newMessage(ctx context.Context, topic string, event Event) (*kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	key := event.Key
	if key == "" {
		key = event.ID
	}

	headers := []kafka.Header{{Key: headerEventType, Value: []byte(event.Type)}}
	if rid := trace.RequestIDFromContext(ctx); rid != "" {
		headers = append(headers, kafka.Header{Key: headerRequestID, Value: []byte(rid)})
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
		Headers:        headers,
		Timestamp:      time.Now().UTC(),
	}, nil
}
