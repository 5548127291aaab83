// Package eventbus publishes generation lifecycle events to Kafka.
package eventbus

import (
	"context"
	"encoding/json"
)

// Topic 은 발행 대상 토픽 이름이다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// Event is the JSON envelope written as the message value.
// Key selects the partition; events for one user share a key so they stay ordered.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Key     string          `json:"-"`
	Payload json.RawMessage `json:"payload"`
}

type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}
