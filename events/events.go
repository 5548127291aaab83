package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"reddit-persona/eventbus"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	GenerationCompleted EventType = "generation.completed"
	GenerationFailed    EventType = "generation.failed"
)

const (
	sourceName   = "reddit-persona"
	eventVersion = "1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    sourceName,
		Version:   eventVersion,
	}
}

// GenerationCompletedEvent 페르소나 생성 완료 이벤트
type GenerationCompletedEvent struct {
	BaseEvent
	GenerationID  string `json:"generation_id"`
	Username      string `json:"username"`
	ArtifactID    string `json:"artifact_id"`
	PostsCount    int    `json:"posts_count"`
	CommentsCount int    `json:"comments_count"`
	PersonaMethod string `json:"persona_method"`
	MBTIType      string `json:"mbti_type,omitempty"`
	MirrorURL     string `json:"mirror_url,omitempty"`
}

// GenerationFailedEvent 페르소나 생성 실패 이벤트
type GenerationFailedEvent struct {
	BaseEvent
	GenerationID string `json:"generation_id"`
	Username     string `json:"username"`
	ErrorKind    string `json:"error_kind"`
	Error        string `json:"error"`
}

// ToBusEvent 는 이벤트를 eventbus.Event 로 감싼다. 파티션 키는 username 이다.
func ToBusEvent(event any) (eventbus.Event, error) {
	var base BaseEvent
	var key string
	switch e := event.(type) {
	case GenerationCompletedEvent:
		base, key = e.BaseEvent, e.Username
	case GenerationFailedEvent:
		base, key = e.BaseEvent, e.Username
	default:
		return eventbus.Event{}, fmt.Errorf("unknown event type: %T", event)
	}
	evt, err := eventbus.NewJSONEvent(base.ID, string(base.Type), event)
	if err != nil {
		return eventbus.Event{}, err
	}
	evt.Key = key
	return evt, nil
}
