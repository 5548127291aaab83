package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/eventbus"
)

func TestToBusEvent(t *testing.T) {
	evt := GenerationCompletedEvent{
		BaseEvent:    NewBaseEvent(GenerationCompleted),
		GenerationID: "gen-1",
		Username:     "spez",
		ArtifactID:   "spez_20240101_000000",
	}

	busEvt, err := ToBusEvent(evt)
	require.NoError(t, err)
	assert.Equal(t, evt.ID, busEvt.ID)
	assert.Equal(t, "generation.completed", busEvt.Type)
	assert.Equal(t, "spez", busEvt.Key)

	decoded, err := eventbus.DecodeJSON[GenerationCompletedEvent](busEvt)
	require.NoError(t, err)
	assert.Equal(t, "spez_20240101_000000", decoded.ArtifactID)
	assert.Equal(t, "reddit-persona", decoded.Source)
}

func TestToBusEventRejectsUnknown(t *testing.T) {
	_, err := ToBusEvent(struct{}{})
	assert.Error(t, err)
}
