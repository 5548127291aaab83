package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/models"
)

func set(stage models.Stage, progress int) func(*models.GenerationState) {
	return func(st *models.GenerationState) {
		st.Stage = stage
		st.Progress = progress
	}
}

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		stage    models.Stage
		progress int
		want     int
	}{
		{models.StageIdle, 50, 0},
		{models.StageInitializing, 100, 5},
		{models.StageFetchingPosts, 0, 5},
		{models.StageFetchingPosts, 50, 17},
		{models.StageFetchingComments, 100, 55},
		{models.StageGeneratingPersona, 50, 80},
		{models.StageFinalizing, 100, 100},
		{models.StageCompleted, 0, 100},
		{models.StageFetchingPosts, 250, 30},
		{models.StageError, 50, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OverallProgress(tt.stage, tt.progress), "%s/%d", tt.stage, tt.progress)
	}
}

func TestStoreIgnoresRegressions(t *testing.T) {
	s := NewStore()
	token, err := s.begin("g", "spez", false)
	require.NoError(t, err)

	require.True(t, s.apply(token, set(models.StageFetchingComments, 40)))
	overall := s.Read().OverallProgress

	s.apply(token, set(models.StageFetchingPosts, 90))
	st := s.Read()
	assert.Equal(t, models.StageFetchingComments, st.Stage)
	assert.Equal(t, 40, st.Progress)
	assert.Equal(t, overall, st.OverallProgress)

	s.apply(token, set(models.StageFetchingComments, 10))
	assert.Equal(t, 40, s.Read().Progress)

	s.apply(token, func(st *models.GenerationState) { st.Stage = models.StageError; st.Locked = false })
	st = s.Read()
	assert.Equal(t, models.StageError, st.Stage)
	assert.Equal(t, overall, st.OverallProgress, "error keeps the last overall value")

	assert.False(t, s.apply(token, set(models.StageCompleted, 100)), "no transitions out of error")
}

func TestStoreDropsStaleToken(t *testing.T) {
	s := NewStore()
	token, err := s.begin("g", "spez", false)
	require.NoError(t, err)

	s.reset()
	assert.False(t, s.alive(token))
	assert.False(t, s.apply(token, set(models.StageFetchingPosts, 10)))
	assert.Equal(t, models.StageIdle, s.Read().Stage)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe(1)

	first := <-ch
	assert.Equal(t, models.StageIdle, first.Stage)

	token, err := s.begin("g", "spez", false)
	require.NoError(t, err)
	s.apply(token, set(models.StageFetchingPosts, 10))
	s.apply(token, set(models.StageFetchingPosts, 60))

	latest := <-ch
	assert.Equal(t, 60, latest.Progress, "a full subscriber keeps the newest snapshot")

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	s.apply(token, set(models.StageFetchingPosts, 70))
}
