package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/artifact"
	"reddit-persona/eventbus"
	"reddit-persona/fetcher"
	"reddit-persona/models"
	"reddit-persona/persona"
	"reddit-persona/trace"
)

type fakeFetcher struct {
	posts    []models.ActivityRecord
	comments []models.ActivityRecord
	err      error
	// gate 가 nil 이 아니면 게시글 수집이 닫힐 때까지 멈춘다.
	gate chan struct{}
}

func (f *fakeFetcher) Activity(_ context.Context, _ string, kind models.ActivityKind, limit int) iter.Seq2[models.ActivityRecord, error] {
	return func(yield func(models.ActivityRecord, error) bool) {
		if kind == models.KindPost && f.gate != nil {
			<-f.gate
		}
		if f.err != nil {
			yield(models.ActivityRecord{}, f.err)
			return
		}
		src := f.posts
		if kind == models.KindComment {
			src = f.comments
		}
		for i, r := range src {
			if i >= limit {
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func fixedComments() []models.ActivityRecord {
	return []models.ActivityRecord{
		{ID: "t1_a", Kind: models.KindComment, Subreddit: "golang", Body: "This library is great, really."},
		{ID: "t1_b", Kind: models.KindComment, Subreddit: "golang", Body: "I enjoy writing Go on weekends."},
		{ID: "t1_c", Kind: models.KindComment, Subreddit: "rust", Body: "The compile times are terrible today."},
	}
}

func newTestOrchestrator(t *testing.T, f fetcher.Fetcher, opts Options) *Orchestrator {
	t.Helper()
	o := New(NewStore(), f, persona.NewSynthesizer(nil, time.Second, 4000), artifact.NewStore(t.TempDir()), opts)
	t.Cleanup(o.Wait)
	return o
}

func TestResetReturnsIdle(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, o *Orchestrator)
	}{
		{name: "fresh", setup: func(t *testing.T, o *Orchestrator) {}},
		{name: "after completed run", setup: func(t *testing.T, o *Orchestrator) {
			_, err := o.Start("spez")
			require.NoError(t, err)
			o.Wait()
			require.Equal(t, models.StageCompleted, o.Read().Stage)
		}},
		{name: "after failed run", setup: func(t *testing.T, o *Orchestrator) {
			o.fetcher = &fakeFetcher{err: fetcher.ErrUserNotFound}
			_, err := o.Start("spez")
			require.NoError(t, err)
			o.Wait()
			require.Equal(t, models.StageError, o.Read().Stage)
		}},
		{name: "twice", setup: func(t *testing.T, o *Orchestrator) { o.Reset() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{})
			tt.setup(t, o)

			o.Reset()
			st := o.Read()
			assert.Equal(t, models.StageIdle, st.Stage)
			assert.False(t, st.Locked)
			assert.False(t, st.Completed)
			assert.Empty(t, st.Error)
			assert.Empty(t, st.ErrorKind)
			assert.Zero(t, st.OverallProgress)
		})
	}
}

func TestStartRejectedWhileInProgress(t *testing.T) {
	gate := make(chan struct{})
	o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments(), gate: gate}, Options{})

	_, err := o.Start("spez")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return o.Read().Stage == models.StageFetchingPosts
	}, time.Second, time.Millisecond)

	before := o.Read()
	require.True(t, before.Locked)

	_, err = o.Start("someone_else")
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
	assert.Equal(t, before, o.Read())

	close(gate)
	o.Wait()
	assert.Equal(t, models.StageCompleted, o.Read().Stage)
}

func TestFullRunCompletes(t *testing.T) {
	o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{})

	id, err := o.Start("u/spez")
	require.NoError(t, err)
	o.Wait()

	st := o.Read()
	assert.Equal(t, id, st.GenerationID)
	assert.Equal(t, "spez", st.Username)
	assert.Equal(t, models.StageCompleted, st.Stage)
	assert.True(t, st.Completed)
	assert.True(t, st.Locked, "lock is kept until reset")
	assert.Equal(t, 100, st.Progress)
	assert.Equal(t, 100, st.OverallProgress)
	require.NotEmpty(t, st.OutputFile)
	assert.FileExists(t, st.OutputFile)

	_, doc, err := o.artifacts.Get(st.ArtifactID)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SentimentData.PositiveCount)
	assert.Equal(t, 1, doc.SentimentData.NegativeCount)
	assert.Equal(t, 67, doc.SentimentData.PositivePercent)
	assert.Equal(t, 33, doc.SentimentData.NegativePercent)
	assert.Len(t, doc.Comments, 3)
	assert.Equal(t, persona.MethodTemplated, doc.PersonaMethod)

	raw, err := os.ReadFile(filepath.Join(o.artifacts.Dir(), filepath.Base(st.OutputFile)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "REDDIT USER PERSONA: spez")
}

func TestStartAfterCompletion(t *testing.T) {
	t.Run("awaits reset", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{})
		_, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		before := o.Read()
		_, err = o.Start("spez")
		assert.ErrorIs(t, err, ErrAwaitingReset)
		assert.Equal(t, before, o.Read())

		o.Reset()
		_, err = o.Start("spez")
		assert.NoError(t, err)
	})

	t.Run("auto acknowledge", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{AutoAcknowledge: true})
		first, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		second, err := o.Start("spez")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestStartRejectsInvalidHandles(t *testing.T) {
	o := newTestOrchestrator(t, &fakeFetcher{}, Options{})
	for _, h := range []string{"", "   ", "bad name", "../etc", "a/b", strings.Repeat("x", 51)} {
		_, err := o.Start(h)
		assert.ErrorIs(t, err, ErrInvalidHandle, "handle %q", h)
	}
	assert.Equal(t, models.IdleState(), o.Read())
}

type brokenGenerator struct {
	err    error
	panics string
}

func (g brokenGenerator) Name() string { return "broken:test" }

func (g brokenGenerator) Generate(context.Context, string) (string, error) {
	if g.panics != "" {
		panic(g.panics)
	}
	return "", g.err
}

func TestGeneratorFailureFallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name string
		gen  brokenGenerator
		note string
	}{
		{name: "error", gen: brokenGenerator{err: errors.New("quota exceeded")}, note: "quota exceeded"},
		{name: "panic", gen: brokenGenerator{panics: "model crashed"}, note: "model crashed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{})
			o.synth = persona.NewSynthesizer(tt.gen, time.Second, 4000)

			_, err := o.Start("spez")
			require.NoError(t, err)
			o.Wait()

			st := o.Read()
			require.Equal(t, models.StageCompleted, st.Stage, st.Error)
			assert.True(t, st.Completed)
			assert.Empty(t, st.Error)
			assert.Equal(t, "Persona generated successfully (templated fallback)", st.Message)

			_, doc, err := o.artifacts.Get(st.ArtifactID)
			require.NoError(t, err)
			assert.Equal(t, persona.MethodTemplated, doc.PersonaMethod)
			assert.Contains(t, doc.PersonaNote, tt.note)
		})
	}
}

func TestFailures(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	tests := []struct {
		name     string
		fetcher  *fakeFetcher
		outDir   string
		kind     models.ErrorKind
		contains string
	}{
		{
			name:     "user not found",
			fetcher:  &fakeFetcher{err: fmt.Errorf("listing: %w", fetcher.ErrUserNotFound)},
			kind:     models.ErrorKindUserNotFound,
			contains: "user 'spez' was not found",
		},
		{
			name:     "fetch failed",
			fetcher:  &fakeFetcher{err: fmt.Errorf("%w: %w", fetcher.ErrFetchFailed, fetcher.ErrRateLimited)},
			kind:     models.ErrorKindFetchFailed,
			contains: "try again later",
		},
		{
			name:     "no activity",
			fetcher:  &fakeFetcher{},
			kind:     models.ErrorKindNoActivity,
			contains: "no public posts or comments",
		},
		{
			name:     "persistence failed",
			fetcher:  &fakeFetcher{comments: fixedComments()},
			outDir:   filepath.Join(blocker, "out"),
			kind:     models.ErrorKindPersistenceFailed,
			contains: "could not save results",
		},
		{
			name:     "unexpected error",
			fetcher:  &fakeFetcher{err: errors.New("boom")},
			kind:     models.ErrorKindInternal,
			contains: "internal failure: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(t, tt.fetcher, Options{})
			if tt.outDir != "" {
				o.artifacts = artifact.NewStore(tt.outDir)
			}

			_, err := o.Start("spez")
			require.NoError(t, err)
			o.Wait()

			st := o.Read()
			assert.Equal(t, models.StageError, st.Stage)
			assert.Equal(t, tt.kind, st.ErrorKind)
			assert.Contains(t, st.Error, tt.contains)
			assert.False(t, st.Locked, "errored run releases the lock")
			assert.False(t, st.Completed)

			o.fetcher = &fakeFetcher{comments: fixedComments()}
			o.artifacts = artifact.NewStore(t.TempDir())
			_, err = o.Start("spez")
			assert.NoError(t, err, "retry is admitted immediately")
		})
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	var posts []models.ActivityRecord
	for i := 0; i < 40; i++ {
		posts = append(posts, models.ActivityRecord{Kind: models.KindPost, Subreddit: "golang", Title: "a good post"})
	}
	o := newTestOrchestrator(t, &fakeFetcher{posts: posts, comments: fixedComments()}, Options{MaxPosts: 40})

	ch, cancel := o.Subscribe(4096)
	defer cancel()

	_, err := o.Start("spez")
	require.NoError(t, err)
	o.Wait()

	last := -1
	var stages []models.Stage
	for {
		var st models.GenerationState
		select {
		case st = <-ch:
		case <-time.After(time.Second):
			t.Fatal("did not observe completion")
		}
		assert.GreaterOrEqual(t, st.OverallProgress, last)
		assert.LessOrEqual(t, st.OverallProgress, 100)
		last = st.OverallProgress
		if len(stages) == 0 || stages[len(stages)-1] != st.Stage {
			stages = append(stages, st.Stage)
		}
		if st.Stage == models.StageCompleted {
			break
		}
	}
	assert.Equal(t, []models.Stage{
		models.StageIdle,
		models.StageInitializing,
		models.StageFetchingPosts,
		models.StageFetchingComments,
		models.StageAnalyzingSentiment,
		models.StagePreparingData,
		models.StageGeneratingPersona,
		models.StageSavingResults,
		models.StageFinalizing,
		models.StageCompleted,
	}, stages)
}

func TestResetDuringRunDropsStaleWorker(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeFetcher{comments: fixedComments(), gate: gate}
	o := newTestOrchestrator(t, f, Options{})

	_, err := o.Start("spez")
	require.NoError(t, err)

	o.Reset()
	close(gate)
	o.Wait()

	st := o.Read()
	assert.Equal(t, models.StageIdle, st.Stage)
	assert.False(t, st.Locked)
	assert.Empty(t, st.OutputFile)

	entries, err := os.ReadDir(o.artifacts.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "stale worker stops at the next phase boundary")
}

type fakeIndex struct {
	saved []models.ArtifactMeta
}

func (f *fakeIndex) Save(_ context.Context, a *models.ArtifactMeta) error {
	f.saved = append(f.saved, *a)
	return nil
}

type fakeMirror struct{ err error }

func (f fakeMirror) Upload(_ context.Context, _ string, a artifact.Artifact) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://example.test/" + a.PersonaFile, nil
}

type fakeBus struct {
	mu         sync.Mutex
	topics     []string
	events     []eventbus.Event
	requestIDs []string
}

func (b *fakeBus) Publish(ctx context.Context, topic string, e eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.events = append(b.events, e)
	b.requestIDs = append(b.requestIDs, trace.RequestIDFromContext(ctx))
	return nil
}

func (b *fakeBus) Close() {}

func TestFinalizingSinks(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		idx, bus := &fakeIndex{}, &fakeBus{}
		o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{
			Index: idx, Mirror: fakeMirror{}, Events: bus, Topic: "persona.generation",
		})
		_, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		st := o.Read()
		assert.Equal(t, models.StageCompleted, st.Stage)
		assert.Equal(t, "Persona generated successfully", st.Message)

		require.Len(t, idx.saved, 1)
		assert.Equal(t, st.ArtifactID, idx.saved[0].ArtifactID)
		assert.Contains(t, idx.saved[0].MirrorURL, "https://example.test/")

		require.Len(t, bus.events, 1)
		assert.Equal(t, "persona.generation", bus.topics[0])
		assert.Equal(t, "generation.completed", bus.events[0].Type)
		assert.Equal(t, st.GenerationID, bus.requestIDs[0])
	})

	t.Run("no sinks configured", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{})
		ch, cancel := o.Subscribe(4096)
		defer cancel()

		_, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		for st := range drain(ch) {
			assert.NotContains(t, st.Message, "mirrored")
			assert.NotContains(t, st.Message, "indexed")
		}
		assert.Equal(t, models.StageCompleted, o.Read().Stage)
	})

	t.Run("mirror failure is not terminal", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeFetcher{comments: fixedComments()}, Options{
			Mirror: fakeMirror{err: errors.New("access denied")},
		})
		_, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		st := o.Read()
		assert.Equal(t, models.StageCompleted, st.Stage)
		assert.Contains(t, st.Message, "mirror upload failed")
		assert.Empty(t, st.Error)
	})

	t.Run("failure event", func(t *testing.T) {
		bus := &fakeBus{}
		o := newTestOrchestrator(t, &fakeFetcher{err: fetcher.ErrUserNotFound}, Options{Events: bus, Topic: "t"})
		id, err := o.Start("spez")
		require.NoError(t, err)
		o.Wait()

		require.Len(t, bus.events, 1)
		assert.Equal(t, "generation.failed", bus.events[0].Type)
		assert.Equal(t, id, bus.requestIDs[0], "failed event keeps the run's request id")
		var payload map[string]any
		require.NoError(t, json.Unmarshal(bus.events[0].Payload, &payload))
		assert.Equal(t, "user_not_found", payload["error_kind"])
	})
}

// drain yields the snapshots already buffered in ch.
func drain(ch <-chan models.GenerationState) iter.Seq[models.GenerationState] {
	return func(yield func(models.GenerationState) bool) {
		for {
			select {
			case st := <-ch:
				if !yield(st) {
					return
				}
			default:
				return
			}
		}
	}
}
