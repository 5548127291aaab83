// Package generation runs the single-flight persona pipeline in the background
// and publishes its progress through a snapshot Store.
package generation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reddit-persona/artifact"
	"reddit-persona/config"
	"reddit-persona/eventbus"
	"reddit-persona/events"
	"reddit-persona/fetcher"
	"reddit-persona/lexicon"
	"reddit-persona/models"
	"reddit-persona/persona"
	"reddit-persona/trace"
)

var (
	ErrInvalidHandle     = errors.New("invalid reddit username")
	ErrAlreadyInProgress = errors.New("a generation is already in progress")
	// ErrAwaitingReset 는 완료된 실행이 아직 리셋되지 않은 경우다.
	ErrAwaitingReset = errors.New("previous generation completed; reset before starting a new one")
	ErrNoActivity    = errors.New("no public activity found")
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

const sinkTimeout = 30 * time.Second

// ArtifactIndex records completed generations, e.g. in MongoDB.
type ArtifactIndex interface {
	Save(ctx context.Context, a *models.ArtifactMeta) error
}

// ArtifactMirror copies saved files to remote storage and returns their URL.
type ArtifactMirror interface {
	Upload(ctx context.Context, dir string, a artifact.Artifact) (string, error)
}

type Options struct {
	MaxPosts        int
	MaxComments     int
	AutoAcknowledge bool

	// 아래 싱크는 모두 선택 사항이며 실패해도 실행은 완료로 끝난다.
	Index  ArtifactIndex
	Mirror ArtifactMirror
	Events eventbus.EventBus
	Topic  string
}

type Orchestrator struct {
	store     *Store
	fetcher   fetcher.Fetcher
	synth     *persona.Synthesizer
	artifacts *artifact.Store
	opts      Options

	newID func() string
	wg    sync.WaitGroup
}

func New(store *Store, f fetcher.Fetcher, synth *persona.Synthesizer, artifacts *artifact.Store, opts Options) *Orchestrator {
	if opts.MaxPosts <= 0 {
		opts.MaxPosts = 100
	}
	if opts.MaxComments <= 0 {
		opts.MaxComments = 200
	}
	return &Orchestrator{
		store:     store,
		fetcher:   f,
		synth:     synth,
		artifacts: artifacts,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// NormalizeHandle trims whitespace and an optional "u/" prefix and validates the rest.
func NormalizeHandle(handle string) (string, error) {
	h := strings.TrimSpace(handle)
	h = strings.TrimPrefix(strings.TrimPrefix(h, "/"), "u/")
	if !handlePattern.MatchString(h) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return h, nil
}

// Start admits a new run and returns immediately; the pipeline proceeds on its own goroutine.
func (o *Orchestrator) Start(handle string) (string, error) {
	username, err := NormalizeHandle(handle)
	if err != nil {
		return "", err
	}
	id := o.newID()
	token, err := o.store.begin(id, username, o.opts.AutoAcknowledge)
	if err != nil {
		return "", err
	}

	config.InfoWithFields("generation started", config.Fields{
		"generation_id": id,
		"username":      username,
	})

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(token, id, username)
	}()
	return id, nil
}

// Reset returns the store to idle. A worker still running abandons its run at the next phase boundary.
func (o *Orchestrator) Reset() {
	o.store.reset()
}

func (o *Orchestrator) Read() models.GenerationState {
	return o.store.Read()
}

// Subscribe streams state snapshots; see Store.Subscribe.
func (o *Orchestrator) Subscribe(buffer int) (<-chan models.GenerationState, func()) {
	return o.store.Subscribe(buffer)
}

// Wait blocks until every started worker has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// runner is one pipeline execution bound to token.
type runner struct {
	o        *Orchestrator
	token    uint64
	id       string
	username string
}

func (o *Orchestrator) run(token uint64, id, username string) {
	r := &runner{o: o, token: token, id: id, username: username}
	// 아웃바운드 호출은 generation id 를 request id 로 공유한다.
	ctx := trace.WithRequestID(context.Background(), id)
	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, fmt.Errorf("panic: %v", p))
		}
	}()

	if err := r.execute(ctx); err != nil {
		if errors.Is(err, errAbandoned) {
			config.InfoWithFields("generation abandoned after reset", config.Fields{
				"generation_id": id,
				"username":      username,
			})
			return
		}
		r.fail(ctx, err)
	}
}

var errAbandoned = errors.New("run abandoned")

func (r *runner) update(stage models.Stage, progress int, message string) {
	r.o.store.apply(r.token, func(st *models.GenerationState) {
		st.Stage = stage
		st.Progress = progress
		st.Message = message
	})
}

// checkpoint 는 단계 사이에서만 호출된다. 리셋된 실행은 여기서 중단된다.
func (r *runner) checkpoint() error {
	if !r.o.store.alive(r.token) {
		return errAbandoned
	}
	return nil
}

func (r *runner) execute(ctx context.Context) error {
	r.update(models.StageInitializing, 50, "Preparing to fetch activity for u/"+r.username)
	r.update(models.StageInitializing, 100, "Initialization complete")

	if err := r.checkpoint(); err != nil {
		return err
	}
	posts, err := r.fetch(ctx, models.StageFetchingPosts, models.KindPost, r.o.opts.MaxPosts)
	if err != nil {
		return err
	}

	if err := r.checkpoint(); err != nil {
		return err
	}
	comments, err := r.fetch(ctx, models.StageFetchingComments, models.KindComment, r.o.opts.MaxComments)
	if err != nil {
		return err
	}

	if len(posts)+len(comments) == 0 {
		return ErrNoActivity
	}
	records := append(posts, comments...)

	if err := r.checkpoint(); err != nil {
		return err
	}
	r.update(models.StageAnalyzingSentiment, 0, "Starting sentiment analysis...")
	profile := lexicon.Score(records)
	r.update(models.StageAnalyzingSentiment, 100, "Sentiment analysis complete: "+profile.Summary)

	if err := r.checkpoint(); err != nil {
		return err
	}
	r.update(models.StagePreparingData, 0, "Preparing data for persona generation...")
	in := persona.Input{Username: r.username, Records: records, Profile: profile}
	top := persona.TopSubreddits(records)
	r.update(models.StagePreparingData, 100, fmt.Sprintf("Prepared %d posts and %d comments across %d subreddits",
		len(posts), len(comments), len(top)))

	if err := r.checkpoint(); err != nil {
		return err
	}
	r.update(models.StageGeneratingPersona, 0, "Generating persona...")
	in.Progress = func(p int, msg string) { r.update(models.StageGeneratingPersona, p, msg) }
	result := r.o.synth.Synthesize(ctx, in)
	if result.Note != "" {
		r.update(models.StageGeneratingPersona, 100, "Persona generated with templated fallback ("+result.Note+")")
	}

	if err := r.checkpoint(); err != nil {
		return err
	}
	r.update(models.StageSavingResults, 0, "Saving results...")
	saved, err := r.o.artifacts.Save(artifact.SaveInput{
		GenerationID: r.id,
		Username:     r.username,
		Records:      records,
		Persona:      result,
		Profile:      profile,
	})
	if err != nil {
		return err
	}
	outputFile := filepath.Join(r.o.artifacts.Dir(), saved.PersonaFile)
	r.update(models.StageSavingResults, 100, "Results saved to "+outputFile)

	if err := r.checkpoint(); err != nil {
		return err
	}
	warnings := r.finalize(ctx, &saved)

	message := "Persona generated successfully"
	if result.Method == persona.MethodTemplated && result.Note != "" {
		message += " (templated fallback)"
	}
	if len(warnings) > 0 {
		message += "; " + strings.Join(warnings, "; ")
	}
	ok := r.o.store.apply(r.token, func(st *models.GenerationState) {
		st.Stage = models.StageCompleted
		st.Progress = 100
		st.Message = message
		st.Completed = true
		st.OutputFile = outputFile
		st.ArtifactID = saved.ArtifactID
	})
	if !ok {
		return errAbandoned
	}

	config.InfoWithFields("generation completed", config.Fields{
		"generation_id":  r.id,
		"username":       r.username,
		"artifact_id":    saved.ArtifactID,
		"posts":          len(posts),
		"comments":       len(comments),
		"persona_method": result.Method,
	})
	return nil
}

func (r *runner) fetch(ctx context.Context, stage models.Stage, kind models.ActivityKind, limit int) ([]models.ActivityRecord, error) {
	r.update(stage, 0, fmt.Sprintf("Fetching %ss for u/%s...", kind, r.username))

	var out []models.ActivityRecord
	for rec, err := range r.o.fetcher.Activity(ctx, r.username, kind, limit) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		r.update(stage, len(out)*100/limit, fmt.Sprintf("Fetched %d %ss", len(out), kind))
	}
	r.update(stage, 100, fmt.Sprintf("Fetched %d %ss", len(out), kind))
	return out, nil
}

// finalize runs the optional sinks. Failures are reported as warnings only.
func (r *runner) finalize(ctx context.Context, saved *artifact.Artifact) []string {
	o := r.o
	var warnings []string
	warn := func(what string, err error) {
		warnings = append(warnings, what+" failed")
		config.WarnWithFields("generation sink failed", config.Fields{
			"generation_id": r.id,
			"sink":          what,
			"error":         err.Error(),
		})
	}

	r.update(models.StageFinalizing, 0, "Finalizing...")

	if o.opts.Mirror != nil {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		url, err := o.opts.Mirror.Upload(sctx, o.artifacts.Dir(), *saved)
		cancel()
		if err != nil {
			warn("mirror upload", err)
		} else {
			saved.MirrorURL = url
			r.update(models.StageFinalizing, 40, "Finalizing: artifact mirrored")
		}
	}

	if o.opts.Index != nil {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		err := o.opts.Index.Save(sctx, saved)
		cancel()
		if err != nil {
			warn("index update", err)
		} else {
			r.update(models.StageFinalizing, 70, "Finalizing: artifact indexed")
		}
	}

	if o.opts.Events != nil {
		evt := events.GenerationCompletedEvent{
			BaseEvent:     events.NewBaseEvent(events.GenerationCompleted),
			GenerationID:  r.id,
			Username:      r.username,
			ArtifactID:    saved.ArtifactID,
			PostsCount:    saved.PostsCount,
			CommentsCount: saved.CommentsCount,
			PersonaMethod: saved.PersonaMethod,
			MBTIType:      saved.MBTIType,
			MirrorURL:     saved.MirrorURL,
		}
		if err := r.publish(ctx, evt); err != nil {
			warn("event publish", err)
		}
	}
	r.update(models.StageFinalizing, 100, "Finalization complete")
	return warnings
}

func (r *runner) publish(ctx context.Context, event any) error {
	busEvt, err := events.ToBusEvent(event)
	if err != nil {
		return err
	}
	sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	return r.o.opts.Events.Publish(sctx, r.o.opts.Topic, busEvt)
}

// fail moves the run to the error stage and releases the lock.
// ctx carries the run's request id so the failed event is traced like the completed one.
func (r *runner) fail(ctx context.Context, err error) {
	kind, message := classify(r.username, err)
	ok := r.o.store.apply(r.token, func(st *models.GenerationState) {
		st.Stage = models.StageError
		st.Message = message
		st.Error = message
		st.ErrorKind = kind
		st.Completed = false
		st.Locked = false
	})
	if !ok {
		return
	}

	config.ErrorWithFields("generation failed", config.Fields{
		"generation_id": r.id,
		"username":      r.username,
		"error_kind":    string(kind),
		"error":         err.Error(),
	})

	if r.o.opts.Events != nil {
		evt := events.GenerationFailedEvent{
			BaseEvent:    events.NewBaseEvent(events.GenerationFailed),
			GenerationID: r.id,
			Username:     r.username,
			ErrorKind:    string(kind),
			Error:        message,
		}
		if perr := r.publish(context.WithoutCancel(ctx), evt); perr != nil {
			config.Logger.Warnf("failed to publish generation.failed event: %v", perr)
		}
	}
}

// classify 는 오류를 사용자에게 보여줄 종류와 메시지로 바꾼다.
func classify(username string, err error) (models.ErrorKind, string) {
	switch {
	case errors.Is(err, fetcher.ErrUserNotFound):
		return models.ErrorKindUserNotFound, fmt.Sprintf("user '%s' was not found or is suspended", username)
	case errors.Is(err, fetcher.ErrFetchFailed):
		return models.ErrorKindFetchFailed, "temporary connectivity problem while contacting Reddit; please try again later"
	case errors.Is(err, ErrNoActivity):
		return models.ErrorKindNoActivity, fmt.Sprintf("user '%s' has no public posts or comments to analyze", username)
	case errors.Is(err, artifact.ErrPersistenceFailed):
		return models.ErrorKindPersistenceFailed, "could not save results: " + err.Error()
	default:
		return models.ErrorKindInternal, "internal failure: " + err.Error()
	}
}
