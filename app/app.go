// Package app wires the persona pipeline from configuration. Both the HTTP
// server and the command-line tool build their orchestrator through Build.
package app

import (
	"context"
	"fmt"

	"reddit-persona/artifact"
	"reddit-persona/config"
	"reddit-persona/db"
	"reddit-persona/eventbus"
	"reddit-persona/fetcher"
	"reddit-persona/generation"
	"reddit-persona/persona"
	"reddit-persona/repositories"
)

type App struct {
	Orchestrator *generation.Orchestrator
	Artifacts    *artifact.Store
	// Index 는 Mongo 가 설정된 경우에만 채워진다.
	Index *repositories.ArtifactRepository

	bus *eventbus.KafkaEventBus
}

// Build creates the orchestrator and every optional sink the configuration enables.
// Optional sinks that fail to initialize are logged and left out.
func Build(ctx context.Context, cfg config.AppConfig) (*App, error) {
	// MongoDB 초기화 (uri 가 비어 있으면 비활성)
	if err := db.Init(ctx, cfg.Mongo); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB, artifact index disabled: %v", err)
	}

	gen, err := persona.NewGenerator(ctx, cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	if gen == nil {
		config.Logger.Info("no text generator configured, personas use the templated summary")
	} else {
		config.Logger.Infof("persona generator: %s", gen.Name())
	}
	synth := persona.NewSynthesizer(gen, cfg.Generator.Timeout, cfg.Generator.MaxPromptChars)

	a := &App{Artifacts: artifact.NewStore(cfg.Output.Dir)}
	opts := generation.Options{
		MaxPosts:        cfg.Reddit.MaxPosts,
		MaxComments:     cfg.Reddit.MaxComments,
		AutoAcknowledge: cfg.Generation.AutoAcknowledge,
	}

	if d := db.Database(); d != nil {
		a.Index = repositories.NewArtifactRepository(d)
		opts.Index = a.Index
	}

	if cfg.S3.Bucket != "" {
		mirror, err := artifact.NewS3Mirror(ctx, cfg.S3)
		if err != nil {
			config.Logger.Errorf("failed to initialize S3 mirror: %v", err)
		} else {
			opts.Mirror = mirror
		}
	}

	// EventBus 초기화 및 토픽 보장
	if brokers := cfg.Kafka.BootstrapServers; brokers != "" {
		topic := eventbus.NewTopic(cfg.Kafka.Topic)
		if err := eventbus.EnsureTopic(brokers, topic, 1); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topic: %v", err)
		}
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			config.Logger.Errorf("failed to create event bus: %v", err)
		} else {
			a.bus = bus
			opts.Events = bus
			opts.Topic = topic.Base()
		}
	}

	store := generation.NewStore()
	a.Orchestrator = generation.New(store, fetcher.New(cfg.Reddit), synth, a.Artifacts, opts)
	return a, nil
}

// Close waits for the running worker until ctx expires, then releases the sinks.
func (a *App) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.Orchestrator.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		config.Logger.Warnf("generation worker still running at shutdown: %v", ctx.Err())
	}

	if a.bus != nil {
		a.bus.Close()
	}
	if err := db.Close(ctx); err != nil {
		config.Logger.Warnf("mongo disconnect: %v", err)
	}
}
