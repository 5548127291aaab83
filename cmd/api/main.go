package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"reddit-persona/app"
	"reddit-persona/cmd/api/router"
	"reddit-persona/cmd/api/services"
	"reddit-persona/config"
	"reddit-persona/db"
	_ "reddit-persona/docs" // swag will generate this package
)

// @title           Reddit Persona API
// @version         1.0
// @description     Builds user personas from public Reddit activity
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to build application: %v", err)
		os.Exit(1)
	}

	deps := router.Deps{Generations: a.Orchestrator}
	if a.Index != nil {
		deps.Artifacts = services.NewArtifactService(a.Artifacts, a.Index)
		deps.MongoPing = db.Ping
	} else {
		deps.Artifacts = services.NewArtifactService(a.Artifacts, nil)
	}
	r := router.New(deps)

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Span-Id"},
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Logger.Infof("api listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("api server error: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("api shutdown error: %v", err)
	}
	a.Close(shutdownCtx)

	config.Logger.Info("api server stopped")
}
