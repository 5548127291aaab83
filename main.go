package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reddit-persona/app"
	"reddit-persona/config"
	"reddit-persona/models"
	"reddit-persona/system"
)

type cliConfig struct {
	ConfigPath string
	SystemInfo bool
	Username   string
}

func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, error) {
	var cfg cliConfig
	fs.StringVar(&cfg.ConfigPath, "config", "", "path to config.yaml (default: search upward from the working directory)")
	fs.BoolVar(&cfg.SystemInfo, "system-info", false, "print host CPU and memory usage and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: reddit-persona [-config path] [-system-info] <username>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if cfg.SystemInfo {
		return cfg, nil
	}
	if fs.NArg() != 1 {
		return cliConfig{}, errors.New("exactly one username is required")
	}
	cfg.Username = fs.Arg(0)
	return cfg, nil
}

func main() {
	cli, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if cli.SystemInfo {
		if err := printSystemInfo(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	if cli.ConfigPath != "" {
		config.SetConfigPath(cli.ConfigPath)
	}
	config.InitApp()
	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	// 시작 전에 구독해야 첫 단계부터 놓치지 않는다.
	updates, cancel := a.Orchestrator.Subscribe(64)
	id, err := a.Orchestrator.Start(cli.Username)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	final, err := watch(ctx, updates, id, os.Stdout)
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	a.Close(closeCtx)
	closeCancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nPersona generation complete! Output saved to: %s\n", final.OutputFile)
}

// watch prints snapshots of generation id until it completes or fails.
func watch(ctx context.Context, updates <-chan models.GenerationState, id string, w io.Writer) (models.GenerationState, error) {
	var last models.GenerationState
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case st, ok := <-updates:
			if !ok {
				return last, errors.New("progress stream closed")
			}
			if st.GenerationID != id {
				continue
			}
			if st.Stage != last.Stage || st.OverallProgress != last.OverallProgress || st.Message != last.Message {
				fmt.Fprintf(w, "[%3d%%] %-20s %s\n", st.OverallProgress, st.Stage, st.Message)
			}
			last = st
			switch st.Stage {
			case models.StageCompleted:
				return st, nil
			case models.StageError:
				return st, errors.New(st.Error)
			}
		}
	}
}

func printSystemInfo(w io.Writer) error {
	info, err := system.Snapshot()
	if err != nil {
		return fmt.Errorf("read system info: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
