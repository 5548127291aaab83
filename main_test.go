package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/models"
)

func TestParseFlags(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		want    cliConfig
		wantErr bool
	}{
		{name: "username", args: []string{"spez"}, want: cliConfig{Username: "spez"}},
		{name: "config path", args: []string{"-config", "/etc/rp.yaml", "spez"}, want: cliConfig{ConfigPath: "/etc/rp.yaml", Username: "spez"}},
		{name: "system info needs no username", args: []string{"-system-info"}, want: cliConfig{SystemInfo: true}},
		{name: "missing username", args: nil, wantErr: true},
		{name: "two usernames", args: []string{"a", "b"}, wantErr: true},
		{name: "unknown flag", args: []string{"-web", "spez"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("reddit-persona", flag.ContinueOnError)
			fs.SetOutput(io.Discard)

			got, err := parseFlags(fs, tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWatch(t *testing.T) {
	t.Run("prints until completed", func(t *testing.T) {
		ch := make(chan models.GenerationState, 8)
		ch <- models.IdleState()
		ch <- models.GenerationState{GenerationID: "g1", Stage: models.StageInitializing, OverallProgress: 0, Message: "Initializing"}
		ch <- models.GenerationState{GenerationID: "g1", Stage: models.StageFetchingPosts, OverallProgress: 17, Message: "Fetched 50 posts"}
		ch <- models.GenerationState{GenerationID: "g1", Stage: models.StageCompleted, OverallProgress: 100, Message: "Done", OutputFile: "output/x.txt"}

		var out bytes.Buffer
		final, err := watch(context.Background(), ch, "g1", &out)
		require.NoError(t, err)
		assert.Equal(t, "output/x.txt", final.OutputFile)
		assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte("\n")))
		assert.Contains(t, out.String(), "[ 17%] fetching_posts")
	})

	t.Run("returns the failure message", func(t *testing.T) {
		ch := make(chan models.GenerationState, 2)
		ch <- models.GenerationState{GenerationID: "g1", Stage: models.StageError, Error: "user 'x' was not found or is suspended"}

		_, err := watch(context.Background(), ch, "g1", io.Discard)
		require.EqualError(t, err, "user 'x' was not found or is suspended")
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := watch(ctx, make(chan models.GenerationState), "g1", io.Discard)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
