package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"reddit-persona/artifact"
	"reddit-persona/cmd/api/dto"
	"reddit-persona/cmd/api/services"
	"reddit-persona/generation"
	"reddit-persona/models"
	"reddit-persona/persona"
	"reddit-persona/repositories"
)

type fakeGenerations struct {
	mu       sync.Mutex
	startErr error
	state    models.GenerationState
	stream   []models.GenerationState
	started  []string
	resets   int
}

func (f *fakeGenerations) Start(handle string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, handle)
	if f.startErr != nil {
		return "", f.startErr
	}
	return "gen-123", nil
}

func (f *fakeGenerations) Reset() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
}

func (f *fakeGenerations) Read() models.GenerationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeGenerations) Subscribe(buffer int) (<-chan models.GenerationState, func()) {
	ch := make(chan models.GenerationState, len(f.stream))
	for _, st := range f.stream {
		ch <- st
	}
	return ch, func() {}
}

func newEngine(gens Generations, svc *services.ArtifactService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generations", StartGenerationHandler(gens))
	r.GET("/generations/progress", GetProgressHandler(gens))
	r.GET("/generations/stream", StreamProgressHandler(gens))
	r.POST("/generations/reset", ResetGenerationHandler(gens))
	if svc != nil {
		r.GET("/artifacts", ListArtifactsHandler(svc))
		r.GET("/artifacts/:id", GetArtifactHandler(svc))
		r.GET("/artifacts/:id/persona", DownloadArtifactHandler(svc, services.FilePersona))
		r.GET("/artifacts/:id/data", DownloadArtifactHandler(svc, services.FileData))
	}
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestStartGenerationHandler(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		startErr   error
		wantStatus int
		wantAccept bool
		wantReason string
	}{
		{
			name:       "accepted",
			body:       `{"username":"spez"}`,
			wantStatus: http.StatusAccepted,
			wantAccept: true,
		},
		{
			name:       "missing username",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "username is required",
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantReason: "username is required",
		},
		{
			name:       "invalid handle",
			body:       `{"username":"bad name!"}`,
			startErr:   generation.ErrInvalidHandle,
			wantStatus: http.StatusBadRequest,
			wantReason: generation.ErrInvalidHandle.Error(),
		},
		{
			name:       "in progress",
			body:       `{"username":"spez"}`,
			startErr:   generation.ErrAlreadyInProgress,
			wantStatus: http.StatusConflict,
			wantReason: generation.ErrAlreadyInProgress.Error(),
		},
		{
			name:       "awaiting reset",
			body:       `{"username":"spez"}`,
			startErr:   generation.ErrAwaitingReset,
			wantStatus: http.StatusConflict,
			wantReason: generation.ErrAwaitingReset.Error(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gens := &fakeGenerations{startErr: tc.startErr}
			rec := doRequest(newEngine(gens, nil), http.MethodPost, "/generations", tc.body)

			require.Equal(t, tc.wantStatus, rec.Code)
			var resp dto.StartGenerationResponseDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantAccept, resp.Accepted)
			assert.Equal(t, tc.wantReason, resp.Reason)
			if tc.wantAccept {
				assert.Equal(t, "gen-123", resp.GenerationID)
			}
		})
	}
}

func TestProgressAndReset(t *testing.T) {
	gens := &fakeGenerations{state: models.GenerationState{
		GenerationID:    "gen-1",
		Username:        "spez",
		Stage:           models.StageFetchingComments,
		Progress:        40,
		OverallProgress: 40,
		Locked:          true,
	}}
	r := newEngine(gens, nil)

	rec := doRequest(r, http.MethodGet, "/generations/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.GenerationState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, models.StageFetchingComments, st.Stage)
	assert.Equal(t, 40, st.OverallProgress)
	assert.True(t, st.Locked)

	rec = doRequest(r, http.MethodPost, "/generations/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, 1, gens.resets)
}

func TestStreamProgressEndsAfterTerminalSnapshot(t *testing.T) {
	gens := &fakeGenerations{stream: []models.GenerationState{
		{Stage: models.StageFetchingPosts, OverallProgress: 10, Locked: true},
		{Stage: models.StageCompleted, OverallProgress: 100, Completed: true, Locked: true},
		{Stage: models.StageIdle},
	}}
	srv := httptest.NewServer(newEngine(gens, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/generations/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "event:progress"))
	assert.Contains(t, string(body), `"stage":"completed"`)
	assert.NotContains(t, string(body), `"stage":"idle"`)
}

func saveArtifact(t *testing.T, store *artifact.Store, username string) artifact.Artifact {
	t.Helper()
	a, err := store.Save(artifact.SaveInput{
		GenerationID: "gen-1",
		Username:     username,
		Records: []models.ActivityRecord{
			{ID: "t3_a", Kind: models.KindPost, Title: "hello", Subreddit: "golang"},
		},
		Persona: persona.Result{Text: "REDDIT USER PERSONA: " + username, Method: persona.MethodTemplated},
		Profile: models.SentimentProfile{Summary: "Balanced", PositivePercent: 60, NegativePercent: 40},
	})
	require.NoError(t, err)
	return a
}

type failingIndex struct{}

func (failingIndex) List(context.Context, repositories.ListArtifactsOptions) ([]models.ArtifactMeta, int64, error) {
	return nil, 0, errors.New("mongo down")
}

func (failingIndex) FindByArtifactID(context.Context, string) (*models.ArtifactMeta, error) {
	return nil, errors.New("mongo down")
}

// recordIndex serves a fixed set of index records.
type recordIndex struct {
	records []models.ArtifactMeta
}

func (x recordIndex) List(_ context.Context, opt repositories.ListArtifactsOptions) ([]models.ArtifactMeta, int64, error) {
	start := min(opt.Skip(), len(x.records))
	end := min(start+opt.PageSize, len(x.records))
	return x.records[start:end], int64(len(x.records)), nil
}

func (x recordIndex) FindByArtifactID(_ context.Context, id string) (*models.ArtifactMeta, error) {
	for _, r := range x.records {
		if r.ArtifactID == id {
			return &r, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func TestArtifactHandlers(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	saved := saveArtifact(t, store, "spez")
	r := newEngine(&fakeGenerations{}, services.NewArtifactService(store, failingIndex{}))

	t.Run("list falls back to directory", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts?username=SPEZ", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list dto.ArtifactListDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Equal(t, "directory", list.Source)
		assert.EqualValues(t, 1, list.Total)
		require.Len(t, list.Data, 1)
		assert.Equal(t, saved.ArtifactID, list.Data[0].ID)
	})

	t.Run("huge page is an empty page", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts?page=461168601842738793&page_size=20", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list dto.ArtifactListDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.EqualValues(t, 1, list.Total)
		assert.Empty(t, list.Data)
	})

	t.Run("list filters other users", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts?username=someone_else", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list dto.ArtifactListDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Empty(t, list.Data)
	})

	t.Run("detail", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts/"+saved.ArtifactID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var detail dto.ArtifactDetailDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Contains(t, detail.Persona, "REDDIT USER PERSONA: spez")
		assert.Equal(t, 60, detail.SentimentData.PositivePercent)
		assert.Nil(t, detail.Meta)
	})

	t.Run("downloads", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts/"+saved.ArtifactID+"/persona", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), saved.PersonaFile)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("Reddit Persona for: spez")))

		rec = doRequest(r, http.MethodGet, "/artifacts/"+saved.ArtifactID+"/data", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), saved.DataFile)
	})

	errorCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "invalid id", path: "/artifacts/not-an-id", wantStatus: http.StatusBadRequest},
		{name: "unknown id", path: "/artifacts/nobody_20200101_000000", wantStatus: http.StatusNotFound},
		{name: "unknown download", path: "/artifacts/nobody_20200101_000000/persona", wantStatus: http.StatusNotFound},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantStatus, rec.Code)
			var body dto.ErrorResponseDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestArtifactHandlersWithIndex(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	saved := saveArtifact(t, store, "spez")
	meta := saved
	meta.MirrorURL = "https://bucket.s3.us-east-1.amazonaws.com/" + saved.PersonaFile
	r := newEngine(&fakeGenerations{}, services.NewArtifactService(store, recordIndex{records: []models.ArtifactMeta{meta}}))

	t.Run("detail carries index record", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/artifacts/"+saved.ArtifactID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var detail dto.ArtifactDetailDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		require.NotNil(t, detail.Meta)
		assert.Equal(t, meta.MirrorURL, detail.Meta.MirrorURL)
	})

	pages := []struct {
		name    string
		query   string
		wantLen int
	}{
		{name: "first page", query: "page=1", wantLen: 1},
		{name: "past the end", query: "page=2", wantLen: 0},
		{name: "overflowing page", query: "page=9223372036854775807&page_size=100", wantLen: 0},
	}
	for _, tc := range pages {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, "/artifacts?"+tc.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var list dto.ArtifactListDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
			assert.Equal(t, "index", list.Source)
			assert.Len(t, list.Data, tc.wantLen)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gens := &fakeGenerations{state: models.GenerationState{Stage: models.StageCompleted, Locked: true}}

	testCases := []struct {
		name       string
		ping       func(context.Context) error
		wantStatus int
		wantMongo  string
	}{
		{name: "no mongo configured", wantStatus: http.StatusOK},
		{name: "mongo up", ping: func(context.Context) error { return nil }, wantStatus: http.StatusOK, wantMongo: "up"},
		{name: "mongo down", ping: func(context.Context) error { return errors.New("no route") }, wantStatus: http.StatusServiceUnavailable, wantMongo: "down"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			HealthHandler(gens, tc.ping)(c)

			require.Equal(t, tc.wantStatus, rec.Code)
			var body dto.HealthDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMongo, body.Mongo)
			assert.Equal(t, "completed", body.GenerationStage)
			assert.True(t, body.GenerationLocked)
		})
	}
}
