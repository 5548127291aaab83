package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/trace"
)

func TestRequestTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seenID, seenBody string
	r := gin.New()
	r.Use(RequestTrace())
	r.POST("/echo", func(c *gin.Context) {
		seenID = trace.RequestIDFromContext(c.Request.Context())
		b, _ := io.ReadAll(c.Request.Body)
		seenBody = string(b)
		c.Status(http.StatusNoContent)
	})

	t.Run("keeps incoming request id and body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"username":"spez"}`))
		req.Header.Set(headerRequestID, "req-abc")
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "req-abc", seenID)
		assert.Equal(t, `{"username":"spez"}`, seenBody)
		assert.Equal(t, "req-abc", rec.Header().Get(headerRequestID))
		assert.Equal(t, "0", rec.Header().Get(headerSpanID))
	})

	t.Run("generates a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", nil))

		assert.NotEmpty(t, rec.Header().Get(headerRequestID))
		assert.Equal(t, rec.Header().Get(headerRequestID), seenID)
	})
}
