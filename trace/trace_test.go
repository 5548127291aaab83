package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanSequence(t *testing.T) {
	ctx := WithRequestID(context.Background(), "gen-42")

	assert.Equal(t, "gen-42", RequestIDFromContext(ctx))
	assert.Equal(t, "0", CurrentSpanID(ctx))

	for _, want := range []string{"1", "2", "3"} {
		rid, span := NextSpanID(ctx)
		assert.Equal(t, "gen-42", rid)
		assert.Equal(t, want, span)
	}
	assert.Equal(t, "3", CurrentSpanID(ctx))
}

func TestWithoutTraceInfo(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Equal(t, "0", CurrentSpanID(ctx))

	rid, span := NextSpanID(ctx)
	assert.NotEmpty(t, rid)
	assert.Equal(t, "1", span)
}
