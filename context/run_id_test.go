package context

import (
	stdctx "context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(stdctx.Background(), "run-123")
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
}

func TestRunIDFromContext_Missing(t *testing.T) {
	assert.Equal(t, "", RunIDFromContext(stdctx.Background()))
}
