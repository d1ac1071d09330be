package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "round-42")
	assert.Equal(t, "round-42", TraceIDFromContext(ctx))
}

// Контекст без идентификатора отдает пустую строку, а не панику
func TestTraceIDFromContext_MissingValueIsEmpty(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
}
