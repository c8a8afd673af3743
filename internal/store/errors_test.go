package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("get cigar: %w", ErrNotFound.WithCause(errors.New("key missing")))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, errors.Is(wrapped, ErrAlreadyExists))
	assert.Equal(t, "get cigar: record not found: key missing", wrapped.Error())
}
