package utils

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrNonRetryable_Error(t *testing.T) {
	assert.Equal(t, "non retryable error: olia", NewErrNonRetryable(errors.New("olia")).Error())
}

func TestErrNonRetryable_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(NewErrNonRetryable(io.EOF), io.EOF))
	var errTest *ErrNonRetryable
	assert.True(t, errors.As(NewErrNonRetryable(io.EOF), &errTest))
}
