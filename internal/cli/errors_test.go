package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupError(t *testing.T) {
	err := setupError("load environment: %v", errors.New("bad port"))
	require.NotNil(t, err)

	assert.Equal(t, ExitSetup, err.Code)
	assert.Equal(t, "load environment: bad port", err.Error())
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ExitError{Code: ExitPartialFailure, Err: fmt.Errorf("run batch: %w", inner)}

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitPartialFailure, exitErr.Code)
	assert.True(t, errors.Is(err, inner))
}
