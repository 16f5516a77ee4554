package errors

import (
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConnectionFailureUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := &ConnectionFailure{Op: "create", Err: cause}

	assert.True(t, IsConnectionFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create")
	assert.Contains(t, err.Error(), "refused")
}

func TestConnectionFailureWrapped(t *testing.T) {
	err := pkgerrors.Wrap(&ConnectionFailure{Op: "validate"}, "borrow")
	assert.True(t, IsConnectionFailure(err))
}

func TestPoolExhausted(t *testing.T) {
	err := &PoolExhausted{Pool: "documents", MaxSize: 10, Waited: time.Second}

	assert.True(t, IsPoolExhausted(err))
	assert.False(t, IsPoolClosed(err))
	assert.Contains(t, err.Error(), "documents")
	assert.Contains(t, err.Error(), "10")
}

func TestCircuitOpen(t *testing.T) {
	err := &CircuitOpen{Breaker: "kv", Failures: 3, RetryAfter: 5 * time.Second}

	assert.True(t, IsCircuitOpen(err))
	assert.Contains(t, err.Error(), "3 failures")
}

func TestRetryExhaustedUnwrap(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := &RetryExhausted{Attempts: 3, Elapsed: 7 * time.Second, Err: cause}

	assert.True(t, IsRetryExhausted(err))
	assert.ErrorIs(t, err, cause)
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Option: "max_size", Detail: "must be greater than zero"}

	assert.True(t, IsConfiguration(err))
	assert.False(t, IsRetryExhausted(err))
	assert.Contains(t, err.Error(), "max_size")
}
