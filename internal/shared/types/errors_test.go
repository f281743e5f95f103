package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindUnauthenticated, "gateway.FetchCostAndUsage", errors.New("expired token"))

	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := E(KindInvalidWindow, "gateway.FetchCostAndUsage", errors.New("end before start"))
	wrapped := fmt.Errorf("report: %w", inner)

	assert.Equal(t, KindInvalidWindow, KindOf(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(E(KindUpstreamUnavailable, "op", errors.New("throttled"))))
	assert.False(t, IsRetryable(E(KindUnauthenticated, "op", errors.New("nope"))))
	assert.False(t, IsRetryable(E(KindUnauthorized, "op", errors.New("nope"))))
	assert.False(t, IsRetryable(E(KindInvalidWindow, "op", errors.New("nope"))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestError_Message(t *testing.T) {
	err := &Error{
		Kind:     KindPartialData,
		Op:       "gateway.FetchResourceInventory",
		Sections: []string{"findings:ebs_volume", "findings:elastic_ip"},
		Err:      errors.New("access denied"),
	}

	msg := err.Error()
	assert.Contains(t, msg, "gateway.FetchResourceInventory")
	assert.Contains(t, msg, "partial_data_unavailable")
	assert.Contains(t, msg, "findings:ebs_volume, findings:elastic_ip")
	assert.Contains(t, msg, "access denied")
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := E(KindUpstreamUnavailable, "op", inner)

	assert.True(t, errors.Is(err, inner))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", KindUnauthenticated.String())
	assert.Equal(t, "insufficient_history", KindInsufficientHistory.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
