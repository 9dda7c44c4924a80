package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle()
	assert.Equal(t, StatusPending, l.Status)
	assert.Nil(t, l.ConfirmedAt)
	assert.Nil(t, l.CompletedAt)
}

func TestConfirmTwiceKeepsFirstStamp(t *testing.T) {
	l := NewLifecycle()
	require.NoError(t, l.Transition("CONFIRMED", t0))
	require.NoError(t, l.Transition("PENDING", t0.Add(time.Hour)))
	require.NoError(t, l.Transition("CONFIRMED", t0.Add(2*time.Hour)))

	assert.Equal(t, StatusConfirmed, l.Status)
	require.NotNil(t, l.ConfirmedAt)
	assert.True(t, t0.Equal(*l.ConfirmedAt))
}

func TestPendingStraightToCompleted(t *testing.T) {
	l := NewLifecycle()
	require.NoError(t, l.Transition("COMPLETED", t0))

	assert.Equal(t, StatusCompleted, l.Status)
	require.NotNil(t, l.CompletedAt)
	assert.Nil(t, l.ConfirmedAt)
}

func TestFullPath(t *testing.T) {
	l := NewLifecycle()
	for i, s := range []string{"CONFIRMED", "IN_PROGRESS", "COMPLETED"} {
		require.NoError(t, l.Transition(s, t0.Add(time.Duration(i)*time.Hour)))
	}
	assert.True(t, t0.Equal(*l.ConfirmedAt))
	assert.True(t, t0.Add(2*time.Hour).Equal(*l.CompletedAt))
	assert.True(t, l.Status.Terminal())
}

func TestCancelFromAnyState(t *testing.T) {
	for _, from := range []string{"PENDING", "CONFIRMED", "IN_PROGRESS"} {
		l := NewLifecycle()
		require.NoError(t, l.Transition(from, t0))
		require.NoError(t, l.Transition("CANCELLED", t0.Add(time.Minute)))
		assert.Equal(t, StatusCancelled, l.Status)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	l := NewLifecycle()
	require.NoError(t, l.Transition("CONFIRMED", t0))

	err := l.Transition("SHIPPED", t0.Add(time.Hour))
	var invalid ErrInvalidStatus
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "PENDING, CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED")

	assert.Equal(t, StatusConfirmed, l.Status)
	assert.Error(t, l.Transition("confirmed", t0))
}
