package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionState_String(t *testing.T) {
	tests := []struct {
		state SubscriptionState
		want  string
	}{
		{SubscriptionStateActive, "active"},
		{SubscriptionStateCancelled, "cancelled"},
		{SubscriptionState(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	r := NewRegistry[int]("test")
	sub, err := r.SubscribeFunc(func(int) {})
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "test", sub.Stream())
	assert.True(t, sub.IsActive())

	sub.Cancel()
	sub.Cancel()

	assert.Equal(t, SubscriptionStateCancelled, sub.State())
	assert.Equal(t, 0, r.Len())
}

func TestSubscription_NilCancel(t *testing.T) {
	var sub *Subscription
	assert.NotPanics(t, sub.Cancel)
}

func TestSubscription_UniqueIDs(t *testing.T) {
	r := NewRegistry[int]("test")
	a, _ := r.SubscribeFunc(func(int) {})
	b, _ := r.SubscribeFunc(func(int) {})
	assert.NotEqual(t, a.ID(), b.ID())
}
