package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToAllHandlersInOrder(t *testing.T) {
	client := NewMockNATSClient()
	defer client.Close()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		err := client.Subscribe(context.Background(), "orders.new", func(ctx context.Context, data []byte) {
			order = append(order, i)
		})
		require.NoError(t, err)
	}

	require.NoError(t, client.Publish(context.Background(), "orders.new", []byte("one")))
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 1, client.GetMessageCount("orders.new"))
}

// A handler may call back into the client while Publish is still on the
// stack; delivery runs outside the lock from a snapshot of the handlers.
func TestHandlerMayPublishReentrantly(t *testing.T) {
	client := NewMockNATSClient()
	defer client.Close()

	err := client.Subscribe(context.Background(), "in", func(ctx context.Context, data []byte) {
		require.NoError(t, client.Publish(ctx, "out", append([]byte("seen:"), data...)))
	})
	require.NoError(t, err)

	require.NoError(t, client.Publish(context.Background(), "in", []byte("payload")))

	got := client.GetMessages("out")
	require.Len(t, got, 1)
	assert.Equal(t, "seen:payload", string(got[0]))
}

func TestHandlerMaySubscribeReentrantly(t *testing.T) {
	client := NewMockNATSClient()
	defer client.Close()

	err := client.Subscribe(context.Background(), "bootstrap", func(ctx context.Context, data []byte) {
		require.NoError(t, client.Subscribe(ctx, "late", func(context.Context, []byte) {}))
	})
	require.NoError(t, err)

	require.NoError(t, client.Publish(context.Background(), "bootstrap", nil))

	client.mu.RLock()
	defer client.mu.RUnlock()
	assert.Len(t, client.handlers["late"], 1)
}

func TestClosedClientRejectsPublishAndSubscribe(t *testing.T) {
	client := NewMockNATSClient()
	require.NoError(t, client.Close())

	assert.Error(t, client.Publish(context.Background(), "x", nil))
	assert.Error(t, client.Subscribe(context.Background(), "x", func(context.Context, []byte) {}))
	assert.Nil(t, client.GetMessages("x"))
}
