package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSubscriptionAndBroadcast(t *testing.T) {
	h := NewHub()
	a := NewClient(nil, "u-1")
	b := NewClient(nil, "u-2")

	h.addClient(a)
	h.addClient(b)
	h.subscribeToChannel(a, "chat:conversation:c-1")
	h.subscribeToChannel(b, "chat:conversation:c-1")
	h.subscribeToChannel(b, "chat:conversation:c-2")

	assert.Equal(t, 2, h.ClientCount())
	assert.Equal(t, 2, h.SubscriberCount("chat:conversation:c-1"))
	assert.ElementsMatch(t, []string{"chat:conversation:c-1", "chat:conversation:c-2"}, b.Channels())

	h.Broadcast("chat:conversation:c-2", []byte("hello"))

	select {
	case msg := <-b.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("expected a queued message for the subscriber")
	}
	assert.Empty(t, a.Send, "clients off the channel receive nothing")
}

func TestHubBroadcastToUser(t *testing.T) {
	h := NewHub()
	laptop := NewClient(nil, "u-1")
	phone := NewClient(nil, "u-1")
	other := NewClient(nil, "u-2")

	h.addClient(laptop)
	h.addClient(phone)
	h.addClient(other)

	h.BroadcastToUser("u-1", []byte("ping"))

	assert.Len(t, laptop.Send, 1)
	assert.Len(t, phone.Send, 1)
	assert.Empty(t, other.Send)
}

func TestHubRemoveClientCleansChannels(t *testing.T) {
	h := NewHub()
	a := NewClient(nil, "u-1")

	h.addClient(a)
	h.subscribeToChannel(a, "chat:conversation:c-1")
	h.removeClient(a)

	assert.Zero(t, h.ClientCount())
	assert.Zero(t, h.SubscriberCount("chat:conversation:c-1"))
	_, open := <-a.Send
	assert.False(t, open, "send channel closes on removal")
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	a := NewClient(nil, "u-1")

	h.addClient(a)
	h.subscribeToChannel(a, "chat:conversation:c-1")
	h.unsubscribeFromChannel(a, "chat:conversation:c-1")

	assert.Zero(t, h.SubscriberCount("chat:conversation:c-1"))
	assert.Empty(t, a.Channels())
}

func TestHubRunLoop(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := NewClient(nil, "u-1")
	h.Register(a)
	h.Subscribe(a, "chat:conversation:c-1")

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1 && h.SubscriberCount("chat:conversation:c-1") == 1
	}, time.Second, 5*time.Millisecond)

	h.Unregister(a)
	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSendMessageDropsWhenFull(t *testing.T) {
	c := NewClient(nil, "u-1")
	for i := 0; i < cap(c.Send)+10; i++ {
		c.SendMessage([]byte("x"))
	}
	assert.Len(t, c.Send, cap(c.Send))
}
