package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aniparty/server/internal/config"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   time.Minute,
		PongWait:       time.Minute,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
	}
}

func TestClient_SendAfterDropIsNoOp(t *testing.T) {
	cfg := testWSConfig()
	h := NewHub(cfg)
	c := NewClient("conn-1", h, nil, cfg)

	for i := 0; i < cap(c.Send); i++ {
		require.NoError(t, c.SendMessage(map[string]string{"type": "chatMessage"}))
	}

	c.closeSend()
	c.closeSend()

	// The read pump can still hand frames to the handlers after the hub
	// dropped the client; replies to it must not blow up.
	require.NotPanics(t, func() {
		require.NoError(t, c.SendMessage(map[string]string{"type": "roomInfo"}))
	})
}

func TestHub_SlowClientIsDroppedNotFatal(t *testing.T) {
	cfg := testWSConfig()
	h := NewHub(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := NewClient("conn-1", h, nil, cfg)
	h.Register(c)
	h.Subscribe("conn-1", "12345")

	for i := 0; i < cap(c.Send); i++ {
		require.NoError(t, c.SendMessage(map[string]string{"type": "chatMessage"}))
	}

	// A broadcast into the full buffer drops the client.
	require.NoError(t, h.Publish("12345", map[string]string{"type": "chatMessage"}))

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.closed
	}, time.Second, 5*time.Millisecond)

	require.NotPanics(t, func() {
		require.NoError(t, c.SendMessage(map[string]string{"type": "roomInfo"}))
		require.NoError(t, h.SendTo("conn-1", map[string]string{"type": "roomInfo"}))
	})
}

func TestHub_RegisterIsImmediatelyVisible(t *testing.T) {
	cfg := testWSConfig()
	h := NewHub(cfg)

	c := NewClient("conn-1", h, nil, cfg)
	h.Register(c)

	// No Run loop here: registration and subscription must not depend
	// on the broadcast goroutine having scheduled.
	h.Subscribe("conn-1", "12345")

	h.mu.RLock()
	_, subscribed := h.rooms["12345"]["conn-1"]
	h.mu.RUnlock()
	require.True(t, subscribed)

	require.NoError(t, h.SendTo("conn-1", map[string]string{"type": "roomCreated"}))
	require.Len(t, c.Send, 1)
}
