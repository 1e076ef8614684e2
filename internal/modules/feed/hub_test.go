package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	log := zerolog.Nop()

	r := gin.New()
	NewHandler(hub, &log).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/checkin/feed"
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers, have %d", n, hub.SubscriberCount())
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := newFeedServer(t)

	c1, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c1.Close()
	c2, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c2.Close()

	waitForSubscribers(t, hub, 2)

	hub.BroadcastCheckIn(map[string]string{"visitor_id": "v1", "name": "Asel"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got map[string]string
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "v1", got["visitor_id"])
		assert.Equal(t, "Asel", got["name"])
	}
}

func TestHub_DeadSubscribersAreDropped(t *testing.T) {
	hub, url := newFeedServer(t)

	c1, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c1.Close()
	c2, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	waitForSubscribers(t, hub, 2)
	require.NoError(t, c2.Close())

	// the dead connection is noticed either by the read loop or by a failed
	// broadcast write, whichever comes first
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.SubscriberCount() > 1 {
		hub.BroadcastCheckIn(map[string]string{"visitor_id": "v1"})
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, 1, hub.SubscriberCount())
}
