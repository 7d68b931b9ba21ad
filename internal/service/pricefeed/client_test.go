package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/pkg/logger"
)

func feedLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	return log
}

// feedServer upgrades, records subscriptions, emits one tick per subscribed
// asset, then holds the connection open until the client closes it.
func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		msg := feedMessage{
			Type: "tick",
			Data: []feedTick{{Asset: strings.ToUpper(sub["asset"]), Price: 50000, TS: time.Now().UnixMilli()}},
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientStreamsTicks(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	c := New("", wsURL(srv), []string{"bitcoin"}, time.Millisecond, time.Hour, feedLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe(ctx))
	assert.True(t, c.IsConnected())

	obs, _ := c.Read(ctx)
	select {
	case o := <-obs:
		assert.Equal(t, "bitcoin", o.AssetID)
		assert.Equal(t, 50000.0, o.Price)
		assert.False(t, o.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}

	require.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
}

func TestClientStatusSafeUnderConcurrentClose(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	c := New("", wsURL(srv), []string{"bitcoin"}, time.Millisecond, 10*time.Millisecond, feedLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe(ctx))
	_, _ = c.Read(ctx)

	// status reads and the ping loop race the close; the connection state
	// must stay consistent throughout
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = c.IsConnected()
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())
	wg.Wait()

	assert.False(t, c.IsConnected())
}

func TestSubscribeRequiresConnection(t *testing.T) {
	c := New("", "ws://localhost:0", []string{"bitcoin"}, time.Millisecond, time.Hour, feedLogger(t))
	assert.Error(t, c.Subscribe(context.Background()))
}
