package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loungewatch/loungewatch/internal/store"
	wsHub "github.com/loungewatch/loungewatch/internal/ws"
	"github.com/loungewatch/loungewatch/pkg/types"
)

const testInterval = 20 * time.Millisecond

// cacheSource adapts a store.Cache to ws.Source.
type cacheSource struct {
	cache *store.Cache
}

func (s *cacheSource) Peek() *types.Snapshot { return s.cache.Read() }

func newSource(recs ...types.Record) *cacheSource {
	c := store.New()
	if len(recs) > 0 {
		c.Write(types.NewSnapshot(recs, time.Now()))
	}
	return &cacheSource{cache: c}
}

// startHub serves hub over httptest and runs its broadcast loop.
func startHub(t *testing.T, src wsHub.Source) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(src, testInterval)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(hub)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), hub, cancelFn
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var m wsHub.Message
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestHub_Connect_ReceivesImmediateStatus(t *testing.T) {
	wsURL, _, _ := startHub(t, newSource(types.Record{Name: "JIS UMEDA", Women: 3}))

	m := readMessage(t, dial(t, wsURL))
	assert.Equal(t, wsHub.EventStatus, m.Event)
	assert.Equal(t, types.StatusSuccess, m.Data.Status)
	require.NotNil(t, m.Data.Top)
	assert.Equal(t, "JIS UMEDA", m.Data.Top.Name)
}

func TestHub_EmptyCache_NoData(t *testing.T) {
	wsURL, _, _ := startHub(t, newSource())

	m := readMessage(t, dial(t, wsURL))
	assert.Equal(t, types.StatusNoData, m.Data.Status)
	assert.Nil(t, m.Data.Timestamp)
	assert.Empty(t, m.Data.Ranking)
}

func TestHub_ReceivesBroadcastOnTick(t *testing.T) {
	src := newSource()
	wsURL, _, _ := startHub(t, src)

	conn := dial(t, wsURL)
	readMessage(t, conn)

	src.cache.Write(types.NewSnapshot([]types.Record{{Name: "XIX OKAYAMA", Women: 1}}, time.Now()))

	deadline := time.Now().Add(2 * time.Second)
	for {
		m := readMessage(t, conn)
		if m.Data.Top != nil && m.Data.Top.Name == "XIX OKAYAMA" {
			break
		}
		require.True(t, time.Now().Before(deadline), "no broadcast carried the new snapshot")
	}
}

func TestHub_CountClients(t *testing.T) {
	wsURL, hub, _ := startHub(t, newSource())

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
		readMessage(t, conns[i])
	}
	require.Eventually(t, func() bool { return hub.Count() == 3 }, time.Second, 5*time.Millisecond)

	conns[0].Close()
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t, newSource())

	conn := dial(t, wsURL)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	srv := httptest.NewServer(wsHub.New(newSource(), testInterval))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
