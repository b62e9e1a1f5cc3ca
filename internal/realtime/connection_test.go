package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsPair returns the server side of a live websocket and the dialed client.
func wsPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return <-serverSide, client
}

func TestConnection_FullBufferClosesWithoutBlocking(t *testing.T) {
	server, client := wsPair(t)
	// No write loop: nothing drains the buffer.
	conn := NewConnection("u1", server, time.Minute, time.Minute)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, conn.Send([]byte("x")))
	}

	start := time.Now()
	err := conn.Send([]byte("overflow"))
	assert.ErrorIs(t, err, ErrSlowConsumer)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	select {
	case <-conn.Done():
	default:
		t.Fatal("connection should be marked closed")
	}
	assert.ErrorIs(t, conn.Send([]byte("late")), ErrConnectionClosed)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestConnection_CloseIsImmediateAndIdempotent(t *testing.T) {
	server, _ := wsPair(t)
	conn := NewConnection("u1", server, time.Minute, time.Minute)

	start := time.Now()
	conn.Close(websocket.CloseNormalClosure, "")
	conn.Close(websocket.CloseNormalClosure, "")
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
