package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/undeconstructed/godominion/comms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func startWeb(t *testing.T) string {
	t.Helper()
	s := New(nil, nil)
	hs := httptest.NewServer(s.WebHandler())
	t.Cleanup(hs.Close)
	return strings.Replace(hs.URL, "http://", "ws://", 1) + "/ws"
}

func wsDial(t *testing.T, url string, protocols ...string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	socket, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: protocols})
	require.NoError(t, err)
	t.Cleanup(func() { socket.Close(websocket.StatusNormalClosure, "") })
	return socket
}

func wsSend(t *testing.T, socket *websocket.Conn, m comms.Message) {
	t.Helper()
	b, err := comms.Encode(m)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, socket.Write(ctx, websocket.MessageBinary, b))
}

func wsRecv(t *testing.T, socket *websocket.Conn) comms.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := socket.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageBinary, typ)

	payloads, err := comms.NewFrameReader(0).Feed(data)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	m, err := comms.Unmarshal(payloads[0])
	require.NoError(t, err)
	return m
}

// wsClosed reads until the server closes, and gives the close status.
func wsClosed(t *testing.T, socket *websocket.Conn) websocket.StatusCode {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, _, err := socket.Read(ctx)
		if err != nil {
			return websocket.CloseStatus(err)
		}
	}
}

func TestWSCreateLobby(t *testing.T) {
	socket := wsDial(t, startWeb(t), subprotocol)
	assert.Equal(t, subprotocol, socket.Subprotocol())

	wsSend(t, socket, &comms.CreateLobbyRequest{Header: hdr("123", "c1"), PlayerID: "Max"})
	res, ok := wsRecv(t, socket).(*comms.CreateLobbyResponse)
	require.True(t, ok)
	assert.Equal(t, "c1", res.InResponseTo)
	assert.Equal(t, "123", res.LobbyID)
	assert.NotEmpty(t, res.AvailableCards)

	wsSend(t, socket, &comms.GameStateRequest{Header: hdr("123", "q1"), PlayerID: "Max"})
	r, ok := wsRecv(t, socket).(*comms.ResultResponse)
	require.True(t, ok)
	assert.Equal(t, "NOTSTARTED", r.Code)
}

func TestWSTextRefused(t *testing.T) {
	socket := wsDial(t, startWeb(t), subprotocol)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, socket.Write(ctx, websocket.MessageText, []byte("hello")))

	assert.Equal(t, websocket.StatusUnsupportedData, wsClosed(t, socket))
}

func TestWSNeedsSubprotocol(t *testing.T) {
	socket := wsDial(t, startWeb(t))
	assert.Empty(t, socket.Subprotocol())

	assert.Equal(t, websocket.StatusPolicyViolation, wsClosed(t, socket))
}
