package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ReadPoll = "2ms"
	s := New(cfg, nil)

	tcpLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	webLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, tcpLn, webLn) }()

	c := dial(t, tcpLn.Addr().String())
	c.send(&comms.CreateLobbyRequest{Header: hdr("123", "c1"), PlayerID: "Max"})
	assert.IsType(t, &comms.CreateLobbyResponse{}, c.recv())

	socket := wsDial(t, "ws://"+webLn.Addr().String()+"/ws", subprotocol)
	wsSend(t, socket, &comms.CreateLobbyRequest{Header: hdr("456", "c2"), PlayerID: "Peter"})
	assert.IsType(t, &comms.CreateLobbyResponse{}, wsRecv(t, socket))
	assert.Equal(t, 2, s.reg.Count())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("still serving")
	}
	// every connection was let go before serve returned
	assert.Equal(t, 0, s.reg.Count())
}
