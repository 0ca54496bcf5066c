package server

import (
	"testing"

	"github.com/undeconstructed/godominion/comms"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	addr string
	got  [][]byte
}

func (c *fakeConn) Addr() string { return c.addr }

func (c *fakeConn) Send(b []byte) bool {
	c.got = append(c.got, b)
	return true
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{addr: "a"}
	b := &fakeConn{addr: "b"}
	r.AddConn(a)
	r.AddConn(b)
	assert.Equal(t, 2, r.Count())

	require.NoError(t, r.Bind("Max", "a"))
	require.NoError(t, r.Bind("Max", "a"))
	require.NoError(t, r.Bind("Anna", "a"))
	require.NoError(t, r.Bind("Peter", "b"))
	assert.ErrorIs(t, r.Bind("Max", "b"), ErrPlayerBound)

	c, ok := r.Lookup("Max")
	require.True(t, ok)
	assert.Equal(t, a, c)

	_, ok = r.Lookup("Nobody")
	assert.False(t, ok)

	assert.Equal(t, []string{"Anna", "Max"}, r.RemoveConn("a"))
	_, ok = r.Lookup("Max")
	assert.False(t, ok)
	_, ok = r.Conn("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())

	// free again
	require.NoError(t, r.Bind("Max", "b"))
	c, _ = r.Lookup("Max")
	assert.Equal(t, b, c)
}

func TestNetworkMessenger(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{addr: "a"}
	r.AddConn(a)
	require.NoError(t, r.Bind("Max", "a"))

	m := &comms.StartGameBroadcast{Header: hdr("123", "x1")}
	nm := newNetworkMessenger(r, zerolog.Nop())
	nm.Send("Max", m)
	nm.Send("Nobody", m)
	nm.Broadcast([]string{"Max", "Nobody"}, m)

	require.Len(t, a.got, 2)
	assert.Equal(t, a.got[0], a.got[1])

	payloads, err := comms.NewFrameReader(0).Feed(a.got[0])
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	got, err := comms.Unmarshal(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, m, got)
}
