package client

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/config"
	"github.com/undeconstructed/godominion/game"
	"github.com/undeconstructed/godominion/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushes struct {
	mu   sync.Mutex
	msgs []comms.Message
}

func (p *pushes) add(m comms.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
}

func (p *pushes) get() []comms.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]comms.Message(nil), p.msgs...)
}

func pipeSession(t *testing.T) (net.Conn, *Session) {
	t.Helper()
	srv, cli := net.Pipe()
	s := NewSession(cli, Options{ReadPoll: 2 * time.Millisecond})
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return srv, s
}

func encode(t *testing.T, m comms.Message) []byte {
	b, err := comms.Encode(m)
	require.NoError(t, err)
	return b
}

func TestSubmitCorrelates(t *testing.T) {
	srv, s := pipeSession(t)
	var ps pushes
	s.OnPush(ps.add)

	go func() {
		m, err := comms.NewDecoder(srv).Decode()
		if !assert.NoError(t, err) {
			return
		}
		req, ok := m.(*comms.CreateLobbyRequest)
		if !assert.True(t, ok) {
			return
		}
		assert.Equal(t, "Max", req.PlayerID)
		assert.NotEmpty(t, req.MessageID)

		push := encode(t, &comms.JoinLobbyBroadcast{Header: comms.Header{LobbyID: "123", MessageID: "p1"}, Players: []string{"Max"}})
		res := encode(t, &comms.CreateLobbyResponse{
			Header:         comms.Header{LobbyID: "123", MessageID: "r1"},
			InResponseTo:   req.MessageID,
			AvailableCards: []string{"Village"},
		})
		all := append(push, res...)
		// split in the middle of a frame
		srv.Write(all[:7])
		srv.Write(all[7:])
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := s.Submit(ctx, &comms.CreateLobbyRequest{Header: comms.Header{LobbyID: "123"}, PlayerID: "Max"})
	require.NoError(t, err)
	cr, ok := res.(*comms.CreateLobbyResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"Village"}, cr.AvailableCards)

	got := ps.get()
	require.Len(t, got, 1)
	assert.IsType(t, &comms.JoinLobbyBroadcast{}, got[0])
}

func TestSubmitWaitsForContext(t *testing.T) {
	srv, s := pipeSession(t)
	go io.Copy(io.Discard, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.Submit(ctx, &comms.GameStateRequest{PlayerID: "Max"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatePushes(t *testing.T) {
	srv, s := pipeSession(t)
	assert.Nil(t, s.State())

	st := &game.ReducedState{CurrentPlayer: "Max", Phase: game.BuyPhase}
	next := s.NextState(nil)
	go srv.Write(encode(t, &comms.GameStateMessage{Header: comms.Header{LobbyID: "123", MessageID: "g1"}, State: st}))

	select {
	case got := <-next:
		assert.Equal(t, "Max", got.CurrentPlayer)
		assert.Equal(t, game.BuyPhase, got.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("no state")
	}
	assert.Equal(t, "Max", s.State().CurrentPlayer)
}

func TestConnectionLost(t *testing.T) {
	srv, s := pipeSession(t)
	errCh := make(chan error, 1)
	s.OnError(func(err error) { errCh <- err })

	srv.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("no error")
	}
	<-s.Done()
	_, err := s.Submit(context.Background(), &comms.GameStateRequest{PlayerID: "Max"})
	assert.Error(t, err)
}

func TestResultError(t *testing.T) {
	assert.NoError(t, ResultError(comms.Success("123", "m1")))
	assert.NoError(t, ResultError(&comms.StartGameBroadcast{}))

	err := ResultError(comms.Failure("123", "m1", game.ErrNotYourTurn))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	err = ResultError(comms.Failure("123", "m1", server.ErrLobbyFull))
	var ce *comms.CommsError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "LOBBYFULL", ce.Code)
	assert.Equal(t, "Lobby is full", ce.Msg)
}

func TestAgainstServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ReadPoll = "2ms"
	srv := server.New(cfg, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go srv.ServeTCP(ctx, ln)

	dial := func(name string) *GameProxy {
		s, err := Dial(ctx, ln.Addr().String(), Options{ReadPoll: 2 * time.Millisecond})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return NewGameProxy(s, name, "")
	}
	mx := dial("Max")
	pt := dial("Peter")

	cards, err := mx.Create(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cards), game.KingdomSize)
	require.NotEmpty(t, mx.Lobby())

	pt.SetLobby(mx.Lobby())
	require.NoError(t, pt.Join(ctx))
	assert.ErrorContains(t, pt.Join(ctx), "already")

	assert.Error(t, pt.Start(ctx, cards[:game.KingdomSize]))
	require.NoError(t, mx.Start(ctx, cards[:game.KingdomSize]))

	st, err := pt.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Max", st.CurrentPlayer)
	assert.Len(t, st.Player.Hand, game.HandSize)

	assert.ErrorIs(t, pt.Decide(ctx, game.EndTurn{}, ""), game.ErrNotYourTurn)
	require.NoError(t, mx.Decide(ctx, game.EndTurn{}, ""))

	st, err = mx.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Peter", st.CurrentPlayer)
}
