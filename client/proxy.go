package client

import (
	"context"
	"fmt"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"
)

// GameClient is the game as seen by one player in one lobby.
type GameClient interface {
	Create(ctx context.Context) ([]string, error)
	Join(ctx context.Context) error
	Start(ctx context.Context, kingdom []string) error
	Decide(ctx context.Context, d game.Decision, inResponseTo string) error
	State(ctx context.Context) (*game.ReducedState, error)
}

// GameProxy is a GameClient over a session.
type GameProxy struct {
	session *Session
	player  string
	lobby   string
}

// NewGameProxy makes a GameClient over a session. An empty lobby id lets the
// server choose one on Create.
func NewGameProxy(s *Session, player, lobby string) *GameProxy {
	return &GameProxy{session: s, player: player, lobby: lobby}
}

// Lobby is the lobby id in use.
func (gp *GameProxy) Lobby() string { return gp.lobby }

// SetLobby moves to another lobby.
func (gp *GameProxy) SetLobby(id string) { gp.lobby = id }

func (gp *GameProxy) header() comms.Header {
	return comms.Header{LobbyID: gp.lobby}
}

func (gp *GameProxy) do(ctx context.Context, m comms.Message) (comms.Message, error) {
	res, err := gp.session.Submit(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := ResultError(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (gp *GameProxy) Create(ctx context.Context) ([]string, error) {
	res, err := gp.do(ctx, &comms.CreateLobbyRequest{Header: gp.header(), PlayerID: gp.player})
	if err != nil {
		return nil, err
	}
	cr, ok := res.(*comms.CreateLobbyResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected answer: %s", res.MessageType())
	}
	gp.lobby = cr.LobbyID
	return cr.AvailableCards, nil
}

func (gp *GameProxy) Join(ctx context.Context) error {
	_, err := gp.do(ctx, &comms.JoinLobbyRequest{Header: gp.header(), PlayerID: gp.player})
	return err
}

func (gp *GameProxy) Start(ctx context.Context, kingdom []string) error {
	_, err := gp.do(ctx, &comms.StartGameRequest{Header: gp.header(), PlayerID: gp.player, SelectedCards: kingdom})
	return err
}

func (gp *GameProxy) Decide(ctx context.Context, d game.Decision, inResponseTo string) error {
	_, err := gp.do(ctx, &comms.ActionDecisionMessage{
		Header:       gp.header(),
		PlayerID:     gp.player,
		Decision:     d,
		InResponseTo: inResponseTo,
	})
	return err
}

func (gp *GameProxy) State(ctx context.Context) (*game.ReducedState, error) {
	res, err := gp.do(ctx, &comms.GameStateRequest{Header: gp.header(), PlayerID: gp.player})
	if err != nil {
		return nil, err
	}
	gs, ok := res.(*comms.GameStateMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected answer: %s", res.MessageType())
	}
	return gs.State, nil
}
