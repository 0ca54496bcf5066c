package server

import (
	"sync"
	"time"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"
	"github.com/undeconstructed/godominion/store"

	"github.com/rs/zerolog"
)

// LobbyStatus is Open until the game starts, then InGame for good.
type LobbyStatus int

const (
	LobbyOpen LobbyStatus = iota
	LobbyInGame
)

func (s LobbyStatus) String() string {
	if s == LobbyInGame {
		return "in_game"
	}
	return "open"
}

func (s LobbyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LobbyInfo is a snapshot of a lobby.
type LobbyInfo struct {
	ID            string      `json:"id"`
	Master        string      `json:"master"`
	Players       []string    `json:"players"`
	Status        LobbyStatus `json:"status"`
	Kingdom       []string    `json:"kingdom,omitempty"`
	Phase         string      `json:"phase,omitempty"`
	CurrentPlayer string      `json:"current_player,omitempty"`
	GameOver      bool        `json:"game_over"`
}

// Lobby binds players to one game. Everything a lobby does happens under its
// lock, so there is only ever one change in flight.
type Lobby struct {
	mu      sync.Mutex
	id      string
	master  string
	players []string
	status  LobbyStatus
	game    *game.GameState
	kingdom []string
	// orders already sent, by player
	ordered map[string]string

	msgr     Messenger
	cat      *game.Catalog
	seed     func() int64
	onFinish func(*Lobby, store.GameRecord)
	log      zerolog.Logger
}

func newLobby(id, master string, lm *LobbyManager) *Lobby {
	return &Lobby{
		id:       id,
		master:   master,
		players:  []string{master},
		ordered:  map[string]string{},
		msgr:     lm.msgr,
		cat:      lm.cat,
		seed:     lm.seed,
		onFinish: lm.finished,
		log:      lm.log.With().Str("lobby", id).Logger(),
	}
}

func (l *Lobby) ID() string { return l.id }

// Info takes a snapshot.
func (l *Lobby) Info() LobbyInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	info := LobbyInfo{
		ID:      l.id,
		Master:  l.master,
		Players: append([]string(nil), l.players...),
		Status:  l.status,
		Kingdom: append([]string(nil), l.kingdom...),
	}
	if l.game != nil {
		info.Phase = l.game.Phase().String()
		info.CurrentPlayer = l.game.CurrentPlayer()
		info.GameOver = l.game.IsGameOver()
	}
	return info
}

// Players is who has joined, in order.
func (l *Lobby) Players() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.players...)
}

// Status is whether the game has started.
func (l *Lobby) Status() LobbyStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Lobby) member(player string) bool {
	for _, p := range l.players {
		if p == player {
			return true
		}
	}
	return false
}

func (l *Lobby) fail(player, inResponseTo string, err error) {
	l.log.Debug().Str("player", player).Err(err).Msg("refused")
	l.msgr.Send(player, reject(l.id, inResponseTo, err))
}

// Join adds a player, telling everyone.
func (l *Lobby) Join(m *comms.JoinLobbyRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.status != LobbyOpen:
		l.fail(m.PlayerID, m.MessageID, ErrAlreadyStarted)
		return
	case l.member(m.PlayerID):
		l.fail(m.PlayerID, m.MessageID, ErrAlreadyJoined)
		return
	case len(l.players) >= game.MaxPlayers:
		l.fail(m.PlayerID, m.MessageID, ErrLobbyFull)
		return
	}

	l.players = append(l.players, m.PlayerID)
	l.log.Info().Str("player", m.PlayerID).Msg("joined")

	l.msgr.Broadcast(l.players, &comms.JoinLobbyBroadcast{
		Header:  l.header(),
		Players: append([]string(nil), l.players...),
	})
	l.msgr.Send(m.PlayerID, comms.Success(l.id, m.MessageID))
}

// StartGame makes the game, if the game master asks.
func (l *Lobby) StartGame(m *comms.StartGameRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.status != LobbyOpen:
		l.fail(m.PlayerID, m.MessageID, ErrAlreadyStarted)
		return
	case m.PlayerID != l.master:
		l.fail(m.PlayerID, m.MessageID, ErrNotGameMaster)
		return
	case len(l.players) < game.MinPlayers || len(l.players) > game.MaxPlayers:
		l.fail(m.PlayerID, m.MessageID, game.ErrPlayerCountMismatch)
		return
	}

	g, err := game.NewGameState(l.cat, l.players, m.SelectedCards, l.seed())
	if err != nil {
		l.fail(m.PlayerID, m.MessageID, err)
		return
	}

	l.game = g
	l.kingdom = append([]string(nil), m.SelectedCards...)
	l.status = LobbyInGame
	gamesStarted.Inc()
	l.log.Info().Strs("kingdom", l.kingdom).Msg("game started")

	l.msgr.Send(m.PlayerID, comms.Success(l.id, m.MessageID))
	l.msgr.Broadcast(l.players, &comms.StartGameBroadcast{Header: l.header()})
	l.sendStates("")
}

// ReceiveAction gives a decision to the game and tells everyone what changed.
func (l *Lobby) ReceiveAction(m *comms.ActionDecisionMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.game == nil {
		l.fail(m.PlayerID, m.MessageID, ErrNotStarted)
		return
	}
	if !l.member(m.PlayerID) {
		l.fail(m.PlayerID, m.MessageID, ErrNotMember)
		return
	}

	wasOver := l.game.IsGameOver()
	before := l.game.Phase()
	err := l.game.ApplyDecision(m.PlayerID, m.Decision, m.MessageID, m.InResponseTo)
	if err != nil {
		l.fail(m.PlayerID, m.MessageID, err)
		// running out of actions still moves the game on
		if l.game.Phase() != before {
			l.sendStates("")
		}
		return
	}

	l.msgr.Send(m.PlayerID, comms.Success(l.id, m.MessageID))
	l.sendOrders()
	l.sendStates("")

	if l.game.IsGameOver() && !wasOver {
		l.finish()
	}
}

// SendState answers a state request.
func (l *Lobby) SendState(m *comms.GameStateRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.game == nil {
		l.fail(m.PlayerID, m.MessageID, ErrNotStarted)
		return
	}
	if !l.member(m.PlayerID) {
		l.fail(m.PlayerID, m.MessageID, ErrNotMember)
		return
	}
	l.sendState(m.PlayerID, m.MessageID)
}

func (l *Lobby) header() comms.Header {
	return comms.Header{LobbyID: l.id, MessageID: comms.NewMessageID()}
}

func (l *Lobby) sendStates(inResponseTo string) {
	for _, p := range l.players {
		l.sendState(p, inResponseTo)
	}
}

func (l *Lobby) sendState(player, inResponseTo string) {
	rs, err := l.game.GetReducedState(player)
	if err != nil {
		l.log.Error().Err(err).Str("player", player).Msg("no state")
		return
	}
	l.msgr.Send(player, &comms.GameStateMessage{
		Header:       l.header(),
		State:        rs,
		InResponseTo: inResponseTo,
	})
}

// sendOrders tells players about orders they haven't been told about.
func (l *Lobby) sendOrders() {
	for _, p := range l.players {
		po, ok := l.game.PendingOrder(p)
		if !ok {
			delete(l.ordered, p)
			continue
		}
		if l.ordered[p] == po.ID {
			continue
		}
		rs, err := l.game.GetReducedState(p)
		if err != nil {
			continue
		}
		l.ordered[p] = po.ID
		l.msgr.Send(p, &comms.ActionOrderMessage{
			Header: comms.Header{LobbyID: l.id, MessageID: po.ID},
			Order:  po,
			State:  rs,
		})
	}
}

func (l *Lobby) finish() {
	results := l.game.Results()
	gamesFinished.Inc()
	l.log.Info().Interface("results", results).Msg("game over")

	l.msgr.Broadcast(l.players, &comms.EndGameBroadcast{
		Header:  l.header(),
		Results: results,
	})
	if l.onFinish != nil {
		l.onFinish(l, store.GameRecord{
			LobbyID:    l.id,
			Kingdom:    append([]string(nil), l.kingdom...),
			Results:    results,
			FinishedAt: time.Now(),
		})
	}
}
