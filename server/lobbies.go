package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/undeconstructed/godominion/comms"
	"github.com/undeconstructed/godominion/game"
	"github.com/undeconstructed/godominion/store"

	"github.com/rs/zerolog"
)

const saveTimeout = 5 * time.Second

// LobbyManager holds every lobby and sends client messages to the right one.
//
// The manager's lock is never held while taking a lobby's lock.
type LobbyManager struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby

	msgr  Messenger
	cat   *game.Catalog
	store store.Store
	seed  func() int64
	saves sync.WaitGroup
	log   zerolog.Logger
}

func NewLobbyManager(msgr Messenger, cat *game.Catalog, st store.Store, log zerolog.Logger) *LobbyManager {
	if st == nil {
		st = store.Nop{}
	}
	return &LobbyManager{
		lobbies: map[string]*Lobby{},
		msgr:    msgr,
		cat:     cat,
		store:   st,
		seed:    func() int64 { return time.Now().UnixNano() },
		log:     log,
	}
}

// Handle is where every client message ends up.
func (lm *LobbyManager) Handle(m comms.ClientMessage) {
	switch m := m.(type) {
	case *comms.CreateLobbyRequest:
		lm.CreateLobby(m)
	case *comms.JoinLobbyRequest:
		if l := lm.route(m); l != nil {
			l.Join(m)
		}
	case *comms.StartGameRequest:
		if l := lm.route(m); l != nil {
			l.StartGame(m)
		}
	case *comms.ActionDecisionMessage:
		if l := lm.route(m); l != nil {
			l.ReceiveAction(m)
		}
	case *comms.GameStateRequest:
		if l := lm.route(m); l != nil {
			l.SendState(m)
		}
	default:
		h := m.Head()
		lm.msgr.Send(m.Sender(), reject(h.LobbyID, h.MessageID, game.ErrBadRequest))
	}
}

// route finds the lobby for a message, or tells the sender there isn't one.
func (lm *LobbyManager) route(m comms.ClientMessage) *Lobby {
	h := m.Head()
	l, ok := lm.Lobby(h.LobbyID)
	if !ok {
		lm.msgr.Send(m.Sender(), reject(h.LobbyID, h.MessageID, ErrLobbyNotFound))
		return nil
	}
	return l
}

// CreateLobby makes a new open lobby with the sender as game master. A
// lobby id is made up if none is given.
func (lm *LobbyManager) CreateLobby(m *comms.CreateLobbyRequest) {
	if m.PlayerID == "" {
		lm.msgr.Send(m.PlayerID, reject(m.LobbyID, m.MessageID, game.ErrBadRequest))
		return
	}

	lm.mu.Lock()
	id := m.LobbyID
	for id == "" {
		id = RandomString(6)
		if _, taken := lm.lobbies[id]; taken {
			id = ""
		}
	}
	if _, exists := lm.lobbies[id]; exists {
		lm.mu.Unlock()
		lm.msgr.Send(m.PlayerID, reject(id, m.MessageID, ErrLobbyExists))
		return
	}
	l := newLobby(id, m.PlayerID, lm)
	lm.lobbies[id] = l
	lobbiesGauge.Set(float64(len(lm.lobbies)))
	lm.mu.Unlock()

	l.log.Info().Str("master", m.PlayerID).Msg("created")

	lm.msgr.Send(m.PlayerID, &comms.CreateLobbyResponse{
		Header:         comms.Header{LobbyID: id, MessageID: comms.NewMessageID()},
		InResponseTo:   m.MessageID,
		AvailableCards: lm.cat.Kingdom(),
	})
}

// Lobby finds a lobby by id.
func (lm *LobbyManager) Lobby(id string) (*Lobby, bool) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	l, ok := lm.lobbies[id]
	return l, ok
}

// Lobbies snapshots every lobby, by id.
func (lm *LobbyManager) Lobbies() []LobbyInfo {
	lm.mu.RLock()
	list := make([]*Lobby, 0, len(lm.lobbies))
	for _, l := range lm.lobbies {
		list = append(list, l)
	}
	lm.mu.RUnlock()

	out := make([]LobbyInfo, 0, len(list))
	for _, l := range list {
		out = append(out, l.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// finished is called by a lobby, holding its own lock, when its game ends.
// The lobby is let go and the result is saved in the background.
func (lm *LobbyManager) finished(l *Lobby, rec store.GameRecord) {
	lm.mu.Lock()
	if lm.lobbies[l.id] == l {
		delete(lm.lobbies, l.id)
	}
	lobbiesGauge.Set(float64(len(lm.lobbies)))
	lm.mu.Unlock()

	lm.saves.Add(1)
	go func() {
		defer lm.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := lm.store.SaveGame(ctx, rec); err != nil {
			lm.log.Error().Err(err).Str("lobby", rec.LobbyID).Msg("save game error")
		}
	}()
}

// Wait waits for results still being saved.
func (lm *LobbyManager) Wait() {
	lm.saves.Wait()
}

// reject makes a failure result, and counts it.
func reject(lobby, inResponseTo string, err error) *comms.ResultResponse {
	r := comms.Failure(lobby, inResponseTo, err)
	rejectionsTotal.WithLabelValues(r.Code).Inc()
	return r
}
