package comms

import (
	"encoding/json"

	"github.com/undeconstructed/godominion/game"
)

// Header is carried by every message. It travels in the envelope, not in the
// message data.
type Header struct {
	LobbyID   string `json:"-"`
	MessageID string `json:"-"`
}

func (h *Header) Head() *Header { return h }

// Message is any message.
type Message interface {
	Head() *Header
	MessageType() string
}

// ClientMessage is a message sent by a player.
type ClientMessage interface {
	Message
	Sender() string
}

// client to server

type CreateLobbyRequest struct {
	Header
	PlayerID string `json:"player_id"`
}

type JoinLobbyRequest struct {
	Header
	PlayerID string `json:"player_id"`
}

type StartGameRequest struct {
	Header
	PlayerID      string   `json:"player_id"`
	SelectedCards []string `json:"selected_cards"`
}

// ActionDecisionMessage carries a game decision. InResponseTo is the order
// being answered, if any.
type ActionDecisionMessage struct {
	Header
	PlayerID     string
	Decision     game.Decision
	InResponseTo string
}

type GameStateRequest struct {
	Header
	PlayerID string `json:"player_id"`
}

// server to client

type CreateLobbyResponse struct {
	Header
	InResponseTo   string   `json:"in_response_to,omitempty"`
	AvailableCards []string `json:"available_cards"`
}

type JoinLobbyBroadcast struct {
	Header
	Players []string `json:"players"`
}

type StartGameBroadcast struct {
	Header
}

type ResultResponse struct {
	Header
	Success               bool   `json:"success"`
	InResponseTo          string `json:"in_response_to,omitempty"`
	AdditionalInformation string `json:"additional_information,omitempty"`
	Code                  string `json:"code,omitempty"`
}

type GameStateMessage struct {
	Header
	State        *game.ReducedState `json:"state"`
	InResponseTo string             `json:"in_response_to,omitempty"`
}

// ActionOrderMessage asks a player for a decision. The message id is the
// order id, so the answer can be in response to it.
type ActionOrderMessage struct {
	Header
	Order game.PendingOrder  `json:"order"`
	State *game.ReducedState `json:"state"`
}

type EndGameBroadcast struct {
	Header
	Results []game.PlayerResult `json:"results"`
}

func (*CreateLobbyRequest) MessageType() string    { return "create_lobby_request" }
func (*JoinLobbyRequest) MessageType() string      { return "join_lobby_request" }
func (*StartGameRequest) MessageType() string      { return "start_game_request" }
func (*ActionDecisionMessage) MessageType() string { return "action_decision" }
func (*GameStateRequest) MessageType() string      { return "game_state_request" }
func (*CreateLobbyResponse) MessageType() string   { return "create_lobby_response" }
func (*JoinLobbyBroadcast) MessageType() string    { return "join_lobby_broadcast" }
func (*StartGameBroadcast) MessageType() string    { return "start_game_broadcast" }
func (*ResultResponse) MessageType() string        { return "result_response" }
func (*GameStateMessage) MessageType() string      { return "game_state" }
func (*ActionOrderMessage) MessageType() string    { return "action_order" }
func (*EndGameBroadcast) MessageType() string      { return "end_game_broadcast" }

func (m *CreateLobbyRequest) Sender() string    { return m.PlayerID }
func (m *JoinLobbyRequest) Sender() string      { return m.PlayerID }
func (m *StartGameRequest) Sender() string      { return m.PlayerID }
func (m *ActionDecisionMessage) Sender() string { return m.PlayerID }
func (m *GameStateRequest) Sender() string      { return m.PlayerID }

// newMessage makes an empty message for a type name.
func newMessage(mtype string) (Message, error) {
	switch mtype {
	case "create_lobby_request":
		return &CreateLobbyRequest{}, nil
	case "join_lobby_request":
		return &JoinLobbyRequest{}, nil
	case "start_game_request":
		return &StartGameRequest{}, nil
	case "action_decision":
		return &ActionDecisionMessage{}, nil
	case "game_state_request":
		return &GameStateRequest{}, nil
	case "create_lobby_response":
		return &CreateLobbyResponse{}, nil
	case "join_lobby_broadcast":
		return &JoinLobbyBroadcast{}, nil
	case "start_game_broadcast":
		return &StartGameBroadcast{}, nil
	case "result_response":
		return &ResultResponse{}, nil
	case "game_state":
		return &GameStateMessage{}, nil
	case "action_order":
		return &ActionOrderMessage{}, nil
	case "end_game_broadcast":
		return &EndGameBroadcast{}, nil
	}
	return nil, ErrUnknownType
}

type actionDecisionJSON struct {
	PlayerID     string          `json:"player_id"`
	Decision     json.RawMessage `json:"decision"`
	InResponseTo string          `json:"in_response_to,omitempty"`
}

func (m *ActionDecisionMessage) MarshalJSON() ([]byte, error) {
	d, err := game.MarshalDecision(m.Decision)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionDecisionJSON{m.PlayerID, d, m.InResponseTo})
}

func (m *ActionDecisionMessage) UnmarshalJSON(b []byte) error {
	var j actionDecisionJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	d, err := game.UnmarshalDecision(j.Decision)
	if err != nil {
		return err
	}
	m.PlayerID, m.Decision, m.InResponseTo = j.PlayerID, d, j.InResponseTo
	return nil
}

// InResponseTo finds what a server message answers, if anything.
func InResponseTo(m Message) string {
	switch m := m.(type) {
	case *CreateLobbyResponse:
		return m.InResponseTo
	case *ResultResponse:
		return m.InResponseTo
	case *GameStateMessage:
		return m.InResponseTo
	}
	return ""
}

// Success is a positive result.
func Success(lobby, inResponseTo string) *ResultResponse {
	return &ResultResponse{
		Header:       Header{LobbyID: lobby, MessageID: NewMessageID()},
		Success:      true,
		InResponseTo: inResponseTo,
	}
}

// Failure is a negative result, with the reason.
func Failure(lobby, inResponseTo string, err error) *ResultResponse {
	cerr := WrapError(err)
	r := &ResultResponse{
		Header:       Header{LobbyID: lobby, MessageID: NewMessageID()},
		InResponseTo: inResponseTo,
	}
	if cerr != nil {
		r.AdditionalInformation = cerr.Msg
		r.Code = cerr.Code
	}
	return r
}
