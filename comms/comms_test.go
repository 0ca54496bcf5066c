package comms

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/undeconstructed/godominion/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func head(lobby, id string) Header {
	return Header{LobbyID: lobby, MessageID: id}
}

func TestEncDec(t *testing.T) {
	var network bytes.Buffer
	enc := NewEncoder(&network)
	dec := NewDecoder(&network)

	err := enc.Encode(&CreateLobbyRequest{Header: head("123", "m1"), PlayerID: "Max"})
	if err != nil {
		t.Errorf("enc error: %v", err)
	}

	msg, err := dec.Decode()
	if err != nil {
		t.Fatalf("dec error: %v", err)
	}
	req, ok := msg.(*CreateLobbyRequest)
	if !ok {
		t.Fatalf("bad decode: %T", msg)
	}
	if req.PlayerID != "Max" || req.LobbyID != "123" || req.MessageID != "m1" {
		t.Errorf("bad decode: %+v", req)
	}

	_, err = dec.Decode()
	if err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func sampleState() *game.ReducedState {
	return &game.ReducedState{
		Board: game.Board{
			Kingdom:  []game.SupplyPile{{Card: "Village", Count: 9}},
			Treasure: []game.SupplyPile{{Card: "Copper", Count: 46}},
			Victory:  []game.SupplyPile{{Card: "Province", Count: 8}},
		},
		Phase:         game.BuyPhase,
		CurrentPlayer: "Max",
		Player:        game.PlayerView{ID: "Max", Hand: game.Pile{"Copper"}, Actions: 1, Buys: 1},
		Enemies:       []game.EnemyView{{ID: "Peter", HandSize: 5, DrawSize: 5}},
	}
}

func TestRoundTripAllMessages(t *testing.T) {
	order := game.PendingOrder{
		ID:     "o1",
		Origin: "m4",
		Order:  game.ChooseFromHand{Min: 0, Max: 4, Choice: game.ChoiceTrash},
	}
	msgs := []Message{
		&CreateLobbyRequest{Header: head("123", "m1"), PlayerID: "Max"},
		&JoinLobbyRequest{Header: head("123", "m2"), PlayerID: "Peter"},
		&StartGameRequest{Header: head("123", "m3"), PlayerID: "Max", SelectedCards: []string{"Village", "Smithy"}},
		&ActionDecisionMessage{Header: head("123", "m4"), PlayerID: "Max", Decision: game.PlayActionCard{Index: 1, From: game.FromHand}},
		&ActionDecisionMessage{Header: head("123", "m5"), PlayerID: "Max", Decision: game.ChooseCards{Indices: []int{0}}, InResponseTo: "o1"},
		&GameStateRequest{Header: head("123", "m6"), PlayerID: "Peter"},
		&CreateLobbyResponse{Header: head("123", "s1"), InResponseTo: "m1", AvailableCards: []string{"Cellar"}},
		&JoinLobbyBroadcast{Header: head("123", "s2"), Players: []string{"Max", "Peter"}},
		&StartGameBroadcast{Header: head("123", "s3")},
		&ResultResponse{Header: head("123", "s4"), InResponseTo: "m3", AdditionalInformation: "Lobby is full", Code: "LOBBYFULL"},
		&GameStateMessage{Header: head("123", "s5"), State: sampleState(), InResponseTo: "m6"},
		&ActionOrderMessage{Header: head("123", "o1"), Order: order, State: sampleState()},
		&EndGameBroadcast{Header: head("123", "s6"), Results: []game.PlayerResult{{PlayerID: "Max", Points: 9}}},
	}

	for _, m := range msgs {
		b, err := Encode(m)
		require.NoError(t, err, m.MessageType())

		fr := NewFrameReader(0)
		frames, err := fr.Feed(b)
		require.NoError(t, err)
		require.Len(t, frames, 1)

		back, err := Unmarshal(frames[0])
		require.NoError(t, err, m.MessageType())
		assert.Equal(t, m, back, m.MessageType())
	}
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`))
	assert.True(t, errors.Is(err, ErrBadPayload))

	_, err = Unmarshal([]byte(`{"type":"hello","lobby_id":"1","message_id":"2"}`))
	assert.True(t, errors.Is(err, ErrUnknownType))

	_, err = Unmarshal([]byte(`{"type":"action_decision","data":{"decision":{"kind":"fly"}}}`))
	assert.True(t, errors.Is(err, ErrBadPayload))
	assert.Equal(t, "BADPAYLOAD", WrapError(err).Code)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil))
	assert.Equal(t, &CommsError{"OUTOFPHASE", "not allowed in this phase"}, WrapError(game.ErrOutOfPhase))
	assert.Equal(t, "ERROR", WrapError(io.ErrUnexpectedEOF).Code)

	f := Failure("123", "m1", game.ErrInsufficientFunds)
	assert.False(t, f.Success)
	assert.Equal(t, "INSUFFICIENTFUNDS", f.Code)
	assert.Equal(t, "m1", InResponseTo(f))
	assert.NotEmpty(t, f.MessageID)
}
