package game

import (
	"encoding/json"
	"fmt"
)

// Source is where a card is played or chosen from.
type Source string

const (
	FromHand   Source = "hand"
	FromStaged Source = "staged"
)

// Decision is something a player decides to do.
type Decision interface {
	DecisionKind() string
}

// PlayActionCard plays the card at Index in the hand or staged cards. Card,
// if set, must be the card that is there.
type PlayActionCard struct {
	Index int    `json:"index"`
	From  Source `json:"from"`
	Card  string `json:"card,omitempty"`
}

// BuyCard buys one card from the board.
type BuyCard struct {
	Card string `json:"card"`
}

// EndActionPhase moves on to buying.
type EndActionPhase struct{}

// EndTurn ends the turn.
type EndTurn struct{}

// ChooseCards answers a ChooseFromHand or ChooseFromStaged order.
type ChooseCards struct {
	Indices []int `json:"indices"`
}

// GainFromBoard answers a ChooseFromBoard order.
type GainFromBoard struct {
	Card string `json:"card"`
}

func (PlayActionCard) DecisionKind() string { return "play_action_card" }
func (BuyCard) DecisionKind() string        { return "buy_card" }
func (EndActionPhase) DecisionKind() string { return "end_action_phase" }
func (EndTurn) DecisionKind() string        { return "end_turn" }
func (ChooseCards) DecisionKind() string    { return "choose_cards" }
func (GainFromBoard) DecisionKind() string  { return "gain_from_board" }

type kindJSON struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalDecision writes a decision with its kind, so it can be read back.
func MarshalDecision(d Decision) ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(kindJSON{d.DecisionKind(), data})
}

// UnmarshalDecision reads what MarshalDecision wrote.
func UnmarshalDecision(b []byte) (Decision, error) {
	var k *kindJSON
	if err := json.Unmarshal(b, &k); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, nil
	}

	var d Decision
	var err error
	switch k.Kind {
	case "play_action_card":
		var x PlayActionCard
		err = unmarshalData(k.Data, &x)
		d = x
	case "buy_card":
		var x BuyCard
		err = unmarshalData(k.Data, &x)
		d = x
	case "end_action_phase":
		d = EndActionPhase{}
	case "end_turn":
		d = EndTurn{}
	case "choose_cards":
		var x ChooseCards
		err = unmarshalData(k.Data, &x)
		d = x
	case "gain_from_board":
		var x GainFromBoard
		err = unmarshalData(k.Data, &x)
		d = x
	default:
		return nil, fmt.Errorf("unknown decision: %q", k.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decision %s: %w", k.Kind, err)
	}
	return d, nil
}

func unmarshalData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
