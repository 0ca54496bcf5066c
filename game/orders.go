package game

import (
	"encoding/json"
	"fmt"
)

// Choice is what happens to chosen cards.
type Choice string

const (
	ChoiceTrash   Choice = "trash"
	ChoiceDiscard Choice = "discard"
	ChoiceTopDeck Choice = "topdeck"
	ChoicePlay    Choice = "play"
)

// Order is something the server needs a player to decide, while a card is
// being played.
type Order interface {
	OrderKind() string
}

// ChooseFromHand asks for between Min and Max cards from the hand. Filter, if
// set, limits which cards can be chosen.
type ChooseFromHand struct {
	Min    int      `json:"min"`
	Max    int      `json:"max"`
	Choice Choice   `json:"choice"`
	Filter CardType `json:"filter,omitempty"`
}

// ChooseFromStaged asks for between Min and Max of the staged cards, which
// are listed in Cards.
type ChooseFromStaged struct {
	Min    int      `json:"min"`
	Max    int      `json:"max"`
	Choice Choice   `json:"choice"`
	Cards  []string `json:"cards"`
}

// ChooseFromBoard asks for a card to gain, costing up to MaxCost.
type ChooseFromBoard struct {
	MaxCost int      `json:"max_cost"`
	Filter  CardType `json:"filter,omitempty"`
	ToHand  bool     `json:"to_hand,omitempty"`
}

func (ChooseFromHand) OrderKind() string   { return "choose_from_hand" }
func (ChooseFromStaged) OrderKind() string { return "choose_from_staged" }
func (ChooseFromBoard) OrderKind() string  { return "choose_from_board" }

// PendingOrder is an order waiting for an answer. ID is what the answer must
// be in response to, Origin is the message that played the card.
type PendingOrder struct {
	ID     string
	Origin string
	Order  Order
}

type pendingOrderJSON struct {
	ID     string          `json:"id"`
	Origin string          `json:"origin,omitempty"`
	Kind   string          `json:"kind"`
	Data   json.RawMessage `json:"data"`
}

func (po PendingOrder) MarshalJSON() ([]byte, error) {
	if po.Order == nil {
		return nil, fmt.Errorf("pending order %s has no order", po.ID)
	}
	data, err := json.Marshal(po.Order)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pendingOrderJSON{po.ID, po.Origin, po.Order.OrderKind(), data})
}

func (po *PendingOrder) UnmarshalJSON(b []byte) error {
	var j pendingOrderJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	o, err := unmarshalOrder(j.Kind, j.Data)
	if err != nil {
		return err
	}
	*po = PendingOrder{ID: j.ID, Origin: j.Origin, Order: o}
	return nil
}

func unmarshalOrder(kind string, data json.RawMessage) (Order, error) {
	var o Order
	var err error
	switch kind {
	case "choose_from_hand":
		var x ChooseFromHand
		err = unmarshalData(data, &x)
		o = x
	case "choose_from_staged":
		var x ChooseFromStaged
		err = unmarshalData(data, &x)
		o = x
	case "choose_from_board":
		var x ChooseFromBoard
		err = unmarshalData(data, &x)
		o = x
	default:
		return nil, fmt.Errorf("unknown order: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", kind, err)
	}
	return o, nil
}
