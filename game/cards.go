package game

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// CardType is a set of type flags, a card can be more than one thing.
type CardType uint8

const (
	Action CardType = 1 << iota
	Attack
	Reaction
	Treasure
	Victory
	Curse
)

var cardTypeNames = []struct {
	t    CardType
	name string
}{
	{Action, "action"},
	{Attack, "attack"},
	{Reaction, "reaction"},
	{Treasure, "treasure"},
	{Victory, "victory"},
	{Curse, "curse"},
}

// Has tells if all the flags in o are set.
func (t CardType) Has(o CardType) bool { return t&o == o && o != 0 }

// Any tells if any of the flags in o are set.
func (t CardType) Any(o CardType) bool { return t&o != 0 }

// Playable is true for cards that can be played in the action phase.
func (t CardType) Playable() bool { return t.Any(Action | Attack | Reaction) }

func (t CardType) String() string {
	var names []string
	for _, n := range cardTypeNames {
		if t&n.t != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseCardType reads a single type name, like "action".
func ParseCardType(s string) (CardType, error) {
	for _, n := range cardTypeNames {
		if n.name == strings.ToLower(s) {
			return n.t, nil
		}
	}
	return 0, fmt.Errorf("unknown card type: %q", s)
}

func (t CardType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *CardType) UnmarshalText(b []byte) error {
	var out CardType
	if len(b) > 0 {
		for _, s := range strings.Split(string(b), "|") {
			ct, err := ParseCardType(s)
			if err != nil {
				return err
			}
			out |= ct
		}
	}
	*t = out
	return nil
}

// Card is the static definition of a card.
type Card struct {
	ID       string   `json:"id"`
	Types    CardType `json:"types"`
	Cost     int      `json:"cost"`
	Treasure int      `json:"treasure,omitempty"`
	Points   int      `json:"points,omitempty"`
	Text     string   `json:"text,omitempty"`
	Effects  []Effect `json:"-"`
}

// cardData is a card as it is written in the data file, with unparsed codes.
type cardData struct {
	ID       string   `toml:"id"`
	Types    []string `toml:"types"`
	Cost     int      `toml:"cost"`
	Treasure int      `toml:"treasure"`
	Points   int      `toml:"points"`
	Kingdom  bool     `toml:"kingdom"`
	Text     string   `toml:"text"`
	Effects  []string `toml:"effects"`
}

type catalogData struct {
	Cards []cardData `toml:"card"`
}

// Catalog is the read-only registry of all cards.
type Catalog struct {
	cards   map[string]*Card
	kingdom []string
}

//go:embed cards.toml
var defaultCards []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog is the built in card set. It panics if the embedded data is
// broken, which cannot happen in a released build.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(bytes.NewReader(defaultCards))
		if err != nil {
			panic("bad cards.toml: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog reads a TOML card list.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var data catalogData
	if err := toml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse cards: %w", err)
	}

	c := &Catalog{cards: map[string]*Card{}}
	for _, cd := range data.Cards {
		if cd.ID == "" {
			return nil, fmt.Errorf("card without id")
		}
		if _, exists := c.cards[cd.ID]; exists {
			return nil, fmt.Errorf("card %s defined twice", cd.ID)
		}
		if cd.Cost < 0 {
			return nil, fmt.Errorf("card %s has negative cost", cd.ID)
		}

		card := &Card{
			ID:       cd.ID,
			Cost:     cd.Cost,
			Treasure: cd.Treasure,
			Points:   cd.Points,
			Text:     cd.Text,
		}
		for _, ts := range cd.Types {
			t, err := ParseCardType(ts)
			if err != nil {
				return nil, fmt.Errorf("card %s: %w", cd.ID, err)
			}
			card.Types |= t
		}
		for _, code := range cd.Effects {
			e, err := ParseEffect(code)
			if err != nil {
				return nil, fmt.Errorf("card %s: %w", cd.ID, err)
			}
			card.Effects = append(card.Effects, e)
		}

		c.cards[cd.ID] = card
		if cd.Kingdom {
			if !card.Types.Playable() {
				return nil, fmt.Errorf("kingdom card %s is not playable", cd.ID)
			}
			c.kingdom = append(c.kingdom, cd.ID)
		}
	}

	sort.Strings(c.kingdom)
	return c, nil
}

// Get finds a card by id.
func (c *Catalog) Get(id string) (*Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// Kingdom lists the ids of cards that can be chosen as kingdom cards.
func (c *Catalog) Kingdom() []string {
	out := make([]string, len(c.kingdom))
	copy(out, c.kingdom)
	return out
}

// All lists every card, sorted by cost and then id.
func (c *Catalog) All() []*Card {
	out := make([]*Card, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ValidateKingdom checks a game master's selection.
func (c *Catalog) ValidateKingdom(selected []string) error {
	if len(selected) != KingdomSize {
		return ErrWrongCardCount
	}
	seen := map[string]bool{}
	for _, id := range selected {
		if seen[id] {
			return ErrWrongCardCount
		}
		seen[id] = true
		card, ok := c.cards[id]
		if !ok || !card.Types.Playable() {
			return ErrInvalidCardType
		}
	}
	return nil
}

// Effect is a marker type for parsed card effects.
type Effect interface {
	effect()
}

type effectBase struct{}

func (effectBase) effect() {}

// EffectCards draws cards.
type EffectCards struct {
	effectBase
	N int
}

// EffectActions adds actions.
type EffectActions struct {
	effectBase
	N int
}

// EffectBuys adds buys.
type EffectBuys struct {
	effectBase
	N int
}

// EffectTreasure adds treasure to spend this turn.
type EffectTreasure struct {
	effectBase
	N int
}

// EffectOthersDraw makes every other player draw.
type EffectOthersDraw struct {
	effectBase
	N int
}

// EffectCurseOthers gives each other player a curse, unless they can react.
type EffectCurseOthers struct {
	effectBase
}

// EffectTrash asks to trash between Min and Max cards from hand.
type EffectTrash struct {
	effectBase
	Min, Max int
}

// EffectCellar asks to discard any number of cards, then draws as many.
type EffectCellar struct {
	effectBase
}

// EffectGain asks to gain a card from the board up to a cost.
type EffectGain struct {
	effectBase
	MaxCost int
	Filter  CardType
	ToHand  bool
}

// EffectUpgrade asks to trash a card from hand and then gain one costing up to
// Delta more. Filter limits both the trashed and the gained card.
type EffectUpgrade struct {
	effectBase
	Delta    int
	Filter   CardType
	ToHand   bool
	Optional bool
}

// EffectTopDeck asks to put a card from hand onto the draw pile.
type EffectTopDeck struct {
	effectBase
}

// EffectTrashFor trashes a named card from hand, if there is one, for treasure.
type EffectTrashFor struct {
	effectBase
	Card     string
	Treasure int
}

// EffectSentry looks at the top N cards, to trash, discard or put back.
type EffectSentry struct {
	effectBase
	N int
}

// EffectVassal discards the top card, and offers to play it if it's an action.
type EffectVassal struct {
	effectBase
}

// ParseEffect turns an effect code, like "cards:2", into a typed effect.
func ParseEffect(code string) (Effect, error) {
	ss := strings.Split(code, ":")
	args := ss[1:]

	num := func(i int) (int, error) {
		if i >= len(args) {
			return 0, fmt.Errorf("effect %q: missing argument %d", code, i)
		}
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return 0, fmt.Errorf("effect %q: %w", code, err)
		}
		return n, nil
	}
	flags := func(from int) (filter CardType, toHand, optional bool, err error) {
		for _, a := range args[from:] {
			switch a {
			case "hand":
				toHand = true
			case "may":
				optional = true
			default:
				t, err := ParseCardType(a)
				if err != nil {
					return 0, false, false, fmt.Errorf("effect %q: %w", code, err)
				}
				filter |= t
			}
		}
		return filter, toHand, optional, nil
	}

	switch ss[0] {
	case "cards":
		n, err := num(0)
		return EffectCards{N: n}, err
	case "actions":
		n, err := num(0)
		return EffectActions{N: n}, err
	case "buys":
		n, err := num(0)
		return EffectBuys{N: n}, err
	case "treasure":
		n, err := num(0)
		return EffectTreasure{N: n}, err
	case "othersdraw":
		n, err := num(0)
		return EffectOthersDraw{N: n}, err
	case "curseothers":
		return EffectCurseOthers{}, nil
	case "trash":
		min, err := num(0)
		if err != nil {
			return nil, err
		}
		max, err := num(1)
		if err != nil {
			return nil, err
		}
		if min > max {
			return nil, fmt.Errorf("effect %q: min above max", code)
		}
		return EffectTrash{Min: min, Max: max}, nil
	case "cellar":
		return EffectCellar{}, nil
	case "gain":
		n, err := num(0)
		if err != nil {
			return nil, err
		}
		filter, toHand, _, err := flags(1)
		return EffectGain{MaxCost: n, Filter: filter, ToHand: toHand}, err
	case "upgrade":
		n, err := num(0)
		if err != nil {
			return nil, err
		}
		filter, toHand, optional, err := flags(1)
		return EffectUpgrade{Delta: n, Filter: filter, ToHand: toHand, Optional: optional}, err
	case "topdeck":
		return EffectTopDeck{}, nil
	case "trashfor":
		if len(args) < 1 {
			return nil, fmt.Errorf("effect %q: missing card", code)
		}
		n, err := num(1)
		return EffectTrashFor{Card: args[0], Treasure: n}, err
	case "sentry":
		n, err := num(0)
		return EffectSentry{N: n}, err
	case "vassal":
		return EffectVassal{}, nil
	default:
		return nil, fmt.Errorf("unknown effect: %q", code)
	}
}
