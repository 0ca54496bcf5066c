package game

import (
	"math/rand"
)

const (
	// HandSize is how many cards are drawn at the end of each turn.
	HandSize = 5

	startingCopper = 7
	startingEstate = 3
)

// Player is one player's cards and counters.
type Player struct {
	ID string

	Hand    Pile
	Draw    Pile
	Discard Pile
	Played  Pile
	Staged  Pile
	// Current is the card being resolved, or empty.
	Current string

	Actions  int
	Buys     int
	Treasure int
	Points   int

	cat *Catalog
	rng *rand.Rand
}

func newPlayer(id string, cat *Catalog, rng *rand.Rand) *Player {
	p := &Player{
		ID:  id,
		cat: cat,
		rng: rng,
	}
	for i := 0; i < startingCopper; i++ {
		p.Discard = append(p.Discard, "Copper")
	}
	for i := 0; i < startingEstate; i++ {
		p.Discard = append(p.Discard, "Estate")
	}
	p.resetCounters()
	p.DrawCards(HandSize)
	p.recount()
	return p
}

func (p *Player) resetCounters() {
	p.Actions = 1
	p.Buys = 1
	p.Treasure = 0
}

// refill moves the discard pile under the draw pile, shuffled. It's only
// called when the draw pile is empty.
func (p *Player) refill() bool {
	if len(p.Discard) == 0 {
		return false
	}
	p.Draw = append(p.Draw, p.Discard...)
	p.Discard = nil
	p.Draw.Shuffle(p.rng)
	return true
}

func (p *Player) takeTop() (string, bool) {
	if len(p.Draw) == 0 && !p.refill() {
		return "", false
	}
	var c string
	c, p.Draw = p.Draw.Take()
	return c, true
}

// DrawCards moves up to n cards from the draw pile to the hand, reshuffling
// the discard pile when the draw pile runs out. It returns how many it got.
func (p *Player) DrawCards(n int) int {
	got := 0
	for ; got < n; got++ {
		c, ok := p.takeTop()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, c)
	}
	return got
}

// Peek moves up to n cards from the draw pile into staged.
func (p *Player) Peek(n int) Pile {
	for i := 0; i < n; i++ {
		c, ok := p.takeTop()
		if !ok {
			break
		}
		p.Staged = append(p.Staged, c)
	}
	return p.Staged.clone()
}

// Unpeek puts all staged cards back on the draw pile, keeping their order.
func (p *Player) Unpeek() {
	p.Draw = append(p.Staged.clone(), p.Draw...)
	p.Staged = nil
}

// Gain adds a new card, to the hand or to the discard pile.
func (p *Player) Gain(id string, toHand bool) {
	if toHand {
		p.Hand = append(p.Hand, id)
	} else {
		p.Discard = append(p.Discard, id)
	}
	p.recount()
}

func (p *Player) source(from Source) *Pile {
	switch from {
	case FromHand:
		return &p.Hand
	case FromStaged:
		return &p.Staged
	}
	return nil
}

// take removes cards from the hand or staged cards.
func (p *Player) take(from Source, indices []int) (Pile, error) {
	src := p.source(from)
	if src == nil {
		return nil, ErrInvalidCardAccess
	}
	taken, rest, ok := src.Without(indices)
	if !ok {
		return nil, ErrInvalidCardAccess
	}
	*src = rest
	return taken, nil
}

// DiscardCards moves cards from the hand or staged cards to the discard pile.
func (p *Player) DiscardCards(from Source, indices []int) error {
	taken, err := p.take(from, indices)
	if err != nil {
		return err
	}
	p.Discard = append(p.Discard, taken...)
	return nil
}

// TrashCards removes cards from the hand or staged cards, returning them so
// the board can keep them.
func (p *Player) TrashCards(from Source, indices []int) (Pile, error) {
	taken, err := p.take(from, indices)
	if err != nil {
		return nil, err
	}
	p.recount()
	return taken, nil
}

// EndTurn puts everything that was out into the discard pile, draws a new
// hand and resets the counters.
func (p *Player) EndTurn() {
	p.Discard = append(p.Discard, p.Hand...)
	p.Discard = append(p.Discard, p.Played...)
	p.Discard = append(p.Discard, p.Staged...)
	if p.Current != "" {
		p.Discard = append(p.Discard, p.Current)
	}
	p.Hand, p.Played, p.Staged, p.Current = nil, nil, nil, ""
	p.resetCounters()
	p.DrawCards(HandSize)
}

// Owned lists every card the player has, wherever it is.
func (p *Player) Owned() Pile {
	var all Pile
	all = append(all, p.Hand...)
	all = append(all, p.Draw...)
	all = append(all, p.Discard...)
	all = append(all, p.Played...)
	all = append(all, p.Staged...)
	if p.Current != "" {
		all = append(all, p.Current)
	}
	return all
}

func (p *Player) recount() {
	points := 0
	for _, id := range p.Owned() {
		if card, ok := p.cat.Get(id); ok {
			points += card.Points
		}
	}
	p.Points = points
}

func (p *Player) handHas(t CardType) bool {
	for _, id := range p.Hand {
		if card, ok := p.cat.Get(id); ok && card.Types.Any(t) {
			return true
		}
	}
	return false
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:       p.ID,
		Hand:     p.Hand.clone(),
		DrawSize: len(p.Draw),
		Discard:  p.Discard.clone(),
		Played:   p.Played.clone(),
		Staged:   p.Staged.clone(),
		Current:  p.Current,
		Actions:  p.Actions,
		Buys:     p.Buys,
		Treasure: p.Treasure,
		Points:   p.Points,
	}
}

func (p *Player) enemyView() EnemyView {
	v := EnemyView{
		ID:          p.ID,
		HandSize:    len(p.Hand),
		DrawSize:    len(p.Draw),
		DiscardSize: len(p.Discard),
		Played:      p.Played.clone(),
		Current:     p.Current,
		Actions:     p.Actions,
		Buys:        p.Buys,
		Treasure:    p.Treasure,
		Points:      p.Points,
	}
	if n := len(p.Discard); n > 0 {
		v.DiscardTop = p.Discard[n-1]
	}
	return v
}
