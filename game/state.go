package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Phase is where the current player is in their turn.
type Phase int

const (
	ActionPhase Phase = iota
	BuyPhase
	PlayingActionCard
)

var phaseNames = []string{"action", "buy", "playing"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", b)
}

// pendingOrder is an order with what to do with the answer. resolve must not
// change anything if it returns an error.
type pendingOrder struct {
	PendingOrder
	resolve func(p *Player, d Decision) error
}

// GameState is one running game. It is not safe for concurrent use, the
// owner serialises access.
type GameState struct {
	cat     *Catalog
	board   *Board
	players map[string]*Player
	order   []string
	current int
	phase   Phase
	over    bool
	rng     *rand.Rand

	// effects still to run for the card being played
	resolving []Effect
	// message that started the current play
	origin  string
	pending map[string][]*pendingOrder
}

// NewGameState sets up a game for players, in turn order, with the kingdom
// cards the game master picked.
func NewGameState(cat *Catalog, players []string, kingdom []string, seed int64) (*GameState, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, ErrPlayerCountMismatch
	}
	if err := cat.ValidateKingdom(kingdom); err != nil {
		return nil, err
	}

	g := &GameState{
		cat:     cat,
		board:   newBoard(kingdom, len(players)),
		players: map[string]*Player{},
		rng:     rand.New(rand.NewSource(seed)),
		pending: map[string][]*pendingOrder{},
	}
	for _, id := range players {
		if _, exists := g.players[id]; exists {
			return nil, ErrDuplicatePlayer
		}
		g.players[id] = newPlayer(id, cat, g.rng)
		g.order = append(g.order, id)
	}
	return g, nil
}

// Phase is the current phase.
func (g *GameState) Phase() Phase { return g.phase }

// CurrentPlayer is whose turn it is.
func (g *GameState) CurrentPlayer() string { return g.order[g.current] }

// Players is the turn order.
func (g *GameState) Players() []string { return append([]string(nil), g.order...) }

// Board is the live board.
func (g *GameState) Board() *Board { return g.board }

// Player finds a player, for inspection.
func (g *GameState) Player(id string) (*Player, bool) {
	p, ok := g.players[id]
	return p, ok
}

// IsGameOver is true once a turn has ended with the board in an end state.
// After that, nothing can change.
func (g *GameState) IsGameOver() bool { return g.over }

// PendingOrder is the order a player has to answer next.
func (g *GameState) PendingOrder(player string) (PendingOrder, bool) {
	q := g.pending[player]
	if len(q) == 0 {
		return PendingOrder{}, false
	}
	return q[0].PendingOrder, true
}

// TryBuy buys a card for a player. Either everything happens or nothing does.
func (g *GameState) TryBuy(player, card string) error {
	p, ok := g.players[player]
	if !ok {
		return ErrUnknownPlayer
	}
	if g.phase == PlayingActionCard {
		return ErrOutOfPhase
	}
	if p.Buys <= 0 {
		return ErrOutOfBuys
	}
	def, ok := g.cat.Get(card)
	if !ok {
		return ErrCardNotAvailable
	}
	if p.Treasure < def.Cost {
		return ErrInsufficientFunds
	}
	if err := g.board.Take(card); err != nil {
		return err
	}

	p.Treasure -= def.Cost
	p.Buys--
	p.Gain(card, false)
	return nil
}

// TryPlay starts playing an action card from the hand or staged cards. On
// success the card is being played, and the effects have to be resolved.
// Playing with no actions left moves on to the buy phase.
func (g *GameState) TryPlay(player string, index int, from Source, claimed string) error {
	p, ok := g.players[player]
	if !ok {
		return ErrUnknownPlayer
	}
	src := p.source(from)
	if src == nil {
		return ErrInvalidCardAccess
	}

	id := claimed
	if id == "" {
		if index < 0 || index >= len(*src) {
			return ErrInvalidCardAccess
		}
		id = (*src)[index]
	}
	def, ok := g.cat.Get(id)
	if !ok || !def.Types.Playable() {
		return ErrInvalidCardType
	}
	if g.phase != ActionPhase {
		return ErrOutOfPhase
	}
	if p.Current != "" {
		return ErrAlreadyPlaying
	}
	if p.Actions <= 0 {
		g.forceSwitchPhase()
		return ErrOutOfActions
	}
	if index < 0 || index >= len(*src) || (*src)[index] != id {
		return ErrInvalidCardAccess
	}

	if _, err := p.take(from, []int{index}); err != nil {
		return err
	}
	p.Actions--
	p.Current = id
	g.phase = PlayingActionCard
	return nil
}

// forceSwitchPhase moves to the next phase, which from buying is the end of
// the turn.
func (g *GameState) forceSwitchPhase() error {
	switch g.phase {
	case ActionPhase:
		g.enterBuyPhase()
	case BuyPhase:
		g.EndTurn()
	case PlayingActionCard:
		return ErrOutOfPhase
	}
	return nil
}

// maybeSwitchPhase moves on when there is nothing left to do.
func (g *GameState) maybeSwitchPhase() {
	p := g.players[g.CurrentPlayer()]
	if g.phase == ActionPhase && p.Actions <= 0 {
		g.enterBuyPhase()
	}
	if g.phase == BuyPhase && p.Buys <= 0 {
		g.EndTurn()
	}
}

// enterBuyPhase plays all the treasure in hand.
func (g *GameState) enterBuyPhase() {
	p := g.players[g.CurrentPlayer()]
	var keep Pile
	for _, id := range p.Hand {
		def, ok := g.cat.Get(id)
		if ok && def.Types.Has(Treasure) {
			p.Treasure += def.Treasure
			p.Played = append(p.Played, id)
			continue
		}
		keep = append(keep, id)
	}
	p.Hand = keep
	g.phase = BuyPhase
}

// EndTurn cleans up the current player and moves on to the next.
func (g *GameState) EndTurn() {
	p := g.players[g.CurrentPlayer()]
	p.EndTurn()
	delete(g.pending, p.ID)
	g.resolving = nil
	g.origin = ""

	g.current = (g.current + 1) % len(g.order)
	g.phase = ActionPhase
	g.over = g.board.IsGameOver()
}

// ApplyDecision is the one place where player decisions come in. messageID
// is the id of the message carrying the decision, inResponseTo must be the
// order id when answering an order.
func (g *GameState) ApplyDecision(player string, d Decision, messageID, inResponseTo string) error {
	if g.over {
		return ErrGameOver
	}
	p, ok := g.players[player]
	if !ok {
		return ErrUnknownPlayer
	}

	switch d := d.(type) {
	case ChooseCards, GainFromBoard:
		return g.answer(p, d, inResponseTo)
	}

	if player != g.CurrentPlayer() {
		return ErrNotYourTurn
	}

	switch d := d.(type) {
	case PlayActionCard:
		if err := g.TryPlay(player, d.Index, d.From, d.Card); err != nil {
			return err
		}
		def, _ := g.cat.Get(p.Current)
		g.resolving = append([]Effect(nil), def.Effects...)
		g.origin = messageID
		g.resolve()
		return nil
	case BuyCard:
		if err := g.checkBuy(p, d.Card); err != nil {
			return err
		}
		if g.phase == ActionPhase {
			g.enterBuyPhase()
		}
		if err := g.TryBuy(player, d.Card); err != nil {
			return err
		}
		g.maybeSwitchPhase()
		return nil
	case EndActionPhase:
		if g.phase != ActionPhase {
			return ErrOutOfPhase
		}
		g.enterBuyPhase()
		return nil
	case EndTurn:
		if g.phase == PlayingActionCard {
			return ErrOutOfPhase
		}
		g.EndTurn()
		return nil
	default:
		return ErrBadRequest
	}
}

// checkBuy checks a buy before anything changes, counting treasure in hand
// if it would be played on the way to the buy phase.
func (g *GameState) checkBuy(p *Player, card string) error {
	if g.phase == PlayingActionCard {
		return ErrOutOfPhase
	}
	if p.Buys <= 0 {
		return ErrOutOfBuys
	}
	def, ok := g.cat.Get(card)
	if !ok {
		return ErrCardNotAvailable
	}
	funds := p.Treasure
	if g.phase == ActionPhase {
		for _, id := range p.Hand {
			if c, ok := g.cat.Get(id); ok && c.Types.Has(Treasure) {
				funds += c.Treasure
			}
		}
	}
	if funds < def.Cost {
		return ErrInsufficientFunds
	}
	if !g.board.Available(card) {
		return ErrCardNotAvailable
	}
	return nil
}

// answer resolves the player's first pending order.
func (g *GameState) answer(p *Player, d Decision, inResponseTo string) error {
	q := g.pending[p.ID]
	if len(q) == 0 {
		return ErrNoPendingOrder
	}
	head := q[0]
	if inResponseTo != head.ID {
		return ErrOrderMismatch
	}
	if err := head.resolve(p, d); err != nil {
		return err
	}
	// resolve may have added more
	g.pending[p.ID] = g.pending[p.ID][1:]
	g.resolve()
	return nil
}

func (g *GameState) push(player string, o Order, resolve func(p *Player, d Decision) error) {
	g.pending[player] = append(g.pending[player], &pendingOrder{
		PendingOrder: PendingOrder{ID: uuid.NewString(), Origin: g.origin, Order: o},
		resolve:      resolve,
	})
}

// resolve runs effects until one needs an answer, or there are none left, in
// which case the card has been played.
func (g *GameState) resolve() {
	if g.phase != PlayingActionCard {
		return
	}
	p := g.players[g.CurrentPlayer()]
	for len(g.pending[p.ID]) == 0 {
		if len(g.resolving) == 0 {
			g.finishPlay(p)
			return
		}
		e := g.resolving[0]
		g.resolving = g.resolving[1:]
		g.runEffect(p, e)
	}
}

func (g *GameState) finishPlay(p *Player) {
	p.Played = append(p.Played, p.Current)
	p.Current = ""
	g.origin = ""
	g.phase = ActionPhase
	g.maybeSwitchPhase()
}

// Results are the scores, best first. Ties keep turn order.
func (g *GameState) Results() []PlayerResult {
	var out []PlayerResult
	for _, id := range g.order {
		p := g.players[id]
		p.recount()
		out = append(out, PlayerResult{PlayerID: id, Points: p.Points})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// GetReducedState is what one player is allowed to see.
func (g *GameState) GetReducedState(player string) (*ReducedState, error) {
	p, ok := g.players[player]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	rs := &ReducedState{
		Board:         g.board.clone(),
		Phase:         g.phase,
		CurrentPlayer: g.CurrentPlayer(),
		Player:        p.view(),
		GameOver:      g.over,
	}
	for _, id := range g.order {
		if id == player {
			continue
		}
		rs.Enemies = append(rs.Enemies, g.players[id].enemyView())
	}
	if po, ok := g.PendingOrder(player); ok {
		rs.PendingOrder = &po
	}
	return rs, nil
}
