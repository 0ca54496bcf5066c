package game

const (
	// KingdomSize is how many kingdom piles a game has.
	KingdomSize = 10
	// MinPlayers and MaxPlayers bound a game.
	MinPlayers = 2
	MaxPlayers = 4

	kingdomPileSize = 10
	// emptyPilesToEnd supply piles running out ends the game.
	emptyPilesToEnd = 3
	endPile         = "Province"
)

// SupplyPile is a stack of identical cards on the board.
type SupplyPile struct {
	Card  string `json:"card"`
	Count int    `json:"count"`
}

// Board is the shared supply and the trash.
type Board struct {
	Kingdom  []SupplyPile `json:"kingdom"`
	Treasure []SupplyPile `json:"treasure"`
	Victory  []SupplyPile `json:"victory"`
	Trash    Pile         `json:"trash"`
}

func newBoard(kingdom []string, players int) *Board {
	b := &Board{}
	for _, id := range kingdom {
		b.Kingdom = append(b.Kingdom, SupplyPile{id, kingdomPileSize})
	}

	b.Treasure = []SupplyPile{
		{"Copper", 60 - startingCopper*players},
		{"Silver", 40},
		{"Gold", 30},
	}

	victory := 8
	if players > 2 {
		victory = 12
	}
	b.Victory = []SupplyPile{
		{"Estate", victory},
		{"Duchy", victory},
		{"Province", victory},
		{"Curse", 10 * (players - 1)},
	}
	return b
}

func (b *Board) find(id string) *SupplyPile {
	for _, group := range [][]SupplyPile{b.Kingdom, b.Treasure, b.Victory} {
		for i := range group {
			if group[i].Card == id {
				return &group[i]
			}
		}
	}
	return nil
}

// Count is how many of a card are left, -1 if it's not on the board.
func (b *Board) Count(id string) int {
	if p := b.find(id); p != nil {
		return p.Count
	}
	return -1
}

// Available tells if a card can be taken.
func (b *Board) Available(id string) bool {
	return b.Count(id) > 0
}

// Take removes one card from its pile.
func (b *Board) Take(id string) error {
	p := b.find(id)
	if p == nil || p.Count <= 0 {
		return ErrCardNotAvailable
	}
	p.Count--
	return nil
}

// AddTrash keeps trashed cards.
func (b *Board) AddTrash(cards ...string) {
	b.Trash = append(b.Trash, cards...)
}

// EmptyPiles counts exhausted supply piles.
func (b *Board) EmptyPiles() int {
	n := 0
	for _, group := range [][]SupplyPile{b.Kingdom, b.Treasure, b.Victory} {
		for _, p := range group {
			if p.Count == 0 {
				n++
			}
		}
	}
	return n
}

// IsGameOver is true when the provinces are gone or enough piles are empty.
func (b *Board) IsGameOver() bool {
	return b.Count(endPile) == 0 || b.EmptyPiles() >= emptyPilesToEnd
}

// Piles lists every supply pile.
func (b *Board) Piles() []SupplyPile {
	var out []SupplyPile
	out = append(out, b.Kingdom...)
	out = append(out, b.Treasure...)
	out = append(out, b.Victory...)
	return out
}

func (b *Board) clone() Board {
	return Board{
		Kingdom:  append([]SupplyPile(nil), b.Kingdom...),
		Treasure: append([]SupplyPile(nil), b.Treasure...),
		Victory:  append([]SupplyPile(nil), b.Victory...),
		Trash:    b.Trash.clone(),
	}
}
