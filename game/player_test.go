package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPlayer() *Player {
	return newPlayer("Max", DefaultCatalog(), rand.New(rand.NewSource(1)))
}

func TestNewPlayer(t *testing.T) {
	p := newTestPlayer()
	assert.Len(t, p.Hand, HandSize)
	assert.Len(t, p.Draw, 5)
	assert.Empty(t, p.Discard)
	assert.Equal(t, 1, p.Actions)
	assert.Equal(t, 1, p.Buys)
	assert.Equal(t, 0, p.Treasure)
	assert.Equal(t, 3, p.Points)

	owned := p.Owned()
	assert.Equal(t, 7, owned.Count("Copper"))
	assert.Equal(t, 3, owned.Count("Estate"))
}

func TestDrawReshuffles(t *testing.T) {
	p := newTestPlayer()
	p.Hand, p.Draw, p.Discard = nil, Pile{"Gold"}, Pile{"Silver", "Silver"}

	assert.Equal(t, 3, p.DrawCards(5))
	assert.Equal(t, "Gold", p.Hand[0])
	assert.Equal(t, 2, p.Hand.Count("Silver"))
	assert.Empty(t, p.Draw)
	assert.Empty(t, p.Discard)
}

func TestPeekUnpeek(t *testing.T) {
	p := newTestPlayer()
	p.Draw = Pile{"Gold", "Silver", "Copper"}

	assert.Equal(t, Pile{"Gold", "Silver"}, p.Peek(2))
	assert.Equal(t, Pile{"Copper"}, p.Draw)

	p.Unpeek()
	assert.Empty(t, p.Staged)
	assert.Equal(t, Pile{"Gold", "Silver", "Copper"}, p.Draw)
}

func TestDiscardAndTrash(t *testing.T) {
	p := newTestPlayer()
	p.Hand = Pile{"Estate", "Copper", "Estate"}
	p.Draw, p.Discard = nil, nil

	assert.ErrorIs(t, p.DiscardCards(FromHand, []int{0, 0}), ErrInvalidCardAccess)
	assert.ErrorIs(t, p.DiscardCards(FromHand, []int{3}), ErrInvalidCardAccess)
	assert.Len(t, p.Hand, 3)

	trashed, err := p.TrashCards(FromHand, []int{2, 0})
	assert.NoError(t, err)
	assert.Equal(t, Pile{"Estate", "Estate"}, trashed)
	assert.Equal(t, Pile{"Copper"}, p.Hand)
	assert.Equal(t, 0, p.Points)

	assert.NoError(t, p.DiscardCards(FromHand, []int{0}))
	assert.Equal(t, Pile{"Copper"}, p.Discard)
}

func TestPlayerEndTurn(t *testing.T) {
	p := newTestPlayer()
	before := len(p.Owned())
	p.Played = Pile{p.Hand[0]}
	p.Hand = p.Hand[1:]
	p.Actions, p.Buys, p.Treasure = 0, 0, 4

	p.EndTurn()
	assert.Len(t, p.Hand, HandSize)
	assert.Empty(t, p.Played)
	assert.Equal(t, before, len(p.Owned()))
	assert.Equal(t, 1, p.Actions)
	assert.Equal(t, 1, p.Buys)
	assert.Equal(t, 0, p.Treasure)
}
