package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	b := newBoard(testKingdom, 2)
	assert.Len(t, b.Kingdom, KingdomSize)
	for _, p := range b.Kingdom {
		assert.Equal(t, 10, p.Count)
	}
	assert.Equal(t, 46, b.Count("Copper"))
	assert.Equal(t, 40, b.Count("Silver"))
	assert.Equal(t, 30, b.Count("Gold"))
	assert.Equal(t, 8, b.Count("Province"))
	assert.Equal(t, 10, b.Count("Curse"))
	assert.Equal(t, -1, b.Count("Festival"))

	b = newBoard(testKingdom, 4)
	assert.Equal(t, 32, b.Count("Copper"))
	assert.Equal(t, 12, b.Count("Estate"))
	assert.Equal(t, 30, b.Count("Curse"))
}

func TestBoardTake(t *testing.T) {
	b := newBoard(testKingdom, 2)
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Take("Village"))
	}
	assert.ErrorIs(t, b.Take("Village"), ErrCardNotAvailable)
	assert.Equal(t, 0, b.Count("Village"))
	assert.ErrorIs(t, b.Take("Festival"), ErrCardNotAvailable)
}

func TestBoardGameOver(t *testing.T) {
	b := newBoard(testKingdom, 2)
	assert.False(t, b.IsGameOver())

	b.find("Province").Count = 0
	assert.True(t, b.IsGameOver())

	b = newBoard(testKingdom, 2)
	b.find("Village").Count = 0
	b.find("Smithy").Count = 0
	assert.False(t, b.IsGameOver())
	b.find("Curse").Count = 0
	assert.Equal(t, 3, b.EmptyPiles())
	assert.True(t, b.IsGameOver())
}
