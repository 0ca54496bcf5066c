package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	copper, ok := cat.Get("Copper")
	require.True(t, ok)
	assert.Equal(t, 0, copper.Cost)
	assert.Equal(t, 1, copper.Treasure)
	assert.True(t, copper.Types.Has(Treasure))

	witch, ok := cat.Get("Witch")
	require.True(t, ok)
	assert.True(t, witch.Types.Has(Action|Attack))
	assert.Equal(t, []Effect{EffectCards{N: 2}, EffectCurseOthers{}}, witch.Effects)

	mine, _ := cat.Get("Mine")
	assert.Equal(t, []Effect{EffectUpgrade{Delta: 3, Filter: Treasure, ToHand: true, Optional: true}}, mine.Effects)

	assert.Len(t, cat.Kingdom(), 18)
	assert.NotContains(t, cat.Kingdom(), "Province")

	all := cat.All()
	assert.Equal(t, "Copper", all[0].ID)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Cost, all[i].Cost)
	}
}

func TestValidateKingdom(t *testing.T) {
	cat := DefaultCatalog()

	assert.NoError(t, cat.ValidateKingdom(testKingdom))
	assert.ErrorIs(t, cat.ValidateKingdom(testKingdom[:9]), ErrWrongCardCount)

	dup := append([]string(nil), testKingdom[:9]...)
	dup = append(dup, testKingdom[0])
	assert.ErrorIs(t, cat.ValidateKingdom(dup), ErrWrongCardCount)

	bad := append([]string(nil), testKingdom[:9]...)
	bad = append(bad, "Gold")
	assert.ErrorIs(t, cat.ValidateKingdom(bad), ErrInvalidCardType)

	unknown := append([]string(nil), testKingdom[:9]...)
	unknown = append(unknown, "Dragon")
	assert.ErrorIs(t, cat.ValidateKingdom(unknown), ErrInvalidCardType)
}

func TestParseEffect(t *testing.T) {
	e, err := ParseEffect("gain:4:action:hand")
	require.NoError(t, err)
	assert.Equal(t, EffectGain{MaxCost: 4, Filter: Action, ToHand: true}, e)

	e, err = ParseEffect("trashfor:Copper:3")
	require.NoError(t, err)
	assert.Equal(t, EffectTrashFor{Card: "Copper", Treasure: 3}, e)

	for _, code := range []string{"", "fly", "cards", "cards:x", "trash:3:1", "gain:2:purple", "trashfor"} {
		_, err := ParseEffect(code)
		assert.Error(t, err, code)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader(`
[[card]]
id = "Thing"
types = ["action"]
effects = ["explode"]
`))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader(`
[[card]]
id = "Thing"
types = ["treasure"]
kingdom = true
`))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader(`
[[card]]
id = "Thing"
[[card]]
id = "Thing"
`))
	assert.Error(t, err)
}

func TestCardTypeText(t *testing.T) {
	ct := Action | Reaction
	b, err := ct.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "action|reaction", string(b))

	var back CardType
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, ct, back)

	assert.Error(t, back.UnmarshalText([]byte("action|nothing")))
}
