package catalog_test

import (
	"testing"

	"github.com/glamweave/dyebudget/internal/infrastructure/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog_Loads(t *testing.T) {
	c, err := catalog.NewStaticCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, c.GetAll())

	d, ok := c.GetByID(1)
	require.True(t, ok)
	assert.Equal(t, "Snow White Dye", d.Name)

	byItem, ok := c.GetByItemID(d.ItemID)
	require.True(t, ok)
	assert.Equal(t, d.ID, byItem.ID)

	_, ok = c.GetByID(99999)
	assert.False(t, ok)
}

func TestColorDistance_Properties(t *testing.T) {
	c, err := catalog.NewStaticCatalog()
	require.NoError(t, err)

	assert.Zero(t, c.ColorDistance("#ffffff", "#ffffff"), "identical colors are zero distance")

	ab := c.ColorDistance("#e4dfd0", "#2b2923")
	ba := c.ColorDistance("#2b2923", "#e4dfd0")
	assert.InDelta(t, ab, ba, 1e-9, "distance is symmetric")
	assert.Positive(t, ab)

	near := c.ColorDistance("#e4dfd0", "#e1d5c2")
	far := c.ColorDistance("#e4dfd0", "#19263e")
	assert.Less(t, near, far, "similar colors score closer than dissimilar ones")
}

func TestColorDistance_UnparseableIsMaximal(t *testing.T) {
	c, err := catalog.NewStaticCatalog()
	require.NoError(t, err)

	assert.Greater(t, c.ColorDistance("nonsense", "#ffffff"), 1e10)
	assert.Greater(t, c.ColorDistance("#ffffff", "#ggg"), 1e10)
}

func TestCatalog_UniqueIDs(t *testing.T) {
	c, err := catalog.NewStaticCatalog()
	require.NoError(t, err)

	seenID := map[int]bool{}
	seenItem := map[int]bool{}
	for _, d := range c.GetAll() {
		assert.False(t, seenID[d.ID], "duplicate dye id %d", d.ID)
		assert.False(t, seenItem[d.ItemID], "duplicate item id %d", d.ItemID)
		seenID[d.ID] = true
		seenItem[d.ItemID] = true
	}
}
