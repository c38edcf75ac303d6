package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/ordgen/internal/audit"
	"github.com/appengine-ltd/ordgen/internal/catalog"
	"github.com/appengine-ltd/ordgen/internal/engine"
)

func fixture(t *testing.T) (*catalog.Catalog, []engine.Item) {
	t.Helper()
	cat, err := catalog.Load([]catalog.TraitSpec{
		{ID: 1, Category: "Background", Rank: 1, Name: "Blue", InscriptionID: "aaa"},
		{ID: 2, Category: "Background", Rank: 1, Name: "Red", InscriptionID: "bbb"},
		{ID: 3, Category: "Head", Rank: 2, Name: "Crown", InscriptionID: "ccc"},
		{ID: 4, Category: "Head", Rank: 2, Name: "none", None: true},
	})
	require.NoError(t, err)

	blue, _ := cat.Trait(1)
	crown, _ := cat.Trait(3)
	items := []engine.Item{
		{Choices: []engine.Choice{{Trait: blue}, {Trait: crown}}},
		{Choices: []engine.Choice{{Trait: blue}, {None: true}}},
	}
	return cat, items
}

func TestWriteCollectionOmitsNone(t *testing.T) {
	cat, items := fixture(t)
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, WriteCollection(path, items, cat))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	var records [][]Attribute
	require.NoError(t, json.Unmarshal(blob, &records))

	require.Len(t, records, 2)
	assert.Equal(t, []Attribute{
		{TraitType: "Background", Value: "Blue"},
		{TraitType: "Head", Value: "Crown"},
	}, records[0])
	assert.Equal(t, []Attribute{{TraitType: "Background", Value: "Blue"}}, records[1],
		"the none choice leaves no attribute behind")
}

func TestWriteTraitMapOnlyUsedTraits(t *testing.T) {
	cat, items := fixture(t)
	path := filepath.Join(t.TempDir(), "traits.json")
	require.NoError(t, WriteTraitMap(path, items, cat))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	var mapping map[string]map[string]string
	require.NoError(t, json.Unmarshal(blob, &mapping))

	assert.Equal(t, "aaa", mapping["Background"]["Blue"])
	assert.Equal(t, "ccc", mapping["Head"]["Crown"])
	_, redPresent := mapping["Background"]["Red"]
	assert.False(t, redPresent, "unused traits stay out of the association map")
}

func TestWriteStatsShape(t *testing.T) {
	cat, items := fixture(t)
	report := audit.Summarize(items, cat)
	result := engine.Result{Items: items, Status: engine.Completed}

	path := filepath.Join(t.TempDir(), "trait_usage_statistics.json")
	require.NoError(t, WriteStats(path, report, result))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(blob, &doc))

	assert.EqualValues(t, 2, doc["Total_inscriptions"])
	assert.Equal(t, "completed", doc["Outcome"])

	distribution, ok := doc["Trait_count_distribution"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1 inscriptions", distribution["1_traits"])
	assert.Equal(t, "1 inscriptions", distribution["2_traits"])

	usage, ok := doc["Traits_usage"].(map[string]any)
	require.True(t, ok)
	head, ok := usage["Head"].(map[string]any)
	require.True(t, ok)
	noneEntry, ok := head["none"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Used", noneEntry["none_status"])
	assert.Equal(t, "1 (50.00%)", noneEntry["usage"])
	assert.Equal(t, "equal", noneEntry["rarity_input"])
}
