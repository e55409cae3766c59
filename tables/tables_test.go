package tables

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/nearme-nli/models"
)

const customTable = `
name: custom-test
language: en
priceMax: 500
locationTypes:
  - {id: 10, name: restaurant, aliases: [restaurant]}
  - {id: 11, name: cafe, aliases: [cafe]}
subtypes:
  - {id: 20, name: Cheap, aliases: [cheap]}
parking:
  - {value: parkingSpaces, name: With parking, aliases: [with parking]}
myLocations:
  aliases: [my places]
`

func writeTable(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestBuiltinCanonicalTable(t *testing.T) {
	table, err := Builtin(DefaultTable)
	require.NoError(t, err)

	assert.Equal(t, "nearme-en-v1", table.Name)
	assert.Equal(t, "en", table.Language)
	assert.Len(t, table.LocationTypes, 58)
	assert.Len(t, table.Subtypes, 20)

	for id, name := range map[int]string{
		693: "restaurant",
		694: "fastFood",
		695: "cafe",
		715: "museum",
		779: "hairdresser",
	} {
		e, ok := table.LocationType(id)
		require.True(t, ok, id)
		assert.Equal(t, name, e.Name)
	}

	for id, name := range map[int]string{
		101: "Pizza",
		202: "Trendy",
		204: "Free entrance",
		205: "Free parking",
	} {
		e, ok := table.Subtype(id)
		require.True(t, ok, id)
		assert.Equal(t, name, e.Name)
	}

	_, ok := table.LocationType(105)
	assert.False(t, ok)
	_, ok = table.Subtype(693)
	assert.False(t, ok)

	assert.True(t, table.HasParking(models.ParkingSpaces))
	assert.True(t, table.HasParking(models.ParkingSpacesWithCharging))
	assert.False(t, table.HasParking("valet"))
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("nearme-xx-v9")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Contains(t, err.Error(), "nearme-en-v1")
}

func TestBuiltinNames(t *testing.T) {
	assert.Contains(t, BuiltinNames(), DefaultTable)
}

func TestPhrasesLongestFirst(t *testing.T) {
	table, err := Builtin(DefaultTable)
	require.NoError(t, err)

	phrases := table.Phrases()
	require.NotEmpty(t, phrases)
	for i := 1; i < len(phrases); i++ {
		assert.GreaterOrEqual(t, len(phrases[i-1].Words), len(phrases[i].Words))
	}

	var freeParking, parking *Phrase
	for i := range phrases {
		switch phrases[i].Text {
		case "free parking":
			freeParking = &phrases[i]
		case "parking":
			parking = &phrases[i]
		}
	}
	require.NotNil(t, freeParking)
	require.NotNil(t, parking)
	assert.Equal(t, models.KeySubtype, freeParking.Key)
	assert.Equal(t, 205, freeParking.ID)
	assert.Equal(t, models.KeyLocationType, parking.Key)
	assert.Equal(t, 710, parking.ID)
}

func TestPhraseTargets(t *testing.T) {
	table, err := Builtin(DefaultTable)
	require.NoError(t, err)

	byText := map[string]Phrase{}
	for _, ph := range table.Phrases() {
		byText[ph.Text] = ph
	}

	tests := []struct {
		text string
		want Phrase
	}{
		{"restaurant", Phrase{Key: models.KeyLocationType, ID: 693}},
		{"free parking", Phrase{Key: models.KeySubtype, ID: 205}},
		{"with parking", Phrase{Key: models.KeyParking, Value: models.ParkingSpaces}},
		{"my saved places", Phrase{Key: models.KeyMyLocations, ID: models.MyLocationsID}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ph, ok := byText[tt.text]
			require.True(t, ok)

			tt.want.Text = tt.text
			tt.want.Words = strings.Fields(tt.text)
			assert.Equal(t, tt.want, ph)
		})
	}
}

func TestNormalizeWords(t *testing.T) {
	assert.Equal(t, []string{"isnt", "it", "a", "child", "friendly", "café"}, NormalizeWords("Isn't it a Child-Friendly Café?"))
	assert.Equal(t, []string{"between", "100", "and", "500"}, NormalizeWords("between $100 and 500"))
	assert.Empty(t, NormalizeWords("  ?! "))
}

func TestSelect(t *testing.T) {
	t.Run("default builtin", func(t *testing.T) {
		table, err := Select("", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultTable, table.Name)
	})

	t.Run("external file", func(t *testing.T) {
		table, err := Select("custom-test", writeTable(t, customTable))
		require.NoError(t, err)
		assert.Equal(t, 500, table.PriceMax)
		e, ok := table.LocationType(11)
		require.True(t, ok)
		assert.Equal(t, "cafe", e.Name)
	})

	t.Run("name mismatch", func(t *testing.T) {
		_, err := Select("nearme-en-v1", writeTable(t, customTable))
		assert.ErrorIs(t, err, ErrUnknownTable)
	})

	t.Run("file may not shadow builtin", func(t *testing.T) {
		builtin, err := builtinFS.ReadFile("data/nearme-en-v1.yaml")
		require.NoError(t, err)
		_, err = Select("nearme-en-v1", writeTable(t, string(builtin)))
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Select("custom-test", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: "priceMax: 10\nlocationTypes:\n  - {id: 1, name: a, aliases: [a]}\n",
		},
		{
			name:    "non-positive price max",
			content: "name: x\npriceMax: 0\nlocationTypes:\n  - {id: 1, name: a, aliases: [a]}\n",
		},
		{
			name:    "duplicate location id",
			content: "name: x\npriceMax: 10\nlocationTypes:\n  - {id: 1, name: a, aliases: [a]}\n  - {id: 1, name: b, aliases: [b]}\n",
		},
		{
			name:    "phrase shared by two entries",
			content: "name: x\npriceMax: 10\nlocationTypes:\n  - {id: 1, name: a, aliases: [bar]}\n  - {id: 2, name: b, aliases: [bar]}\n",
		},
		{
			name:    "unknown parking value",
			content: "name: x\npriceMax: 10\nlocationTypes:\n  - {id: 1, name: a, aliases: [a]}\nparking:\n  - {value: valet, name: Valet, aliases: [valet]}\n",
		},
		{
			name:    "unknown field",
			content: "name: x\npriceMax: 10\ncolour: red\nlocationTypes:\n  - {id: 1, name: a, aliases: [a]}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}
