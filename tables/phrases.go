package tables

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/imkonsowa/nearme-nli/models"
)

// Phrase is one alias of a table entry, normalized to lower-case words.
type Phrase struct {
	Text  string
	Words []string
	Key   models.FilterKey
	ID    int
	Value string
}

func (p Phrase) label() string {
	if p.Key == models.KeyParking {
		return p.Value
	}
	if p.Key == models.KeyMyLocations {
		return "myLocations"
	}

	return strconv.Itoa(p.ID)
}

// Phrases lists every alias of the table, longest first. Ties keep table order.
func (t *Table) Phrases() []Phrase {
	var out []Phrase
	add := func(alias string, p Phrase) {
		words := NormalizeWords(alias)
		if len(words) == 0 {
			return
		}
		p.Words = words
		p.Text = strings.Join(words, " ")
		out = append(out, p)
	}

	for _, e := range t.LocationTypes {
		for _, a := range e.Aliases {
			add(a, Phrase{Key: models.KeyLocationType, ID: e.ID})
		}
	}
	for _, e := range t.Subtypes {
		for _, a := range e.Aliases {
			add(a, Phrase{Key: models.KeySubtype, ID: e.ID})
		}
	}
	for _, e := range t.Parking {
		for _, a := range e.Aliases {
			add(a, Phrase{Key: models.KeyParking, Value: e.Value})
		}
	}
	for _, a := range t.MyLocations.Aliases {
		add(a, Phrase{Key: models.KeyMyLocations, ID: models.MyLocationsID})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Words) > len(out[j].Words)
	})

	return out
}

// NormalizeWords lower-cases s and splits it into words of letters and digits.
// Apostrophes are dropped so "isn't" becomes "isnt".
func NormalizeWords(s string) []string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "").Replace(s)

	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
