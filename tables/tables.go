package tables

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/imkonsowa/nearme-nli/models"
)

// DefaultTable is the table used when the configuration does not name one.
const DefaultTable = "nearme-en-v1"

var (
	ErrUnknownTable = errors.New("UNKNOWN_TABLE")
	ErrInvalidTable = errors.New("INVALID_TABLE")
)

//go:embed data/*.yaml
var builtinFS embed.FS

type Entry struct {
	ID      int      `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

type ParkingEntry struct {
	Value   string   `yaml:"value" json:"value"`
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

type MyLocations struct {
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// Table is one closed, versioned identifier table. Tables are read-only once
// loaded and are never merged with each other.
type Table struct {
	Name          string         `yaml:"name" json:"name"`
	Language      string         `yaml:"language" json:"language"`
	Description   string         `yaml:"description" json:"description,omitempty"`
	PriceMax      int            `yaml:"priceMax" json:"priceMax"`
	LocationTypes []Entry        `yaml:"locationTypes" json:"locationTypes"`
	Subtypes      []Entry        `yaml:"subtypes" json:"subtypes"`
	Parking       []ParkingEntry `yaml:"parking" json:"parking"`
	MyLocations   MyLocations    `yaml:"myLocations" json:"myLocations"`

	locationTypes map[int]Entry
	subtypes      map[int]Entry
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.UnmarshalWithOptions(data, &t, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.index()

	return &t, nil
}

func LoadFile(filePath string) (*Table, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	return t, nil
}

// Builtin returns a fresh copy of a table embedded in the binary.
func Builtin(name string) (*Table, error) {
	data, err := builtinFS.ReadFile(path.Join("data", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTable, name, strings.Join(BuiltinNames(), ", "))
	}

	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if t.Name != name {
		return nil, fmt.Errorf("%w: embedded file %q declares name %q", ErrInvalidTable, name, t.Name)
	}

	return t, nil
}

func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("data")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)

	return names
}

// Select resolves the table to use. With an external file the file must declare
// the requested name, and it may not shadow a built-in table.
func Select(name, filePath string) (*Table, error) {
	if name == "" {
		name = DefaultTable
	}
	if filePath == "" {
		return Builtin(name)
	}

	t, err := LoadFile(filePath)
	if err != nil {
		return nil, err
	}
	if t.Name != name {
		return nil, fmt.Errorf("%w: %s declares table %q, configuration selects %q", ErrUnknownTable, filePath, t.Name, name)
	}
	for _, builtin := range BuiltinNames() {
		if builtin == t.Name {
			return nil, fmt.Errorf("%w: %s redefines built-in table %q", ErrInvalidTable, filePath, t.Name)
		}
	}

	return t, nil
}

func (t *Table) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTable)
	}
	if t.PriceMax <= 0 {
		return fmt.Errorf("%w: priceMax must be positive", ErrInvalidTable)
	}
	if len(t.LocationTypes) == 0 {
		return fmt.Errorf("%w: no location types", ErrInvalidTable)
	}

	if err := checkIDs("locationTypes", t.LocationTypes); err != nil {
		return err
	}
	if err := checkIDs("subtypes", t.Subtypes); err != nil {
		return err
	}

	for _, p := range t.Parking {
		if p.Value != models.ParkingSpaces && p.Value != models.ParkingSpacesWithCharging {
			return fmt.Errorf("%w: unknown parking value %q", ErrInvalidTable, p.Value)
		}
	}

	owners := make(map[string]string)
	for _, ph := range t.Phrases() {
		owner := fmt.Sprintf("%s:%s", ph.Key, ph.label())
		if prev, ok := owners[ph.Text]; ok && prev != owner {
			return fmt.Errorf("%w: phrase %q used by %s and %s", ErrInvalidTable, ph.Text, prev, owner)
		}
		owners[ph.Text] = owner
	}

	return nil
}

func checkIDs(section string, entries []Entry) error {
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.ID < 0 {
			return fmt.Errorf("%w: %s: negative id %d", ErrInvalidTable, section, e.ID)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %s: duplicate id %d", ErrInvalidTable, section, e.ID)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: %s: id %d has no name", ErrInvalidTable, section, e.ID)
		}
		seen[e.ID] = true
	}

	return nil
}

func (t *Table) index() {
	t.locationTypes = make(map[int]Entry, len(t.LocationTypes))
	for _, e := range t.LocationTypes {
		t.locationTypes[e.ID] = e
	}

	t.subtypes = make(map[int]Entry, len(t.Subtypes))
	for _, e := range t.Subtypes {
		t.subtypes[e.ID] = e
	}
}

func (t *Table) LocationType(id int) (Entry, bool) {
	e, ok := t.locationTypes[id]
	return e, ok
}

func (t *Table) Subtype(id int) (Entry, bool) {
	e, ok := t.subtypes[id]
	return e, ok
}

func (t *Table) HasParking(value string) bool {
	for _, p := range t.Parking {
		if p.Value == value {
			return true
		}
	}

	return false
}
