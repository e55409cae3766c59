package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	FilterVersion = 1

	// Unknown is emitted instead of a filter when a query has no place-search intent.
	Unknown = "UNKNOWN"

	ParkingSpaces             = "parkingSpaces"
	ParkingSpacesWithCharging = "parkingSpacesWithCharging"

	// MyLocationsID is a marker, not an ID from a lookup table.
	MyLocationsID = 0
)

type OutputMode string

const (
	ModeEnvelope OutputMode = "envelope"
	ModeBare     OutputMode = "bare"
)

func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEnvelope:
		return ModeEnvelope, nil
	case ModeBare:
		return ModeBare, nil
	}

	return "", fmt.Errorf("unknown output mode %q", s)
}

var ErrMalformedFilter = errors.New("MALFORMED_FILTER")

// EnsureEnd fails when anything other than whitespace follows the value just
// read from dec.
func EnsureEnd(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected content after the JSON value")
	}

	return nil
}

// FilterValues holds the criteria of one and/or map. Unused keys are nil and are
// left out of the encoded JSON.
type FilterValues struct {
	LocationTypes []int    `json:"lt,omitempty"`
	Subtypes      []int    `json:"st,omitempty"`
	PriceRange    []int    `json:"pr,omitempty"`
	Parking       []string `json:"pk,omitempty"`
	MyLocations   []int    `json:"ml,omitempty"`
}

func (v FilterValues) IsEmpty() bool {
	return len(v.LocationTypes) == 0 &&
		len(v.Subtypes) == 0 &&
		len(v.PriceRange) == 0 &&
		len(v.Parking) == 0 &&
		len(v.MyLocations) == 0
}

type FilterGroup struct {
	Or  FilterValues `json:"or"`
	And FilterValues `json:"and"`
}

func (g FilterGroup) IsEmpty() bool {
	return g.Or.IsEmpty() && g.And.IsEmpty()
}

type FilterObject struct {
	Version int         `json:"version"`
	Include FilterGroup `json:"include"`
	Exclude FilterGroup `json:"exclude"`
}

func NewFilterObject() FilterObject {
	return FilterObject{Version: FilterVersion}
}

func (f FilterObject) IsEmpty() bool {
	return f.Include.IsEmpty() && f.Exclude.IsEmpty()
}

// Envelope is the "current + saved" wrapper used by the envelope output mode.
// Saved entries are opaque to this package.
type Envelope struct {
	Current FilterObject      `json:"current"`
	Saved   []json.RawMessage `json:"saved"`
}

func NewEnvelope(f FilterObject) Envelope {
	return Envelope{
		Current: f,
		Saved:   []json.RawMessage{},
	}
}

// Translation is the result of translating one query: either the UNKNOWN
// sentinel or a filter object, never both.
type Translation struct {
	unknown bool
	filter  FilterObject
	saved   []json.RawMessage
}

func UnknownTranslation() Translation {
	return Translation{unknown: true}
}

func FilterTranslation(f FilterObject) Translation {
	return Translation{filter: f}
}

func (t Translation) IsUnknown() bool {
	return t.unknown
}

// Filter returns the filter object and false for the UNKNOWN sentinel.
func (t Translation) Filter() (FilterObject, bool) {
	if t.unknown {
		return FilterObject{}, false
	}

	return t.filter, true
}

// Saved returns the saved entries decoded from an envelope, if any.
func (t Translation) Saved() []json.RawMessage {
	return t.saved
}

func (t Translation) Encode(mode OutputMode) (string, error) {
	if t.unknown {
		return Unknown, nil
	}

	var payload interface{}
	switch mode {
	case ModeEnvelope:
		env := NewEnvelope(t.filter)
		if t.saved != nil {
			env.Saved = t.saved
		}
		payload = env
	case ModeBare:
		payload = t.filter
	default:
		return "", fmt.Errorf("unknown output mode %q", mode)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter: %w", err)
	}

	return string(data), nil
}

func (t Translation) String() string {
	s, err := t.Encode(ModeBare)
	if err != nil {
		return err.Error()
	}

	return s
}

// Decode parses raw output in the given mode. Structural checks beyond what is
// needed to decode belong to the validation package.
func Decode(raw string, mode OutputMode) (Translation, error) {
	raw = strings.TrimSpace(raw)
	if raw == Unknown {
		return UnknownTranslation(), nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	switch mode {
	case ModeEnvelope:
		var env Envelope
		if err := dec.Decode(&env); err != nil {
			return Translation{}, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
		}
		if err := EnsureEnd(dec); err != nil {
			return Translation{}, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
		}
		if env.Saved == nil {
			return Translation{}, fmt.Errorf("%w: missing saved list", ErrMalformedFilter)
		}
		if env.Current.Version != FilterVersion {
			return Translation{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedFilter, env.Current.Version)
		}

		t := FilterTranslation(env.Current)
		if len(env.Saved) > 0 {
			t.saved = env.Saved
		}

		return t, nil
	case ModeBare:
		var f FilterObject
		if err := dec.Decode(&f); err != nil {
			return Translation{}, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
		}
		if err := EnsureEnd(dec); err != nil {
			return Translation{}, fmt.Errorf("%w: %v", ErrMalformedFilter, err)
		}
		if f.Version != FilterVersion {
			return Translation{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedFilter, f.Version)
		}

		return FilterTranslation(f), nil
	}

	return Translation{}, fmt.Errorf("unknown output mode %q", mode)
}
