package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrFixturesNotFound  = errors.New("FIXTURES_NOT_FOUND")
	ErrFixturesMalformed = errors.New("FIXTURES_MALFORMED")
)

// Fixture is one record of the fixture file. Input is a pointer so a missing
// input can be told apart from an empty query.
type Fixture struct {
	Input       *string         `json:"input"`
	Description string          `json:"description"`
	Expected    json.RawMessage `json:"expected_output"`

	// problem is set when the record could not be decoded.
	problem string
}

// SkipReason reports why the fixture is not sent to the translator.
func (f Fixture) SkipReason() (string, bool) {
	switch {
	case f.problem != "":
		return f.problem, true
	case f.Input == nil:
		return "Missing 'input' in test case definition.", true
	}

	return "", false
}

// ExpectedText returns the expected output for display. String values are
// shown as is, any other JSON value is compacted.
func (f Fixture) ExpectedText() (string, bool) {
	raw := bytes.TrimSpace(f.Expected)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw), true
	}

	return compact.String(), true
}

func (f Fixture) DescriptionText() string {
	if f.Description == "" {
		return "No description"
	}

	return f.Description
}

func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFixturesNotFound, path)
		}

		return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFixturesMalformed, path, err)
	}

	// A record that does not decode is skipped by the run, not fatal to it.
	fixtures := make([]Fixture, 0, len(records))
	for _, raw := range records {
		var f Fixture
		if err := json.Unmarshal(raw, &f); err != nil {
			f = Fixture{problem: fmt.Sprintf("Invalid test case definition: %v", err)}
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, nil
}
