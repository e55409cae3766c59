package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/imkonsowa/nearme-nli/models"
	"github.com/imkonsowa/nearme-nli/tables"
)

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

type Report struct {
	Valid    bool     `json:"valid"`
	Sentinel bool     `json:"sentinel"`
	Problems []string `json:"problems,omitempty"`
}

func (r Report) String() string {
	switch {
	case r.Valid && r.Sentinel:
		return "valid (UNKNOWN)"
	case r.Valid:
		return "valid"
	}

	return "invalid: " + strings.Join(r.Problems, "; ")
}

// Validator checks raw translator output against the filter schema of one
// output mode and against one lookup table.
type Validator struct {
	mode   models.OutputMode
	table  *tables.Table
	schema *gojsonschema.Schema
}

func NewValidator(mode models.OutputMode, table *tables.Table) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(SchemaFor(mode)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter schema: %w", err)
	}

	return &Validator{
		mode:   mode,
		table:  table,
		schema: schema,
	}, nil
}

func (v *Validator) Mode() models.OutputMode {
	return v.mode
}

// Normalize trims whitespace and a surrounding markdown code fence.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	return raw
}

func (v *Validator) Validate(raw string) Report {
	doc := Normalize(raw)
	if doc == models.Unknown {
		return Report{Valid: true, Sentinel: true}
	}
	if doc == "" {
		return Report{Problems: []string{"empty output"}}
	}

	if err := singleValue(doc); err != nil {
		return Report{Problems: []string{err.Error()}}
	}

	result, err := v.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return Report{Problems: []string{fmt.Sprintf("not valid JSON: %v", err)}}
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}

		return Report{Problems: problems}
	}

	translation, err := models.Decode(doc, v.mode)
	if err != nil {
		return Report{Problems: []string{err.Error()}}
	}

	filter, _ := translation.Filter()
	problems := v.checkTable(filter)

	return Report{
		Valid:    len(problems) == 0,
		Problems: problems,
	}
}

func (v *Validator) checkTable(f models.FilterObject) []string {
	var problems []string
	check := func(path string, values models.FilterValues) {
		for _, id := range values.LocationTypes {
			if _, ok := v.table.LocationType(id); !ok {
				problems = append(problems, fmt.Sprintf("%s.lt: id %d is not in table %s", path, id, v.table.Name))
			}
		}
		for _, id := range values.Subtypes {
			if _, ok := v.table.Subtype(id); !ok {
				problems = append(problems, fmt.Sprintf("%s.st: id %d is not in table %s", path, id, v.table.Name))
			}
		}
		if len(values.PriceRange) == 2 && values.PriceRange[0] > values.PriceRange[1] {
			problems = append(problems, fmt.Sprintf("%s.pr: from %d is greater than to %d", path, values.PriceRange[0], values.PriceRange[1]))
		}
		if len(values.PriceRange) == 2 && values.PriceRange[1] > v.table.PriceMax {
			problems = append(problems, fmt.Sprintf("%s.pr: to %d is above the table maximum %d", path, values.PriceRange[1], v.table.PriceMax))
		}
		for _, pk := range values.Parking {
			if !v.table.HasParking(pk) {
				problems = append(problems, fmt.Sprintf("%s.pk: %q is not in table %s", path, pk, v.table.Name))
			}
		}
	}

	check("include.or", f.Include.Or)
	check("include.and", f.Include.And)
	check("exclude.or", f.Exclude.Or)
	check("exclude.and", f.Exclude.And)

	return problems
}

// singleValue fails unless doc holds exactly one JSON value.
func singleValue(doc string) error {
	dec := json.NewDecoder(strings.NewReader(doc))

	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("not valid JSON: %v", err)
	}
	if err := models.EnsureEnd(dec); err != nil {
		return fmt.Errorf("not valid JSON: %v", err)
	}

	return nil
}
