package translator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"github.com/imkonsowa/nearme-nli/models"
	"github.com/imkonsowa/nearme-nli/tables"
)

// ExampleQueries seed the few-shot examples of the prompt. Their outputs are
// produced by the rules translator so they always agree with the table.
var ExampleQueries = []string{
	"where can I find a pizza restaurant that should not be fast food",
	"Are there any trendy cafes nearby",
	"How far is it to the nearest museum",
	"Restaurant or cafe?",
	"restaurant or cafe, and free parking",
	"Place with free parking or free entrance?",
	"Just show me everything nearby",
	"What time is it?",
}

const filterSysPrompt = `You translate place-search questions for the NearMe map app into a JSON filter.

Lookup table {{ .table.Name }} (language {{ .table.Language }}).
Location types, key "lt" (id: name):
{{- range .table.LocationTypes }}
{{ .ID }}: {{ .Name }}
{{- end }}
Properties, key "st" (id: name):
{{- range .table.Subtypes }}
{{ .ID }}: {{ .Name }}
{{- end }}
Parking, key "pk":
{{- range .table.Parking }}
"{{ .Value }}": {{ .Name }}
{{- end }}
Price range, key "pr": [from, to] with 0 <= from <= to <= {{ .table.PriceMax }}.
My saved locations, key "ml": always [0].

Rules:
1. Only use ids and values listed above. Never invent new ones.
2. Questions about finding places are place searches, including ones starting with "where", "is there" or "are there".
3. Criteria the user wants go to "include", criteria they reject go to "exclude".
4. Several values of the same key go into one list, e.g. "lt": [693, 695]. Never repeat a key.
5. Alternatives joined by "or" go to the "or" map, everything else goes to the "and" map.
   When both appear, only the alternatives go to "or": "restaurant or cafe, and free parking" puts lt [693, 695] in "or" and st [205] in "and".
6. Leave out keys that are not used. Never write an empty list. The "or" and "and" maps are always present, even when empty.
7. Ignore distance words such as "nearby", "near me" or "how far".
8. If the user wants to see places without any criteria ("everything", "just show me", "show all places"), return the empty filter below.
9. If the question is not about finding places, return exactly UNKNOWN.
10. Return only the result, without explanations or code fences.

Empty filter:
{{ .skeleton }}

Examples:
{{- range .examples }}
Question: {{ .Query }}
Answer: {{ .Output }}
{{- end }}

Question: {{ .query }}
Answer:`

type Example struct {
	Query  string
	Output string
}

// Prompt renders the filter translation prompt for one table and output mode.
type Prompt struct {
	template prompts.PromptTemplate
	table    *tables.Table
	mode     models.OutputMode
	skeleton string
	examples []Example
}

func NewPrompt(table *tables.Table, mode models.OutputMode) (*Prompt, error) {
	skeleton, err := models.FilterTranslation(models.NewFilterObject()).Encode(mode)
	if err != nil {
		return nil, err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(skeleton), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent filter skeleton: %w", err)
	}

	rules := NewRules(table, mode)
	examples := make([]Example, 0, len(ExampleQueries))
	for _, q := range ExampleQueries {
		out, err := rules.Parse(q).Encode(mode)
		if err != nil {
			return nil, err
		}
		examples = append(examples, Example{Query: q, Output: out})
	}

	return &Prompt{
		template: prompts.NewPromptTemplate(filterSysPrompt, []string{"table", "skeleton", "examples", "query"}),
		table:    table,
		mode:     mode,
		skeleton: indented.String(),
		examples: examples,
	}, nil
}

func (p *Prompt) Examples() []Example {
	return p.examples
}

func (p *Prompt) Render(query string) (string, error) {
	out, err := p.template.Format(map[string]any{
		"table":    p.table,
		"skeleton": p.skeleton,
		"examples": p.examples,
		"query":    query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return out, nil
}
