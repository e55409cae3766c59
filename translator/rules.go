package translator

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/imkonsowa/nearme-nli/models"
	"github.com/imkonsowa/nearme-nli/tables"
)

var (
	numericRange = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	numberSuffix = regexp.MustCompile(`(\d+)([a-z]+)`)
)

var negations = map[string]bool{
	"not": true, "no": true, "without": true, "except": true, "excluding": true,
	"exclude": true, "isnt": true, "arent": true, "dont": true, "doesnt": true,
	"shouldnt": true, "wont": true, "never": true, "neither": true, "nor": true,
}

// listNegations negate a list of criteria joined by "and".
var listNegations = map[string]bool{
	"except": true, "excluding": true, "exclude": true, "without": true, "no": true,
}

var conjunctions = map[string]bool{
	"and": true, "but": true, "plus": true, "also": true,
}

var clauseMarkers = map[string]bool{
	"that": true, "which": true, "who": true, "where": true, "while": true,
}

var disjunctions = map[string]bool{
	"or": true, "nor": true,
}

// intentWords mark a query as a place search even when it names no criteria.
var intentWords = map[string]bool{
	"everything": true, "anything": true, "show": true, "whatever": true,
	"everywhere": true, "place": true, "places": true, "spot": true, "spots": true,
	"venue": true, "venues": true, "location": true, "locations": true, "somewhere": true,
	"nearby": true, "near": true, "nearest": true, "closest": true,
	"around": true, "where": true, "find": true, "map": true, "visit": true,
}

var upperBoundWords = [][]string{
	{"under"}, {"below"}, {"max"}, {"maximum"}, {"less", "than"}, {"cheaper", "than"},
	{"lower", "than"}, {"up", "to"}, {"at", "most"},
}

var lowerBoundWords = [][]string{
	{"over"}, {"above"}, {"min"}, {"minimum"}, {"more", "than"}, {"at", "least"}, {"from"},
}

var currencyWords = map[string]bool{
	"kr": true, "nok": true, "sek": true, "dkk": true, "usd": true, "eur": true, "gbp": true,
	"dollar": true, "dollars": true, "euro": true, "euros": true, "crowns": true, "kroner": true,
}

// link is the strongest connective seen between two consecutive criteria.
type link int

const (
	linkNone link = iota
	linkComma
	linkAnd
	linkOr
)

type criterion struct {
	key     models.FilterKey
	id      int
	value   string
	from    int
	to      int
	exclude bool
}

// Rules is the deterministic translator: the same query and table always give
// the same output.
type Rules struct {
	table   *tables.Table
	phrases []tables.Phrase
	mode    models.OutputMode
}

func NewRules(table *tables.Table, mode models.OutputMode) *Rules {
	return &Rules{
		table:   table,
		phrases: table.Phrases(),
		mode:    mode,
	}
}

func (r *Rules) Name() string {
	return "rules/" + r.table.Name
}

func (r *Rules) Translate(_ context.Context, query string) (Result, error) {
	out, err := r.Parse(query).Encode(r.mode)
	if err != nil {
		return nil, err
	}

	return Completed{Text: out}, nil
}

func (r *Rules) Parse(query string) models.Translation {
	tokens := tokenize(query)

	var (
		criteria []criterion
		links    []link
		pending  = linkNone
		intent   bool
		neg      negation
	)

	add := func(c criterion) {
		c.exclude = neg.active
		if neg.active {
			neg.criteria++
		}
		links = append(links, pending)
		criteria = append(criteria, c)
		pending = linkNone
	}

	for i := 0; i < len(tokens); {
		tok := tokens[i]

		if c, n, ok := r.matchPrice(tokens, i); ok {
			add(c)
			i += n
			continue
		}

		if c, n, ok := r.matchPhrase(tokens[i:]); ok {
			add(c)
			i += n
			continue
		}

		if tok == "without" {
			neg.start(tok)
			// "without X" reads as "not with X"
			rest := append([]string{"with"}, tokens[i+1:]...)
			if c, n, ok := r.matchPhrase(rest); ok && n > 1 {
				add(c)
				i += n
				continue
			}
			i++
			continue
		}

		switch {
		case tok == ",":
			pending = max(pending, linkComma)
			// a comma ends a negation that has not reached a criterion yet
			if neg.criteria == 0 {
				neg.reset()
			}
		case tok == ".":
			pending = max(pending, linkAnd)
			neg.reset()
		case disjunctions[tok]:
			pending = linkOr
		case conjunctions[tok]:
			pending = max(pending, linkAnd)
			if !(tok == "and" && neg.continuesList() && r.startsCriterion(tokens, i+1)) {
				neg.reset()
			}
		}

		if clauseMarkers[tok] {
			neg.reset()
		}
		if negations[tok] {
			neg.start(tok)
		}
		if intentWords[tok] {
			intent = true
		}

		i++
	}

	// Properties and prices alone ("how late is it") are not a place search.
	if !intent && !anchored(criteria) {
		return models.UnknownTranslation()
	}
	if len(criteria) == 0 {
		return models.FilterTranslation(models.NewFilterObject())
	}

	return models.FilterTranslation(build(criteria, links))
}

// negation tracks the exclude polarity while scanning a query.
type negation struct {
	active   bool
	list     bool
	criteria int
}

func (n *negation) start(marker string) {
	n.active = true
	n.list = listNegations[marker]
	n.criteria = 0
}

func (n *negation) reset() {
	*n = negation{}
}

// continuesList reports whether an "and" extends the negated list, as in
// "except fast food and bars".
func (n *negation) continuesList() bool {
	return n.active && n.list && n.criteria > 0
}

func anchored(criteria []criterion) bool {
	for _, c := range criteria {
		switch c.key {
		case models.KeyLocationType, models.KeyParking, models.KeyMyLocations:
			return true
		}
	}

	return false
}

func (r *Rules) startsCriterion(tokens []string, i int) bool {
	if i >= len(tokens) {
		return false
	}
	if _, _, ok := r.matchPrice(tokens, i); ok {
		return true
	}
	_, _, ok := r.matchPhrase(tokens[i:])

	return ok
}

// build places every criterion in its polarity group. Criteria chained with
// "or" (and commas leading into such a chain) go to the group's or map, the
// rest to its and map.
func build(criteria []criterion, links []link) models.FilterObject {
	n := len(criteria)
	inOr := make([]bool, n)

	for k := 1; k < n; k++ {
		if links[k] == linkOr && criteria[k-1].exclude == criteria[k].exclude {
			inOr[k-1], inOr[k] = true, true
		}
	}
	for k := n - 2; k >= 0; k-- {
		if links[k+1] == linkComma && inOr[k+1] && criteria[k].exclude == criteria[k+1].exclude {
			inOr[k] = true
		}
	}

	f := models.NewFilterObject()
	for k, c := range criteria {
		group := &f.Include
		if c.exclude {
			group = &f.Exclude
		}

		values := &group.And
		if inOr[k] {
			values = &group.Or
		}

		switch c.key {
		case models.KeyLocationType:
			values.AddLocationType(c.id)
		case models.KeySubtype:
			values.AddSubtype(c.id)
		case models.KeyParking:
			values.AddParking(c.value)
		case models.KeyMyLocations:
			values.SetMyLocations()
		case models.KeyPriceRange:
			values.SetPriceRange(c.from, c.to)
		}
	}

	return f
}

func (r *Rules) matchPhrase(tokens []string) (criterion, int, bool) {
	for _, ph := range r.phrases {
		if len(ph.Words) > len(tokens) {
			continue
		}

		matched := true
		for j, w := range ph.Words {
			if !wordMatches(tokens[j], w) {
				matched = false
				break
			}
		}
		if matched {
			return criterion{key: ph.Key, id: ph.ID, value: ph.Value}, len(ph.Words), true
		}
	}

	return criterion{}, 0, false
}

// wordMatches compares a query token to a table word, accepting plurals.
func wordMatches(tok, word string) bool {
	if tok == word {
		return true
	}

	switch {
	case strings.HasSuffix(tok, "ies") && strings.TrimSuffix(tok, "ies")+"y" == word:
		return true
	case strings.HasSuffix(tok, "es") && strings.TrimSuffix(tok, "es") == word:
		return true
	case strings.HasSuffix(tok, "s") && strings.TrimSuffix(tok, "s") == word:
		return true
	}

	return false
}

func (r *Rules) matchPrice(tokens []string, i int) (criterion, int, bool) {
	// between N and M / from N to M
	if tokens[i] == "between" || tokens[i] == "from" {
		sep := "and"
		if tokens[i] == "from" {
			sep = "to"
		}
		if from, j, ok := number(tokens, i+1); ok && j < len(tokens) && tokens[j] == sep {
			if to, k, ok := number(tokens, j+1); ok {
				return r.priceCriterion(from, to), k - i, true
			}
		}
	}

	// N to M
	if from, j, ok := number(tokens, i); ok && j < len(tokens) && tokens[j] == "to" {
		if to, k, ok := number(tokens, j+1); ok {
			return r.priceCriterion(from, to), k - i, true
		}
	}

	for _, words := range upperBoundWords {
		if hasWordsAt(tokens, i, words) {
			if to, k, ok := number(tokens, i+len(words)); ok {
				return r.priceCriterion(0, to), k - i, true
			}
		}
	}

	for _, words := range lowerBoundWords {
		if hasWordsAt(tokens, i, words) {
			if from, k, ok := number(tokens, i+len(words)); ok {
				return r.priceCriterion(from, r.table.PriceMax), k - i, true
			}
		}
	}

	return criterion{}, 0, false
}

// priceCriterion orders the bounds and caps both at the table maximum.
func (r *Rules) priceCriterion(from, to int) criterion {
	if from > to {
		from, to = to, from
	}
	from = min(from, r.table.PriceMax)
	to = min(to, r.table.PriceMax)

	return criterion{key: models.KeyPriceRange, from: from, to: to}
}

func hasWordsAt(tokens []string, i int, words []string) bool {
	if i+len(words) > len(tokens) {
		return false
	}
	for j, w := range words {
		if tokens[i+j] != w {
			return false
		}
	}

	return true
}

// number reads a non-negative integer at i, skipping one trailing currency word.
// It returns the index after the number.
func number(tokens []string, i int) (int, int, bool) {
	if i >= len(tokens) {
		return 0, i, false
	}

	n, err := strconv.Atoi(tokens[i])
	if err != nil || n < 0 {
		return 0, i, false
	}

	i++
	if i < len(tokens) && currencyWords[tokens[i]] {
		i++
	}

	return n, i, true
}

// tokenize lower-cases the query and splits it into words, numbers and the
// separators "," (list) and "." (sentence).
func tokenize(query string) []string {
	q := strings.ToLower(query)
	q = strings.NewReplacer("'", "", "’", "").Replace(q)
	q = numericRange.ReplaceAllString(q, "$1 to $2")
	q = numberSuffix.ReplaceAllString(q, "$1 $2")

	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range q {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case r == ',' || r == ';':
			flush()
			tokens = append(tokens, ",")
		case r == '.' || r == '!' || r == '?':
			flush()
			tokens = append(tokens, ".")
		default:
			flush()
		}
	}
	flush()

	return tokens
}
