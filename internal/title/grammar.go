package title

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule identifiers recorded on emitted issues.
const (
	RuleTitleCase        = "title-case"
	RuleSentenceBoundary = "sentence-boundary"
	RuleAmbiguousCasing  = "ambiguous-casing"
)

// Issue records a single grammar correction (or, for ambiguous-casing, a
// token surfaced for manual review). An empty issue list from Check means
// the phrase passed unmodified.
type Issue struct {
	Position  int
	Rule      string
	Original  string
	Corrected string
}

// Checker applies the fixed-order casing rule pass. The small-word set is
// copied at construction; Check has no hidden state, so identical input
// always yields identical output and issues.
type Checker struct {
	smallWords map[string]bool
}

// NewChecker builds a Checker around the given small-word list (articles,
// short prepositions and conjunctions kept lowercase mid-phrase). Pass nil
// for none; [DefaultSmallWords] is the stock list.
func NewChecker(smallWords []string) *Checker {
	c := &Checker{smallWords: make(map[string]bool, len(smallWords))}
	for _, w := range smallWords {
		c.smallWords[strings.ToLower(w)] = true
	}
	return c
}

// grammarRule is one pure pass over the phrase. Rules run in table order;
// each may rewrite tokens and emit issues for the tokens it changed.
type grammarRule struct {
	Name  string
	Apply func(c *Checker, p Phrase) (Phrase, []Issue)
}

// rules is the ordered rule table. Abbreviation bypass and numeral
// passthrough are enforced inside each casing pass (only KindWord tokens
// are ever touched), so they need no pass of their own.
var rules = []grammarRule{
	{RuleTitleCase, (*Checker).titleCaseRule},
	{RuleSentenceBoundary, (*Checker).sentenceBoundaryRule},
	{RuleAmbiguousCasing, (*Checker).ambiguousCasingRule},
}

// Check runs the rule table over the phrase and returns the corrected
// phrase plus every issue emitted. The input phrase is not mutated.
func (c *Checker) Check(p Phrase) (Phrase, []Issue) {
	out := Phrase{Tokens: append([]Token(nil), p.Tokens...)}
	var issues []Issue
	for _, r := range rules {
		var emitted []Issue
		out, emitted = r.Apply(c, out)
		issues = append(issues, emitted...)
	}
	return out, issues
}

// titleCaseRule capitalizes ordinary words. Small words stay lowercase
// unless they open or close the phrase. Tokens whose original casing is
// ambiguous are left for the ambiguous-casing rule.
func (c *Checker) titleCaseRule(p Phrase) (Phrase, []Issue) {
	var issues []Issue
	last := len(p.Tokens) - 1
	for i, tok := range p.Tokens {
		if tok.Kind != KindWord || ambiguousCase(tok.Raw) {
			continue
		}

		want := capitalize(tok.Text)
		if c.smallWords[strings.ToLower(tok.Text)] && i != 0 && i != last {
			want = strings.ToLower(tok.Text)
		}
		if want == tok.Text {
			continue
		}

		issues = append(issues, Issue{
			Position: i, Rule: RuleTitleCase,
			Original: tok.Text, Corrected: want,
		})
		p.Tokens[i].Text = want
	}
	return p, issues
}

// sentenceBoundaryRule guarantees the opening token is capitalized even if
// a custom small-word policy left it lowercase.
func (c *Checker) sentenceBoundaryRule(p Phrase) (Phrase, []Issue) {
	if len(p.Tokens) == 0 {
		return p, nil
	}
	tok := p.Tokens[0]
	if tok.Kind != KindWord || ambiguousCase(tok.Raw) {
		return p, nil
	}
	want := capitalize(tok.Text)
	if want == tok.Text {
		return p, nil
	}
	p.Tokens[0].Text = want
	return p, []Issue{{
		Position: 0, Rule: RuleSentenceBoundary,
		Original: tok.Text, Corrected: want,
	}}
}

// ambiguousCasingRule restores the original spelling of tokens with mixed
// casing that matches no known pattern (e.g. "McDonalds") and flags them
// for manual review instead of guessing. Emits only when the token actually
// changes, which keeps Check idempotent.
func (c *Checker) ambiguousCasingRule(p Phrase) (Phrase, []Issue) {
	var issues []Issue
	for i, tok := range p.Tokens {
		if tok.Kind != KindWord || !ambiguousCase(tok.Raw) || tok.Text == tok.Raw {
			continue
		}
		issues = append(issues, Issue{
			Position: i, Rule: RuleAmbiguousCasing,
			Original: tok.Text, Corrected: tok.Raw,
		})
		p.Tokens[i].Text = tok.Raw
	}
	return p, issues
}

// ambiguousCase reports whether raw mixes upper and lower case in a way no
// casing rule can normalize: not all-lower, not all-upper, and not a plain
// initial capital.
func ambiguousCase(raw string) bool {
	lower := strings.ToLower(raw)
	upper := strings.ToUpper(raw)
	if raw == lower || raw == upper || raw == capitalize(lower) {
		return false
	}
	return true
}

// capitalize upper-cases the first letter and leaves the rest untouched.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
