// Package title turns unix-safe filenames into display titles: a tokenizer
// splits the name into classified tokens and a grammar checker applies an
// ordered rule pass to produce the corrected phrase plus advisory issues.
package title

import "strings"

// TokenKind classifies a single filename token.
type TokenKind int

const (
	KindWord    TokenKind = iota // Ordinary word, cased by the grammar checker.
	KindAbbrev                   // Known abbreviation/acronym; canonical form is authoritative.
	KindNumeral                  // All digits; never altered.
)

// Token is one word extracted from the raw filename. Raw preserves the
// segment exactly as it appeared; Text is the current display form.
type Token struct {
	Raw  string
	Text string
	Kind TokenKind
}

// Phrase is an ordered token sequence. The assembled string form is always
// derived from the tokens, never stored separately.
type Phrase struct {
	Tokens []Token
}

// String joins the display form of every token with single spaces.
func (p Phrase) String() string {
	if len(p.Tokens) == 0 {
		return ""
	}
	parts := make([]string, len(p.Tokens))
	for i, t := range p.Tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the phrase carries no tokens ("no title available").
func (p Phrase) Empty() bool { return len(p.Tokens) == 0 }
