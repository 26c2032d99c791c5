package title

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedFilename is returned when the filename contains characters
// outside the permitted unix-safe set (letters, digits, hyphen, underscore).
// The name is reported, not auto-corrected.
var ErrMalformedFilename = errors.New("filename contains characters outside the unix-safe set")

// Tokenizer splits unix-safe filenames into classified tokens. The
// abbreviation table is copied at construction and never mutated, so a
// single Tokenizer is safe for concurrent use.
type Tokenizer struct {
	abbrevs map[string]string
}

// NewTokenizer builds a Tokenizer around an abbreviation table mapping
// lowercase keys to their canonical display form (e.g. "dvd" -> "DVD").
// Pass nil for no expansions; [DefaultAbbreviations] holds the stock table.
func NewTokenizer(abbrevs map[string]string) *Tokenizer {
	t := &Tokenizer{abbrevs: make(map[string]string, len(abbrevs))}
	for k, v := range abbrevs {
		t.abbrevs[strings.ToLower(k)] = v
	}
	return t
}

// Tokenize splits raw (extension already stripped by the caller) on hyphens
// and underscores and classifies each segment. Consecutive separators
// collapse to a single boundary, so no empty tokens are produced. An empty
// input yields an empty Phrase and no error.
func (t *Tokenizer) Tokenize(raw string) (Phrase, error) {
	if err := validate(raw); err != nil {
		return Phrase{}, err
	}

	segments := strings.FieldsFunc(raw, isSeparator)
	if len(segments) == 0 {
		return Phrase{}, nil
	}

	tokens := make([]Token, 0, len(segments))
	for _, seg := range segments {
		tokens = append(tokens, t.classify(seg))
	}
	return Phrase{Tokens: tokens}, nil
}

// classify tags one segment. Known abbreviations win over the numeral check
// so a table entry like "3d" keeps its canonical form.
func (t *Tokenizer) classify(seg string) Token {
	if canon, ok := t.abbrevs[strings.ToLower(seg)]; ok {
		return Token{Raw: seg, Text: canon, Kind: KindAbbrev}
	}
	if allDigits(seg) {
		return Token{Raw: seg, Text: seg, Kind: KindNumeral}
	}
	// Ordinary words are lowercased here; the grammar checker re-cases them.
	return Token{Raw: seg, Text: strings.ToLower(seg), Kind: KindWord}
}

func isSeparator(r rune) bool { return r == '-' || r == '_' }

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// validate checks the unix-safe character set: ASCII letters, digits,
// hyphen, underscore.
func validate(raw string) error {
	for _, r := range raw {
		if isSeparator(r) {
			continue
		}
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			return fmt.Errorf("%w: %q", ErrMalformedFilename, raw)
		}
	}
	return nil
}
