// Package analysis implements the token analyzers spec §1 names as an
// out-of-scope external collaborator, described only by the
// index.Analyzer/index.TokenStream interfaces the writer consumes:
// a whitespace splitter, a Unicode letter-aware word splitter, a
// lowercasing + stop-word filter, and a pass-through keyword analyzer.
package analysis

import (
	"strings"
	"unicode"

	"github.com/sajya/lucene/index"
)

// sliceTokenStream replays a pre-computed []token, the shape every
// analyzer in this package produces once its input is fully split.
type token struct {
	text     string
	position int32
}

type sliceTokenStream struct {
	tokens []token
	pos    int
}

func (ts *sliceTokenStream) Next() (string, int32, bool, error) {
	if ts.pos >= len(ts.tokens) {
		return "", 0, false, nil
	}
	t := ts.tokens[ts.pos]
	ts.pos++
	return t.text, t.position, true, nil
}

// KeywordAnalyzer treats the entire field value as one token, untouched.
// Appropriate for fields already indexed untokenized (document.NewKeywordField);
// harmless but redundant when applied there since the writer skips
// tokenization for untokenized fields regardless (spec §4.7).
type KeywordAnalyzer struct{}

func (KeywordAnalyzer) TokenStream(field, text string) (index.TokenStream, error) {
	return &sliceTokenStream{tokens: []token{{text: text, position: 0}}}, nil
}

// WhitespaceAnalyzer splits on Unicode whitespace only, preserving case
// and punctuation attached to words.
type WhitespaceAnalyzer struct{}

func (WhitespaceAnalyzer) TokenStream(field, text string) (index.TokenStream, error) {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	tokens := make([]token, len(words))
	for i, w := range words {
		tokens[i] = token{text: w, position: int32(i)}
	}
	return &sliceTokenStream{tokens: tokens}, nil
}

// SimpleAnalyzer lowercases and splits on any non-letter Unicode rune
// (spec §1 "word/... UTF-8 filters"), dropping punctuation and digits as
// token boundaries.
type SimpleAnalyzer struct{}

func (SimpleAnalyzer) TokenStream(field, text string) (index.TokenStream, error) {
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	tokens := make([]token, len(words))
	for i, w := range words {
		tokens[i] = token{text: strings.ToLower(w), position: int32(i)}
	}
	return &sliceTokenStream{tokens: tokens}, nil
}

// EnglishStopWords is Lucene's classic English stop-word set.
var EnglishStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// StopAnalyzer lowercases, splits on non-letters like SimpleAnalyzer, and
// drops stop words. Position numbers skip over removed words, preserving
// the original word gaps for phrase-query slop math (spec §1 "stop-word
// filters"; index.TokenStream "gaps allowed for stop-word removal").
type StopAnalyzer struct {
	Stop map[string]bool
}

// NewStopAnalyzer builds a StopAnalyzer over EnglishStopWords.
func NewStopAnalyzer() *StopAnalyzer { return &StopAnalyzer{Stop: EnglishStopWords} }

func (a *StopAnalyzer) TokenStream(field, text string) (index.TokenStream, error) {
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	var tokens []token
	for i, w := range words {
		lower := strings.ToLower(w)
		if a.Stop[lower] {
			continue
		}
		tokens = append(tokens, token{text: lower, position: int32(i)})
	}
	return &sliceTokenStream{tokens: tokens}, nil
}

var (
	_ index.Analyzer = KeywordAnalyzer{}
	_ index.Analyzer = WhitespaceAnalyzer{}
	_ index.Analyzer = SimpleAnalyzer{}
	_ index.Analyzer = (*StopAnalyzer)(nil)
)
