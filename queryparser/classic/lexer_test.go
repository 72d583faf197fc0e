package classic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lexAll(s string) []token {
	l := newLexer(s)
	var toks []token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.kind == tEOF {
			return toks
		}
	}
}

func TestLexerBasicWords(t *testing.T) {
	toks := lexAll("go lucene")
	assert.Equal(t, tWord, toks[0].kind)
	assert.Equal(t, "go", toks[0].text)
	assert.Equal(t, tWord, toks[1].kind)
	assert.Equal(t, "lucene", toks[1].text)
	assert.Equal(t, tEOF, toks[2].kind)
}

func TestLexerFieldModifiersAndBoost(t *testing.T) {
	toks := lexAll(`title:+go -rust^2`)
	kinds := make([]tokenKind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	assert.Equal(t, []tokenKind{
		tWord, tColon, tPlus, tWord, tMinus, tWord, tCaret, tNumber, tEOF,
	}, kinds)
}

func TestLexerPhraseWithEscape(t *testing.T) {
	toks := lexAll(`"a \"b\" c"~2`)
	assert.Equal(t, tPhrase, toks[0].kind)
	assert.Equal(t, `a "b" c`, toks[0].text)
	assert.Equal(t, tTilde, toks[1].kind)
	assert.Equal(t, tNumber, toks[2].kind)
	assert.Equal(t, "2", toks[2].text)
}

func TestLexerRangeAndKeywords(t *testing.T) {
	toks := lexAll("[a TO z} AND NOT b OR c")
	kinds := make([]tokenKind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	assert.Equal(t, []tokenKind{
		tLBracket, tWord, tTo, tWord, tRBrace,
		tAnd, tNot, tWord, tOr, tWord, tEOF,
	}, kinds)
}

func TestIsNumber(t *testing.T) {
	assert.True(t, isNumber("12"))
	assert.True(t, isNumber("1.5"))
	assert.True(t, isNumber("-3"))
	assert.False(t, isNumber(""))
	assert.False(t, isNumber("abc"))
	assert.False(t, isNumber("1.2.3"))
}
