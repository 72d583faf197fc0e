package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene/index"
)

func TestPhraseQueryExactMatch(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("body", "quick", index.Doc{ID: 1, Positions: []int32{0}}, 1.0)
	ix.add("body", "fox", index.Doc{ID: 1, Positions: []int32{1}}, 1.0)
	ix.add("body", "quick", index.Doc{ID: 2, Positions: []int32{5}}, 1.0)
	ix.add("body", "fox", index.Doc{ID: 2, Positions: []int32{9}}, 1.0)

	s := NewSearcher(ix)
	matches, err := s.Find(NewPhraseQuery("body", []string{"quick", "fox"}, 0), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, int32(1), matches[0].Doc)
}

func TestPhraseQuerySlopAllowsDrift(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("body", "quick", index.Doc{ID: 1, Positions: []int32{0}}, 1.0)
	ix.add("body", "fox", index.Doc{ID: 1, Positions: []int32{3}}, 1.0)

	s := NewSearcher(ix)

	exact, err := s.Find(NewPhraseQuery("body", []string{"quick", "fox"}, 0), -1)
	assert.NoError(t, err)
	assert.Len(t, exact, 0)

	sloppy, err := s.Find(NewPhraseQuery("body", []string{"quick", "fox"}, 2), -1)
	assert.NoError(t, err)
	assert.Len(t, sloppy, 1)
}

func TestPhraseQueryOptimizeSingleTermDelegatesToTerm(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("body", "quick", index.Doc{ID: 1, Freq: 1}, 1.0)
	q := NewPhraseQuery("body", []string{"quick"}, 0)
	opt, err := q.Optimize(ix)
	assert.NoError(t, err)
	_, isTerm := opt.(*TermQuery)
	assert.True(t, isTerm)
}

func TestPhraseQueryOptimizeEmptyTermsIsInsignificant(t *testing.T) {
	ix := newFakeIndex(10)
	q := NewPhraseQuery("body", nil, 0)
	opt, err := q.Optimize(ix)
	assert.NoError(t, err)
	_, isInsig := opt.(*Insignificant)
	assert.True(t, isInsig)
}
