package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene/index"
)

func TestWildcardMatch(t *testing.T) {
	assert.True(t, wildcardMatch("te?t", "test"))
	assert.False(t, wildcardMatch("te?t", "teast"))
	assert.True(t, wildcardMatch("te*", "test"))
	assert.True(t, wildcardMatch("te*", "te"))
	assert.True(t, wildcardMatch("*st", "test"))
	assert.False(t, wildcardMatch("te*t", "tes"))
}

func buildPatternFixture() *fakeIndex {
	ix := newFakeIndex(10)
	ix.add("body", "test", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("body", "testing", index.Doc{ID: 2, Freq: 1}, 1.0)
	ix.add("body", "rust", index.Doc{ID: 3, Freq: 1}, 1.0)
	return ix
}

func TestWildcardQueryRewritesToMatchingTerms(t *testing.T) {
	ix := buildPatternFixture()
	q := NewWildcardQuery("body", "test*")
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	bq, ok := rewritten.(*BooleanQuery)
	assert.True(t, ok)
	assert.Len(t, bq.Clauses, 2)
}

func TestPrefixQueryRewritesToMatchingTerms(t *testing.T) {
	ix := buildPatternFixture()
	q := NewPrefixQuery("body", "test")
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	bq, ok := rewritten.(*BooleanQuery)
	assert.True(t, ok)
	assert.Len(t, bq.Clauses, 2)
}

func TestRangeQueryInclusiveBounds(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("year", "2020", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("year", "2021", index.Doc{ID: 2, Freq: 1}, 1.0)
	ix.add("year", "2022", index.Doc{ID: 3, Freq: 1}, 1.0)

	q := NewRangeQuery("year", "2020", "2021", true, true)
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	bq := rewritten.(*BooleanQuery)
	assert.Len(t, bq.Clauses, 2)
}

func TestRangeQueryExclusiveUpperBound(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("year", "2020", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("year", "2021", index.Doc{ID: 2, Freq: 1}, 1.0)

	q := NewRangeQuery("year", "2020", "2021", true, false)
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	bq := rewritten.(*BooleanQuery)
	assert.Len(t, bq.Clauses, 1)
}

func TestFuzzyQueryMatchesWithinThreshold(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("body", "test", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("body", "tempest", index.Doc{ID: 2, Freq: 1}, 1.0)

	q := NewFuzzyQuery("body", "test", 0.7)
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	bq := rewritten.(*BooleanQuery)
	assert.Len(t, bq.Clauses, 1)
}
