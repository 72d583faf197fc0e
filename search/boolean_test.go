package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene/index"
)

func buildBooleanFixture() *fakeIndex {
	ix := newFakeIndex(10)
	ix.add("body", "go", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("body", "go", index.Doc{ID: 2, Freq: 1}, 1.0)
	ix.add("body", "go", index.Doc{ID: 3, Freq: 1}, 1.0)
	ix.add("body", "rust", index.Doc{ID: 2, Freq: 1}, 1.0)
	ix.add("body", "rust", index.Doc{ID: 4, Freq: 1}, 1.0)
	return ix
}

func TestBooleanMustIntersects(t *testing.T) {
	ix := buildBooleanFixture()
	q := NewBooleanQuery(
		Clause{Query: NewTermQuery("body", "go"), Occur: Must},
		Clause{Query: NewTermQuery("body", "rust"), Occur: Must},
	)
	s := NewSearcher(ix)
	matches, err := s.Find(q, -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, int32(2), matches[0].Doc)
}

func TestBooleanShouldUnions(t *testing.T) {
	ix := buildBooleanFixture()
	q := NewBooleanQuery(
		Clause{Query: NewTermQuery("body", "go"), Occur: Should},
		Clause{Query: NewTermQuery("body", "rust"), Occur: Should},
	)
	s := NewSearcher(ix)
	matches, err := s.Find(q, -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 4)
	// doc 2 matches both clauses, so its coordination factor beats docs
	// that only matched one clause.
	assert.Equal(t, int32(2), matches[0].Doc)
}

func TestBooleanMustNotExcludes(t *testing.T) {
	ix := buildBooleanFixture()
	q := NewBooleanQuery(
		Clause{Query: NewTermQuery("body", "go"), Occur: Should},
		Clause{Query: NewTermQuery("body", "rust"), Occur: MustNot},
	)
	s := NewSearcher(ix)
	matches, err := s.Find(q, -1)
	assert.NoError(t, err)
	ids := map[int32]bool{}
	for _, m := range matches {
		ids[m.Doc] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[3])
	assert.False(t, ids[2])
}

func TestBooleanOptimizeDropsEmptyShouldClause(t *testing.T) {
	ix := buildBooleanFixture()
	q := NewBooleanQuery(
		Clause{Query: NewTermQuery("body", "go"), Occur: Should},
		Clause{Query: NewTermQuery("body", "absent"), Occur: Should},
	)
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	opt, err := rewritten.Optimize(ix)
	assert.NoError(t, err)
	bq, ok := opt.(*BooleanQuery)
	assert.True(t, ok)
	assert.Len(t, bq.Clauses, 1)
}

func TestBooleanOptimizeEmptyResultOnMissingMust(t *testing.T) {
	ix := buildBooleanFixture()
	q := NewBooleanQuery(
		Clause{Query: NewTermQuery("body", "go"), Occur: Must},
		Clause{Query: NewTermQuery("body", "absent"), Occur: Must},
	)
	rewritten, err := q.Rewrite(ix)
	assert.NoError(t, err)
	opt, err := rewritten.Optimize(ix)
	assert.NoError(t, err)
	_, isEmpty := opt.(*EmptyResult)
	assert.True(t, isEmpty)
}
