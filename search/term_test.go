package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene/index"
)

func TestTermQueryOptimizeEmptyResult(t *testing.T) {
	ix := newFakeIndex(10)
	q := NewTermQuery("body", "absent")
	opt, err := q.Optimize(ix)
	assert.NoError(t, err)
	_, isEmpty := opt.(*EmptyResult)
	assert.True(t, isEmpty)
}

func TestTermQueryScoresByTfIdf(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("body", "go", index.Doc{ID: 1, Freq: 2}, 1.0)
	ix.add("body", "go", index.Doc{ID: 2, Freq: 1}, 1.0)

	s := NewSearcher(ix)
	matches, err := s.Find(NewTermQuery("body", "go"), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 2)
	// doc 1 has higher term frequency, so it must outscore doc 2.
	assert.Equal(t, int32(1), matches[0].Doc)
	assert.True(t, matches[0].Score > matches[1].Score)
}

func TestTermQueryFieldNullExpandsAcrossFields(t *testing.T) {
	ix := newFakeIndex(10)
	ix.add("title", "go", index.Doc{ID: 1, Freq: 1}, 1.0)
	ix.add("body", "go", index.Doc{ID: 2, Freq: 1}, 1.0)

	s := NewSearcher(ix)
	matches, err := s.Find(NewTermQuery("", "go"), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 2)
}
