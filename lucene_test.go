package lucene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene/document"
	"github.com/sajya/lucene/search"
	"github.com/sajya/lucene/store"
)

func openTestIndex(t *testing.T, opts ...ConfigFunc) *Index {
	t.Helper()
	ix, err := OpenDirectory(store.NewRAMDirectory(), opts...)
	assert.NoError(t, err)
	return ix
}

func TestIndexAddDocumentAndCommitRoundTrips(t *testing.T) {
	ix := openTestIndex(t)
	defer ix.Close()

	doc := document.New().
		AddField(document.NewTextField("body", "the quick brown fox")).
		AddField(document.NewKeywordField("id", "doc-1")).
		AddField(document.NewStoredField("title", "Fox story"))

	assert.NoError(t, ix.AddDocument(doc))
	gen, err := ix.Commit()
	assert.NoError(t, err)
	assert.True(t, gen >= 0)

	assert.Equal(t, int32(1), ix.NumDocs())
	assert.Equal(t, int32(1), ix.MaxDoc())

	stored, err := ix.GetDocument(0)
	assert.NoError(t, err)
	// "body" and "id" are indexed but not stored; only "title" round-trips.
	assert.Len(t, stored, 1)
	assert.Equal(t, "Fox story", stored[0].Value)
}

func TestIndexFindMatchesAcrossDocuments(t *testing.T) {
	ix := openTestIndex(t)
	defer ix.Close()

	assert.NoError(t, ix.AddDocument(document.New().AddField(document.NewTextField("body", "go is fun"))))
	assert.NoError(t, ix.AddDocument(document.New().AddField(document.NewTextField("body", "rust is also fun"))))
	_, err := ix.Commit()
	assert.NoError(t, err)

	matches, err := ix.Find(search.NewTermQuery("body", "fun"), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = ix.Find(search.NewTermQuery("body", "go"), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, int32(0), matches[0].Doc)
}

func TestIndexDeleteRemovesFromResults(t *testing.T) {
	ix := openTestIndex(t)
	defer ix.Close()

	assert.NoError(t, ix.AddDocument(document.New().AddField(document.NewTextField("body", "alpha"))))
	assert.NoError(t, ix.AddDocument(document.New().AddField(document.NewTextField("body", "alpha"))))
	_, err := ix.Commit()
	assert.NoError(t, err)

	assert.NoError(t, ix.Delete(0))
	_, err = ix.Commit()
	assert.NoError(t, err)

	assert.Equal(t, int32(1), ix.NumDocs())
	matches, err := ix.Find(search.NewTermQuery("body", "alpha"), -1)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, int32(1), matches[0].Doc)
}

func TestIndexEnumerateTermsAndFieldNames(t *testing.T) {
	ix := openTestIndex(t)
	defer ix.Close()

	assert.NoError(t, ix.AddDocument(document.New().
		AddField(document.NewTextField("body", "alpha beta")).
		AddField(document.NewTextField("title", "gamma"))))
	_, err := ix.Commit()
	assert.NoError(t, err)

	terms, err := ix.EnumerateTerms("body")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, terms)

	assert.ElementsMatch(t, []string{"body", "title"}, ix.FieldNames(true))
}
