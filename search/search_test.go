package search

import (
	"sort"

	"github.com/sajya/lucene/index"
)

// fakeIndex is an in-memory search.Index used to exercise the query AST
// and Searcher without an on-disk segment, grounded directly in the
// index.Term/index.Doc shapes the real orchestrator produces.
type fakeIndex struct {
	maxDoc int32
	// field -> term -> postings, in ascending doc id order
	postings map[string]map[string][]index.Doc
	// docID -> field -> norm
	norms map[int32]map[string]float32
}

func newFakeIndex(maxDoc int32) *fakeIndex {
	return &fakeIndex{
		maxDoc:   maxDoc,
		postings: make(map[string]map[string][]index.Doc),
		norms:    make(map[int32]map[string]float32),
	}
}

func (f *fakeIndex) add(field, term string, doc index.Doc, norm float32) {
	if f.postings[field] == nil {
		f.postings[field] = make(map[string][]index.Doc)
	}
	f.postings[field][term] = append(f.postings[field][term], doc)
	if f.norms[doc.ID] == nil {
		f.norms[doc.ID] = make(map[string]float32)
	}
	f.norms[doc.ID][field] = norm
}

func (f *fakeIndex) MaxDoc() int32 { return f.maxDoc }
func (f *fakeIndex) NumDocs() int32 { return f.maxDoc }

func (f *fakeIndex) DocFreq(t index.Term) (int32, error) {
	return int32(len(f.postings[t.Field][t.Text])), nil
}

func (f *fakeIndex) TermDocs(t index.Term) ([]index.Doc, error) {
	return f.postings[t.Field][t.Text], nil
}

func (f *fakeIndex) TermPositions(t index.Term) ([]index.Doc, error) {
	return f.postings[t.Field][t.Text], nil
}

func (f *fakeIndex) Norm(docID int32, field string) (float32, error) {
	if n, ok := f.norms[docID][field]; ok {
		return n, nil
	}
	return 1.0, nil
}

func (f *fakeIndex) FieldNames(indexedOnly bool) []string {
	var names []string
	for name := range f.postings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeIndex) EnumerateTerms(field string) ([]string, error) {
	var terms []string
	for t := range f.postings[field] {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms, nil
}

var _ Index = (*fakeIndex)(nil)
