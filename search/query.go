// Package search implements the query AST, its rewrite/optimize/execute
// pipeline, and TF/IDF vector-space scoring against an open index (spec
// §2, §4.8 rewrite rules, §4.9 scoring).
package search

import "github.com/sajya/lucene/index"

// Index is the minimal whole-index (cross-segment) view a Query executes
// against: global doc ids, term statistics, and postings already unioned
// across every live segment. The root orchestrator (outside this
// package) is the concrete implementer (spec §4.10 "binds everything").
type Index interface {
	MaxDoc() int32
	NumDocs() int32
	DocFreq(t index.Term) (int32, error)
	TermDocs(t index.Term) ([]index.Doc, error)
	TermPositions(t index.Term) ([]index.Doc, error)
	Norm(globalID int32, field string) (float32, error)
	FieldNames(indexedOnly bool) []string

	// EnumerateTerms lists every distinct term text indexed under field, in
	// ascending order, for pattern queries (wildcard/prefix/fuzzy/range) to
	// expand against at Rewrite time (spec §4.8 "rewrite rules").
	EnumerateTerms(field string) ([]string, error)
}

// Occur is a boolean clause's required/prohibited/optional status (spec
// §2 "required/prohibited prefixes").
type Occur int

const (
	Should Occur = iota
	Must
	MustNot
)

// Match is one hit returned by Searcher.Find: the document's global id and
// its final score.
type Match struct {
	Doc   int32
	Score float32
}

// Query is a node of the query AST (spec GLOSSARY "Query AST node"). Every
// node carries an optional field and a boost (default 1.0); Rewrite
// expands pattern queries (wildcard/prefix/fuzzy/range) into concrete
// terms found in the index; Optimize prunes branches with no possible
// contribution.
type Query interface {
	Field() string
	SetField(field string)
	Boost() float32
	SetBoost(b float32)

	// Rewrite replaces pattern queries with concrete boolean expansions
	// over terms actually present in ix (spec §4.8 "rewrite → optimize →
	// execute"). Leaf queries (Term, Phrase) return themselves.
	Rewrite(ix Index) (Query, error)

	// Optimize prunes branches that cannot contribute (spec GLOSSARY
	// "optimize(index) may replace a node with EmptyResult... or
	// Insignificant").
	Optimize(ix Index) (Query, error)

	// sumSquaredWeight contributes this node's leaf term weight(s)
	// squared to the whole query's queryNorm computation (spec §4.9
	// "query norm").
	sumSquaredWeight(ix Index, sim Similarity) (float32, error)

	// execute returns this node's per-document partial scores (already
	// scaled by queryNorm and this node's boost, but not yet by any
	// enclosing BooleanQuery's coordination factor) plus, for boolean
	// combination, how many of this node's own optional/required
	// sub-clauses matched each document.
	execute(ix Index, sim Similarity, queryNorm float32) (matches map[int32]float32, overlap map[int32]int32, err error)

	// String renders the query the way Lucene's classic toString(field)
	// does: field-prefixed leaves, quoted phrases, and required/
	// prohibited clauses of a BooleanQuery marked with "+"/"-", and a
	// clause parenthesized whenever it carries such a prefix or is itself
	// a BooleanQuery (spec §8 "Rewrite determinism").
	String() string
}

// expandAcrossFields builds the "field null" union-across-every-indexed-
// field rewrite (spec §4.9 "Term (field null): expands into a union
// across every indexed field", "Phrase (field null): Boolean over all
// indexed fields"): one Should clause per indexed field, each produced
// by newForField.
func expandAcrossFields(ix Index, newForField func(field string) Query) (Query, error) {
	fields := ix.FieldNames(true)
	if len(fields) == 0 {
		return NewEmptyResult(), nil
	}
	clauses := make([]Clause, len(fields))
	for i, f := range fields {
		clauses[i] = Clause{Query: newForField(f), Occur: Should}
	}
	// Each per-field clause may itself still need rewriting (e.g. a
	// wildcard/fuzzy/range pattern expanding into concrete terms), so
	// rewrite the wrapping BooleanQuery once more before returning.
	return (&BooleanQuery{Clauses: clauses, boost: 1.0}).Rewrite(ix)
}

// EmptyResult is the sentinel Optimize substitutes for a branch that
// cannot possibly match anything.
type EmptyResult struct{ field string }

func NewEmptyResult() *EmptyResult                      { return &EmptyResult{} }
func (q *EmptyResult) Field() string                    { return q.field }
func (q *EmptyResult) SetField(f string)                { q.field = f }
func (q *EmptyResult) Boost() float32                   { return 1 }
func (q *EmptyResult) SetBoost(float32)                 {}
func (q *EmptyResult) Rewrite(Index) (Query, error)      { return q, nil }
func (q *EmptyResult) Optimize(Index) (Query, error)     { return q, nil }
func (q *EmptyResult) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *EmptyResult) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}
func (q *EmptyResult) String() string { return "<EmptyQuery>" }

// Insignificant is the sentinel for a term the analyzer reduced to zero
// tokens (e.g. a bare stop word): contributes no score and no error
// (spec §4.8 "Term (analyzer yields zero tokens): Insignificant").
type Insignificant struct{ field string }

func NewInsignificant() *Insignificant                    { return &Insignificant{} }
func (q *Insignificant) Field() string                    { return q.field }
func (q *Insignificant) SetField(f string)                { q.field = f }
func (q *Insignificant) Boost() float32                   { return 1 }
func (q *Insignificant) SetBoost(float32)                 {}
func (q *Insignificant) Rewrite(Index) (Query, error)      { return q, nil }
func (q *Insignificant) Optimize(Index) (Query, error)     { return q, nil }
func (q *Insignificant) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *Insignificant) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}
func (q *Insignificant) String() string { return "<Insignificant>" }
