package search

import (
	"fmt"
	"strings"

	"github.com/sajya/lucene/util"
)

// DefaultMinSimilarity is Lucene's classic fuzzy-match threshold.
const DefaultMinSimilarity = float32(0.5)

// FuzzyQuery matches terms within edit-distance of Term, expressed as a
// normalized similarity score (spec §2 "fuzzy", "term~"). It rewrites into
// a disjunction of the concrete terms it matches, each boosted by how
// close a match it is.
type FuzzyQuery struct {
	Term          string
	MinSimilarity float32
	field         string
	boost         float32
}

func NewFuzzyQuery(field, term string, minSimilarity float32) *FuzzyQuery {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &FuzzyQuery{Term: term, MinSimilarity: minSimilarity, field: field, boost: 1.0}
}

func (q *FuzzyQuery) Field() string      { return q.field }
func (q *FuzzyQuery) SetField(f string)  { q.field = f }
func (q *FuzzyQuery) Boost() float32     { return q.boost }
func (q *FuzzyQuery) SetBoost(b float32) { q.boost = b }

func (q *FuzzyQuery) Optimize(ix Index) (Query, error) { return q, nil }

func (q *FuzzyQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewFuzzyQuery(field, q.Term, q.MinSimilarity)
			c.SetBoost(q.boost)
			return c
		})
	}
	terms, err := ix.EnumerateTerms(q.field)
	if err != nil {
		return nil, err
	}
	var clauses []Clause
	for _, t := range terms {
		sim := util.FuzzySimilarity(q.Term, t)
		if sim < q.MinSimilarity {
			continue
		}
		tq := NewTermQuery(q.field, t)
		tq.SetBoost(q.boost * sim)
		clauses = append(clauses, Clause{Query: tq, Occur: Should})
	}
	if len(clauses) == 0 {
		e := NewEmptyResult()
		e.SetField(q.field)
		return e, nil
	}
	b := NewBooleanQuery(clauses...)
	b.SetField(q.field)
	return b, nil
}

func (q *FuzzyQuery) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *FuzzyQuery) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}

// String renders field:term~, matching Lucene's FuzzyQuery.toString;
// MinSimilarity is appended only when it differs from the default, since
// the bare "~" is the common-case rendering.
func (q *FuzzyQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	sb.WriteString(q.Term)
	sb.WriteString("~")
	if q.MinSimilarity != DefaultMinSimilarity {
		fmt.Fprintf(&sb, "%g", q.MinSimilarity)
	}
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*FuzzyQuery)(nil)
