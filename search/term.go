package search

import (
	"fmt"
	"strings"

	"github.com/sajya/lucene/index"
)

// TermQuery matches documents containing one exact term (spec §2 "term").
type TermQuery struct {
	Term  string
	field string
	boost float32
}

func NewTermQuery(field, term string) *TermQuery {
	return &TermQuery{Term: term, field: field, boost: 1.0}
}

func (q *TermQuery) Field() string     { return q.field }
func (q *TermQuery) SetField(f string) { q.field = f }
func (q *TermQuery) Boost() float32    { return q.boost }
func (q *TermQuery) SetBoost(b float32) { q.boost = b }

func (q *TermQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewTermQuery(field, q.Term)
			c.SetBoost(q.boost)
			return c
		})
	}
	return q, nil
}

func (q *TermQuery) Optimize(ix Index) (Query, error) {
	df, err := ix.DocFreq(index.Term{Field: q.field, Text: q.Term})
	if err != nil {
		return nil, err
	}
	if df == 0 {
		e := NewEmptyResult()
		e.SetField(q.field)
		return e, nil
	}
	return q, nil
}

func (q *TermQuery) idf(ix Index, sim Similarity) (float32, error) {
	df, err := ix.DocFreq(index.Term{Field: q.field, Text: q.Term})
	if err != nil {
		return 0, err
	}
	return sim.Idf(df, ix.MaxDoc()), nil
}

func (q *TermQuery) sumSquaredWeight(ix Index, sim Similarity) (float32, error) {
	idf, err := q.idf(ix, sim)
	if err != nil {
		return 0, err
	}
	w := idf * q.boost
	return w * w, nil
}

func (q *TermQuery) execute(ix Index, sim Similarity, queryNorm float32) (map[int32]float32, map[int32]int32, error) {
	idf, err := q.idf(ix, sim)
	if err != nil {
		return nil, nil, err
	}
	docs, err := ix.TermDocs(index.Term{Field: q.field, Text: q.Term})
	if err != nil {
		return nil, nil, err
	}

	weight := idf * idf * q.boost * queryNorm
	matches := make(map[int32]float32, len(docs))
	overlap := make(map[int32]int32, len(docs))
	for _, d := range docs {
		norm, err := ix.Norm(d.ID, q.field)
		if err != nil {
			return nil, nil, err
		}
		matches[d.ID] = sim.Tf(float32(d.Freq)) * weight * norm
		overlap[d.ID] = 1
	}
	return matches, overlap, nil
}

// String renders field:term, matching Lucene's TermQuery.toString (spec
// §8 "Rewrite determinism").
func (q *TermQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	sb.WriteString(q.Term)
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*TermQuery)(nil)
