package search

import (
	"fmt"
	"strings"

	"github.com/sajya/lucene/index"
)

// PhraseQuery matches documents where Terms occur at consecutive positions
// or, with Slop > 0, where each later term lies within Slop positions of
// its expected offset from the first term, before or after it (spec §2
// "phrase", "\"phrase\"~slop").
type PhraseQuery struct {
	Terms []string
	Slop  int32
	field string
	boost float32
}

func NewPhraseQuery(field string, terms []string, slop int32) *PhraseQuery {
	return &PhraseQuery{Terms: terms, Slop: slop, field: field, boost: 1.0}
}

func (q *PhraseQuery) Field() string      { return q.field }
func (q *PhraseQuery) SetField(f string)  { q.field = f }
func (q *PhraseQuery) Boost() float32     { return q.boost }
func (q *PhraseQuery) SetBoost(b float32) { q.boost = b }

func (q *PhraseQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewPhraseQuery(field, q.Terms, q.Slop)
			c.SetBoost(q.boost)
			return c
		})
	}
	return q, nil
}

func (q *PhraseQuery) Optimize(ix Index) (Query, error) {
	if len(q.Terms) == 0 {
		i := NewInsignificant()
		i.SetField(q.field)
		return i, nil
	}
	if len(q.Terms) == 1 {
		t := NewTermQuery(q.field, q.Terms[0])
		t.SetBoost(q.boost)
		return t.Optimize(ix)
	}
	for _, term := range q.Terms {
		df, err := ix.DocFreq(index.Term{Field: q.field, Text: term})
		if err != nil {
			return nil, err
		}
		if df == 0 {
			e := NewEmptyResult()
			e.SetField(q.field)
			return e, nil
		}
	}
	return q, nil
}

func (q *PhraseQuery) idf(ix Index, sim Similarity) (float32, error) {
	var sum float32
	for _, term := range q.Terms {
		df, err := ix.DocFreq(index.Term{Field: q.field, Text: term})
		if err != nil {
			return 0, err
		}
		sum += sim.Idf(df, ix.MaxDoc())
	}
	return sum, nil
}

func (q *PhraseQuery) sumSquaredWeight(ix Index, sim Similarity) (float32, error) {
	idf, err := q.idf(ix, sim)
	if err != nil {
		return 0, err
	}
	w := idf * q.boost
	return w * w, nil
}

func (q *PhraseQuery) execute(ix Index, sim Similarity, queryNorm float32) (map[int32]float32, map[int32]int32, error) {
	idf, err := q.idf(ix, sim)
	if err != nil {
		return nil, nil, err
	}
	weight := idf * idf * q.boost * queryNorm

	perTermDocs := make([]map[int32][]int32, len(q.Terms))
	for i, term := range q.Terms {
		docs, err := ix.TermPositions(index.Term{Field: q.field, Text: term})
		if err != nil {
			return nil, nil, err
		}
		m := make(map[int32][]int32, len(docs))
		for _, d := range docs {
			m[d.ID] = d.Positions
		}
		perTermDocs[i] = m
	}

	candidates := perTermDocs[0]
	matches := make(map[int32]float32)
	overlap := make(map[int32]int32)

	for docID, firstPositions := range candidates {
		termPositions := make([][]int32, len(q.Terms))
		termPositions[0] = firstPositions
		present := true
		for i := 1; i < len(q.Terms); i++ {
			ps, ok := perTermDocs[i][docID]
			if !ok {
				present = false
				break
			}
			termPositions[i] = ps
		}
		if !present {
			continue
		}
		freq := phraseFreq(termPositions, q.Slop, sim)
		if freq <= 0 {
			continue
		}
		norm, err := ix.Norm(docID, q.field)
		if err != nil {
			return nil, nil, err
		}
		matches[docID] = sim.Tf(freq) * weight * norm
		overlap[docID] = 1
	}

	return matches, overlap, nil
}

// phraseFreq counts occurrences of termPositions[0], termPositions[1], ...
// anchored on each position of the first term, allowing each later term's
// position to drift up to slop from its expected offset in either
// direction, independently of the other terms (spec §2 "\"phrase\"~slop").
// Exact phrases (slop==0) require the literal consecutive-position match.
func phraseFreq(termPositions [][]int32, slop int32, sim Similarity) float32 {
	if len(termPositions) == 0 {
		return 0
	}
	sets := make([]map[int32]bool, len(termPositions))
	for i, ps := range termPositions {
		sets[i] = make(map[int32]bool, len(ps))
		for _, p := range ps {
			sets[i][p] = true
		}
	}

	var total float32
	for _, base := range termPositions[0] {
		var dist int32
		ok := true
		for i := 1; i < len(termPositions); i++ {
			expected := base + int32(i)
			if slop == 0 {
				if !sets[i][expected] {
					ok = false
					break
				}
				continue
			}
			best := int32(-1)
			for _, p := range termPositions[i] {
				d := p - expected
				if d < 0 {
					d = -d
				}
				if d <= slop && (best == -1 || d < best) {
					best = d
				}
			}
			if best == -1 {
				ok = false
				break
			}
			dist += best
		}
		if ok {
			total += sim.SloppyFreq(dist)
		}
	}
	return total
}

// String renders field:"term1 term2 ..." with an optional ~slop and
// ^boost suffix, matching Lucene's PhraseQuery.toString (spec §8
// "Rewrite determinism").
func (q *PhraseQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	sb.WriteString(`"`)
	sb.WriteString(strings.Join(q.Terms, " "))
	sb.WriteString(`"`)
	if q.Slop != 0 {
		fmt.Fprintf(&sb, "~%d", q.Slop)
	}
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*PhraseQuery)(nil)
