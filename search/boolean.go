package search

import (
	"fmt"
	"strings"
)

// Clause pairs a subquery with its required/prohibited/optional status
// (spec §2 "required/prohibited prefixes", "a AND b", "a OR b", "NOT a").
type Clause struct {
	Query Query
	Occur Occur
}

// BooleanQuery combines clauses under AND/OR/NOT semantics, scoring the
// union/intersection via the classic coordination factor (spec §4.9
// "coordination factor").
type BooleanQuery struct {
	Clauses []Clause
	field   string
	boost   float32
}

func NewBooleanQuery(clauses ...Clause) *BooleanQuery {
	return &BooleanQuery{Clauses: clauses, boost: 1.0}
}

func (q *BooleanQuery) Field() string      { return q.field }
func (q *BooleanQuery) SetField(f string)  { q.field = f }
func (q *BooleanQuery) Boost() float32     { return q.boost }
func (q *BooleanQuery) SetBoost(b float32) { q.boost = b }

func (q *BooleanQuery) Rewrite(ix Index) (Query, error) {
	out := &BooleanQuery{Clauses: make([]Clause, len(q.Clauses)), field: q.field, boost: q.boost}
	for i, c := range q.Clauses {
		rq, err := c.Query.Rewrite(ix)
		if err != nil {
			return nil, err
		}
		out.Clauses[i] = Clause{Query: rq, Occur: c.Occur}
	}
	return out, nil
}

func (q *BooleanQuery) Optimize(ix Index) (Query, error) {
	var clauses []Clause
	for _, c := range q.Clauses {
		oq, err := c.Query.Optimize(ix)
		if err != nil {
			return nil, err
		}
		switch oq.(type) {
		case *Insignificant:
			continue
		case *EmptyResult:
			if c.Occur == Must {
				e := NewEmptyResult()
				e.SetField(q.field)
				return e, nil
			}
			continue
		}
		clauses = append(clauses, Clause{Query: oq, Occur: c.Occur})
	}

	var positive int
	for _, c := range clauses {
		if c.Occur != MustNot {
			positive++
		}
	}
	if positive == 0 {
		e := NewEmptyResult()
		e.SetField(q.field)
		return e, nil
	}

	return &BooleanQuery{Clauses: clauses, field: q.field, boost: q.boost}, nil
}

func (q *BooleanQuery) sumSquaredWeight(ix Index, sim Similarity) (float32, error) {
	var sum float32
	for _, c := range q.Clauses {
		if c.Occur == MustNot {
			continue
		}
		w, err := c.Query.sumSquaredWeight(ix, sim)
		if err != nil {
			return 0, err
		}
		sum += w
	}
	return sum * q.boost * q.boost, nil
}

func (q *BooleanQuery) execute(ix Index, sim Similarity, queryNorm float32) (map[int32]float32, map[int32]int32, error) {
	type clauseResult struct {
		matches map[int32]float32
		occur   Occur
	}
	results := make([]clauseResult, 0, len(q.Clauses))
	var maxOverlap int32

	for _, c := range q.Clauses {
		matches, _, err := c.Query.execute(ix, sim, queryNorm)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, clauseResult{matches: matches, occur: c.Occur})
		if c.Occur != MustNot {
			maxOverlap++
		}
	}

	scores := make(map[int32]float32)
	overlap := make(map[int32]int32)
	var mustCount int32
	for _, r := range results {
		if r.occur == Must {
			mustCount++
		}
	}

	candidates := make(map[int32]bool)
	if mustCount > 0 {
		first := true
		for _, r := range results {
			if r.occur != Must {
				continue
			}
			if first {
				for d := range r.matches {
					candidates[d] = true
				}
				first = false
				continue
			}
			for d := range candidates {
				if _, ok := r.matches[d]; !ok {
					delete(candidates, d)
				}
			}
		}
	} else {
		for _, r := range results {
			if r.occur != Should {
				continue
			}
			for d := range r.matches {
				candidates[d] = true
			}
		}
	}

	for _, r := range results {
		if r.occur != MustNot {
			continue
		}
		for d := range r.matches {
			delete(candidates, d)
		}
	}

	for d := range candidates {
		var score float32
		var ov int32
		for _, r := range results {
			if r.occur == MustNot {
				continue
			}
			if s, ok := r.matches[d]; ok {
				score += s
				ov++
			}
		}
		coord := sim.Coord(ov, maxOverlap)
		final := score * coord * q.boost
		if final <= 0 {
			continue
		}
		scores[d] = final
		overlap[d] = ov
	}

	return scores, overlap, nil
}

// String renders each clause prefixed "+"/"-" for Must/MustNot (nothing
// for Should), parenthesizing a clause whenever it carries a prefix or
// its subquery is itself a BooleanQuery, and self-parenthesizing with a
// trailing ^boost when this query's own boost isn't 1 — matching the
// literal examples in spec §8 "Rewrite determinism".
func (q *BooleanQuery) String() string {
	var sb strings.Builder
	needParens := q.boost != 1
	if needParens {
		sb.WriteString("(")
	}
	for i, c := range q.Clauses {
		if i > 0 {
			sb.WriteString(" ")
		}
		switch c.Occur {
		case Must:
			sb.WriteString("+")
		case MustNot:
			sb.WriteString("-")
		}
		_, isBool := c.Query.(*BooleanQuery)
		sub := c.Query.String()
		if c.Occur != Should || isBool {
			sb.WriteString("(")
			sb.WriteString(sub)
			sb.WriteString(")")
		} else {
			sb.WriteString(sub)
		}
	}
	if needParens {
		sb.WriteString(")")
	}
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*BooleanQuery)(nil)
