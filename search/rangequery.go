package search

import (
	"fmt"
	"strings"
)

// RangeQuery matches terms lexicographically between Lower and Upper,
// each bound either inclusive or exclusive (spec §2 "range", "[a TO b]",
// "{a TO b}"). An empty bound means unbounded on that side. It rewrites
// into a disjunction of the concrete terms it matches.
type RangeQuery struct {
	Lower, Upper               string
	LowerInclusive, UpperInclusive bool
	field                      string
	boost                      float32
}

func NewRangeQuery(field, lower, upper string, lowerInclusive, upperInclusive bool) *RangeQuery {
	return &RangeQuery{
		Lower: lower, Upper: upper,
		LowerInclusive: lowerInclusive, UpperInclusive: upperInclusive,
		field: field, boost: 1.0,
	}
}

func (q *RangeQuery) Field() string      { return q.field }
func (q *RangeQuery) SetField(f string)  { q.field = f }
func (q *RangeQuery) Boost() float32     { return q.boost }
func (q *RangeQuery) SetBoost(b float32) { q.boost = b }

func (q *RangeQuery) Optimize(ix Index) (Query, error) { return q, nil }

func (q *RangeQuery) inRange(t string) bool {
	if q.Lower != "" {
		if q.LowerInclusive {
			if t < q.Lower {
				return false
			}
		} else if t <= q.Lower {
			return false
		}
	}
	if q.Upper != "" {
		if q.UpperInclusive {
			if t > q.Upper {
				return false
			}
		} else if t >= q.Upper {
			return false
		}
	}
	return true
}

func (q *RangeQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewRangeQuery(field, q.Lower, q.Upper, q.LowerInclusive, q.UpperInclusive)
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
		if q.inRange(t) {
			tq := NewTermQuery(q.field, t)
			clauses = append(clauses, Clause{Query: tq, Occur: Should})
		}
	}
	if len(clauses) == 0 {
		e := NewEmptyResult()
		e.SetField(q.field)
		return e, nil
	}
	b := NewBooleanQuery(clauses...)
	b.SetField(q.field)
	b.SetBoost(q.boost)
	return b, nil
}

func (q *RangeQuery) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *RangeQuery) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}

// String renders field:[lower TO upper] (or "{"/"}" per exclusive side),
// matching Lucene's RangeQuery.toString; an empty bound renders as "*".
func (q *RangeQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	if q.LowerInclusive {
		sb.WriteString("[")
	} else {
		sb.WriteString("{")
	}
	lower, upper := q.Lower, q.Upper
	if lower == "" {
		lower = "*"
	}
	if upper == "" {
		upper = "*"
	}
	sb.WriteString(lower)
	sb.WriteString(" TO ")
	sb.WriteString(upper)
	if q.UpperInclusive {
		sb.WriteString("]")
	} else {
		sb.WriteString("}")
	}
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*RangeQuery)(nil)
