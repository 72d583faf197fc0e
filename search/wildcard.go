package search

import (
	"fmt"
	"strings"
)

// WildcardQuery matches terms against a pattern containing `*` (zero or
// more characters) and `?` (exactly one character) (spec §2 "wildcard").
// It rewrites into a disjunction of the concrete terms it matches.
type WildcardQuery struct {
	Pattern string
	field   string
	boost   float32
}

func NewWildcardQuery(field, pattern string) *WildcardQuery {
	return &WildcardQuery{Pattern: pattern, field: field, boost: 1.0}
}

func (q *WildcardQuery) Field() string      { return q.field }
func (q *WildcardQuery) SetField(f string)  { q.field = f }
func (q *WildcardQuery) Boost() float32     { return q.boost }
func (q *WildcardQuery) SetBoost(b float32) { q.boost = b }

func (q *WildcardQuery) Optimize(ix Index) (Query, error) { return q, nil }

func (q *WildcardQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewWildcardQuery(field, q.Pattern)
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
		if wildcardMatch(q.Pattern, t) {
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

func (q *WildcardQuery) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *WildcardQuery) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}

// wildcardMatch implements `*`/`?` glob matching without regexp compilation,
// matching Lucene's classic WildcardTermEnum semantics.
func wildcardMatch(pattern, text string) bool {
	p := []rune(pattern)
	t := []rune(text)
	return wildcardMatchRunes(p, t)
}

func wildcardMatchRunes(p, t []rune) bool {
	var pi, ti int
	var starPi, starTi int = -1, -1
	for ti < len(t) {
		if pi < len(p) && (p[pi] == '?' || p[pi] == t[ti]) {
			pi++
			ti++
		} else if pi < len(p) && p[pi] == '*' {
			starPi = pi
			starTi = ti
			pi++
		} else if starPi != -1 {
			pi = starPi + 1
			starTi++
			ti = starTi
		} else {
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// String renders field:pattern, matching Lucene's WildcardQuery.toString.
func (q *WildcardQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	sb.WriteString(q.Pattern)
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*WildcardQuery)(nil)

// PrefixQuery matches every term beginning with Prefix (spec §2 "prefix").
type PrefixQuery struct {
	Prefix string
	field  string
	boost  float32
}

func NewPrefixQuery(field, prefix string) *PrefixQuery {
	return &PrefixQuery{Prefix: prefix, field: field, boost: 1.0}
}

func (q *PrefixQuery) Field() string      { return q.field }
func (q *PrefixQuery) SetField(f string)  { q.field = f }
func (q *PrefixQuery) Boost() float32     { return q.boost }
func (q *PrefixQuery) SetBoost(b float32) { q.boost = b }

func (q *PrefixQuery) Optimize(ix Index) (Query, error) { return q, nil }

func (q *PrefixQuery) Rewrite(ix Index) (Query, error) {
	if q.field == "" {
		return expandAcrossFields(ix, func(field string) Query {
			c := NewPrefixQuery(field, q.Prefix)
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
		if strings.HasPrefix(t, q.Prefix) {
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

func (q *PrefixQuery) sumSquaredWeight(Index, Similarity) (float32, error) { return 0, nil }
func (q *PrefixQuery) execute(Index, Similarity, float32) (map[int32]float32, map[int32]int32, error) {
	return nil, nil, nil
}

// String renders field:prefix*, matching Lucene's PrefixQuery.toString.
func (q *PrefixQuery) String() string {
	var sb strings.Builder
	if q.field != "" {
		sb.WriteString(q.field)
		sb.WriteString(":")
	}
	sb.WriteString(q.Prefix)
	sb.WriteString("*")
	if q.boost != 1 {
		fmt.Fprintf(&sb, "^%g", q.boost)
	}
	return sb.String()
}

var _ Query = (*PrefixQuery)(nil)
