package classic

import (
	"strconv"
	"strings"

	"github.com/sajya/lucene"
	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/search"
)

type conjType int

const (
	conjNone conjType = iota
	conjAnd
	conjOr
)

type modType int

const (
	modNone modType = iota
	modReq
	modNot
)

// Parser turns a classic Lucene query string into a search.Query AST
// (spec §4.8). It is a hand-written recursive-descent parser over the
// lexer's token stream rather than a literal state-table FSM, but
// accepts the same grammar and lexeme alphabet the spec names.
type Parser struct {
	cfg    lucene.Config
	tokens []token
	pos    int
}

func NewParser(cfg lucene.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse parses query against the parser's default field and operator.
// In suppress-errors mode (the default, spec §4.8 "Suppress mode"), a
// syntax error falls back to re-tokenizing the raw input with the
// configured analyzer and building a plain conjunction/disjunction of
// terms instead of failing.
func (p *Parser) Parse(query string) (search.Query, error) {
	q, err := p.parse(query)
	if err == nil {
		return q, nil
	}
	if p.cfg.SuppressErrors {
		return p.fallbackQuery(query), nil
	}
	return nil, err
}

func (p *Parser) parse(query string) (search.Query, error) {
	l := newLexer(query)
	var toks []token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.kind == tEOF {
			break
		}
	}
	p.tokens = toks
	p.pos = 0

	q, err := p.parseQuery(p.cfg.DefaultField)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tEOF {
		return nil, errs.NewQueryParserError(p.cur().pos)
	}
	if q == nil {
		return search.NewBooleanQuery(), nil
	}
	return q, nil
}

func (p *Parser) cur() token  { return p.tokens[p.pos] }
func (p *Parser) advance()    { p.pos++ }
func (p *Parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

// parseQuery parses a sequence of clauses combined by AND/OR/NOT,
// +/- modifiers, or plain adjacency under the configured default
// operator (spec §4.8 "logicalOperator" action, COMMON state self-loop).
func (p *Parser) parseQuery(field string) (search.Query, error) {
	var clauses []search.Clause
	conj := conjNone

	for {
		switch p.cur().kind {
		case tAnd:
			conj = conjAnd
			p.advance()
		case tOr:
			conj = conjOr
			p.advance()
		}

		mod := modNone
		switch p.cur().kind {
		case tPlus:
			mod = modReq
			p.advance()
		case tMinus, tNot:
			mod = modNot
			p.advance()
		}

		if p.cur().kind == tEOF || p.cur().kind == tRParen {
			if conj != conjNone || mod != modNone {
				return nil, errs.NewQueryParserError(p.cur().pos)
			}
			break
		}

		q, err := p.parseClause(field)
		if err != nil {
			return nil, err
		}

		occur := p.resolveOccur(conj, mod)
		if conj == conjAnd && len(clauses) > 0 && clauses[len(clauses)-1].Occur == search.Should {
			clauses[len(clauses)-1].Occur = search.Must
		}
		clauses = append(clauses, search.Clause{Query: q, Occur: occur})
		conj = conjNone
	}

	if len(clauses) == 0 {
		return nil, nil
	}
	if len(clauses) == 1 && clauses[0].Occur != search.MustNot {
		return clauses[0].Query, nil
	}
	return search.NewBooleanQuery(clauses...), nil
}

// resolveOccur maps a clause's preceding modifier/conjunction to an Occur,
// falling back to the configured default operator for a bare clause with
// neither (spec §4.8 "default operator").
func (p *Parser) resolveOccur(conj conjType, mod modType) search.Occur {
	switch mod {
	case modReq:
		return search.Must
	case modNot:
		return search.MustNot
	}
	switch conj {
	case conjAnd:
		return search.Must
	case conjOr:
		return search.Should
	}
	if p.cfg.DefaultOperator == lucene.OperatorAND {
		return search.Must
	}
	return search.Should
}

// parseClause parses one FIELD?-scoped primitive or subquery, followed
// by an optional boost (spec §4.8 "setField", "BOOSTING").
func (p *Parser) parseClause(field string) (search.Query, error) {
	if p.cur().kind == tWord && p.peekAt(1).kind == tColon {
		field = p.cur().text
		p.advance()
		p.advance()
	}

	var q search.Query
	var err error

	switch p.cur().kind {
	case tLParen:
		p.advance()
		q, err = p.parseQuery(field)
		if err != nil {
			return nil, err
		}
		if q == nil {
			q = search.NewBooleanQuery()
		}
		if p.cur().kind != tRParen {
			return nil, errs.NewQueryParserError(p.cur().pos)
		}
		p.advance()
	case tPhrase:
		text := p.cur().text
		p.advance()
		var slop int32
		if p.cur().kind == tTilde {
			p.advance()
			if p.cur().kind == tNumber {
				slop = parseSlop(p.cur().text)
				p.advance()
			}
		}
		q = search.NewPhraseQuery(field, strings.Fields(text), slop)
	case tLBracket, tLBrace:
		q, err = p.parseRange(field)
		if err != nil {
			return nil, err
		}
	case tWord:
		q, err = p.parseTerm(field)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewQueryParserError(p.cur().pos)
	}

	if p.cur().kind == tCaret {
		p.advance()
		if p.cur().kind != tNumber {
			return nil, errs.NewQueryParserError(p.cur().pos)
		}
		q.SetBoost(parseFloat(p.cur().text, 1.0))
		p.advance()
	}
	return q, nil
}

// parseTerm detects the wildcard/fuzzy lexemes among an otherwise plain
// WORD (spec §4.9 "Term (wildcard pattern detected via *?)").
func (p *Parser) parseTerm(field string) (search.Query, error) {
	text := p.cur().text
	p.advance()

	if p.cur().kind == tTilde {
		p.advance()
		minSim := search.DefaultMinSimilarity
		if p.cur().kind == tNumber {
			if f := parseFloat(p.cur().text, minSim); f > 0 {
				minSim = f
			}
			p.advance()
		}
		return search.NewFuzzyQuery(field, text, minSim), nil
	}

	if idx := strings.IndexAny(text, "*?"); idx >= 0 {
		if idx == len(text)-1 && text[idx] == '*' && strings.IndexAny(text[:idx], "*?") < 0 {
			return search.NewPrefixQuery(field, text[:idx]), nil
		}
		return search.NewWildcardQuery(field, text), nil
	}
	return search.NewTermQuery(field, text), nil
}

// parseRange parses `[lower TO upper]` / `{lower TO upper}`, `*` meaning
// an unbounded side (spec §2 "range").
func (p *Parser) parseRange(field string) (search.Query, error) {
	inclusive := p.cur().kind == tLBracket
	closeKind := tRBracket
	if !inclusive {
		closeKind = tRBrace
	}
	p.advance()

	lower, err := p.parseRangeBound()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tTo {
		return nil, errs.NewQueryParserError(p.cur().pos)
	}
	p.advance()
	upper, err := p.parseRangeBound()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != closeKind {
		return nil, errs.NewQueryParserError(p.cur().pos)
	}
	p.advance()
	return search.NewRangeQuery(field, lower, upper, inclusive, inclusive), nil
}

func (p *Parser) parseRangeBound() (string, error) {
	switch p.cur().kind {
	case tWord, tNumber:
		text := p.cur().text
		p.advance()
		if text == "*" {
			return "", nil
		}
		return text, nil
	}
	return "", errs.NewQueryParserError(p.cur().pos)
}

// fallbackQuery implements suppress mode's recovery path (spec §4.8
// "re-tokenize the raw input with the default analyzer and build a
// plain MultiTerm whose sign is required or optional per the configured
// default operator").
func (p *Parser) fallbackQuery(raw string) search.Query {
	field := p.cfg.DefaultField
	occur := search.Should
	if p.cfg.DefaultOperator == lucene.OperatorAND {
		occur = search.Must
	}
	if p.cfg.Analyzer == nil {
		return search.NewEmptyResult()
	}
	ts, err := p.cfg.Analyzer.TokenStream(field, raw)
	if err != nil {
		return search.NewEmptyResult()
	}
	var clauses []search.Clause
	for {
		text, _, ok, err := ts.Next()
		if err != nil || !ok {
			break
		}
		clauses = append(clauses, search.Clause{Query: search.NewTermQuery(field, text), Occur: occur})
	}
	if len(clauses) == 0 {
		return search.NewEmptyResult()
	}
	return search.NewBooleanQuery(clauses...)
}

func parseFloat(s string, fallback float32) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

func parseSlop(s string) int32 {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
