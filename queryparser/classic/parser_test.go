package classic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajya/lucene"
	"github.com/sajya/lucene/analysis"
	"github.com/sajya/lucene/search"
)

func testConfig() lucene.Config {
	return lucene.Config{
		DefaultOperator: lucene.OperatorOR,
		DefaultField:    "body",
		SuppressErrors:  false,
	}
}

func TestParseSingleTerm(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("go")
	assert.NoError(t, err)
	tq, ok := q.(*search.TermQuery)
	assert.True(t, ok)
	assert.Equal(t, "go", tq.Term)
	assert.Equal(t, "body", tq.Field())
}

func TestParseFieldScopedTerm(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("title:lucene")
	assert.NoError(t, err)
	tq, ok := q.(*search.TermQuery)
	assert.True(t, ok)
	assert.Equal(t, "title", tq.Field())
	assert.Equal(t, "lucene", tq.Term)
}

func TestParseDefaultOperatorOr(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("go lucene")
	assert.NoError(t, err)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.Len(t, bq.Clauses, 2)
	assert.Equal(t, search.Should, bq.Clauses[0].Occur)
	assert.Equal(t, search.Should, bq.Clauses[1].Occur)
}

func TestParseDefaultOperatorAnd(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultOperator = lucene.OperatorAND
	p := NewParser(cfg)
	q, err := p.Parse("go lucene")
	assert.NoError(t, err)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.Equal(t, search.Must, bq.Clauses[0].Occur)
	assert.Equal(t, search.Must, bq.Clauses[1].Occur)
}

func TestParseRequiredAndProhibited(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("+go -rust")
	assert.NoError(t, err)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.Equal(t, search.Must, bq.Clauses[0].Occur)
	assert.Equal(t, search.MustNot, bq.Clauses[1].Occur)
}

func TestParseAndUpgradesPrecedingClause(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("go AND lucene")
	assert.NoError(t, err)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.Equal(t, search.Must, bq.Clauses[0].Occur)
	assert.Equal(t, search.Must, bq.Clauses[1].Occur)
}

func TestParsePhraseWithSlop(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse(`"quick fox"~2`)
	assert.NoError(t, err)
	pq, ok := q.(*search.PhraseQuery)
	assert.True(t, ok)
	assert.Equal(t, []string{"quick", "fox"}, pq.Terms)
	assert.Equal(t, int32(2), pq.Slop)
}

func TestParseBoost(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("go^2.5")
	assert.NoError(t, err)
	assert.Equal(t, float32(2.5), q.Boost())
}

func TestParseWildcardAndPrefix(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("te?t")
	assert.NoError(t, err)
	_, ok := q.(*search.WildcardQuery)
	assert.True(t, ok)

	q, err = p.Parse("test*")
	assert.NoError(t, err)
	_, ok = q.(*search.PrefixQuery)
	assert.True(t, ok)
}

func TestParseFuzzy(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("test~0.8")
	assert.NoError(t, err)
	fq, ok := q.(*search.FuzzyQuery)
	assert.True(t, ok)
	assert.Equal(t, float32(0.8), fq.MinSimilarity)
}

func TestParseRange(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("year:[2020 TO 2022]")
	assert.NoError(t, err)
	rq, ok := q.(*search.RangeQuery)
	assert.True(t, ok)
	assert.Equal(t, "2020", rq.Lower)
	assert.Equal(t, "2022", rq.Upper)
	assert.True(t, rq.LowerInclusive)
	assert.True(t, rq.UpperInclusive)
}

func TestParseSubquery(t *testing.T) {
	p := NewParser(testConfig())
	q, err := p.Parse("(go OR rust) AND lucene")
	assert.NoError(t, err)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.Len(t, bq.Clauses, 2)
	_, subIsBoolean := bq.Clauses[0].Query.(*search.BooleanQuery)
	assert.True(t, subIsBoolean)
	assert.Equal(t, search.Must, bq.Clauses[0].Occur)
	assert.Equal(t, search.Must, bq.Clauses[1].Occur)
}

func TestParseSyntaxErrorFallsBackWhenSuppressed(t *testing.T) {
	cfg := testConfig()
	cfg.SuppressErrors = true
	cfg.Analyzer = analysis.SimpleAnalyzer{}
	p := NewParser(cfg)
	q, err := p.Parse("[unterminated")
	assert.NoError(t, err)
	assert.NotNil(t, q)
	bq, ok := q.(*search.BooleanQuery)
	assert.True(t, ok)
	assert.NotEmpty(t, bq.Clauses)
}

func TestParseSyntaxErrorPropagatesWhenNotSuppressed(t *testing.T) {
	p := NewParser(testConfig())
	_, err := p.Parse("[unterminated")
	assert.Error(t, err)
}
