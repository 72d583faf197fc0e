package lucene

import (
	"go.uber.org/zap"

	"github.com/pbnjay/memory"

	"github.com/sajya/lucene/analysis"
	"github.com/sajya/lucene/index"
	"github.com/sajya/lucene/search"
)

// Operator is the default way adjacent bare terms combine in a parsed
// query (spec §4.8 "default operator").
type Operator int

const (
	OperatorOR Operator = iota
	OperatorAND
)

// Config tunes the orchestrator and the query parser that sits on top of
// it, built through ConfigFunc functional options rather than a
// package-level singleton.
type Config struct {
	DefaultOperator Operator
	SuppressErrors  bool
	DefaultField    string
	ResultCap       int

	WildcardMinPrefixLength  int
	FuzzyDefaultPrefixLength int

	Writer     index.WriterConfig
	Analyzer   index.Analyzer
	Similarity search.Similarity
	Logger     *zap.SugaredLogger
}

// ConfigFunc mutates a Config under construction.
type ConfigFunc func(*Config)

// autoRAMBufferDocs scales the default flush threshold off total system
// memory, the same way a batch job sizes itself off available RAM; an
// explicit WithMaxBufferedDocs always overrides this.
func autoRAMBufferDocs() int32 {
	totalMB := memory.TotalMemory() / (1024 * 1024)
	switch {
	case totalMB == 0:
		return index.DefaultMaxBufferedDocs
	case totalMB < 512:
		return 50
	case totalMB > 8192:
		return 2000
	default:
		return int32(totalMB / 4)
	}
}

func defaultConfig() Config {
	wc := index.DefaultWriterConfig()
	wc.MaxBufferedDocs = autoRAMBufferDocs()
	return Config{
		DefaultOperator:          OperatorOR,
		SuppressErrors:           true,
		DefaultField:             "",
		ResultCap:                1000,
		WildcardMinPrefixLength:  0,
		FuzzyDefaultPrefixLength: 0,
		Writer:                   wc,
		Analyzer:                 analysis.SimpleAnalyzer{},
		Similarity:               search.DefaultSimilarity{},
		Logger:                   zap.NewNop().Sugar(),
	}
}

func WithDefaultOperator(op Operator) ConfigFunc { return func(c *Config) { c.DefaultOperator = op } }
func WithSuppressErrors(b bool) ConfigFunc       { return func(c *Config) { c.SuppressErrors = b } }
func WithDefaultField(field string) ConfigFunc   { return func(c *Config) { c.DefaultField = field } }
func WithResultCap(n int) ConfigFunc             { return func(c *Config) { c.ResultCap = n } }

func WithWildcardMinPrefixLength(n int) ConfigFunc {
	return func(c *Config) { c.WildcardMinPrefixLength = n }
}

func WithFuzzyDefaultPrefixLength(n int) ConfigFunc {
	return func(c *Config) { c.FuzzyDefaultPrefixLength = n }
}

func WithMaxBufferedDocs(n int32) ConfigFunc { return func(c *Config) { c.Writer.MaxBufferedDocs = n } }
func WithMergeFactor(n int32) ConfigFunc     { return func(c *Config) { c.Writer.MergeFactor = n } }
func WithMaxMergeDocs(n int32) ConfigFunc    { return func(c *Config) { c.Writer.MaxMergeDocs = n } }

func WithAnalyzer(a index.Analyzer) ConfigFunc     { return func(c *Config) { c.Analyzer = a } }
func WithSimilarity(s search.Similarity) ConfigFunc { return func(c *Config) { c.Similarity = s } }

func WithLogger(l *zap.SugaredLogger) ConfigFunc {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
			c.Writer.Logger = l
		}
	}
}
