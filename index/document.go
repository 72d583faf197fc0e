package index

// TokenStream is the minimal token-producing interface the writer
// consumes from an external analyzer. Token analyzers are an out-of-scope
// external collaborator (spec §1); the core only names the interface it
// needs (spec §6).
type TokenStream interface {
	// Next returns the next token's text and its position (word offset
	// within the field, gaps allowed for stop-word removal). ok is false
	// once the stream is exhausted.
	Next() (text string, position int32, ok bool, err error)
}

// Analyzer turns one field's raw text into a TokenStream.
type Analyzer interface {
	TokenStream(field, text string) (TokenStream, error)
}

// IndexableField is the minimal field the writer consumes from an
// external Document representation (spec §1 "field-kind definitions" are
// out of scope; this is the interface boundary, per spec §6).
type IndexableField interface {
	Name() string
	Indexed() bool
	Tokenized() bool
	Stored() bool
	Binary() bool
	OmitNorms() bool
	StringValue() string
	BinaryValue() []byte
	Boost() float32
}

// IndexableDocument is the minimal document the writer consumes.
type IndexableDocument interface {
	Fields() []IndexableField
	Boost() float32
}
