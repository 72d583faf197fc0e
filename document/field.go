// Package document is the minimal Document/Field representation client
// code builds and the writer consumes through the index package's
// IndexableDocument/IndexableField interfaces (spec §1 "field-kind
// definitions" are an out-of-scope external collaborator; spec §3
// "Document"). Field kinds: tokenized text, untokenized keyword,
// stored-only, binary.
package document

import "github.com/sajya/lucene/index"

// Field is one named value of a Document, carrying the flags that decide
// whether it is indexed, tokenized, stored verbatim, or binary (spec §1).
type Field struct {
	name      string
	value     string
	blob      []byte
	indexed   bool
	tokenized bool
	stored    bool
	binary    bool
	omitNorms bool
	boost     float32
}

// FieldOption customizes a Field at construction.
type FieldOption func(*Field)

// Stored marks the field's value to be kept verbatim in the stored-fields
// stream, retrievable later via GetDocument.
func Stored() FieldOption { return func(f *Field) { f.stored = true } }

// OmitNorms skips length-normalization for this field, appropriate for
// fields whose relevance shouldn't be penalized by length (e.g. an id).
func OmitNorms() FieldOption { return func(f *Field) { f.omitNorms = true } }

// Boost scales this field's contribution to document score.
func Boost(b float32) FieldOption { return func(f *Field) { f.boost = b } }

// NewTextField creates an indexed, tokenized field: the common case for
// free-text body content.
func NewTextField(name, value string, opts ...FieldOption) *Field {
	f := &Field{name: name, value: value, indexed: true, tokenized: true, boost: 1.0}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NewKeywordField creates an indexed but untokenized field: the value is
// indexed as a single term, useful for ids, tags, and exact-match codes.
func NewKeywordField(name, value string, opts ...FieldOption) *Field {
	f := &Field{name: name, value: value, indexed: true, tokenized: false, boost: 1.0}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NewStoredField creates a field that is stored but not indexed: present
// in GetDocument results, absent from search.
func NewStoredField(name, value string) *Field {
	return &Field{name: name, value: value, stored: true, boost: 1.0}
}

// NewBinaryField creates a stored, non-indexed raw byte payload.
func NewBinaryField(name string, blob []byte) *Field {
	return &Field{name: name, blob: blob, stored: true, binary: true, boost: 1.0}
}

func (f *Field) Name() string         { return f.name }
func (f *Field) Indexed() bool        { return f.indexed }
func (f *Field) Tokenized() bool      { return f.tokenized }
func (f *Field) Stored() bool         { return f.stored }
func (f *Field) Binary() bool         { return f.binary }
func (f *Field) OmitNorms() bool      { return f.omitNorms }
func (f *Field) StringValue() string  { return f.value }
func (f *Field) BinaryValue() []byte  { return f.blob }
func (f *Field) Boost() float32       { return f.boost }

var _ index.IndexableField = (*Field)(nil)

// Document is an open bag of fields, built up with AddField and handed to
// the writer, or a fetched bag of fields read back via GetDocument (spec
// §3 "Document").
type Document struct {
	fields []*Field
	boost  float32
}

func New() *Document { return &Document{boost: 1.0} }

// AddField appends f, returning the Document for chaining.
func (d *Document) AddField(f *Field) *Document {
	d.fields = append(d.fields, f)
	return d
}

// SetBoost scales every field's contribution by an additional document-
// wide factor.
func (d *Document) SetBoost(b float32) *Document {
	d.boost = b
	return d
}

// Get returns the first field with the given name, or nil.
func (d *Document) Get(name string) *Field {
	for _, f := range d.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// GetAll returns every field with the given name, preserving add order.
func (d *Document) GetAll(name string) []*Field {
	var out []*Field
	for _, f := range d.fields {
		if f.name == name {
			out = append(out, f)
		}
	}
	return out
}

func (d *Document) Fields() []index.IndexableField {
	out := make([]index.IndexableField, len(d.fields))
	for i, f := range d.fields {
		out[i] = f
	}
	return out
}

func (d *Document) Boost() float32 { return d.boost }

var _ index.IndexableDocument = (*Document)(nil)
