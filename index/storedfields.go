package index

import (
	"github.com/sajya/lucene/store"
)

// Stored-fields extensions (spec §6: ".fdx/.fdt stored fields").
const (
	FieldIndexExt = "fdx"
	FieldDataExt  = "fdt"
)

const (
	storedFieldTokenized = 1 << 0
	storedFieldBinary    = 1 << 1
)

// StoredField is one field's stored-at-write-time payload: either a
// modified-UTF-8 string value or a raw binary blob (spec §3 "Document").
type StoredField struct {
	Number    int32
	Tokenized bool
	Binary    bool
	Value     string
	Blob      []byte
}

// StoredFieldsWriter appends documents to a segment's .fdx/.fdt pair: one
// fixed-width int64 pointer per document in .fdx, pointing into the
// variable-length record stream in .fdt (spec §4.5, §6).
type StoredFieldsWriter struct {
	fdxOut store.IndexOutput
	fdtOut store.IndexOutput
}

func NewStoredFieldsWriter(fdxOut, fdtOut store.IndexOutput) *StoredFieldsWriter {
	return &StoredFieldsWriter{fdxOut: fdxOut, fdtOut: fdtOut}
}

// AddDocument appends one document's fields, in the order given.
func (w *StoredFieldsWriter) AddDocument(fields []StoredField) error {
	if err := w.fdxOut.WriteLong(w.fdtOut.Tell()); err != nil {
		return err
	}
	if err := w.fdtOut.WriteVInt(int32(len(fields))); err != nil {
		return err
	}
	for _, f := range fields {
		if err := w.fdtOut.WriteVInt(f.Number); err != nil {
			return err
		}
		var bits byte
		if f.Tokenized {
			bits |= storedFieldTokenized
		}
		if f.Binary {
			bits |= storedFieldBinary
		}
		if err := w.fdtOut.WriteByte(bits); err != nil {
			return err
		}
		if f.Binary {
			if err := w.fdtOut.WriteBinary(f.Blob); err != nil {
				return err
			}
		} else if err := w.fdtOut.WriteString(f.Value); err != nil {
			return err
		}
	}
	return nil
}

// StoredFieldsReader fetches one document's stored fields at a time via
// the .fdx pointer table (spec §4.5 "stored-field accessors").
type StoredFieldsReader struct {
	fdxIn store.IndexInput
	fdtIn store.IndexInput
}

func OpenStoredFieldsReader(fdxIn, fdtIn store.IndexInput) *StoredFieldsReader {
	return &StoredFieldsReader{fdxIn: fdxIn, fdtIn: fdtIn}
}

// Document fetches the stored fields of local document id localID.
func (r *StoredFieldsReader) Document(localID int32) ([]StoredField, error) {
	if err := r.fdxIn.Seek(int64(localID)*8, store.SeekStart); err != nil {
		return nil, err
	}
	ptr, err := r.fdxIn.ReadLong()
	if err != nil {
		return nil, err
	}
	if err := r.fdtIn.Seek(ptr, store.SeekStart); err != nil {
		return nil, err
	}
	n, err := r.fdtIn.ReadVInt()
	if err != nil {
		return nil, err
	}
	fields := make([]StoredField, n)
	for i := int32(0); i < n; i++ {
		number, err := r.fdtIn.ReadVInt()
		if err != nil {
			return nil, err
		}
		bits, err := r.fdtIn.ReadByte()
		if err != nil {
			return nil, err
		}
		f := StoredField{Number: number, Tokenized: bits&storedFieldTokenized != 0, Binary: bits&storedFieldBinary != 0}
		if f.Binary {
			f.Blob, err = r.fdtIn.ReadBinary()
		} else {
			f.Value, err = r.fdtIn.ReadString()
		}
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func (r *StoredFieldsReader) Close() error {
	if err := r.fdxIn.Close(); err != nil {
		return err
	}
	return r.fdtIn.Close()
}
