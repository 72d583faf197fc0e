package index

import (
	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// NormsExt is the single combined-norms file spec §6 calls ".nrm (or
// per-field .fN)"; this implementation always writes the combined form.
const NormsExt = "nrm"

const (
	normsMagic  = "NRM"
	normsFormat = int32(1)
)

// WriteNorms writes one segment's combined .nrm file: the per-field norm
// byte array (docCount bytes each) for every indexed, non-omit-norms
// field, in ascending field-number order (spec §4.5, §6). norms missing
// an entry for a field get the default (unit) norm.
func WriteNorms(out store.IndexOutput, fis *codec.FieldInfos, docCount int32, norms map[int32][]byte) error {
	if err := out.WriteBytes([]byte(normsMagic)); err != nil {
		return err
	}
	if err := out.WriteInt(normsFormat); err != nil {
		return err
	}
	for n := int32(0); n < int32(fis.Len()); n++ {
		fi := fis.ByNumber(n)
		if fi == nil || !fi.Indexed || fi.OmitNorms {
			continue
		}
		b := norms[n]
		if b == nil {
			b = defaultNormBytes(docCount)
		}
		if int32(len(b)) != docCount {
			return errs.NewInvalidArgument("norms for field %q: got %d bytes, want %d", fi.Name, len(b), docCount)
		}
		if err := out.WriteBytes(b); err != nil {
			return err
		}
	}
	return nil
}

func defaultNormBytes(docCount int32) []byte {
	b := make([]byte, docCount)
	one := util.EncodeNorm(1.0)
	for i := range b {
		b[i] = one
	}
	return b
}

// NormsReader serves per-document, per-field norm bytes out of a
// segment's open .nrm stream, seeking on demand rather than loading the
// whole file (spec §4.5 "norm(localId, field)").
type NormsReader struct {
	in       store.IndexInput
	docCount int32
	offsets  map[int32]int64
}

// OpenNormsReader reads the .nrm header and computes each field's byte
// offset within the file.
func OpenNormsReader(in store.IndexInput, fis *codec.FieldInfos, docCount int32) (*NormsReader, error) {
	magic, err := in.ReadBytes(len(normsMagic))
	if err != nil {
		return nil, err
	}
	if string(magic) != normsMagic {
		return nil, errs.NewInvalidFileFormat("bad .nrm magic %q", magic)
	}
	if _, err := in.ReadInt(); err != nil {
		return nil, err
	}

	offsets := make(map[int32]int64)
	pos := in.Tell()
	for n := int32(0); n < int32(fis.Len()); n++ {
		fi := fis.ByNumber(n)
		if fi == nil || !fi.Indexed || fi.OmitNorms {
			continue
		}
		offsets[n] = pos
		pos += int64(docCount)
	}

	return &NormsReader{in: in, docCount: docCount, offsets: offsets}, nil
}

// Norm decodes the stored norm byte for one (document, field) pair,
// defaulting to the unit norm for fields that omit norms entirely.
func (r *NormsReader) Norm(localID int32, fieldNum int32) (byte, error) {
	off, ok := r.offsets[fieldNum]
	if !ok {
		return util.EncodeNorm(1.0), nil
	}
	if err := r.in.Seek(off+int64(localID), store.SeekStart); err != nil {
		return 0, err
	}
	return r.in.ReadByte()
}

func (r *NormsReader) Close() error { return r.in.Close() }
