// Package codec implements the on-disk structures that sit above the raw
// binary stream: field schemas (.fnm), the segments_N / segments.gen
// generation file, and compound-file (.cfs) packing (spec §4.3, §6).
package codec

import (
	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/store"
)

// Field kinds a Document's Field can carry (spec §1: "tokenized text,
// untokenized keyword, stored-only, binary"). analysis/document own the
// write-time API; FieldInfo is the read/write-time schema record that
// lands in the segment's .fnm file.
const (
	fnmIndexed    = 1 << 0
	fnmTokenized  = 1 << 1
	fnmStored     = 1 << 2
	fnmBinary     = 1 << 3
	fnmOmitNorms  = 1 << 4
)

// FieldInfo is one row of a segment's field schema table.
type FieldInfo struct {
	Name       string
	Number     int32
	Indexed    bool
	Tokenized  bool
	Stored     bool
	Binary     bool
	OmitNorms  bool
}

func (fi *FieldInfo) bits() byte {
	var b byte
	if fi.Indexed {
		b |= fnmIndexed
	}
	if fi.Tokenized {
		b |= fnmTokenized
	}
	if fi.Stored {
		b |= fnmStored
	}
	if fi.Binary {
		b |= fnmBinary
	}
	if fi.OmitNorms {
		b |= fnmOmitNorms
	}
	return b
}

func fieldInfoFromBits(name string, number int32, b byte) *FieldInfo {
	return &FieldInfo{
		Name:      name,
		Number:    number,
		Indexed:   b&fnmIndexed != 0,
		Tokenized: b&fnmTokenized != 0,
		Stored:    b&fnmStored != 0,
		Binary:    b&fnmBinary != 0,
		OmitNorms: b&fnmOmitNorms != 0,
	}
}

// FieldInfos is the ordered, number-addressable set of FieldInfo for one
// segment. Field numbers are stable within a segment and are what postings
// and term-dictionary entries reference (spec §4.4).
type FieldInfos struct {
	byNumber []*FieldInfo
	byName   map[string]*FieldInfo
}

func NewFieldInfos() *FieldInfos {
	return &FieldInfos{byName: make(map[string]*FieldInfo)}
}

// Add registers name if unseen, or returns the existing FieldInfo merged
// with any newly-observed capability (e.g. a field indexed in one
// document and merely stored in another ends up Indexed && Stored).
func (fis *FieldInfos) Add(name string, indexed, tokenized, stored, binary bool) *FieldInfo {
	if fi, ok := fis.byName[name]; ok {
		fi.Indexed = fi.Indexed || indexed
		fi.Tokenized = fi.Tokenized || tokenized
		fi.Stored = fi.Stored || stored
		fi.Binary = fi.Binary || binary
		return fi
	}
	fi := &FieldInfo{
		Name:      name,
		Number:    int32(len(fis.byNumber)),
		Indexed:   indexed,
		Tokenized: tokenized,
		Stored:    stored,
		Binary:    binary,
	}
	fis.byNumber = append(fis.byNumber, fi)
	fis.byName[name] = fi
	return fi
}

func (fis *FieldInfos) ByName(name string) (*FieldInfo, bool) {
	fi, ok := fis.byName[name]
	return fi, ok
}

func (fis *FieldInfos) ByNumber(n int32) *FieldInfo {
	if n < 0 || int(n) >= len(fis.byNumber) {
		return nil
	}
	return fis.byNumber[n]
}

func (fis *FieldInfos) Len() int { return len(fis.byNumber) }

func (fis *FieldInfos) Names(indexedOnly bool) []string {
	names := make([]string, 0, len(fis.byNumber))
	for _, fi := range fis.byNumber {
		if indexedOnly && !fi.Indexed {
			continue
		}
		names = append(names, fi.Name)
	}
	return names
}

// WriteFieldInfos serializes to a segment's .fnm file.
func WriteFieldInfos(out store.IndexOutput, fis *FieldInfos) error {
	if err := out.WriteVInt(int32(len(fis.byNumber))); err != nil {
		return err
	}
	for _, fi := range fis.byNumber {
		if err := out.WriteString(fi.Name); err != nil {
			return err
		}
		if err := out.WriteVInt(fi.Number); err != nil {
			return err
		}
		if err := out.WriteByte(fi.bits()); err != nil {
			return err
		}
	}
	return nil
}

// ReadFieldInfos deserializes a segment's .fnm file.
func ReadFieldInfos(in store.IndexInput) (*FieldInfos, error) {
	n, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	fis := &FieldInfos{byName: make(map[string]*FieldInfo, n)}
	fis.byNumber = make([]*FieldInfo, n)
	for i := int32(0); i < n; i++ {
		name, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		number, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		bits, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		if int(number) != int(i) {
			return nil, errs.NewInvalidFileFormat("field %q has out-of-order number %d (expected %d)", name, number, i)
		}
		fi := fieldInfoFromBits(name, number, bits)
		fis.byNumber[i] = fi
		fis.byName[name] = fi
	}
	return fis, nil
}
