package codec

import (
	"sort"
	"unicode/utf16"

	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/store"
)

// CompoundFileExt is the extension of a segment's packed sub-file
// container (spec §4.3).
const CompoundFileExt = "cfs"

// cfsEntry is one record of a .cfs file's header: the sub-file's name and
// its byte offset within the container.
type cfsEntry struct {
	name   string
	offset int64
}

// WriteCompoundFile packs files (already present in dir, under
// segmentName's other extensions) into segmentName.cfs: a header of
// (offset, name) pairs followed by each file's raw bytes back to back
// (spec §4.3). Source files are not deleted; the caller removes them
// once the compound file is durably written.
func WriteCompoundFile(dir store.Directory, segmentName string, files []string) error {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	out, err := dir.Create(SegmentFileName(segmentName, CompoundFileExt))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.WriteVInt(int32(len(sorted))); err != nil {
		return err
	}

	// First pass: reserve header space by writing placeholder offsets,
	// since each file's true offset depends on the header's own encoded
	// length (VInt lengths of names vary). We instead compute the header
	// size up front by encoding it once into a throwaway buffer length.
	headerSize := headerByteSize(sorted)
	offset := headerSize
	offsets := make([]int64, len(sorted))
	for i, name := range sorted {
		offsets[i] = offset
		length, err := dir.Length(name)
		if err != nil {
			return err
		}
		offset += length
	}

	for i, name := range sorted {
		if err := out.WriteLong(offsets[i]); err != nil {
			return err
		}
		if err := out.WriteString(name); err != nil {
			return err
		}
	}

	buf := make([]byte, 64*1024)
	for _, name := range sorted {
		in, err := dir.Open(name, false)
		if err != nil {
			return err
		}
		remaining := in.Size()
		for remaining > 0 {
			n := int64(len(buf))
			if remaining < n {
				n = remaining
			}
			chunk, err := in.ReadBytes(int(n))
			if err != nil {
				in.Close()
				return err
			}
			if err := out.WriteBytes(chunk); err != nil {
				in.Close()
				return err
			}
			remaining -= n
		}
		in.Close()
	}

	return nil
}

// headerByteSize computes the exact encoded size of a .cfs header (VInt
// count + per-entry int64 offset + VInt-prefixed modified-UTF-8 name) so
// WriteCompoundFile can compute sub-file offsets before writing them.
// It mirrors store's VInt and modified-UTF-8 encoding rules directly,
// since that codec is store-internal.
func headerByteSize(names []string) int64 {
	size := int64(vIntLen(int32(len(names))))
	for _, name := range names {
		size += 8 // int64 offset
		size += modifiedUTF8Len(name)
	}
	return size
}

func vIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u&^0x7f != 0 {
		u >>= 7
		n++
	}
	return n
}

// modifiedUTF8Len is the byte length writeString would emit for s: a VInt
// unit count followed by each UTF-16 code unit encoded 1-3 bytes wide.
func modifiedUTF8Len(s string) int64 {
	units := utf16.Encode([]rune(s))
	size := int64(vIntLen(int32(len(units))))
	for _, u := range units {
		switch {
		case u == 0:
			size += 2
		case u < 0x80:
			size++
		case u < 0x800:
			size += 2
		default:
			size += 3
		}
	}
	return size
}

// CompoundFileReader exposes the sub-files packed into a .cfs as if they
// were independent Directory entries, per spec §4.3.
type CompoundFileReader struct {
	in      store.IndexInput
	name    string
	entries map[string]cfsEntry
	end     int64
}

// OpenCompoundFile reads segmentName.cfs's header and returns a reader
// over its packed sub-files.
func OpenCompoundFile(dir store.Directory, segmentName string) (*CompoundFileReader, error) {
	fileName := SegmentFileName(segmentName, CompoundFileExt)
	in, err := dir.Open(fileName, true)
	if err != nil {
		return nil, err
	}

	count, err := in.ReadVInt()
	if err != nil {
		in.Close()
		return nil, err
	}
	if count < 0 {
		in.Close()
		return nil, errs.NewInvalidFileFormat("%s: negative entry count %d", fileName, count)
	}

	entries := make(map[string]cfsEntry, count)
	for i := int32(0); i < count; i++ {
		offset, err := in.ReadLong()
		if err != nil {
			in.Close()
			return nil, err
		}
		name, err := in.ReadString()
		if err != nil {
			in.Close()
			return nil, err
		}
		entries[name] = cfsEntry{name: name, offset: offset}
	}

	return &CompoundFileReader{in: in, name: fileName, entries: entries, end: in.Size()}, nil
}

// Files lists the sub-file names packed in this compound file.
func (r *CompoundFileReader) Files() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *CompoundFileReader) subLength(name string) int64 {
	e, ok := r.entries[name]
	if !ok {
		return 0
	}
	// Sub-file length is the gap to the next entry's offset (by file
	// order) or to the end of the container for the last entry.
	best := r.end
	for _, other := range r.entries {
		if other.offset > e.offset && other.offset < best {
			best = other.offset
		}
	}
	return best - e.offset
}

// OpenInput returns an IndexInput scoped to one packed sub-file, sharing
// the container's underlying handle via Clone so concurrent sub-file
// reads don't interfere with each other's cursor.
func (r *CompoundFileReader) OpenInput(name string) (store.IndexInput, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, errs.NewInvalidArgument("no sub-file %q in compound file %q", name, r.name)
	}
	clone := r.in.Clone()
	if err := clone.Seek(e.offset, store.SeekStart); err != nil {
		clone.Close()
		return nil, err
	}
	length := r.subLength(name)
	return &subFileInput{base: clone, base0: e.offset, length: length}, nil
}

func (r *CompoundFileReader) Close() error { return r.in.Close() }

// subFileInput offsets every position by a fixed base so a slice of the
// compound file reads like a standalone IndexInput starting at 0.
type subFileInput struct {
	base   store.IndexInput
	base0  int64
	length int64
}

func (s *subFileInput) ReadByte() (byte, error) { return s.base.ReadByte() }
func (s *subFileInput) ReadBytes(n int) ([]byte, error) { return s.base.ReadBytes(n) }
func (s *subFileInput) ReadInt() (int32, error)      { return s.base.ReadInt() }
func (s *subFileInput) ReadLong() (int64, error)     { return s.base.ReadLong() }
func (s *subFileInput) ReadVInt() (int32, error)     { return s.base.ReadVInt() }
func (s *subFileInput) ReadVLong() (int64, error)    { return s.base.ReadVLong() }
func (s *subFileInput) ReadString() (string, error)  { return s.base.ReadString() }
func (s *subFileInput) ReadBinary() ([]byte, error)  { return s.base.ReadBinary() }

func (s *subFileInput) Seek(offset int64, whence store.Whence) error {
	switch whence {
	case store.SeekStart:
		return s.base.Seek(s.base0+offset, store.SeekStart)
	case store.SeekCurrent:
		return s.base.Seek(offset, store.SeekCurrent)
	case store.SeekEnd:
		return s.base.Seek(s.base0+s.length+offset, store.SeekStart)
	}
	return nil
}

func (s *subFileInput) Tell() int64  { return s.base.Tell() - s.base0 }
func (s *subFileInput) Size() int64  { return s.length }
func (s *subFileInput) Close() error { return s.base.Close() }

func (s *subFileInput) Clone() store.IndexInput {
	return &subFileInput{base: s.base.Clone(), base0: s.base0, length: s.length}
}
