package store

import (
	"sync"
	"time"

	"github.com/sajya/lucene/errs"
)

// RAMDirectory is an in-memory Directory, used by tests and by callers that
// want a throwaway index with no filesystem footprint. Its streams carry
// no lock/unlock operations of their own (spec §4.2).
type RAMDirectory struct {
	mu     sync.Mutex
	files  map[string]*ramFile
	closed bool
}

type ramFile struct {
	data  []byte
	mtime time.Time
}

func NewRAMDirectory() *RAMDirectory {
	return &RAMDirectory{files: make(map[string]*ramFile)}
}

func (d *RAMDirectory) List() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.files))
	for n := range d.files {
		names = append(names, n)
	}
	return names, nil
}

func (d *RAMDirectory) Exists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[name]
	return ok
}

func (d *RAMDirectory) Length(name string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	if !ok {
		return 0, errs.NewRuntime("file %q does not exist", name)
	}
	return int64(len(f.data)), nil
}

func (d *RAMDirectory) Mtime(name string) (time.Time, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	if !ok {
		return time.Time{}, errs.NewRuntime("file %q does not exist", name)
	}
	return f.mtime, nil
}

func (d *RAMDirectory) Touch(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	if !ok {
		d.files[name] = &ramFile{mtime: time.Now()}
		return nil
	}
	f.mtime = time.Now()
	return nil
}

func (d *RAMDirectory) Delete(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, name)
	return nil
}

func (d *RAMDirectory) Rename(from, to string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[from]
	if !ok {
		return errs.NewRuntime("file %q does not exist", from)
	}
	d.files[to] = f
	delete(d.files, from)
	return nil
}

func (d *RAMDirectory) Create(name string) (IndexOutput, error) {
	f := &ramFile{mtime: time.Now()}
	d.mu.Lock()
	d.files[name] = f
	d.mu.Unlock()
	return &ramIndexOutput{file: f}, nil
}

func (d *RAMDirectory) Open(name string, shared bool) (IndexInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	if !ok {
		return nil, errs.NewRuntime("file %q does not exist", name)
	}
	return &ramIndexInput{data: f.data}, nil
}

func (d *RAMDirectory) MakeLock(name string) Lock {
	return newRAMLock(d, name)
}

func (d *RAMDirectory) MakeReadLock(name string) Lock {
	return newRAMSharedLock(d, name)
}

func (d *RAMDirectory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.files = nil
	return nil
}

type ramIndexInput struct {
	data []byte
	off  int64
}

func (in *ramIndexInput) ReadByte() (byte, error) {
	if in.off >= int64(len(in.data)) {
		return 0, ErrShortRead
	}
	b := in.data[in.off]
	in.off++
	return b, nil
}

func (in *ramIndexInput) ReadBytes(n int) ([]byte, error) {
	if in.off+int64(n) > int64(len(in.data)) {
		return nil, ErrShortRead
	}
	b := in.data[in.off : in.off+int64(n)]
	in.off += int64(n)
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (in *ramIndexInput) ReadInt() (int32, error)     { return readInt(in) }
func (in *ramIndexInput) ReadLong() (int64, error)    { return readLong(in) }
func (in *ramIndexInput) ReadVInt() (int32, error)    { return readVInt(in) }
func (in *ramIndexInput) ReadVLong() (int64, error)   { return readVLong(in) }
func (in *ramIndexInput) ReadString() (string, error) { return readString(in) }
func (in *ramIndexInput) ReadBinary() ([]byte, error) { return readBinary(in) }

func (in *ramIndexInput) Seek(offset int64, whence Whence) error {
	switch whence {
	case SeekStart:
		in.off = offset
	case SeekCurrent:
		in.off += offset
	case SeekEnd:
		in.off = int64(len(in.data)) + offset
	}
	return nil
}

func (in *ramIndexInput) Tell() int64  { return in.off }
func (in *ramIndexInput) Size() int64  { return int64(len(in.data)) }
func (in *ramIndexInput) Close() error { return nil }

func (in *ramIndexInput) Clone() IndexInput {
	return &ramIndexInput{data: in.data, off: in.off}
}

type ramIndexOutput struct {
	file *ramFile
	pos  int64
}

func (out *ramIndexOutput) WriteByte(b byte) error {
	out.file.data = append(out.file.data, b)
	out.pos++
	return nil
}

func (out *ramIndexOutput) WriteBytes(b []byte) error {
	out.file.data = append(out.file.data, b...)
	out.pos += int64(len(b))
	return nil
}

func (out *ramIndexOutput) WriteInt(v int32) error    { return writeInt(out, v) }
func (out *ramIndexOutput) WriteLong(v int64) error   { return writeLong(out, v) }
func (out *ramIndexOutput) WriteVInt(v int32) error   { return writeVInt(out, v) }
func (out *ramIndexOutput) WriteVLong(v int64) error  { return writeVLong(out, v) }
func (out *ramIndexOutput) WriteString(s string) error { return writeString(out, s) }
func (out *ramIndexOutput) WriteBinary(b []byte) error { return writeBinary(out, b) }

func (out *ramIndexOutput) Tell() int64  { return out.pos }
func (out *ramIndexOutput) Flush() error { return nil }
func (out *ramIndexOutput) Close() error { return nil }
