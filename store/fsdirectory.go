package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sajya/lucene/errs"
)

// FSDirectory is a Directory backed by a real filesystem directory. Shared
// IndexInput handles are cached per file name and reused across Open calls;
// non-shared Opens clone the cached handle so each caller gets an
// independent read cursor without paying for a second file descriptor.
type FSDirectory struct {
	path string

	mu      sync.Mutex
	cached  map[string]*fsIndexInput
	closed  bool
}

// NewFSDirectory opens (creating if necessary) a directory at path.
func NewFSDirectory(path string) (*FSDirectory, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errs.WrapRuntime(err, "cannot create directory %q", path)
	}
	return &FSDirectory{path: path, cached: make(map[string]*fsIndexInput)}, nil
}

func (d *FSDirectory) full(name string) string { return filepath.Join(d.path, name) }

func (d *FSDirectory) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, errs.WrapRuntime(err, "list %q", d.path)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (d *FSDirectory) Exists(name string) bool {
	_, err := os.Stat(d.full(name))
	return err == nil
}

func (d *FSDirectory) Length(name string) (int64, error) {
	fi, err := os.Stat(d.full(name))
	if err != nil {
		return 0, errs.WrapRuntime(err, "length %q", name)
	}
	return fi.Size(), nil
}

func (d *FSDirectory) Mtime(name string) (time.Time, error) {
	fi, err := os.Stat(d.full(name))
	if err != nil {
		return time.Time{}, errs.WrapRuntime(err, "mtime %q", name)
	}
	return fi.ModTime(), nil
}

func (d *FSDirectory) Touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(d.full(name), now, now); err == nil {
		return nil
	}
	f, err := os.OpenFile(d.full(name), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errs.WrapRuntime(err, "touch %q", name)
	}
	return f.Close()
}

func (d *FSDirectory) Delete(name string) error {
	d.mu.Lock()
	if ci, ok := d.cached[name]; ok {
		ci.file.Close()
		delete(d.cached, name)
	}
	d.mu.Unlock()

	if err := os.Remove(d.full(name)); err != nil && !os.IsNotExist(err) {
		return errs.WrapRuntime(err, "delete %q", name)
	}
	return nil
}

func (d *FSDirectory) Rename(from, to string) error {
	d.mu.Lock()
	for _, n := range []string{from, to} {
		if ci, ok := d.cached[n]; ok {
			ci.file.Close()
			delete(d.cached, n)
		}
	}
	d.mu.Unlock()

	if err := os.Rename(d.full(from), d.full(to)); err != nil {
		return errs.WrapRuntime(err, "rename %q -> %q", from, to)
	}
	return nil
}

func (d *FSDirectory) Create(name string) (IndexOutput, error) {
	f, err := os.OpenFile(d.full(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errs.WrapRuntime(err, "create %q", name)
	}
	return &fsIndexOutput{file: f, name: name}, nil
}

func (d *FSDirectory) Open(name string, shared bool) (IndexInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	master, ok := d.cached[name]
	if !ok {
		f, err := os.Open(d.full(name))
		if err != nil {
			return nil, errs.WrapRuntime(err, "open %q", name)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errs.WrapRuntime(err, "stat %q", name)
		}
		master = &fsIndexInput{file: f, name: name, length: fi.Size()}
		d.cached[name] = master
	}

	if shared {
		return master, nil
	}
	return master.Clone(), nil
}

func (d *FSDirectory) MakeLock(name string) Lock {
	return newFSLock(d.full(name))
}

func (d *FSDirectory) MakeReadLock(name string) Lock {
	return newFSSharedLock(d.full(name))
}

// Purge closes and evicts the cached shared handle for name, if any,
// without deleting the underlying file, freeing its descriptor (spec §9,
// "Per-process file handle cache"). Nothing in this module calls it; the
// cache is otherwise emptied only by Delete and Close.
func (d *FSDirectory) Purge(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ci, ok := d.cached[name]; ok {
		ci.file.Close()
		delete(d.cached, name)
	}
}

func (d *FSDirectory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	var firstErr error
	for name, ci := range d.cached {
		if err := ci.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %q: %w", name, err)
		}
	}
	d.cached = nil
	return firstErr
}

// fsIndexInput reads at an explicit offset with os.File.ReadAt, so clones
// sharing the same *os.File never interfere with each other's position.
type fsIndexInput struct {
	file   *os.File
	name   string
	off    int64
	length int64
}

func (in *fsIndexInput) ReadByte() (byte, error) {
	var b [1]byte
	n, err := in.file.ReadAt(b[:], in.off)
	if n == 1 {
		in.off++
		return b[0], nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return 0, ErrShortRead
}

func (in *fsIndexInput) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := in.file.ReadAt(buf, in.off)
	in.off += int64(read)
	if read < n {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
		}
		return nil, ErrShortRead
	}
	return buf, nil
}

func (in *fsIndexInput) ReadInt() (int32, error)      { return readInt(in) }
func (in *fsIndexInput) ReadLong() (int64, error)     { return readLong(in) }
func (in *fsIndexInput) ReadVInt() (int32, error)     { return readVInt(in) }
func (in *fsIndexInput) ReadVLong() (int64, error)    { return readVLong(in) }
func (in *fsIndexInput) ReadString() (string, error)  { return readString(in) }
func (in *fsIndexInput) ReadBinary() ([]byte, error)  { return readBinary(in) }

func (in *fsIndexInput) Seek(offset int64, whence Whence) error {
	switch whence {
	case SeekStart:
		in.off = offset
	case SeekCurrent:
		in.off += offset
	case SeekEnd:
		in.off = in.length + offset
	}
	return nil
}

func (in *fsIndexInput) Tell() int64  { return in.off }
func (in *fsIndexInput) Size() int64  { return in.length }
func (in *fsIndexInput) Close() error { return nil } // owned by the Directory's cache

func (in *fsIndexInput) Clone() IndexInput {
	return &fsIndexInput{file: in.file, name: in.name, off: in.off, length: in.length}
}

// fsIndexOutput writes sequentially; Lucene's segment formats never need
// to seek backward on the write side once header fields are precomputed.
type fsIndexOutput struct {
	file *os.File
	name string
	pos  int64
}

func (out *fsIndexOutput) WriteByte(b byte) error {
	_, err := out.file.Write([]byte{b})
	if err != nil {
		return errs.WrapRuntime(err, "write %q", out.name)
	}
	out.pos++
	return nil
}

func (out *fsIndexOutput) WriteBytes(b []byte) error {
	n, err := out.file.Write(b)
	out.pos += int64(n)
	if err != nil {
		return errs.WrapRuntime(err, "write %q", out.name)
	}
	return nil
}

func (out *fsIndexOutput) WriteInt(v int32) error    { return writeInt(out, v) }
func (out *fsIndexOutput) WriteLong(v int64) error   { return writeLong(out, v) }
func (out *fsIndexOutput) WriteVInt(v int32) error   { return writeVInt(out, v) }
func (out *fsIndexOutput) WriteVLong(v int64) error  { return writeVLong(out, v) }
func (out *fsIndexOutput) WriteString(s string) error { return writeString(out, s) }
func (out *fsIndexOutput) WriteBinary(b []byte) error { return writeBinary(out, b) }

func (out *fsIndexOutput) Tell() int64 { return out.pos }

func (out *fsIndexOutput) Flush() error {
	if err := out.file.Sync(); err != nil {
		return errs.WrapRuntime(err, "sync %q", out.name)
	}
	return nil
}

func (out *fsIndexOutput) Close() error {
	if err := out.Flush(); err != nil {
		return err
	}
	return out.file.Close()
}
