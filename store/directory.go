// Package store implements the namespaced byte-file directory abstraction,
// the Lucene binary stream codecs, cross-process locking, and the
// generation-witness protocol (spec §4.1, §4.2).
package store

import (
	"io"
	"time"
)

// Whence selects the origin for IndexInput.Seek, mirroring io.Seeker's
// constants without depending on a particular offset type.
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

// Directory is a flat, case-sensitive namespace of named byte files. Two
// files with the same name cannot coexist; Rename atomically replaces any
// existing destination (spec §3).
type Directory interface {
	// List returns every file name currently in the directory.
	List() ([]string, error)
	// Exists reports whether name is present.
	Exists(name string) bool
	// Length returns the byte size of name.
	Length(name string) (int64, error)
	// Mtime returns the last-modified time of name.
	Mtime(name string) (time.Time, error)
	// Touch updates name's modification time, creating it empty if absent.
	Touch(name string) error
	// Delete removes name and invalidates any cached shared handle for it.
	Delete(name string) error
	// Rename atomically replaces to with from's contents, invalidating
	// cached handles for both names.
	Rename(from, to string) error
	// Create opens name for writing, truncating any existing content.
	Create(name string) (IndexOutput, error)
	// Open returns a readable stream over name. When shared is true the
	// directory may return (and reuse) a cached handle; when false the
	// caller always gets a stream with an independent read cursor.
	Open(name string, shared bool) (IndexInput, error)
	// MakeLock returns an exclusive Lock keyed by name, not yet obtained.
	MakeLock(name string) Lock
	// MakeReadLock returns the shared, reference-counted read-lock variant
	// of MakeLock: any number of holders may obtain it concurrently, but
	// none may coexist with an exclusive MakeLock holder of the same name
	// (spec §4.1, §9 "Shared-resource policy").
	MakeReadLock(name string) Lock
	// Close flushes and releases every cached handle owned by this
	// Directory instance.
	Close() error
}

// IndexInput is a seekable reader over one named file, exposing Lucene's
// numeric and string codecs (spec §4.2).
type IndexInput interface {
	io.Closer

	Seek(offset int64, whence Whence) error
	Tell() int64
	Size() int64

	ReadByte() (byte, error)
	ReadBytes(n int) ([]byte, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadVInt() (int32, error)
	ReadVLong() (int64, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)

	// Clone returns an independent stream over the same file, positioned
	// at the same offset but with its own cursor — required so concurrent
	// phrase/positional decoding never races on a shared position.
	Clone() IndexInput
}

// IndexOutput is an append-only writer over one named file.
type IndexOutput interface {
	io.Closer

	WriteByte(b byte) error
	WriteBytes(b []byte) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteVInt(v int32) error
	WriteVLong(v int64) error
	WriteString(s string) error
	WriteBinary(b []byte) error

	Flush() error
	Tell() int64
}
