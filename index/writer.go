package index

import (
	"go.uber.org/zap"

	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
)

// WriteLockName is the lock file guarding the commit protocol (spec §4.7
// step 1 "acquire write lock").
const WriteLockName = "write.lock"

const (
	DefaultMaxBufferedDocs = int32(10)
	DefaultMergeFactor     = int32(10)
	// DefaultMaxMergeDocs models Lucene's "effectively unbounded" default.
	DefaultMaxMergeDocs = int32(1<<31 - 1)
)

// WriterConfig tunes buffering and the log-size merge policy (spec §4.7).
type WriterConfig struct {
	MaxBufferedDocs int32
	MaxMergeDocs    int32
	MergeFactor     int32
	Logger          *zap.SugaredLogger
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MaxBufferedDocs: DefaultMaxBufferedDocs,
		MaxMergeDocs:    DefaultMaxMergeDocs,
		MergeFactor:     DefaultMergeFactor,
		Logger:          zap.NewNop().Sugar(),
	}
}

type bufferedDoc struct {
	fields []IndexableField
	boost  float32
}

// Writer buffers new documents, flushes them into new segments, runs the
// log-size merge policy after every flush, and rewrites segments_N
// atomically under the write lock (spec §4.7). A Writer mutates sis in
// place; the caller (the root index orchestrator) owns sis and any open
// SegmentReaders and must keep them in step with it.
type Writer struct {
	dir      store.Directory
	cfg      WriterConfig
	analyzer Analyzer
	sis      *codec.SegmentInfos
	buffer   []bufferedDoc
}

func NewWriter(dir store.Directory, sis *codec.SegmentInfos, analyzer Analyzer, cfg WriterConfig) *Writer {
	if cfg.MaxBufferedDocs <= 0 {
		cfg.MaxBufferedDocs = DefaultMaxBufferedDocs
	}
	if cfg.MaxMergeDocs <= 0 {
		cfg.MaxMergeDocs = DefaultMaxMergeDocs
	}
	if cfg.MergeFactor <= 0 {
		cfg.MergeFactor = DefaultMergeFactor
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Writer{dir: dir, cfg: cfg, analyzer: analyzer, sis: sis}
}

// AddDocument buffers doc, flushing automatically once maxBufferedDocs is
// reached (spec §4.7 "Buffering").
func (w *Writer) AddDocument(doc IndexableDocument) error {
	w.buffer = append(w.buffer, bufferedDoc{fields: doc.Fields(), boost: doc.Boost()})
	if int32(len(w.buffer)) >= w.cfg.MaxBufferedDocs {
		return w.flushBuffer()
	}
	return nil
}

func (w *Writer) flushBuffer() error {
	if len(w.buffer) == 0 {
		return nil
	}
	name := w.sis.NewSegmentName()
	info, err := flushSegment(w.dir, w.buffer, w.analyzer, name)
	if err != nil {
		return err
	}
	w.sis.Segments = append(w.sis.Segments, info)
	w.buffer = nil
	w.cfg.Logger.Infow("flushed segment", "name", name, "docs", info.DocCount)
	return w.runMergePolicy(false)
}

// runMergePolicy repeatedly merges qualifying tail groups. force=true
// (Optimize) merges down to one segment, ignoring maxMergeDocs (spec
// §4.7 "optimize() ... overrides maxMergeDocs").
func (w *Writer) runMergePolicy(force bool) error {
	for {
		var start, count int
		if force {
			if len(w.sis.Segments) <= 1 {
				return nil
			}
			start, count = 0, len(w.sis.Segments)
		} else {
			start, count = planMerge(w.sis.Segments, w.cfg.MergeFactor, w.cfg.MaxMergeDocs)
			if start < 0 {
				return nil
			}
		}
		if err := w.mergeGroup(start, count); err != nil {
			return err
		}
		if force && len(w.sis.Segments) == 1 {
			return nil
		}
	}
}

func (w *Writer) mergeGroup(start, count int) error {
	group := w.sis.Segments[start : start+count]
	readers := make([]*SegmentReader, len(group))
	for i, info := range group {
		sr, err := OpenSegmentReader(w.dir, info)
		if err != nil {
			return err
		}
		readers[i] = sr
	}
	defer func() {
		for _, sr := range readers {
			sr.Close()
		}
	}()

	name := w.sis.NewSegmentName()
	merged, err := mergeSegments(w.dir, readers, name)
	if err != nil {
		return err
	}

	oldNames := make([]string, len(group))
	for i, info := range group {
		oldNames[i] = info.Name
	}

	newSegs := make([]*codec.SegmentInfo, 0, len(w.sis.Segments)-count+1)
	newSegs = append(newSegs, w.sis.Segments[:start]...)
	newSegs = append(newSegs, merged)
	newSegs = append(newSegs, w.sis.Segments[start+count:]...)
	w.sis.Segments = newSegs

	w.cfg.Logger.Infow("merged segments", "into", name, "sources", oldNames, "docs", merged.DocCount)
	for _, oldName := range oldNames {
		if err := deleteSegmentFiles(w.dir, oldName); err != nil {
			w.cfg.Logger.Warnw("failed to delete superseded segment files", "segment", oldName, "error", err)
		}
	}
	return nil
}

// Optimize forces repeated merges until exactly one segment remains
// (spec §4.7 "optimize()").
func (w *Writer) Optimize() error {
	if err := w.flushBuffer(); err != nil {
		return err
	}
	return w.runMergePolicy(true)
}

// Commit runs the commit protocol (spec §4.7): materialize pending
// deletions from the passed-in readers (which must align 1:1, in order,
// with w.sis.Segments as they stand when Commit is called), then flush any
// buffered documents, write segments_{g+1}, flip segments.gen, delete
// superseded files, all under the write lock.
func (w *Writer) Commit(readers []*SegmentReader) (int64, error) {
	lock := w.dir.MakeLock(WriteLockName)
	if err := lock.Obtain(); err != nil {
		return 0, err
	}
	defer lock.Release()

	for i, sr := range readers {
		if i >= len(w.sis.Segments) || !sr.HasDeletions() {
			continue
		}
		info := w.sis.Segments[i]
		newDelGen := int64(0)
		if info.DelGen != codec.NoDelGen {
			newDelGen = info.DelGen + 1
		}
		out, err := w.dir.Create(codec.DelFileName(info.Name, newDelGen))
		if err != nil {
			return 0, err
		}
		if err := WriteDeletions(out, sr.Deletions()); err != nil {
			out.Close()
			return 0, err
		}
		if err := out.Close(); err != nil {
			return 0, err
		}
		if info.DelGen != codec.NoDelGen {
			w.dir.Delete(codec.DelFileName(info.Name, info.DelGen))
		}
		info.DelGen = newDelGen
	}

	if err := w.flushBuffer(); err != nil {
		return 0, err
	}

	newGen, err := codec.Write(w.dir, w.sis)
	if err != nil {
		return 0, err
	}
	if err := store.WriteGeneration(w.dir, newGen); err != nil {
		return 0, err
	}
	return newGen, nil
}
