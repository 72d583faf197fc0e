// Package lucene binds the directory, segment set, segment readers, and
// writer into the single entry point a caller opens, searches, mutates,
// and commits through (spec §4.10 "Index Orchestrator").
package lucene

import (
	"sort"
	"sync"

	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/index"
	"github.com/sajya/lucene/search"
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// readLockName is the lock file guarding the lifetime of every open index
// (spec §4.1 "Opens the directory, takes the read lock...", §9
// "Shared-resource policy": shared and reference-counted, in contrast to
// index.WriteLockName's exclusive hold across a single commit).
const readLockName = "read.lock"

// Index is the root handle on one on-disk Lucene-format index: a
// directory, its current segment set, one open SegmentReader per live
// segment (kept 1:1 with sis.Segments at all times), and the writer that
// mutates both.
type Index struct {
	mu sync.RWMutex

	dir      store.Directory
	ownDir   bool
	cfg      Config
	readLock store.Lock

	sis     *codec.SegmentInfos
	readers map[*codec.SegmentInfo]*index.SegmentReader
	writer  *index.Writer
}

// Open loads (or creates) the index rooted at path on the local
// filesystem, reading the current generation via the generation-witness
// protocol (spec §4.1, §4.10).
func Open(path string, opts ...ConfigFunc) (*Index, error) {
	dir, err := store.NewFSDirectory(path)
	if err != nil {
		return nil, err
	}
	ix, err := OpenDirectory(dir, opts...)
	if err != nil {
		return nil, err
	}
	ix.ownDir = true
	return ix, nil
}

// OpenDirectory is Open against a caller-owned store.Directory (e.g. an
// in-memory store.RAMDirectory for tests), which Close will not close.
func OpenDirectory(dir store.Directory, opts ...ConfigFunc) (*Index, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	readLock := dir.MakeReadLock(readLockName)
	if err := readLock.Obtain(); err != nil {
		return nil, err
	}

	gen, err := store.ReadGeneration(dir)
	if err != nil {
		readLock.Release()
		return nil, err
	}

	var sis *codec.SegmentInfos
	if gen < 0 {
		sis = codec.New()
	} else {
		sis, err = codec.Read(dir, gen)
		if err != nil {
			readLock.Release()
			return nil, err
		}
	}

	ix := &Index{
		dir:      dir,
		cfg:      cfg,
		readLock: readLock,
		sis:      sis,
		readers:  make(map[*codec.SegmentInfo]*index.SegmentReader),
	}
	ix.writer = index.NewWriter(dir, sis, cfg.Analyzer, cfg.Writer)
	if err := ix.syncReaders(); err != nil {
		readLock.Release()
		return nil, err
	}
	return ix, nil
}

// syncReaders reconciles ix.readers against the current ix.sis.Segments:
// opening a reader for every newly-appeared *codec.SegmentInfo (a fresh
// flush, or the result of a merge) and closing any reader whose
// SegmentInfo is no longer live (superseded by a merge). SegmentInfo
// pointer identity is what tracks a segment's lifetime here: the writer
// always allocates a fresh *codec.SegmentInfo for a flushed or merged
// segment and never mutates one in place except its DelGen.
func (ix *Index) syncReaders() error {
	live := make(map[*codec.SegmentInfo]bool, len(ix.sis.Segments))
	for _, info := range ix.sis.Segments {
		live[info] = true
		if _, ok := ix.readers[info]; ok {
			continue
		}
		sr, err := index.OpenSegmentReader(ix.dir, info)
		if err != nil {
			return err
		}
		ix.readers[info] = sr
	}
	for info, sr := range ix.readers {
		if live[info] {
			continue
		}
		sr.Close()
		delete(ix.readers, info)
	}
	return nil
}

// orderedReaders returns the live readers in ix.sis.Segments order,
// satisfying index.Writer.Commit's 1:1 alignment precondition.
func (ix *Index) orderedReaders() []*index.SegmentReader {
	rs := make([]*index.SegmentReader, len(ix.sis.Segments))
	for i, info := range ix.sis.Segments {
		rs[i] = ix.readers[info]
	}
	return rs
}

func (ix *Index) bases() []int32 {
	bases := make([]int32, len(ix.sis.Segments))
	var sum int32
	for i, info := range ix.sis.Segments {
		bases[i] = sum
		sum += info.DocCount
	}
	return bases
}

// locate maps a whole-index document id to its owning segment reader and
// local id (spec §5 "document ids ... equal to Σ preceding segments'
// docCount + local id").
func (ix *Index) locate(globalID int32) (*index.SegmentReader, int32, bool) {
	bases := ix.bases()
	for i, info := range ix.sis.Segments {
		if globalID >= bases[i] && globalID < bases[i]+info.DocCount {
			return ix.readers[info], globalID - bases[i], true
		}
	}
	return nil, 0, false
}

// AddDocument buffers doc for the next flush (spec §4.7 "Buffering").
func (ix *Index) AddDocument(doc index.IndexableDocument) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.writer.AddDocument(doc); err != nil {
		return err
	}
	return ix.syncReaders()
}

// Delete marks globalID deleted in its owning segment's in-memory
// bitvector; the deletion is only durable after Commit (spec §4.5, §4.7).
func (ix *Index) Delete(globalID int32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	sr, local, ok := ix.locate(globalID)
	if !ok {
		return errs.NewOutOfRange(int(globalID), int(ix.maxDocLocked()))
	}
	sr.Delete(local)
	return nil
}

// Optimize forces a full merge down to one segment (spec §4.7).
func (ix *Index) Optimize() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.writer.Optimize(); err != nil {
		return err
	}
	return ix.syncReaders()
}

// Commit runs the commit protocol: flush, materialize pending deletions,
// write segments_{g+1}, flip segments.gen (spec §4.7).
func (ix *Index) Commit() (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	gen, err := ix.writer.Commit(ix.orderedReaders())
	if err != nil {
		return 0, err
	}
	if err := ix.syncReaders(); err != nil {
		return 0, err
	}
	return gen, nil
}

// Close commits nothing; callers must Commit explicitly before Close.
// It releases the read lock and every open segment reader, and, if this
// Index opened its own directory (via Open), the directory itself.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var firstErr error
	if ix.readLock != nil {
		if err := ix.readLock.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, sr := range ix.readers {
		if err := sr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if ix.ownDir {
		if err := ix.dir.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (ix *Index) maxDocLocked() int32 {
	var sum int32
	for _, info := range ix.sis.Segments {
		sum += info.DocCount
	}
	return sum
}

// MaxDoc is the total document-id space, including deleted slots (spec
// §4.10 "maxDoc").
func (ix *Index) MaxDoc() int32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.maxDocLocked()
}

// NumDocs is MaxDoc minus every deleted document (spec §4.10 "numDocs").
func (ix *Index) NumDocs() int32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var sum int32
	for _, sr := range ix.readers {
		sum += sr.NumDocs()
	}
	return sum
}

// Count is a synonym for NumDocs (spec §4.10 lists both "numDocs" and
// "count" with no distinguishing definition).
func (ix *Index) Count() int32 { return ix.NumDocs() }

func (ix *Index) HasDeletions() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, sr := range ix.readers {
		if sr.HasDeletions() {
			return true
		}
	}
	return false
}

// GetGeneration reports the generation this Index was opened at (or last
// committed to).
func (ix *Index) GetGeneration() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.sis.Generation
}

// GetFormatVersion reports the segments_N format marker this generation
// was read with (spec §6 FormatPre21/Format21/Format23). Commit always
// writes the newest format (Format23) regardless of what was read, so a
// mixed-format index on disk converges to Format23 at the very next
// write (spec §4.10 "conversion deferred to next write"); there is no
// separate SetFormatVersion, since a caller cannot pin an older target.
func (ix *Index) GetFormatVersion() int32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.sis.Format
}

func (ix *Index) FieldNames(indexedOnly bool) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for _, sr := range ix.readers {
		for _, n := range sr.GetFields(indexedOnly) {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// GetDocument fetches globalID's stored fields.
func (ix *Index) GetDocument(globalID int32) ([]index.StoredField, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	sr, local, ok := ix.locate(globalID)
	if !ok {
		return nil, errs.NewOutOfRange(int(globalID), int(ix.maxDocLocked()))
	}
	return sr.Document(local)
}

func (ix *Index) HasTerm(t index.Term) (bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, sr := range ix.readers {
		ok, err := sr.HasTerm(t)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// DocFreq is the number of documents containing t across every live
// segment.
func (ix *Index) DocFreq(t index.Term) (int32, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var sum int32
	for _, sr := range ix.readers {
		df, err := sr.DocFreq(t)
		if err != nil {
			return 0, err
		}
		sum += df
	}
	return sum, nil
}

func (ix *Index) TermDocs(t index.Term) ([]index.Doc, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	bases := ix.bases()
	var all []index.Doc
	for i, info := range ix.sis.Segments {
		docs, err := ix.readers[info].TermDocs(t, bases[i])
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// TermFreqs is TermDocs reduced to a per-document frequency map (spec
// §4.10 "termFreqs").
func (ix *Index) TermFreqs(t index.Term) (map[int32]int32, error) {
	docs, err := ix.TermDocs(t)
	if err != nil {
		return nil, err
	}
	freqs := make(map[int32]int32, len(docs))
	for _, d := range docs {
		freqs[d.ID] = d.Freq
	}
	return freqs, nil
}

func (ix *Index) TermPositions(t index.Term) ([]index.Doc, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	bases := ix.bases()
	var all []index.Doc
	for i, info := range ix.sis.Segments {
		docs, err := ix.readers[info].TermPositions(t, bases[i])
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// Norm decodes globalID's length-norm for field, defaulting to the unit
// norm when the owning segment's schema never saw the field.
func (ix *Index) Norm(globalID int32, field string) (float32, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	sr, local, ok := ix.locate(globalID)
	if !ok {
		return 0, errs.NewOutOfRange(int(globalID), int(ix.maxDocLocked()))
	}
	fi, ok := sr.FieldInfos().ByName(field)
	if !ok {
		return util.DecodeNorm(util.EncodeNorm(1.0)), nil
	}
	return sr.Norm(local, fi.Number)
}

// EnumerateTerms lists every distinct term text indexed under field
// across every live segment, ascending (spec §4.8 rewrite rules;
// search.Index.EnumerateTerms).
func (ix *Index) EnumerateTerms(field string) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	set := make(map[string]bool)
	for _, sr := range ix.readers {
		if err := sr.ResetTermsStream(); err != nil {
			return nil, err
		}
		for {
			t, _, ok, err := sr.NextTerm()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if t.Field == field {
				set[t.Text] = true
			}
		}
	}
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms, nil
}

var _ search.Index = (*Index)(nil)

// Find runs the rewrite -> optimize -> execute -> sort -> top-N pipeline
// (spec §4.10 "find flow"). limit < 0 uses the configured result-set cap.
func (ix *Index) Find(q search.Query, limit int) ([]search.Match, error) {
	if limit < 0 {
		limit = ix.cfg.ResultCap
	}
	s := search.NewSearcher(ix)
	s.SetSimilarity(ix.cfg.Similarity)
	return s.Find(q, limit)
}
