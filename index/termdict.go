// Package index implements the segment-level reader and writer: the term
// dictionary, postings/positions streams, norms, stored fields, deletion
// bitvectors, the priority-queue term merger, and the buffering/merge-policy
// writer that ties them together (spec §4.4-§4.7).
package index

import (
	"sort"

	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
)

// Term identifies a (field, text) pair; ordering is lexicographic by field
// then by text, UTF-8 byte order (spec §3).
type Term struct {
	Field string
	Text  string
}

func (t Term) Less(o Term) bool {
	if t.Field != o.Field {
		return t.Field < o.Field
	}
	return t.Text < o.Text
}

// TermInfo is a term dictionary entry: document frequency and the
// starting offsets of its postings in .frq/.prx (spec §4.4).
type TermInfo struct {
	DocFreq     int32
	FreqPointer int64
	ProxPointer int64
	SkipOffset  int32
}

// DefaultTermIndexInterval is how often a term lands in the sparse .tii
// index, one entry per this many .tis detail entries (spec glossary
// "Skip interval").
const DefaultTermIndexInterval = 128

// TermDictWriter emits a segment's .tis (detail) and .tii (sparse index)
// files. Terms must be Add-ed in ascending (field, text) order; the total
// term count must be known up front since IndexOutput never seeks
// backward to patch a header (spec §4.7 "writer... never needs to seek
// backward").
type TermDictWriter struct {
	tisOut store.IndexOutput
	tiiOut store.IndexOutput
	interval int32

	count int64

	prevTerm     Term
	prevFieldNum int32
	prevInfo     TermInfo

	prevIndexedTerm     Term
	prevIndexedFieldNum int32
	prevIndexedInfo     TermInfo
	prevIndexPointer    int64
}

// NewTermDictWriter writes the .tis/.tii headers and returns a writer
// ready for Add. termCount is the exact number of terms that will be
// Add-ed.
func NewTermDictWriter(tisOut, tiiOut store.IndexOutput, termCount int64, interval int32) (*TermDictWriter, error) {
	if interval <= 0 {
		interval = DefaultTermIndexInterval
	}

	if err := writeTisHeader(tisOut, interval, termCount); err != nil {
		return nil, err
	}

	indexSize := int64(0)
	if termCount > 0 {
		indexSize = (termCount + int64(interval) - 1) / int64(interval)
	}
	if err := writeTisHeader(tiiOut, interval, indexSize); err != nil {
		return nil, err
	}

	return &TermDictWriter{
		tisOut:              tisOut,
		tiiOut:               tiiOut,
		interval:             interval,
		prevFieldNum:         -1,
		prevIndexedFieldNum:  -1,
	}, nil
}

func writeTisHeader(out store.IndexOutput, interval int32, size int64) error {
	if err := out.WriteInt(0); err != nil { // format
		return err
	}
	if err := out.WriteInt(interval); err != nil {
		return err
	}
	return out.WriteLong(size)
}

// Add appends one term. fieldNum is its already-resolved field number
// (spec §4.4, resolved via .fnm).
func (w *TermDictWriter) Add(term Term, fieldNum int32, ti TermInfo) error {
	if w.count%int64(w.interval) == 0 {
		if err := w.writeIndexEntry(term, fieldNum, ti); err != nil {
			return err
		}
	}

	prefix := 0
	if fieldNum == w.prevFieldNum {
		prefix = commonPrefixLen(w.prevTerm.Text, term.Text)
	}
	suffix := term.Text[prefix:]

	if err := w.tisOut.WriteVInt(int32(prefix)); err != nil {
		return err
	}
	if err := w.tisOut.WriteString(suffix); err != nil {
		return err
	}
	if err := w.tisOut.WriteVInt(fieldNum); err != nil {
		return err
	}
	if err := w.tisOut.WriteVInt(ti.DocFreq); err != nil {
		return err
	}
	if err := w.tisOut.WriteVLong(ti.FreqPointer - w.prevInfo.FreqPointer); err != nil {
		return err
	}
	if err := w.tisOut.WriteVLong(ti.ProxPointer - w.prevInfo.ProxPointer); err != nil {
		return err
	}
	if err := w.tisOut.WriteVInt(ti.SkipOffset); err != nil {
		return err
	}

	w.prevTerm, w.prevFieldNum, w.prevInfo = term, fieldNum, ti
	w.count++
	return nil
}

func (w *TermDictWriter) writeIndexEntry(term Term, fieldNum int32, ti TermInfo) error {
	prefix := 0
	if fieldNum == w.prevIndexedFieldNum {
		prefix = commonPrefixLen(w.prevIndexedTerm.Text, term.Text)
	}
	suffix := term.Text[prefix:]
	pointer := w.tisOut.Tell()

	if err := w.tiiOut.WriteVInt(int32(prefix)); err != nil {
		return err
	}
	if err := w.tiiOut.WriteString(suffix); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVInt(fieldNum); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVInt(ti.DocFreq); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVLong(ti.FreqPointer - w.prevIndexedInfo.FreqPointer); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVLong(ti.ProxPointer - w.prevIndexedInfo.ProxPointer); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVInt(ti.SkipOffset); err != nil {
		return err
	}
	if err := w.tiiOut.WriteVLong(pointer - w.prevIndexPointer); err != nil {
		return err
	}

	w.prevIndexedTerm, w.prevIndexedFieldNum, w.prevIndexedInfo = term, fieldNum, ti
	w.prevIndexPointer = pointer
	return nil
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// tiiEntry is one row of the in-memory .tii sparse index.
type tiiEntry struct {
	Term     Term
	FieldNum int32
	Info     TermInfo
	Pointer  int64 // byte offset of this term's own record in .tis
}

// TermDictReader answers getTermInfo lookups and drives the ordered term
// cursor used by whole-index enumeration and range/wildcard scans (spec
// §4.4).
type TermDictReader struct {
	tisIn    store.IndexInput
	tisStart int64
	interval int32
	size     int64
	index    []tiiEntry
	fis      *codec.FieldInfos

	curPos      int64
	curTerm     Term
	curFieldNum int32
	curInfo     TermInfo
}

// OpenTermDictReader reads the .tii index fully into memory (it is
// sparse, one entry out of every `interval` terms) and positions tisIn
// for on-demand detail scans.
func OpenTermDictReader(tisIn, tiiIn store.IndexInput, fis *codec.FieldInfos) (*TermDictReader, error) {
	_, interval, size, err := readTisHeader(tisIn)
	if err != nil {
		return nil, err
	}
	tisStart := tisIn.Tell()

	_, _, indexSize, err := readTisHeader(tiiIn)
	if err != nil {
		return nil, err
	}

	idx := make([]tiiEntry, 0, indexSize)
	prevTerm := Term{}
	prevFieldNum := int32(-1)
	prevInfo := TermInfo{}
	prevPointer := int64(0)

	for i := int64(0); i < indexSize; i++ {
		prefix, err := tiiIn.ReadVInt()
		if err != nil {
			return nil, err
		}
		suffix, err := tiiIn.ReadString()
		if err != nil {
			return nil, err
		}
		fieldNum, err := tiiIn.ReadVInt()
		if err != nil {
			return nil, err
		}
		docFreq, err := tiiIn.ReadVInt()
		if err != nil {
			return nil, err
		}
		freqDelta, err := tiiIn.ReadVLong()
		if err != nil {
			return nil, err
		}
		proxDelta, err := tiiIn.ReadVLong()
		if err != nil {
			return nil, err
		}
		skipOffset, err := tiiIn.ReadVInt()
		if err != nil {
			return nil, err
		}
		ptrDelta, err := tiiIn.ReadVLong()
		if err != nil {
			return nil, err
		}

		text := suffix
		if fieldNum == prevFieldNum {
			text = prevTerm.Text[:prefix] + suffix
		}
		term := Term{Field: fieldName(fis, fieldNum), Text: text}
		info := TermInfo{
			DocFreq:     docFreq,
			FreqPointer: prevInfo.FreqPointer + freqDelta,
			ProxPointer: prevInfo.ProxPointer + proxDelta,
			SkipOffset:  skipOffset,
		}
		pointer := prevPointer + ptrDelta

		idx = append(idx, tiiEntry{Term: term, FieldNum: fieldNum, Info: info, Pointer: pointer})
		prevTerm, prevFieldNum, prevInfo, prevPointer = term, fieldNum, info, pointer
	}

	return &TermDictReader{
		tisIn: tisIn, tisStart: tisStart, interval: interval, size: size,
		index: idx, fis: fis, curPos: -1, curFieldNum: -1,
	}, nil
}

func readTisHeader(in store.IndexInput) (format, interval int32, size int64, err error) {
	if format, err = in.ReadInt(); err != nil {
		return
	}
	if interval, err = in.ReadInt(); err != nil {
		return
	}
	size, err = in.ReadLong()
	return
}

func fieldName(fis *codec.FieldInfos, num int32) string {
	if fi := fis.ByNumber(num); fi != nil {
		return fi.Name
	}
	return ""
}

func (r *TermDictReader) Size() int64 { return r.size }

// indexOf returns the index of the greatest sparse entry <= t, or -1 if
// t sorts before every indexed term.
func (r *TermDictReader) indexOf(t Term) int {
	n := len(r.index)
	i := sort.Search(n, func(i int) bool { return t.Less(r.index[i].Term) })
	return i - 1
}

// GetTermInfo looks up a term's docFreq/posting pointers, or returns nil
// if the term is absent (spec §4.4 getTermInfo).
func (r *TermDictReader) GetTermInfo(t Term) (*TermInfo, error) {
	idx := r.indexOf(t)
	if idx < 0 {
		return nil, nil
	}
	entry := r.index[idx]
	if entry.Term == t {
		ti := entry.Info
		return &ti, nil
	}

	if err := r.seekToEntry(entry, idx); err != nil {
		return nil, err
	}

	prevTerm, prevFieldNum, prevInfo := entry.Term, entry.FieldNum, entry.Info
	pos := int64(idx) * int64(r.interval)

	for pos+1 < r.size {
		pos++
		term, fieldNum, info, err := decodeTisRecord(r.tisIn, prevTerm, prevFieldNum, prevInfo, r.fis)
		if err != nil {
			return nil, err
		}
		if term == t {
			return &info, nil
		}
		if t.Less(term) {
			return nil, nil
		}
		prevTerm, prevFieldNum, prevInfo = term, fieldNum, info
	}
	return nil, nil
}

// seekToEntry positions tisIn just past entry's own (redundant, already
// fully known) record so the following decode resumes at the next term.
func (r *TermDictReader) seekToEntry(entry tiiEntry, idx int) error {
	if err := r.tisIn.Seek(entry.Pointer, store.SeekStart); err != nil {
		return err
	}
	return skipTisRecord(r.tisIn)
}

// ResetTermsStream rewinds the detail cursor to the first term.
func (r *TermDictReader) ResetTermsStream() error {
	if err := r.tisIn.Seek(r.tisStart, store.SeekStart); err != nil {
		return err
	}
	r.curPos = -1
	r.curTerm = Term{}
	r.curFieldNum = -1
	r.curInfo = TermInfo{}
	return nil
}

// NextTerm advances the cursor by one detail entry. ok is false once the
// stream is exhausted.
func (r *TermDictReader) NextTerm() (term Term, ti TermInfo, ok bool, err error) {
	if r.curPos+1 >= r.size {
		return Term{}, TermInfo{}, false, nil
	}
	term, fieldNum, ti, err := decodeTisRecord(r.tisIn, r.curTerm, r.curFieldNum, r.curInfo, r.fis)
	if err != nil {
		return Term{}, TermInfo{}, false, err
	}
	r.curTerm, r.curFieldNum, r.curInfo = term, fieldNum, ti
	r.curPos++
	return term, ti, true, nil
}

// CurrentTerm returns the cursor's current term, if any.
func (r *TermDictReader) CurrentTerm() (Term, bool) {
	if r.curPos < 0 {
		return Term{}, false
	}
	return r.curTerm, true
}

// SkipTo advances the cursor to the least term >= target, jumping via the
// sparse .tii index first (spec §4.4).
func (r *TermDictReader) SkipTo(target Term) (term Term, ti TermInfo, ok bool, err error) {
	idx := r.indexOf(target)
	if idx < 0 {
		if err = r.ResetTermsStream(); err != nil {
			return
		}
	} else {
		entry := r.index[idx]
		if entry.Term == target {
			if err = r.tisIn.Seek(entry.Pointer, store.SeekStart); err != nil {
				return
			}
			if err = skipTisRecord(r.tisIn); err != nil {
				return
			}
			r.curTerm, r.curFieldNum, r.curInfo = entry.Term, entry.FieldNum, entry.Info
			r.curPos = int64(idx) * int64(r.interval)
			return entry.Term, entry.Info, true, nil
		}
		if err = r.seekToEntry(entry, idx); err != nil {
			return
		}
		r.curTerm, r.curFieldNum, r.curInfo = entry.Term, entry.FieldNum, entry.Info
		r.curPos = int64(idx) * int64(r.interval)
	}

	for {
		term, ti, ok, err = r.NextTerm()
		if err != nil || !ok {
			return
		}
		if !term.Less(target) {
			return term, ti, true, nil
		}
	}
}

func (r *TermDictReader) CloseTermsStream() error { return r.tisIn.Close() }

func decodeTisRecord(in store.IndexInput, prevTerm Term, prevFieldNum int32, prevInfo TermInfo, fis *codec.FieldInfos) (Term, int32, TermInfo, error) {
	prefix, err := in.ReadVInt()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	suffix, err := in.ReadString()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	fieldNum, err := in.ReadVInt()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	docFreq, err := in.ReadVInt()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	freqDelta, err := in.ReadVLong()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	proxDelta, err := in.ReadVLong()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}
	skipOffset, err := in.ReadVInt()
	if err != nil {
		return Term{}, 0, TermInfo{}, err
	}

	text := suffix
	if fieldNum == prevFieldNum {
		text = prevTerm.Text[:prefix] + suffix
	}
	term := Term{Field: fieldName(fis, fieldNum), Text: text}
	info := TermInfo{
		DocFreq:     docFreq,
		FreqPointer: prevInfo.FreqPointer + freqDelta,
		ProxPointer: prevInfo.ProxPointer + proxDelta,
		SkipOffset:  skipOffset,
	}
	return term, fieldNum, info, nil
}

func skipTisRecord(in store.IndexInput) error {
	if _, err := in.ReadVInt(); err != nil {
		return err
	}
	if _, err := in.ReadString(); err != nil {
		return err
	}
	if _, err := in.ReadVInt(); err != nil {
		return err
	}
	if _, err := in.ReadVInt(); err != nil {
		return err
	}
	if _, err := in.ReadVLong(); err != nil {
		return err
	}
	if _, err := in.ReadVLong(); err != nil {
		return err
	}
	_, err := in.ReadVInt()
	return err
}
