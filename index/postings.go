package index

import (
	"github.com/sajya/lucene/store"
)

// Postings extensions (spec §6 "Segment sub-files").
const (
	FreqExt = "frq"
	ProxExt = "prx"
)

// PostingsWriter appends one term's postings to a segment's .frq/.prx
// streams in ascending segment-local doc-id order, delta-encoding doc gaps
// the way spec §3 "Posting" requires. The freq/prox pointers recorded by
// StartTerm are returned in a TermInfo by FinishTerm.
type PostingsWriter struct {
	frqOut store.IndexOutput
	prxOut store.IndexOutput

	lastDoc      int32
	lastPosition int32
	docFreq      int32
	termFreqPtr  int64
	termProxPtr  int64
}

func NewPostingsWriter(frqOut, prxOut store.IndexOutput) *PostingsWriter {
	return &PostingsWriter{frqOut: frqOut, prxOut: prxOut}
}

// StartTerm begins a new term's postings; call before the first AddDoc.
func (w *PostingsWriter) StartTerm() {
	w.lastDoc = 0
	w.docFreq = 0
	w.termFreqPtr = w.frqOut.Tell()
	w.termProxPtr = w.prxOut.Tell()
}

// AddDoc records doc (global within the segment) occurring freq times at
// the given ascending term positions. docs must be added in increasing
// order within a term (spec §3 "monotonically increasing").
func (w *PostingsWriter) AddDoc(doc int32, freq int32, positions []int32) error {
	docDelta := doc - w.lastDoc
	w.lastDoc = doc

	// freq==1 is the common case; fold it into the doc-delta's low bit
	// so single-occurrence postings cost one fewer VInt.
	if freq == 1 {
		if err := w.frqOut.WriteVInt(docDelta<<1 | 1); err != nil {
			return err
		}
	} else {
		if err := w.frqOut.WriteVInt(docDelta << 1); err != nil {
			return err
		}
		if err := w.frqOut.WriteVInt(freq); err != nil {
			return err
		}
	}

	w.lastPosition = 0
	for _, pos := range positions {
		posDelta := pos - w.lastPosition
		w.lastPosition = pos
		if err := w.prxOut.WriteVInt(posDelta); err != nil {
			return err
		}
	}

	w.docFreq++
	return nil
}

// FinishTerm returns the TermInfo describing the postings just written.
func (w *PostingsWriter) FinishTerm() TermInfo {
	return TermInfo{
		DocFreq:     w.docFreq,
		FreqPointer: w.termFreqPtr,
		ProxPointer: w.termProxPtr,
		SkipOffset:  0,
	}
}

// Doc is one decoded posting: a global doc id, its in-document term
// frequency, and (when read via TermPositions) its term positions.
type Doc struct {
	ID        int32
	Freq      int32
	Positions []int32
}

// TermDocsReader decodes one term's (.frq, optionally .prx) postings,
// applying a live-deletion filter and rebasing local doc ids to global
// ids (spec §4.5 termDocs/termPositions).
type TermDocsReader struct {
	frqIn store.IndexInput
	prxIn store.IndexInput

	remaining int32
	lastDoc   int32

	base   int32
	filter func(localID int32) bool // nil means "nothing deleted"
}

// OpenTermDocs positions a reader at ti's postings. prxIn may be nil if
// positions are not needed (termDocs/termFreqs callers).
func OpenTermDocs(frqIn, prxIn store.IndexInput, ti TermInfo, base int32, filter func(int32) bool) (*TermDocsReader, error) {
	if err := frqIn.Seek(ti.FreqPointer, store.SeekStart); err != nil {
		return nil, err
	}
	if prxIn != nil {
		if err := prxIn.Seek(ti.ProxPointer, store.SeekStart); err != nil {
			return nil, err
		}
	}
	return &TermDocsReader{frqIn: frqIn, prxIn: prxIn, remaining: ti.DocFreq, base: base, filter: filter}, nil
}

// Next decodes the next live posting, skipping deleted documents. ok is
// false once postings are exhausted.
func (r *TermDocsReader) Next() (doc Doc, ok bool, err error) {
	for r.remaining > 0 {
		r.remaining--
		code, err := r.frqIn.ReadVInt()
		if err != nil {
			return Doc{}, false, err
		}
		docDelta := code >> 1
		r.lastDoc += docDelta
		localID := r.lastDoc

		var freq int32
		if code&1 != 0 {
			freq = 1
		} else {
			freq, err = r.frqIn.ReadVInt()
			if err != nil {
				return Doc{}, false, err
			}
		}

		var positions []int32
		if r.prxIn != nil {
			positions = make([]int32, freq)
			pos := int32(0)
			for i := int32(0); i < freq; i++ {
				delta, err := r.prxIn.ReadVInt()
				if err != nil {
					return Doc{}, false, err
				}
				pos += delta
				positions[i] = pos
			}
		}

		if r.filter != nil && r.filter(localID) {
			continue
		}
		return Doc{ID: r.base + localID, Freq: freq, Positions: positions}, true, nil
	}
	return Doc{}, false, nil
}

// ReadAll drains every live posting, for callers that build a full
// doc-id -> freq/positions map in one pass (spec §4.5 termDocs/termPositions).
func (r *TermDocsReader) ReadAll() ([]Doc, error) {
	var docs []Doc
	for {
		d, ok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		docs = append(docs, d)
	}
	return docs, nil
}
