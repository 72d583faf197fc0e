package index

import (
	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// SegmentReader opens one immutable segment's term dictionary, postings,
// norms, stored fields, and deletion bitvector, transparently unwrapping
// compound-file packing and shared-doc-store redirection (spec §4.5).
type SegmentReader struct {
	dir  store.Directory
	info *codec.SegmentInfo
	fis  *codec.FieldInfos

	cfr         *codec.CompoundFileReader
	docStoreCfr *codec.CompoundFileReader

	termDict *TermDictReader
	frq      store.IndexInput
	prx      store.IndexInput
	norms    *NormsReader
	stored   *StoredFieldsReader
	storedBase int32

	deleted  *util.BitVector
	docCount int32
}

// OpenSegmentReader opens every sub-file of info, dispatching on its
// compound-status byte and following shared doc-store redirection when
// present (spec §4.5).
func OpenSegmentReader(dir store.Directory, info *codec.SegmentInfo) (*SegmentReader, error) {
	sr := &SegmentReader{dir: dir, info: info, docCount: info.DocCount}

	cfr, err := openIfCompound(dir, info.Name, info.IsCompoundFile)
	if err != nil {
		return nil, err
	}
	sr.cfr = cfr

	fnmIn, err := sr.openOwn("fnm")
	if err != nil {
		return nil, err
	}
	fis, err := codec.ReadFieldInfos(fnmIn)
	fnmIn.Close()
	if err != nil {
		return nil, err
	}
	sr.fis = fis

	tisIn, err := sr.openOwn(TermDictDetailExt)
	if err != nil {
		return nil, err
	}
	tiiIn, err := sr.openOwn(TermDictIndexExt)
	if err != nil {
		return nil, err
	}
	if sr.termDict, err = OpenTermDictReader(tisIn, tiiIn, fis); err != nil {
		return nil, err
	}

	if sr.frq, err = sr.openOwn(FreqExt); err != nil {
		return nil, err
	}
	if sr.prx, err = sr.openOwn(ProxExt); err != nil {
		return nil, err
	}

	if hasAnyNorms(fis) {
		nrmIn, err := sr.openOwn(NormsExt)
		if err != nil {
			return nil, err
		}
		if sr.norms, err = OpenNormsReader(nrmIn, fis, info.DocCount); err != nil {
			return nil, err
		}
	}

	if err := sr.openStoredFields(); err != nil {
		return nil, err
	}

	if info.HasDeletions() {
		delName := codec.DelFileName(info.Name, info.DelGen)
		delIn, err := dir.Open(delName, false)
		if err != nil {
			return nil, err
		}
		bv, err := LoadDeletions(delIn, info.DocCount)
		delIn.Close()
		if err != nil {
			return nil, err
		}
		sr.deleted = bv
	}

	return sr, nil
}

// Term dictionary extensions (spec §6 ".tis/.tii term dictionary").
const (
	TermDictDetailExt = "tis"
	TermDictIndexExt  = "tii"
)

func openIfCompound(dir store.Directory, name string, status byte) (*codec.CompoundFileReader, error) {
	switch status {
	case codec.CompoundFileYes:
		return codec.OpenCompoundFile(dir, name)
	case codec.CompoundFileNo:
		return nil, nil
	default: // CompoundFileUnknown: probe both layouts
		if dir.Exists(codec.SegmentFileName(name, codec.CompoundFileExt)) {
			return codec.OpenCompoundFile(dir, name)
		}
		return nil, nil
	}
}

// openOwn opens one of this segment's own sub-files, through the
// compound-file reader when this segment is packed.
func (sr *SegmentReader) openOwn(ext string) (store.IndexInput, error) {
	name := codec.SegmentFileName(sr.info.Name, ext)
	if sr.cfr != nil {
		return sr.cfr.OpenInput(name)
	}
	return sr.dir.Open(name, false)
}

// openStoredFields resolves .fdx/.fdt, redirecting to a shared doc-store
// segment when docStoreOffset says this segment doesn't own its own
// stored-fields files (spec §4.5 "Doc-store shared across segments").
func (sr *SegmentReader) openStoredFields() error {
	storeSeg := sr.info.Name
	storeCompound := sr.cfr != nil
	sr.storedBase = 0

	if sr.info.DocStoreOffset != codec.NoDocStoreOffset {
		storeSeg = sr.info.DocStoreSegment
		storeCompound = sr.info.DocStoreIsCompound
		sr.storedBase = sr.info.DocStoreOffset
	}

	open := func(ext string) (store.IndexInput, error) {
		name := codec.SegmentFileName(storeSeg, ext)
		if storeSeg == sr.info.Name && sr.cfr != nil {
			return sr.cfr.OpenInput(name)
		}
		if storeCompound {
			if sr.docStoreCfr == nil {
				cfr, err := codec.OpenCompoundFile(sr.dir, storeSeg)
				if err != nil {
					return nil, err
				}
				sr.docStoreCfr = cfr
			}
			return sr.docStoreCfr.OpenInput(name)
		}
		return sr.dir.Open(name, false)
	}

	fdxIn, err := open(FieldIndexExt)
	if err != nil {
		return err
	}
	fdtIn, err := open(FieldDataExt)
	if err != nil {
		return err
	}
	sr.stored = OpenStoredFieldsReader(fdxIn, fdtIn)
	return nil
}

func hasAnyNorms(fis *codec.FieldInfos) bool {
	for n := int32(0); n < int32(fis.Len()); n++ {
		if fi := fis.ByNumber(n); fi != nil && fi.Indexed && !fi.OmitNorms {
			return true
		}
	}
	return false
}

func (sr *SegmentReader) DocCount() int32 { return sr.docCount }

// NumDocs returns docCount minus deleted documents (spec §4.5).
func (sr *SegmentReader) NumDocs() int32 {
	if sr.deleted == nil {
		return sr.docCount
	}
	return sr.docCount - int32(sr.deleted.Count())
}

func (sr *SegmentReader) IsDeleted(localID int32) bool {
	return sr.deleted != nil && sr.deleted.Get(int(localID))
}

// Delete flips a bit in the in-memory deletion bitvector; the writer
// materializes .del<delGen> on commit (spec §4.5).
func (sr *SegmentReader) Delete(localID int32) bool {
	if sr.deleted == nil {
		sr.deleted = util.NewBitVector(int(sr.docCount))
	}
	return sr.deleted.Set(int(localID))
}

func (sr *SegmentReader) HasDeletions() bool { return sr.deleted != nil && sr.deleted.Count() > 0 }
func (sr *SegmentReader) Deletions() *util.BitVector { return sr.deleted }

func (sr *SegmentReader) FieldInfos() *codec.FieldInfos { return sr.fis }
func (sr *SegmentReader) GetField(num int32) *codec.FieldInfo { return sr.fis.ByNumber(num) }
func (sr *SegmentReader) GetFields(indexedOnly bool) []string { return sr.fis.Names(indexedOnly) }

// Norm decodes a document's norm float for one field, defaulting to the
// unit norm for fields that omit norms.
func (sr *SegmentReader) Norm(localID int32, fieldNum int32) (float32, error) {
	if sr.norms == nil {
		return util.DecodeNorm(util.EncodeNorm(1.0)), nil
	}
	b, err := sr.norms.Norm(localID, fieldNum)
	if err != nil {
		return 0, err
	}
	return util.DecodeNorm(b), nil
}

func (sr *SegmentReader) GetTermInfo(t Term) (*TermInfo, error) { return sr.termDict.GetTermInfo(t) }

func (sr *SegmentReader) HasTerm(t Term) (bool, error) {
	ti, err := sr.GetTermInfo(t)
	return ti != nil, err
}

func (sr *SegmentReader) DocFreq(t Term) (int32, error) {
	ti, err := sr.GetTermInfo(t)
	if err != nil || ti == nil {
		return 0, err
	}
	return ti.DocFreq, nil
}

func (sr *SegmentReader) deletedFilter() func(int32) bool {
	if sr.deleted == nil {
		return nil
	}
	return func(localID int32) bool { return sr.deleted.Get(int(localID)) }
}

// TermDocs returns every live (non-deleted) posting for t, with doc ids
// rebased by base (spec §4.5 "termDocs(term, baseGlobalId, filter)").
func (sr *SegmentReader) TermDocs(t Term, base int32) ([]Doc, error) {
	ti, err := sr.GetTermInfo(t)
	if err != nil || ti == nil {
		return nil, err
	}
	r, err := OpenTermDocs(sr.frq, nil, *ti, base, sr.deletedFilter())
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

// TermPositions is TermDocs but also decoding per-document positions.
func (sr *SegmentReader) TermPositions(t Term, base int32) ([]Doc, error) {
	ti, err := sr.GetTermInfo(t)
	if err != nil || ti == nil {
		return nil, err
	}
	r, err := OpenTermDocs(sr.frq, sr.prx, *ti, base, sr.deletedFilter())
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

func (sr *SegmentReader) ResetTermsStream() error { return sr.termDict.ResetTermsStream() }
func (sr *SegmentReader) NextTerm() (Term, TermInfo, bool, error) { return sr.termDict.NextTerm() }
func (sr *SegmentReader) SkipTo(t Term) (Term, TermInfo, bool, error) { return sr.termDict.SkipTo(t) }
func (sr *SegmentReader) CurrentTerm() (Term, bool) { return sr.termDict.CurrentTerm() }
func (sr *SegmentReader) CloseTermsStream() error { return sr.termDict.CloseTermsStream() }

// TermDictReader exposes the underlying reader for use by the
// whole-index term merger (spec §4.6).
func (sr *SegmentReader) TermDictReader() *TermDictReader { return sr.termDict }

// Document fetches local document localID's stored fields, redirecting
// through the shared doc-store offset if one applies.
func (sr *SegmentReader) Document(localID int32) ([]StoredField, error) {
	return sr.stored.Document(sr.storedBase + localID)
}

func (sr *SegmentReader) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(sr.termDict.CloseTermsStream())
	record(sr.frq.Close())
	record(sr.prx.Close())
	if sr.norms != nil {
		record(sr.norms.Close())
	}
	record(sr.stored.Close())
	if sr.cfr != nil {
		record(sr.cfr.Close())
	}
	if sr.docStoreCfr != nil {
		record(sr.docStoreCfr.Close())
	}
	return firstErr
}
