package index

import (
	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// mergeSegments combines sources, in order, into one new segment named
// newName: deleted documents are dropped and surviving local ids are
// renumbered contiguously (spec §4.6 "segment merging"). sources must
// already be open; the caller closes them.
func mergeSegments(dir store.Directory, sources []*SegmentReader, newName string) (*codec.SegmentInfo, error) {
	fis := mergeFieldInfos(sources)

	bases := make([]int32, len(sources))
	remaps := make([]map[int32]int32, len(sources))
	var total int32
	for i, sr := range sources {
		bases[i] = total
		remaps[i] = liveRemap(sr)
		total += sr.NumDocs()
	}

	if err := mergeStoredFields(dir, sources, fis, newName); err != nil {
		return nil, err
	}
	if err := mergeNorms(dir, sources, bases, remaps, fis, total, newName); err != nil {
		return nil, err
	}

	fnmOut, err := dir.Create(codec.SegmentFileName(newName, "fnm"))
	if err != nil {
		return nil, err
	}
	if err := codec.WriteFieldInfos(fnmOut, fis); err != nil {
		fnmOut.Close()
		return nil, err
	}
	if err := fnmOut.Close(); err != nil {
		return nil, err
	}

	if err := mergeTermsAndPostings(dir, sources, bases, remaps, fis, newName); err != nil {
		return nil, err
	}

	return &codec.SegmentInfo{
		Name:           newName,
		DocCount:       total,
		DelGen:         codec.NoDelGen,
		DocStoreOffset: codec.NoDocStoreOffset,
		IsCompoundFile: codec.CompoundFileNo,
	}, nil
}

// mergeFieldInfos unions every source's field schema, OR-ing capability
// flags observed under the same field name.
func mergeFieldInfos(sources []*SegmentReader) *codec.FieldInfos {
	fis := codec.NewFieldInfos()
	for _, sr := range sources {
		src := sr.FieldInfos()
		for n := int32(0); n < int32(src.Len()); n++ {
			fi := src.ByNumber(n)
			fis.Add(fi.Name, fi.Indexed, fi.Tokenized, fi.Stored, fi.Binary)
		}
	}
	return fis
}

// liveRemap maps a source segment's old local id to its compacted new
// local id within the merged segment, omitting deleted documents.
func liveRemap(sr *SegmentReader) map[int32]int32 {
	remap := make(map[int32]int32, sr.NumDocs())
	var next int32
	for old := int32(0); old < sr.DocCount(); old++ {
		if sr.IsDeleted(old) {
			continue
		}
		remap[old] = next
		next++
	}
	return remap
}

func mergeStoredFields(dir store.Directory, sources []*SegmentReader, fis *codec.FieldInfos, newName string) error {
	fdxOut, err := dir.Create(codec.SegmentFileName(newName, FieldIndexExt))
	if err != nil {
		return err
	}
	fdtOut, err := dir.Create(codec.SegmentFileName(newName, FieldDataExt))
	if err != nil {
		fdxOut.Close()
		return err
	}
	w := NewStoredFieldsWriter(fdxOut, fdtOut)

	for _, sr := range sources {
		for old := int32(0); old < sr.DocCount(); old++ {
			if sr.IsDeleted(old) {
				continue
			}
			fields, err := sr.Document(old)
			if err != nil {
				fdxOut.Close()
				fdtOut.Close()
				return err
			}
			remapped := make([]StoredField, len(fields))
			for j, f := range fields {
				if oldFI := sr.FieldInfos().ByNumber(f.Number); oldFI != nil {
					if newFI, ok := fis.ByName(oldFI.Name); ok {
						f.Number = newFI.Number
					}
				}
				remapped[j] = f
			}
			if err := w.AddDocument(remapped); err != nil {
				fdxOut.Close()
				fdtOut.Close()
				return err
			}
		}
	}

	if err := fdxOut.Close(); err != nil {
		return err
	}
	return fdtOut.Close()
}

func mergeNorms(dir store.Directory, sources []*SegmentReader, bases []int32, remaps []map[int32]int32, fis *codec.FieldInfos, total int32, newName string) error {
	norms := make(map[int32][]byte)
	one := util.EncodeNorm(1.0)
	for n := int32(0); n < int32(fis.Len()); n++ {
		fi := fis.ByNumber(n)
		if fi == nil || !fi.Indexed || fi.OmitNorms {
			continue
		}
		buf := make([]byte, total)
		for i := range buf {
			buf[i] = one
		}
		norms[n] = buf
	}

	for i, sr := range sources {
		if sr.norms == nil {
			continue
		}
		for n := int32(0); n < int32(fis.Len()); n++ {
			fi := fis.ByNumber(n)
			if fi == nil || !fi.Indexed || fi.OmitNorms {
				continue
			}
			oldFI, ok := sr.FieldInfos().ByName(fi.Name)
			if !ok || !oldFI.Indexed || oldFI.OmitNorms {
				continue
			}
			for old := int32(0); old < sr.DocCount(); old++ {
				if sr.IsDeleted(old) {
					continue
				}
				b, err := sr.norms.Norm(old, oldFI.Number)
				if err != nil {
					return err
				}
				norms[n][bases[i]+remaps[i][old]] = b
			}
		}
	}

	nrmOut, err := dir.Create(codec.SegmentFileName(newName, NormsExt))
	if err != nil {
		return err
	}
	if err := WriteNorms(nrmOut, fis, total, norms); err != nil {
		nrmOut.Close()
		return err
	}
	return nrmOut.Close()
}

func mergeTermsAndPostings(dir store.Directory, sources []*SegmentReader, bases []int32, remaps []map[int32]int32, fis *codec.FieldInfos, newName string) error {
	termCount, err := countMergedTerms(sources)
	if err != nil {
		return err
	}

	tisOut, err := dir.Create(codec.SegmentFileName(newName, TermDictDetailExt))
	if err != nil {
		return err
	}
	tiiOut, err := dir.Create(codec.SegmentFileName(newName, TermDictIndexExt))
	if err != nil {
		tisOut.Close()
		return err
	}
	frqOut, err := dir.Create(codec.SegmentFileName(newName, FreqExt))
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		return err
	}
	prxOut, err := dir.Create(codec.SegmentFileName(newName, ProxExt))
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		frqOut.Close()
		return err
	}

	tdw, err := NewTermDictWriter(tisOut, tiiOut, termCount, DefaultTermIndexInterval)
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		frqOut.Close()
		prxOut.Close()
		return err
	}
	pw := NewPostingsWriter(frqOut, prxOut)

	readers := make([]*TermDictReader, len(sources))
	for i, sr := range sources {
		readers[i] = sr.TermDictReader()
	}
	merger, err := NewTermMerger(readers)
	if err != nil {
		return err
	}

	for {
		term, matches, err := merger.Next()
		if err != nil {
			return err
		}
		if matches == nil {
			break
		}

		fieldNum := int32(-1)
		if fi, ok := fis.ByName(term.Field); ok {
			fieldNum = fi.Number
		}

		pw.StartTerm()
		for _, match := range matches {
			sr := sources[match.SegIndex]
			td, err := OpenTermDocs(sr.frq, sr.prx, match.Info, 0, sr.deletedFilter())
			if err != nil {
				return err
			}
			docs, err := td.ReadAll()
			if err != nil {
				return err
			}
			for _, d := range docs {
				newID := bases[match.SegIndex] + remaps[match.SegIndex][d.ID]
				if err := pw.AddDoc(newID, d.Freq, d.Positions); err != nil {
					return err
				}
			}
		}
		ti := pw.FinishTerm()
		if err := tdw.Add(term, fieldNum, ti); err != nil {
			return err
		}
	}

	if err := tisOut.Close(); err != nil {
		return err
	}
	if err := tiiOut.Close(); err != nil {
		return err
	}
	if err := frqOut.Close(); err != nil {
		return err
	}
	return prxOut.Close()
}

// countMergedTerms does a term-only (no posting decode) dry run of the
// merge to learn the exact term count TermDictWriter's header needs up
// front.
func countMergedTerms(sources []*SegmentReader) (int64, error) {
	readers := make([]*TermDictReader, len(sources))
	for i, sr := range sources {
		readers[i] = sr.TermDictReader()
	}
	merger, err := NewTermMerger(readers)
	if err != nil {
		return 0, err
	}
	var count int64
	for {
		_, matches, err := merger.Next()
		if err != nil {
			return 0, err
		}
		if matches == nil {
			break
		}
		count++
	}
	return count, nil
}
