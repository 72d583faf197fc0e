package index

import (
	"math"
	"sort"

	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// DefaultLengthNorm is Lucene's classic length-normalization factor,
// 1/sqrt(numTokens), computed at flush time and stored as a norm byte
// (spec §4.9 "norm byte... decodes via a lookup table"; the search
// package's default similarity scores against the same formula).
func DefaultLengthNorm(numTokens int32) float32 {
	if numTokens <= 0 {
		return 0
	}
	return float32(1.0 / math.Sqrt(float64(numTokens)))
}

type pendingPosting struct {
	doc       int32
	freq      int32
	positions []int32
}

func addPosting(m map[Term][]pendingPosting, t Term, doc, pos int32) {
	list := m[t]
	if n := len(list); n > 0 && list[n-1].doc == doc {
		list[n-1].freq++
		list[n-1].positions = append(list[n-1].positions, pos)
		return
	}
	m[t] = append(list, pendingPosting{doc: doc, freq: 1, positions: []int32{pos}})
}

// flushSegment analyzes and writes one new segment out of buffered
// documents (spec §4.7 "Buffering": flush converts the in-memory batch
// into a new segment's full set of sub-files).
func flushSegment(dir store.Directory, docs []bufferedDoc, analyzer Analyzer, name string) (*codec.SegmentInfo, error) {
	fis := codec.NewFieldInfos()
	for _, d := range docs {
		for _, f := range d.fields {
			fi := fis.Add(f.Name(), f.Indexed(), f.Tokenized(), f.Stored(), f.Binary())
			if f.OmitNorms() {
				fi.OmitNorms = true
			}
		}
	}

	postings := make(map[Term][]pendingPosting)
	lengths := make(map[int32][]int32)
	boosts := make(map[int32][]float32)
	docCount := int32(len(docs))

	var stored [][]StoredField

	for docID, d := range docs {
		docLen := make(map[int32]int32)
		docBoost := make(map[int32]float32)
		var fields []StoredField

		for _, f := range d.fields {
			fi, _ := fis.ByName(f.Name())

			if f.Indexed() {
				if !f.Tokenized() {
					addPosting(postings, Term{Field: f.Name(), Text: f.StringValue()}, int32(docID), 0)
					docLen[fi.Number]++
					if docBoost[fi.Number] == 0 {
						docBoost[fi.Number] = f.Boost()
					}
				} else {
					ts, err := analyzer.TokenStream(f.Name(), f.StringValue())
					if err != nil {
						return nil, err
					}
					for {
						text, pos, ok, err := ts.Next()
						if err != nil {
							return nil, err
						}
						if !ok {
							break
						}
						addPosting(postings, Term{Field: f.Name(), Text: text}, int32(docID), pos)
						docLen[fi.Number]++
					}
					if docBoost[fi.Number] == 0 {
						docBoost[fi.Number] = f.Boost()
					}
				}
			}

			if f.Stored() {
				if f.Binary() {
					fields = append(fields, StoredField{Number: fi.Number, Binary: true, Blob: f.BinaryValue()})
				} else {
					fields = append(fields, StoredField{Number: fi.Number, Tokenized: f.Tokenized(), Value: f.StringValue()})
				}
			}
		}

		stored = append(stored, fields)
		for fieldNum, n := range docLen {
			if _, ok := lengths[fieldNum]; !ok {
				lengths[fieldNum] = make([]int32, docCount)
				boosts[fieldNum] = make([]float32, docCount)
			}
			lengths[fieldNum][docID] = n
			boost := docBoost[fieldNum]
			if boost == 0 {
				boost = 1.0
			}
			boosts[fieldNum][docID] = boost * d.boost
		}
	}

	if err := writeFlushedFieldInfos(dir, fis, name); err != nil {
		return nil, err
	}
	if err := writeFlushedStoredFields(dir, stored, name); err != nil {
		return nil, err
	}
	if err := writeFlushedNorms(dir, fis, docCount, lengths, boosts, name); err != nil {
		return nil, err
	}
	if err := writeFlushedTermsAndPostings(dir, postings, fis, name); err != nil {
		return nil, err
	}

	return &codec.SegmentInfo{
		Name:           name,
		DocCount:       docCount,
		DelGen:         codec.NoDelGen,
		DocStoreOffset: codec.NoDocStoreOffset,
		IsCompoundFile: codec.CompoundFileNo,
	}, nil
}

func writeFlushedFieldInfos(dir store.Directory, fis *codec.FieldInfos, name string) error {
	out, err := dir.Create(codec.SegmentFileName(name, "fnm"))
	if err != nil {
		return err
	}
	if err := codec.WriteFieldInfos(out, fis); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeFlushedStoredFields(dir store.Directory, stored [][]StoredField, name string) error {
	fdxOut, err := dir.Create(codec.SegmentFileName(name, FieldIndexExt))
	if err != nil {
		return err
	}
	fdtOut, err := dir.Create(codec.SegmentFileName(name, FieldDataExt))
	if err != nil {
		fdxOut.Close()
		return err
	}
	w := NewStoredFieldsWriter(fdxOut, fdtOut)
	for _, fields := range stored {
		if err := w.AddDocument(fields); err != nil {
			fdxOut.Close()
			fdtOut.Close()
			return err
		}
	}
	if err := fdxOut.Close(); err != nil {
		return err
	}
	return fdtOut.Close()
}

func writeFlushedNorms(dir store.Directory, fis *codec.FieldInfos, docCount int32, lengths map[int32][]int32, boosts map[int32][]float32, name string) error {
	norms := make(map[int32][]byte)
	for fieldNum, lens := range lengths {
		fi := fis.ByNumber(fieldNum)
		if fi == nil || fi.OmitNorms {
			continue
		}
		buf := make([]byte, docCount)
		one := util.EncodeNorm(1.0)
		for i := range buf {
			buf[i] = one
		}
		for doc, n := range lens {
			if n == 0 {
				continue
			}
			buf[doc] = util.EncodeNorm(DefaultLengthNorm(n) * boosts[fieldNum][doc])
		}
		norms[fieldNum] = buf
	}

	out, err := dir.Create(codec.SegmentFileName(name, NormsExt))
	if err != nil {
		return err
	}
	if err := WriteNorms(out, fis, docCount, norms); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeFlushedTermsAndPostings(dir store.Directory, postings map[Term][]pendingPosting, fis *codec.FieldInfos, name string) error {
	terms := make([]Term, 0, len(postings))
	for t := range postings {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Less(terms[j]) })

	tisOut, err := dir.Create(codec.SegmentFileName(name, TermDictDetailExt))
	if err != nil {
		return err
	}
	tiiOut, err := dir.Create(codec.SegmentFileName(name, TermDictIndexExt))
	if err != nil {
		tisOut.Close()
		return err
	}
	frqOut, err := dir.Create(codec.SegmentFileName(name, FreqExt))
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		return err
	}
	prxOut, err := dir.Create(codec.SegmentFileName(name, ProxExt))
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		frqOut.Close()
		return err
	}

	tdw, err := NewTermDictWriter(tisOut, tiiOut, int64(len(terms)), DefaultTermIndexInterval)
	if err != nil {
		tisOut.Close()
		tiiOut.Close()
		frqOut.Close()
		prxOut.Close()
		return err
	}
	pw := NewPostingsWriter(frqOut, prxOut)

	for _, t := range terms {
		fieldNum := int32(-1)
		if fi, ok := fis.ByName(t.Field); ok {
			fieldNum = fi.Number
		}
		pw.StartTerm()
		for _, p := range postings[t] {
			if err := pw.AddDoc(p.doc, p.freq, p.positions); err != nil {
				return err
			}
		}
		if err := tdw.Add(t, fieldNum, pw.FinishTerm()); err != nil {
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
