package index

import (
	"github.com/sajya/lucene/store"
	"github.com/sajya/lucene/util"
)

// DeletionsExt is a segment's deletion-bitvector extension, base part of
// the generation-suffixed `.del<gen>` name codec.SegmentFileName/
// codec.DelFileName produce (spec §6).
const DeletionsExt = "del"

// LoadDeletions reads a segment's deletion bitvector in full.
func LoadDeletions(in store.IndexInput, docCount int32) (*util.BitVector, error) {
	nBytes := (int(docCount) + 7) / 8
	raw, err := in.ReadBytes(nBytes)
	if err != nil {
		return nil, err
	}
	return util.LoadBitVector(raw, int(docCount)), nil
}

// WriteDeletions persists a segment's deletion bitvector verbatim.
func WriteDeletions(out store.IndexOutput, bv *util.BitVector) error {
	return out.WriteBytes(bv.Bytes())
}
