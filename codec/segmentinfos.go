package codec

import (
	"strconv"

	"github.com/sajya/lucene/errs"
	"github.com/sajya/lucene/store"
)

// Segments-file format markers (spec §6). Stored as the file's leading
// int32, these are negative because Lucene wrote them as unsigned
// 0xFFFFFFxx sentinels that happen to be negative once read as int32.
const (
	FormatPre21 = int32(-1) // 0xFFFFFFFF
	Format21    = int32(-3) // 0xFFFFFFFD
	Format23    = int32(-4) // 0xFFFFFFFC
)

const (
	NoDelGen         = int64(-1)
	NoDocStoreOffset = int32(-1)
	noNumField       = int32(-1) // 0xFFFFFFFF: no separate per-field norm files; other values are rejected
)

// Compound-status byte values (spec §4.5).
const (
	CompoundFileNo      = byte(0xFF)
	CompoundFileUnknown = byte(0x00)
	CompoundFileYes     = byte(0x01)
)

// SegmentInfo is one segment's entry in a segments_N generation.
type SegmentInfo struct {
	Name   string
	DocCount int32

	DelGen int64 // NoDelGen if the segment has no deletions yet

	DocStoreOffset    int32 // NoDocStoreOffset unless doc stores are shared
	DocStoreSegment   string
	DocStoreIsCompound bool

	HasSingleNormFile bool
	IsCompoundFile    byte // CompoundFileNo/Unknown/Yes
}

func (si *SegmentInfo) HasDeletions() bool { return si.DelGen != NoDelGen }

// SegmentInfos is the insertion-ordered live segment list for one
// generation (spec §3 "Segment set").
type SegmentInfos struct {
	Format     int32
	Version    int64
	Counter    int32
	Generation int64 // -1 means "no index has ever been committed"
	Segments   []*SegmentInfo
}

// New returns an empty segment set for a brand-new index.
func New() *SegmentInfos {
	return &SegmentInfos{Format: Format23, Generation: -1}
}

// NewSegmentName allocates the next monotone segment name and advances
// the persisted counter (spec §4.7 "Buffering").
func (sis *SegmentInfos) NewSegmentName() string {
	name := "_" + strconv.FormatInt(int64(sis.Counter), 36)
	sis.Counter++
	return name
}

// SegmentsFileName returns the segments_N name for a generation, or the
// bare pre-2.1 "segments" name for generation 0.
func SegmentsFileName(gen int64) string {
	if gen <= 0 {
		return store.SegmentsFile
	}
	return store.SegmentsFile + "_" + strconv.FormatInt(gen, 36)
}

// SegmentFileName joins a segment name and an extension the way every
// per-segment sub-file is named on disk (spec §6).
func SegmentFileName(segmentName, ext string) string {
	return segmentName + "." + ext
}

// DelFileName names a segment's deletion bitvector file for a given
// generation. delGen must not be NoDelGen.
func DelFileName(segmentName string, delGen int64) string {
	if delGen == 0 {
		return segmentName + ".del"
	}
	return segmentName + "_" + strconv.FormatInt(delGen, 36) + ".del"
}

func nextGeneration(gen int64) int64 {
	if gen < 0 {
		return 1
	}
	return gen + 1
}

// Read loads the segments_N file for the given generation (spec §6).
func Read(dir store.Directory, gen int64) (*SegmentInfos, error) {
	name := SegmentsFileName(gen)
	in, err := dir.Open(name, false)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	format, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPre21, Format21, Format23:
	default:
		return nil, errs.NewInvalidFileFormat("unrecognized segments file format marker: %d", format)
	}

	version, err := in.ReadLong()
	if err != nil {
		return nil, err
	}
	counter, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	count, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errs.NewInvalidFileFormat("negative segment count: %d", count)
	}

	segs := make([]*SegmentInfo, count)
	for i := range segs {
		si := &SegmentInfo{DelGen: NoDelGen, DocStoreOffset: NoDocStoreOffset}

		if si.Name, err = in.ReadString(); err != nil {
			return nil, err
		}
		if si.DocCount, err = in.ReadInt(); err != nil {
			return nil, err
		}
		if format != FormatPre21 {
			if si.DelGen, err = in.ReadLong(); err != nil {
				return nil, err
			}
		}
		if format == Format23 {
			if si.DocStoreOffset, err = in.ReadInt(); err != nil {
				return nil, err
			}
			if si.DocStoreOffset != NoDocStoreOffset {
				if si.DocStoreSegment, err = in.ReadString(); err != nil {
					return nil, err
				}
				b, err := in.ReadByte()
				if err != nil {
					return nil, err
				}
				si.DocStoreIsCompound = b != 0
			}
		}

		hb, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		si.HasSingleNormFile = hb != 0

		numField, err := in.ReadInt()
		if err != nil {
			return nil, err
		}
		if numField != noNumField {
			return nil, errs.NewRuntime(
				"Separate norm files are not supported. Optimize index to use it with segment %q", si.Name)
		}

		if si.IsCompoundFile, err = in.ReadByte(); err != nil {
			return nil, err
		}

		segs[i] = si
	}

	return &SegmentInfos{
		Format:     format,
		Version:    version,
		Counter:    counter,
		Generation: gen,
		Segments:   segs,
	}, nil
}

// Write emits segments_{generation+1}, bumping the version counter, and
// is the first half of the commit protocol (spec §4.7 step 3). The
// caller still must call store.WriteGeneration to make it visible.
func Write(dir store.Directory, sis *SegmentInfos) (int64, error) {
	newGen := nextGeneration(sis.Generation)
	name := SegmentsFileName(newGen)

	out, err := dir.Create(name)
	if err != nil {
		return 0, err
	}

	sis.Version++
	fields := []func() error{
		func() error { return out.WriteInt(Format23) },
		func() error { return out.WriteLong(sis.Version) },
		func() error { return out.WriteInt(sis.Counter) },
		func() error { return out.WriteInt(int32(len(sis.Segments))) },
	}
	for _, f := range fields {
		if err := f(); err != nil {
			out.Close()
			return 0, err
		}
	}

	for _, si := range sis.Segments {
		if err := writeSegmentInfo(out, si); err != nil {
			out.Close()
			return 0, err
		}
	}

	if err := out.Close(); err != nil {
		return 0, err
	}

	sis.Format = Format23
	sis.Generation = newGen
	return newGen, nil
}

func writeSegmentInfo(out store.IndexOutput, si *SegmentInfo) error {
	if err := out.WriteString(si.Name); err != nil {
		return err
	}
	if err := out.WriteInt(si.DocCount); err != nil {
		return err
	}
	if err := out.WriteLong(si.DelGen); err != nil {
		return err
	}
	if err := out.WriteInt(si.DocStoreOffset); err != nil {
		return err
	}
	if si.DocStoreOffset != NoDocStoreOffset {
		if err := out.WriteString(si.DocStoreSegment); err != nil {
			return err
		}
		var b byte
		if si.DocStoreIsCompound {
			b = 1
		}
		if err := out.WriteByte(b); err != nil {
			return err
		}
	}
	var hb byte
	if si.HasSingleNormFile {
		hb = 1
	}
	if err := out.WriteByte(hb); err != nil {
		return err
	}
	if err := out.WriteInt(noNumField); err != nil {
		return err
	}
	return out.WriteByte(si.IsCompoundFile)
}
