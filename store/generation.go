package store

import (
	"time"

	"github.com/sajya/lucene/errs"
)

const (
	SegmentsGenFile = "segments.gen"
	// plain "segments" (no numeric suffix) is the pre-2.1 layout,
	// equivalent to generation 0.
	SegmentsFile = "segments"

	// segmentsGenFormat is 0xFFFFFFFE as a signed int32.
	segmentsGenFormat = int32(-2)

	genWitnessRetries = 10
	genWitnessDelay   = 50 * time.Millisecond
)

// ReadGeneration implements the generation-witness protocol (spec §4.1):
// read segments.gen and require two matching int64 generation values
// before trusting it, retrying on a transient torn write. Falls back to
// probing the bare "segments" file (pre-2.1, generation 0), then to -1
// (no index present).
func ReadGeneration(dir Directory) (int64, error) {
	if dir.Exists(SegmentsGenFile) {
		var lastErr error
		for attempt := 0; attempt < genWitnessRetries; attempt++ {
			if gen, ok, err := tryReadGenFile(dir); ok {
				return gen, nil
			} else if err != nil {
				lastErr = err
			}
			time.Sleep(genWitnessDelay)
		}
		_ = lastErr
		return 0, errs.NewRuntime("Index is under processing now")
	}
	if dir.Exists(SegmentsFile) {
		return 0, nil
	}
	return -1, nil
}

func tryReadGenFile(dir Directory) (gen int64, ok bool, err error) {
	in, err := dir.Open(SegmentsGenFile, false)
	if err != nil {
		return 0, false, err
	}
	defer in.Close()

	marker, err := in.ReadInt()
	if err != nil {
		return 0, false, err
	}
	if marker != segmentsGenFormat {
		return 0, false, errs.NewInvalidFileFormat("unrecognized segments.gen format marker: %d", marker)
	}
	gen1, err := in.ReadLong()
	if err != nil {
		return 0, false, err
	}
	gen2, err := in.ReadLong()
	if err != nil {
		return 0, false, err
	}
	if gen1 != gen2 {
		return 0, false, nil
	}
	return gen1, true, nil
}

// WriteGeneration atomically rewrites segments.gen with matching
// generation/generation-repeat values, completing a commit (spec §4.7
// step 4). The new generation becomes visible the instant this returns.
func WriteGeneration(dir Directory, gen int64) error {
	tmp := SegmentsGenFile + ".tmp"
	out, err := dir.Create(tmp)
	if err != nil {
		return err
	}
	if err := out.WriteInt(segmentsGenFormat); err != nil {
		out.Close()
		return err
	}
	if err := out.WriteLong(gen); err != nil {
		out.Close()
		return err
	}
	if err := out.WriteLong(gen); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return dir.Rename(tmp, SegmentsGenFile)
}
