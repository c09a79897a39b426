package anvil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// GetPresentChunks opens path read-only and returns a bitmap with bit i
// set iff slot i is present: its sector is non-empty and its frame length
// is non-zero.
func GetPresentChunks(path string) (Bitmap1024, error) {
	var bm Bitmap1024

	f, header, err := openHeaderReadOnly(path)
	if err != nil {
		return bm, err
	}
	defer f.Close()

	for i, s := range header.Sectors {
		if s.IsEmpty() {
			continue
		}
		if _, err := f.Seek(s.ByteOffset(), io.SeekStart); err != nil {
			return bm, fmt.Errorf("anvil: seek slot %d: %w", i, err)
		}
		length, err := peekFrameLength(f)
		if err != nil {
			return bm, fmt.Errorf("anvil: read frame length for slot %d: %w", i, err)
		}
		bm.Set(i, length != 0)
	}
	return bm, nil
}

// CountChunks returns the number of present slots in path.
func CountChunks(path string) (int, error) {
	bm, err := GetPresentChunks(path)
	if err != nil {
		return 0, err
	}
	return bm.Count(), nil
}

// ChunksAreSequential walks path's non-empty sector entries in slot order
// and reports whether their sector offsets strictly increase — i.e.
// whether the file is already laid out the way Rebuild would produce it.
func ChunksAreSequential(path string) (bool, error) {
	_, header, err := openHeaderReadOnlyNoClose(path)
	if err != nil {
		return false, err
	}

	lastOffset := int64(-1)
	for _, s := range header.Sectors {
		if s.IsEmpty() {
			continue
		}
		off := int64(s.Offset())
		if off <= lastOffset {
			return false, nil
		}
		lastOffset = off
	}
	return true, nil
}

// WastedSectors opens path read-only and sums the sector count of every
// non-empty entry whose frame length is zero: space a rebuild would
// reclaim.
func WastedSectors(path string) (int, error) {
	f, header, err := openHeaderReadOnly(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	wasted := 0
	for i, s := range header.Sectors {
		if s.IsEmpty() {
			continue
		}
		if _, err := f.Seek(s.ByteOffset(), io.SeekStart); err != nil {
			return 0, fmt.Errorf("anvil: seek slot %d: %w", i, err)
		}
		length, err := peekFrameLength(f)
		if err != nil {
			return 0, fmt.Errorf("anvil: read frame length for slot %d: %w", i, err)
		}
		if length == 0 {
			wasted += int(s.Count())
		}
	}
	return wasted, nil
}

// ExtractAllChunks decodes every present chunk in path and writes its raw
// decoded bytes to <dir>/chunk.<x>.<z>.nbt. dir is created if it does not
// exist.
func ExtractAllChunks(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("anvil: create extract dir %s: %w", dir, err)
	}

	rf, err := Open(path)
	if err != nil {
		return err
	}
	defer rf.Close()

	for i := 0; i < slotCount; i++ {
		coord := RegionCoord(i)
		sector, err := rf.Sector(coord)
		if err != nil {
			return fmt.Errorf("anvil: slot %d: %w", i, err)
		}
		if sector.IsEmpty() {
			continue
		}

		data, err := ReadData(rf, coord, DecodeBytes)
		if err != nil {
			if err == ErrChunkNotFound {
				continue
			}
			return fmt.Errorf("anvil: decode slot %d: %w", i, err)
		}

		name := fmt.Sprintf("chunk.%d.%d.nbt", coord.X(), coord.Z())
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("anvil: write %s: %w", name, err)
		}
	}
	return nil
}

// openHeaderReadOnly opens path read-only and reads its header, returning
// the still-open file (positioned right after the header) for callers
// that need to seek further into the payload area.
func openHeaderReadOnly(path string) (*os.File, *Header, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("anvil: open %s: %w", path, err)
	}
	header, err := ReadHeader(io.LimitReader(f, headerSize))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("anvil: read header of %s: %w", path, err)
	}
	return f, header, nil
}

// openHeaderReadOnlyNoClose is openHeaderReadOnly for callers that only
// need the header, not the file handle.
func openHeaderReadOnlyNoClose(path string) (*os.File, *Header, error) {
	f, header, err := openHeaderReadOnly(path)
	if f != nil {
		f.Close()
	}
	return nil, header, err
}
