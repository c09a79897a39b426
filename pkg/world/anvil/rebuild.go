package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ChunkWrite is one entry for WriteChunks: a coordinate, compression
// parameters, and the payload to encode, plus the timestamp to store
// alongside it.
type ChunkWrite struct {
	Coord     RegionCoord
	Scheme    CompressionScheme
	Level     int
	Payload   Payload
	Timestamp Timestamp
}

// Rebuild reads the region file at inputPath and writes an equivalent file
// to outputPath (which may equal inputPath) whose slots reference
// identical payloads and timestamps, but laid out sequentially with no
// gaps and no wasted sectors. It is crash-safe: outputPath is replaced via
// a temp file plus rename only after the rebuild has fully succeeded.
func Rebuild(inputPath, outputPath string) (int64, error) {
	return rebuildWith(inputPath, outputPath, nil, nil)
}

// WriteChunks runs the same rebuild skeleton as Rebuild but splices the
// caller's writes in at their coordinates. It fails with ErrDuplicateChunk,
// leaving inputPath untouched, if two entries target the same coordinate.
func WriteChunks(inputPath, outputPath string, writes []ChunkWrite) (int64, error) {
	byCoord := make(map[RegionCoord]ChunkWrite, len(writes))
	for _, w := range writes {
		if _, dup := byCoord[w.Coord]; dup {
			return 0, ErrDuplicateChunk
		}
		byCoord[w.Coord] = w
	}
	return rebuildWith(inputPath, outputPath, byCoord, nil)
}

// DeleteChunks runs the same rebuild skeleton as Rebuild but omits the
// given coordinates from the output entirely.
func DeleteChunks(inputPath, outputPath string, coords []RegionCoord) (int64, error) {
	deleted := make(map[RegionCoord]bool, len(coords))
	for _, c := range coords {
		deleted[c] = true
	}
	return rebuildWith(inputPath, outputPath, nil, deleted)
}

// rebuildWith is the shared engine behind Rebuild, WriteChunks, and
// DeleteChunks. writes overrides input slots with fresh encodes; deletes
// omits input slots entirely; a coordinate should never appear in both.
func rebuildWith(inputPath, outputPath string, writes map[RegionCoord]ChunkWrite, deletes map[RegionCoord]bool) (int64, error) {
	in, err := os.OpenFile(inputPath, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("anvil: open %s for rebuild: %w", inputPath, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("anvil: stat %s: %w", inputPath, err)
	}
	if info.Size() < headerSize {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRegionFile, inputPath)
	}

	inHeader, err := ReadHeader(io.LimitReader(in, headerSize))
	if err != nil {
		return 0, fmt.Errorf("anvil: read header of %s: %w", inputPath, err)
	}

	newHeader := &Header{}
	var body bytes.Buffer
	cursor := uint32(headerSectorCount)

	for i := 0; i < slotCount; i++ {
		coord := RegionCoord(i)

		if w, ok := writes[coord]; ok {
			var frame bytes.Buffer
			required, err := encodeFrame(&frame, w.Scheme, w.Level, w.Payload)
			if err != nil {
				return 0, err
			}
			body.Write(frame.Bytes())
			if err := checkSectorAligned(body.Len()); err != nil {
				return 0, fmt.Errorf("anvil: slot %d: %w", i, err)
			}
			newHeader.SetSector(coord, NewRegionSector(cursor, uint8(required)))
			newHeader.SetTimestamp(coord, w.Timestamp)
			cursor += uint32(required)
			continue
		}

		oldSector := inHeader.Sector(coord)
		if oldSector.IsEmpty() || deletes[coord] {
			continue
		}

		if _, err := in.Seek(oldSector.ByteOffset(), io.SeekStart); err != nil {
			return 0, fmt.Errorf("anvil: seek to slot %d: %w", i, err)
		}
		var lenBuf [4]byte
		if _, err := io.ReadFull(in, lenBuf[:]); err != nil {
			return 0, fmt.Errorf("anvil: read frame length for slot %d: %w", i, err)
		}
		length := binary.BigEndian.Uint32(lenBuf[:])
		if length == 0 {
			// Wasted slot: allocated but empty. Reclaim it by leaving the
			// rebuilt header entry empty.
			continue
		}

		required := requiredSectors(int(length) + 4)
		body.Write(lenBuf[:])
		if _, err := io.CopyN(&body, in, int64(length)); err != nil {
			return 0, fmt.Errorf("anvil: copy frame for slot %d: %w", i, err)
		}
		if pad := required*sectorSize - (4 + int(length)); pad > 0 {
			body.Write(make([]byte, pad))
		}
		if err := checkSectorAligned(body.Len()); err != nil {
			return 0, fmt.Errorf("anvil: slot %d: %w", i, err)
		}

		newHeader.SetSector(coord, NewRegionSector(cursor, uint8(required)))
		newHeader.SetTimestamp(coord, inHeader.Timestamp(coord))
		cursor += uint32(required)
	}

	tmpPath := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputPath), uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("anvil: create temp file for rebuild: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := newHeader.WriteTo(tmp); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("anvil: write rebuilt header: %w", err)
	}
	if _, err := tmp.Write(body.Bytes()); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("anvil: write rebuilt chunk data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("anvil: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("anvil: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return 0, fmt.Errorf("anvil: replace %s: %w", outputPath, err)
	}

	return int64(cursor) * sectorSize, nil
}
