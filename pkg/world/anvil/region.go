// Package anvil implements a random-access, chunk-indexed binary file
// store: a region file engine that persists up to 1024 variable-sized
// compressed chunk payloads per file, each addressable by a 2D coordinate,
// under a strict 4 KiB sector layout.
//
// The package consumes two abstractions from external collaborators: a
// Payload that can encode itself to a byte stream, and an opaque
// coordinate-to-file-name mapping (left entirely to callers — this package
// only knows about RegionCoord within a single already-opened file).
package anvil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
)

// RegionFile is a single open *.mca-style file. It is not safe for
// concurrent use: every mutating operation moves the file's seek pointer
// and updates header state, so callers that share a RegionFile across
// goroutines must serialize access themselves (see Registry for a
// ready-made per-path mutual-exclusion helper).
type RegionFile struct {
	header  *Header
	sectors *SectorManager
	file    *os.File
	scratch bytes.Buffer
}

// Open opens an existing region file at path. It fails if the file does
// not exist or is smaller than 8192 bytes, or if the header violates one
// of the structural invariants (overlapping sectors, an entry pointing
// past the file's end, etc).
func Open(path string) (*RegionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("anvil: stat %s: %w", path, err)
	}
	if info.Size() < headerSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, need at least %d", ErrInvalidRegionFile, path, info.Size(), headerSize)
	}
	if info.Size()%sectorSize != 0 {
		return nil, fmt.Errorf("%w: %s size %d is not a multiple of %d", ErrInvalidRegionFile, path, info.Size(), sectorSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("anvil: open %s: %w", path, err)
	}

	header, err := ReadHeader(io.LimitReader(f, headerSize))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("anvil: read header of %s: %w", path, err)
	}

	fileSectors := uint32(info.Size() / sectorSize)
	if err := validateHeader(header, fileSectors); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRegionFile, path, err)
	}

	return &RegionFile{
		header:  header,
		sectors: NewSectorManagerFromHeader(header, fileSectors),
		file:    f,
	}, nil
}

// Create creates a new, empty region file at path, failing if a file
// already exists there. The header is written as 8192 zero bytes.
func Create(path string) (*RegionFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("anvil: create %s: %w", path, err)
	}
	if _, err := f.Write(make([]byte, headerSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("anvil: write empty header of %s: %w", path, err)
	}
	return &RegionFile{
		header:  &Header{},
		sectors: NewSectorManager(),
		file:    f,
	}, nil
}

// OpenOrCreate opens path if it exists, or creates it otherwise.
func OpenOrCreate(path string) (*RegionFile, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Create(path)
		}
		return nil, fmt.Errorf("anvil: stat %s: %w", path, err)
	}
	return Open(path)
}

// Close releases the underlying file handle.
func (rf *RegionFile) Close() error {
	return rf.file.Close()
}

// validateHeader checks §3 invariants 2-4 against a freshly-read header.
// Invariant 5 (free set partitions the sector space) holds by construction
// of SectorManager and is not separately checked here; invariant 1 (file
// size) is checked by the caller before this runs.
func validateHeader(h *Header, fileSectors uint32) error {
	entries := make([]RegionSector, 0, slotCount)
	for i, s := range h.Sectors {
		if s.IsEmpty() {
			continue
		}
		if s.Offset() < headerSectorCount {
			return fmt.Errorf("slot %d: offset %d overlaps header", i, s.Offset())
		}
		if s.EndSector() > fileSectors {
			return fmt.Errorf("slot %d: sector run extends past end of file", i)
		}
		if s.Count() == 0 {
			return fmt.Errorf("slot %d: invalid sector count %d", i, s.Count())
		}
		entries = append(entries, s)
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].Overlaps(entries[j]) {
				return fmt.Errorf("sectors overlap: %v and %v", entries[i], entries[j])
			}
		}
	}
	return nil
}

// Sector returns the current sector descriptor for coord.
func (rf *RegionFile) Sector(coord RegionCoord) (RegionSector, error) {
	if err := checkCoord(coord); err != nil {
		return 0, err
	}
	return rf.header.Sector(coord), nil
}

// Timestamp returns the current timestamp for coord.
func (rf *RegionFile) Timestamp(coord RegionCoord) (Timestamp, error) {
	if err := checkCoord(coord); err != nil {
		return 0, err
	}
	return rf.header.Timestamp(coord), nil
}

// WriteData encodes payload under the given compression scheme and level,
// allocates (or reuses/resizes) the destination sector run, writes it, and
// persists the updated sector-table entry. It does not touch the
// timestamp table; use WriteTimestamped or WriteWithUTCNow for that.
func (rf *RegionFile) WriteData(coord RegionCoord, scheme CompressionScheme, level int, payload Payload) (RegionSector, error) {
	if err := checkCoord(coord); err != nil {
		return 0, err
	}

	required, err := encodeFrame(&rf.scratch, scheme, level, payload)
	if err != nil {
		return 0, err
	}

	old := rf.header.Sector(coord)
	newSector, err := rf.sectors.Reallocate(old, required)
	if err != nil {
		return 0, err
	}

	if newSector.ByteOffset()%sectorSize != 0 {
		return 0, fmt.Errorf("anvil: write at byte %d: %w", newSector.ByteOffset(), ErrStreamSectorBoundary)
	}
	if _, err := rf.file.WriteAt(rf.scratch.Bytes(), newSector.ByteOffset()); err != nil {
		return 0, fmt.Errorf("anvil: write chunk data: %w", err)
	}

	rf.header.SetSector(coord, newSector)
	var sectorBuf [4]byte
	putBE32(sectorBuf[:], uint32(newSector))
	if _, err := rf.file.WriteAt(sectorBuf[:], coord.sectorTableOffset()); err != nil {
		return 0, fmt.Errorf("anvil: write sector table entry: %w", err)
	}

	return newSector, nil
}

// WriteTimestamped calls WriteData and then persists ts at coord's
// timestamp-table entry.
func (rf *RegionFile) WriteTimestamped(coord RegionCoord, scheme CompressionScheme, level int, payload Payload, ts Timestamp) (RegionSector, error) {
	sector, err := rf.WriteData(coord, scheme, level, payload)
	if err != nil {
		return 0, err
	}
	rf.header.SetTimestamp(coord, ts)
	var buf [4]byte
	putBE32(buf[:], uint32(ts))
	if _, err := rf.file.WriteAt(buf[:], coord.timestampTableOffset()); err != nil {
		return 0, fmt.Errorf("anvil: write timestamp: %w", err)
	}
	return sector, nil
}

// WriteWithUTCNow calls WriteTimestamped with the current UTC time.
func (rf *RegionFile) WriteWithUTCNow(coord RegionCoord, scheme CompressionScheme, level int, payload Payload) (RegionSector, error) {
	return rf.WriteTimestamped(coord, scheme, level, payload, Timestamp(uint32(time.Now().UTC().Unix())))
}

// ReadData reads and decodes the payload stored at coord. It is a free
// function rather than a method because Go methods cannot carry their own
// type parameters.
func ReadData[T any](rf *RegionFile, coord RegionCoord, decode PayloadDecoder[T]) (T, error) {
	var zero T
	if err := checkCoord(coord); err != nil {
		return zero, err
	}
	sector := rf.header.Sector(coord)
	if sector.IsEmpty() {
		return zero, ErrChunkNotFound
	}
	if _, err := rf.file.Seek(sector.ByteOffset(), io.SeekStart); err != nil {
		return zero, err
	}
	r := bufio.NewReaderSize(io.LimitReader(rf.file, sector.ByteSize()), sectorSize)
	return decodeFrame(r, decode)
}

// DeleteData frees coord's sector (if any) and clears its header entries,
// both in memory and on disk. The payload bytes themselves are not
// zeroed. Calling DeleteData on an already-empty slot is a no-op that
// returns the empty sector.
func (rf *RegionFile) DeleteData(coord RegionCoord) (RegionSector, error) {
	if err := checkCoord(coord); err != nil {
		return 0, err
	}

	old := rf.header.Sector(coord)
	if old.IsEmpty() {
		return old, nil
	}

	rf.sectors.Free(old)
	rf.header.SetSector(coord, emptyRegionSector)
	rf.header.SetTimestamp(coord, 0)

	var zero [4]byte
	if _, err := rf.file.WriteAt(zero[:], coord.sectorTableOffset()); err != nil {
		return 0, fmt.Errorf("anvil: clear sector table entry: %w", err)
	}
	if _, err := rf.file.WriteAt(zero[:], coord.timestampTableOffset()); err != nil {
		return 0, fmt.Errorf("anvil: clear timestamp entry: %w", err)
	}
	return old, nil
}

func putBE32(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}
