package anvil

import (
	"encoding/binary"
	"io"
)

const (
	// slotCount is the number of addressable chunk slots per region file.
	slotCount = 1024

	// sectorTableSize is the size in bytes of the sector-offset table.
	sectorTableSize = slotCount * 4

	// timestampTableSize is the size in bytes of the timestamp table.
	timestampTableSize = slotCount * 4

	// headerSize is the combined size of both tables: the first two
	// sectors of every region file.
	headerSize = sectorTableSize + timestampTableSize

	// headerSectorCount is headerSize expressed in 4 KiB sectors.
	headerSectorCount = headerSize / sectorSize
)

// Timestamp is seconds since the Unix epoch, UTC. Zero is a legal value and
// is the default for empty slots; it is not distinguished from "explicitly
// set to the epoch" at this layer — see DESIGN.md.
type Timestamp uint32

// Header is the 8192-byte on-disk directory of a region file: 1024 packed
// sector descriptors followed by 1024 timestamps, both big-endian.
type Header struct {
	Sectors    [slotCount]RegionSector
	Timestamps [slotCount]Timestamp
}

// ReadHeader reads an 8192-byte header image from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	h := &Header{}
	for i := 0; i < slotCount; i++ {
		h.Sectors[i] = RegionSector(binary.BigEndian.Uint32(buf[i*4 : i*4+4]))
	}
	for i := 0; i < slotCount; i++ {
		off := sectorTableSize + i*4
		h.Timestamps[i] = Timestamp(binary.BigEndian.Uint32(buf[off : off+4]))
	}
	return h, nil
}

// WriteTo encodes h as an 8192-byte big-endian image and writes it to w.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var buf [headerSize]byte
	for i := 0; i < slotCount; i++ {
		binary.BigEndian.PutUint32(buf[i*4:i*4+4], uint32(h.Sectors[i]))
	}
	for i := 0; i < slotCount; i++ {
		off := sectorTableSize + i*4
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(h.Timestamps[i]))
	}
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Sector returns the sector descriptor for coord.
func (h *Header) Sector(coord RegionCoord) RegionSector {
	return h.Sectors[coord.Index()]
}

// SetSector assigns the sector descriptor for coord.
func (h *Header) SetSector(coord RegionCoord, s RegionSector) {
	h.Sectors[coord.Index()] = s
}

// Timestamp returns the timestamp for coord.
func (h *Header) Timestamp(coord RegionCoord) Timestamp {
	return h.Timestamps[coord.Index()]
}

// SetTimestamp assigns the timestamp for coord.
func (h *Header) SetTimestamp(coord RegionCoord, ts Timestamp) {
	h.Timestamps[coord.Index()] = ts
}
