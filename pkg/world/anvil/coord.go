package anvil

import "fmt"

// RegionCoord is a slot index in [0, 1024), derived from a chunk's (x, z)
// position by reducing each axis to 5 bits and packing z*32+x. Two
// coordinates that differ only by a multiple of 32 on each axis map to the
// same slot, matching Minecraft's region-file addressing.
type RegionCoord uint16

// NewRegionCoord normalizes (x, z) into a RegionCoord. x and z may be any
// int; only the low 5 bits of each contribute to the slot index.
func NewRegionCoord(x, z int) RegionCoord {
	lx := uint16(x) & 31
	lz := uint16(z) & 31
	return RegionCoord(lz*32 + lx)
}

// Index returns the coordinate's slot index in [0, 1024).
func (c RegionCoord) Index() int {
	return int(c)
}

// checkCoord reports ErrOutOfRange if coord does not address one of the
// 1024 slots in a region file. NewRegionCoord can never produce such a
// value (both axes are masked to 5 bits), but RegionCoord is a plain
// uint16 conversion away from any external int, so the RegionFile entry
// points guard against a caller handing in an unreduced one.
func checkCoord(coord RegionCoord) error {
	if int(coord) >= slotCount {
		return fmt.Errorf("anvil: slot %d: %w", coord, ErrOutOfRange)
	}
	return nil
}

// X returns the reduced x component, c.Index() & 31.
func (c RegionCoord) X() int {
	return int(c) & 31
}

// Z returns the reduced z component, (c.Index() >> 5) & 31.
func (c RegionCoord) Z() int {
	return (int(c) >> 5) & 31
}

// sectorTableOffset returns the byte offset of this coordinate's 4-byte
// sector entry in the header.
func (c RegionCoord) sectorTableOffset() int64 {
	return int64(c) * 4
}

// timestampTableOffset returns the byte offset of this coordinate's 4-byte
// timestamp entry in the header.
func (c RegionCoord) timestampTableOffset() int64 {
	return sectorTableSize + int64(c)*4
}

// Bitmap1024 is a fixed 1024-bit presence bitmap, stored as 32 words of 32
// bits. It is used only as a diagnostic/indexing helper: the on-disk header
// remains the source of truth for which slots are present.
type Bitmap1024 [32]uint32

// Get reports whether bit i is set. i must be in [0, 1024).
func (b *Bitmap1024) Get(i int) bool {
	return b[i/32]&(1<<uint(i%32)) != 0
}

// Set assigns bit i to v. i must be in [0, 1024).
func (b *Bitmap1024) Set(i int, v bool) {
	word, bit := i/32, uint(i%32)
	if v {
		b[word] |= 1 << bit
	} else {
		b[word] &^= 1 << bit
	}
}

// Clear resets every bit to 0.
func (b *Bitmap1024) Clear() {
	*b = Bitmap1024{}
}

// Count returns the number of set bits.
func (b *Bitmap1024) Count() int {
	n := 0
	for _, word := range b {
		for word != 0 {
			word &= word - 1
			n++
		}
	}
	return n
}
