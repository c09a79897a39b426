package anvil

const sectorSize = 4096

// RegionSector packs a (offset, count) pair describing a run of 4 KiB
// sectors: 24 bits of offset (in sectors) and 8 bits of count (in sectors).
// The zero value means "empty slot" — no offset, no sectors allocated.
type RegionSector uint32

// NewRegionSector packs offset and count (both measured in 4 KiB sectors)
// into a RegionSector. Callers are responsible for keeping count in
// [0, 255] and offset in [0, 2^24).
func NewRegionSector(offset uint32, count uint8) RegionSector {
	return RegionSector((offset << 8) | uint32(count))
}

// emptyRegionSector is the on-disk/in-memory representation of an unused
// slot.
const emptyRegionSector RegionSector = 0

// Offset returns the sector offset (in 4 KiB sectors) from the start of the
// file.
func (s RegionSector) Offset() uint32 {
	return uint32(s) >> 8
}

// Count returns the number of 4 KiB sectors this entry spans.
func (s RegionSector) Count() uint8 {
	return uint8(s)
}

// ByteOffset returns Offset() converted to a byte offset.
func (s RegionSector) ByteOffset() int64 {
	return int64(s.Offset()) * sectorSize
}

// ByteSize returns Count() converted to a byte size.
func (s RegionSector) ByteSize() int64 {
	return int64(s.Count()) * sectorSize
}

// EndSector returns the sector index one past the end of this run
// (Offset() + Count()).
func (s RegionSector) EndSector() uint32 {
	return s.Offset() + uint32(s.Count())
}

// IsEmpty reports whether this sector is the zero value.
func (s RegionSector) IsEmpty() bool {
	return s == emptyRegionSector
}

// Overlaps reports whether s and other, treated as half-open ranges
// [offset, offset+count), intersect. An empty sector never overlaps
// anything.
func (s RegionSector) Overlaps(other RegionSector) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return false
	}
	return s.EndSector() > other.Offset() && other.EndSector() > s.Offset()
}

// SplitLeft splits off the first n sectors of s, returning (left, rest)
// where left has count n and rest covers the remaining sectors. n must be
// strictly less than s.Count(); SplitLeft panics otherwise, since it is an
// internal invariant violation rather than a caller-facing error path.
func (s RegionSector) SplitLeft(n uint8) (left, rest RegionSector) {
	if n >= s.Count() {
		panic("anvil: SplitLeft requires n < s.Count()")
	}
	left = NewRegionSector(s.Offset(), n)
	rest = NewRegionSector(s.Offset()+uint32(n), s.Count()-n)
	return left, rest
}
