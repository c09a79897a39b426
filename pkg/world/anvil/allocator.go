package anvil

import "sort"

// freeExtent is a contiguous run of unused sectors, [start, start+length).
type freeExtent struct {
	start  uint32
	length uint32
}

// SectorManager is a first-fit, coalescing allocator over the 4 KiB sector
// space of a region file. It never represents free space past the known
// file tail as an explicit extent; instead, any allocation that cannot be
// satisfied by an existing free extent grows the tail, which is how the
// spec's "trailing open-ended free extent" guarantee is realized without
// needing a sentinel-length extent.
//
// Grounded in the free-list block allocator described in
// cznic-exp/lldb/falloc.go, adapted from byte atoms to 4 KiB sectors.
type SectorManager struct {
	free []freeExtent // sorted by start, no two entries adjacent or overlapping
	tail uint32       // first sector not accounted for by any free or used extent
}

// NewSectorManager returns a manager for a brand-new file: only the two
// header sectors are reserved.
func NewSectorManager() *SectorManager {
	return &SectorManager{tail: headerSectorCount}
}

// NewSectorManagerFromHeader reconstructs allocator state from a header's
// sector table and the file's current size (in sectors): sectors 0-1 and
// every non-empty entry are marked used, gaps become free extents, and any
// space between the furthest used point and fileSectors is also free.
func NewSectorManagerFromHeader(h *Header, fileSectors uint32) *SectorManager {
	type span struct{ start, end uint32 }
	used := make([]span, 0, slotCount+1)
	used = append(used, span{0, headerSectorCount})
	for _, s := range h.Sectors {
		if s.IsEmpty() {
			continue
		}
		used = append(used, span{s.Offset(), s.EndSector()})
	}
	sort.Slice(used, func(i, j int) bool { return used[i].start < used[j].start })

	m := &SectorManager{}
	cursor := uint32(0)
	for _, u := range used {
		if u.start > cursor {
			m.free = append(m.free, freeExtent{cursor, u.start - cursor})
		}
		if u.end > cursor {
			cursor = u.end
		}
	}
	if fileSectors > cursor {
		m.free = append(m.free, freeExtent{cursor, fileSectors - cursor})
		cursor = fileSectors
	}
	m.tail = cursor
	return m
}

// Allocate returns a RegionSector of exactly n sectors, chosen as the
// lowest-address free extent of size >= n (first-fit); the remainder, if
// any, is returned to the free set. If no existing extent is large enough,
// the allocation grows the tail. Fails only when n is 0 or greater than
// 255.
func (m *SectorManager) Allocate(n int) (RegionSector, error) {
	if n <= 0 || n > 255 {
		return 0, ErrRegionAllocationFailure
	}
	need := uint32(n)
	for i, e := range m.free {
		if e.length < need {
			continue
		}
		s := NewRegionSector(e.start, uint8(n))
		if e.length == need {
			m.free = append(m.free[:i], m.free[i+1:]...)
		} else {
			m.free[i] = freeExtent{e.start + need, e.length - need}
		}
		return s, nil
	}
	s := NewRegionSector(m.tail, uint8(n))
	m.tail += need
	return s, nil
}

// Free returns s to the free set, coalescing with immediate neighbors. A
// no-op when s is empty.
func (m *SectorManager) Free(s RegionSector) {
	if s.IsEmpty() {
		return
	}
	start, length := s.Offset(), uint32(s.Count())

	i := sort.Search(len(m.free), func(i int) bool { return m.free[i].start >= start })
	m.free = append(m.free, freeExtent{})
	copy(m.free[i+1:], m.free[i:])
	m.free[i] = freeExtent{start, length}

	if i+1 < len(m.free) && m.free[i].start+m.free[i].length == m.free[i+1].start {
		m.free[i].length += m.free[i+1].length
		m.free = append(m.free[:i+1], m.free[i+2:]...)
	}
	if i > 0 && m.free[i-1].start+m.free[i-1].length == m.free[i].start {
		m.free[i-1].length += m.free[i].length
		m.free = append(m.free[:i], m.free[i+1:]...)
	}
}

// Reallocate resizes old to n sectors and returns the new descriptor. When
// n equals old's count, old is returned unchanged. When n is smaller, old
// is split and the tail freed. When n is larger, Reallocate first tries to
// extend into the free extent (or tail) immediately following old before
// falling back to freeing old and allocating fresh elsewhere. The
// operation never partially updates state: the only path that can fail is
// the upfront range check, before anything is mutated.
func (m *SectorManager) Reallocate(old RegionSector, n int) (RegionSector, error) {
	if n <= 0 || n > 255 {
		return 0, ErrRegionAllocationFailure
	}
	if old.IsEmpty() {
		return m.Allocate(n)
	}

	oldCount := int(old.Count())
	if n == oldCount {
		return old, nil
	}
	if n < oldCount {
		left, rest := old.SplitLeft(uint8(n))
		m.Free(rest)
		return left, nil
	}

	extra := uint32(n - oldCount)
	end := old.EndSector()

	for i, e := range m.free {
		if e.start != end {
			continue
		}
		if e.length >= extra {
			grown := NewRegionSector(old.Offset(), uint8(n))
			if e.length == extra {
				m.free = append(m.free[:i], m.free[i+1:]...)
			} else {
				m.free[i] = freeExtent{e.start + extra, e.length - extra}
			}
			return grown, nil
		}
		break
	}
	if end == m.tail {
		grown := NewRegionSector(old.Offset(), uint8(n))
		m.tail += extra
		return grown, nil
	}

	m.Free(old)
	return m.Allocate(n)
}

// FileSectors returns the number of sectors the manager believes the file
// must span to cover every used and free extent it knows about.
func (m *SectorManager) FileSectors() uint32 {
	return m.tail
}
