package anvil

import "testing"

func TestSectorManagerAllocateFirstFit(t *testing.T) {
	m := NewSectorManager()

	s1, err := m.Allocate(3)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if s1.Offset() != headerSectorCount || s1.Count() != 3 {
		t.Fatalf("s1 = %+v, want offset %d count 3", s1, headerSectorCount)
	}

	s2, err := m.Allocate(2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if s2.Offset() != headerSectorCount+3 {
		t.Fatalf("s2 offset = %d, want %d", s2.Offset(), headerSectorCount+3)
	}
}

func TestSectorManagerAllocateRejectsOutOfRange(t *testing.T) {
	m := NewSectorManager()
	if _, err := m.Allocate(0); err != ErrRegionAllocationFailure {
		t.Fatalf("Allocate(0) = %v, want ErrRegionAllocationFailure", err)
	}
	if _, err := m.Allocate(256); err != ErrRegionAllocationFailure {
		t.Fatalf("Allocate(256) = %v, want ErrRegionAllocationFailure", err)
	}
}

func TestSectorManagerFreeAndReuse(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(2)
	b, _ := m.Allocate(3)
	_ = b

	m.Free(a)

	// A 2-sector allocation should reuse the freed extent rather than
	// growing the tail.
	c, err := m.Allocate(2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if c != a {
		t.Fatalf("expected freed extent to be reused exactly: got %+v, want %+v", c, a)
	}
}

func TestSectorManagerFreeCoalesces(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(2) // [2,4)
	b, _ := m.Allocate(2) // [4,6)
	c, _ := m.Allocate(2) // [6,8)

	m.Free(a)
	m.Free(c)
	m.Free(b) // should coalesce a+b+c into one [2,8) extent

	d, err := m.Allocate(6)
	if err != nil {
		t.Fatalf("Allocate(6) after coalescing: %v", err)
	}
	if d.Offset() != headerSectorCount || d.Count() != 6 {
		t.Fatalf("d = %+v, want offset %d count 6", d, headerSectorCount)
	}
}

func TestSectorManagerReallocateSameSize(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(3)
	b, err := m.Reallocate(a, 3)
	if err != nil {
		t.Fatalf("Reallocate: %v", err)
	}
	if b != a {
		t.Fatalf("Reallocate to same size should return the identical sector: got %+v, want %+v", b, a)
	}
}

func TestSectorManagerReallocateShrink(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(5)
	b, err := m.Reallocate(a, 2)
	if err != nil {
		t.Fatalf("Reallocate: %v", err)
	}
	if b.Offset() != a.Offset() || b.Count() != 2 {
		t.Fatalf("shrunk sector = %+v, want offset %d count 2", b, a.Offset())
	}

	// The freed tail (3 sectors) should be reusable.
	c, err := m.Allocate(3)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if c.Offset() != a.Offset()+2 {
		t.Fatalf("expected reuse of freed tail at offset %d, got %+v", a.Offset()+2, c)
	}
}

func TestSectorManagerReallocateGrowExtendsIntoFollowingFree(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(2)
	b, _ := m.Allocate(2)
	m.Free(b)

	grown, err := m.Reallocate(a, 4)
	if err != nil {
		t.Fatalf("Reallocate: %v", err)
	}
	if grown.Offset() != a.Offset() || grown.Count() != 4 {
		t.Fatalf("grown = %+v, want offset %d count 4", grown, a.Offset())
	}
}

func TestSectorManagerReallocateGrowFallsBackWhenBlocked(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(2)
	// Allocate and keep b so the space right after a is not free.
	b, _ := m.Allocate(2)

	grown, err := m.Reallocate(a, 4)
	if err != nil {
		t.Fatalf("Reallocate: %v", err)
	}
	if grown.Offset() == a.Offset() {
		t.Fatalf("expected reallocation to move elsewhere since %+v blocks extension", b)
	}
	if grown.Count() != 4 {
		t.Fatalf("grown.Count() = %d, want 4", grown.Count())
	}
}

func TestSectorManagerFromHeaderReconstructsFreeSpace(t *testing.T) {
	h := &Header{}
	h.SetSector(NewRegionCoord(0, 0), NewRegionSector(2, 2)) // [2,4)
	h.SetSector(NewRegionCoord(1, 0), NewRegionSector(6, 1)) // [6,7), leaves [4,6) free

	m := NewSectorManagerFromHeader(h, 10) // file has 10 sectors total

	// [4,6) should be free and reusable.
	s, err := m.Allocate(2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if s.Offset() != 4 {
		t.Fatalf("expected reconstructed free gap at offset 4, got %+v", s)
	}
}

func TestSectorManagerReallocateRejectsOutOfRange(t *testing.T) {
	m := NewSectorManager()
	a, _ := m.Allocate(2)
	if _, err := m.Reallocate(a, 0); err != ErrRegionAllocationFailure {
		t.Fatalf("Reallocate(0) = %v, want ErrRegionAllocationFailure", err)
	}
	if _, err := m.Reallocate(a, 256); err != ErrRegionAllocationFailure {
		t.Fatalf("Reallocate(256) = %v, want ErrRegionAllocationFailure", err)
	}
}
