package anvil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRebuildCompactsAndReclaimsGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")

	rf, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c0, c1, c2 := NewRegionCoord(0, 0), NewRegionCoord(1, 0), NewRegionCoord(2, 0)
	if _, err := rf.WriteData(c0, SchemeZlib, 4, BytesPayload(bytes.Repeat([]byte{1}, 500))); err != nil {
		t.Fatal(err)
	}
	s1, err := rf.WriteData(c1, SchemeZlib, 4, BytesPayload(bytes.Repeat([]byte{2}, 500)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rf.WriteData(c2, SchemeZlib, 4, BytesPayload(bytes.Repeat([]byte{3}, 500))); err != nil {
		t.Fatal(err)
	}
	if _, err := rf.DeleteData(c1); err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := Rebuild(path, path); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open after rebuild: %v", err)
	}
	defer reopened.Close()

	s1After, err := reopened.Sector(c1)
	if err != nil {
		t.Fatalf("Sector(c1): %v", err)
	}
	if !s1After.IsEmpty() {
		t.Fatal("expected deleted slot to remain empty after rebuild")
	}

	s0, err := reopened.Sector(c0)
	if err != nil {
		t.Fatalf("Sector(c0): %v", err)
	}
	s2, err := reopened.Sector(c2)
	if err != nil {
		t.Fatalf("Sector(c2): %v", err)
	}
	if s0.Offset() != headerSectorCount {
		t.Fatalf("first surviving chunk at offset %d, want %d (no gap)", s0.Offset(), headerSectorCount)
	}
	if s2.Offset() != s0.EndSector() {
		t.Fatalf("second surviving chunk at offset %d, want %d immediately after the first (s1 was %+v before delete)", s2.Offset(), s0.EndSector(), s1)
	}

	seq, err := ChunksAreSequential(path)
	if err != nil {
		t.Fatalf("ChunksAreSequential: %v", err)
	}
	if !seq {
		t.Fatal("expected rebuilt file to be sequential")
	}

	wasted, err := WastedSectors(path)
	if err != nil {
		t.Fatalf("WastedSectors: %v", err)
	}
	if wasted != 0 {
		t.Fatalf("WastedSectors = %d, want 0 after rebuild", wasted)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")

	rf, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := rf.WriteData(RegionCoord(i), SchemeZlib, 3, BytesPayload(bytes.Repeat([]byte{byte(i)}, 200+i*10))); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := rf.DeleteData(RegionCoord(2)); err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := Rebuild(path, path); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Rebuild(path, path); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("expected two successive rebuilds to produce byte-identical files")
	}
}

func TestWriteChunksRejectsDuplicateCoord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	rf, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	coord := NewRegionCoord(0, 0)
	writes := []ChunkWrite{
		{Coord: coord, Scheme: SchemeRaw, Payload: BytesPayload([]byte("a"))},
		{Coord: coord, Scheme: SchemeRaw, Payload: BytesPayload([]byte("b"))},
	}
	if _, err := WriteChunks(path, path, writes); err != ErrDuplicateChunk {
		t.Fatalf("WriteChunks = %v, want ErrDuplicateChunk", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("expected file to be unchanged after a rejected duplicate-chunk write")
	}
}

func TestWriteChunksAndDeleteChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	rf, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	c0, c1 := NewRegionCoord(0, 0), NewRegionCoord(1, 1)
	writes := []ChunkWrite{
		{Coord: c0, Scheme: SchemeRaw, Payload: BytesPayload([]byte("hello")), Timestamp: 111},
		{Coord: c1, Scheme: SchemeZlib, Level: 5, Payload: BytesPayload(bytes.Repeat([]byte{7}, 400)), Timestamp: 222},
	}
	if _, err := WriteChunks(path, path, writes); err != nil {
		t.Fatalf("WriteChunks: %v", err)
	}

	rf2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadData(rf2, c0, DecodeBytes)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	ts, err := rf2.Timestamp(c0)
	if err != nil {
		t.Fatalf("Timestamp(c0): %v", err)
	}
	if ts != 111 {
		t.Fatalf("timestamp = %d, want 111", ts)
	}
	if err := rf2.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := DeleteChunks(path, path, []RegionCoord{c0}); err != nil {
		t.Fatalf("DeleteChunks: %v", err)
	}

	rf3, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf3.Close()
	s0After, err := rf3.Sector(c0)
	if err != nil {
		t.Fatalf("Sector(c0): %v", err)
	}
	if !s0After.IsEmpty() {
		t.Fatal("expected c0 to be deleted")
	}
	s1After, err := rf3.Sector(c1)
	if err != nil {
		t.Fatalf("Sector(c1): %v", err)
	}
	if s1After.IsEmpty() {
		t.Fatal("expected c1 to survive DeleteChunks")
	}
}
