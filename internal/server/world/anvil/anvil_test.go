package anvil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/mcregion/internal/server/world"
	"github.com/OCharnyshevich/mcregion/internal/server/world/gen"
	regionfile "github.com/OCharnyshevich/mcregion/pkg/world/anvil"
)

func TestSetNibble(t *testing.T) {
	arr := make([]byte, 4)

	// Even index: low nibble.
	setNibble(arr, 0, 0x0A)
	if arr[0] != 0x0A {
		t.Fatalf("expected 0x0A, got 0x%02X", arr[0])
	}

	// Odd index: high nibble.
	setNibble(arr, 1, 0x0B)
	if arr[0] != 0xBA {
		t.Fatalf("expected 0xBA, got 0x%02X", arr[0])
	}

	// Another pair.
	setNibble(arr, 4, 0x03)
	setNibble(arr, 5, 0x07)
	if arr[2] != 0x73 {
		t.Fatalf("expected 0x73, got 0x%02X", arr[2])
	}
}

func TestEncodeChunkNBT(t *testing.T) {
	chunk := &gen.ChunkData{}
	// Place a stone block (ID=1, meta=0 → state=0x10) at local (0, 0, 0).
	chunk.SetBlock(0, 0, 0, 0x10)
	// Place grass (ID=2, meta=0 → state=0x20) at local (1, 64, 1).
	chunk.SetBlock(1, 64, 1, 0x20)

	overrides := map[world.BlockPos]int32{
		{X: 2, Y: 10, Z: 3}: 0x30, // dirt (ID=3, meta=0)
	}

	data, err := EncodeChunkNBT(0, 0, chunk, overrides)
	if err != nil {
		t.Fatalf("EncodeChunkNBT failed: %v", err)
	}

	// Basic structural checks: should start with compound tag (10).
	if len(data) == 0 {
		t.Fatal("empty NBT output")
	}
	if data[0] != 10 {
		t.Fatalf("expected root compound tag (10), got %d", data[0])
	}

	// Verify it ends with two End tags (inner Level compound + outer root compound).
	if data[len(data)-1] != 0 || data[len(data)-2] != 0 {
		t.Fatal("expected two End tags at end of NBT")
	}

	// Verify data is large enough to contain sections.
	if len(data) < 1000 {
		t.Fatalf("NBT data seems too small: %d bytes", len(data))
	}
}

func TestEncodeChunkNBTWithHighBlockID(t *testing.T) {
	chunk := &gen.ChunkData{}
	// Block ID 300 (0x12C), meta 5 → state = 300<<4 | 5 = 0x12C5
	chunk.SetBlock(0, 0, 0, 0x12C5)

	data, err := EncodeChunkNBT(0, 0, chunk, nil)
	if err != nil {
		t.Fatalf("EncodeChunkNBT failed: %v", err)
	}

	// Should contain "Add" byte array for high block IDs.
	if !bytes.Contains(data, []byte("Add")) {
		t.Fatal("expected Add array for block ID > 255")
	}
}

func TestComputeHeightMap(t *testing.T) {
	chunk := &gen.ChunkData{}
	// Place block at y=64.
	chunk.SetBlock(0, 64, 0, 0x10)
	// Place block at y=100.
	chunk.SetBlock(5, 100, 5, 0x20)

	hm := computeHeightMap(chunk, nil)

	if hm[0] != 65 { // y=64 → heightmap = 65
		t.Fatalf("expected heightmap[0]=65, got %d", hm[0])
	}
	if hm[5*16+5] != 101 { // y=100 → heightmap = 101
		t.Fatalf("expected heightmap[85]=101, got %d", hm[5*16+5])
	}
	if hm[1] != 0 { // no blocks at (1,_,0)
		t.Fatalf("expected heightmap[1]=0, got %d", hm[1])
	}
}

func TestComputeHeightMapWithOverrides(t *testing.T) {
	chunk := &gen.ChunkData{}
	chunk.SetBlock(0, 64, 0, 0x10)

	overrides := map[world.BlockPos]int32{
		{X: 0, Y: 200, Z: 0}: 0x10, // override higher than base
	}

	hm := computeHeightMap(chunk, overrides)
	if hm[0] != 201 {
		t.Fatalf("expected heightmap[0]=201, got %d", hm[0])
	}
}

func TestEncodeChunkNBTWritesThroughRegionEngine(t *testing.T) {
	dir := t.TempDir()

	chunk := &gen.ChunkData{}
	chunk.SetBlock(0, 0, 0, 0x10) // stone

	nbtData, err := EncodeChunkNBT(0, 0, chunk, nil)
	if err != nil {
		t.Fatalf("encode chunk: %v", err)
	}

	path := filepath.Join(dir, "r.0.0.mca")
	rf, err := regionfile.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer rf.Close()

	coord := regionfile.NewRegionCoord(0, 0)
	sector, err := rf.WriteData(coord, regionfile.SchemeZlib, 6, regionfile.BytesPayload(nbtData))
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if sector.Offset() != 2 {
		t.Fatalf("expected first chunk at sector offset 2, got %d", sector.Offset())
	}

	got, err := regionfile.ReadData(rf, coord, regionfile.DecodeBytes)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if !bytes.Equal(got, nbtData) {
		t.Fatal("region-file round trip did not preserve the encoded chunk NBT")
	}
}

func TestEncodeChunkNBTMultipleChunksInOneRegion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")
	rf, err := regionfile.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 3; i++ {
		chunk := &gen.ChunkData{}
		chunk.SetBlock(0, 0, 0, 0x10)
		nbtData, err := EncodeChunkNBT(i, 0, chunk, nil)
		if err != nil {
			t.Fatalf("encode chunk %d: %v", i, err)
		}
		coord := regionfile.NewRegionCoord(i, 0)
		if _, err := rf.WriteData(coord, regionfile.SchemeZlib, 6, regionfile.BytesPayload(nbtData)); err != nil {
			t.Fatalf("WriteData %d: %v", i, err)
		}
	}

	n, err := regionfile.CountChunks(path)
	if err != nil {
		t.Fatalf("CountChunks: %v", err)
	}
	if n != 3 {
		t.Fatalf("CountChunks = %d, want 3", n)
	}
}

func TestEncodeDecodeChunkNBTRoundTrip(t *testing.T) {
	chunk := &gen.ChunkData{}
	chunk.SetBlock(0, 0, 0, 0x10)   // stone at (0,0,0)
	chunk.SetBlock(5, 70, 9, 0x20)  // grass at (5,70,9)
	chunk.SetBlock(15, 255, 15, 0x30) // dirt at the chunk's far corner, top of the world

	data, err := EncodeChunkNBT(3, -2, chunk, nil)
	if err != nil {
		t.Fatalf("EncodeChunkNBT: %v", err)
	}

	cx, cz, decoded, _, err := DecodeChunkNBT(data)
	if err != nil {
		t.Fatalf("DecodeChunkNBT: %v", err)
	}
	if cx != 3 || cz != -2 {
		t.Fatalf("cx,cz = %d,%d, want 3,-2", cx, cz)
	}
	if got := decoded.GetBlock(0, 0, 0); got != 0x10 {
		t.Fatalf("GetBlock(0,0,0) = %#x, want 0x10", got)
	}
	if got := decoded.GetBlock(5, 70, 9); got != 0x20 {
		t.Fatalf("GetBlock(5,70,9) = %#x, want 0x20", got)
	}
	if got := decoded.GetBlock(15, 255, 15); got != 0x30 {
		t.Fatalf("GetBlock(15,255,15) = %#x, want 0x30", got)
	}
	if got := decoded.GetBlock(1, 1, 1); got != 0 {
		t.Fatalf("GetBlock(1,1,1) = %#x, want 0 (air)", got)
	}
}

func TestEncodeDecodeChunkNBTHighBlockIDRoundTrip(t *testing.T) {
	chunk := &gen.ChunkData{}
	chunk.SetBlock(0, 0, 0, 0x12C5) // block ID 300, meta 5

	data, err := EncodeChunkNBT(0, 0, chunk, nil)
	if err != nil {
		t.Fatalf("EncodeChunkNBT: %v", err)
	}
	_, _, decoded, _, err := DecodeChunkNBT(data)
	if err != nil {
		t.Fatalf("DecodeChunkNBT: %v", err)
	}
	if got := decoded.GetBlock(0, 0, 0); got != 0x12C5 {
		t.Fatalf("GetBlock(0,0,0) = %#x, want 0x12C5", got)
	}
}
