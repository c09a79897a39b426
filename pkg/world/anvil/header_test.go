package anvil

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := &Header{}
	h.SetSector(NewRegionCoord(1, 1), NewRegionSector(2, 3))
	h.SetSector(NewRegionCoord(31, 31), NewRegionSector(9, 1))
	h.SetTimestamp(NewRegionCoord(1, 1), 1700000000)

	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len() != headerSize {
		t.Fatalf("encoded header is %d bytes, want %d", buf.Len(), headerSize)
	}

	decoded, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if *decoded != *h {
		t.Fatal("decoded header does not match original")
	}
}

func TestFreshHeaderIsAllZero(t *testing.T) {
	h := &Header{}
	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	for i, b := range buf.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d of fresh header is %d, want 0", i, b)
		}
	}
}
