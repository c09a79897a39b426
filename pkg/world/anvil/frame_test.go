package anvil

import (
	"bytes"
	"testing"
)

func encodeDecodeRoundTrip(t *testing.T, scheme CompressionScheme, level int, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := encodeFrame(&buf, scheme, level, BytesPayload(data)); err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	got, err := decodeFrame(bytes.NewReader(buf.Bytes()), DecodeBytes)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	return got
}

func TestFrameRoundTripAllSchemes(t *testing.T) {
	payload := bytes.Repeat([]byte{0x41}, 3000)
	for _, scheme := range []CompressionScheme{SchemeGZip, SchemeZlib, SchemeRaw} {
		for level := 0; level <= 9; level++ {
			got := encodeDecodeRoundTrip(t, scheme, level, payload)
			if !bytes.Equal(got, payload) {
				t.Fatalf("scheme %d level %d: round trip mismatch", scheme, level)
			}
		}
	}
}

func TestFrameIsSectorPadded(t *testing.T) {
	var buf bytes.Buffer
	if _, err := encodeFrame(&buf, SchemeRaw, 0, BytesPayload(make([]byte, 10))); err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	if buf.Len()%sectorSize != 0 {
		t.Fatalf("frame length %d is not a multiple of %d", buf.Len(), sectorSize)
	}
}

func TestRequiredSectorsBoundary(t *testing.T) {
	// A payload encoding to exactly 4091 bytes (+5 header = 4096) needs 1
	// sector; 4092 bytes (+5 = 4097) needs 2.
	if got := requiredSectors(4091 + frameHeaderSize); got != 1 {
		t.Fatalf("requiredSectors(4091+5) = %d, want 1", got)
	}
	if got := requiredSectors(4092 + frameHeaderSize); got != 2 {
		t.Fatalf("requiredSectors(4092+5) = %d, want 2", got)
	}
}

func TestEncodeFrameChunkTooLarge(t *testing.T) {
	huge := make([]byte, 255*sectorSize+1)
	var buf bytes.Buffer
	_, err := encodeFrame(&buf, SchemeRaw, 0, BytesPayload(huge))
	if err != ErrChunkTooLarge {
		t.Fatalf("encodeFrame with oversized payload = %v, want ErrChunkTooLarge", err)
	}
}

func TestDecodeFrameZeroLengthIsNotFound(t *testing.T) {
	buf := make([]byte, sectorSize) // all-zero frame: length field is 0
	_, err := decodeFrame(bytes.NewReader(buf), DecodeBytes)
	if err != ErrChunkNotFound {
		t.Fatalf("decodeFrame of zero-length frame = %v, want ErrChunkNotFound", err)
	}
}

func TestDecodeFrameInvalidScheme(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2}) // length = 2 (1 scheme byte + 1 payload byte)
	buf.WriteByte(9)              // invalid scheme
	buf.WriteByte(0xAB)

	_, err := decodeFrame(&buf, DecodeBytes)
	var invalid *InvalidCompressionScheme
	if err == nil {
		t.Fatal("expected an error for invalid scheme byte")
	}
	if !asInvalidScheme(err, &invalid) {
		t.Fatalf("expected *InvalidCompressionScheme, got %T: %v", err, err)
	}
	if invalid.Scheme != 9 {
		t.Fatalf("invalid.Scheme = %d, want 9", invalid.Scheme)
	}
}

func asInvalidScheme(err error, target **InvalidCompressionScheme) bool {
	if e, ok := err.(*InvalidCompressionScheme); ok {
		*target = e
		return true
	}
	return false
}
