package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// CompressionScheme identifies how a frame's payload bytes are encoded on
// disk. It is a tagged enum with an explicit wire-byte mapping rather than
// a Go-idiomatic "just use the compressor type" design, since the on-disk
// byte is part of the file format, not an implementation detail.
type CompressionScheme uint8

const (
	SchemeGZip CompressionScheme = 1
	SchemeZlib CompressionScheme = 2
	SchemeRaw  CompressionScheme = 3
)

func (s CompressionScheme) valid() bool {
	return s == SchemeGZip || s == SchemeZlib || s == SchemeRaw
}

// Payload is the capability the region-file core requires of a stored
// value: the ability to stream its raw, uncompressed bytes to a writer.
// Any concrete chunk-payload type satisfies this with no inheritance
// hierarchy needed, per spec.
type Payload interface {
	WriteTo(w io.Writer) error
}

// PayloadDecoder reconstructs a T from a decompressed byte stream. It is a
// function value rather than a method-returning-interface because Go
// methods cannot carry their own type parameters; ReadData accepts one as
// an argument instead.
type PayloadDecoder[T any] func(r io.Reader) (T, error)

const frameHeaderSize = 5 // 4-byte length + 1-byte scheme

// encodeFrame renders payload into buf as a complete, sector-padded frame
// (length + scheme + compressed bytes + zero padding) and returns the
// number of 4 KiB sectors the frame occupies. buf is reset before use.
func encodeFrame(buf *bytes.Buffer, scheme CompressionScheme, level int, payload Payload) (int, error) {
	buf.Reset()
	buf.Write(make([]byte, frameHeaderSize))

	var (
		compressor io.WriteCloser
		err        error
	)
	switch scheme {
	case SchemeGZip:
		compressor, err = gzip.NewWriterLevel(buf, level)
	case SchemeZlib:
		compressor, err = zlib.NewWriterLevel(buf, level)
	case SchemeRaw:
		compressor = nopWriteCloser{buf}
	default:
		return 0, &InvalidCompressionScheme{Scheme: byte(scheme)}
	}
	if err != nil {
		return 0, err
	}

	if err := payload.WriteTo(compressor); err != nil {
		return 0, err
	}
	if err := compressor.Close(); err != nil {
		return 0, err
	}

	payloadLen := buf.Len() - frameHeaderSize
	required := requiredSectors(payloadLen + frameHeaderSize)
	if required > 255 {
		return 0, ErrChunkTooLarge
	}

	pad := required*sectorSize - (payloadLen + frameHeaderSize)
	if pad > 0 {
		buf.Write(make([]byte, pad))
	}

	out := buf.Bytes()
	binary.BigEndian.PutUint32(out[0:4], uint32(payloadLen+1))
	out[4] = byte(scheme)

	return required, nil
}

// requiredSectors returns the number of 4 KiB sectors needed to hold n
// bytes.
func requiredSectors(n int) int {
	return (n + sectorSize - 1) / sectorSize
}

// checkSectorAligned reports ErrStreamSectorBoundary if n is not a multiple
// of sectorSize: a frame writer that got its length/padding arithmetic
// wrong leaves the stream misaligned for whatever gets written next.
func checkSectorAligned(n int) error {
	if n%sectorSize != 0 {
		return fmt.Errorf("anvil: offset %d: %w", n, ErrStreamSectorBoundary)
	}
	return nil
}

// decodeFrame reads a frame header from r (which must be positioned at the
// start of the sector run) and, unless the frame is absent-but-allocated
// (length == 0, reported as ErrChunkNotFound), decodes it with decode.
func decodeFrame[T any](r io.Reader, decode PayloadDecoder[T]) (T, error) {
	var zero T

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return zero, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 {
		return zero, ErrChunkNotFound
	}

	var schemeBuf [1]byte
	if _, err := io.ReadFull(r, schemeBuf[:]); err != nil {
		return zero, err
	}
	scheme := CompressionScheme(schemeBuf[0])
	if !scheme.valid() {
		return zero, &InvalidCompressionScheme{Scheme: schemeBuf[0]}
	}

	limited := io.LimitReader(r, int64(length-1))

	var src io.Reader
	switch scheme {
	case SchemeGZip:
		gr, err := gzip.NewReader(limited)
		if err != nil {
			return zero, err
		}
		defer gr.Close()
		src = gr
	case SchemeZlib:
		zr, err := zlib.NewReader(limited)
		if err != nil {
			return zero, err
		}
		defer zr.Close()
		src = zr
	case SchemeRaw:
		src = limited
	}

	return decode(src)
}

// peekFrameLength reads just the 4-byte length prefix at the current
// reader position, leaving the stream positioned right after it. Used by
// bulk presence/count/wasted-sector scans that never need the payload
// itself.
func peekFrameLength(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
