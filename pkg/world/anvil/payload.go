package anvil

import "io"

// BytesPayload adapts a raw byte slice to the Payload interface. It is the
// simplest possible collaborator: most callers already have an encoded
// NBT/tag-tree blob in memory (e.g. internal/server/world/anvil's
// EncodeChunkNBT) and just need it framed.
type BytesPayload []byte

// WriteTo implements Payload.
func (b BytesPayload) WriteTo(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

// DecodeBytes is a PayloadDecoder that reads r to completion and returns
// the raw bytes, for callers that do their own tag-tree decoding
// out-of-band.
func DecodeBytes(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
