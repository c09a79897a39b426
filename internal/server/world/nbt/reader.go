package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Compound is a parsed NBT compound tag: a name-to-value map. Values are one
// of byte, int16, int32, int64, float32, float64, string, []byte, []int32,
// []any (a list), or Compound (nested).
type Compound map[string]any

// Reader reads NBT binary data from an io.Reader in big-endian format,
// mirroring Writer's tag set. All read methods accumulate errors
// internally; check Err() after reading, or rely on the error returned by
// ReadFile.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader creates a new NBT Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(buf []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.r, buf)
}

func (r *Reader) getByte() byte {
	var buf [1]byte
	r.read(buf[:])
	return buf[0]
}

func (r *Reader) getUint16() uint16 {
	var buf [2]byte
	r.read(buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *Reader) getInt32() int32 {
	var buf [4]byte
	r.read(buf[:])
	return int32(binary.BigEndian.Uint32(buf[:]))
}

func (r *Reader) getInt64() int64 {
	var buf [8]byte
	r.read(buf[:])
	return int64(binary.BigEndian.Uint64(buf[:]))
}

func (r *Reader) getName() string {
	n := r.getUint16()
	if n == 0 || r.err != nil {
		return ""
	}
	buf := make([]byte, n)
	r.read(buf)
	return string(buf)
}

// ReadFile reads a root-level compound tag (as written by Writer's
// BeginCompound("") / EndCompound pair) and returns its contents.
func ReadFile(r io.Reader) (Compound, error) {
	nr := NewReader(r)
	tagType := nr.getByte()
	if nr.err != nil {
		return nil, nr.err
	}
	if tagType != TagCompound {
		return nil, fmt.Errorf("nbt: root tag is type %d, want compound", tagType)
	}
	nr.getName()
	c := nr.readCompoundBody()
	if nr.err != nil {
		return nil, nr.err
	}
	return c, nil
}

func (r *Reader) readCompoundBody() Compound {
	c := make(Compound)
	for {
		tagType := r.getByte()
		if r.err != nil {
			return c
		}
		if tagType == TagEnd {
			return c
		}
		name := r.getName()
		c[name] = r.readValue(tagType)
		if r.err != nil {
			return c
		}
	}
}

func (r *Reader) readValue(tagType byte) any {
	switch tagType {
	case TagByte:
		return r.getByte()
	case TagShort:
		return int16(r.getUint16())
	case TagInt:
		return r.getInt32()
	case TagLong:
		return r.getInt64()
	case TagFloat:
		return math.Float32frombits(uint32(r.getInt32()))
	case TagDouble:
		return math.Float64frombits(uint64(r.getInt64()))
	case TagByteArray:
		n := r.getInt32()
		if r.err != nil || n < 0 {
			return nil
		}
		buf := make([]byte, n)
		r.read(buf)
		return buf
	case TagString:
		return r.getStringValue()
	case TagList:
		return r.readListBody()
	case TagCompound:
		return r.readCompoundBody()
	case TagIntArray:
		n := r.getInt32()
		if r.err != nil || n < 0 {
			return nil
		}
		arr := make([]int32, n)
		for i := range arr {
			arr[i] = r.getInt32()
		}
		return arr
	default:
		if r.err == nil {
			r.err = fmt.Errorf("nbt: unknown tag type %d", tagType)
		}
		return nil
	}
}

func (r *Reader) getStringValue() string {
	n := r.getUint16()
	if r.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	r.read(buf)
	return string(buf)
}

func (r *Reader) readListBody() []any {
	elemType := r.getByte()
	count := r.getInt32()
	if r.err != nil || count < 0 {
		return nil
	}
	list := make([]any, 0, count)
	for i := int32(0); i < count; i++ {
		list = append(list, r.readValue(elemType))
		if r.err != nil {
			return list
		}
	}
	return list
}
