package tuple

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag byte layout (MSB .. LSB):
//
//	bit 7      occupied flag (1 = value follows)
//	bits 6..4  type tag (000 Undefined, 001 Int, 010 Float)
//	bits 3..0  zero
const (
	tagOccupiedBit = 0x80
	tagKindShift   = 4
	tagKindMask    = 0x07 << tagKindShift
)

var kindToTag = map[Kind]byte{
	KindUndefined: 0x00,
	KindInt:       0x01,
	KindFloat:     0x02,
}

var tagToKind = map[byte]Kind{
	0x00: KindUndefined,
	0x01: KindInt,
	0x02: KindFloat,
}

func encodeTag(f Field) byte {
	tag := kindToTag[f.kind] << tagKindShift
	if !f.any {
		tag |= tagOccupiedBit
	}
	return tag
}

func decodeTag(b byte) (kind Kind, occupied bool, ok bool) {
	kind, ok = tagToKind[(b&tagKindMask)>>tagKindShift]
	occupied = b&tagOccupiedBit != 0
	return
}

// Encode serializes t into its binary form: name
// bytes, a zero terminator, a big-endian uint32 field count, then one
// tag-byte[+4-byte payload] record per field.
func (t Tuple) Encode() []byte {
	buf := make([]byte, 0, len(t.name)+1+4+len(t.fields)*5)
	buf = append(buf, []byte(t.name)...)
	buf = append(buf, 0)

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(t.fields)))
	buf = append(buf, countBuf[:]...)

	for _, f := range t.fields {
		buf = append(buf, encodeTag(f))
		if f.any || f.kind == KindUndefined {
			continue
		}
		var payload [4]byte
		switch f.kind {
		case KindInt:
			binary.BigEndian.PutUint32(payload[:], uint32(f.intVal))
		case KindFloat:
			binary.BigEndian.PutUint32(payload[:], math.Float32bits(f.floatVal))
		}
		buf = append(buf, payload[:]...)
	}
	return buf
}

// Decode deserializes a Tuple from its binary form, returning the
// number of bytes consumed. It fails with ErrNameError when the name
// is not zero-terminated within bounds, and with ErrInvalidLength when
// the declared field count requires more bytes than are present.
func Decode(buf []byte) (Tuple, int, error) {
	nameEnd := -1
	for i, b := range buf {
		if b == 0 {
			nameEnd = i
			break
		}
	}
	if nameEnd < 0 {
		return Tuple{}, 0, parseErr(ErrNameError, len(buf), string(buf))
	}
	if nameEnd > MaxNameLen {
		return Tuple{}, 0, parseErr(ErrNameError, nameEnd, string(buf[:nameEnd]))
	}
	name := string(buf[:nameEnd])
	pos := nameEnd + 1

	if pos+4 > len(buf) {
		return Tuple{}, 0, fmt.Errorf("tuple: %w: truncated field count", ErrInvalidLength)
	}
	count := binary.BigEndian.Uint32(buf[pos : pos+4])
	pos += 4
	if count > MaxFields {
		return Tuple{}, 0, fmt.Errorf("tuple: %w: field count %d exceeds max %d", ErrInvalidLength, count, MaxFields)
	}

	fields := make([]Field, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos >= len(buf) {
			return Tuple{}, 0, fmt.Errorf("tuple: %w: missing tag byte for field %d", ErrInvalidLength, i)
		}
		kind, occupied, ok := decodeTag(buf[pos])
		if !ok {
			return Tuple{}, 0, fmt.Errorf("tuple: %w: unknown type tag 0x%02x", ErrInvalidLength, buf[pos])
		}
		pos++

		if kind == KindUndefined || !occupied {
			switch kind {
			case KindUndefined:
				fields = append(fields, Undefined())
			case KindInt:
				fields = append(fields, IntAny())
			case KindFloat:
				fields = append(fields, FloatAny())
			}
			continue
		}

		if pos+4 > len(buf) {
			return Tuple{}, 0, fmt.Errorf("tuple: %w: truncated payload for field %d", ErrInvalidLength, i)
		}
		raw := binary.BigEndian.Uint32(buf[pos : pos+4])
		pos += 4
		switch kind {
		case KindInt:
			fields = append(fields, Int(int32(raw)))
		case KindFloat:
			fields = append(fields, Float(math.Float32frombits(raw)))
		}
	}

	t, err := New(name, fields...)
	if err != nil {
		return Tuple{}, 0, err
	}
	return t, pos, nil
}
