package packet

import (
	"fmt"

	"github.com/julianuziemblo/tuple-space/tuple"
)

// MinLength is the smallest legal packet: a 4-byte header plus the
// trailing checksum byte, with no tuple body.
const MinLength = 5

// Serialize emits the wire layout:
//
//	byte 0      (opcode << 5) | (flags & 0x1F)
//	bytes 1..3  num, 24-bit big-endian
//	bytes 4..N-2 serialized tuple, present iff the packet carries one
//	byte  N-1   checksum
func Serialize(p Packet) []byte {
	var body []byte
	if p.Tuple != nil {
		body = p.Tuple.Encode()
	}
	buf := make([]byte, 0, 4+len(body)+1)
	buf = append(buf, byte(p.Opcode)<<5|byte(p.Flags)&0x1F)
	buf = append(buf, byte(p.Num>>16), byte(p.Num>>8), byte(p.Num))
	buf = append(buf, body...)
	buf = append(buf, checksum(p.Opcode, p.Flags, p.Num, body))
	return buf
}

// Deserialize decodes buf into a Packet. It fails with ErrInvalidLength
// when buf is shorter than MinLength, and with ErrTupleParseError when
// a present tuple body does not decode. The returned Packet carries the
// checksum byte actually found on the wire; callers that want
// corruption detection compare it against Recompute.
func Deserialize(buf []byte) (Packet, error) {
	if len(buf) < MinLength {
		return Packet{}, fmt.Errorf("packet: %w: %d bytes, need at least %d", ErrInvalidLength, len(buf), MinLength)
	}

	header := buf[0]
	p := Packet{
		Opcode: Opcode(header >> 5),
		Flags:  Flags(header & 0x1F),
		Num:    uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
	}

	bodyLen := len(buf) - 4 - 1
	body := buf[4 : 4+bodyLen]
	p.checksum = buf[len(buf)-1]

	if bodyLen > 0 {
		t, n, err := tuple.Decode(body)
		if err != nil {
			return Packet{}, fmt.Errorf("packet: %w: %w", ErrTupleParseError, err)
		}
		if n != bodyLen {
			return Packet{}, fmt.Errorf("packet: %w: tuple body left %d trailing bytes", ErrInvalidLength, bodyLen-n)
		}
		p.Tuple = &t
	}

	return p, nil
}

// Recompute returns the checksum Serialize would produce for p's
// current Opcode, Flags, Num and Tuple, for comparison against a
// received Checksum() to detect corruption.
func Recompute(p Packet) byte {
	var body []byte
	if p.Tuple != nil {
		body = p.Tuple.Encode()
	}
	return checksum(p.Opcode, p.Flags, p.Num, body)
}
