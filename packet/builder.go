package packet

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/julianuziemblo/tuple-space/tuple"
)

// Builder assembles a Packet from parts supplied in any order, filling
// in defaults for whatever is left unset.
type Builder struct {
	opcode   Opcode
	flags    Flags
	num      uint32
	numSet   bool
	tuple    *tuple.Tuple
	opSet    bool
	flagsSet bool
}

// NewBuilder returns a Builder with no fields set yet.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Opcode(o Opcode) *Builder {
	b.opcode = o
	b.opSet = true
	return b
}

func (b *Builder) Flags(f Flags) *Builder {
	b.flags = f
	b.flagsSet = true
	return b
}

func (b *Builder) Num(n uint32) *Builder {
	b.num = n % MaxNum
	b.numSet = true
	return b
}

func (b *Builder) Tuple(t tuple.Tuple) *Builder {
	b.tuple = &t
	return b
}

// Build computes the checksum and returns the finished Packet. Unset
// fields default to opcode=EMPTY, flags=0, a fresh random 24-bit num,
// and no tuple.
func (b *Builder) Build() (Packet, error) {
	p := Packet{Opcode: EMPTY}
	if b.opSet {
		p.Opcode = b.opcode
	}
	if b.flagsSet {
		p.Flags = b.flags
	}
	if b.numSet {
		p.Num = b.num
	} else {
		n, err := randomNum()
		if err != nil {
			return Packet{}, err
		}
		p.Num = n
	}
	p.Tuple = b.tuple

	var body []byte
	if p.Tuple != nil {
		body = p.Tuple.Encode()
	}
	p.checksum = checksum(p.Opcode, p.Flags, p.Num, body)
	return p, nil
}

func randomNum() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]) % MaxNum, nil
}
