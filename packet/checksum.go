package packet

import "math/bits"

// checksum computes the 8-bit integrity byte: the sum, modulo 256, of the number of set bits across opcode, flags,
// num, and every byte of the serialized tuple body. It is a bit-error
// detector, not a MAC.
func checksum(opcode Opcode, flags Flags, num uint32, body []byte) byte {
	sum := bits.OnesCount8(byte(opcode)) + bits.OnesCount8(byte(flags))
	sum += bits.OnesCount32(num & (MaxNum - 1))
	for _, b := range body {
		sum += bits.OnesCount8(b)
	}
	return byte(sum % 256)
}
