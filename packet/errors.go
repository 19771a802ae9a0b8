package packet

import "fmt"

// Sentinel errors for packet decoding.
var (
	ErrInvalidLength    = fmt.Errorf("InvalidLength")
	ErrTupleParseError  = fmt.Errorf("TupleParseError")
	ErrChecksumMismatch = fmt.Errorf("ChecksumMismatch")
)
