package tuple

import "bytes"

// Compare defines the total binary order over tuples used by the store
// for deterministic tie-breaking: the
// lexicographic order of each tuple's serialized byte stream, with a
// shorter tuple ordered before a longer one of which it is a prefix.
// bytes.Compare already has exactly this prefix behavior, so Compare
// is just encode-then-compare.
func Compare(a, b Tuple) int {
	return bytes.Compare(a.Encode(), b.Encode())
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Tuple) bool {
	return Compare(a, b) < 0
}

// Equal reports whether a and b have byte-identical encodings. Two
// tuples with Equal-true encodings are the "duplicate" tuples that
// Store.Add de-duplicates.
func Equal(a, b Tuple) bool {
	return Compare(a, b) == 0
}
