package tuple

import (
	"bytes"
	"testing"
)

func TestCompareMatchesBytewiseEncodingOrder(t *testing.T) {
	// Compare is defined as lexicographic comparison of the encoded
	// byte streams, so it must agree with bytes.Compare
	// applied directly to Encode() output.
	a := mustNew(t, "k", Int(1))
	b := mustNew(t, "k", Int(1), Int(2))
	want := bytes.Compare(a.Encode(), b.Encode())
	if got := Compare(a, b); (got < 0) != (want < 0) || (got == 0) != (want == 0) {
		t.Fatalf("Compare = %d, want same sign as bytes.Compare = %d", got, want)
	}
}

func TestCompareDeterministic(t *testing.T) {
	a := mustNew(t, "k", Int(1))
	b := mustNew(t, "k", Int(2))
	if Compare(a, b) >= 0 {
		t.Fatal("Int(1) should sort before Int(2) under the same name")
	}
	if Compare(b, a) <= 0 {
		t.Fatal("comparison should be antisymmetric")
	}
}

func TestEqualTuplesCompareEqual(t *testing.T) {
	a := mustNew(t, "k", Int(7))
	b := mustNew(t, "k", Int(7))
	if !Equal(a, b) {
		t.Fatal("identically-encoded tuples should be Equal")
	}
}
