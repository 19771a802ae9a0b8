package tuple

import (
	"errors"
	"testing"
)

func TestParseRoundTripsTextToBinary(t *testing.T) {
	// ('p1', int 7, float 3.14) decodes to
	// Int(Some(7)), Float(Some(3.14)) and re-encodes identically.
	tp, err := Parse("('p1', int 7, float 3.14)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tp.Name() != "p1" {
		t.Fatalf("name = %q, want p1", tp.Name())
	}
	if tp.Len() != 2 {
		t.Fatalf("len = %d, want 2", tp.Len())
	}
	if v, ok := tp.Field(0).IntValue(); !ok || v != 7 {
		t.Fatalf("field 0 = %v,%v want 7,true", v, ok)
	}
	if v, ok := tp.Field(1).FloatValue(); !ok || v != 3.14 {
		t.Fatalf("field 1 = %v,%v want 3.14,true", v, ok)
	}

	encoded := tp.Encode()
	// name "p1" (2) + zero terminator (1) + field count (4) + two
	// 5-byte field records = 3 + 4 + 10 = 17 bytes.
	if len(encoded) != 17 {
		t.Fatalf("encoded length = %d, want 17", len(encoded))
	}

	decoded, n, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("decode consumed %d, want %d", n, len(encoded))
	}
	if !Equal(decoded, tp) {
		t.Fatalf("decoded tuple %v != original %v", decoded, tp)
	}
}

func TestParseWildcardsAndUndefined(t *testing.T) {
	tp, err := Parse("('k', int ?, float ?, undefined, ?)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tp.Len() != 4 {
		t.Fatalf("len = %d, want 4", tp.Len())
	}
	if tp.Field(0).Kind() != KindInt || !tp.Field(0).IsAny() {
		t.Fatal("field 0 should be int any")
	}
	if tp.Field(1).Kind() != KindFloat || !tp.Field(1).IsAny() {
		t.Fatal("field 1 should be float any")
	}
	if tp.Field(2).Kind() != KindUndefined {
		t.Fatal("field 2 should be undefined")
	}
	if tp.Field(3).Kind() != KindUndefined {
		t.Fatal("field 3 (bare ?) should be undefined")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty input", "", ErrNameError},
		{"missing parens", "'x', int 1", ErrInvalidFormat},
		{"missing space", "('x', int7)", ErrInvalidFormat},
		{"unknown type", "('x', byte 1)", ErrUnsupportedType},
		{"bad number", "('x', int abc)", ErrValueParseError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.in)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, c.want) {
				t.Fatalf("error %v does not wrap %v", err, c.want)
			}
		})
	}
}

func TestParseCaseVariantsOfUndefined(t *testing.T) {
	for _, kw := range []string{"undefined", "UNDEFINED", "undef", "UNDEF"} {
		tp, err := Parse("('x', " + kw + ")")
		if err != nil {
			t.Fatalf("%s: %v", kw, err)
		}
		if tp.Field(0).Kind() != KindUndefined {
			t.Fatalf("%s: expected undefined field", kw)
		}
	}
}
