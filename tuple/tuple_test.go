package tuple

import "testing"

func TestNewValidatesNameLength(t *testing.T) {
	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := New(string(long)); err == nil {
		t.Fatal("expected error for over-long name")
	}
	if _, err := New(""); err != nil {
		t.Fatalf("empty name should be legal, got %v", err)
	}
}

func TestNewRejectsZeroByteInName(t *testing.T) {
	if _, err := New("a\x00b"); err == nil {
		t.Fatal("expected error for embedded zero byte")
	}
}

func TestNewRejectsTooManyFields(t *testing.T) {
	fields := make([]Field, MaxFields+1)
	for i := range fields {
		fields[i] = Int(int32(i))
	}
	if _, err := New("x", fields...); err == nil {
		t.Fatal("expected error for too many fields")
	}
}

func TestFieldAccessorsOnWrongKindReturnFalse(t *testing.T) {
	f := Float(1.5)
	if _, ok := f.IntValue(); ok {
		t.Fatal("IntValue should fail on a Float field")
	}
	if _, ok := IntAny().IntValue(); ok {
		t.Fatal("IntValue should fail on a wildcard Int field")
	}
}
