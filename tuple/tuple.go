package tuple

import "fmt"

const (
	// MaxNameLen is the maximum number of bytes a tuple name may
	// occupy on the wire, not counting the terminating zero byte.
	MaxNameLen = 31
	// MaxFields is the maximum number of fields a tuple may carry.
	MaxFields = 255
)

// Tuple is a named, ordered sequence of Fields. A Tuple is immutable
// once constructed; callers that want a modified tuple build a new one
// with New.
type Tuple struct {
	name   string
	fields []Field
}

// New validates name and fields against the tuple invariants and
// returns the resulting immutable Tuple.
func New(name string, fields ...Field) (Tuple, error) {
	if len(name) > MaxNameLen {
		return Tuple{}, parseErr(ErrNameError, 0, name)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return Tuple{}, parseErr(ErrNameError, i, name)
		}
	}
	if len(fields) > MaxFields {
		return Tuple{}, fmt.Errorf("tuple: %w: %d fields exceeds max %d", ErrInvalidFormat, len(fields), MaxFields)
	}
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return Tuple{name: name, fields: cp}, nil
}

// Name returns the tuple's name.
func (t Tuple) Name() string { return t.name }

// Fields returns a copy of the tuple's field sequence. Callers may not
// mutate a Tuple in place, so returning the backing slice directly
// would be unsafe to expose.
func (t Tuple) Fields() []Field {
	cp := make([]Field, len(t.fields))
	copy(cp, t.fields)
	return cp
}

// Len returns the number of fields in the tuple.
func (t Tuple) Len() int { return len(t.fields) }

// Field returns the field at position i.
func (t Tuple) Field(i int) Field { return t.fields[i] }

func (t Tuple) String() string {
	s := "('" + t.name + "'"
	for _, f := range t.fields {
		s += ", " + fieldString(f)
	}
	return s + ")"
}

func fieldString(f Field) string {
	switch f.kind {
	case KindUndefined:
		return "undefined"
	case KindInt:
		if f.any {
			return "int ?"
		}
		return fmt.Sprintf("int %d", f.intVal)
	case KindFloat:
		if f.any {
			return "float ?"
		}
		return fmt.Sprintf("float %g", f.floatVal)
	default:
		return "?"
	}
}
