package serializer

import (
	"bytes"
	"fmt"
	"io"
)

// Segment is one step of a record layout. Fixed-width fields are wrapped
// with Fixed; variable blocks implement Segment directly.
type Segment interface {
	// Len is the number of bytes Encode will write for the current value.
	Len() int
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

type fixed struct {
	f FieldUnmarshaler
}

// Fixed binds f to its declared width. It panics when the field reports a
// different size, so a layout can never disagree with its fields.
func Fixed(width int, f FieldUnmarshaler) Segment {
	if f.Size() != width {
		panic(fmt.Sprintf("serializer: %T declared %d bytes, reports %d", f, width, f.Size()))
	}
	return fixed{f: f}
}

func (s fixed) Len() int                 { return s.f.Size() }
func (s fixed) Encode(w io.Writer) error { return WriteField(w, s.f) }
func (s fixed) Decode(r io.Reader) error { return ReadField(r, s.f) }

// Layout is an ordered list of segments. Encoding writes them in order and
// decoding reads them back in the same order; both stop at the first error.
type Layout []Segment

func (l Layout) Len() int {
	n := 0
	for _, s := range l {
		n += s.Len()
	}
	return n
}

func (l Layout) Serialize(w io.Writer) error {
	for i, s := range l {
		if err := s.Encode(w); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

func (l Layout) Deserialize(r io.Reader) error {
	for i, s := range l {
		if err := s.Decode(r); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// Bytes serializes the layout into a buffer sized up front.
func (l Layout) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(l.Len())
	if err := l.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
