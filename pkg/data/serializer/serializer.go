// Package serializer defines the fixed-width field contract and the ordered
// composition used by every record structure.
//
// Failures come through two channels. Domain errors (the bytes or the value
// were wrong) are returned as they are produced by the field. Transport
// errors (short read, failed write) are wrapped in *IOError, so callers can
// tell them apart with IsIO.
package serializer

import (
	"errors"
	"fmt"
	"io"
)

// Field is a value that always encodes to exactly Size() bytes.
type Field interface {
	Size() int
	// MarshalTo writes the encoding into dst, which is exactly Size() long.
	MarshalTo(dst []byte) error
}

// FieldUnmarshaler is a Field that can be read back.
type FieldUnmarshaler interface {
	Field
	// UnmarshalFrom decodes src, which is exactly Size() long.
	UnmarshalFrom(src []byte) error
}

// ErrSizeMismatch reports a field whose declared width differs from the
// buffer it was handed. It is a programming error, not a data error.
var ErrSizeMismatch = errors.New("serializer: field size mismatch")

// IOError marks a failure of the underlying reader or writer.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("serializer: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// IsIO reports whether err came from the transport rather than the data.
func IsIO(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}

// CheckSize guards MarshalTo/UnmarshalFrom implementations.
func CheckSize(f Field, buf []byte) error {
	if len(buf) != f.Size() {
		return fmt.Errorf("%w: %T wants %d bytes, got %d", ErrSizeMismatch, f, f.Size(), len(buf))
	}
	return nil
}

// Marshal returns the encoding of f.
func Marshal(f Field) ([]byte, error) {
	buf := make([]byte, f.Size())
	if err := f.MarshalTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteField encodes f and writes all of it to w.
func WriteField(w io.Writer, f Field) error {
	buf, err := Marshal(f)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return wrapIO("write", err)
	}
	return nil
}

// ReadField reads exactly f.Size() bytes from r and decodes them into f.
func ReadField(r io.Reader, f FieldUnmarshaler) error {
	buf := make([]byte, f.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return wrapIO("read", err)
	}
	return f.UnmarshalFrom(buf)
}

// WriteRaw and ReadRaw move bytes that are not a Field (length prefixes).
func WriteRaw(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return wrapIO("write", err)
}

func ReadRaw(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return wrapIO("read", err)
}
