package file

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/wmjtyd/libstock/pkg/util"
)

// Reader yields the frames of one dated file in write order.
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// Open opens filename's file for the day lying dayOffset days before the
// clock's today.
func Open(dataDir, filename string, dayOffset int, clock util.Clock) (*Reader, error) {
	if err := checkFilename(filename); err != nil {
		return nil, err
	}
	return OpenPath(Path(dataDir, filename, DayOffset(clock.Now(), dayOffset)))
}

func OpenPath(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, r: bufio.NewReader(f)}, nil
}

// Next returns the next record. It returns io.EOF after the last complete
// frame and io.ErrUnexpectedEOF when the file ends inside a frame.
func (r *Reader) Next() ([]byte, error) {
	var size [frameHeaderSize]byte
	if _, err := io.ReadFull(r.r, size[:]); err != nil {
		return nil, err
	}

	data := make([]byte, binary.BigEndian.Uint16(size[:]))
	if _, err := io.ReadFull(r.r, data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return data, nil
}

// Each calls fn for every remaining frame and stops at the first error.
func (r *Reader) Each(fn func([]byte) error) error {
	for {
		data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(data); err != nil {
			return err
		}
	}
}

func (r *Reader) Close() error { return r.f.Close() }
