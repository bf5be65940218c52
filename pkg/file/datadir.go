// Package file stores encoded records in dated, length-prefixed files:
//
//	<dataDir>/<YYYYMMDD>/<filename><YYYYMMDD>.bin
//
// Each frame is a big-endian u16 byte length followed by the record.
package file

import (
	"errors"
	"math"
	"path/filepath"
	"time"

	"github.com/wmjtyd/libstock/pkg/util"
)

// MaxFrameSize is the largest record a frame prefix can describe.
const MaxFrameSize = math.MaxUint16

const frameHeaderSize = 2

var (
	ErrEntryTooLarge = errors.New("file: entry exceeds 65535 bytes")
	ErrEmptyFilename = errors.New("file: empty filename")
	ErrInvalidName   = errors.New("file: filename must not contain a path separator")
	ErrWriterStopped = errors.New("file: writer stopped")
)

// Path returns the file that holds filename's records for day.
func Path(dataDir, filename string, day time.Time) string {
	stamp := util.DayStamp(day)
	return filepath.Join(dataDir, stamp, filename+stamp+".bin")
}

// DayOffset is the day that lies offset days before now; 0 is today.
func DayOffset(now time.Time, offset int) time.Time {
	return now.AddDate(0, 0, -offset)
}

func checkFilename(name string) error {
	switch {
	case name == "":
		return ErrEmptyFilename
	case filepath.Base(name) != name:
		return ErrInvalidName
	}
	return nil
}
