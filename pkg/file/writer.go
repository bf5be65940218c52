package file

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/wmjtyd/libstock/pkg/flag"
	"github.com/wmjtyd/libstock/pkg/metrics"
	"github.com/wmjtyd/libstock/pkg/util"
)

// DataEntry is one record bound for the file named by Filename.
type DataEntry struct {
	Filename string
	Data     []byte
}

// DataWriter appends queued entries to their dated file from a single
// goroutine. A failed write is logged and the entry dropped.
type DataWriter struct {
	dir     string
	clock   util.Clock
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	entries chan DataEntry
	// mu orders admission in Add against halt; pending counts admitted
	// Adds that have not returned yet
	mu      sync.Mutex
	running *flag.BinaryFlag
	pending sync.WaitGroup
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	// open handles for the current day, keyed by path
	day   string
	files map[string]*os.File
}

type WriterOption func(*DataWriter)

func WithMetrics(m *metrics.Metrics) WriterOption {
	return func(w *DataWriter) { w.metrics = m }
}

func WithClock(c util.Clock) WriterOption {
	return func(w *DataWriter) { w.clock = c }
}

// NewDataWriter queues up to queueSize entries before Add blocks.
func NewDataWriter(dir string, queueSize int, logger *zap.SugaredLogger, opts ...WriterOption) *DataWriter {
	w := &DataWriter{
		dir:     dir,
		clock:   util.RealClock{},
		logger:  logger,
		entries: make(chan DataEntry, queueSize),
		running: flag.New(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		files:   make(map[string]*os.File),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Add queues e, blocking while the queue is full. An entry for which Add
// returns nil is written before Start returns.
func (w *DataWriter) Add(ctx context.Context, e DataEntry) error {
	if err := checkFilename(e.Filename); err != nil {
		w.metrics.Rejected()
		return err
	}
	if len(e.Data) > MaxFrameSize {
		w.metrics.Rejected()
		return fmt.Errorf("%w: %d", ErrEntryTooLarge, len(e.Data))
	}
	w.mu.Lock()
	if !w.running.Running() {
		w.mu.Unlock()
		return ErrWriterStopped
	}
	w.pending.Add(1)
	w.mu.Unlock()
	defer w.pending.Done()

	select {
	case w.entries <- e:
		return nil
	case <-w.stop:
		return ErrWriterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the write loop until ctx is cancelled or Stop is called. Entries
// still queued at that point are written before Start returns.
func (w *DataWriter) Start(ctx context.Context) {
	defer close(w.done)
	defer w.closeFiles()

	w.logger.Infow("writer_started", "dir", w.dir)
	for {
		select {
		case e := <-w.entries:
			w.write(e)
		case <-ctx.Done():
			w.halt()
			w.settle()
			w.logger.Infow("writer_stopped", "reason", ctx.Err())
			return
		case <-w.stop:
			w.settle()
			w.logger.Infow("writer_stopped", "reason", "stop")
			return
		}
	}
}

// Stop ends the loop and waits for it to finish. It must only be called once
// Start is running.
func (w *DataWriter) Stop() {
	w.halt()
	<-w.done
}

func (w *DataWriter) halt() {
	w.once.Do(func() {
		w.mu.Lock()
		w.running.Stop()
		w.mu.Unlock()
		close(w.stop)
	})
}

// settle waits out in-flight Adds, then writes whatever they queued.
func (w *DataWriter) settle() {
	w.pending.Wait()
	w.drain()
}

func (w *DataWriter) drain() {
	for {
		select {
		case e := <-w.entries:
			w.write(e)
		default:
			return
		}
	}
}

func (w *DataWriter) write(e DataEntry) {
	f, err := w.file(e.Filename)
	if err != nil {
		w.metrics.WriteFailed()
		w.logger.Errorw("file_open_failed", "filename", e.Filename, "err", err)
		return
	}

	frame := make([]byte, frameHeaderSize+len(e.Data))
	binary.BigEndian.PutUint16(frame, uint16(len(e.Data)))
	copy(frame[frameHeaderSize:], e.Data)

	if _, err := f.Write(frame); err != nil {
		w.metrics.WriteFailed()
		w.logger.Errorw("frame_write_failed", "filename", e.Filename, "size", len(e.Data), "err", err)
		return
	}
	w.metrics.FrameWritten(len(frame))
}

func (w *DataWriter) file(name string) (*os.File, error) {
	now := w.clock.Now()
	if day := util.DayStamp(now); day != w.day {
		w.closeFiles()
		w.day = day
	}

	path := Path(w.dir, name, now)
	if f, ok := w.files[path]; ok {
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w.files[path] = f
	return f, nil
}

func (w *DataWriter) closeFiles() {
	for path, f := range w.files {
		if err := f.Close(); err != nil {
			w.logger.Warnw("file_close_failed", "path", path, "err", err)
		}
		delete(w.files, path)
	}
}
