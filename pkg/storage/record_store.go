package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/wmjtyd/libstock/pkg/data"
)

var ErrUnknownKind = errors.New("storage: record kind not recognised")

// RecordStore persists encoded records in Pebble, one key per record.
type RecordStore struct {
	db *pebble.DB

	mu  sync.Mutex
	seq uint64
}

func NewRecordStore(path string) (*RecordStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	s := &RecordStore{db: db}
	if s.seq, err = s.loadSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RecordStore) Close() error { return s.db.Close() }

func (s *RecordStore) loadSeq() (uint64, error) {
	val, closer, err := s.db.Get([]byte(keySeq))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load seq: %w", err)
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, fmt.Errorf("storage: seq value has %d bytes", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// Put stores raw under a key derived from its header. The record body is
// not validated.
func (s *RecordStore) Put(raw []byte) (Key, error) {
	kind := data.KindOf(raw)
	if kind == data.KindUnknown {
		return Key{}, ErrUnknownKind
	}
	h, err := data.PeekHeader(raw)
	if err != nil {
		return Key{}, fmt.Errorf("storage: read header: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{
		Kind:      kind,
		Symbol:    h.Symbol.Symbol,
		Timestamp: uint64(h.ExchangeTimestamp),
		Seq:       s.seq + 1,
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key.bytes(), raw, nil); err != nil {
		return Key{}, err
	}
	if err := b.Set([]byte(keySeq), binary.BigEndian.AppendUint64(nil, key.Seq), nil); err != nil {
		return Key{}, err
	}
	if err := b.Commit(pebble.NoSync); err != nil {
		return Key{}, fmt.Errorf("failed to save record: %w", err)
	}
	s.seq = key.Seq
	return key, nil
}

func (s *RecordStore) Get(k Key) ([]byte, error) {
	val, closer, err := s.db.Get(k.bytes())
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// Range calls fn in time order for every record of kind and symbol whose
// exchange timestamp is in [from, to). to == 0 means no upper bound. The
// value passed to fn is only valid during the call.
func (s *RecordStore) Range(kind data.Kind, symbol uint16, from, to uint64, fn func(Key, []byte) error) error {
	opts := &pebble.IterOptions{
		LowerBound: timeBound(kind, symbol, from),
		UpperBound: keyUpperBound(seriesPrefix(kind, symbol)),
	}
	if to != 0 {
		opts.UpperBound = timeBound(kind, symbol, to)
	}

	iter, err := s.db.NewIter(opts)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		k, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(k, iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Latest returns up to limit records of the series, newest first.
func (s *RecordStore) Latest(kind data.Kind, symbol uint16, limit int) ([][]byte, error) {
	prefix := seriesPrefix(kind, symbol)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out [][]byte
	for iter.Last(); iter.Valid() && len(out) < limit; iter.Prev() {
		out = append(out, append([]byte(nil), iter.Value()...))
	}
	return out, iter.Error()
}

// DeleteBefore drops records of the series older than ts.
func (s *RecordStore) DeleteBefore(kind data.Kind, symbol uint16, ts uint64) error {
	return s.db.DeleteRange(seriesPrefix(kind, symbol), timeBound(kind, symbol, ts), pebble.Sync)
}
