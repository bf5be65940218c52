package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"

	"github.com/wmjtyd/libstock/pkg/data"
	"github.com/wmjtyd/libstock/pkg/market"
)

func openStore(t *testing.T, path string) *RecordStore {
	t.Helper()
	s, err := NewRecordStore(path)
	if err != nil {
		t.Fatalf("NewRecordStore: %v", err)
	}
	return s
}

func bbo(t *testing.T, pair string, ts int64) []byte {
	t.Helper()
	raw, err := data.EncodeBBO(&market.BboMsg{
		Exchange:        "binance",
		MarketType:      market.Spot,
		Pair:            pair,
		MsgType:         market.MsgBBO,
		Timestamp:       ts,
		AskPrice:        100.5,
		AskQuantityBase: 1,
		BidPrice:        100.25,
		BidQuantityBase: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestKeyRoundTrip(t *testing.T) {
	k := Key{Kind: data.KindOrderbook, Symbol: 4, Timestamp: 1659755147000, Seq: 42}
	b := k.bytes()
	if len(b) != recordKeyLen {
		t.Fatalf("key length = %d, want %d", len(b), recordKeyLen)
	}
	got, err := parseKey(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != k {
		t.Errorf("got %+v, want %+v", got, k)
	}

	if _, err := parseKey(b[:len(b)-1]); !errors.Is(err, ErrBadKey) {
		t.Errorf("short key: got %v, want ErrBadKey", err)
	}
}

func TestKeyUpperBound(t *testing.T) {
	tests := []struct {
		in, want []byte
	}{
		{[]byte("r:"), []byte("r;")},
		{[]byte{1, 0xff}, []byte{2}},
		{[]byte{0xff, 0xff}, nil},
	}
	for _, tt := range tests {
		if got := keyUpperBound(tt.in); string(got) != string(tt.want) {
			t.Errorf("keyUpperBound(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecordStore_PutRange(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "db"))
	defer s.Close()

	for _, ts := range []int64{3000, 1000, 2000} {
		if _, err := s.Put(bbo(t, "BTC/USDT", ts)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if _, err := s.Put(bbo(t, "ETH/USDT", 1500)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		from, to uint64
		want     []uint64
	}{
		{"all", 0, 0, []uint64{1000, 2000, 3000}},
		{"window", 1000, 3000, []uint64{1000, 2000}},
		{"empty", 4000, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint64
			err := s.Range(data.KindBBO, 1, tt.from, tt.to, func(k Key, raw []byte) error {
				msg, err := data.DecodeBBO(raw)
				if err != nil {
					return err
				}
				if uint64(msg.Timestamp) != k.Timestamp {
					t.Errorf("key ts %d, record ts %d", k.Timestamp, msg.Timestamp)
				}
				got = append(got, k.Timestamp)
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRecordStore_SameTimestamp(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "db"))
	defer s.Close()

	k1, err := s.Put(bbo(t, "BTC/USDT", 1000))
	if err != nil {
		t.Fatal(err)
	}
	k2, err := s.Put(bbo(t, "BTC/USDT", 1000))
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Fatalf("duplicate keys %+v", k1)
	}
	got, err := s.Latest(data.KindBBO, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want 2", len(got))
	}
}

func TestRecordStore_SeqSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	s := openStore(t, path)
	k1, err := s.Put(bbo(t, "BTC/USDT", 1000))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openStore(t, path)
	defer s.Close()
	k2, err := s.Put(bbo(t, "BTC/USDT", 1000))
	if err != nil {
		t.Fatal(err)
	}
	if k2.Seq != k1.Seq+1 {
		t.Errorf("seq after reopen = %d, want %d", k2.Seq, k1.Seq+1)
	}
	if _, err := s.Get(k1); err != nil {
		t.Errorf("Get(k1): %v", err)
	}
}

func TestRecordStore_LatestAndDelete(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "db"))
	defer s.Close()

	for ts := int64(1); ts <= 5; ts++ {
		if _, err := s.Put(bbo(t, "BTC/USDT", ts*1000)); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := s.Latest(data.KindBBO, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 2 {
		t.Fatalf("got %d records, want 2", len(latest))
	}
	msg, err := data.DecodeBBO(latest[0])
	if err != nil {
		t.Fatal(err)
	}
	if msg.Timestamp != 5000 {
		t.Errorf("newest ts = %d, want 5000", msg.Timestamp)
	}

	if err := s.DeleteBefore(data.KindBBO, 1, 3000); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := s.Range(data.KindBBO, 1, 0, 0, func(Key, []byte) error { n++; return nil }); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("after DeleteBefore got %d records, want 3", n)
	}
}

func TestRecordStore_PutInvalid(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "db"))
	defer s.Close()

	if _, err := s.Put([]byte{1, 2, 3}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("short record: got %v, want ErrUnknownKind", err)
	}
	if _, err := s.Get(Key{Kind: data.KindBBO, Symbol: 1}); !errors.Is(err, pebble.ErrNotFound) {
		t.Errorf("missing key: got %v, want pebble.ErrNotFound", err)
	}
}
