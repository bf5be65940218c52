package data

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/wmjtyd/libstock/pkg/market"
)

func lv(price, base float64) market.Order {
	return market.Order{Price: price, QuantityBase: base, QuantityQuote: price * base}
}

func TestGetOrders(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name     string
		side     Side
		old      []market.Order
		new      []market.Order
		wantDiff []market.Order
		// knownGap marks inputs RestoreOrders cannot rebuild from the diff.
		knownGap bool
	}{
		{
			name:     "unchanged",
			side:     Ask,
			old:      []market.Order{lv(1, 1), lv(2, 1)},
			new:      []market.Order{lv(1, 1), lv(2, 1)},
			wantDiff: nil,
		},
		{
			name:     "pure addition at the tail",
			side:     Ask,
			old:      []market.Order{lv(1, 1)},
			new:      []market.Order{lv(1, 1), lv(2, 3)},
			wantDiff: []market.Order{lv(2, 3)},
		},
		{
			name:     "pure removal at the tail",
			side:     Ask,
			old:      []market.Order{lv(1, 1), lv(2, 3)},
			new:      []market.Order{lv(1, 1)},
			wantDiff: []market.Order{{Price: 2}},
		},
		{
			name:     "single level update",
			side:     Bid,
			old:      []market.Order{lv(5, 1), lv(4, 1)},
			new:      []market.Order{lv(5, 2), lv(4, 1)},
			wantDiff: []market.Order{lv(5, 2)},
		},
		{
			name:     "update of base only is not a change",
			side:     Ask,
			old:      []market.Order{{Price: 1, QuantityBase: 1, QuantityQuote: 5}},
			new:      []market.Order{{Price: 1, QuantityBase: 2, QuantityQuote: 5}},
			wantDiff: nil,
			knownGap: true,
		},
		{
			name:     "new best ask retires the old best",
			side:     Ask,
			old:      []market.Order{lv(3, 1)},
			new:      []market.Order{lv(2, 1), lv(3, 1)},
			wantDiff: []market.Order{{Price: 3, QuantityContract: &zero}, lv(2, 1), lv(3, 1)},
		},
		{
			name:     "insertion between asks",
			side:     Ask,
			old:      []market.Order{lv(1, 1), lv(3, 1)},
			new:      []market.Order{lv(1, 1), lv(2, 1), lv(3, 1)},
			wantDiff: []market.Order{{Price: 3, QuantityContract: &zero}, lv(2, 1), lv(3, 1)},
		},
		{
			name:     "insertion between bids",
			side:     Bid,
			old:      []market.Order{lv(3, 1), lv(1, 1)},
			new:      []market.Order{lv(3, 1), lv(2, 1), lv(1, 1)},
			wantDiff: []market.Order{{Price: 1, QuantityContract: &zero}, lv(2, 1), lv(1, 1)},
		},
		{
			name:     "mid-book removal",
			side:     Ask,
			old:      []market.Order{lv(1, 1), lv(2, 1), lv(3, 1)},
			new:      []market.Order{lv(1, 1), lv(3, 1)},
			wantDiff: []market.Order{lv(3, 1), {Price: 2}, {Price: 3}},
			knownGap: true,
		},
		{
			name:     "best level replaced by a worse price",
			side:     Ask,
			old:      []market.Order{lv(1, 1), lv(2, 1)},
			new:      []market.Order{lv(1.5, 1), lv(2, 1)},
			wantDiff: []market.Order{lv(1.5, 1), lv(2, 1), {Price: 1}, {Price: 2}},
			knownGap: true,
		},
		{
			name:     "empty old",
			side:     Bid,
			old:      nil,
			new:      []market.Order{lv(2, 1), lv(1, 1)},
			wantDiff: []market.Order{lv(2, 1), lv(1, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := GetOrders(tt.new, tt.old, tt.side)
			if !equalOrders(diff, tt.wantDiff) {
				t.Fatalf("GetOrders = %+v, want %+v", diff, tt.wantDiff)
			}

			restored := RestoreOrders(tt.old, diff, tt.side)
			if equalOrders(restored, tt.new) {
				return
			}
			if tt.knownGap {
				t.Logf("known round-trip gap:\nold      %+v\nnew      %+v\ndiff     %+v\nrestored %+v",
					tt.old, tt.new, diff, restored)
				return
			}
			t.Errorf("RestoreOrders = %+v, want %+v", restored, tt.new)
		})
	}
}

func randomSide(r *rand.Rand, side Side) []market.Order {
	var levels []market.Order
	for p := 1; p <= 12; p++ {
		if r.IntN(2) == 0 {
			continue
		}
		levels = append(levels, lv(float64(p)*0.5, float64(1+r.IntN(3))))
	}
	if side == Bid {
		sort.Slice(levels, func(i, j int) bool { return levels[i].Price > levels[j].Price })
	}
	return levels
}

func samePrices(a, b []market.Order) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Price != b[i].Price {
			return false
		}
	}
	return true
}

// Round trips must hold when only quantities move or the old side is empty.
// Other mismatches are reported, not failed: the merge rules do not invert
// every diff.
func TestDiffRestore_Property(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for _, side := range []Side{Ask, Bid} {
		gaps := 0
		for i := 0; i < 2000; i++ {
			old := randomSide(r, side)
			latest := randomSide(r, side)
			if i%4 == 0 {
				// same price ladder, new quantities
				latest = make([]market.Order, len(old))
				for k, o := range old {
					latest[k] = lv(o.Price, float64(1+r.IntN(3)))
				}
			}

			diff := GetOrders(latest, old, side)
			restored := RestoreOrders(old, diff, side)
			if equalOrders(restored, latest) {
				continue
			}
			if len(old) == 0 || samePrices(old, latest) {
				t.Fatalf("side %d case %d:\nold      %+v\nnew      %+v\ndiff     %+v\nrestored %+v",
					side, i, old, latest, diff, restored)
			}
			if gaps < 3 {
				t.Logf("side %d case %d known gap:\nold      %+v\nnew      %+v\ndiff     %+v\nrestored %+v",
					side, i, old, latest, diff, restored)
			}
			gaps++
		}
		t.Logf("side %d: %d of 2000 cases do not round-trip", side, gaps)
	}
}

func TestGenerateDiff(t *testing.T) {
	old := sampleOrderBook()
	latest := sampleOrderBook()
	latest.Timestamp += 100
	latest.Asks = append(latest.Asks, market.Order{Price: 1703, QuantityBase: 1})
	latest.Bids = latest.Bids[:1]

	diff := GenerateDiff(old, latest)
	if diff.Snapshot {
		t.Error("diff must not be a snapshot")
	}
	if diff.Timestamp != latest.Timestamp {
		t.Errorf("timestamp = %d, want %d", diff.Timestamp, latest.Timestamp)
	}
	if want := []market.Order{{Price: 1703, QuantityBase: 1}}; !equalOrders(diff.Asks, want) {
		t.Errorf("asks diff = %+v, want %+v", diff.Asks, want)
	}
	if len(diff.Bids) != 1 || !IsRemoval(diff.Bids[0]) || diff.Bids[0].Price != 1699 {
		t.Errorf("bids diff = %+v, want removal of 1699", diff.Bids)
	}

	raw, err := EncodeOrderBook(diff)
	if err != nil {
		t.Fatalf("EncodeOrderBook(diff): %v", err)
	}
	decoded, err := DecodeOrderBook(raw)
	if err != nil {
		t.Fatal(err)
	}

	rebuilt := RestoreDiff(old, decoded)
	if !rebuilt.Snapshot {
		t.Error("restored book must be a snapshot")
	}
	if !equalOrders(rebuilt.Asks, latest.Asks) || !equalOrders(rebuilt.Bids, latest.Bids) {
		t.Errorf("RestoreDiff = %+v / %+v, want %+v / %+v", rebuilt.Asks, rebuilt.Bids, latest.Asks, latest.Bids)
	}
}

func BenchmarkGetOrders(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	old, latest := randomSide(r, Ask), randomSide(r, Ask)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RestoreOrders(old, GetOrders(latest, old, Ask), Ask)
	}
}
