package data

import "github.com/wmjtyd/libstock/pkg/market"

// Side tells the diff engine how a book side is sorted.
type Side int

const (
	// Ask levels are sorted by ascending price.
	Ask Side = iota
	// Bid levels are sorted by descending price.
	Bid
)

// before reports whether price a sorts ahead of price b on this side.
func (s Side) before(a, b float64) bool {
	if s == Bid {
		return a > b
	}
	return a < b
}

// IsRemoval reports whether a diff level deletes its price.
func IsRemoval(o market.Order) bool {
	return o.QuantityBase == 0 && o.QuantityQuote == 0
}

func removal(price float64, contract *float64) market.Order {
	return market.Order{Price: price, QuantityContract: contract}
}

// GetOrders computes the levels that turn oldLevels into newLevels.
//
// Both inputs must already be sorted for side and hold no zero-quantity
// levels; neither is checked. Two levels are unchanged when price and quote
// quantity match. The diff contains:
//   - changed levels at an existing price, carrying the new quantities
//   - new levels as they are
//   - removed levels at their old price with zero quantities (a removal
//     found mid-book carries a zero contract quantity, a trailing one none)
//
// A new level that sorts ahead of the current old level retires the old one.
// RestoreOrders does not invert every diff built this way.
func GetOrders(newLevels, oldLevels []market.Order, side Side) []market.Order {
	var diff []market.Order
	i, j := 0, 0

	for i < len(newLevels) && j < len(oldLevels) {
		n, o := newLevels[i], oldLevels[j]

		switch {
		case n.Price == o.Price && n.QuantityQuote == o.QuantityQuote:
			i++
			j++
		case n.Price == o.Price:
			diff = append(diff, market.Order{
				Price:            o.Price,
				QuantityBase:     n.QuantityBase,
				QuantityQuote:    n.QuantityQuote,
				QuantityContract: n.QuantityContract,
			})
			i++
			j++
		case side.before(n.Price, o.Price):
			zero := 0.0
			diff = append(diff, removal(o.Price, &zero))
			j++
		default:
			diff = append(diff, n)
			i++
		}
	}

	diff = append(diff, newLevels[i:]...)
	for _, o := range oldLevels[j:] {
		diff = append(diff, removal(o.Price, nil))
	}
	return diff
}

// RestoreOrders applies a diff produced by GetOrders to oldLevels.
// A removal only takes effect at an exactly matching old price; anywhere
// else it is dropped.
func RestoreOrders(oldLevels, diff []market.Order, side Side) []market.Order {
	out := make([]market.Order, 0, len(oldLevels)+len(diff))
	i, j := 0, 0

	for i < len(oldLevels) && j < len(diff) {
		o, d := oldLevels[i], diff[j]

		switch {
		case o.Price == d.Price:
			if !IsRemoval(d) {
				out = append(out, d)
			}
			i++
			j++
		case side.before(d.Price, o.Price):
			if !IsRemoval(d) {
				out = append(out, d)
			}
			j++
		default:
			out = append(out, o)
			i++
		}
	}

	out = append(out, oldLevels[i:]...)
	for _, d := range diff[j:] {
		if !IsRemoval(d) {
			out = append(out, d)
		}
	}
	return out
}

// GenerateDiff builds a non-snapshot message holding the changes from old
// to latest. Metadata is taken from latest.
func GenerateDiff(old, latest *market.OrderBookMsg) *market.OrderBookMsg {
	diff := *latest
	diff.Asks = GetOrders(latest.Asks, old.Asks, Ask)
	diff.Bids = GetOrders(latest.Bids, old.Bids, Bid)
	diff.Snapshot = false
	return &diff
}

// RestoreDiff rebuilds the snapshot that diff was generated against old.
func RestoreDiff(old, diff *market.OrderBookMsg) *market.OrderBookMsg {
	latest := *diff
	latest.Asks = RestoreOrders(old.Asks, diff.Asks, Ask)
	latest.Bids = RestoreOrders(old.Bids, diff.Bids, Bid)
	latest.Snapshot = true
	return &latest
}
