package fields

import (
	"fmt"
	"sync"
)

// bimap is a read-only two-way lookup between a name and its wire code.
type bimap[L, R comparable] struct {
	byLeft  map[L]R
	byRight map[R]L
}

func newBimap[L, R comparable](entries map[L]R) *bimap[L, R] {
	m := &bimap[L, R]{
		byLeft:  make(map[L]R, len(entries)),
		byRight: make(map[R]L, len(entries)),
	}
	for l, r := range entries {
		if _, dup := m.byRight[r]; dup {
			panic(fmt.Sprintf("fields: duplicate code %v in table", r))
		}
		m.byLeft[l] = r
		m.byRight[r] = l
	}
	return m
}

// lazyBimap builds the table on first use.
func lazyBimap[L, R comparable](entries func() map[L]R) func() *bimap[L, R] {
	return sync.OnceValue(func() *bimap[L, R] { return newBimap(entries()) })
}

func (m *bimap[L, R]) byName(l L) (R, bool) {
	r, ok := m.byLeft[l]
	return r, ok
}

func (m *bimap[L, R]) byCode(r R) (L, bool) {
	l, ok := m.byRight[r]
	return l, ok
}

func (m *bimap[L, R]) len() int { return len(m.byLeft) }
