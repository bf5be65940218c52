// Package flag holds the running switch shared by the recorder daemons.
package flag

import "sync/atomic"

// BinaryFlag is a lock-free on/off switch. The zero value is stopped; use
// New for one that starts running.
type BinaryFlag struct {
	on atomic.Bool
}

func New() *BinaryFlag {
	f := &BinaryFlag{}
	f.on.Store(true)
	return f
}

func (f *BinaryFlag) Running() bool { return f.on.Load() }

func (f *BinaryFlag) Stop() { f.on.Store(false) }

func (f *BinaryFlag) Start() { f.on.Store(true) }
