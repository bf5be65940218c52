package flag

import (
	"sync"
	"testing"
)

func TestBinaryFlag(t *testing.T) {
	f := New()
	if !f.Running() {
		t.Fatal("new flag must be running")
	}
	f.Stop()
	if f.Running() {
		t.Fatal("flag still running after Stop")
	}
	f.Start()
	if !f.Running() {
		t.Fatal("flag not running after Start")
	}

	var zero BinaryFlag
	if zero.Running() {
		t.Error("zero value must be stopped")
	}
}

func TestBinaryFlag_Concurrent(t *testing.T) {
	f := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = f.Running()
			}
		}()
	}
	f.Stop()
	wg.Wait()
	if f.Running() {
		t.Error("got running, want stopped")
	}
}
