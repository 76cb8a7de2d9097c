package keylock

import (
	"sync"
	"testing"
)

func TestMap_SerializesSameKey(t *testing.T) {
	locks := New()
	counter := 0

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := locks.Lock("player:270510")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("lost update under lock: got=%d want=%d", counter, workers)
	}
	if n := locks.size(); n != 0 {
		t.Fatalf("expected lock entries to be released, got %d", n)
	}
}

func TestMap_UnlockIsIdempotent(t *testing.T) {
	locks := New()
	unlock := locks.Lock("a")
	unlock()
	unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		release := locks.Lock("a")
		release()
	}()
	<-done
}
