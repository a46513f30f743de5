package listview

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu   sync.Mutex
	vals []string
	ch   chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 10)} }

func (r *recorder) fn(v string) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vals)
}

func TestDebounceDeliversLastInput(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(40*time.Millisecond, rec.fn)
	for _, v := range []string{"j", "ja", "jan", "jane"} {
		d.Input(v)
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case v := <-rec.ch:
		if v != "jane" {
			t.Fatalf("expected last input, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("debounced value never delivered")
	}
	time.Sleep(80 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected a single delivery, got %d", rec.count())
	}
}

func TestDebounceStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.fn)
	d.Input("jane")
	if !d.Pending() {
		t.Fatalf("expected a pending value")
	}
	d.Stop()
	d.Input("ignored")
	time.Sleep(90 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("nothing should be delivered after stop, got %d", rec.count())
	}
}

func TestDebounceCancelKeepsWorking(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.fn)
	d.Input("a")
	d.Cancel()
	d.Input("b")
	select {
	case v := <-rec.ch:
		if v != "b" {
			t.Fatalf("expected b, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("value after cancel never delivered")
	}
	if rec.count() != 1 {
		t.Fatalf("cancelled value should not be delivered")
	}
}

func TestDebounceDefaultDelay(t *testing.T) {
	d := NewDebouncer(0, nil)
	if d.Delay() != DefaultDebounce {
		t.Fatalf("expected default delay, got %v", d.Delay())
	}
	if DefaultDebounce < 400*time.Millisecond || DefaultDebounce > 500*time.Millisecond {
		t.Fatalf("default delay out of range: %v", DefaultDebounce)
	}
}
