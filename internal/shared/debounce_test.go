package shared

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces Rapid Triggers", func(t *testing.T) {
		var fired atomic.Int32
		d := NewDebouncer(30 * time.Millisecond)

		for i := 0; i < 5; i++ {
			d.Trigger(func() { fired.Add(1) })
			time.Sleep(5 * time.Millisecond)
		}

		time.Sleep(100 * time.Millisecond)
		if got := fired.Load(); got != 1 {
			t.Errorf("expected exactly 1 firing, got %d", got)
		}
	})

	t.Run("Stop Abandons Pending Action", func(t *testing.T) {
		var fired atomic.Int32
		d := NewDebouncer(30 * time.Millisecond)

		d.Trigger(func() { fired.Add(1) })
		d.Stop()

		time.Sleep(100 * time.Millisecond)
		if got := fired.Load(); got != 0 {
			t.Errorf("expected no firing after Stop, got %d", got)
		}
	})

	t.Run("Trigger After Stop Is Ignored", func(t *testing.T) {
		var fired atomic.Int32
		d := NewDebouncer(10 * time.Millisecond)

		d.Stop()
		d.Trigger(func() { fired.Add(1) })

		time.Sleep(50 * time.Millisecond)
		if got := fired.Load(); got != 0 {
			t.Errorf("expected no firing, got %d", got)
		}
	})
}
