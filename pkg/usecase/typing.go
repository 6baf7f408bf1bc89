package usecase

import (
	"sync"
	"time"
)

// typingIndicator owns the auto-expiry timer for the transient typing state.
// A fresh signal for the same scope resets the timer instead of stacking
// indicators.
type typingIndicator struct {
	mu    sync.Mutex
	timer *time.Timer
}

func newTypingIndicator() *typingIndicator {
	return &typingIndicator{}
}

// Reset (re)arms the expiry timer. onExpire runs once when the timer fires
// without another Reset in between.
func (t *typingIndicator) Reset(expiry time.Duration, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(expiry, onExpire)
}

// Stop cancels a pending expiry, if any.
func (t *typingIndicator) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
