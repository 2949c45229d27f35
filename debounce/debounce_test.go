package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	calls []time.Time
}

func (r *recorder) record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, time.Now())
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestBurstCoalescesIntoOneCall(t *testing.T) {
	rec := &recorder{}
	d := New(LoadMoreDelay, rec.record)

	var last time.Time
	for i := 0; i < 10; i++ {
		last = time.Now()
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * LoadMoreDelay)
	assert.Equal(t, 1, rec.count())

	rec.mu.Lock()
	fired := rec.calls[0]
	rec.mu.Unlock()
	assert.GreaterOrEqual(t, fired.Sub(last), LoadMoreDelay)
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger()
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, time.Millisecond)
	d.Trigger()
	assert.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, time.Millisecond)
}

func TestStopCancelsPendingCall(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}
