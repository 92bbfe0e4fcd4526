package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerMarkAndClear(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.AwaitingAmount(1))

	tr.AwaitAmount(1)
	assert.True(t, tr.AwaitingAmount(1))
	assert.False(t, tr.AwaitingAmount(2))

	tr.Clear(1)
	assert.False(t, tr.AwaitingAmount(1))
}

func TestTrackerClearIsIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Clear(1)
	tr.AwaitAmount(1)
	tr.Clear(1)
	tr.Clear(1)
	assert.False(t, tr.AwaitingAmount(1))
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			tr.AwaitAmount(id)
			tr.AwaitingAmount(id)
			tr.Clear(id)
		}(int64(i % 5))
	}
	wg.Wait()

	for id := int64(0); id < 5; id++ {
		assert.False(t, tr.AwaitingAmount(id))
	}
}
