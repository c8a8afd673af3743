package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerLocks_SerializesPerOwner(t *testing.T) {
	l := newOwnerLocks()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			release := l.lock("user-1")
			defer release()

			mu.Lock()
			inside++
			maxInside = max(maxInside, inside)
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Equal(t, 0, l.len())
}

func TestOwnerLocks_IndependentOwners(t *testing.T) {
	l := newOwnerLocks()

	releaseA := l.lock("a")
	releaseB := l.lock("b")
	assert.Equal(t, 2, l.len())

	releaseA()
	releaseB()
	assert.Equal(t, 0, l.len())
}
