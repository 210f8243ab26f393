package ladderservice

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLadderLocks(t *testing.T) {
	t.Run("same ladder is exclusive", func(t *testing.T) {
		locks := newLadderLocks()
		var inside, peak atomic.Int32

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("a")
				defer unlock()
				n := inside.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), peak.Load())
		assert.Zero(t, locks.size())
	})

	t.Run("different ladders do not block", func(t *testing.T) {
		locks := newLadderLocks()
		unlockA := locks.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on b waited for a")
		}
		assert.Equal(t, 1, locks.size())
	})
}
