package ladderservice

import "sync"

// ladderLocks serializes mutations per ladder within this process. Entries
// are dropped once no goroutine holds or waits on them.
type ladderLocks struct {
	mu    sync.Mutex
	locks map[string]*ladderLock
}

type ladderLock struct {
	sync.Mutex
	refs int
}

func newLadderLocks() *ladderLocks {
	return &ladderLocks{locks: make(map[string]*ladderLock)}
}

// Lock blocks until the ladder is free and returns its unlock function.
func (l *ladderLocks) Lock(ladder string) func() {
	l.mu.Lock()
	lock, ok := l.locks[ladder]
	if !ok {
		lock = &ladderLock{}
		l.locks[ladder] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, ladder)
		}
		l.mu.Unlock()
	}
}

func (l *ladderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
