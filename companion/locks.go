package companion

import "sync"

// pairLocks serializes processing per (user, character) pair so two
// concurrent messages for the same pair never interleave their
// read-modify-write cycles. Different pairs proceed in parallel.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the pair's mutex and returns its unlock function.
func (p *pairLocks) acquire(key string) func() {
	p.mu.Lock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
