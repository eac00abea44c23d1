package conversation

import "sync"

// pairLocks serializes turns for the same (player, npc) pair. Entries are
// dropped once nobody holds or waits on them.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	mu      sync.Mutex
	waiters int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*pairLock)}
}

// lock blocks until the pair is free and returns the matching unlock.
func (p *pairLocks) lock(playerID, npcID string) func() {
	key := playerID + "\x00" + npcID

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.waiters++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

func (p *pairLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
