package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes mutations per intent id. Transitions and evidence
// updates are read-modify-write; without per-id locking the stage history
// ordering and confidence updates race.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for id and returns the unlock function.
func (k *keyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
