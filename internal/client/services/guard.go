package services

import "sync"

// inFlightGuard admits at most one attempt per key at a time.
type inFlightGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInFlightGuard() *inFlightGuard {
	return &inFlightGuard{keys: make(map[string]struct{})}
}

// acquire returns a release func and true when key was free.
func (g *inFlightGuard) acquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.keys[key]; busy {
		return nil, false
	}
	g.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.keys, key)
			g.mu.Unlock()
		})
	}, true
}

func attemptKey(address, jobID string) string {
	return address + "|" + jobID
}
