package middleware

import (
	"io"
	"sort"
	"strings"
	"sync"
)

var (
	registry   []Middleware
	registryMu sync.RWMutex
)

// Register adds a turn hook to the set used by NewChainFromRegistry. Hook
// packages call it from init; a second hook with the same id panics.
func Register(m Middleware) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, r := range registry {
		if r.ID() == m.ID() {
			panic("middleware: Register called twice for " + m.ID())
		}
	}
	registry = append(registry, m)
}

// Registered returns the registered hooks in registration order.
func Registered() []Middleware {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Middleware, len(registry))
	copy(out, registry)
	return out
}

// RegisteredIDs returns the ids of the registered hooks, sorted.
func RegisteredIDs() []string {
	mws := Registered()
	ids := make([]string, len(mws))
	for i, mw := range mws {
		ids[i] = mw.ID()
	}
	sort.Strings(ids)
	return ids
}

// NewChainFromRegistry builds a chain of every registered hook whose id is
// not in disabled, logging to debugWriter when it is non-nil. It returns nil
// when no hook is left.
func NewChainFromRegistry(debugWriter io.Writer, disabled []string) *Chain {
	off := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		off[strings.TrimSpace(id)] = true
	}

	var mws []Middleware
	for _, mw := range Registered() {
		if !off[mw.ID()] {
			mws = append(mws, mw)
		}
	}
	if len(mws) == 0 {
		return nil
	}

	c := NewChain(mws...)
	c.SetDebugWriter(debugWriter)
	return c
}
