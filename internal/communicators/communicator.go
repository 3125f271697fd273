package communicators

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clima/internal/gateway"

	"golang.org/x/sync/errgroup"
)

// Communicator is a long-running chat surface (Telegram, the web API).
type Communicator interface {
	// ID returns the unique name of the communicator, e.g. "telegram".
	ID() string

	// Start serves until ctx is canceled or an error occurs. A communicator
	// that is not configured returns nil right away.
	Start(ctx context.Context, gw *gateway.Gateway) error
}

var (
	registry   = make(map[string]Communicator)
	registryMu sync.RWMutex
)

// Register adds a Communicator to the global registry. It is called from
// the init function of each adapter package.
func Register(c Communicator) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if c == nil {
		panic("communicator: Register communicator is nil")
	}
	if _, dup := registry[c.ID()]; dup {
		panic("communicator: Register called twice for communicator " + c.ID())
	}

	registry[c.ID()] = c
}

// Get returns a registered communicator by ID.
func Get(id string) (Communicator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("communicator '%s' not found", id)
	}
	return c, nil
}

// All returns the registered communicators sorted by ID.
func All() []Communicator {
	registryMu.RLock()
	defer registryMu.RUnlock()

	list := make([]Communicator, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list
}

// Run starts every communicator and waits for all of them. The first error
// cancels the others.
func Run(ctx context.Context, gw *gateway.Gateway, list []Communicator) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, c := range list {
		eg.Go(func() error {
			if err := c.Start(ctx, gw); err != nil {
				return fmt.Errorf("%s: %w", c.ID(), err)
			}
			return nil
		})
	}
	return eg.Wait()
}
