package middleware

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Chain runs turn hooks in descending Priority() order; equal priorities
// keep registration order.
type Chain struct {
	mu  sync.RWMutex
	mws []Middleware

	debugMu sync.Mutex
	debugW  io.Writer
	now     func() time.Time
}

type DecisionResult struct {
	MiddlewareID string
	Priority     int
	Decision     Decision
}

func NewChain(mws ...Middleware) *Chain {
	c := &Chain{now: time.Now}
	for _, mw := range mws {
		c.Use(mw)
	}
	return c
}

// SetDebugWriter enables the JSONL debug log; nil disables it.
func (c *Chain) SetDebugWriter(w io.Writer) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.debugW = w
}

func (c *Chain) Use(mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mws = append(c.mws, mw)
	sort.SliceStable(c.mws, func(i, j int) bool {
		return c.mws[i].Priority() > c.mws[j].Priority()
	})
}

// IDs lists the middleware ids in dispatch order.
func (c *Chain) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.mws))
	for i, mw := range c.mws {
		out[i] = mw.ID()
	}
	return out
}

const skippedReason = "skipped (ShouldLoad=false)"

// Dispatch runs the hooks for e until one cancels. A ReplaceText decision is
// applied to e before the next hook sees it. A hook that fails or panics
// stops the dispatch with an error naming it.
func (c *Chain) Dispatch(ctx context.Context, e *Event) ([]DecisionResult, error) {
	c.mu.RLock()
	mws := make([]Middleware, len(c.mws))
	copy(mws, c.mws)
	c.mu.RUnlock()

	results := make([]DecisionResult, 0, len(mws))
	for _, mw := range mws {
		rec := debugRecord{id: mw.ID(), priority: mw.Priority(), in: eventText(e)}

		if cmw, ok := mw.(ConditionalMiddleware); ok && !cmw.ShouldLoad(ctx, e) {
			rec.skipped = true
			rec.dec = Decision{Reason: skippedReason}
			rec.out = rec.in
			c.debugLog(e, rec)
			results = append(results, DecisionResult{MiddlewareID: rec.id, Priority: rec.priority, Decision: rec.dec})
			continue
		}

		start := c.now()
		dec, err := run(ctx, mw, e)
		rec.elapsed = c.now().Sub(start)
		if err != nil {
			rec.dec = Decision{Reason: err.Error(), Cancel: true}
			rec.out = eventText(e)
			c.debugLog(e, rec)
			return nil, fmt.Errorf("middleware %s: %w", rec.id, err)
		}

		applyDecisionToEvent(e, dec)
		rec.dec = dec
		rec.out = eventText(e)
		c.debugLog(e, rec)

		results = append(results, DecisionResult{MiddlewareID: rec.id, Priority: rec.priority, Decision: dec})
		if dec.Cancel {
			break
		}
	}
	return results, nil
}

func run(ctx context.Context, mw Middleware, e *Event) (dec Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return mw.OnEvent(ctx, e)
}
