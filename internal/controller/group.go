package controller

import (
	"context"
	"sync"
)

// Operation is a handle to one tracked request.
type Operation struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// ID returns the operation's sequence number within its group.
func (o *Operation) ID() uint64 {
	return o.id
}

// Context returns the operation's context; it is cancelled on Dispose.
func (o *Operation) Context() context.Context {
	return o.ctx
}

// Cancel cancels the operation.
func (o *Operation) Cancel() {
	o.cancel()
}

// Group tracks in-flight operations so they can be cancelled together.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	disposed bool
	nextID   uint64
}

// NewGroup returns a Group whose operations derive from parent.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel}
}

// Go runs fn on a new goroutine. It returns nil without running fn once the
// group is disposed.
func (g *Group) Go(fn func(op *Operation)) *Operation {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return nil
	}

	g.nextID++
	ctx, cancel := context.WithCancel(g.ctx)
	op := &Operation{id: g.nextID, ctx: ctx, cancel: cancel}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer cancel()
		fn(op)
	}()

	return op
}

// Dispose cancels every operation and waits for their goroutines to return.
// It is safe to call more than once.
func (g *Group) Dispose() {
	g.mu.Lock()
	g.disposed = true
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
}

// Disposed reports whether Dispose has been called.
func (g *Group) Disposed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disposed
}
