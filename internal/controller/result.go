package controller

import "context"

// Result is the single terminal outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// opKind names the request kinds tracked in Controller.pending.
type opKind string

const (
	opLoadRepositories opKind = "load_repositories"
	opLoadIssues       opKind = "load_issues"
	opPostComment      opKind = "post_comment"
)

// start runs call on the controller's group and delivers its result to
// complete on the controller goroutine. Must be called on the controller
// goroutine. Results of cancelled or superseded operations are dropped.
func start[T any](c *Controller, kind opKind, call func(ctx context.Context) (T, error), complete func(Result[T])) {
	op := c.group.Go(func(op *Operation) {
		v, err := call(op.Context())
		c.post(func() {
			if c.pending[kind] != op || c.group.Disposed() {
				return
			}
			delete(c.pending, kind)
			complete(Result[T]{Value: v, Err: err})
		})
	})
	if op == nil {
		return
	}
	c.pending[kind] = op
}
