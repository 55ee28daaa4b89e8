// Package runner supervises the node's long running tasks.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Task is a long running part of the node, stopped by cancelling ctx.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc is the func form of Task.
type TaskFunc func(context.Context) error

// Run implements Task.
func (f TaskFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Group runs tasks on a shared context. The first task to return cancels
// the others.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group
}

// New creates a Group whose tasks stop when parent is done.
func New(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{ctx: ctx, cancel: cancel, eg: eg}
}

// Context returns the context passed to the tasks.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go starts task under name. A task stopping because its context was
// cancelled is not a failure.
func (g *Group) Go(name string, task Task) *Group {
	g.eg.Go(func() error {
		defer g.cancel()

		glog.V(4).Infof("task %s started", name)
		err := task.Run(g.ctx)
		glog.V(4).Infof("task %s stopped: %v", name, err)

		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	})
	return g
}

// Wait blocks until every task has returned and reports the first failure.
func (g *Group) Wait() error {
	defer g.cancel()
	return g.eg.Wait()
}

// WithSignals returns a context cancelled on Ctrl-C or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
