// SPDX-License-Identifier: MIT
package pool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Section runs a group of tasks that must succeed together: the first
// error returned by any task cancels the Section's context so the
// remaining tasks can observe it and stop early.
type Section struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewSection builds a Section deriving its cancellation from parent.
func NewSection(parent context.Context) *Section {
	g, ctx := errgroup.WithContext(parent)
	return &Section{g: g, ctx: ctx}
}

// Go schedules fn to run in its own goroutine. fn receives the Section's
// context, which is canceled as soon as any scheduled fn returns an
// error. A panicking fn is recovered into an error so Block(true) can
// surface it to the caller instead of crashing the process.
func (s *Section) Go(fn func(ctx context.Context) error) {
	s.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("pool: section task panicked: %v", r)
			}
		}()
		return fn(s.ctx)
	})
}

// Block waits for every scheduled task to finish. When raise is true, the
// first non-nil error is returned; otherwise Block always returns nil,
// useful when the caller only cares that the section has quiesced.
func (s *Section) Block(raise bool) error {
	err := s.g.Wait()
	if !raise {
		return nil
	}
	return err
}
