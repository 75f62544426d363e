// Package pool provides a fixed-size worker pool driven by a
// mutex/condvar task queue (Pool, Enqueue, Map, MapChunk), and a
// fail-fast task group (Section) for operations that must abort as soon
// as any one of them errors. Section wraps golang.org/x/sync/errgroup
// rather than reimplementing first-error-wins cancellation by hand.
package pool
