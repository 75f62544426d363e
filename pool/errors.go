// SPDX-License-Identifier: MIT
package pool

import "errors"

var (
	// ErrPoolClosed indicates Enqueue was called after Close.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrBadChunkSize indicates MapChunk received a non-positive chunk size.
	ErrBadChunkSize = errors.New("pool: chunk size must be positive")

	// ErrBadWorkerCount indicates a non-positive worker count. New does
	// not return it: a non-positive count falls back to
	// runtime.GOMAXPROCS(0).
	ErrBadWorkerCount = errors.New("pool: worker count must be positive")
)
