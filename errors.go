// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"errors"

	"leb.io/primesieve/internal/soe"
)

var (
	// ErrInvalidRange is returned for start > stop, stop > MaxStop or a
	// prime index out of range.
	ErrInvalidRange = errors.New("primesieve: invalid range")

	// ErrResourceExhausted is returned when a segment or table could not
	// be allocated.
	ErrResourceExhausted = soe.ErrResourceExhausted

	// ErrOverflow is returned when a sum no longer fits in 128 bits.
	ErrOverflow = soe.ErrOverflow

	// ErrWorkerFailure is returned when a worker goroutine failed. The
	// partial results of the other workers are discarded.
	ErrWorkerFailure = errors.New("primesieve: worker failure")

	ErrInvalidConfig = errors.New("primesieve: invalid config")
	ErrInvalidFlags  = errors.New("primesieve: invalid flags")
)
