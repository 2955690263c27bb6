// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import (
	"errors"
	"fmt"
)

var (
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrOverflow          = errors.New("overflow")

	// errStop ends a sieve early without reporting a failure.
	errStop = errors.New("stop")
)

func alloc[T any](n int, what string) (v []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("soe: allocating %d %s: %v: %w", n, what, r, ErrResourceExhausted)
		}
	}()
	return make([]T, n), nil
}

func allocBytes(n int) ([]byte, error) {
	return alloc[byte](n, "bytes")
}

func allocWords(n int) ([]uint64, error) {
	return alloc[uint64](n, "words")
}

func allocBuckets(n int) ([][]wheelPrime, error) {
	return alloc[[]wheelPrime](n, "buckets")
}
