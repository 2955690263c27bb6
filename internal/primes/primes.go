// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package primes is a small non-segmented sieve over odd numbers.
// It bootstraps the segmented sieve, so it only has to reach the
// fourth root of the largest supported stop value.
package primes

import "github.com/willf/bitset"

// MaxLimit is the largest limit Sieve accepts.
const MaxLimit = 1 << 16

// Sieve returns the primes <= limit in ascending order.
func Sieve(limit uint64) []uint64 {
	if limit > MaxLimit {
		panic("primes: limit > MaxLimit")
	}
	if limit < 2 {
		return nil
	}

	// bit i stands for 2i+1, a set bit means composite
	n := uint(limit/2 + 1)
	comp := bitset.New(n)
	comp.Set(0)
	for i := uint(1); ; i++ {
		p := 2*i + 1
		if p*p > uint(limit) {
			break
		}
		if comp.Test(i) {
			continue
		}
		for j := p * p / 2; j < n; j += p {
			comp.Set(j)
		}
	}

	ps := make([]uint64, 0, n-comp.Count()+1)
	ps = append(ps, 2)
	for i := uint(1); i < n; i++ {
		v := uint64(2*i + 1)
		if v > limit {
			break
		}
		if !comp.Test(i) {
			ps = append(ps, v)
		}
	}
	return ps
}
