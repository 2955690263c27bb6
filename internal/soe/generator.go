// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import (
	"context"
	"errors"

	"leb.io/primesieve/internal/primes"
)

// Run sieves [start, stop] and hands every finished segment to consume.
//
// The sieving primes up to isqrt(stop) come from a second sieve, the
// generator, whose segments are turned into primes and added to the
// main sieve one at a time. The generator itself is fed by the small
// non-segmented sieve in package primes. Both sieves stop at the next
// segment boundary once ctx is done or consume returns an error.
func Run(ctx context.Context, start, stop uint64, opt Options, consume func(*Segment) error) (Stats, error) {
	s, err := newSieve(ctx, start, stop, opt, consume)
	if err != nil {
		return Stats{}, err
	}

	limit := opt.PreSieve.Limit
	sq := isqrt(stop)
	var gen *sieve
	if !s.done && sq > limit {
		gopt := opt
		gopt.OnSegment = nil
		gen, err = newSieve(ctx, 7, sq, gopt, func(seg *Segment) error {
			seg.ForEach(func(p uint64) bool {
				if p > limit {
					s.addSievingPrime(p)
				}
				return s.done
			})
			if s.done {
				return errStop
			}
			return nil
		})
		if err != nil {
			return s.stats(), err
		}
		for _, p := range primes.Sieve(isqrt(sq)) {
			if p > limit {
				gen.addSievingPrime(p)
			}
		}
		gen.finish()
		if gen.err != nil && !errors.Is(gen.err, errStop) {
			return s.stats(), gen.err
		}
	}
	s.finish()

	st := s.stats()
	if s.err != nil && !errors.Is(s.err, errStop) {
		return st, s.err
	}
	return st, nil
}
