// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import (
	"context"
	"fmt"
	"math/bits"
)

// Flags select what Find computes.
type Flags uint32

const (
	CountPrimes Flags = 1 << iota
	CountTwins
	CountTriplets
	CountQuadruplets
	SumPrimes
	DigestPrimes
	CallbackPrimes

	CountTuplets = CountTwins | CountTriplets | CountQuadruplets
	perPrime     = SumPrimes | DigestPrimes | CallbackPrimes
)

// Tally is what Find computed for a range.
type Tally struct {
	Counts [4]uint64 // primes, twins, triplets, quadruplets
	SumHi  uint64
	SumLo  uint64
	Digest uint64 // sum of the hashes of all primes
	Stats
}

// Merge adds o to t. The sum wraps and ErrOverflow is returned when it
// no longer fits in 128 bits.
func (t *Tally) Merge(o *Tally) error {
	for i := range t.Counts {
		t.Counts[i] += o.Counts[i]
	}
	var c uint64
	t.SumLo, c = bits.Add64(t.SumLo, o.SumLo, 0)
	t.SumHi, c = bits.Add64(t.SumHi, o.SumHi, c)
	t.Digest += o.Digest
	t.Stats.add(o.Stats)
	if c != 0 {
		return ErrOverflow
	}
	return nil
}

// Primes and k-tuplets below 7 are not stored in segments.
var smallPrimes = []uint64{2, 3, 5}

var smallTuplets = []struct {
	k           int
	first, last uint64
}{
	{1, 3, 5},
	{1, 5, 7},
	{2, 5, 11},
	{3, 5, 13},
}

type finder struct {
	flags    Flags
	hash     func(uint64) uint64
	callback func([]uint64) (stop bool)
	batch    []uint64
	t        Tally
}

// Find sieves [start, stop] and computes what flags select. hash is
// required with DigestPrimes. With CallbackPrimes, callback receives the
// primes of each segment in ascending order and may stop the run.
func Find(ctx context.Context, start, stop uint64, flags Flags, opt Options,
	hash func(uint64) uint64, callback func([]uint64) (stop bool)) (Tally, error) {
	if start > stop || stop > MaxStop {
		return Tally{}, fmt.Errorf("soe: bad range [%d, %d]", start, stop)
	}
	f := &finder{flags: flags, hash: hash, callback: callback}
	if flags&perPrime != 0 {
		f.batch = make([]uint64, 0, 8*opt.SegmentBytes)
	}

	for _, p := range smallPrimes {
		if p >= start && p <= stop {
			f.t.Counts[0]++
			if err := f.prime(p); err != nil {
				return f.t, err
			}
		}
	}
	for _, st := range smallTuplets {
		if st.first >= start && st.last <= stop {
			f.t.Counts[st.k]++
		}
	}
	if f.flush() {
		return f.t, nil
	}

	st, err := Run(ctx, start, stop, opt, f.consume)
	f.t.Stats = st
	return f.t, err
}

func (f *finder) prime(p uint64) error {
	if f.flags&SumPrimes != 0 {
		var c uint64
		f.t.SumLo, c = bits.Add64(f.t.SumLo, p, 0)
		f.t.SumHi, c = bits.Add64(f.t.SumHi, 0, c)
		if c != 0 {
			return ErrOverflow
		}
	}
	if f.flags&DigestPrimes != 0 {
		f.t.Digest += f.hash(p)
	}
	if f.flags&CallbackPrimes != 0 {
		f.batch = append(f.batch, p)
	}
	return nil
}

// flush hands the batch to the callback and reports whether it asked
// to stop.
func (f *finder) flush() bool {
	if len(f.batch) == 0 {
		return false
	}
	stop := f.callback(f.batch)
	f.batch = f.batch[:0]
	return stop
}

func (f *finder) consume(seg *Segment) error {
	if f.flags&CountPrimes != 0 {
		f.t.Counts[0] += popcount(seg.Words)
	}
	for k := 0; k < 3; k++ {
		if f.flags&(CountTwins<<uint(k)) != 0 {
			f.t.Counts[k+1] += countTuplets(k, seg.Bytes)
		}
	}
	if f.flags&perPrime == 0 {
		return nil
	}

	var err error
	seg.ForEach(func(p uint64) bool {
		err = f.prime(p)
		return err != nil
	})
	if err != nil {
		return err
	}
	if f.flush() {
		return errStop
	}
	return nil
}
