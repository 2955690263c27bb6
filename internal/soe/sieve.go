// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package soe is a segmented Sieve of Eratosthenes over uint64 ranges.
//
// A segment is a byte array where each byte stands for 30 numbers and
// each bit for one of the 8 residues coprime to 30, so 2, 3 and 5 are
// never stored. Multiples of the primes up to the presieve limit are
// removed by copying a precomputed pattern. The remaining sieving
// primes are split by size into three tiers that each cross off their
// multiples in their own way.
package soe

import (
	"context"
	"math/bits"
	"unsafe"
)

// MaxStop is the largest stop value a sieve accepts. The headroom keeps
// segment arithmetic from wrapping.
const MaxStop = ^uint64(0) - 10*(1<<32)

// Options configures a sieve run.
type Options struct {
	SegmentBytes uint64 // multiple of 8
	PreSieve     *PreSieve
	Wheel        *Wheel // wheel of the medium and big tiers
	OnSegment    func(span uint64)
}

// Segment is a finished segment. Bytes only holds values within the
// sieved range, bits outside were cleared.
type Segment struct {
	Low   uint64 // bit b of byte i is Low+30*i+bitValues[b]
	Bytes []byte
	Words []uint64 // memory of Bytes, bytes past len(Bytes) are zero
}

// ForEach calls f with each prime of the segment in ascending order
// until f returns true. It reports whether f stopped it.
func (s *Segment) ForEach(f func(p uint64) (stop bool)) bool {
	for i, b := range s.Bytes {
		base := s.Low + 30*uint64(i)
		for b != 0 {
			if f(base + bitValues[bits.TrailingZeros8(b)]) {
				return true
			}
			b &= b - 1
		}
	}
	return false
}

// Stats describe the work done by a sieve.
type Stats struct {
	Segments      uint64
	SievingPrimes uint64
	SmallPrimes   uint64
	MediumPrimes  uint64
	BigPrimes     uint64
}

func (s *Stats) add(o Stats) {
	s.Segments += o.Segments
	s.SievingPrimes += o.SievingPrimes
	s.SmallPrimes += o.SmallPrimes
	s.MediumPrimes += o.MediumPrimes
	s.BigPrimes += o.BigPrimes
}

// sieve walks [start, stop] one segment at a time. Sieving primes must
// be added in ascending order; adding p first sieves every segment that
// ends below p*p.
type sieve struct {
	ctx         context.Context
	start, stop uint64
	low, high   uint64 // base of the current segment and the last value it holds
	n           uint64 // segment bytes
	words       []uint64
	buf         []byte
	pre         *PreSieve
	wheel       *Wheel
	small       *eratSmall
	medium      *eratMedium
	big         *eratBig
	consume     func(*Segment) error
	onSegment   func(span uint64)
	seg         Segment
	done        bool
	err         error
	segments    uint64
	sieving     uint64
}

func newSieve(ctx context.Context, start, stop uint64, opt Options, consume func(*Segment) error) (*sieve, error) {
	s := &sieve{
		ctx:       ctx,
		start:     max(start, 7),
		stop:      stop,
		pre:       opt.PreSieve,
		wheel:     opt.Wheel,
		consume:   consume,
		onSegment: opt.OnSegment,
	}
	if s.start > s.stop {
		s.done = true
		return s, nil
	}

	rem := s.start % 30
	if rem <= 6 {
		rem += 30
	}
	s.low = s.start - rem
	n := opt.SegmentBytes
	if need := (stop-s.low)/30 + 1; need < n {
		n = (need + 7) &^ 7
	}
	words, err := allocWords(int(n / 8))
	if err != nil {
		return nil, err
	}
	s.n = n
	s.words = words
	s.buf = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
	s.high = s.low + 30*n + 1

	sqrtStop := isqrt(stop)
	s.small = newEratSmall(wheel30)
	if s.medium, err = newEratMedium(s.wheel, n, min(sqrtStop, 30*n)); err != nil {
		return nil, err
	}
	if s.big, err = newEratBig(s.wheel, n, sqrtStop); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sieve) addSievingPrime(p uint64) {
	for !s.done && p*p > s.high {
		s.sieveSegment()
	}
	if s.done {
		return
	}

	t := classify(p, s.n)
	w := s.wheel
	if t == tierSmall {
		w = wheel30
	}
	m, wi, ok := w.First(p, s.low+7, s.stop)
	if !ok {
		return
	}
	sp, idx := stride(p), byteOffset(m, s.low)
	switch t {
	case tierSmall:
		s.small.add(sp, idx, wi)
	case tierMedium:
		s.medium.add(sp, idx, wi)
	default:
		s.big.add(sp, idx, wi)
	}
	s.sieving++
}

func (s *sieve) finish() {
	for !s.done {
		s.sieveSegment()
	}
}

func (s *sieve) fail(err error) {
	s.err = err
	s.done = true
}

func (s *sieve) sieveSegment() {
	if err := s.ctx.Err(); err != nil {
		s.fail(err)
		return
	}

	s.pre.Copy(s.buf, s.low)
	s.pre.restore(s.buf, s.low)
	s.small.crossOff(s.buf)
	s.medium.crossOff(s.buf)
	s.big.crossOff(s.buf)

	last := s.high >= s.stop
	n := s.n
	if s.low+7 < s.start {
		s.clipLow()
	}
	if last {
		n = s.clipHigh()
	}
	s.seg = Segment{Low: s.low, Bytes: s.buf[:n], Words: s.words[:(n+7)/8]}
	s.segments++
	if err := s.consume(&s.seg); err != nil {
		s.fail(err)
		return
	}
	if s.onSegment != nil {
		s.onSegment(30 * n)
	}
	if last {
		s.done = true
		return
	}
	s.low += 30 * s.n
	s.high += 30 * s.n
}

// clipLow clears the bits below start in the first segment.
func (s *sieve) clipLow() {
	for i := uint64(0); i < s.n; i++ {
		base := s.low + 30*i
		if base+7 >= s.start {
			return
		}
		for b, v := range bitValues {
			if base+v < s.start {
				s.buf[i] &^= 1 << uint(b)
			}
		}
	}
}

// clipHigh clears the bits above stop in the last segment and returns
// the number of bytes still in use.
func (s *sieve) clipHigh() uint64 {
	if s.stop < s.low+7 {
		clear(s.buf)
		return 0
	}
	last := byteOffset(s.stop, s.low)
	base := s.low + 30*last
	for b, v := range bitValues {
		if base+v > s.stop {
			s.buf[last] &^= 1 << uint(b)
		}
	}
	clear(s.buf[last+1:])
	return last + 1
}

func (s *sieve) stats() Stats {
	st := Stats{Segments: s.segments, SievingPrimes: s.sieving}
	if s.small != nil {
		st.SmallPrimes = uint64(s.small.len())
		st.MediumPrimes = uint64(s.medium.len())
		st.BigPrimes = uint64(s.big.len())
	}
	return st
}
