// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package sievetest checks prime sieves against a slow but independent
// reference built on Miller-Rabin.
package sievetest

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/cznic/mathutil"
)

// Sieve is the part of a prime sieve the harness exercises.
type Sieve interface {
	Count(ctx context.Context, start, stop uint64) (uint64, error)
	Primes(ctx context.Context, start, stop uint64) ([]uint64, error)
}

// Reference returns the primes in [start, stop] by testing every number.
func Reference(start, stop uint64) []uint64 {
	var ps []uint64
	for n := start; n <= stop; n++ {
		if mathutil.IsPrimeUint64(n) {
			ps = append(ps, n)
		}
		if n == stop {
			break
		}
	}
	return ps
}

// Tuplets counts the twins, triplets and quadruplets that lie entirely
// in [start, stop].
func Tuplets(start, stop uint64) (k [3]uint64) {
	isp := func(n uint64) bool { return n >= start && n <= stop && mathutil.IsPrimeUint64(n) }
	for _, p := range Reference(start, stop) {
		if isp(p + 2) {
			k[0]++
		}
		if isp(p+6) && (isp(p+2) || isp(p+4)) {
			k[1]++
		}
		if isp(p+2) && isp(p+6) && isp(p+8) {
			k[2]++
		}
	}
	return k
}

// Sum returns the 128 bit sum of ps.
func Sum(ps []uint64) (hi, lo uint64) {
	var c uint64
	for _, p := range ps {
		lo, c = bits.Add64(lo, p, 0)
		hi += c
	}
	return hi, lo
}

var r = rand.Float64

// rbetween returns a random value in [a, b].
func rbetween(a, b uint64) uint64 {
	return a + uint64(r()*float64(b-a))
}

// Range is a closed interval to check.
type Range struct {
	Start, Stop uint64
}

// RandomRanges returns n ranges of at most width numbers starting below limit.
func RandomRanges(n int, limit, width uint64) []Range {
	rs := make([]Range, n)
	for i := range rs {
		s := rbetween(0, limit)
		rs[i] = Range{s, s + rbetween(0, width)}
	}
	return rs
}

// VerifyStats describe a run of Verify.
type VerifyStats struct {
	Ranges int
	Primes uint64
	Failed bool
	Bad    Range
}

// Verify checks s against the reference over every range and stops at
// the first mismatch.
func Verify(ctx context.Context, s Sieve, rs []Range, verbose, progress bool) (*VerifyStats, error) {
	var vs VerifyStats
	if progress {
		fmt.Printf("V: ")
	}
	onep := len(rs) / 100
	thresh := onep
	for i, rg := range rs {
		want := Reference(rg.Start, rg.Stop)
		n, err := s.Count(ctx, rg.Start, rg.Stop)
		if err != nil {
			return &vs, err
		}
		ps, err := s.Primes(ctx, rg.Start, rg.Stop)
		if err != nil {
			return &vs, err
		}
		vs.Ranges++
		if n != uint64(len(want)) || !equal(ps, want) {
			vs.Failed = true
			vs.Bad = rg
			if verbose {
				fmt.Printf("Verify: FAIL [%d, %d] count=%d primes=%d want=%d\n", rg.Start, rg.Stop, n, len(ps), len(want))
			}
			return &vs, nil
		}
		vs.Primes += n
		if progress && i >= thresh {
			fmt.Printf("%%")
			thresh += onep
		}
	}
	if progress {
		fmt.Printf("\n")
	}
	return &vs, nil
}

func equal(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
