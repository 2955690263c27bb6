// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"math/big"

	"leb.io/primesieve/internal/soe"
)

// Flags select what Find computes.
type Flags = soe.Flags

const (
	CountPrimes      = soe.CountPrimes
	CountTwins       = soe.CountTwins
	CountTriplets    = soe.CountTriplets
	CountQuadruplets = soe.CountQuadruplets
	CountTuplets     = soe.CountTuplets
	SumPrimes        = soe.SumPrimes
	DigestPrimes     = soe.DigestPrimes
)

// Uint128 is an unsigned 128 bit integer.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint64 returns the value and whether it fits in 64 bits.
func (u Uint128) Uint64() (uint64, bool) {
	return u.Lo, u.Hi == 0
}

// Big returns the value as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	if u.Hi == 0 {
		return new(big.Int).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}

// Result is what Find computed for a range. Fields not selected by the
// flags are zero.
type Result struct {
	Count       uint64
	Twins       uint64
	Triplets    uint64
	Quadruplets uint64
	Sum         Uint128
	Digest      uint64
}

func resultOf(t *soe.Tally, flags Flags) Result {
	var r Result
	if flags&CountPrimes != 0 {
		r.Count = t.Counts[0]
	}
	if flags&CountTwins != 0 {
		r.Twins = t.Counts[1]
	}
	if flags&CountTriplets != 0 {
		r.Triplets = t.Counts[2]
	}
	if flags&CountQuadruplets != 0 {
		r.Quadruplets = t.Counts[3]
	}
	r.Sum = Uint128{t.SumHi, t.SumLo}
	r.Digest = t.Digest
	return r
}
