// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve_test

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "leb.io/primesieve"
	"leb.io/primesieve/internal/sievetest"
)

var ctx = context.Background()

func newSieve(t testing.TB, threads, segment int) *PrimeSieve {
	cfg := DefaultConfig()
	cfg.Threads = threads
	cfg.SegmentBytes = segment
	ps, err := New(cfg)
	require.NoError(t, err)
	SetMinThreadRange(ps, 1000)
	return ps
}

func TestBoundaries(t *testing.T) {
	n, err := Count(1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	s, err := Sum(1, 10)
	require.NoError(t, err)
	assert.Equal(t, Uint128{0, 17}, s)

	n, err = Count(0, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	ps, err := Primes(10, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint64{11, 13, 17, 19}, ps)

	n, err = Count(2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = Count(10, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	ps, err = Primes(0, 30)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, ps)
}

func TestCount1e8(t *testing.T) {
	if testing.Short() {
		t.Skip("sieves 1e8")
	}
	n, err := Count(2, 1e8)
	require.NoError(t, err)
	assert.Equal(t, uint64(5761455), n)
}

func TestInvalidRange(t *testing.T) {
	_, err := Count(10, 1)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	_, err = Count(0, MaxStop+1)
	assert.True(t, errors.Is(err, ErrInvalidRange))
	_, err = NthPrime(0)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestThreadsAgree(t *testing.T) {
	var want Result
	for threads := 1; threads <= 8; threads++ {
		ps := newSieve(t, threads, 1024)
		got, err := ps.Find(ctx, 1000, 3000000, CountPrimes|CountTuplets|SumPrimes|DigestPrimes)
		require.NoError(t, err)
		if threads == 1 {
			want = got
			continue
		}
		assert.Equal(t, want, got, "threads=%d", threads)
		assert.Greater(t, ps.GetCounter("partitions"), 1)
	}
	assert.Equal(t, uint64(216816-168), want.Count)
}

// Twins 30k-1, 30k+1 share a segment byte, as do the smallest tuplets,
// so a partition boundary must never split one.
func TestTupletsAcrossPartitions(t *testing.T) {
	var tests = []struct {
		start, stop uint64
		minRange    uint64
		threads     []int
	}{
		{0, 119, 1, []int{2, 3, 4, 8}},
		{3, 250, 1, []int{2, 5, 16}},
		{0, 20000279, MinThreadRange, []int{2}},
	}
	for _, tc := range tests {
		if tc.stop > 1e6 && testing.Short() {
			continue
		}
		ps := newSieve(t, 1, 0)
		want, err := ps.Find(ctx, tc.start, tc.stop, CountPrimes|CountTuplets)
		require.NoError(t, err)
		if tc.stop < 1e6 {
			k := sievetest.Tuplets(tc.start, tc.stop)
			assert.Equal(t, k[0], want.Twins, "[%d, %d]", tc.start, tc.stop)
			assert.Equal(t, k[1], want.Triplets, "[%d, %d]", tc.start, tc.stop)
			assert.Equal(t, k[2], want.Quadruplets, "[%d, %d]", tc.start, tc.stop)
		}
		for _, threads := range tc.threads {
			ps := newSieve(t, threads, 0)
			SetMinThreadRange(ps, tc.minRange)
			got, err := ps.Find(ctx, tc.start, tc.stop, CountPrimes|CountTuplets)
			require.NoError(t, err)
			assert.Equal(t, want, got, "[%d, %d] threads=%d", tc.start, tc.stop, threads)
			assert.Greater(t, ps.GetCounter("partitions"), 1)
		}
	}
}

func TestSumMatchesReference(t *testing.T) {
	ps := newSieve(t, 4, 512)
	for _, r := range []sievetest.Range{{Start: 0, Stop: 1e6}, {Start: 1e12, Stop: 1e12 + 1e5}} {
		hi, lo := sievetest.Sum(sievetest.Reference(r.Start, r.Stop))
		got, err := ps.Sum(ctx, r.Start, r.Stop)
		require.NoError(t, err)
		assert.Equal(t, Uint128{hi, lo}, got, "range %v", r)
	}
}

func TestSumIsWide(t *testing.T) {
	if testing.Short() {
		t.Skip("sieves all primes below 2^32")
	}
	ps := newSieve(t, 1, 0)
	lo := uint64(MaxStop - 200000)
	got, err := ps.Sum(ctx, lo, MaxStop)
	require.NoError(t, err)
	n, err := ps.Count(ctx, lo, MaxStop)
	require.NoError(t, err)
	require.True(t, n > 1)
	assert.NotZero(t, got.Hi)

	want := new(big.Int)
	for _, p := range sievetest.Reference(lo, MaxStop) {
		want.Add(want, new(big.Int).SetUint64(p))
	}
	assert.Equal(t, want.String(), got.String())
}

func TestForEachParallel(t *testing.T) {
	ps := newSieve(t, 4, 256)
	var got []uint64
	err := ps.ForEach(ctx, 0, 200000, func(p uint64) bool {
		got = append(got, p)
		return false
	})
	require.NoError(t, err)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, sievetest.Reference(0, 200000), got)
}

func TestForEachStop(t *testing.T) {
	for _, threads := range []int{1, 4} {
		ps := newSieve(t, threads, 256)
		var n int
		err := ps.ForEach(ctx, 0, 1e7, func(p uint64) bool {
			n++
			return n == 10
		})
		require.NoError(t, err)
		assert.Equal(t, 10, n, "threads=%d", threads)
	}
}

func TestWorkerFailure(t *testing.T) {
	for _, threads := range []int{1, 4} {
		ps := newSieve(t, threads, 256)
		err := ps.ForEach(ctx, 0, 100000, func(p uint64) bool {
			if p > 50000 {
				panic("callback")
			}
			return false
		})
		require.Error(t, err, "threads=%d", threads)
		assert.True(t, errors.Is(err, ErrWorkerFailure), "threads=%d: %v", threads, err)
	}

	ps := newSieve(t, 1, 256)
	assert.Panics(t, func() {
		for p := range ps.All(ctx, 0, 1000) {
			if p > 500 {
				panic("loop body")
			}
		}
	})
}

func TestAll(t *testing.T) {
	ps := newSieve(t, 1, 64)
	var got []uint64
	for p, err := range ps.All(ctx, 100, 1e6) {
		require.NoError(t, err)
		if p > 200 {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, sievetest.Reference(100, 200), got)

	for _, err := range ps.All(ctx, 5, 1) {
		assert.True(t, errors.Is(err, ErrInvalidRange))
	}
}

func TestNthPrime(t *testing.T) {
	var tests = []struct {
		n, p uint64
	}{
		{1, 2}, {2, 3}, {3, 5}, {4, 7}, {5, 11}, {6, 13}, {25, 97},
		{10001, 104743}, {1000000, 15485863},
	}
	ps := newSieve(t, 2, 0)
	for _, tc := range tests {
		p, err := ps.NthPrime(ctx, tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.p, p, "n=%d", tc.n)
	}
}

func TestDigest(t *testing.T) {
	for _, h := range []string{"m3", "city"} {
		var digests []uint64
		for _, threads := range []int{1, 3, 8} {
			cfg := DefaultConfig()
			cfg.Threads = threads
			cfg.HashName = h
			cfg.SegmentBytes = 2048
			ps, err := New(cfg)
			require.NoError(t, err)
			SetMinThreadRange(ps, 1000)
			d, err := ps.Digest(ctx, 0, 1e6)
			require.NoError(t, err)
			digests = append(digests, d)
		}
		assert.Equal(t, digests[0], digests[1], "hash %s", h)
		assert.Equal(t, digests[0], digests[2], "hash %s", h)
	}
}

func TestCanceled(t *testing.T) {
	c, cancel := context.WithCancel(ctx)
	cancel()
	for _, threads := range []int{1, 4} {
		ps := newSieve(t, threads, 0)
		_, err := ps.Count(c, 0, 1e10)
		assert.True(t, errors.Is(err, context.Canceled), "threads=%d err=%v", threads, err)
	}
}

func TestFlags(t *testing.T) {
	ps := newSieve(t, 1, 0)
	_, err := ps.Find(ctx, 0, 10, 0)
	assert.True(t, errors.Is(err, ErrInvalidFlags))
	_, err = ps.Find(ctx, 0, 10, 1<<20)
	assert.True(t, errors.Is(err, ErrInvalidFlags))

	r, err := ps.Find(ctx, 0, 1e6, CountTwins)
	require.NoError(t, err)
	assert.Equal(t, uint64(8169), r.Twins)
	assert.Zero(t, r.Count)
}

func TestConfig(t *testing.T) {
	var tests = []struct {
		f  func(*Config)
		ok bool
	}{
		{func(c *Config) {}, true},
		{func(c *Config) { c.Threads = -1 }, false},
		{func(c *Config) { c.SegmentBytes = 4 }, false},
		{func(c *Config) { c.SegmentBytes = MaxSegmentBytes + 1 }, false},
		{func(c *Config) { c.SegmentBytes = 100 }, true},
		{func(c *Config) { c.PreSieve = 23 }, false},
		{func(c *Config) { c.PreSieve = 19 }, true},
		{func(c *Config) { c.Wheel = 60 }, false},
		{func(c *Config) { c.Wheel = 2310; c.PreSieve = 7 }, false},
		{func(c *Config) { c.Wheel = 2310; c.PreSieve = 11 }, true},
		{func(c *Config) { c.HashName = "sha" }, false},
	}
	for i, tc := range tests {
		cfg := DefaultConfig()
		tc.f(&cfg)
		ps, err := New(cfg)
		if !tc.ok {
			assert.True(t, errors.Is(err, ErrInvalidConfig), "case %d: %v", i, err)
			continue
		}
		require.NoError(t, err, "case %d", i)
		assert.Greater(t, ps.Threads, 0)
		assert.Zero(t, ps.SegmentBytes%8)
		n, err := ps.Count(ctx, 0, 100000)
		require.NoError(t, err)
		assert.Equal(t, uint64(9592), n, "case %d", i)
	}
}

func TestCountersAndStatus(t *testing.T) {
	ps := newSieve(t, 2, 16)
	_, err := ps.Count(ctx, 0, 1e6)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.GetCounter("runs"))
	assert.Equal(t, 2, ps.GetCounter("partitions"))
	assert.NotZero(t, ps.GetCounter("segments"))
	assert.NotZero(t, ps.GetCounter("big"))
	assert.Equal(t, 1.0, ps.Status())
	assert.Panics(t, func() { ps.GetCounter("nope") })
}

func TestVerify(t *testing.T) {
	ps := newSieve(t, 3, 64)
	vs, err := sievetest.Verify(ctx, ps, sievetest.RandomRanges(50, 1e9, 20000), false, false)
	require.NoError(t, err)
	assert.False(t, vs.Failed, "failed at %v", vs.Bad)
	assert.Equal(t, 50, vs.Ranges)
}

func TestUint128(t *testing.T) {
	u := Uint128{Hi: 1, Lo: 5}
	assert.Equal(t, "18446744073709551621", u.String())
	_, ok := u.Uint64()
	assert.False(t, ok)
	v, ok := Uint128{Lo: 7}.Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), v)
}

func BenchmarkCount1e9(b *testing.B) {
	ps := newSieve(b, 0, 0)
	for i := 0; i < b.N; i++ {
		if _, err := ps.Count(ctx, 0, 1e9); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrimes1e7(b *testing.B) {
	ps := newSieve(b, 1, 0)
	for i := 0; i < b.N; i++ {
		if _, err := ps.Primes(ctx, 0, 1e7); err != nil {
			b.Fatal(err)
		}
	}
}
