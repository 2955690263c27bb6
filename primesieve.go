// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package primesieve generates, counts and sums the primes in a range
// of uint64 with a segmented Sieve of Eratosthenes.
//
// The sieve stores 30 numbers per byte, removes the multiples of the
// smallest primes by copying a precomputed pattern and crosses off the
// rest with a modulo 210 wheel. Sieving primes are sorted into three
// tiers by size so that each segment only touches the primes that have
// multiples in it. Large ranges are split into partitions that are
// sieved concurrently, one goroutine each.
package primesieve

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync"
	"sync/atomic"

	"leb.io/primesieve/internal/soe"
)

// MaxStop is the largest stop value accepted.
const MaxStop = soe.MaxStop

// The main data structure of the package. Configuration and counters
// are public.
type PrimeSieve struct {
	Config                // config data, Threads and SegmentBytes resolved
	Counters              // stats
	mu             sync.Mutex
	opt            soe.Options
	hash           func(uint64) uint64
	minThreadRange uint64
	done, total    atomic.Uint64
}

// Counters accumulate over every run of a PrimeSieve.
type Counters struct {
	Runs          int // calls that sieved
	Partitions    int // partitions sieved
	Segments      int // segments sieved, generator segments excluded
	SievingPrimes int // sieving primes registered
	SmallPrimes   int // of which crossed off by the small tier
	MediumPrimes  int
	BigPrimes     int
}

// New returns a PrimeSieve for cfg. Zero Threads and SegmentBytes are
// replaced by values read from the CPU.
func New(cfg Config) (*PrimeSieve, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Threads == 0 {
		cfg.Threads = cpuThreads()
	}
	if cfg.SegmentBytes == 0 {
		cfg.SegmentBytes = l1dBytes()
	}
	cfg.SegmentBytes = (cfg.SegmentBytes + 7) &^ 7

	pre, err := soe.NewPreSieve(uint64(cfg.PreSieve))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	w, err := soe.WheelFor(uint64(cfg.Wheel))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	h, err := setHash(cfg.HashName)
	if err != nil {
		return nil, err
	}
	ps := &PrimeSieve{
		Config:         cfg,
		opt:            soe.Options{SegmentBytes: uint64(cfg.SegmentBytes), PreSieve: pre, Wheel: w},
		hash:           h,
		minThreadRange: MinThreadRange,
	}
	return ps, nil
}

func (ps *PrimeSieve) count(t *soe.Tally, parts int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.Runs++
	ps.Partitions += parts
	ps.Segments += int(t.Segments)
	ps.SievingPrimes += int(t.SievingPrimes)
	ps.SmallPrimes += int(t.SmallPrimes)
	ps.MediumPrimes += int(t.MediumPrimes)
	ps.BigPrimes += int(t.BigPrimes)
}

// Get the value of one of the counters.
func (ps *PrimeSieve) GetCounter(s string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	switch s {
	case "runs":
		return ps.Runs
	case "partitions":
		return ps.Partitions
	case "segments":
		return ps.Segments
	case "sieving":
		return ps.SievingPrimes
	case "small":
		return ps.SmallPrimes
	case "medium":
		return ps.MediumPrimes
	case "big":
		return ps.BigPrimes
	default:
		panic("GetCounter")
	}
}

// Status returns the fraction of the range of the last run sieved so far.
func (ps *PrimeSieve) Status() float64 {
	t := ps.total.Load()
	if t == 0 {
		return 0
	}
	return min(float64(ps.done.Load())/float64(t), 1)
}

// Find sieves [start, stop] and computes what flags select.
func (ps *PrimeSieve) Find(ctx context.Context, start, stop uint64, flags Flags) (Result, error) {
	if flags&^(CountPrimes|CountTuplets|SumPrimes|DigestPrimes) != 0 || flags == 0 {
		return Result{}, fmt.Errorf("%w: %#x", ErrInvalidFlags, flags)
	}
	t, err := ps.run(ctx, start, stop, flags, ps.Threads, nil)
	if err != nil {
		return Result{}, err
	}
	return resultOf(&t, flags), nil
}

// Count returns the number of primes in [start, stop].
func (ps *PrimeSieve) Count(ctx context.Context, start, stop uint64) (uint64, error) {
	r, err := ps.Find(ctx, start, stop, CountPrimes)
	return r.Count, err
}

// Sum returns the sum of the primes in [start, stop].
func (ps *PrimeSieve) Sum(ctx context.Context, start, stop uint64) (Uint128, error) {
	r, err := ps.Find(ctx, start, stop, SumPrimes)
	return r.Sum, err
}

// Digest returns the sum of the hashes of the primes in [start, stop]
// modulo 2^64. It does not depend on the number of threads.
func (ps *PrimeSieve) Digest(ctx context.Context, start, stop uint64) (uint64, error) {
	r, err := ps.Find(ctx, start, stop, DigestPrimes)
	return r.Digest, err
}

// ForEach calls fn with every prime in [start, stop] until fn returns
// true. With more than one thread the primes of each partition arrive in
// ascending order but partitions may interleave; fn is never called
// concurrently. Primes delivered before an error are valid.
// A panic in fn is returned as ErrWorkerFailure.
func (ps *PrimeSieve) ForEach(ctx context.Context, start, stop uint64, fn func(p uint64) (stop bool)) error {
	return ps.forEach(ctx, start, stop, ps.Threads, fn)
}

func (ps *PrimeSieve) forEach(ctx context.Context, start, stop uint64, threads int, fn func(uint64) bool) error {
	_, err := ps.run(ctx, start, stop, soe.CallbackPrimes, threads, func(batch []uint64) bool {
		for _, p := range batch {
			if fn(p) {
				return true
			}
		}
		return false
	})
	return err
}

// Primes returns the primes in [start, stop] in ascending order.
func (ps *PrimeSieve) Primes(ctx context.Context, start, stop uint64) ([]uint64, error) {
	var v []uint64
	err := ps.forEach(ctx, start, stop, 1, func(p uint64) bool {
		v = append(v, p)
		return false
	})
	return v, err
}

// All returns the primes in [start, stop] as an ascending sequence that
// sieves as it is consumed. A failure is yielded once, as the last pair.
func (ps *PrimeSieve) All(ctx context.Context, start, stop uint64) iter.Seq2[uint64, error] {
	return func(yield func(uint64, error) bool) {
		stopped, inBody := false, false
		err := ps.forEach(ctx, start, stop, 1, func(p uint64) bool {
			inBody = true
			stopped = !yield(p, nil)
			inBody = false
			return stopped
		})
		if inBody {
			panic(err)
		}
		if err != nil && !stopped {
			yield(0, err)
		}
	}
}

// nthWindow is the range below which NthPrime enumerates instead of
// counting.
const nthWindow = 1 << 22

// nthBound returns an upper bound of the nth prime (Rosser and Schoenfeld).
func nthBound(n uint64) uint64 {
	if n < 6 {
		return 13
	}
	f := float64(n)
	b := f * (math.Log(f) + math.Log(math.Log(f)))
	if b >= float64(MaxStop) {
		return MaxStop
	}
	return uint64(b) + 1
}

// NthPrime returns the nth prime, NthPrime(1) = 2. It counts primes over
// doubling ranges until the nth is passed, narrows that range by
// bisection and enumerates the rest.
func (ps *PrimeSieve) NthPrime(ctx context.Context, n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("%w: n=0", ErrInvalidRange)
	}
	var seen uint64
	start, width := uint64(0), nthBound(n)
	stop := width
	for {
		c, err := ps.Count(ctx, start, stop)
		if err != nil {
			return 0, err
		}
		if seen+c >= n {
			break
		}
		if stop == MaxStop {
			return 0, fmt.Errorf("%w: prime %d is above %d", ErrInvalidRange, n, MaxStop)
		}
		seen += c
		start = stop + 1
		if width < MaxStop/2 {
			width *= 2
		}
		stop = MaxStop
		if width-1 < MaxStop-start {
			stop = start + width - 1
		}
	}

	for stop-start > nthWindow {
		mid := start + (stop-start)/2
		c, err := ps.Count(ctx, start, mid)
		if err != nil {
			return 0, err
		}
		if seen+c >= n {
			stop = mid
		} else {
			seen += c
			start = mid + 1
		}
	}

	var p uint64
	k := n - seen
	err := ps.forEach(ctx, start, stop, 1, func(v uint64) bool {
		k--
		if k == 0 {
			p = v
			return true
		}
		return false
	})
	return p, err
}

var (
	stdOnce sync.Once
	std     *PrimeSieve
)

func defaultSieve() *PrimeSieve {
	stdOnce.Do(func() {
		var err error
		if std, err = New(DefaultConfig()); err != nil {
			panic(err)
		}
	})
	return std
}

// Count returns the number of primes in [start, stop] using DefaultConfig.
func Count(start, stop uint64) (uint64, error) {
	return defaultSieve().Count(context.Background(), start, stop)
}

// Sum returns the sum of the primes in [start, stop] using DefaultConfig.
func Sum(start, stop uint64) (Uint128, error) {
	return defaultSieve().Sum(context.Background(), start, stop)
}

// Primes returns the primes in [start, stop] using DefaultConfig.
func Primes(start, stop uint64) ([]uint64, error) {
	return defaultSieve().Primes(context.Background(), start, stop)
}

// NthPrime returns the nth prime using DefaultConfig.
func NthPrime(n uint64) (uint64, error) {
	return defaultSieve().NthPrime(context.Background(), n)
}
