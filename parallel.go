// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leb.io/primesieve/internal/soe"
)

type partition struct {
	start, stop uint64
}

// partitions splits [start, stop] into at most threads contiguous
// pieces of about the same size and at least minRange numbers. Inner
// boundaries are of the form 30k+7, the first value of a segment byte,
// so every byte and every k-tuplet inside it belongs to one piece.
// 7 itself is never a boundary.
func partitions(start, stop uint64, threads int, minRange uint64) []partition {
	n := uint64(max(threads, 1))
	if k := (stop-start)/minRange + 1; k < n {
		n = k
	}
	chunk := (stop-start)/n + 1
	chunk = (chunk + 29) / 30 * 30
	if n == 1 || stop-start < chunk {
		return []partition{{start, stop}}
	}

	var ps []partition
	lo := start
	for i := uint64(1); i < n; i++ {
		b := (start+i*chunk-7)/30*30 + 7
		if b == 7 {
			continue // (5, 7) and its tuplets are counted before the first segment
		}
		if b > stop {
			break
		}
		ps = append(ps, partition{lo, b - 1})
		lo = b
	}
	return append(ps, partition{lo, stop})
}

// find sieves one partition. A panic, in the sieve or in the callback,
// is returned as ErrWorkerFailure.
func (ps *PrimeSieve) find(ctx context.Context, i int, part partition, flags Flags, opt soe.Options, fn func([]uint64) bool) (t soe.Tally, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: partition %d [%d, %d]: %v", ErrWorkerFailure, i, part.start, part.stop, r)
		}
	}()
	return soe.Find(ctx, part.start, part.stop, flags, opt, ps.hash, fn)
}

// run sieves [start, stop] on up to threads goroutines and merges their
// tallies. With a callback, each partition delivers its primes in
// ascending batches; batches of different partitions may interleave but
// the callback is never called concurrently.
func (ps *PrimeSieve) run(ctx context.Context, start, stop uint64, flags Flags, threads int, fn func([]uint64) bool) (soe.Tally, error) {
	if start > stop || stop > MaxStop {
		return soe.Tally{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, start, stop)
	}
	parts := partitions(start, stop, threads, ps.minThreadRange)
	ps.total.Store(stop - start + 1)
	ps.done.Store(0)
	opt := ps.opt
	opt.OnSegment = func(span uint64) { ps.done.Add(span) }

	log.WithFields(logrus.Fields{
		"start":      start,
		"stop":       stop,
		"partitions": len(parts),
		"segment":    opt.SegmentBytes,
		"flags":      fmt.Sprintf("%#x", flags),
	}).Debug("sieve")

	if len(parts) == 1 {
		t, err := ps.find(ctx, 0, parts[0], flags, opt, fn)
		ps.count(&t, 1)
		if err == nil {
			ps.done.Store(ps.total.Load())
		}
		return t, err
	}

	cb := fn
	if fn != nil {
		var mu sync.Mutex
		var stopped atomic.Bool
		cb = func(batch []uint64) bool {
			mu.Lock()
			defer mu.Unlock()
			if stopped.Load() {
				return true
			}
			if fn(batch) {
				stopped.Store(true)
				return true
			}
			return false
		}
	}

	results := make([]soe.Tally, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() (err error) {
			results[i], err = ps.find(gctx, i, part, flags, opt, cb)
			if err != nil && !errors.Is(err, ErrWorkerFailure) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: partition %d [%d, %d]: %w", ErrWorkerFailure, i, part.start, part.stop, err)
			}
			log.WithFields(logrus.Fields{
				"partition": i,
				"start":     part.start,
				"stop":      part.stop,
				"segments":  results[i].Segments,
			}).Debug("partition done")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return soe.Tally{}, ctx.Err()
		}
		return soe.Tally{}, err
	}

	var t soe.Tally
	for i := range results {
		if err := t.Merge(&results[i]); err != nil {
			return soe.Tally{}, fmt.Errorf("sum of [%d, %d]: %w", start, stop, err)
		}
	}
	ps.count(&t, len(parts))
	ps.done.Store(ps.total.Load())
	return t, nil
}
