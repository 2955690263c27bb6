// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

// eratMedium crosses off primes with a few multiples per segment.
// Primes are kept in buckets by the segment of their next multiple
// so segments without a hit never look at them.
type eratMedium struct {
	wheel   *Wheel
	n       uint64 // segment bytes
	mask    uint64
	segment uint64 // number of the segment about to be sieved
	buckets [][]wheelPrime
	count   int
}

// maxPrime is at most 30*sieveBytes, so the ring has at most a few
// dozen buckets.
func newEratMedium(w *Wheel, sieveBytes, maxPrime uint64) (*eratMedium, error) {
	size := windowFor(maxPrime, w, sieveBytes)
	buckets, err := allocBuckets(int(size))
	if err != nil {
		return nil, err
	}
	return &eratMedium{
		wheel:   w,
		n:       sieveBytes,
		mask:    size - 1,
		buckets: buckets,
	}, nil
}

func (e *eratMedium) add(sp, index uint64, wi uint32) {
	b := (e.segment + index/e.n) & e.mask
	e.buckets[b] = append(e.buckets[b], wheelPrime{sp: uint32(sp), index: uint32(index % e.n), wi: wi})
	e.count++
}

func (e *eratMedium) len() int {
	return e.count
}

func (e *eratMedium) crossOff(sieve []byte) {
	cur := e.segment & e.mask
	bucket := e.buckets[cur]
	n := uint32(e.n)
	els := e.wheel.elements
	for _, wp := range bucket {
		idx, wi := wp.index, wp.wi
		for idx < n {
			el := els[wi]
			sieve[idx] &= el.unsetBit
			idx += wp.sp*uint32(el.delta) + uint32(el.correct)
			wi = uint32(el.next)
		}
		b := (e.segment + uint64(idx/n)) & e.mask
		e.buckets[b] = append(e.buckets[b], wheelPrime{sp: wp.sp, index: idx % n, wi: wi})
	}
	e.buckets[cur] = bucket[:0]
	e.segment++
}
