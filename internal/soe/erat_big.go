// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import "container/heap"

// maxBuckets caps the ring of eratBig. Primes whose next multiple lies
// further ahead wait in a heap ordered by segment.
var maxBuckets uint64 = 1 << 15

// farPrime is a big sieving prime filed beyond the ring.
type farPrime struct {
	segment uint64
	wp      wheelPrime
}

type farHeap []farPrime

func (h farHeap) Len() int {
	return len(h)
}

func (h farHeap) Less(i, j int) bool {
	return h[i].segment < h[j].segment
}

func (h farHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *farHeap) Push(v any) {
	*h = append(*h, v.(farPrime))
}

func (h *farHeap) Pop() (v any) {
	old := *h
	*h, v = old[:len(old)-1], old[len(old)-1]
	return
}

// eratBig crosses off primes larger than a segment. Each prime has at
// most a couple of multiples per segment, so it is moved to the bucket
// of the segment holding its next multiple after every hit.
type eratBig struct {
	wheel   *Wheel
	n       uint64
	mask    uint64
	segment uint64
	buckets [][]wheelPrime
	far     farHeap
	count   int
}

func newEratBig(w *Wheel, sieveBytes, maxPrime uint64) (*eratBig, error) {
	size := min(windowFor(maxPrime, w, sieveBytes), maxBuckets)
	buckets, err := allocBuckets(int(size))
	if err != nil {
		return nil, err
	}
	return &eratBig{
		wheel:   w,
		n:       sieveBytes,
		mask:    size - 1,
		buckets: buckets,
	}, nil
}

// file puts wp in the bucket of segment seg, or in the heap when seg is
// past the ring.
func (e *eratBig) file(seg uint64, wp wheelPrime) {
	if seg-e.segment > e.mask {
		heap.Push(&e.far, farPrime{seg, wp})
		return
	}
	b := seg & e.mask
	e.buckets[b] = append(e.buckets[b], wp)
}

func (e *eratBig) add(sp, index uint64, wi uint32) {
	e.file(e.segment+index/e.n, wheelPrime{sp: uint32(sp), index: uint32(index % e.n), wi: wi})
	e.count++
}

func (e *eratBig) len() int {
	return e.count
}

// crossOff may append to the bucket it is walking, when a prime hits
// the same segment twice, so the bucket is indexed on every pass.
func (e *eratBig) crossOff(sieve []byte) {
	for len(e.far) > 0 && e.far[0].segment-e.segment <= e.mask {
		f := heap.Pop(&e.far).(farPrime)
		b := f.segment & e.mask
		e.buckets[b] = append(e.buckets[b], f.wp)
	}

	cur := e.segment & e.mask
	n := uint32(e.n)
	els := e.wheel.elements
	for i := 0; i < len(e.buckets[cur]); i++ {
		wp := e.buckets[cur][i]
		el := els[wp.wi]
		sieve[wp.index] &= el.unsetBit
		idx := wp.index + wp.sp*uint32(el.delta) + uint32(el.correct)
		e.file(e.segment+uint64(idx/n), wheelPrime{sp: wp.sp, index: idx % n, wi: uint32(el.next)})
	}
	e.buckets[cur] = e.buckets[cur][:0]
	e.segment++
}
