// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

// eratSmall crosses off primes with many multiples per segment.
// Every prime is visited in every segment.
type eratSmall struct {
	wheel  *Wheel
	primes []wheelPrime
}

func newEratSmall(w *Wheel) *eratSmall {
	return &eratSmall{wheel: w}
}

func (e *eratSmall) add(sp, index uint64, wi uint32) {
	e.primes = append(e.primes, wheelPrime{sp: uint32(sp), index: uint32(index), wi: wi})
}

func (e *eratSmall) len() int {
	return len(e.primes)
}

func (e *eratSmall) crossOff(sieve []byte) {
	n := uint32(len(sieve))
	els := e.wheel.elements
	for i := range e.primes {
		wp := &e.primes[i]
		sp, idx, wi := wp.sp, wp.index, wp.wi
		for idx < n {
			el := els[wi]
			sieve[idx] &= el.unsetBit
			idx += sp*uint32(el.delta) + uint32(el.correct)
			wi = uint32(el.next)
		}
		wp.index, wp.wi = idx-n, wi
	}
}
