// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import "fmt"

// PreSieve holds a sieve pattern with the multiples of the primes in
// [7, Limit] already removed. The pattern repeats every Product bytes,
// Product being the product of those primes.
type PreSieve struct {
	Limit   uint64
	Primes  []uint64
	Product uint64
	buf     []byte
}

// NewPreSieve builds the pattern for limit, one of 7, 11, 13, 17 or 19.
func NewPreSieve(limit uint64) (*PreSieve, error) {
	ps := &PreSieve{Limit: limit, Product: 1}
	for _, p := range []uint64{7, 11, 13, 17, 19} {
		if p <= limit {
			ps.Primes = append(ps.Primes, p)
			ps.Product *= p
		}
	}
	if limit > 19 || len(ps.Primes) == 0 || ps.Primes[len(ps.Primes)-1] != limit {
		return nil, fmt.Errorf("soe: unsupported presieve limit %d", limit)
	}

	buf, err := allocBytes(int(ps.Product))
	if err != nil {
		return nil, err
	}
	for i := range buf {
		b := uint8(0xff)
		for bit, v := range bitValues {
			n := 30*uint64(i) + v
			for _, p := range ps.Primes {
				if n%p == 0 {
					b &^= 1 << uint(bit)
					break
				}
			}
		}
		buf[i] = b
	}
	ps.buf = buf
	return ps, nil
}

// Copy fills dst, a segment based at low, with the pattern.
func (ps *PreSieve) Copy(dst []byte, low uint64) {
	off := (low / 30) % ps.Product
	n := copy(dst, ps.buf[off:])
	for n < len(dst) {
		n += copy(dst[n:], ps.buf)
	}
}

// restore sets the bits of the presieve primes themselves, which the
// pattern removed as multiples. Only the segment based at 0 holds them.
func (ps *PreSieve) restore(dst []byte, low uint64) {
	if low != 0 {
		return
	}
	for _, p := range ps.Primes {
		i := byteOffset(p, 0)
		if i < uint64(len(dst)) {
			dst[i] |= 1 << uint(bitIndex[p%30])
		}
	}
}
