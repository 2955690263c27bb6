// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import (
	"fmt"
	"math"
)

// Byte i of a segment based at low holds low+30*i+bitValues[b] in bit b.
var bitValues = [8]uint64{7, 11, 13, 17, 19, 23, 29, 31}

// bitIndex maps n%30 to the bit holding n, -1 when n shares a factor with 30.
var bitIndex [30]int8

type wheelElement struct {
	unsetBit uint8  // clears the bit of the current multiple
	delta    uint8  // multiplier step to the next multiple
	correct  uint8  // bytes added by the change of bit position
	next     uint16 // element of the next multiple
}

// Wheel holds the tables for a modulus M that is a multiple of 30.
// Multiples p*q of a sieving prime are visited only for q coprime to M,
// so every prime factor of M above 5 has to be presieved.
type Wheel struct {
	Modulus  uint64
	Residues []uint64 // coprime to Modulus, ascending
	Deltas   []uint64 // distance from Residues[i] to the next residue
	MaxDelta uint64
	index    []int32 // residue to position in Residues, -1 otherwise
	advance  []uint8 // distance from r to the first residue >= r
	elements []wheelElement
}

var (
	wheel30   *Wheel
	wheel210  *Wheel
	wheel2310 *Wheel
)

func init() {
	for i := range bitIndex {
		bitIndex[i] = -1
	}
	for b, v := range bitValues {
		bitIndex[v%30] = int8(b)
	}
	wheel30 = mustWheel(30)
	wheel210 = mustWheel(210)
	wheel2310 = mustWheel(2310)
}

func mustWheel(m uint64) *Wheel {
	w, err := NewWheel(m)
	if err != nil {
		panic(err)
	}
	return w
}

// WheelFor returns the shared read-only wheel for a supported modulus.
func WheelFor(m uint64) (*Wheel, error) {
	switch m {
	case 30:
		return wheel30, nil
	case 210:
		return wheel210, nil
	case 2310:
		return wheel2310, nil
	}
	return nil, fmt.Errorf("soe: unsupported wheel modulus %d", m)
}

// LargestPrime returns the largest prime factor of the modulus.
func (w *Wheel) LargestPrime() uint64 {
	switch w.Modulus {
	case 210:
		return 7
	case 2310:
		return 11
	}
	return 5
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// NewWheel builds the tables for modulus m, one of 30, 210 or 2310.
func NewWheel(m uint64) (*Wheel, error) {
	if m != 30 && m != 210 && m != 2310 {
		return nil, fmt.Errorf("soe: unsupported wheel modulus %d", m)
	}
	w := &Wheel{Modulus: m}
	w.index = make([]int32, m)
	for r := uint64(0); r < m; r++ {
		w.index[r] = -1
		if gcd(r, m) == 1 {
			w.index[r] = int32(len(w.Residues))
			w.Residues = append(w.Residues, r)
		}
	}
	n := len(w.Residues)
	w.Deltas = make([]uint64, n)
	for i, r := range w.Residues {
		next := m + w.Residues[0]
		if i+1 < n {
			next = w.Residues[i+1]
		}
		w.Deltas[i] = next - r
		if w.Deltas[i] > w.MaxDelta {
			w.MaxDelta = w.Deltas[i]
		}
	}
	w.advance = make([]uint8, m)
	for r := uint64(0); r < m; r++ {
		d := uint64(0)
		for w.index[(r+d)%m] < 0 {
			d++
		}
		w.advance[r] = uint8(d)
	}

	w.elements = make([]wheelElement, 8*n)
	for pi, rp := range bitValues {
		for qi := 0; qi < n; qi++ {
			qn := (qi + 1) % n
			mb := bitIndex[(rp*w.Residues[qi])%30]
			mbn := bitIndex[(rp*w.Residues[qn])%30]
			d := w.Deltas[qi]
			num := bitValues[mb] + rp*d - bitValues[mbn]
			if num%30 != 0 {
				return nil, fmt.Errorf("soe: wheel %d: bad correction for %d*%d", m, rp, w.Residues[qi])
			}
			w.elements[pi*n+qi] = wheelElement{
				unsetBit: ^uint8(1 << uint(mb)),
				delta:    uint8(d),
				correct:  uint8(num / 30),
				next:     uint16(pi*n + qn),
			}
		}
	}
	return w, nil
}

// First returns the first multiple m = p*q >= max(p*p, low) with q coprime
// to the modulus, together with its element index. ok is false when m
// would exceed stop. p must be coprime to 30.
func (w *Wheel) First(p, low, stop uint64) (m uint64, wi uint32, ok bool) {
	q := low / p
	if q*p < low {
		q++
	}
	if q < p {
		q = p
	}
	q += uint64(w.advance[q%w.Modulus])
	if q > stop/p {
		return 0, 0, false
	}
	pi := uint32(bitIndex[p%30])
	wi = pi*uint32(len(w.Residues)) + uint32(w.index[q%w.Modulus])
	return p * q, wi, true
}

// stride returns p/30 rounded so that p = 30*stride + bitValues[bit of p].
func stride(p uint64) uint64 {
	return (p - bitValues[bitIndex[p%30]]) / 30
}

// byteOffset returns the byte of a segment based at low holding n.
func byteOffset(n, low uint64) uint64 {
	return (n - low - 7) / 30
}

// isqrt returns floor(sqrt(n)).
func isqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	if r > math.MaxUint32 {
		r = math.MaxUint32
	}
	for r*r > n {
		r--
	}
	for r < math.MaxUint32 && (r+1)*(r+1) <= n {
		r++
	}
	return r
}
