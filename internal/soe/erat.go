// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

// wheelPrime is the per sieving prime state shared by all tiers.
type wheelPrime struct {
	sp    uint32 // p/30, bytes per unit of multiplier
	index uint32 // byte of the next multiple within its segment
	wi    uint32 // wheel element of the next multiple
}

// tier is the crossing off strategy of a sieving prime, fixed when the
// prime is registered.
type tier uint8

const (
	tierSmall tier = iota
	tierMedium
	tierBig
)

func (t tier) String() string {
	switch t {
	case tierSmall:
		return "small"
	case tierMedium:
		return "medium"
	case tierBig:
		return "big"
	}
	return "unknown"
}

// classify picks the tier from the number of multiples p has per segment.
func classify(p, sieveBytes uint64) tier {
	switch {
	case p <= sieveBytes*3/2:
		return tierSmall
	case p <= sieveBytes*30:
		return tierMedium
	}
	return tierBig
}

// windowFor returns a power of two number of buckets so that no prime
// up to maxPrime files its next multiple a full window ahead.
func windowFor(maxPrime uint64, w *Wheel, sieveBytes uint64) uint64 {
	adv := (maxPrime/30+1)*w.MaxDelta + 32
	n := adv/sieveBytes + 2
	s := uint64(1)
	for s < n {
		s <<= 1
	}
	return s
}
