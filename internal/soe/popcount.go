// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package soe

import "github.com/willf/bitset"

// popcount returns the number of set bits in words.
func popcount(words []uint64) uint64 {
	return uint64(bitset.From(words).Count())
}

// Bit patterns of the prime k-tuplets that fit in one byte. Every twin,
// triplet and quadruplet above 7 does.
var tupletMasks = [3][]uint8{
	{0x06, 0x18, 0xc0},       // (11,13) (17,19) (29,31)
	{0x07, 0x0e, 0x1c, 0x38}, // (7,11,13) (11,13,17) (13,17,19) (17,19,23)
	{0x1e},                   // (11,13,17,19)
}

// tupletCounts[k][b] is the number of (k+2)-tuplets in byte b.
var tupletCounts [3][256]uint8

func init() {
	for k, masks := range tupletMasks {
		for b := 0; b < 256; b++ {
			for _, m := range masks {
				if uint8(b)&m == m {
					tupletCounts[k][b]++
				}
			}
		}
	}
}

func countTuplets(k int, seg []byte) uint64 {
	t := &tupletCounts[k]
	var n uint64
	for _, b := range seg {
		n += uint64(t[b])
	}
	return n
}
