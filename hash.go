// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"fmt"

	"github.com/dataence/cityhash"
	"github.com/spaolacci/murmur3"
	"leb.io/aeshash"
)

const digestSeed = 0x9ae16a3b2f90404f

// can be inlined
func ui64tob(b []byte, v uint64) {
	b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56)
}

func m3(p uint64) uint64 {
	var b [8]byte
	ui64tob(b[:], p)
	return murmur3.Sum64WithSeed(b[:], uint32(digestSeed&0xffffffff))
}

func aes(p uint64) uint64 {
	var b [8]byte
	ui64tob(b[:], p)
	return aeshash.Hash(b[:], digestSeed)
}

func city(p uint64) uint64 {
	var b [8]byte
	ui64tob(b[:], p)
	return cityhash.CityHash64WithSeed(b[:], 8, digestSeed)
}

// Select the hash function applied to each prime by Digest.
func setHash(hashName string) (func(uint64) uint64, error) {
	switch hashName {
	case "", "m3":
		return m3, nil
	case "aes":
		return aes, nil
	case "city":
		return city, nil
	}
	return nil, fmt.Errorf("%w: unknown hash function %q", ErrInvalidConfig, hashName)
}
