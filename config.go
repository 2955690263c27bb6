// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

const (
	MinSegmentBytes = 8
	MaxSegmentBytes = 8 << 20

	// MinThreadRange is the smallest range worth a goroutine of its own.
	MinThreadRange = 10_000_000
)

// Config holds the tuning knobs of a PrimeSieve. None of them change
// results, only speed and memory.
type Config struct {
	Threads      int    // worker goroutines, 0 for every logical core
	SegmentBytes int    // sieve array per worker, 0 for the L1 data cache size
	PreSieve     int    // multiples of primes up to PreSieve are copied from a pattern, 7 to 19
	Wheel        int    // wheel modulus for medium and big sieving primes: 30, 210 or 2310
	HashName     string // hash used by Digest: "m3", "aes" or "city"
}

// DefaultConfig returns the config used by the package level functions.
func DefaultConfig() Config {
	return Config{
		PreSieve: 13,
		Wheel:    210,
		HashName: "m3",
	}
}

// Validate reports the first bad field.
func (c *Config) Validate() error {
	switch {
	case c.Threads < 0:
		return fmt.Errorf("%w: threads=%d", ErrInvalidConfig, c.Threads)
	case c.SegmentBytes != 0 && (c.SegmentBytes < MinSegmentBytes || c.SegmentBytes > MaxSegmentBytes):
		return fmt.Errorf("%w: segment bytes=%d not in [%d, %d]", ErrInvalidConfig, c.SegmentBytes, MinSegmentBytes, MaxSegmentBytes)
	}
	switch c.PreSieve {
	case 7, 11, 13, 17, 19:
	default:
		return fmt.Errorf("%w: presieve=%d, want 7, 11, 13, 17 or 19", ErrInvalidConfig, c.PreSieve)
	}
	switch c.Wheel {
	case 30, 210:
	case 2310:
		if c.PreSieve < 11 {
			return fmt.Errorf("%w: wheel 2310 needs presieve >= 11", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: wheel=%d, want 30, 210 or 2310", ErrInvalidConfig, c.Wheel)
	}
	if _, err := setHash(c.HashName); err != nil {
		return err
	}
	return nil
}

// cpuThreads returns the number of logical cores.
func cpuThreads() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// l1dBytes returns the L1 data cache size clamped to [16 KiB, 256 KiB].
func l1dBytes() int {
	n := cpuid.CPU.Cache.L1D
	if n <= 0 {
		n = 32 << 10
	}
	return min(max(n, 16<<10), 256<<10)
}
