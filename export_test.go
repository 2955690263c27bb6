// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

// SetMinThreadRange lets tests split small ranges across threads.
func SetMinThreadRange(ps *PrimeSieve, n uint64) {
	ps.minThreadRange = n
}
