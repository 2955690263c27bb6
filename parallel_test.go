// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import "testing"

func TestPartitions(t *testing.T) {
	var tests = []struct {
		start, stop uint64
		threads     int
		minRange    uint64
	}{
		{0, 0, 4, 1},
		{0, 100, 1, 1},
		{0, 100, 4, 1},
		{7, 1000, 3, 10},
		{1e9, 2e9, 8, 1e7},
		{1e9, 1e9 + 5, 8, 1e7},
		{123, 123456789, 16, 1000},
		{MaxStop - 1e6, MaxStop, 5, 1},
		{0, MaxStop, 64, MinThreadRange},
		{25, 144, 4, 1},
		{0, 119, 2, 1},
		{0, 100, 4, 1},
		{5, 40, 8, 1},
	}
	for _, tc := range tests {
		ps := partitions(tc.start, tc.stop, tc.threads, tc.minRange)
		if len(ps) == 0 || len(ps) > tc.threads {
			t.Fatalf("%v: %d partitions", tc, len(ps))
		}
		if ps[0].start != tc.start || ps[len(ps)-1].stop != tc.stop {
			t.Errorf("%v: partitions %v do not cover the range", tc, ps)
		}
		for i, p := range ps {
			if p.start > p.stop {
				t.Errorf("%v: empty partition %v", tc, p)
			}
			if i > 0 {
				if p.start != ps[i-1].stop+1 {
					t.Errorf("%v: gap or overlap between %v and %v", tc, ps[i-1], p)
				}
				if p.start%30 != 7 || p.start == 7 {
					t.Errorf("%v: boundary %d splits a segment byte", tc, p.start)
				}
			}
		}
	}
}

func TestPartitionsSmallRangeIsOne(t *testing.T) {
	if ps := partitions(0, 1e6, 8, MinThreadRange); len(ps) != 1 {
		t.Errorf("got %d partitions for a range below MinThreadRange", len(ps))
	}
}

func TestPartitionsUnalignedStart(t *testing.T) {
	if ps := partitions(25, 144, 4, 1); len(ps) != 4 {
		t.Errorf("got %d partitions %v, want 4", len(ps), ps)
	}
}
