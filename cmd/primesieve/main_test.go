// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), errb.String())
	return out.String()
}

func TestParseUint(t *testing.T) {
	var tests = []struct {
		s    string
		want uint64
	}{
		{"0", 0},
		{"100", 100},
		{"0x10", 16},
		{"1e9", 1000000000},
		{"1e12+1e9", 1001000000000},
		{"18446744073709551615", 1<<64 - 1},
	}
	for _, tt := range tests {
		v, err := parseUint(tt.s)
		require.NoError(t, err, tt.s)
		assert.Equal(t, tt.want, v, tt.s)
	}
	for _, s := range []string{"", "x", "-1", "1.5", "1e30", "18446744073709551615+1"} {
		_, err := parseUint(s)
		assert.Error(t, err, s)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "Primes: 4\n", run(t, "count", "10"))
	assert.Equal(t, "Primes: 78498\n", run(t, "-t", "3", "count", "1e6"))
	out := run(t, "count", "--tuplets", "1", "1e6")
	assert.Contains(t, out, "Twin primes: 8169\n")
}

func TestSum(t *testing.T) {
	assert.Equal(t, "Sum: 17\n", run(t, "sum", "1", "10"))
	assert.Equal(t, "Sum: 37550402023\n", run(t, "sum", "1e6"))
}

func TestPrimes(t *testing.T) {
	assert.Equal(t, "11\n13\n17\n19\n", run(t, "primes", "10", "20"))
	assert.Equal(t, "", run(t, "primes", "24", "28"))
}

func TestNth(t *testing.T) {
	assert.Equal(t, "104743\n", run(t, "nth", "10001"))
}

func TestDigestThreads(t *testing.T) {
	a := run(t, "-t", "1", "digest", "1e6")
	b := run(t, "-t", "4", "digest", "1e6")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "Digest(m3): 0x"))
}

func TestPrimesFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "p.bin")
	assert.Equal(t, "", run(t, "primes", "-o", name, "100000"))
	assert.Equal(t, "[0, 100000] Primes: 9592\n", run(t, "dump", "-c", name))
	out := run(t, "dump", name)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9592)
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "99991", lines[len(lines)-1])
}

func TestVerify(t *testing.T) {
	out := run(t, "verify", "-n", "5", "--limit", "1e9", "--width", "1000")
	assert.Contains(t, out, "Verified: 5 ranges")
}

func TestBadArgs(t *testing.T) {
	for _, args := range [][]string{
		{"count"},
		{"count", "10", "1"},
		{"--wheel", "31", "count", "10"},
		{"--presieve", "23", "count", "10"},
		{"--hash", "nope", "count", "10"},
		{"nth", "0"},
	} {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), "%v", args)
	}
}
