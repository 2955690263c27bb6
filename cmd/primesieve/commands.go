// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"leb.io/primesieve"
	"leb.io/primesieve/internal/sievetest"
	"leb.io/primesieve/primeio"
)

var rangeArgs = cobra.RangeArgs(1, 2)

func (a *app) countCmd() *cobra.Command {
	var tuplets bool
	cmd := &cobra.Command{
		Use:   "count [start] stop",
		Short: "count the primes in [start, stop]",
		Args:  rangeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, stop, err := parseRange(args)
			if err != nil {
				return err
			}
			flags := primesieve.CountPrimes
			if tuplets {
				flags |= primesieve.CountTuplets
			}
			r, err := a.ps.Find(cmd.Context(), start, stop, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Primes: %d\n", r.Count)
			if tuplets {
				fmt.Fprintf(out, "Twin primes: %d\n", r.Twins)
				fmt.Fprintf(out, "Prime triplets: %d\n", r.Triplets)
				fmt.Fprintf(out, "Prime quadruplets: %d\n", r.Quadruplets)
			}
			a.rate(cmd, start, stop)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tuplets, "tuplets", false, "also count twins, triplets and quadruplets")
	return cmd
}

func (a *app) sumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sum [start] stop",
		Short: "sum the primes in [start, stop]",
		Args:  rangeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, stop, err := parseRange(args)
			if err != nil {
				return err
			}
			s, err := a.ps.Sum(cmd.Context(), start, stop)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sum: %v\n", s)
			a.rate(cmd, start, stop)
			return nil
		},
	}
}

func (a *app) digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest [start] stop",
		Short: "print an order independent hash of the primes in [start, stop]",
		Args:  rangeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, stop, err := parseRange(args)
			if err != nil {
				return err
			}
			d, err := a.ps.Digest(cmd.Context(), start, stop)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Digest(%s): %#016x\n", a.ps.HashName, d)
			return nil
		},
	}
}

func (a *app) nthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nth n",
		Short: "print the nth prime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseUint(args[0])
			if err != nil {
				return err
			}
			p, err := a.ps.NthPrime(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", p)
			return nil
		},
	}
}

const batchSize = 4096

func (a *app) primesCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "primes [start] stop",
		Short: "print the primes in [start, stop], one per line",
		Args:  rangeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, stop, err := parseRange(args)
			if err != nil {
				return err
			}
			if output != "" {
				return a.writeFile(cmd, output, start, stop)
			}
			w := bufio.NewWriter(cmd.OutOrStdout())
			var buf []byte
			for p, err := range a.ps.All(cmd.Context(), start, stop) {
				if err != nil {
					w.Flush()
					return err
				}
				buf = strconv.AppendUint(buf[:0], p, 10)
				buf = append(buf, '\n')
				if _, err := w.Write(buf); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write a binary prime stream to this file")
	return cmd
}

func (a *app) writeFile(cmd *cobra.Command, name string, start, stop uint64) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	pw, err := primeio.NewWriter(f, start, stop)
	if err != nil {
		return err
	}
	batch := make([]uint64, 0, batchSize)
	var werr error
	err = a.ps.ForEach(cmd.Context(), start, stop, func(p uint64) bool {
		batch = append(batch, p)
		if len(batch) == batchSize {
			werr = pw.Write(batch)
			batch = batch[:0]
		}
		return werr != nil
	})
	if werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	if err := pw.Write(batch); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return err
	}
	a.log.WithField("file", name).WithField("primes", pw.Count()).Info("wrote")
	return nil
}

func (a *app) dumpCmd() *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "dump file",
		Short: "print the primes of a binary prime stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			pr, err := primeio.NewReader(f)
			if err != nil {
				return err
			}
			h := pr.Header()
			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()
			var n uint64
			err = pr.ForEach(func(p uint64) bool {
				n++
				if !count {
					fmt.Fprintln(w, p)
				}
				return false
			})
			if err != nil {
				return err
			}
			if count {
				fmt.Fprintf(w, "[%d, %d] Primes: %d\n", h.Start, h.Stop, n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&count, "count", "c", false, "only count the primes")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var (
		ranges int
		limit  string
		width  string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "check random ranges against a Miller-Rabin reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseUint(limit)
			if err != nil {
				return err
			}
			wd, err := parseUint(width)
			if err != nil {
				return err
			}
			verbose := a.v.GetBool("verbose")
			vs, err := sievetest.Verify(cmd.Context(), a.ps, sievetest.RandomRanges(ranges, l, wd), verbose, verbose)
			if err != nil {
				return err
			}
			if vs.Failed {
				return fmt.Errorf("verify failed in [%d, %d]", vs.Bad.Start, vs.Bad.Stop)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified: %d ranges, %d primes\n", vs.Ranges, vs.Primes)
			return nil
		},
	}
	cmd.Flags().IntVarP(&ranges, "ranges", "n", 100, "number of ranges")
	cmd.Flags().StringVar(&limit, "limit", "1e12", "ranges start below this")
	cmd.Flags().StringVar(&width, "width", "1e5", "ranges are at most this wide")
	return cmd
}
