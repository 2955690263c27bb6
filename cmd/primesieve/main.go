// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// This program counts, sums and prints the primes in a range.
//
//	primesieve count 1e9
//	primesieve count --tuplets 1e12 1e12+1e9
//	primesieve primes 100 200
//	primesieve nth 1e6
//
// Flags can also be set from PRIMESIEVE_* environment variables or a
// YAML config file. ^T prints how far the current run got.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"leb.io/hrff"

	"leb.io/primesieve"
	"leb.io/primesieve/siginfo"
)

type app struct {
	v        *viper.Viper
	log      *logrus.Logger
	ps       *primesieve.PrimeSieve
	begin    time.Time
	cpuf     *os.File
	stopInfo func()
}

func hu(v uint64, u string) hrff.Int64 {
	return hrff.Int64{V: int64(v), U: u}
}

// parseUint accepts plain integers, 0x prefixes, exponents like 1e9 and
// sums like 1e12+1e9.
func parseUint(s string) (uint64, error) {
	var sum uint64
	for _, term := range strings.Split(s, "+") {
		v, err := strconv.ParseUint(term, 0, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(term, 64)
			if ferr != nil || f < 0 || f >= 1<<64 || f != float64(uint64(f)) {
				return 0, fmt.Errorf("bad number %q", term)
			}
			v = uint64(f)
		}
		if sum+v < sum {
			return 0, fmt.Errorf("%q overflows", s)
		}
		sum += v
	}
	return sum, nil
}

// parseRange takes "stop" or "start stop".
func parseRange(args []string) (start, stop uint64, err error) {
	if len(args) == 1 {
		stop, err = parseUint(args[0])
		return 0, stop, err
	}
	if start, err = parseUint(args[0]); err != nil {
		return 0, 0, err
	}
	stop, err = parseUint(args[1])
	return start, stop, err
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:               "primesieve",
		Short:             "count, sum and print primes with a segmented sieve",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	pf := root.PersistentFlags()
	pf.IntP("threads", "t", 0, "worker goroutines, 0 for all logical cores")
	pf.IntP("segment", "s", 0, "segment bytes per worker, 0 for the L1 data cache size")
	pf.Int("presieve", 13, "presieve multiples of primes up to {7, 11, 13, 17, 19}")
	pf.Int("wheel", 210, "wheel modulus {30, 210, 2310}")
	pf.String("hash", "m3", "name of digest hash function {m3, aes, city}")
	pf.String("config", "", "config file")
	pf.BoolP("verbose", "v", false, "verbose")
	pf.Bool("stats", false, "print counters and memory stats at the end")
	pf.String("cp", "", "write cpu profile to file")
	pf.String("mp", "", "write memory profile to this file")
	for _, name := range []string{"threads", "segment", "presieve", "wheel", "hash", "verbose", "stats", "cp", "mp"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}
	a.v.SetEnvPrefix("PRIMESIEVE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.countCmd(), a.sumCmd(), a.primesCmd(), a.nthCmd(), a.digestCmd(), a.dumpCmd(), a.verifyCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		a.v.SetConfigFile(f)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("config %s: %w", f, err)
		}
	}

	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	a.log.SetLevel(logrus.InfoLevel)
	if a.v.GetBool("verbose") {
		a.log.SetLevel(logrus.DebugLevel)
	}
	primesieve.SetLogger(a.log)

	cfg := primesieve.Config{
		Threads:      a.v.GetInt("threads"),
		SegmentBytes: a.v.GetInt("segment"),
		PreSieve:     a.v.GetInt("presieve"),
		Wheel:        a.v.GetInt("wheel"),
		HashName:     a.v.GetString("hash"),
	}
	ps, err := primesieve.New(cfg)
	if err != nil {
		return err
	}
	a.ps = ps
	a.log.WithFields(logrus.Fields{
		"threads":  ps.Threads,
		"segment":  ps.SegmentBytes,
		"presieve": ps.PreSieve,
		"wheel":    ps.Wheel,
	}).Debug("config")

	if cp := a.v.GetString("cp"); cp != "" {
		f, err := os.Create(cp)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
		a.cpuf = f
	}
	a.stopInfo = siginfo.SetHandler(func() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%.2f%% %v\n", 100*a.ps.Status(), time.Since(a.begin))
	})
	a.begin = time.Now()
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	elapsed := time.Since(a.begin)
	if a.stopInfo != nil {
		a.stopInfo()
	}
	if a.cpuf != nil {
		pprof.StopCPUProfile()
		a.cpuf.Close()
	}
	if mp := a.v.GetString("mp"); mp != "" {
		f, err := os.Create(mp)
		if err != nil {
			a.log.WithError(err).Error("memory profile")
		} else {
			pprof.WriteHeapProfile(f)
			f.Close()
		}
	}
	if a.v.GetBool("stats") && a.ps != nil {
		a.dumpStats(cmd, elapsed)
	}
}

func (a *app) dumpStats(cmd *cobra.Command, elapsed time.Duration) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Seconds: %.3f\n", elapsed.Seconds())
	fmt.Fprintf(w, "Threads=%d, SegmentBytes=%h, PreSieve=%d, Wheel=%d\n",
		a.ps.Threads, hu(uint64(a.ps.SegmentBytes), "B"), a.ps.PreSieve, a.ps.Wheel)
	fmt.Fprintf(w, "Runs=%d, Partitions=%d, Segments=%h, SievingPrimes=%h (small=%d, medium=%d, big=%d)\n",
		a.ps.GetCounter("runs"), a.ps.GetCounter("partitions"), hu(uint64(a.ps.GetCounter("segments")), ""),
		hu(uint64(a.ps.GetCounter("sieving")), ""), a.ps.GetCounter("small"), a.ps.GetCounter("medium"), a.ps.GetCounter("big"))
	fmt.Fprintf(w, "Alloc=%h, TotalAlloc=%h, Sys=%h, NumGC=%d\n",
		hu(m.Alloc, "B"), hu(m.TotalAlloc, "B"), hu(m.Sys, "B"), m.NumGC)
}

// rate prints how many numbers per second a run sieved.
func (a *app) rate(cmd *cobra.Command, start, stop uint64) {
	if !a.v.GetBool("verbose") {
		return
	}
	d := time.Since(a.begin)
	f := hrff.Float64{V: float64(stop-start+1) / d.Seconds(), U: "n/sec"}
	fmt.Fprintf(cmd.ErrOrStderr(), "%v %h\n", d, f)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
