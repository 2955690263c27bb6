// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package siginfo runs a function whenever the process gets SIGINFO,
// ^T on BSD and macOS terminals.
package siginfo

import (
	"os"
	"os/signal"
	"syscall"
)

// SIGINFO isn't part of the stdlib, but it's 29 on most systems
const SIGINFO = syscall.Signal(29)

// SetHandler calls f for each SIGINFO until the returned stop function
// is called.
func SetHandler(f func()) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, SIGINFO)

	go func() {
		for {
			select {
			case <-ch:
				f()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
