// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

//go:build unix

package siginfo

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetHandler(t *testing.T) {
	called := make(chan struct{}, 1)
	stop := SetHandler(func() {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	defer stop()

	if err := syscall.Kill(os.Getpid(), SIGINFO); err != nil {
		t.Fatal(err)
	}
	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}
}
