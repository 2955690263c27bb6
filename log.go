// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package primesieve

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger sets the logger used for debug output. The default logger
// discards everything. Call it before starting any sieve.
func SetLogger(l *logrus.Logger) {
	log = l
}
