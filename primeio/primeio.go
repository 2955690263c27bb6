// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package primeio reads and writes streams of primes.
//
// A stream is a Header followed by batches of ascending primes, each a
// length prefixed []uint64, and ends with an empty batch.
package primeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/binary"
)

const Version = 1

var magic = [4]byte{'P', 'R', 'M', 'S'}

var ErrFormat = errors.New("primeio: bad stream")

// Header describes the range a stream was generated from.
type Header struct {
	Magic   [4]byte
	Version uint32
	Start   uint64
	Stop    uint64
}

type Writer struct {
	bw  *bufio.Writer
	enc *binary.Encoder
	n   uint64
}

// NewWriter writes the header for [start, stop] and returns a Writer.
func NewWriter(w io.Writer, start, stop uint64) (*Writer, error) {
	bw := bufio.NewWriter(w)
	pw := &Writer{bw: bw, enc: binary.NewEncoder(bw)}
	h := Header{Magic: magic, Version: Version, Start: start, Stop: stop}
	if err := pw.enc.Encode(&h); err != nil {
		return nil, fmt.Errorf("primeio: header: %w", err)
	}
	return pw, nil
}

// Write appends a batch. Empty batches are skipped, they end a stream.
func (w *Writer) Write(batch []uint64) error {
	if len(batch) == 0 {
		return nil
	}
	if err := w.enc.Encode(&batch); err != nil {
		return fmt.Errorf("primeio: batch: %w", err)
	}
	w.n += uint64(len(batch))
	return nil
}

// Count returns the number of primes written.
func (w *Writer) Count() uint64 {
	return w.n
}

// Close ends the stream and flushes it. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	var end []uint64
	if err := w.enc.Encode(&end); err != nil {
		return fmt.Errorf("primeio: end: %w", err)
	}
	return w.bw.Flush()
}

type Reader struct {
	dec *binary.Decoder
	h   Header
}

// NewReader reads and checks the header of a stream.
func NewReader(r io.Reader) (*Reader, error) {
	pr := &Reader{dec: binary.NewDecoder(bufio.NewReader(r))}
	if err := pr.dec.Decode(&pr.h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	if pr.h.Magic != magic || pr.h.Version != Version {
		return nil, fmt.Errorf("%w: magic %q version %d", ErrFormat, pr.h.Magic[:], pr.h.Version)
	}
	return pr, nil
}

func (r *Reader) Header() Header {
	return r.h
}

// Next returns the next batch, io.EOF after the last one.
func (r *Reader) Next() ([]uint64, error) {
	var batch []uint64
	if err := r.dec.Decode(&batch); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: batch: %w", ErrFormat, err)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// ForEach calls fn with every prime of the stream until fn returns true.
func (r *Reader) ForEach(fn func(p uint64) (stop bool)) error {
	for {
		batch, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		for _, p := range batch {
			if fn(p) {
				return nil
			}
		}
	}
}
