// Package input provides a cancellable line reader over blocking sources
// like stdin. A plain bufio read cannot be abandoned; pumping lines
// through a channel lets every interactive prompt race the process's
// signal context instead of blocking through an interrupt.
package input

import (
	"bufio"
	"context"
	"io"
	"sync"
)

type result struct {
	text string
	err  error
}

// LineReader delivers lines from one reader through a single pump
// goroutine, so each read can be given up on cancellation without losing
// the line: input left undelivered stays queued for the next call. A
// LineReader owns its reader; share the LineReader, never the reader.
type LineReader struct {
	lines chan result
	stop  chan struct{}
	once  sync.Once
}

// NewLineReader starts the pump. Call Close when no more reads will
// happen.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{
		lines: make(chan result),
		stop:  make(chan struct{}),
	}
	go lr.pump(r)
	return lr
}

func (lr *LineReader) pump(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lr.lines <- result{text: scanner.Text()}:
		case <-lr.stop:
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case lr.lines <- result{err: err}:
		close(lr.lines)
	case <-lr.stop:
	}
}

// ReadLine blocks for the next line, end of input, or cancellation,
// whichever comes first. Cancellation returns ctx.Err(); exhausted input
// returns io.EOF, on this call and every later one.
func (lr *LineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case res, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close releases the pump goroutine. The pump may stay blocked inside the
// underlying read until that read returns; for stdin that means until the
// next line or end of input, the usual fate of stdin readers.
func (lr *LineReader) Close() {
	lr.once.Do(func() { close(lr.stop) })
}
