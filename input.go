package qsearch

import (
	"bufio"
	"context"
	"errors"
	"io"
)

type inputLine struct {
	text string
	err  error
}

/*
lineReader reads operator lines on its own goroutine, one line per
request, so a caller can stop waiting when its context ends even though
the underlying Read cannot be interrupted. A read still in flight when the
context ends is left to finish on its own.
*/
type lineReader struct {
	input    *bufio.Reader
	requests chan struct{}
	lines    chan inputLine
}

func newLineReader(input *bufio.Reader) *lineReader {
	r := &lineReader{
		input:    input,
		requests: make(chan struct{}, 1),
		lines:    make(chan inputLine, 1),
	}

	go r.run()

	return r
}

func (r *lineReader) run() {
	defer close(r.lines)

	for range r.requests {
		text, err := r.input.ReadString('\n')
		r.lines <- inputLine{text: text, err: err}
		if err != nil {
			return
		}
	}
}

// next returns the next line, io.EOF at end of input, or the context error.
func (r *lineReader) next(ctx context.Context) (string, error) {
	select {
	case r.requests <- struct{}{}:
	default:
		// A request is already pending from a read abandoned by a cancelled context.
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil && !(errors.Is(l.err, io.EOF) && l.text != "") {
			return "", l.err
		}
		return l.text, nil
	}
}

// Close stops the goroutine once any in-flight read returns.
func (r *lineReader) Close() {
	close(r.requests)
}
