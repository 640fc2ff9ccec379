package qsearch

import (
	"fmt"
	"io"
)

// Attempt is one reported search attempt. It is not retained after reporting.
type Attempt struct {
	Number int
	Target int64
	Outcome
}

/*
String renders the operator line, Hash(<candidate>)<op>=<target>, where op
is '=' for a confirmed match and '!' otherwise.
*/
func (a Attempt) String() string {
	op := '!'
	if a.Found {
		op = '='
	}
	return fmt.Sprintf("Hash(%d)%c=%d", a.Candidate, op, a.Target)
}

// Reporter receives every attempt, found or not, in the order they ran.
type Reporter interface {
	Report(attempt Attempt) error
}

// LineReporter writes one operator line per attempt.
type LineReporter struct {
	w io.Writer
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Report(attempt Attempt) error {
	_, err := fmt.Fprintln(r.w, attempt.String())
	return err
}
