package qsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrSimulatorClosed is returned by any operation on a released simulator.
	ErrSimulatorClosed = errors.New("simulator is closed")

	// ErrAttemptsExhausted is returned when a bounded search loop runs out of attempts.
	ErrAttemptsExhausted = errors.New("search attempts exhausted")

	// ErrRegisterTooWide is returned when an allocation would exceed MaxQubits.
	ErrRegisterTooWide = errors.New("register exceeds simulator capacity")

	// ErrUnknownRegister is returned when a register does not belong to the simulator.
	ErrUnknownRegister = errors.New("register not allocated on this simulator")
)

/*
ParseError is returned when the operator's input line is not an integer.
It is fatal to the session: nothing retries a malformed target.
*/
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid target %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

/*
ReleaseError is returned by an intolerant simulator when a register is
released while some of its qubits may still be |1>.
*/
type ReleaseError struct {
	Qubits      int
	Probability float64 // probability that at least one qubit is |1>
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf(
		"released %d qubits not in zero state (p=%.4f)", e.Qubits, e.Probability,
	)
}
