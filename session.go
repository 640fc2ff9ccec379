package qsearch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// SimulatorFactory creates the simulator for one session iteration.
type SimulatorFactory func(config SimulatorConfig) (*Simulator, error)

func defaultSimulatorFactory(config SimulatorConfig) (*Simulator, error) {
	return NewSimulator(config), nil
}

/*
Session is the operator facing loop. Each iteration binds a fresh
simulator to one target read from the input and hands both to the search
loop. The simulator is released at the end of the iteration on every path,
and never reused for another target.
*/
type Session struct {
	config  *Config
	input   *bufio.Reader
	loop    *SearchLoop
	factory SimulatorFactory
	logger  *log.Logger
}

type SessionOption func(*Session)

// WithSimulatorFactory replaces how each iteration acquires its simulator.
func WithSimulatorFactory(factory SimulatorFactory) SessionOption {
	return func(s *Session) {
		s.factory = factory
	}
}

func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(config *Config, input io.Reader, loop *SearchLoop, opts ...SessionOption) *Session {
	if config == nil {
		config = NewConfig()
	}

	s := &Session{
		config:  config,
		input:   bufio.NewReader(input),
		loop:    loop,
		factory: defaultSimulatorFactory,
		logger:  log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

/*
Run loops until the input ends, the context is cancelled, or an iteration
fails. End of input is a clean stop and returns nil. A malformed target
returns a *ParseError; search faults are returned as they come.
*/
func (s *Session) Run(ctx context.Context) error {
	reader := newLineReader(s.input)
	defer reader.Close()

	for {
		done, err := s.iterate(ctx, reader)
		if err != nil || done {
			return err
		}
	}
}

func (s *Session) iterate(ctx context.Context, reader *lineReader) (done bool, err error) {
	if err := ctx.Err(); err != nil {
		return true, err
	}

	sim, err := s.factory(s.config.Simulator)
	if err != nil {
		return true, fmt.Errorf("create simulator: %w", err)
	}

	defer func() {
		if cerr := sim.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release simulator: %w", cerr)
		}
	}()

	target, err := readTarget(ctx, reader)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return true, ctxErr
		}
		if errors.Is(err, io.EOF) {
			s.logger.Debug("input closed")
			return true, nil
		}
		return true, err
	}

	id := uuid.NewString()
	s.loop.Metrics().recordSession()
	s.logger.Info("session started", "session", id, "target", target)

	outcome, err := s.loop.SearchUntilFound(ctx, sim, target)
	if err != nil {
		s.logger.Error("session failed", "session", id, "target", target, "err", err)
		return true, err
	}

	s.logger.Info(
		"session finished",
		"session", id,
		"target", target,
		"preimage", outcome.Candidate,
		"metrics", s.loop.Metrics().ExportMetrics(),
	)

	return false, nil
}

func readTarget(ctx context.Context, reader *lineReader) (int64, error) {
	text, err := reader.next(ctx)
	if err != nil {
		return 0, err
	}

	return ParseTarget(text)
}

// ParseTarget parses one operator line as a base 10 integer.
func ParseTarget(line string) (int64, error) {
	trimmed := strings.TrimSpace(line)

	target, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, &ParseError{Input: trimmed, Err: err}
	}

	return target, nil
}
