package qsearch

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"time"

	"github.com/theapemachine/errnie"
)

const zeroTolerance = 1e-9

/*
Register is a handle to a group of qubits allocated on a Simulator.
Bit j of a measured value corresponds to the j-th qubit of the register.
*/
type Register struct {
	id  int
	Len int
}

/*
Simulator is a dense state-vector simulator. It owns the amplitudes of every
qubit currently allocated on it, and is meant to be owned by exactly one
session iteration: create it, use it, Close it.

A Simulator is not safe for concurrent use.
*/
type Simulator struct {
	config SimulatorConfig
	amps   []complex128
	layout []int // register id per qubit position
	nextID int
	rng    *rand.Rand
	closed bool
}

func NewSimulator(config SimulatorConfig) *Simulator {
	errnie.Info(
		"NewSimulator - tolerateNonZeroRelease %v, maxQubits %v",
		config.TolerateNonZeroRelease,
		config.MaxQubits,
	)

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		config: config,
		amps:   []complex128{1},
		layout: make([]int, 0),
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Config returns the configuration the simulator was created with.
func (s *Simulator) Config() SimulatorConfig {
	return s.config
}

// Qubits reports how many qubits are currently allocated.
func (s *Simulator) Qubits() int {
	return len(s.layout)
}

func (s *Simulator) Closed() bool {
	return s.closed
}

/*
Allocate adds n qubits in the |0> state. New qubits take the highest bit
positions, so existing amplitudes keep their indices.
*/
func (s *Simulator) Allocate(n int) (Register, error) {
	if s.closed {
		return Register{}, ErrSimulatorClosed
	}

	if n <= 0 {
		return Register{}, fmt.Errorf("allocate %d qubits: size must be positive", n)
	}

	if s.config.MaxQubits > 0 && len(s.layout)+n > s.config.MaxQubits {
		return Register{}, fmt.Errorf(
			"allocate %d qubits with %d in use: %w", n, len(s.layout), ErrRegisterTooWide,
		)
	}

	grown := make([]complex128, len(s.amps)<<n)
	copy(grown, s.amps)
	s.amps = grown

	s.nextID++
	for i := 0; i < n; i++ {
		s.layout = append(s.layout, s.nextID)
	}

	return Register{id: s.nextID, Len: n}, nil
}

// H applies a Hadamard gate to every qubit of reg.
func (s *Simulator) H(reg Register) error {
	positions, err := s.positions(reg)
	if err != nil {
		return err
	}

	for _, p := range positions {
		mask := 1 << p
		for i := range s.amps {
			if i&mask != 0 {
				continue
			}
			// H = 1/√2 * [1  1]
			//           [1 -1]
			alpha, beta := s.amps[i], s.amps[i|mask]
			s.amps[i] = (alpha + beta) / complex(math.Sqrt2, 0)
			s.amps[i|mask] = (alpha - beta) / complex(math.Sqrt2, 0)
		}
	}

	return nil
}

// X flips every qubit of reg.
func (s *Simulator) X(reg Register) error {
	positions, err := s.positions(reg)
	if err != nil {
		return err
	}

	for _, p := range positions {
		s.flip(p)
	}

	return nil
}

/*
PhaseFlip negates the amplitude of every basis state whose reg value
satisfies marked. This is the phase oracle of a search.
*/
func (s *Simulator) PhaseFlip(reg Register, marked func(uint64) bool) error {
	positions, err := s.positions(reg)
	if err != nil {
		return err
	}

	for i := range s.amps {
		if marked(extract(i, positions)) {
			s.amps[i] = -s.amps[i]
		}
	}

	return nil
}

// ReflectZero applies 2|0><0| - I on reg.
func (s *Simulator) ReflectZero(reg Register) error {
	return s.PhaseFlip(reg, func(v uint64) bool { return v != 0 })
}

/*
Measure samples a value for reg from the current amplitudes and collapses
the state onto it.
*/
func (s *Simulator) Measure(reg Register) (uint64, error) {
	positions, err := s.positions(reg)
	if err != nil {
		return 0, err
	}

	return s.measure(positions), nil
}

/*
Release removes reg from the simulator. A register that may still hold a
non-zero value is measured and reset first; when the simulator is not
configured to tolerate that, a ReleaseError is returned after the reset.
*/
func (s *Simulator) Release(reg Register) error {
	positions, err := s.positions(reg)
	if err != nil {
		return err
	}

	dirty := s.nonZeroProbability(positions)

	if dirty > zeroTolerance {
		value := s.measure(positions)
		for j, p := range positions {
			if value&(1<<j) != 0 {
				s.flip(p)
			}
		}
	}

	s.remove(positions)

	if dirty > zeroTolerance && !s.config.TolerateNonZeroRelease {
		return &ReleaseError{Qubits: len(positions), Probability: dirty}
	}

	return nil
}

/*
Close releases the simulator's state. It is safe to call more than once;
every later operation returns ErrSimulatorClosed.
*/
func (s *Simulator) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.amps = nil
	s.layout = nil

	return nil
}

// intn draws from the simulator's RNG so a seeded run is reproducible end to end.
func (s *Simulator) intn(n int) int {
	return s.rng.IntN(n)
}

func (s *Simulator) positions(reg Register) ([]int, error) {
	if s.closed {
		return nil, ErrSimulatorClosed
	}

	positions := make([]int, 0, reg.Len)
	for p, id := range s.layout {
		if id == reg.id {
			positions = append(positions, p)
		}
	}

	if len(positions) == 0 {
		return nil, ErrUnknownRegister
	}

	return positions, nil
}

func (s *Simulator) flip(p int) {
	mask := 1 << p
	for i := range s.amps {
		if i&mask == 0 {
			s.amps[i], s.amps[i|mask] = s.amps[i|mask], s.amps[i]
		}
	}
}

func (s *Simulator) measure(positions []int) uint64 {
	probs := make(map[uint64]float64)
	total := 0.0

	for i, amplitude := range s.amps {
		prob := cmplx.Abs(amplitude)
		prob *= prob // Square of the modulus
		if prob == 0 {
			continue
		}
		probs[extract(i, positions)] += prob
		total += prob
	}

	r := s.rng.Float64() * total

	// Walk the basis states in index order so a seeded RNG is deterministic.
	var measured uint64
	cumulative := 0.0
	for i, amplitude := range s.amps {
		if amplitude == 0 {
			continue
		}
		value := extract(i, positions)
		if _, seen := probs[value]; !seen {
			continue
		}
		measured = value
		cumulative += probs[value]
		delete(probs, value)
		if r <= cumulative {
			break
		}
	}

	// Collapse onto the measured value and renormalize.
	norm := 0.0
	for i, amplitude := range s.amps {
		if extract(i, positions) != measured {
			s.amps[i] = 0
			continue
		}
		prob := cmplx.Abs(amplitude)
		norm += prob * prob
	}

	if norm > 0 {
		scale := complex(1/math.Sqrt(norm), 0)
		for i := range s.amps {
			s.amps[i] *= scale
		}
	}

	return measured
}

func (s *Simulator) nonZeroProbability(positions []int) float64 {
	prob := 0.0
	for i, amplitude := range s.amps {
		if extract(i, positions) != 0 {
			a := cmplx.Abs(amplitude)
			prob += a * a
		}
	}
	return prob
}

// remove drops qubits that are known to be |0>, compacting the state vector.
func (s *Simulator) remove(positions []int) {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}

	keep := make([]int, 0, len(s.layout)-len(positions))
	layout := make([]int, 0, len(s.layout)-len(positions))
	for p, id := range s.layout {
		if !drop[p] {
			keep = append(keep, p)
			layout = append(layout, id)
		}
	}

	shrunk := make([]complex128, 1<<len(keep))
	for i, amplitude := range s.amps {
		if extract(i, positions) != 0 {
			continue
		}
		shrunk[extract(i, keep)] = amplitude
	}

	s.amps = shrunk
	s.layout = layout
}

func extract(index int, positions []int) uint64 {
	var value uint64
	for j, p := range positions {
		if index&(1<<p) != 0 {
			value |= 1 << j
		}
	}
	return value
}
