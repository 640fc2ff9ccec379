package qsearch

import (
	"context"
	"fmt"
	"math"

	"github.com/theapemachine/errnie"
)

// Outcome is the result of a single search attempt.
type Outcome struct {
	Found     bool
	Candidate int64
}

/*
Procedure is one probabilistic search attempt against a simulator. It must
be safe to call repeatedly with the same simulator and target; the loop
driving it makes no assumption about its success probability.
*/
type Procedure interface {
	Attempt(ctx context.Context, sim *Simulator, target int64) (Outcome, error)
}

// ProcedureFunc adapts a plain function to the Procedure interface.
type ProcedureFunc func(ctx context.Context, sim *Simulator, target int64) (Outcome, error)

func (fn ProcedureFunc) Attempt(ctx context.Context, sim *Simulator, target int64) (Outcome, error) {
	return fn(ctx, sim, target)
}

/*
GroverSearch looks for a preimage of target under Hash by amplitude
amplification over a Width-qubit register. The number of Grover rounds is
drawn at random for every attempt, so the procedure works whether the
target has one preimage, several, or none, and the measured candidate is
always verified classically before it is declared found.
*/
type GroverSearch struct {
	Width int
	Hash  HashFunc
}

func NewGroverSearch(width int, hash HashFunc) *GroverSearch {
	if hash == nil {
		hash = MixHash(width)
	}

	errnie.Info("NewGroverSearch - width %v", width)

	return &GroverSearch{
		Width: width,
		Hash:  hash,
	}
}

// MaxRounds is the optimal round count for a single marked state.
func (g *GroverSearch) MaxRounds() int {
	rounds := int(math.Floor(math.Pi / 4 * math.Sqrt(float64(uint64(1)<<g.Width))))
	if rounds < 1 {
		return 1
	}
	return rounds
}

func (g *GroverSearch) Attempt(ctx context.Context, sim *Simulator, target int64) (Outcome, error) {
	reg, err := sim.Allocate(g.Width)
	if err != nil {
		return Outcome{}, fmt.Errorf("allocate search register: %w", err)
	}

	candidate, err := g.amplify(ctx, sim, reg, target)
	if err != nil {
		// Keep the simulator usable for the caller; the amplify error wins.
		_ = sim.Release(reg)
		return Outcome{}, err
	}

	// The register still holds the candidate, so this is a non-zero release.
	if err := sim.Release(reg); err != nil {
		return Outcome{}, fmt.Errorf("release search register: %w", err)
	}

	return Outcome{
		Found:     target >= 0 && g.Hash(candidate) == uint64(target),
		Candidate: int64(candidate),
	}, nil
}

func (g *GroverSearch) amplify(ctx context.Context, sim *Simulator, reg Register, target int64) (uint64, error) {
	marked := func(x uint64) bool {
		return target >= 0 && g.Hash(x) == uint64(target)
	}

	if err := sim.H(reg); err != nil {
		return 0, err
	}

	rounds := 1 + sim.intn(g.MaxRounds())

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if err := sim.PhaseFlip(reg, marked); err != nil {
			return 0, err
		}

		if err := g.diffuse(sim, reg); err != nil {
			return 0, err
		}
	}

	return sim.Measure(reg)
}

func (g *GroverSearch) diffuse(sim *Simulator, reg Register) error {
	if err := sim.H(reg); err != nil {
		return err
	}

	if err := sim.ReflectZero(reg); err != nil {
		return err
	}

	return sim.H(reg)
}
