package qsearch

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulatorAllocate(t *testing.T) {
	Convey("Given a simulator limited to 4 qubits", t, func() {
		sim := NewSimulator(SimulatorConfig{MaxQubits: 4, Seed: 1})

		Convey("It should allocate registers in the zero state", func() {
			reg, err := sim.Allocate(3)
			So(err, ShouldBeNil)
			So(reg.Len, ShouldEqual, 3)
			So(sim.Qubits(), ShouldEqual, 3)

			value, err := sim.Measure(reg)
			So(err, ShouldBeNil)
			So(value, ShouldEqual, uint64(0))
		})

		Convey("It should refuse to grow past its capacity", func() {
			_, err := sim.Allocate(3)
			So(err, ShouldBeNil)

			_, err = sim.Allocate(2)
			So(errors.Is(err, ErrRegisterTooWide), ShouldBeTrue)
			So(sim.Qubits(), ShouldEqual, 3)
		})

		Convey("It should reject empty registers", func() {
			_, err := sim.Allocate(0)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSimulatorGates(t *testing.T) {
	Convey("Given a simulator with a 3 qubit register", t, func() {
		sim := NewSimulator(SimulatorConfig{TolerateNonZeroRelease: true, MaxQubits: 8, Seed: 7})
		reg, err := sim.Allocate(3)
		So(err, ShouldBeNil)

		Convey("X should flip every qubit", func() {
			So(sim.X(reg), ShouldBeNil)

			value, err := sim.Measure(reg)
			So(err, ShouldBeNil)
			So(value, ShouldEqual, uint64(7))
		})

		Convey("H twice should be the identity", func() {
			So(sim.H(reg), ShouldBeNil)
			So(sim.H(reg), ShouldBeNil)

			value, err := sim.Measure(reg)
			So(err, ShouldBeNil)
			So(value, ShouldEqual, uint64(0))
		})

		Convey("Measurement should collapse the superposition", func() {
			So(sim.H(reg), ShouldBeNil)

			first, err := sim.Measure(reg)
			So(err, ShouldBeNil)
			So(first, ShouldBeLessThan, uint64(8))

			for i := 0; i < 5; i++ {
				again, err := sim.Measure(reg)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
		})

		Convey("A uniform superposition should yield more than one value", func() {
			seen := make(map[uint64]bool)
			for i := 0; i < 32; i++ {
				So(sim.H(reg), ShouldBeNil)
				value, err := sim.Measure(reg)
				So(err, ShouldBeNil)
				seen[value] = true
				So(sim.Release(reg), ShouldBeNil)
				reg, err = sim.Allocate(3)
				So(err, ShouldBeNil)
			}
			So(len(seen), ShouldBeGreaterThan, 1)
		})

		Convey("PhaseFlip followed by diffusion should amplify the marked value", func() {
			So(sim.H(reg), ShouldBeNil)
			So(sim.PhaseFlip(reg, func(v uint64) bool { return v == 5 }), ShouldBeNil)
			So(sim.H(reg), ShouldBeNil)
			So(sim.ReflectZero(reg), ShouldBeNil)
			So(sim.H(reg), ShouldBeNil)

			positions, err := sim.positions(reg)
			So(err, ShouldBeNil)

			// One round over 8 states leaves the marked state at 25/32.
			marked := 0.0
			for i, amplitude := range sim.amps {
				if extract(i, positions) == 5 {
					marked += real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
				}
			}
			So(marked, ShouldAlmostEqual, 25.0/32.0, 1e-9)
		})
	})
}

func TestSimulatorRelease(t *testing.T) {
	Convey("Given an intolerant simulator", t, func() {
		sim := NewSimulator(SimulatorConfig{MaxQubits: 8, Seed: 3})

		Convey("Releasing a clean register should succeed", func() {
			reg, err := sim.Allocate(2)
			So(err, ShouldBeNil)
			So(sim.Release(reg), ShouldBeNil)
			So(sim.Qubits(), ShouldEqual, 0)
		})

		Convey("Releasing a dirty register should fail but still free it", func() {
			reg, err := sim.Allocate(2)
			So(err, ShouldBeNil)
			So(sim.X(reg), ShouldBeNil)

			err = sim.Release(reg)
			var releaseErr *ReleaseError
			So(errors.As(err, &releaseErr), ShouldBeTrue)
			So(releaseErr.Qubits, ShouldEqual, 2)
			So(releaseErr.Probability, ShouldAlmostEqual, 1.0, 1e-9)
			So(sim.Qubits(), ShouldEqual, 0)
		})

		Convey("A released register should no longer be addressable", func() {
			reg, err := sim.Allocate(1)
			So(err, ShouldBeNil)
			So(sim.Release(reg), ShouldBeNil)
			So(errors.Is(sim.H(reg), ErrUnknownRegister), ShouldBeTrue)
		})
	})

	Convey("Given a tolerant simulator with two registers", t, func() {
		sim := NewSimulator(SimulatorConfig{TolerateNonZeroRelease: true, MaxQubits: 8, Seed: 3})

		a, err := sim.Allocate(2)
		So(err, ShouldBeNil)
		b, err := sim.Allocate(3)
		So(err, ShouldBeNil)

		So(sim.X(a), ShouldBeNil)
		So(sim.X(b), ShouldBeNil)

		Convey("Releasing a dirty register should keep the other intact", func() {
			So(sim.Release(a), ShouldBeNil)
			So(sim.Qubits(), ShouldEqual, 3)

			value, err := sim.Measure(b)
			So(err, ShouldBeNil)
			So(value, ShouldEqual, uint64(7))
		})
	})
}

func TestSimulatorClose(t *testing.T) {
	Convey("Given a closed simulator", t, func() {
		sim := NewSimulator(SimulatorConfig{MaxQubits: 4})
		reg, err := sim.Allocate(1)
		So(err, ShouldBeNil)

		So(sim.Close(), ShouldBeNil)

		Convey("Close should be idempotent", func() {
			So(sim.Close(), ShouldBeNil)
			So(sim.Closed(), ShouldBeTrue)
		})

		Convey("Every operation should report it is closed", func() {
			_, err := sim.Allocate(1)
			So(errors.Is(err, ErrSimulatorClosed), ShouldBeTrue)
			So(errors.Is(sim.H(reg), ErrSimulatorClosed), ShouldBeTrue)
			So(errors.Is(sim.Release(reg), ErrSimulatorClosed), ShouldBeTrue)

			_, err = sim.Measure(reg)
			So(errors.Is(err, ErrSimulatorClosed), ShouldBeTrue)
		})
	})
}
