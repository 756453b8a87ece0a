// Package dlog solves bounded discrete logarithms on the curves supported by
// crypto/ecc using the baby-step giant-step algorithm over a precomputed
// table. A table depends only on the curve and the expected bound, so it is
// built once and reused across every batch that shares the bound.
package dlog

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// DefaultBalance makes baby steps twice as many as sqrt(maxValue). A balance
// above 1 trades memory for fewer giant steps, which pays off when the same
// table is reused many times.
const DefaultBalance = 2

// Table holds the precomputed baby steps for the baby-step giant-step
// search. It is immutable after construction and safe for concurrent
// readers.
type Table struct {
	curve        ecc.Point
	babySteps    map[string]uint64
	babyStepSize uint64
	giantStep    ecc.Point
}

// NewTable precomputes the baby steps for logarithms bounded by maxValue on
// the curve of the given point. A zero balance selects DefaultBalance.
//
// A point and its negation share one affine coordinate, so entries are
// stored for half the window only, keyed by that coordinate. The identity
// has no such coordinate and is keyed by the reserved empty string.
func NewTable(curve ecc.Point, maxValue, balance uint64) (*Table, error) {
	if maxValue == 0 {
		return nil, fmt.Errorf("maxValue must be positive")
	}
	if balance == 0 {
		balance = DefaultBalance
	}

	// babyStepSize = ceil(sqrt(maxValue)) * balance using integer arithmetic only
	sqrtStep := new(big.Int).Sqrt(new(big.Int).SetUint64(maxValue))
	if new(big.Int).Mul(sqrtStep, sqrtStep).Cmp(new(big.Int).SetUint64(maxValue)) < 0 {
		sqrtStep.Add(sqrtStep, big.NewInt(1)) // ceil
	}
	babyStepSize := sqrtStep.Uint64() * balance

	g := curve.New()
	g.SetGenerator()

	babySteps := make(map[string]uint64, babyStepSize/2+1)
	e := curve.New()
	for i := uint64(0); i <= babyStepSize/2; i++ {
		babySteps[pointKey(e)] = i
		e.Add(e, g) // (i+1)·G
	}

	// the giant step moves the target down by babyStepSize logs at a time
	giantStep := curve.New()
	giantStep.ScalarBaseMult(new(big.Int).SetUint64(babyStepSize))
	giantStep.Neg(giantStep) // -babyStepSize·G

	return &Table{
		curve:        curve.New(),
		babySteps:    babySteps,
		babyStepSize: babyStepSize,
		giantStep:    giantStep,
	}, nil
}

// Solve searches the discrete logarithm of target with respect to the curve
// generator, assuming it lies in [0, maxLog]. Targets beyond the bound fail
// with ErrMaxLogExceeded instead of searching forever.
func (t *Table) Solve(target ecc.Point, maxLog uint64) (uint64, error) {
	current := t.curve.New()
	current.Set(target)

	for a := uint64(0); ; a++ {
		if x, ok := t.babySteps[pointKey(current)]; ok {
			return t.resolve(current, a, x)
		}
		if a*t.babyStepSize > maxLog {
			return 0, fmt.Errorf("%w: no match found below %d", ErrMaxLogExceeded, maxLog)
		}
		current.Add(current, t.giantStep)
	}
}

// resolve disambiguates a table hit. The stored index x may belong to the
// point itself or to its negation, which share the map key.
func (t *Table) resolve(current ecc.Point, a, x uint64) (uint64, error) {
	probe := t.curve.New()
	probe.ScalarBaseMult(new(big.Int).SetUint64(x))
	if probe.Equal(current) {
		return a*t.babyStepSize + x, nil
	}
	probe.Neg(probe)
	if probe.Equal(current) {
		base := a * t.babyStepSize
		if base < x {
			// the true logarithm is negative, outside any [0, maxLog] window
			return 0, fmt.Errorf("%w: logarithm is negative", ErrMaxLogExceeded)
		}
		return base - x, nil
	}
	return 0, fmt.Errorf("%w: entry %d matches neither the point nor its negation", ErrTableCorrupted, x)
}

// pointKey returns the table key of a point: its negation-invariant
// coordinate, or the empty string for the identity.
func pointKey(p ecc.Point) string {
	coord, ok := p.CompressedCoord()
	if !ok {
		return ""
	}
	return string(coord)
}
