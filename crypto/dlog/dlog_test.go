package dlog

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/tallyproof/crypto/ecc"
	"github.com/vocdoni/tallyproof/crypto/ecc/bjj"
	"github.com/vocdoni/tallyproof/crypto/ecc/curves"
)

func pointOf(curve ecc.Point, k uint64) ecc.Point {
	p := curve.New()
	p.ScalarBaseMult(new(big.Int).SetUint64(k))
	return p
}

func TestNewTableParams(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	_, err := NewTable(curve, 0, 0)
	c.Assert(err, qt.IsNotNil)

	// a zero balance selects the default
	defaulted, err := NewTable(curve, 100, 0)
	c.Assert(err, qt.IsNil)
	explicit, err := NewTable(curve, 100, DefaultBalance)
	c.Assert(err, qt.IsNil)
	c.Assert(defaulted.babyStepSize, qt.Equals, explicit.babyStepSize)
	c.Assert(defaulted.babyStepSize, qt.Equals, uint64(20)) // ceil(sqrt(100))*2
}

func TestSolveRange(t *testing.T) {
	for _, curveType := range curves.Curves() {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)
			curve := curves.New(curveType)

			table, err := NewTable(curve, 1000, 0)
			c.Assert(err, qt.IsNil)

			// sweep across several baby-step windows, both hit branches included
			for k := uint64(0); k < 130; k++ {
				got, err := table.Solve(pointOf(curve, k), 1000)
				c.Assert(err, qt.IsNil, qt.Commentf("k=%d", k))
				c.Assert(got, qt.Equals, k)
			}
			for _, k := range []uint64{500, 999, 1000} {
				got, err := table.Solve(pointOf(curve, k), 1000)
				c.Assert(err, qt.IsNil, qt.Commentf("k=%d", k))
				c.Assert(got, qt.Equals, k)
			}
		})
	}
}

func TestSolveScenario(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	// small table, searched well beyond its build bound
	table, err := NewTable(curve, 25, 1)
	c.Assert(err, qt.IsNil)

	targets := make([]ecc.Point, 101)
	for k := range targets {
		targets[k] = pointOf(curve, uint64(k))
	}
	results := table.SolveBatch(targets, 100)
	c.Assert(results, qt.HasLen, len(targets))
	for k, res := range results {
		c.Assert(res.Err, qt.IsNil, qt.Commentf("k=%d", k))
		c.Assert(res.Count, qt.Equals, uint64(k))
	}
}

func TestSolveBounds(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	table, err := NewTable(curve, 25, 1)
	c.Assert(err, qt.IsNil)

	// beyond the requested bound
	_, err = table.Solve(pointOf(curve, 200), 100)
	c.Assert(err, qt.ErrorIs, ErrMaxLogExceeded)

	// negative logarithms are outside every window
	neg := curve.New()
	neg.Neg(pointOf(curve, 3))
	_, err = table.Solve(neg, 100)
	c.Assert(err, qt.ErrorIs, ErrMaxLogExceeded)

	// the bound is per call, not baked into the table
	got, err := table.Solve(pointOf(curve, 80), 100)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(80))
}

func TestSolveBatchKeepsOrder(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	table, err := NewTable(curve, 100, 0)
	c.Assert(err, qt.IsNil)

	targets := []ecc.Point{
		pointOf(curve, 7),
		pointOf(curve, 75), // beyond maxLog below
		curve.New(),        // identity
		pointOf(curve, 42),
	}
	results := table.SolveBatch(targets, 50)
	c.Assert(results, qt.HasLen, 4)
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[0].Count, qt.Equals, uint64(7))
	c.Assert(results[1].Err, qt.ErrorIs, ErrMaxLogExceeded)
	c.Assert(results[2].Err, qt.IsNil)
	c.Assert(results[2].Count, qt.Equals, uint64(0))
	c.Assert(results[3].Err, qt.IsNil)
	c.Assert(results[3].Count, qt.Equals, uint64(42))
}

func TestSolveCorruptedTable(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	table, err := NewTable(curve, 100, 0)
	c.Assert(err, qt.IsNil)

	// overwrite one entry with an index that belongs to a different point
	table.babySteps[pointKey(pointOf(curve, 2))] = 4

	_, err = table.Solve(pointOf(curve, 2), 100)
	c.Assert(err, qt.ErrorIs, ErrTableCorrupted)
}
