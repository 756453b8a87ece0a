package curves

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyproof/crypto/ecc/bjj"
	"github.com/vocdoni/tallyproof/crypto/ecc/bn254"
	"github.com/vocdoni/tallyproof/util"
)

func TestRegistry(t *testing.T) {
	c := qt.New(t)
	for _, curveType := range Curves() {
		c.Assert(IsValid(curveType), qt.IsTrue)
		p := New(curveType)
		c.Assert(p.Type(), qt.Equals, curveType)
	}
	c.Assert(IsValid("p256"), qt.IsFalse)
	c.Assert(func() { New("p256") }, qt.PanicMatches, "unsupported curve type.*")
}

func TestPointArithmetic(t *testing.T) {
	for _, curveType := range Curves() {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)
			g := New(curveType)
			g.SetGenerator()

			// doubling via Add must match scalar multiplication by two
			viaAdd := New(curveType)
			viaAdd.Add(g, g)
			viaMul := New(curveType)
			viaMul.ScalarMult(g, big.NewInt(2))
			c.Assert(viaAdd.Equal(viaMul), qt.IsTrue)

			// ScalarBaseMult must agree with ScalarMult over the generator
			k := util.RandomBigInt(big.NewInt(1), g.Order())
			baseMul := New(curveType)
			baseMul.ScalarBaseMult(k)
			genMul := New(curveType)
			genMul.ScalarMult(g, k)
			c.Assert(baseMul.Equal(genMul), qt.IsTrue)

			// adding the negation yields the identity
			neg := New(curveType)
			neg.Neg(baseMul)
			sum := New(curveType)
			sum.Add(baseMul, neg)
			c.Assert(sum.Equal(New(curveType)), qt.IsTrue)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, curveType := range Curves() {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)
			p := New(curveType)
			p.ScalarBaseMult(util.RandomBigInt(big.NewInt(1), p.Order()))

			data := p.Marshal()
			c.Assert(data, qt.HasLen, p.Size())

			q := New(curveType)
			c.Assert(q.Unmarshal(data), qt.IsNil)
			c.Assert(q.Equal(p), qt.IsTrue)
		})
	}
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	c := qt.New(t)

	// a tampered y coordinate must not decode as a bn254 point
	p := New(bn254.CurveType)
	p.SetGenerator()
	buf := p.Marshal()
	buf[len(buf)-1] ^= 0x01
	c.Assert(New(bn254.CurveType).Unmarshal(buf), qt.IsNotNil)

	// compressed bjj points have a fixed length
	c.Assert(New(bjj.CurveType).Unmarshal(make([]byte, 16)), qt.IsNotNil)
}

func TestCompressedCoord(t *testing.T) {
	for _, curveType := range Curves() {
		t.Run(curveType, func(t *testing.T) {
			c := qt.New(t)

			// the identity has no distinguishing coordinate
			_, ok := New(curveType).CompressedCoord()
			c.Assert(ok, qt.IsFalse)

			p := New(curveType)
			p.ScalarBaseMult(util.RandomBigInt(big.NewInt(1), p.Order()))
			coord, ok := p.CompressedCoord()
			c.Assert(ok, qt.IsTrue)
			c.Assert(coord, qt.HasLen, 32)

			// a point and its negation share the coordinate
			neg := New(curveType)
			neg.Neg(p)
			negCoord, ok := neg.CompressedCoord()
			c.Assert(ok, qt.IsTrue)
			c.Assert(negCoord, qt.DeepEquals, coord)

			// an unrelated point does not
			q := New(curveType)
			g := New(curveType)
			g.SetGenerator()
			q.Add(p, g)
			otherCoord, ok := q.CompressedCoord()
			c.Assert(ok, qt.IsTrue)
			c.Assert(otherCoord, qt.Not(qt.DeepEquals), coord)
		})
	}
}
