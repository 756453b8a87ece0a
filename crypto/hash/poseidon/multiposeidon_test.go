package poseidon

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

func TestMultiPoseidon(t *testing.T) {
	c := qt.New(t)

	_, err := MultiPoseidon()
	c.Assert(err, qt.IsNotNil)

	inputs := make([]*big.Int, 40)
	for i := range inputs {
		inputs[i] = big.NewInt(int64(i + 1))
	}

	// small input sets hash exactly like the underlying function
	direct, err := poseidon.Hash(inputs[:16])
	c.Assert(err, qt.IsNil)
	multi, err := MultiPoseidon(inputs[:16]...)
	c.Assert(err, qt.IsNil)
	c.Assert(multi.Cmp(direct), qt.Equals, 0)

	// hashing is deterministic across calls
	h1, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	h2, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h2), qt.Equals, 0)

	// changing a single input changes the hash
	inputs[17] = big.NewInt(1234)
	h3, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h3), qt.Not(qt.Equals), 0)
}
