package elgamal

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/vocdoni/tallyproof/crypto/ecc"
	"github.com/vocdoni/tallyproof/crypto/hash/poseidon"
)

// Challenge derives the Fiat-Shamir challenge scalar that binds a decryption
// proof to its transcript. The transcript covers the public key, both
// ciphertext points, the decryption mask D and the two commitments, in that
// order. The tuple and its order are part of the wire contract, so prover and
// verifier must use the same implementation.
type Challenge interface {
	DecryptionChallenge(publicKey ecc.Point, ct *Ciphertext, d, a1, a2 ecc.Point) (*big.Int, error)
}

// DefaultChallenge is the transcript used by BuildDecryptionProof and Verify
// when no explicit implementation is given.
var DefaultChallenge Challenge = PoseidonChallenge{}

// PoseidonChallenge hashes the affine coordinates of the transcript points
// with Poseidon, keeping the challenge computable inside a zkSNARK circuit.
type PoseidonChallenge struct{}

// DecryptionChallenge implements the Challenge interface.
func (PoseidonChallenge) DecryptionChallenge(publicKey ecc.Point, ct *Ciphertext,
	d, a1, a2 ecc.Point,
) (*big.Int, error) {
	inputs := []*big.Int{}
	for _, p := range []ecc.Point{publicKey, ct.C1, ct.C2, d, a1, a2} {
		x, y := p.Point()
		inputs = append(inputs, x, y)
	}
	digest, err := poseidon.MultiPoseidon(inputs...)
	if err != nil {
		return nil, fmt.Errorf("failed to hash transcript: %w", err)
	}
	return digest.Mod(digest, publicKey.Order()), nil
}

// Blake2bChallenge hashes the canonical point encodings of the transcript
// with BLAKE2b-512. It works on any curve but is not circuit friendly.
type Blake2bChallenge struct{}

// DecryptionChallenge implements the Challenge interface.
func (Blake2bChallenge) DecryptionChallenge(publicKey ecc.Point, ct *Ciphertext,
	d, a1, a2 ecc.Point,
) (*big.Int, error) {
	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init transcript hash: %w", err)
	}
	for _, p := range []ecc.Point{publicKey, ct.C1, ct.C2, d, a1, a2} {
		if _, err := h.Write(p.Marshal()); err != nil {
			return nil, fmt.Errorf("failed to hash transcript: %w", err)
		}
	}
	e := new(big.Int).SetBytes(h.Sum(nil))
	return e.Mod(e, publicKey.Order()), nil
}
