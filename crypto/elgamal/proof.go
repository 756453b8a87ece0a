// -----------------------------------------------------------------------------
//  Chaum-Pedersen NIZK proof of correct ElGamal decryption
//
//  Context (refs):
//   – C. Pedersen & D. Chaum, “Wallet Databases with Observers” (1992)
//   – Helios e-voting scheme (https://doi.org/10.1007/978-3-642-12980-3_9)
//
//  Goal: prove NON-interactively that a plaintext point M is the correct
//  decryption of ciphertext (C1, C2) under public key P = d·G, *without*
//  revealing either the private key d or the encryption nonce k.
//  We prove equality of discrete logs:
//
//        log_G(P)  =  log_{C1}(C2 – M)
//
//  The Σ-protocol is rendered non-interactive with the Fiat–Shamir transform
//  (hashing all public data to obtain the challenge).
// -----------------------------------------------------------------------------
//
//  Public data                Secret held by prover
//  ------------               ----------------------
//    G     group generator       d   private key
//    P     = d·G                 r   fresh random scalar
//    C1,C2 ciphertext            (k itself never appears)
//    M     plaintext point
//
//  Prover (BuildDecryptionProof):
//    1.  Pick r ← 𝔽*.
//    2.  A1 = r·G,  A2 = r·C1                  (commitment)
//    3.  D  = d·C1                             (decryption mask)
//    4.  e  = H(P,C1,C2,D,A1,A2) mod order     (Fiat–Shamir)
//    5.  z  = r + e·d mod order                (response)
//
//  Proof is (A1,A2,z).
//
//  Verifier (Verify):
//    Recompute D = C2 – M and e, then check
//        z·G  ==  A1 + e·P
//        z·C1 ==  A2 + e·D
//  Both must hold for the proof to be accepted.
// -----------------------------------------------------------------------------

package elgamal

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/arbo"

	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// DecryptionProof is a non-interactive Chaum–Pedersen proof that
// C2 – M and C1 share the same discrete log with respect to P and G.
type DecryptionProof struct {
	A1 ecc.Point // = r·G        (commitment wrt base G)
	A2 ecc.Point // = r·C1       (commitment wrt base C1)
	Z  *big.Int  // = r + e·d    (response)
}

// ProofSize returns the byte length of a serialized decryption proof on the
// given curve.
func ProofSize(curve ecc.Point) int {
	return 2*curve.Size() + ecc.ScalarSize
}

// BuildDecryptionProof creates a Chaum–Pedersen NIZK proving that the holder
// of privateKey decrypted the ciphertext correctly. The proof commits to the
// decryption mask d·C1, so the plaintext itself is not needed here. Fresh
// randomness is drawn from rnd, or from crypto/rand when rnd is nil.
func BuildDecryptionProof(
	rnd io.Reader,
	privateKey *big.Int,
	publicKey ecc.Point,
	ct *Ciphertext,
) (*DecryptionProof, error) {
	return BuildDecryptionProofWithChallenge(rnd, DefaultChallenge, privateKey, publicKey, ct)
}

// BuildDecryptionProofWithChallenge is BuildDecryptionProof with an explicit
// challenge transcript implementation.
func BuildDecryptionProofWithChallenge(
	rnd io.Reader,
	transcript Challenge,
	privateKey *big.Int,
	publicKey ecc.Point,
	ct *Ciphertext,
) (*DecryptionProof, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	order := publicKey.Order()

	// 1. Sample fresh randomness r ∈ [1,order-1]
	r, err := rand.Int(rnd, order)
	if err != nil {
		return nil, fmt.Errorf("failed to sample r: %v", err)
	}
	if r.Sign() == 0 { // reject 0
		r = big.NewInt(1)
	}

	// 2. Compute commitments A1 = r·G,  A2 = r·C1
	A1 := publicKey.New()
	A1.ScalarBaseMult(r) // r·G

	A2 := publicKey.New()
	A2.ScalarMult(ct.C1, r) // r·C1

	// 3. Compute the decryption mask D = d·C1, which equals C2 – M for the
	// true plaintext M
	D := publicKey.New()
	D.ScalarMult(ct.C1, privateKey)

	// 4. Fiat–Shamir challenge e = H(P,C1,C2,D,A1,A2) mod order
	e, err := transcript.DecryptionChallenge(publicKey, ct, D, A1, A2)
	if err != nil {
		return nil, fmt.Errorf("failed to derive challenge: %w", err)
	}

	// 5. Response z = r + e·d mod order
	z := new(big.Int).Mul(e, privateKey)
	z.Add(z, r)
	z.Mod(z, order)

	return &DecryptionProof{A1: A1, A2: A2, Z: z}, nil
}

// Verify checks a Chaum–Pedersen proof of correct decryption against the
// claimed plaintext point msg. Returns nil if the proof is valid.
func (p *DecryptionProof) Verify(publicKey ecc.Point, ct *Ciphertext, msg ecc.Point) error {
	return p.VerifyWithChallenge(DefaultChallenge, publicKey, ct, msg)
}

// VerifyWithChallenge is Verify with an explicit challenge transcript
// implementation, which must match the one used by the prover.
func (p *DecryptionProof) VerifyWithChallenge(
	transcript Challenge,
	publicKey ecc.Point,
	ct *Ciphertext,
	msg ecc.Point,
) error {
	// Recompute D = C2 – M
	D := publicKey.New()
	negM := publicKey.New()
	negM.Neg(msg)
	D.Add(ct.C2, negM)

	// Recompute Fiat–Shamir challenge e
	e, err := transcript.DecryptionChallenge(publicKey, ct, D, p.A1, p.A2)
	if err != nil {
		return fmt.Errorf("failed to derive challenge: %w", err)
	}

	// Check 1:  z·G  ==  A1 + e·P
	left1 := publicKey.New()
	left1.ScalarBaseMult(p.Z) // z·G

	right1 := publicKey.New()
	right1.Set(p.A1)
	tmp := publicKey.New()
	tmp.ScalarMult(publicKey, e) // e·P
	right1.Add(right1, tmp)      // A1 + e·P

	if !left1.Equal(right1) {
		return fmt.Errorf("%w: first equation fails", ErrInvalidProof)
	}

	// Check 2:  z·C1 ==  A2 + e·D
	left2 := publicKey.New()
	left2.ScalarMult(ct.C1, p.Z) // z·C1

	right2 := publicKey.New()
	right2.Set(p.A2)
	tmp.ScalarMult(D, e) // reuse tmp : e·D
	right2.Add(right2, tmp)

	if !left2.Equal(right2) {
		return fmt.Errorf("%w: second equation fails", ErrInvalidProof)
	}

	return nil
}

// Bytes serializes the proof as A1 || A2 || Z, with the points in their
// canonical encoding and Z as a fixed-width little-endian scalar. The total
// length is ProofSize bytes for the proof's curve.
func (p *DecryptionProof) Bytes() ([]byte, error) {
	if p == nil || p.A1 == nil || p.A2 == nil || p.Z == nil {
		return nil, fmt.Errorf("incomplete decryption proof")
	}
	var buf bytes.Buffer
	buf.Write(p.A1.Marshal())
	buf.Write(p.A2.Marshal())
	buf.Write(arbo.BigIntToBytes(ecc.ScalarSize, p.Z))
	return buf.Bytes(), nil
}

// DecryptionProofFromBytes decodes a proof serialized by Bytes on the given
// curve. It rejects wrong lengths, undecodable points and non-canonical
// scalars without recovering a partial proof.
func DecryptionProofFromBytes(curve ecc.Point, data []byte) (*DecryptionProof, error) {
	pointSize := curve.Size()
	if len(data) != 2*pointSize+ecc.ScalarSize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrInvalidProofSize, len(data), 2*pointSize+ecc.ScalarSize)
	}
	a1 := curve.New()
	if err := a1.Unmarshal(data[:pointSize]); err != nil {
		return nil, fmt.Errorf("%w: a1: %v", ErrInvalidPoint, err)
	}
	a2 := curve.New()
	if err := a2.Unmarshal(data[pointSize : 2*pointSize]); err != nil {
		return nil, fmt.Errorf("%w: a2: %v", ErrInvalidPoint, err)
	}
	z := arbo.BytesToBigInt(data[2*pointSize:])
	if z.Cmp(curve.Order()) >= 0 {
		return nil, fmt.Errorf("%w: z is not reduced", ErrInvalidScalar)
	}
	return &DecryptionProof{A1: a1, A2: a2, Z: z}, nil
}

// VerifiedPlaintext decodes rawProof and verifies it against the ciphertext
// and the claimed plaintext point msg, returning msg only when the proof
// holds. Callers that go through this entry can never use an unverified
// plaintext.
func VerifiedPlaintext(publicKey ecc.Point, rawProof []byte, ct *Ciphertext, msg ecc.Point) (ecc.Point, error) {
	proof, err := DecryptionProofFromBytes(publicKey, rawProof)
	if err != nil {
		return nil, err
	}
	if err := proof.Verify(publicKey, ct, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
