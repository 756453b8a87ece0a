// Package elgamal implements homomorphic ElGamal encryption over the curves
// supported by crypto/ecc, together with the Chaum-Pedersen proof of correct
// decryption used to publish verifiable tally results.
package elgamal

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/vocdoni/tallyproof/crypto"
	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// RandK function generates a random k value for encryption,
// inside the scalar field of the given curve order.
func RandK(order *big.Int) (*big.Int, error) {
	kBytes := make([]byte, 20)
	_, err := rand.Read(kBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random k: %v", err)
	}
	k := new(big.Int).SetBytes(kBytes)
	return crypto.BigToFF(order, k), nil
}

// Encrypt function encrypts a message using the public key provided as
// elliptic curve point. It generates a random k and returns the two points
// that represent the encrypted message and the random k used to encrypt it.
// It returns an error if any.
func Encrypt(publicKey ecc.Point, msg *big.Int) (ecc.Point, ecc.Point, *big.Int, error) {
	k, err := RandK(publicKey.Order())
	if err != nil {
		return nil, nil, nil, err
	}
	// encrypt the message using the random k generated
	c1, c2 := EncryptWithK(publicKey, msg, k)
	return c1, c2, k, nil
}

// EncryptWithK function encrypts a message using the public key provided as
// elliptic curve point and the random k value provided. It returns the two
// points that represent the encrypted message.
func EncryptWithK(pubKey ecc.Point, msg, k *big.Int) (ecc.Point, ecc.Point) {
	order := pubKey.Order()
	// ensure the message is within the field
	msg.Mod(msg, order)
	// compute C1 = k * G
	c1 := pubKey.New()
	c1.ScalarBaseMult(k)
	// compute s = k * pubKey
	s := pubKey.New()
	s.ScalarMult(pubKey, k)
	// encode message as point M = message * G
	m := pubKey.New()
	m.ScalarBaseMult(msg)
	// compute C2 = M + s
	c2 := pubKey.New()
	c2.Add(m, s)
	return c1, c2
}

// GenerateKey generates a new public/private ElGamal encryption key pair.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	order := curve.Order()
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %v", err)
	}
	if d.Sign() == 0 {
		d = big.NewInt(1) // avoid zero private keys
	}
	publicKey = curve.New()
	publicKey.SetGenerator()
	publicKey.ScalarMult(publicKey, d)
	return publicKey, d, nil
}

// DecryptPoint recovers the plaintext point M = C2 - d·C1 from the
// ciphertext using the private key d.
//
// The returned point encodes the aggregated counter as M = m·G. Recovering
// m itself is a bounded discrete logarithm search, handled separately by the
// crypto/dlog package so the precomputed table can be shared across calls.
func DecryptPoint(privateKey *big.Int, ct *Ciphertext) (ecc.Point, error) {
	if privateKey == nil || privateKey.Sign() <= 0 {
		return nil, fmt.Errorf("empty or negative private key")
	}

	M := ct.C2.New()
	M.Set(ct.C2)

	tmp := ct.C1.New()
	tmp.ScalarMult(ct.C1, privateKey) // tmp = d·C1
	tmp.Neg(tmp)                      //       -d·C1
	M.Add(M, tmp)                     // M = C2 - d·C1
	return M, nil
}

// CheckK checks if a given k was used to produce the ciphertext (c1, c2) under the given publicKey.
// It returns true if c1 == k * G, false otherwise.
// This does not require decrypting the message or computing the discrete log.
func CheckK(c1 ecc.Point, k *big.Int) bool {
	// Compute KCheck = k * G
	KCheck := c1.New()
	KCheck.ScalarBaseMult(k)

	// Compare KCheck with c1
	return KCheck.Equal(c1)
}
