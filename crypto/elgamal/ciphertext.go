package elgamal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// Ciphertext represents an ElGamal encrypted message with homomorphic properties.
// It is a wrapper for convenience of the elGamal ciphersystem that encapsulates
// the two points of a ciphertext.
type Ciphertext struct {
	C1 ecc.Point `json:"c1"`
	C2 ecc.Point `json:"c2"`
}

// CiphertextSize returns the byte length of a serialized ciphertext on the
// given curve.
func CiphertextSize(curve ecc.Point) int {
	return 2 * curve.Size()
}

// NewCiphertext creates a new Ciphertext on the same curve as the given Point.
// The Point must be one of the curves supported by the crypto/ecc/curves
// package, it can be easily created with curves.New(type).
func NewCiphertext(curve ecc.Point) *Ciphertext {
	return &Ciphertext{C1: curve.New(), C2: curve.New()}
}

// Encrypt encrypts a message using the public key provided as elliptic curve point.
// The randomness k can be provided or nil to generate a new one.
func (z *Ciphertext) Encrypt(message *big.Int, publicKey ecc.Point, k *big.Int) (*Ciphertext, error) {
	var err error
	if k == nil {
		k, err = RandK(publicKey.Order())
		if err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	z.C1, z.C2 = EncryptWithK(publicKey, message, k)
	return z, nil
}

// Add adds two Ciphertext and stores the result in z, which is also returned.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.SafeAdd(x.C1, y.C1)
	z.C2.SafeAdd(x.C2, y.C2)
	return z
}

// Serialize returns C1 and C2 in their canonical point encoding, concatenated.
// The result is 2*Size() bytes long.
func (z *Ciphertext) Serialize() []byte {
	var buf bytes.Buffer
	buf.Write(z.C1.Marshal())
	buf.Write(z.C2.Marshal())
	return buf.Bytes()
}

// Deserialize reconstructs a Ciphertext from a slice of bytes produced by
// Serialize. The input must be exactly 2*Size() bytes and both halves must
// decode as valid curve points, otherwise an error is returned and the
// receiver is left unusable.
func (z *Ciphertext) Deserialize(data []byte) error {
	pointSize := z.C1.Size()
	if len(data) != 2*pointSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidCiphertextSize, len(data), 2*pointSize)
	}
	if err := z.C1.Unmarshal(data[:pointSize]); err != nil {
		return fmt.Errorf("%w: c1: %v", ErrInvalidPoint, err)
	}
	if err := z.C2.Unmarshal(data[pointSize:]); err != nil {
		return fmt.Errorf("%w: c2: %v", ErrInvalidPoint, err)
	}
	return nil
}

// Marshal converts Ciphertext to a byte slice.
func (z *Ciphertext) Marshal() ([]byte, error) {
	return json.Marshal(z)
}

// Unmarshal populates Ciphertext from a byte slice.
func (z *Ciphertext) Unmarshal(data []byte) error {
	return json.Unmarshal(data, z)
}

// String returns a string representation of the Ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.C1 == nil || z.C2 == nil {
		return "{C1: nil, C2: nil}"
	}
	return fmt.Sprintf("{C1: %s, C2: %s}", z.C1.String(), z.C2.String())
}
