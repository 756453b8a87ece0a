package elgamal

import "fmt"

// Decode errors, returned before any cryptographic check runs. They are
// never conflated with a failed verification.
var (
	ErrInvalidProofSize      = fmt.Errorf("invalid proof size")
	ErrInvalidCiphertextSize = fmt.Errorf("invalid ciphertext size")
	ErrInvalidPoint          = fmt.Errorf("invalid curve point")
	ErrInvalidScalar         = fmt.Errorf("invalid scalar")
)

// ErrInvalidProof is returned when a well-formed proof fails verification.
var ErrInvalidProof = fmt.Errorf("invalid decryption proof")
