package types

import (
	"fmt"
	"time"
)

// Election holds the public inputs of a tally decryption round: the curve
// type, the committee public key and the aggregated ciphertext of every vote
// option. Secret key material is never part of an Election and never reaches
// storage.
type Election struct {
	ID        HexBytes   `json:"id"`
	CurveType string     `json:"curveType"`
	MaxValue  uint64     `json:"maxValue"`  // inclusive bound on any single option tally
	PublicKey HexBytes   `json:"publicKey"` // marshaled curve point
	Options   []HexBytes `json:"options"`   // serialized aggregated ciphertexts, one per vote option
	CreatedAt time.Time  `json:"createdAt,omitempty"`
}

// Validate checks that the election carries everything the finalizer needs to
// decrypt it.
func (e *Election) Validate() error {
	if len(e.ID) == 0 {
		return fmt.Errorf("election has no id")
	}
	if e.CurveType == "" {
		return fmt.Errorf("election %s has no curve type", e.ID.String())
	}
	if len(e.PublicKey) == 0 {
		return fmt.Errorf("election %s has no public key", e.ID.String())
	}
	if len(e.Options) == 0 {
		return fmt.Errorf("election %s has no option ciphertexts", e.ID.String())
	}
	if e.MaxValue == 0 {
		return fmt.Errorf("election %s has no max value", e.ID.String())
	}
	return nil
}

// TallyResults is the published outcome of a finalized election: the
// recovered count per vote option together with the decrypted group element
// and the decryption proof that any holder of the public key can verify.
// Counts, Messages and Proofs share the positional order of the election
// options.
type TallyResults struct {
	ElectionID  HexBytes   `json:"electionId"`
	Counts      []*BigInt  `json:"counts"`
	Messages    []HexBytes `json:"messages"` // decrypted group elements, marshaled
	Proofs      []HexBytes `json:"proofs"`   // serialized decryption proofs
	FinalizedAt time.Time  `json:"finalizedAt"`
}
