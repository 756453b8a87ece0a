/*
Package storage provides the persistence layer for tally decryption rounds.

# Storage Organization

The storage uses a key-value database with prefixed namespaces:

  - e/ : electionID → Election (curve type, committee public key and the
    aggregated ciphertext of every vote option)
  - r/ : electionID → TallyResults (recovered counts, decrypted group
    elements and the decryption proofs)

Both namespaces hold public protocol data only. Committee secret keys live in
memory inside the finalizer and never reach this package.

Artifacts are encoded with deterministic CBOR, so an artifact stored without
an explicit key gets a stable hash-derived one. Elections and results are
write-once: storing an existing key returns ErrKeyAlreadyExists.
*/
package storage

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vocdoni/tallyproof/db"
	"github.com/vocdoni/tallyproof/db/prefixeddb"
	"github.com/vocdoni/tallyproof/log"
	"github.com/vocdoni/tallyproof/types"
)

var (
	ErrKeyAlreadyExists = errors.New("key already exists")
	ErrNotFound         = errors.New("not found")

	// Prefixes
	electionPrefix = []byte("e/")
	resultsPrefix  = []byte("r/")

	maxKeySize = 12
)

// Storage manages elections and their tally results.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex              // Lock for global operations
	cache      *lru.Cache[string, any] // Cache for artifacts
}

// New creates a new Storage instance on the given database.
func New(database db.Database) *Storage {
	cache, err := lru.New[string, any](1000)
	if err != nil {
		log.Fatalf("failed to create LRU cache: %v", err)
	}
	return &Storage{
		db:    database,
		cache: cache,
	}
}

// Close closes the storage and its underlying database.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("failed to close storage", "error", err)
	}
}

// setArtifact helper function stores any kind of artifact in the storage. It
// receives the prefix of the key, the key itself and the artifact to store.
// If the key is not provided, it is derived by hashing the encoded artifact
// itself. Artifacts are write-once: it returns ErrKeyAlreadyExists if the key
// already exists.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	// encode the artifact
	data, err := EncodeArtifact(artifact)
	if err != nil {
		return err
	}
	if key == nil {
		key = hashKey(data)
	}

	// instance a write transaction with the prefix provided
	wTx := prefixeddb.NewPrefixedDatabase(s.db, prefix).WriteTx()
	defer wTx.Discard()

	if _, err := wTx.Get(key); err == nil {
		return ErrKeyAlreadyExists
	}
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

// getArtifact helper function retrieves any kind of artifact from the
// storage. It receives the prefix of the key and a pointer to the artifact to
// decode into. If the key is not provided, it retrieves the first artifact
// found for the prefix. It returns ErrNotFound if nothing is stored under the
// key.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	var data []byte
	var err error
	pdb := prefixeddb.NewPrefixedDatabase(s.db, prefix)
	if key != nil {
		data, err = pdb.Get(key)
		if err != nil {
			return ErrNotFound
		}
	} else {
		if err := pdb.Iterate(nil, func(_, value []byte) bool {
			data = bytes.Clone(value)
			return false
		}); err != nil {
			return err
		}
		if data == nil {
			return ErrNotFound
		}
	}

	if err := DecodeArtifact(data, out); err != nil {
		return fmt.Errorf("could not decode artifact: %w", err)
	}

	return nil
}

// listArtifacts retrieves all the keys for a given prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	if err := prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, bytes.Clone(k))
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}

// deleteArtifact removes an artifact. Deleting a missing key is not an error.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	// instance a write transaction with the prefix provided
	wTx := prefixeddb.NewPrefixedDatabase(s.db, prefix).WriteTx()
	defer wTx.Discard()
	if err := wTx.Delete(key); err != nil {
		return err
	}
	return wTx.Commit()
}

func hashKey(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:maxKeySize]
}

func cacheKey(prefix []byte, key types.HexBytes) string {
	return string(prefix) + key.String()
}
