package storage

import (
	"fmt"

	"github.com/vocdoni/tallyproof/db/prefixeddb"
	"github.com/vocdoni/tallyproof/log"
	"github.com/vocdoni/tallyproof/types"
)

// SetResults stores the tally results of a finalized election, keyed by the
// election ID. Results for an election are unique and never rewritten, so a
// second write for the same election returns ErrKeyAlreadyExists.
func (s *Storage) SetResults(results *types.TallyResults) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if len(results.ElectionID) == 0 {
		return fmt.Errorf("results have no election id")
	}
	if len(results.Counts) != len(results.Proofs) || len(results.Counts) != len(results.Messages) {
		return fmt.Errorf("results for election %s: counts, messages and proofs length mismatch",
			results.ElectionID.String())
	}
	if err := s.setArtifact(resultsPrefix, results.ElectionID, results); err != nil {
		return fmt.Errorf("store results for election %s: %w", results.ElectionID.String(), err)
	}
	s.cache.Add(cacheKey(resultsPrefix, results.ElectionID), results)

	log.Debugw("stored tally results",
		"electionID", results.ElectionID.String(),
		"options", len(results.Counts))
	return nil
}

// Results retrieves the tally results of an election. It returns ErrNotFound
// if the election has not been finalized yet.
func (s *Storage) Results(electionID types.HexBytes) (*types.TallyResults, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if cached, ok := s.cache.Get(cacheKey(resultsPrefix, electionID)); ok {
		if results, ok := cached.(*types.TallyResults); ok {
			return results, nil
		}
	}
	results := new(types.TallyResults)
	if err := s.getArtifact(resultsPrefix, electionID, results); err != nil {
		return nil, err
	}
	s.cache.Add(cacheKey(resultsPrefix, electionID), results)
	return results, nil
}

// HasResults checks if tally results exist for a given election. It is used
// to prevent re-running a decryption that already produced results.
func (s *Storage) HasResults(electionID types.HexBytes) bool {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.hasResults(electionID)
}

func (s *Storage) hasResults(electionID types.HexBytes) bool {
	_, err := prefixeddb.NewPrefixedReader(s.db, resultsPrefix).Get(electionID)
	return err == nil
}
