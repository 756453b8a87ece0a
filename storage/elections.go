package storage

import (
	"fmt"

	"github.com/vocdoni/tallyproof/crypto/ecc/curves"
	"github.com/vocdoni/tallyproof/types"
)

// SetElection stores a new election. The election must pass its own
// validation and reference a supported curve type. Elections are immutable
// once stored, so a second write for the same ID returns
// ErrKeyAlreadyExists.
func (s *Storage) SetElection(election *types.Election) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := election.Validate(); err != nil {
		return err
	}
	if !curves.IsValid(election.CurveType) {
		return fmt.Errorf("election %s: unsupported curve type %q", election.ID.String(), election.CurveType)
	}
	if err := s.setArtifact(electionPrefix, election.ID, election); err != nil {
		return fmt.Errorf("store election %s: %w", election.ID.String(), err)
	}
	s.cache.Add(cacheKey(electionPrefix, election.ID), election)
	return nil
}

// Election retrieves an election by ID. It returns ErrNotFound if the ID is
// unknown.
func (s *Storage) Election(electionID types.HexBytes) (*types.Election, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if cached, ok := s.cache.Get(cacheKey(electionPrefix, electionID)); ok {
		if election, ok := cached.(*types.Election); ok {
			return election, nil
		}
	}
	election := new(types.Election)
	if err := s.getArtifact(electionPrefix, electionID, election); err != nil {
		return nil, err
	}
	s.cache.Add(cacheKey(electionPrefix, electionID), election)
	return election, nil
}

// ListElections returns the ID of every stored election, in storage order.
func (s *Storage) ListElections() ([]types.HexBytes, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	keys, err := s.listArtifacts(electionPrefix)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	ids := make([]types.HexBytes, len(keys))
	for i, key := range keys {
		ids[i] = types.HexBytes(key)
	}
	return ids, nil
}

// PendingElections returns the ID of every election with no tally results
// yet. The finalizer polls it to find work.
func (s *Storage) PendingElections() ([]types.HexBytes, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	keys, err := s.listArtifacts(electionPrefix)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	var ids []types.HexBytes
	for _, key := range keys {
		if s.hasResults(key) {
			continue
		}
		ids = append(ids, types.HexBytes(key))
	}
	return ids, nil
}

// DeleteElection removes an election together with its results, if any.
func (s *Storage) DeleteElection(electionID types.HexBytes) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := s.deleteArtifact(electionPrefix, electionID); err != nil {
		return fmt.Errorf("delete election %s: %w", electionID.String(), err)
	}
	if err := s.deleteArtifact(resultsPrefix, electionID); err != nil {
		return fmt.Errorf("delete results for election %s: %w", electionID.String(), err)
	}
	s.cache.Remove(cacheKey(electionPrefix, electionID))
	s.cache.Remove(cacheKey(resultsPrefix, electionID))
	return nil
}
