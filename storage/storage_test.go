package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyproof/crypto/ecc/bjj"
	"github.com/vocdoni/tallyproof/db"
	"github.com/vocdoni/tallyproof/db/pebbledb"
	"github.com/vocdoni/tallyproof/types"
)

func newTestStorage(t *testing.T) *Storage {
	database, err := pebbledb.New(db.Options{Path: filepath.Join(t.TempDir(), "db")})
	qt.Assert(t, err, qt.IsNil)
	st := New(database)
	t.Cleanup(st.Close)
	return st
}

// testElection builds an election with opaque but well-formed payloads. The
// storage layer never decodes public keys or ciphertexts, so fixed bytes are
// enough here.
func testElection(id byte, options int) *types.Election {
	election := &types.Election{
		ID:        bytes.Repeat([]byte{id}, 8),
		CurveType: bjj.CurveType,
		MaxValue:  1000,
		PublicKey: bytes.Repeat([]byte{0xaa}, 32),
	}
	for i := 0; i < options; i++ {
		election.Options = append(election.Options, bytes.Repeat([]byte{byte(i + 1)}, 64))
	}
	return election
}

func testResults(electionID types.HexBytes, options int) *types.TallyResults {
	results := &types.TallyResults{ElectionID: electionID}
	for i := 0; i < options; i++ {
		results.Counts = append(results.Counts, new(types.BigInt).SetUint64(uint64(i*10)))
		results.Messages = append(results.Messages, bytes.Repeat([]byte{byte(i + 1)}, 32))
		results.Proofs = append(results.Proofs, bytes.Repeat([]byte{byte(i + 1)}, 96))
	}
	return results
}

func TestElectionStorage(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)

	election := testElection(1, 3)

	// Scenario: empty storage
	_, err := st.Election(election.ID)
	c.Assert(err, qt.ErrorIs, ErrNotFound, qt.Commentf("no elections expected initially"))

	// Store, then drop the cache so the fetch exercises the decode path
	c.Assert(st.SetElection(election), qt.IsNil)
	st.cache.Purge()

	got, err := st.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.DeepEquals, election.ID)
	c.Assert(got.CurveType, qt.Equals, election.CurveType)
	c.Assert(got.MaxValue, qt.Equals, election.MaxValue)
	c.Assert(got.PublicKey, qt.DeepEquals, election.PublicKey)
	c.Assert(got.Options, qt.DeepEquals, election.Options)

	// The second fetch is served from the cache
	cached, err := st.Election(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(cached, qt.Equals, got)

	// Elections are write-once
	err = st.SetElection(election)
	c.Assert(err, qt.ErrorIs, ErrKeyAlreadyExists)

	// Listing preserves storage order
	other := testElection(2, 1)
	c.Assert(st.SetElection(other), qt.IsNil)
	ids, err := st.ListElections()
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.DeepEquals, []types.HexBytes{election.ID, other.ID})
}

func TestElectionValidation(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)

	for name, mutate := range map[string]func(*types.Election){
		"no id":         func(e *types.Election) { e.ID = nil },
		"no curve type": func(e *types.Election) { e.CurveType = "" },
		"no public key": func(e *types.Election) { e.PublicKey = nil },
		"no options":    func(e *types.Election) { e.Options = nil },
		"no max value":  func(e *types.Election) { e.MaxValue = 0 },
	} {
		election := testElection(1, 2)
		mutate(election)
		c.Assert(st.SetElection(election), qt.IsNotNil, qt.Commentf("case %q", name))
	}

	election := testElection(1, 2)
	election.CurveType = "p256"
	c.Assert(st.SetElection(election), qt.ErrorMatches, ".*unsupported curve type.*")
}

func TestResultsStorage(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)

	election := testElection(1, 2)
	c.Assert(st.SetElection(election), qt.IsNil)

	// Scenario: not finalized yet
	c.Assert(st.HasResults(election.ID), qt.IsFalse)
	_, err := st.Results(election.ID)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	// Malformed results are rejected before touching the database
	c.Assert(st.SetResults(&types.TallyResults{}), qt.IsNotNil, qt.Commentf("missing election id"))
	broken := testResults(election.ID, 2)
	broken.Proofs = broken.Proofs[:1]
	c.Assert(st.SetResults(broken), qt.ErrorMatches, ".*length mismatch.*")

	// Store, then drop the cache so the fetch exercises the decode path
	results := testResults(election.ID, 2)
	c.Assert(st.SetResults(results), qt.IsNil)
	c.Assert(st.HasResults(election.ID), qt.IsTrue)
	st.cache.Purge()

	got, err := st.Results(election.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.ElectionID, qt.DeepEquals, election.ID)
	c.Assert(got.Counts, qt.DeepEquals, results.Counts)
	c.Assert(got.Messages, qt.DeepEquals, results.Messages)
	c.Assert(got.Proofs, qt.DeepEquals, results.Proofs)

	// Results are write-once
	err = st.SetResults(testResults(election.ID, 2))
	c.Assert(err, qt.ErrorIs, ErrKeyAlreadyExists)
}

func TestPendingElections(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)

	first := testElection(1, 1)
	second := testElection(2, 1)
	c.Assert(st.SetElection(first), qt.IsNil)
	c.Assert(st.SetElection(second), qt.IsNil)

	pending, err := st.PendingElections()
	c.Assert(err, qt.IsNil)
	c.Assert(pending, qt.DeepEquals, []types.HexBytes{first.ID, second.ID})

	c.Assert(st.SetResults(testResults(first.ID, 1)), qt.IsNil)

	pending, err = st.PendingElections()
	c.Assert(err, qt.IsNil)
	c.Assert(pending, qt.DeepEquals, []types.HexBytes{second.ID})
}

func TestDeleteElection(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)

	election := testElection(1, 1)
	c.Assert(st.SetElection(election), qt.IsNil)
	c.Assert(st.SetResults(testResults(election.ID, 1)), qt.IsNil)

	c.Assert(st.DeleteElection(election.ID), qt.IsNil)

	// Both the election and its results are gone, including cached copies
	_, err := st.Election(election.ID)
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	c.Assert(st.HasResults(election.ID), qt.IsFalse)
	_, err = st.Results(election.ID)
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	// Deleting an unknown election is a no-op
	c.Assert(st.DeleteElection(types.HexBytes("missing")), qt.IsNil)
}

func TestArtifactHelpers(t *testing.T) {
	c := qt.New(t)
	st := newTestStorage(t)
	prefix := []byte("t/")

	type artifact struct {
		Name  string
		Value uint64
	}

	// Without a key, one is derived from the encoded artifact
	stored := artifact{Name: "first", Value: 42}
	c.Assert(st.setArtifact(prefix, nil, &stored), qt.IsNil)

	var out artifact
	c.Assert(st.getArtifact(prefix, nil, &out), qt.IsNil)
	c.Assert(out, qt.DeepEquals, stored)

	// The derived key is the truncated hash of the encoding
	data, err := EncodeArtifact(&stored)
	c.Assert(err, qt.IsNil)
	c.Assert(st.getArtifact(prefix, hashKey(data), &out), qt.IsNil)
	c.Assert(out, qt.DeepEquals, stored)

	// Storing the same artifact again collides on the derived key
	c.Assert(st.setArtifact(prefix, nil, &stored), qt.ErrorIs, ErrKeyAlreadyExists)

	// Unknown keys and empty prefixes report ErrNotFound
	c.Assert(st.getArtifact(prefix, []byte("missing"), &out), qt.ErrorIs, ErrNotFound)
	c.Assert(st.getArtifact([]byte("empty/"), nil, &out), qt.ErrorIs, ErrNotFound)
}
