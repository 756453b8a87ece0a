package pebbledb

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyproof/db"
	"github.com/vocdoni/tallyproof/db/internal/dbtest"
	"github.com/vocdoni/tallyproof/db/prefixeddb"
)

func TestWriteTx(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestWriteTx(t, database)
}

func TestIterate(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestIterate(t, database)
}

func TestWriteTxApply(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestWriteTxApply(t, database)
}

func TestWriteTxApplyPrefixed(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	prefix := []byte("one")
	dbWithPrefix := prefixeddb.NewPrefixedDatabase(database, prefix)

	dbtest.TestWriteTxApplyPrefixed(t, database, dbWithPrefix)
}

// NOTE: This test fails.  pebble.Batch doesn't detect conflicts.  Moreover,
// reads from a pebble.Batch return the last version from the Database, even if
// the update was made after the pebble.Batch was created.  Basically it's not
// a Transaction, but a Batch of write operations.
// func TestConcurrentWriteTx(t *testing.T) {
// 	database, err := New(db.Options{Path: t.TempDir()})
// 	qt.Assert(t, err, qt.IsNil)
//
// 	dbtest.TestConcurrentWriteTx(t, database)
// }

func TestClosedDB(t *testing.T) {
	c := qt.New(t)

	database, err := New(db.Options{Path: t.TempDir()})
	c.Assert(err, qt.IsNil)

	// Write some data
	key := []byte("key")
	value := []byte("value")
	wTx := database.WriteTx()
	otherTx := database.WriteTx()
	c.Assert(wTx.Set(key, value), qt.IsNil)

	// Close the database
	err = database.Close()
	c.Assert(err, qt.IsNil)

	// Every WriteTx method turns into a no-op once the database is closed,
	// instead of panicking inside pebble
	_, err = wTx.Get(key)
	c.Assert(err, qt.IsNil)

	err = wTx.Set(key, []byte("new_value"))
	c.Assert(err, qt.IsNil)

	err = wTx.Delete(key)
	c.Assert(err, qt.IsNil)

	// Iterating visits nothing
	err = wTx.Iterate([]byte("prefix"), func(k, v []byte) bool {
		c.Fatalf("Iterate should not be called after closing the database")
		return true
	})
	c.Assert(err, qt.IsNil)

	err = wTx.Apply(otherTx)
	c.Assert(err, qt.IsNil)

	err = wTx.Commit()
	c.Assert(err, qt.IsNil)

	wTx.Discard()

	// Closing the database again is harmless
	err = database.Close()
	c.Assert(err, qt.IsNil)

	// Creating a new WriteTx after closing must not panic either
	_ = database.WriteTx()
}
