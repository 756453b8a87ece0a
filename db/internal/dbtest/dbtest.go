// Package dbtest provides the behavior tests every db.Database backend must
// pass. Backend packages call these helpers from their own test files.
package dbtest

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyproof/db"
)

// TestWriteTx checks the basic transaction lifecycle: reads of missing keys,
// read-your-own-writes, visibility after commit, and deletion.
func TestWriteTx(t *testing.T, database db.Database) {
	keyA := []byte("key_a")
	valueA := []byte("value_a")

	wTx := database.WriteTx()
	defer wTx.Discard()

	_, err := wTx.Get(keyA)
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Set(keyA, valueA), qt.IsNil)

	v, err := wTx.Get(keyA)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, valueA)

	// pending writes are invisible outside the transaction
	_, err = database.Get(keyA)
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Commit(), qt.IsNil)

	v, err = database.Get(keyA)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, valueA)

	wTx2 := database.WriteTx()
	defer wTx2.Discard()

	qt.Assert(t, wTx2.Delete(keyA), qt.IsNil)
	_, err = wTx2.Get(keyA)
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)
	qt.Assert(t, wTx2.Commit(), qt.IsNil)

	_, err = database.Get(keyA)
	qt.Assert(t, err, qt.ErrorIs, db.ErrKeyNotFound)
}

// TestIterate checks prefixed iteration and early termination. Keys are
// expected to reach the callback in full, prefix included.
func TestIterate(t *testing.T, database db.Database) {
	entries := map[string]string{
		"a/1": "one",
		"a/2": "two",
		"a/3": "three",
		"b/1": "four",
	}

	wTx := database.WriteTx()
	defer wTx.Discard()
	for k, v := range entries {
		qt.Assert(t, wTx.Set([]byte(k), []byte(v)), qt.IsNil)
	}
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	got := map[string]string{}
	err := database.Iterate(nil, func(key, value []byte) bool {
		got[string(key)] = string(value)
		return true
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.DeepEquals, entries)

	got = map[string]string{}
	err = database.Iterate([]byte("a/"), func(key, value []byte) bool {
		got[string(key)] = string(value)
		return true
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.DeepEquals, map[string]string{
		"a/1": "one",
		"a/2": "two",
		"a/3": "three",
	})

	calls := 0
	err = database.Iterate(nil, func(key, value []byte) bool {
		calls++
		return false
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, calls, qt.Equals, 1)
}

// TestWriteTxApply checks that Apply copies the pending writes of one
// transaction into another.
func TestWriteTxApply(t *testing.T, database db.Database) {
	keyA, valueA := []byte("key_a"), []byte("value_a")
	keyB, valueB := []byte("key_b"), []byte("value_b")

	wTxA := database.WriteTx()
	defer wTxA.Discard()
	qt.Assert(t, wTxA.Set(keyA, valueA), qt.IsNil)

	wTxB := database.WriteTx()
	defer wTxB.Discard()
	qt.Assert(t, wTxB.Set(keyB, valueB), qt.IsNil)

	qt.Assert(t, wTxB.Apply(wTxA), qt.IsNil)
	qt.Assert(t, wTxB.Commit(), qt.IsNil)

	for _, kv := range [][2][]byte{{keyA, valueA}, {keyB, valueB}} {
		v, err := database.Get(kv[0])
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, v, qt.DeepEquals, kv[1])
	}
}

// TestWriteTxApplyPrefixed checks Apply between a namespaced transaction and
// a plain one. The pending writes are copied as the namespaced transaction
// sees them, so they land without the namespace prefix.
func TestWriteTxApplyPrefixed(t *testing.T, database, databaseWithPrefix db.Database) {
	keyA, valueA := []byte("key_a"), []byte("value_a")

	pTx := databaseWithPrefix.WriteTx()
	defer pTx.Discard()
	qt.Assert(t, pTx.Set(keyA, valueA), qt.IsNil)

	wTx := database.WriteTx()
	defer wTx.Discard()
	qt.Assert(t, wTx.Apply(pTx), qt.IsNil)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	v, err := database.Get(keyA)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, valueA)
}

// TestConcurrentWriteTx checks optimistic conflict detection: of two
// transactions writing the same key, the second commit must fail with
// db.ErrConflict, while transactions over disjoint keys commit fine. Only
// backends with conflict detection can pass it.
func TestConcurrentWriteTx(t *testing.T, database db.Database) {
	key := []byte("key")

	wTxA := database.WriteTx()
	defer wTxA.Discard()
	wTxB := database.WriteTx()
	defer wTxB.Discard()

	qt.Assert(t, wTxA.Set(key, []byte("from_a")), qt.IsNil)
	qt.Assert(t, wTxB.Set(key, []byte("from_b")), qt.IsNil)

	qt.Assert(t, wTxA.Commit(), qt.IsNil)
	qt.Assert(t, wTxB.Commit(), qt.ErrorIs, db.ErrConflict)

	v, err := database.Get(key)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, v, qt.DeepEquals, []byte("from_a"))

	wTxC := database.WriteTx()
	defer wTxC.Discard()
	wTxD := database.WriteTx()
	defer wTxD.Discard()

	qt.Assert(t, wTxC.Set([]byte("key_c"), []byte("c")), qt.IsNil)
	qt.Assert(t, wTxD.Set([]byte("key_d"), []byte("d")), qt.IsNil)

	qt.Assert(t, wTxC.Commit(), qt.IsNil)
	qt.Assert(t, wTxD.Commit(), qt.IsNil)
}
