// Package pebbledb implements db.Database on top of cockroachdb's pebble
// storage engine.
//
// WriteTx is backed by a pebble indexed batch, which is a batch of writes
// rather than an isolated transaction: reads through it always observe the
// latest database state and Commit never returns db.ErrConflict.
package pebbledb

import (
	"bytes"
	"errors"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/vocdoni/tallyproof/db"
)

// PebbleDB implements db.Database on a pebble store.
type PebbleDB struct {
	db     *pebble.DB
	closed atomic.Bool
}

var _ db.Database = (*PebbleDB)(nil)

// New opens or creates a pebble database at opts.Path.
func New(opts db.Options) (*PebbleDB, error) {
	pdb, err := pebble.Open(opts.Path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleDB{db: pdb}, nil
}

func (d *PebbleDB) Get(key []byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, db.ErrKeyNotFound
	}
	value, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	out := bytes.Clone(value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *PebbleDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	if d.closed.Load() {
		return nil
	}
	return iterate(d.db, prefix, callback)
}

func (d *PebbleDB) WriteTx() db.WriteTx {
	if d.closed.Load() {
		return &WriteTx{db: d}
	}
	return &WriteTx{db: d, batch: d.db.NewIndexedBatch()}
}

// Close closes the database. It is idempotent, and any transaction still
// alive afterwards degrades to a no-op instead of panicking inside pebble.
func (d *PebbleDB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.db.Close()
}

// Compact compacts the whole used keyspace.
func (d *PebbleDB) Compact() error {
	if d.closed.Load() {
		return nil
	}
	iter, err := d.db.NewIter(nil)
	if err != nil {
		return err
	}
	var first, last []byte
	if iter.First() {
		first = bytes.Clone(iter.Key())
	}
	if iter.Last() {
		last = bytes.Clone(iter.Key())
	}
	if err := iter.Close(); err != nil {
		return err
	}
	if first == nil || bytes.Equal(first, last) {
		// empty or single-key database, nothing to compact
		return nil
	}
	return d.db.Compact(first, last, true)
}

// WriteTx implements db.WriteTx on a pebble indexed batch. Once the parent
// database is closed every method becomes a no-op returning nil.
type WriteTx struct {
	db    *PebbleDB
	batch *pebble.Batch
	done  bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	if tx.db.closed.Load() {
		return nil, nil
	}
	value, closer, err := tx.batch.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	out := bytes.Clone(value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (tx *WriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	if tx.db.closed.Load() {
		return nil
	}
	return iterate(tx.batch, prefix, callback)
}

func (tx *WriteTx) Set(key, value []byte) error {
	if tx.db.closed.Load() {
		return nil
	}
	return tx.batch.Set(key, value, nil)
}

func (tx *WriteTx) Delete(key []byte) error {
	if tx.db.closed.Load() {
		return nil
	}
	return tx.batch.Delete(key, nil)
}

func (tx *WriteTx) Apply(other db.WriteTx) error {
	if tx.db.closed.Load() {
		return nil
	}
	return other.Iterate(nil, func(key, value []byte) bool {
		if err := tx.Set(key, value); err != nil {
			return false
		}
		return true
	})
}

func (tx *WriteTx) Commit() error {
	if tx.db.closed.Load() || tx.done {
		return nil
	}
	tx.done = true
	if err := tx.batch.Commit(pebble.Sync); err != nil {
		return err
	}
	return tx.batch.Close()
}

func (tx *WriteTx) Discard() {
	if tx.db.closed.Load() || tx.done {
		return
	}
	tx.done = true
	_ = tx.batch.Close()
}

// iterReader is the common iteration surface of *pebble.DB and
// *pebble.Batch.
type iterReader interface {
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

func iterate(reader iterReader, prefix []byte, callback func(key, value []byte) bool) error {
	iter, err := reader.NewIter(prefixIterOptions(prefix))
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		if !callback(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Close()
}

func prefixIterOptions(prefix []byte) *pebble.IterOptions {
	if len(prefix) == 0 {
		return nil
	}
	return &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	}
}

// keyUpperBound returns the smallest key greater than every key starting
// with b, or nil when no upper bound exists.
func keyUpperBound(b []byte) []byte {
	end := bytes.Clone(b)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
