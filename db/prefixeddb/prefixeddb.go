// Package prefixeddb wraps the db interfaces so that every key is
// transparently namespaced under a fixed prefix. It allows several
// independent keyspaces to share a single underlying database.
package prefixeddb

import (
	"github.com/vocdoni/tallyproof/db"
)

// PrefixedDatabase implements db.Database over an existing database,
// prepending a fixed prefix to every key.
type PrefixedDatabase struct {
	db     db.Database
	prefix []byte
}

var _ db.Database = (*PrefixedDatabase)(nil)

// NewPrefixedDatabase returns a namespaced view of the given database.
func NewPrefixedDatabase(database db.Database, prefix []byte) *PrefixedDatabase {
	return &PrefixedDatabase{db: database, prefix: prefix}
}

func (d *PrefixedDatabase) Get(key []byte) ([]byte, error) {
	return d.db.Get(prefixKey(d.prefix, key))
}

func (d *PrefixedDatabase) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return iteratePrefixed(d.db, d.prefix, prefix, callback)
}

func (d *PrefixedDatabase) WriteTx() db.WriteTx {
	return NewPrefixedWriteTx(d.db.WriteTx(), d.prefix)
}

// Close closes the underlying database, not just the namespaced view.
func (d *PrefixedDatabase) Close() error {
	return d.db.Close()
}

func (d *PrefixedDatabase) Compact() error {
	return d.db.Compact()
}

// PrefixedReader implements db.Reader over an existing reader, prepending a
// fixed prefix to every key.
type PrefixedReader struct {
	reader db.Reader
	prefix []byte
}

var _ db.Reader = (*PrefixedReader)(nil)

// NewPrefixedReader returns a namespaced read-only view of the given reader.
func NewPrefixedReader(reader db.Reader, prefix []byte) *PrefixedReader {
	return &PrefixedReader{reader: reader, prefix: prefix}
}

func (r *PrefixedReader) Get(key []byte) ([]byte, error) {
	return r.reader.Get(prefixKey(r.prefix, key))
}

func (r *PrefixedReader) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return iteratePrefixed(r.reader, r.prefix, prefix, callback)
}

// PrefixedWriteTx implements db.WriteTx over an existing transaction,
// prepending a fixed prefix to every key.
type PrefixedWriteTx struct {
	tx     db.WriteTx
	prefix []byte
}

var _ db.WriteTx = (*PrefixedWriteTx)(nil)

// NewPrefixedWriteTx returns a namespaced view of the given transaction.
func NewPrefixedWriteTx(tx db.WriteTx, prefix []byte) *PrefixedWriteTx {
	return &PrefixedWriteTx{tx: tx, prefix: prefix}
}

func (t *PrefixedWriteTx) Get(key []byte) ([]byte, error) {
	return t.tx.Get(prefixKey(t.prefix, key))
}

func (t *PrefixedWriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return iteratePrefixed(t.tx, t.prefix, prefix, callback)
}

func (t *PrefixedWriteTx) Set(key, value []byte) error {
	return t.tx.Set(prefixKey(t.prefix, key), value)
}

func (t *PrefixedWriteTx) Delete(key []byte) error {
	return t.tx.Delete(prefixKey(t.prefix, key))
}

func (t *PrefixedWriteTx) Apply(other db.WriteTx) error {
	return other.Iterate(nil, func(key, value []byte) bool {
		return t.Set(key, value) == nil
	})
}

func (t *PrefixedWriteTx) Commit() error {
	return t.tx.Commit()
}

func (t *PrefixedWriteTx) Discard() {
	t.tx.Discard()
}

func prefixKey(prefix, key []byte) []byte {
	return append(append([]byte{}, prefix...), key...)
}

// iteratePrefixed iterates reader under the joined namespace and inner
// prefix, stripping the namespace from the keys handed to the callback.
func iteratePrefixed(reader db.Reader, namespace, prefix []byte, callback func(key, value []byte) bool) error {
	return reader.Iterate(prefixKey(namespace, prefix), func(key, value []byte) bool {
		return callback(key[len(namespace):], value)
	})
}
