package dlog

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vocdoni/tallyproof/crypto/ecc"
)

// DefaultTableCacheSize bounds how many tables a cache keeps alive.
const DefaultTableCacheSize = 8

// TableCache keeps built tables keyed by (curve, maxValue, balance) so that
// callers sharing a bound reuse the same precomputation. Safe for concurrent
// use.
type TableCache struct {
	tables *lru.Cache[string, *Table]
}

// NewTableCache creates a cache holding up to size tables, or
// DefaultTableCacheSize when size is not positive.
func NewTableCache(size int) (*TableCache, error) {
	if size <= 0 {
		size = DefaultTableCacheSize
	}
	tables, err := lru.New[string, *Table](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create table cache: %w", err)
	}
	return &TableCache{tables: tables}, nil
}

// Table returns the cached table for the given parameters, building and
// storing it on a miss.
func (tc *TableCache) Table(curve ecc.Point, maxValue, balance uint64) (*Table, error) {
	if balance == 0 {
		balance = DefaultBalance
	}
	key := fmt.Sprintf("%s/%d/%d", curve.Type(), maxValue, balance)
	if table, ok := tc.tables.Get(key); ok {
		return table, nil
	}
	table, err := NewTable(curve, maxValue, balance)
	if err != nil {
		return nil, err
	}
	tc.tables.Add(key, table)
	return table, nil
}
