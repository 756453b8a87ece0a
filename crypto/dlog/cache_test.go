package dlog

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/tallyproof/crypto/ecc/bjj"
	"github.com/vocdoni/tallyproof/crypto/ecc/bn254"
	"github.com/vocdoni/tallyproof/crypto/ecc/curves"
)

func TestTableCache(t *testing.T) {
	c := qt.New(t)
	curve := curves.New(bjj.CurveType)

	cache, err := NewTableCache(2)
	c.Assert(err, qt.IsNil)

	// repeated requests share the same table
	t1, err := cache.Table(curve, 100, 0)
	c.Assert(err, qt.IsNil)
	t2, err := cache.Table(curve, 100, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(t1, qt.Equals, t2)

	// a zero balance normalizes to the default before keying
	t3, err := cache.Table(curve, 100, DefaultBalance)
	c.Assert(err, qt.IsNil)
	c.Assert(t3, qt.Equals, t1)

	// different parameters build different tables
	t4, err := cache.Table(curve, 200, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(t4, qt.Not(qt.Equals), t1)

	// the curve is part of the key
	other, err := cache.Table(curves.New(bn254.CurveType), 200, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.Not(qt.Equals), t4)

	// t1 was evicted by the two entries above, so it gets rebuilt
	t5, err := cache.Table(curve, 100, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(t5, qt.Not(qt.Equals), t1)

	// invalid table parameters surface through the cache
	_, err = cache.Table(curve, 0, 0)
	c.Assert(err, qt.IsNotNil)
}

func TestTableCacheDefaultSize(t *testing.T) {
	c := qt.New(t)
	cache, err := NewTableCache(0)
	c.Assert(err, qt.IsNil)
	c.Assert(cache.tables.Resize(DefaultTableCacheSize), qt.Equals, 0)
}
