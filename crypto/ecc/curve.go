// Package ecc defines the generic elliptic curve point interface shared by
// every curve implementation in this module. Cryptographic components are
// written against this interface so the curve can be chosen per election.
package ecc

import "math/big"

// ScalarSize is the byte length of the fixed-width scalar encoding. The
// scalar field order of every supported curve fits in 32 bytes.
const ScalarSize = 32

// Point represents a point on an elliptic curve. Implementations wrap a
// concrete curve library and are not safe for concurrent mutation of the
// same point, with the exception of SafeAdd.
type Point interface {
	// New returns a fresh point of the same curve, set to the identity.
	New() Point
	// Order returns the order of the curve subgroup.
	Order() *big.Int
	// Add sets the receiver to a+b.
	Add(a, b Point)
	// SafeAdd sets the receiver to a+b while holding an internal lock.
	SafeAdd(a, b Point)
	// ScalarMult sets the receiver to a·scalar.
	ScalarMult(a Point, scalar *big.Int)
	// ScalarBaseMult sets the receiver to generator·scalar.
	ScalarBaseMult(scalar *big.Int)
	// Marshal returns the canonical fixed-width encoding of the point.
	Marshal() []byte
	// Unmarshal decodes a point from its canonical encoding. Encodings that
	// do not describe a valid point of the curve subgroup are rejected.
	Unmarshal(buf []byte) error
	// Size returns the byte length of the Marshal encoding.
	Size() int
	// Equal reports whether the receiver and a represent the same point.
	Equal(a Point) bool
	// Neg sets the receiver to -a.
	Neg(a Point)
	// SetZero sets the receiver to the identity element.
	SetZero()
	// Set copies a into the receiver.
	Set(a Point)
	// SetGenerator sets the receiver to the curve generator.
	SetGenerator()
	// CompressedCoord returns the affine coordinate a point shares with its
	// negation (x on short Weierstrass curves, y on twisted Edwards ones) in
	// fixed-width encoding. The identity element has no such coordinate and
	// reports ok false.
	CompressedCoord() (coord []byte, ok bool)
	// String returns a hex representation of the point.
	String() string
	// Point returns the affine coordinates of the point.
	Point() (*big.Int, *big.Int)
	// SetPoint sets the point to the given affine coordinates and returns it.
	SetPoint(x, y *big.Int) Point
	// Type returns the curve type identifier.
	Type() string
}
