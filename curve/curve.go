// Package curve defines the pluggable elliptic-curve backend contract the
// rest of the core is built against (spec §4.1/§6.2). It deliberately knows
// nothing about any specific curve: the scalar field, the point group and
// their encodings are supplied by a concrete implementation such as
// curve/refgroup. This mirrors kyber's own split between the abstract
// kyber.Scalar/kyber.Point contract and its concrete suites
// (nist, edwards25519, bn254, bls12381/kilic, ...).
package curve

import "io"

// Scalar is a field element of a Curve's scalar field.
type Scalar interface {
	// Zero returns the additive identity, same field as the receiver.
	Zero() Scalar
	// One returns the multiplicative identity, same field as the receiver.
	One() Scalar
	// SetInt64 returns the field element represented by v, as a new Scalar.
	SetInt64(v int64) Scalar
	// Add returns the receiver plus s, as a new Scalar.
	Add(s Scalar) Scalar
	// Sub returns the receiver minus s, as a new Scalar.
	Sub(s Scalar) Scalar
	// Neg returns the additive inverse of the receiver.
	Neg() Scalar
	// Mul returns the receiver times s, as a new Scalar.
	Mul(s Scalar) Scalar
	// Inv returns the multiplicative inverse of the receiver. Fails on zero.
	Inv() (Scalar, error)
	// Pick samples a uniformly random scalar using rand.
	Pick(rand io.Reader) Scalar
	// IsZero reports whether the receiver is the additive identity.
	IsZero() bool
	// Equal reports whether the receiver and s represent the same field element.
	Equal(s Scalar) bool
	// Clone returns an independent copy of the receiver.
	Clone() Scalar
	// MarshalBinary returns the scalar's canonical fixed-length encoding.
	MarshalBinary() ([]byte, error)
	// UnmarshalBinary parses a canonical encoding produced by MarshalBinary.
	UnmarshalBinary(data []byte) error
	// MarshalSize returns the fixed length of MarshalBinary's output.
	MarshalSize() int
}

// Point is an element of a Curve's point group.
type Point interface {
	// Identity returns the group identity element.
	Identity() Point
	// Base returns the group's canonical generator.
	Base() Point
	// Add returns the receiver plus p, as a new Point.
	Add(p Point) Point
	// Sub returns the receiver minus p, as a new Point.
	Sub(p Point) Point
	// Neg returns the additive inverse of the receiver.
	Neg() Point
	// Mul returns s*receiver, as a new Point.
	Mul(s Scalar) Point
	// Pick samples a uniformly random group element using rand.
	Pick(rand io.Reader) Point
	// Map deterministically hashes data onto the group (hash-to-curve).
	Map(data []byte) Point
	// Equal reports whether the receiver and p represent the same group element.
	Equal(p Point) bool
	// Clone returns an independent copy of the receiver.
	Clone() Point
	// MarshalBinary returns the point's canonical fixed-length encoding.
	MarshalBinary() ([]byte, error)
	// UnmarshalBinary parses a canonical encoding produced by MarshalBinary.
	UnmarshalBinary(data []byte) error
	// MarshalSize returns the fixed length of MarshalBinary's output.
	MarshalSize() int
}

// Curve bundles a scalar field and its associated point group (spec §4.1).
// Scalar and Point act as factories returning fresh zero/identity values of
// the right concrete type, the way kyber.Group's Scalar()/Point() do.
type Curve interface {
	Name() string
	Scalar() Scalar
	Point() Point
}

// PairingCurve is a Curve exposing two point groups sharing a scalar field
// and a bilinear pairing between them (spec §4.1). Signature schemes that
// don't need a pairing depend only on Curve, so they can run over any
// backend, paired or not.
type PairingCurve interface {
	Name() string
	// Scalar returns a fresh zero scalar of the (shared) scalar field.
	Scalar() Scalar
	G1() Curve
	G2() Curve
	GT() Curve
	// Pair computes e(a, b) for a in G1, b in G2, returning a GT element.
	Pair(a, b Point) Point
}
