package refgroup

import (
	"math/big"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

type group struct{ name string }

var _ curve.Curve = group{}

func (g group) Name() string        { return g.name }
func (g group) Scalar() curve.Scalar { return Scalar() }
func (g group) Point() curve.Point   { return Point() }

// NewCurve returns the reference, non-pairing curve.Curve: a single
// prime-order subgroup of Z_p^*. It is all the polynomial/DKG machinery
// (C2-C8) needs, since none of it requires a pairing.
func NewCurve() curve.Curve { return group{name: "refgroup.G"} }

type pairingCurve struct{}

var _ curve.PairingCurve = pairingCurve{}

func (pairingCurve) Name() string         { return "refgroup.Pairing (symmetric, insecure-for-testing)" }
func (pairingCurve) Scalar() curve.Scalar { return Scalar() }
func (pairingCurve) G1() curve.Curve      { return group{name: "refgroup.G1"} }
func (pairingCurve) G2() curve.Curve      { return group{name: "refgroup.G2"} }
func (pairingCurve) GT() curve.Curve      { return group{name: "refgroup.GT"} }

// Pair computes e(a, b) = e(G, G)^(log(a)*log(b)), exploiting the tracked
// discrete logarithm described in the package doc. Bilinearity holds by
// construction: Pair(x*a, y*b) == Pair(a,b) scalar-multiplied by x*y in GT.
func (pairingCurve) Pair(a, b curve.Point) curve.Point {
	ap := a.(*point)
	bp := b.(*point)
	return newPoint(new(big.Int).Mul(ap.e, bp.e))
}

// NewPairingCurve returns the reference curve.PairingCurve. G1 and G2 are
// the same group (a symmetric, "type 1" pairing), matching the drand
// teacher's historical pbc package (github.com/dfinity/go-dfinity-crypto/bls
// binding) which modeled exactly this G1==G2 symmetric-pairing shape.
func NewPairingCurve() curve.PairingCurve { return pairingCurve{} }
