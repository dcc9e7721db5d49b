// Package poly implements the secret/public polynomial algebra the DKG and
// threshold-signing layers are built on (spec §4.2): evaluation, Pedersen
// commitment, addition, multiplication and Lagrange recovery, all under the
// one-shift convention that a holder index i is evaluated at scalar i+1 so
// the polynomial is never evaluated at its secret-revealing point, 0.
//
// Grounded on the original Rust implementation's threshold_bls::poly::Poly
// (see original_source/crates/threshold-bls/src/poly.rs) and on the shape of
// kyber's share.PriPoly/share.PubPoly (share.PriShare{I,V} turns up across
// every DKG example in the retrieval pack).
package poly

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

// Idx is a participant index, per spec §3.
type Idx = uint32

// xFor is the one-shift (spec §4.2, §9): a holder index i is ALWAYS
// evaluated at scalar i+1, never at 0. Every caller that needs the x-value
// of an index must go through this function so the mapping cannot diverge.
func xFor(sc curve.Scalar, i Idx) curve.Scalar {
	return sc.SetInt64(int64(i) + 1)
}

// ErrNotEnoughShares is returned by Recover/FullRecover when fewer than t
// shares are supplied.
var ErrNotEnoughShares = errors.New("poly: not enough shares to recover")

// PriShare is a participant's private evaluation of a secret polynomial.
type PriShare struct {
	I Idx
	V curve.Scalar
}

// PubShare is a participant's public evaluation of a public polynomial.
type PubShare struct {
	I Idx
	V curve.Point
}

// PriPoly is a secret polynomial f(x) over a curve's scalar field.
type PriPoly struct {
	field curve.Curve
	coeffs []curve.Scalar
}

// NewPriPoly returns a polynomial of the given degree with uniformly random
// coefficients, or with the supplied constant term if secret is non-nil
// (used by resharing, spec §4.6, to fix f(0) to a previous share).
func NewPriPoly(field curve.Curve, degree int, secret curve.Scalar, rand io.Reader) *PriPoly {
	coeffs := make([]curve.Scalar, degree+1)
	if secret != nil {
		coeffs[0] = secret.Clone()
	} else {
		coeffs[0] = field.Scalar().Pick(rand)
	}
	for i := 1; i <= degree; i++ {
		coeffs[i] = field.Scalar().Pick(rand)
	}
	return &PriPoly{field: field, coeffs: coeffs}
}

// Degree returns the polynomial's degree.
func (p *PriPoly) Degree() int { return len(p.coeffs) - 1 }

// Secret returns the constant term f(0), the shared secret.
func (p *PriPoly) Secret() curve.Scalar { return p.coeffs[0].Clone() }

// Eval evaluates f(i+1) via Horner's method, per the one-shift convention.
func (p *PriPoly) Eval(i Idx) *PriShare {
	x := xFor(p.field.Scalar(), i)
	acc := p.field.Scalar().Zero()
	for k := len(p.coeffs) - 1; k >= 0; k-- {
		acc = acc.Mul(x).Add(p.coeffs[k])
	}
	return &PriShare{I: i, V: acc}
}

// Commit returns the public polynomial F(x) = f(x)*G, coefficient-wise.
func (p *PriPoly) Commit(pointField curve.Curve) *PubPoly {
	commits := make([]curve.Point, len(p.coeffs))
	base := pointField.Point().Base()
	for i, c := range p.coeffs {
		commits[i] = base.Mul(c)
	}
	return &PubPoly{pointField: pointField, commits: commits}
}

// Add returns the coefficient-wise sum of p and q, zero-padding the shorter
// operand to the longer's degree.
func (p *PriPoly) Add(q *PriPoly) *PriPoly {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	out := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		var a, b curve.Scalar
		if i < len(p.coeffs) {
			a = p.coeffs[i]
		} else {
			a = p.field.Scalar().Zero()
		}
		if i < len(q.coeffs) {
			b = q.coeffs[i]
		} else {
			b = p.field.Scalar().Zero()
		}
		out[i] = a.Add(b)
	}
	return &PriPoly{field: p.field, coeffs: out}
}

// Mul performs schoolbook polynomial multiplication; the result has degree
// p.Degree() + q.Degree().
func (p *PriPoly) Mul(q *PriPoly) *PriPoly {
	d := p.Degree() + q.Degree()
	out := make([]curve.Scalar, d+1)
	for i := range out {
		out[i] = p.field.Scalar().Zero()
	}
	for i, a := range p.coeffs {
		for j, b := range q.coeffs {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return &PriPoly{field: p.field, coeffs: out}
}

// Coefficients returns the polynomial's coefficients, lowest degree first.
func (p *PriPoly) Coefficients() []curve.Scalar {
	out := make([]curve.Scalar, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

// PubPoly is a public polynomial F(x) = f(x)*G, the Pedersen commitment to
// a PriPoly.
type PubPoly struct {
	pointField curve.Curve
	commits    []curve.Point
}

// NewPubPoly builds a public polynomial directly from its coefficients.
func NewPubPoly(pointField curve.Curve, commits []curve.Point) *PubPoly {
	cp := make([]curve.Point, len(commits))
	copy(cp, commits)
	return &PubPoly{pointField: pointField, commits: cp}
}

// Degree returns the polynomial's degree.
func (p *PubPoly) Degree() int { return len(p.commits) - 1 }

// PublicKey returns the constant term F(0), the group's public key.
func (p *PubPoly) PublicKey() curve.Point { return p.commits[0].Clone() }

// Commitments returns the polynomial's coefficient commitments, lowest degree first.
func (p *PubPoly) Commitments() []curve.Point {
	out := make([]curve.Point, len(p.commits))
	copy(out, p.commits)
	return out
}

// Eval evaluates F(i+1) via Horner's method, per the one-shift convention.
func (p *PubPoly) Eval(i Idx) *PubShare {
	x := xFor(scalarField(p), i)
	acc := p.pointField.Point().Identity()
	for k := len(p.commits) - 1; k >= 0; k-- {
		acc = acc.Mul(x).Add(p.commits[k])
	}
	return &PubShare{I: i, V: acc}
}

// scalarField returns a fresh zero scalar of p's point field, taken from
// the curve.Curve that PubPoly stores alongside its commitments.
func scalarField(p *PubPoly) curve.Scalar {
	return p.scalarZero()
}

func (p *PubPoly) scalarZero() curve.Scalar {
	return p.pointField.Scalar()
}

// Add returns the coefficient-wise sum of p and q, zero-padding the shorter
// operand. The point fields of p and q are not compared, and the returned
// error is always nil.
func (p *PubPoly) Add(q *PubPoly) (*PubPoly, error) {
	n := len(p.commits)
	if len(q.commits) > n {
		n = len(q.commits)
	}
	out := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		var a, b curve.Point
		if i < len(p.commits) {
			a = p.commits[i]
		} else {
			a = p.pointField.Point().Identity()
		}
		if i < len(q.commits) {
			b = q.commits[i]
		} else {
			b = p.pointField.Point().Identity()
		}
		out[i] = a.Add(b)
	}
	return &PubPoly{pointField: p.pointField, commits: out}, nil
}

// Recover reconstructs the constant term f(0) from t (index, value) pairs
// via Lagrange interpolation, using x_i = index_i + 1 throughout.
func Recover(field curve.Curve, t int, shares []*PriShare) (curve.Scalar, error) {
	if len(shares) < t {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShares, len(shares), t)
	}
	sorted := sortedPriShares(shares)[:t]
	acc := field.Scalar().Zero()
	for i, share := range sorted {
		basis, err := lagrangeBasis0(field, sorted, i)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(share.V.Mul(basis))
	}
	return acc, nil
}

// FullRecover reconstructs the entire degree-(t-1) polynomial from t shares
// by linear combination of Lagrange basis polynomials.
func FullRecover(field curve.Curve, t int, shares []*PriShare) (*PriPoly, error) {
	if len(shares) < t {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShares, len(shares), t)
	}
	sorted := sortedPriShares(shares)[:t]
	acc := &PriPoly{field: field, coeffs: []curve.Scalar{field.Scalar().Zero()}}
	for i := range sorted {
		basis := lagrangeBasisPoly(field, sorted, i)
		scaled := &PriPoly{field: field, coeffs: make([]curve.Scalar, len(basis.coeffs))}
		for k, c := range basis.coeffs {
			scaled.coeffs[k] = c.Mul(sorted[i].V)
		}
		acc = acc.Add(scaled)
	}
	return acc, nil
}

// RecoverCommit reconstructs a group-element constant term (e.g. a threshold
// signature) from t (index, point) pairs via the same Lagrange machinery,
// using point scalar-multiplication and addition instead of field ops.
func RecoverCommit(field curve.Curve, t int, shares []*PubShare) (curve.Point, error) {
	if len(shares) < t {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShares, len(shares), t)
	}
	sorted := sortedPubShares(shares)[:t]
	asPri := make([]*PriShare, len(sorted))
	for i, s := range sorted {
		asPri[i] = &PriShare{I: s.I}
	}
	acc := field.Point().Identity()
	for i, share := range sorted {
		basis, err := lagrangeBasis0Idx(field, idxOf(sorted), i)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(share.V.Mul(basis))
	}
	_ = asPri
	return acc, nil
}

func idxOf(shares []*PubShare) []Idx {
	out := make([]Idx, len(shares))
	for i, s := range shares {
		out[i] = s.I
	}
	return out
}

func sortedPriShares(shares []*PriShare) []*PriShare {
	out := make([]*PriShare, len(shares))
	copy(out, shares)
	sort.Slice(out, func(a, b int) bool { return out[a].I < out[b].I })
	return out
}

func sortedPubShares(shares []*PubShare) []*PubShare {
	out := make([]*PubShare, len(shares))
	copy(out, shares)
	sort.Slice(out, func(a, b int) bool { return out[a].I < out[b].I })
	return out
}

// lagrangeBasis0 computes L_i(0), the i-th Lagrange basis polynomial of
// sorted evaluated at x=0, using x_k = index_k + 1.
func lagrangeBasis0(field curve.Curve, sorted []*PriShare, i int) (curve.Scalar, error) {
	idxs := make([]Idx, len(sorted))
	for k, s := range sorted {
		idxs[k] = s.I
	}
	return lagrangeBasis0Idx(field, idxs, i)
}

func lagrangeBasis0Idx(field curve.Curve, idxs []Idx, i int) (curve.Scalar, error) {
	xi := xFor(field.Scalar(), idxs[i])
	num := field.Scalar().One()
	den := field.Scalar().One()
	zero := field.Scalar().SetInt64(0)
	for j, idxj := range idxs {
		if j == i {
			continue
		}
		xj := xFor(field.Scalar(), idxj)
		// numerator *= (0 - xj) = -xj
		num = num.Mul(xj.Neg())
		// denominator *= (xi - xj)
		diff := xi.Sub(xj)
		if diff.Equal(zero) {
			return nil, errors.New("poly: duplicate index in share set")
		}
		den = den.Mul(diff)
	}
	inv, err := den.Inv()
	if err != nil {
		return nil, err
	}
	return num.Mul(inv), nil
}

// lagrangeBasisPoly computes the full i-th Lagrange basis polynomial (as a
// PriPoly over the scalar field), not just its value at 0, for FullRecover.
func lagrangeBasisPoly(field curve.Curve, sorted []*PriShare, i int) *PriPoly {
	idxs := make([]Idx, len(sorted))
	for k, s := range sorted {
		idxs[k] = s.I
	}
	xi := xFor(field.Scalar(), idxs[i])
	acc := &PriPoly{field: field, coeffs: []curve.Scalar{field.Scalar().One()}}
	for j, idxj := range idxs {
		if j == i {
			continue
		}
		xj := xFor(field.Scalar(), idxj)
		diff := xi.Sub(xj)
		inv, err := diff.Inv()
		if err != nil {
			// duplicate index: basis undefined; return the zero polynomial
			return &PriPoly{field: field, coeffs: []curve.Scalar{field.Scalar().Zero()}}
		}
		// linear factor (x - xj) / (xi - xj), i.e. coefficients [-xj*inv, inv]
		factor := &PriPoly{field: field, coeffs: []curve.Scalar{xj.Neg().Mul(inv), inv}}
		acc = acc.Mul(factor)
	}
	return acc
}
