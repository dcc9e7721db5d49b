// Package tsign implements threshold BLS signing (C9, spec §4.9): each
// holder produces a partial signature over its share of the distributed
// key, partials are individually verifiable against the public polynomial,
// and any t valid partials recover a full BLS signature via Lagrange
// interpolation in the signature group.
//
// Grounded on the teacher's bls/bls.go (plain BLS Sign/Verify via a
// pairing) and bls/tbls.go (ThresholdSign/ThresholdVerify/
// AggregateSignatures built on share.PriShare/share.PubPoly), generalized
// from kyber's pbc.PairingSuite to this module's curve.PairingCurve and
// poly package, and from kyber's share.RecoverCommit to poly.RecoverCommit.
package tsign

import (
	"errors"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/poly"
)

// ErrInvalidSig is returned by Verify and PartialVerify when a signature
// fails the pairing check.
var ErrInvalidSig = errors.New("tsign: invalid signature")

// ErrNotEnoughValidPartials is returned by Aggregate when fewer than t
// supplied partials verify.
var ErrNotEnoughValidPartials = errors.New("tsign: not enough valid partial signatures")

// hashToG1 maps a message to the signature group G1 (spec §4.9: signatures
// live in G1, public keys in G2, matching the teacher's convention).
func hashToG1(s curve.PairingCurve, msg []byte) curve.Point {
	return s.G1().Point().Map(msg)
}

// Sign computes a plain (non-threshold) BLS signature: private * H(msg).
func Sign(s curve.PairingCurve, private curve.Scalar, msg []byte) ([]byte, error) {
	hm := hashToG1(s, msg)
	sig := hm.Mul(private)
	return sig.MarshalBinary()
}

// Verify checks a plain BLS signature against a G2 public key by testing
// e(H(m), pub) == e(sig, G2-base).
func Verify(s curve.PairingCurve, public curve.Point, msg, sig []byte) error {
	hm := hashToG1(s, msg)
	left := s.Pair(hm, public)

	sigPoint := s.G1().Point()
	if err := sigPoint.UnmarshalBinary(sig); err != nil {
		return err
	}
	g2Base := s.G2().Point().Base()
	right := s.Pair(sigPoint, g2Base)

	if !left.Equal(right) {
		return ErrInvalidSig
	}
	return nil
}

// Partial is one holder's contribution to a threshold signature: its share
// index and the resulting G1 point, H(m)*x_i.
type Partial struct {
	Index poly.Idx
	Sig   curve.Point
}

// PartialSign computes a holder's partial signature from its private share.
func PartialSign(s curve.PairingCurve, share *poly.PriShare, msg []byte) *Partial {
	hm := hashToG1(s, msg)
	return &Partial{Index: share.I, Sig: hm.Mul(share.V)}
}

// PartialVerify checks a partial signature against the public polynomial's
// evaluation at the same holder index.
func PartialVerify(s curve.PairingCurve, public *poly.PubPoly, msg []byte, p *Partial) bool {
	hm := hashToG1(s, msg)
	left := s.Pair(p.Sig, s.G2().Point().Base())
	xiG := public.Eval(p.Index).V
	right := s.Pair(hm, xiG)
	return left.Equal(right)
}

// Aggregate recovers a full threshold signature from a set of partials,
// discarding any that fail PartialVerify, and requires at least t of the
// remainder. The recovered signature is checked once more against the
// polynomial's constant term (the group public key) before being returned.
func Aggregate(s curve.PairingCurve, public *poly.PubPoly, msg []byte, partials []*Partial, t int) ([]byte, error) {
	valid := make([]*poly.PubShare, 0, len(partials))
	for _, p := range partials {
		if !PartialVerify(s, public, msg, p) {
			continue
		}
		valid = append(valid, &poly.PubShare{I: p.Index, V: p.Sig})
		if len(valid) >= t {
			break
		}
	}
	if len(valid) < t {
		return nil, ErrNotEnoughValidPartials
	}

	sig, err := poly.RecoverCommit(s.G1(), t, valid)
	if err != nil {
		return nil, err
	}
	buf, err := sig.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := Verify(s, public.PublicKey(), msg, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
