// Package blind implements the blinding-token lifecycle (C10, spec §4.8)
// layered over any signature scheme exposing a signature group: a client
// blinds a message with a random scalar, a signer signs the blinded point
// without ever seeing the plaintext message, and the client unblinds the
// result to recover an ordinary signature.
//
// Grounded on the teacher's bls/bls.go hash-to-G1 convention (the
// "no-hashing" signer variant below reuses the same Map-based hash but lets
// the caller skip it for an already-encoded point, exactly the shape the
// blind-signing flow needs) and on tsign's partial-signature wrapping for
// the threshold variant.
package blind

import (
	"errors"
	"io"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/poly"
	"github.com/celo-org/celo-threshold-bls-go/tsign"
)

// ErrInvalidToken is returned by Unblind/UnblindPartial when the token
// scalar has no inverse (i.e. is zero).
var ErrInvalidToken = errors.New("blind: token scalar has no inverse")

// Token is the random scalar a client must keep to later unblind a
// signature.
type Token struct {
	r curve.Scalar
}

// Blind samples a fresh token and returns it alongside the blinded message
// H(msg)*r, ready to be handed to a signer that never observes msg.
func Blind(g curve.PairingCurve, msg []byte, rand io.Reader) (*Token, []byte, error) {
	r := g.Scalar().Pick(rand)
	hm := g.G1().Point().Map(msg)
	blinded := hm.Mul(r)
	buf, err := blinded.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return &Token{r: r}, buf, nil
}

// SignBlinded is the signer's "no-hashing" variant (spec §4.8): the input
// bytes are a pre-serialised G1 point (the blinded message), not a message
// to be hashed to curve.
func SignBlinded(g curve.PairingCurve, private curve.Scalar, blinded []byte) ([]byte, error) {
	pt := g.G1().Point()
	if err := pt.UnmarshalBinary(blinded); err != nil {
		return nil, err
	}
	sig := pt.Mul(private)
	return sig.MarshalBinary()
}

// Unblind removes a token's blinding factor from a signed blinded message,
// recovering an ordinary signature over the original message.
func Unblind(g curve.PairingCurve, token *Token, blindedSig []byte) ([]byte, error) {
	inv, err := token.r.Inv()
	if err != nil {
		return nil, ErrInvalidToken
	}
	pt := g.G1().Point()
	if err := pt.UnmarshalBinary(blindedSig); err != nil {
		return nil, err
	}
	sig := pt.Mul(inv)
	return sig.MarshalBinary()
}

// UnblindPartial removes a token's blinding factor from one holder's
// partial signature over a blinded message, preserving its index so the
// result can still be fed into tsign.Aggregate.
func UnblindPartial(g curve.PairingCurve, token *Token, partial *tsign.Partial) (*tsign.Partial, error) {
	inv, err := token.r.Inv()
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &tsign.Partial{Index: partial.Index, Sig: partial.Sig.Mul(inv)}, nil
}

// PartialSignBlinded is a threshold holder's no-hashing partial signature
// over an already-blinded message point.
func PartialSignBlinded(g curve.PairingCurve, share *poly.PriShare, blinded []byte) (*tsign.Partial, error) {
	pt := g.G1().Point()
	if err := pt.UnmarshalBinary(blinded); err != nil {
		return nil, err
	}
	return &tsign.Partial{Index: share.I, Sig: pt.Mul(share.V)}, nil
}
