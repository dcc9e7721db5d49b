package board

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/celo-org/celo-threshold-bls-go/dkg"
)

// Authenticator signs and verifies bundle digests under a secp256k1 key
// independent of the DKG curve (spec §4.9 leaves publisher authentication
// out of scope at the protocol layer; this is this module's concrete,
// swappable choice, mirroring kyber pedersen2's separate "node identity"
// key used only to authenticate bundles, never to compute shares).
type Authenticator struct {
	priv *secp256k1.PrivateKey
}

// NewAuthenticator wraps a secp256k1 private key for signing bundles.
func NewAuthenticator(priv *secp256k1.PrivateKey) *Authenticator {
	return &Authenticator{priv: priv}
}

// PublicKey returns the authenticator's public key, to be distributed
// out-of-band to peers so they can verify this participant's bundles.
func (a *Authenticator) PublicKey() *secp256k1.PublicKey {
	return a.priv.PubKey()
}

// Sign signs a 32-byte bundle digest.
func (a *Authenticator) Sign(digest []byte) []byte {
	sig := ecdsa.Sign(a.priv, digest)
	return sig.Serialize()
}

// ErrBadSignature is returned by the Verify* helpers when a bundle's
// envelope signature does not match its claimed publisher.
var ErrBadSignature = errors.New("board: bundle signature does not verify")

// Verify checks a signature over a digest against a publisher's public key.
func Verify(pub *secp256k1.PublicKey, digest, sig []byte) error {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return err
	}
	if !parsed.Verify(digest, pub) {
		return ErrBadSignature
	}
	return nil
}

// AuthShares is a signed envelope around a dealer's share bundle.
type AuthShares struct {
	Bundle    *dkg.BundledShares
	Signature []byte
}

// SignShares wraps and signs a share bundle.
func (a *Authenticator) SignShares(b *dkg.BundledShares) (*AuthShares, error) {
	h, err := b.Hash()
	if err != nil {
		return nil, err
	}
	return &AuthShares{Bundle: b, Signature: a.Sign(h)}, nil
}

// Verify checks the envelope's signature against the claimed publisher.
func (e *AuthShares) Verify(pub *secp256k1.PublicKey) error {
	h, err := e.Bundle.Hash()
	if err != nil {
		return err
	}
	return Verify(pub, h, e.Signature)
}

// AuthResponses is a signed envelope around a holder's response bundle.
type AuthResponses struct {
	Bundle    *dkg.BundledResponses
	Signature []byte
}

// SignResponses wraps and signs a response bundle.
func (a *Authenticator) SignResponses(b *dkg.BundledResponses) *AuthResponses {
	return &AuthResponses{Bundle: b, Signature: a.Sign(b.Hash())}
}

// Verify checks the envelope's signature against the claimed publisher.
func (e *AuthResponses) Verify(pub *secp256k1.PublicKey) error {
	return Verify(pub, e.Bundle.Hash(), e.Signature)
}

// AuthJustification is a signed envelope around a dealer's justification
// bundle.
type AuthJustification struct {
	Bundle    *dkg.BundledJustification
	Signature []byte
}

// SignJustification wraps and signs a justification bundle.
func (a *Authenticator) SignJustification(b *dkg.BundledJustification) (*AuthJustification, error) {
	h, err := b.Hash()
	if err != nil {
		return nil, err
	}
	return &AuthJustification{Bundle: b, Signature: a.Sign(h)}, nil
}

// Verify checks the envelope's signature against the claimed publisher.
func (e *AuthJustification) Verify(pub *secp256k1.PublicKey) error {
	h, err := e.Bundle.Hash()
	if err != nil {
		return err
	}
	return Verify(pub, h, e.Signature)
}
