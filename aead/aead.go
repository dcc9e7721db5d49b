// Package aead implements the C3 authenticated-encryption primitive the
// bulletin board uses to address deal bundles to a single holder (spec
// §4.3): an ephemeral-static Diffie-Hellman exchange over a curve.Curve,
// HKDF-SHA256 key derivation, and a ChaCha20-Poly1305 AEAD seal.
//
// Grounded on the teacher's ecies/ecies.go (ephemeral keypair, HKDF-derived
// symmetric key, AEAD seal/open of the shared secret), generalized from
// kyber.Group/AES-GCM to this module's curve.Curve and, per spec §4.3,
// ChaCha20-Poly1305 (golang.org/x/crypto/chacha20poly1305) in place of the
// teacher's AES-GCM.
package aead

import (
	"crypto/sha256"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/entropy"
)

// DefaultHash is the hash used to derive the AEAD key via HKDF.
var DefaultHash = sha256.New

// Ciphertext is the wire form of an encrypted message: the ephemeral DH
// point, the ChaCha20-Poly1305 nonce, and the sealed payload.
type Ciphertext struct {
	Ephemeral []byte
	Nonce     []byte
	Payload   []byte
}

// Encrypt performs an ephemeral-static DH exchange against the recipient's
// public point, derives a symmetric key from the shared secret via HKDF,
// and seals msg under ChaCha20-Poly1305.
func Encrypt(g curve.Curve, fn func() hash.Hash, public curve.Point, msg []byte, rand io.Reader) (*Ciphertext, error) {
	if fn == nil {
		fn = DefaultHash
	}
	if rand == nil {
		rand = entropy.Default
	}
	r := g.Scalar().Pick(rand)
	eph := g.Point().Base().Mul(r)
	ephBytes, err := eph.MarshalBinary()
	if err != nil {
		return nil, err
	}

	dh := public.Mul(r)
	dhBytes, err := dh.MarshalBinary()
	if err != nil {
		return nil, err
	}

	key, err := deriveKey(fn, dhBytes)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce, err := entropy.Bytes(rand, aead.NonceSize())
	if err != nil {
		return nil, err
	}
	payload := aead.Seal(nil, nonce, msg, nil)
	return &Ciphertext{Ephemeral: ephBytes, Nonce: nonce, Payload: payload}, nil
}

// Decrypt reverses Encrypt: it recomputes the shared DH secret with the
// recipient's private scalar and the sender's ephemeral point, rederives
// the symmetric key, and opens the sealed payload.
func Decrypt(g curve.Curve, fn func() hash.Hash, priv curve.Scalar, ct *Ciphertext) ([]byte, error) {
	if fn == nil {
		fn = DefaultHash
	}
	eph := g.Point()
	if err := eph.UnmarshalBinary(ct.Ephemeral); err != nil {
		return nil, err
	}
	dh := eph.Mul(priv)
	dhBytes, err := dh.MarshalBinary()
	if err != nil {
		return nil, err
	}

	key, err := deriveKey(fn, dhBytes)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, ct.Nonce, ct.Payload, nil)
}

func deriveKey(fn func() hash.Hash, secret []byte) ([]byte, error) {
	reader := hkdf.New(fn, secret, nil, nil)
	key := make([]byte, chacha20poly1305.KeySize)
	n, err := io.ReadFull(reader, key)
	if err != nil {
		return nil, err
	}
	if n != chacha20poly1305.KeySize {
		return nil, errors.New("aead: hkdf did not yield enough bits for the shared key")
	}
	return key, nil
}
