package board

import (
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/aead"
	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
	"github.com/celo-org/celo-threshold-bls-go/dkg"
	"github.com/celo-org/celo-threshold-bls-go/poly"
)

func newAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return NewAuthenticator(priv)
}

func sampleShares(t *testing.T) *dkg.BundledShares {
	t.Helper()
	g := refgroup.NewCurve()
	secretPoly := poly.NewPriPoly(g, 2, nil, rand.Reader)
	public := secretPoly.Commit(g)

	holderPriv := g.Scalar().Pick(rand.Reader)
	holderPub := g.Point().Base().Mul(holderPriv)
	share := secretPoly.Eval(0)
	plain, err := share.V.MarshalBinary()
	require.NoError(t, err)
	ct, err := aead.Encrypt(g, nil, holderPub, plain, rand.Reader)
	require.NoError(t, err)

	return &dkg.BundledShares{
		DealerIdx: 1,
		Shares:    []dkg.EncryptedShare{{ShareIdx: 0, Secret: ct}},
		Public:    public,
	}
}

func TestAuthSharesRoundTrip(t *testing.T) {
	a := newAuthenticator(t)
	b := sampleShares(t)

	env, err := a.SignShares(b)
	require.NoError(t, err)
	require.NoError(t, env.Verify(a.PublicKey()))
}

func TestAuthSharesRejectsWrongKey(t *testing.T) {
	a := newAuthenticator(t)
	other := newAuthenticator(t)
	b := sampleShares(t)

	env, err := a.SignShares(b)
	require.NoError(t, err)
	require.ErrorIs(t, env.Verify(other.PublicKey()), ErrBadSignature)
}

func TestAuthResponsesRoundTrip(t *testing.T) {
	a := newAuthenticator(t)
	b := &dkg.BundledResponses{ShareIdx: 2, Responses: nil}

	env := a.SignResponses(b)
	require.NoError(t, env.Verify(a.PublicKey()))
}

func TestAuthJustificationRoundTrip(t *testing.T) {
	a := newAuthenticator(t)
	g := refgroup.NewCurve()
	b := &dkg.BundledJustification{
		DealerIdx: 1,
		Justifications: []dkg.Justification{
			{ShareIdx: 0, Share: g.Scalar().Pick(rand.Reader)},
		},
		Public: poly.NewPriPoly(g, 2, nil, rand.Reader).Commit(g),
	}

	env, err := a.SignJustification(b)
	require.NoError(t, err)
	require.NoError(t, env.Verify(a.PublicKey()))

	env.Signature[0] ^= 0xFF
	require.Error(t, env.Verify(a.PublicKey()))
}
