package aead

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	g := refgroup.NewCurve()
	priv := g.Scalar().Pick(rand.Reader)
	pub := g.Point().Base().Mul(priv)

	msg := []byte("a 32-byte-or-whatever share payload")
	ct, err := Encrypt(g, nil, pub, msg, rand.Reader)
	require.NoError(t, err)

	plain, err := Decrypt(g, nil, priv, ct)
	require.NoError(t, err)
	require.Equal(t, msg, plain)
}

func TestDecryptFailsUnderWrongKey(t *testing.T) {
	g := refgroup.NewCurve()
	priv := g.Scalar().Pick(rand.Reader)
	pub := g.Point().Base().Mul(priv)
	other := g.Scalar().Pick(rand.Reader)

	ct, err := Encrypt(g, nil, pub, []byte("secret"), rand.Reader)
	require.NoError(t, err)

	_, err = Decrypt(g, nil, other, ct)
	require.Error(t, err)
}

func TestDecryptFailsOnTamperedPayload(t *testing.T) {
	g := refgroup.NewCurve()
	priv := g.Scalar().Pick(rand.Reader)
	pub := g.Point().Base().Mul(priv)

	ct, err := Encrypt(g, nil, pub, []byte("secret"), rand.Reader)
	require.NoError(t, err)
	ct.Payload[0] ^= 0xFF

	_, err = Decrypt(g, nil, priv, ct)
	require.Error(t, err)
}
