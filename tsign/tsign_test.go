package tsign

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
	"github.com/celo-org/celo-threshold-bls-go/poly"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s := refgroup.NewPairingCurve()
	priv := s.Scalar().Pick(rand.Reader)
	pub := s.G2().Point().Base().Mul(priv)

	msg := []byte("hello threshold bls")
	sig, err := Sign(s, priv, msg)
	require.NoError(t, err)
	require.NoError(t, Verify(s, pub, msg, sig))

	require.Error(t, Verify(s, pub, []byte("different message"), sig))
}

func TestThresholdSignAggregate(t *testing.T) {
	s := refgroup.NewPairingCurve()
	n, thr := 5, 3
	secretPoly := poly.NewPriPoly(s, thr-1, nil, rand.Reader)
	public := secretPoly.Commit(s.G2())

	msg := []byte{1, 9, 6, 9}
	partials := make([]*Partial, n)
	for i := poly.Idx(0); i < poly.Idx(n); i++ {
		share := secretPoly.Eval(i)
		partials[i] = PartialSign(s, share, msg)
		require.True(t, PartialVerify(s, public, msg, partials[i]))
	}

	sig, err := Aggregate(s, public, msg, partials[:thr], thr)
	require.NoError(t, err)
	require.NoError(t, Verify(s, public.PublicKey(), msg, sig))

	// A different t-subset recovers the same signature.
	sig2, err := Aggregate(s, public, msg, partials[2:], thr)
	require.NoError(t, err)
	require.Equal(t, sig, sig2)
}

func TestAggregateFailsBelowThreshold(t *testing.T) {
	s := refgroup.NewPairingCurve()
	thr := 3
	secretPoly := poly.NewPriPoly(s, thr-1, nil, rand.Reader)
	public := secretPoly.Commit(s.G2())
	msg := []byte("msg")

	partials := []*Partial{
		PartialSign(s, secretPoly.Eval(0), msg),
		PartialSign(s, secretPoly.Eval(1), msg),
	}
	_, err := Aggregate(s, public, msg, partials, thr)
	require.ErrorIs(t, err, ErrNotEnoughValidPartials)
}

func TestAggregateDiscardsInvalidPartials(t *testing.T) {
	s := refgroup.NewPairingCurve()
	thr := 3
	secretPoly := poly.NewPriPoly(s, thr-1, nil, rand.Reader)
	public := secretPoly.Commit(s.G2())
	msg := []byte("msg")

	good := []*Partial{
		PartialSign(s, secretPoly.Eval(0), msg),
		PartialSign(s, secretPoly.Eval(1), msg),
		PartialSign(s, secretPoly.Eval(2), msg),
	}
	bogus := &Partial{Index: 9, Sig: s.G1().Point().Pick(rand.Reader)}
	sig, err := Aggregate(s, public, msg, append([]*Partial{bogus}, good...), thr)
	require.NoError(t, err)
	require.NoError(t, Verify(s, public.PublicKey(), msg, sig))
}
