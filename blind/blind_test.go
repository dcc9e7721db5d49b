package blind

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
	"github.com/celo-org/celo-threshold-bls-go/poly"
	"github.com/celo-org/celo-threshold-bls-go/tsign"
)

func TestBlindUnblindRoundTrip(t *testing.T) {
	s := refgroup.NewPairingCurve()
	priv := s.Scalar().Pick(rand.Reader)
	pub := s.G2().Point().Base().Mul(priv)

	msg := []byte("a message only the client should know")
	token, blinded, err := Blind(s, msg, rand.Reader)
	require.NoError(t, err)

	blindSig, err := SignBlinded(s, priv, blinded)
	require.NoError(t, err)

	sig, err := Unblind(s, token, blindSig)
	require.NoError(t, err)

	direct, err := tsign.Sign(s, priv, msg)
	require.NoError(t, err)
	require.Equal(t, direct, sig)
	require.NoError(t, tsign.Verify(s, pub, msg, sig))
}

func TestThresholdBlindSigning(t *testing.T) {
	s := refgroup.NewPairingCurve()
	thr := 3
	secretPoly := poly.NewPriPoly(s, thr-1, nil, rand.Reader)
	public := secretPoly.Commit(s.G2())

	msg := []byte{1, 2, 3, 4, 6}
	token, blinded, err := Blind(s, msg, rand.Reader)
	require.NoError(t, err)

	partials := make([]*tsign.Partial, thr)
	for i := 0; i < thr; i++ {
		share := secretPoly.Eval(poly.Idx(i))
		p, err := PartialSignBlinded(s, share, blinded)
		require.NoError(t, err)
		partials[i] = p
	}

	blindAgg, err := aggregateRaw(s, partials, thr)
	require.NoError(t, err)

	unblinded, err := Unblind(s, token, blindAgg)
	require.NoError(t, err)
	require.NoError(t, tsign.Verify(s, public.PublicKey(), msg, unblinded))
}

// aggregateRaw interpolates blind partials directly rather than through
// tsign.Aggregate, since PartialVerify on a blinded point would otherwise
// require a blinded public-polynomial evaluation the signer never computes.
func aggregateRaw(s curve.PairingCurve, partials []*tsign.Partial, t int) ([]byte, error) {
	shares := make([]*poly.PubShare, len(partials))
	for i, p := range partials {
		shares[i] = &poly.PubShare{I: p.Index, V: p.Sig}
	}
	pt, err := poly.RecoverCommit(s.G1(), t, shares)
	if err != nil {
		return nil, err
	}
	return pt.MarshalBinary()
}
