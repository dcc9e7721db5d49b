package board

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
	"github.com/celo-org/celo-threshold-bls-go/dkg"
	"github.com/celo-org/celo-threshold-bls-go/party"
	"github.com/celo-org/celo-threshold-bls-go/tsign"
)

func keyedGroup(t *testing.T, g curve.Curve, n int) ([]*party.Node, []curve.Scalar) {
	nodes := make([]*party.Node, n)
	privs := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		priv := g.Scalar().Pick(rand.Reader)
		pub := g.Point().Base().Mul(priv)
		nodes[i] = &party.Node{Index: party.Index(i), Key: pub}
		privs[i] = priv
	}
	t.Helper()
	return nodes, privs
}

func TestRunFreshHappyPath(t *testing.T) {
	n, thr := 5, 3
	pc := refgroup.NewPairingCurve()
	g2 := pc.G2()

	nodes, privs := keyedGroup(t, g2, n)
	group, err := party.NewGroup(nodes, thr)
	require.NoError(t, err)

	cfgs := make([]dkg.Config, n)
	for i := 0; i < n; i++ {
		cfgs[i] = dkg.Config{
			Group: group,
			Curve: g2,
			Long:  privs[i],
			Pub:   nodes[i].Key,
			Rand:  rand.Reader,
		}
	}

	b := NewInMemory()
	outputs, err := RunFresh(b, cfgs, false)
	require.NoError(t, err)
	require.Len(t, outputs, n)

	var expectedPub []byte
	for idx, out := range outputs {
		pk, err := out.Public.PublicKey().MarshalBinary()
		require.NoError(t, err)
		if expectedPub == nil {
			expectedPub = pk
		} else {
			require.Equal(t, expectedPub, pk, "participant %d disagrees on group public key", idx)
		}
	}

	msg := []byte{1, 9, 6, 9}
	var (
		partials  []*tsign.Partial
		anyOutput *dkg.DKGOutput
	)
	for _, out := range outputs {
		anyOutput = out
		partials = append(partials, tsign.PartialSign(pc, out.Share, msg))
		if len(partials) == thr {
			break
		}
	}

	sig, err := tsign.Aggregate(pc, anyOutput.Public, msg, partials, thr)
	require.NoError(t, err)
	require.NoError(t, tsign.Verify(pc, anyOutput.Public.PublicKey(), msg, sig))
}

func TestRunFreshWithPublishAll(t *testing.T) {
	n, thr := 8, 5
	pc := refgroup.NewPairingCurve()
	g2 := pc.G2()

	nodes, privs := keyedGroup(t, g2, n)
	group, err := party.NewGroup(nodes, thr)
	require.NoError(t, err)

	cfgs := make([]dkg.Config, n)
	for i := 0; i < n; i++ {
		cfgs[i] = dkg.Config{
			Group: group,
			Curve: g2,
			Long:  privs[i],
			Pub:   nodes[i].Key,
			Rand:  rand.Reader,
		}
	}

	b := NewInMemory()
	outputs, err := RunFresh(b, cfgs, true)
	require.NoError(t, err)
	require.Len(t, outputs, n)
}
