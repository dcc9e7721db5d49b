package dkg

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/curve/refgroup"
	"github.com/celo-org/celo-threshold-bls-go/party"
	"github.com/celo-org/celo-threshold-bls-go/status"
	"github.com/celo-org/celo-threshold-bls-go/tsign"
)

func freshSetup(t *testing.T, n, thr int) ([]Config, *party.Group, curve.Curve) {
	t.Helper()
	g2 := refgroup.NewPairingCurve().G2()
	nodes := make([]*party.Node, n)
	privs := make([]curve.Scalar, n)
	for i := 0; i < n; i++ {
		priv := g2.Scalar().Pick(rand.Reader)
		nodes[i] = &party.Node{Index: party.Index(i), Key: g2.Point().Base().Mul(priv)}
		privs[i] = priv
	}
	group, err := party.NewGroup(nodes, thr)
	require.NoError(t, err)

	cfgs := make([]Config, n)
	for i := 0; i < n; i++ {
		cfgs[i] = Config{Group: group, Curve: g2, Long: privs[i], Pub: nodes[i].Key, Rand: rand.Reader}
	}
	return cfgs, group, g2
}

// runFreshFull drives every participant through the full four-phase state
// machine, dropping the Phase0 bundles of the given dealer indices before
// anyone reads them (simulating non-publishing dealers).
func runFreshFull(t *testing.T, cfgs []Config, publishAll bool, dropDealers map[Idx]bool) (map[Idx]*DKGOutput, error) {
	t.Helper()
	n := len(cfgs)

	phase0s := make([]*Phase0, n)
	for i, cfg := range cfgs {
		p0, err := NewPhase0(cfg)
		require.NoError(t, err)
		phase0s[i] = p0
	}

	var allShares []*BundledShares
	phase1s := make([]*Phase1, n)
	for i, p0 := range phase0s {
		bundle, next, err := p0.EncryptShares()
		require.NoError(t, err)
		phase1s[i] = next
		if !dropDealers[Idx(i)] {
			allShares = append(allShares, bundle)
		}
	}

	var allResponses []*BundledResponses
	phase2s := make([]*Phase2, n)
	for i, p1 := range phase1s {
		resp, next, err := p1.ProcessShares(allShares, publishAll)
		if err != nil {
			return nil, err
		}
		phase2s[i] = next
		if resp != nil {
			allResponses = append(allResponses, resp)
		}
	}

	outputs := make(map[Idx]*DKGOutput, n)
	var allJustifs []*BundledJustification
	phase3s := make(map[Idx]*Phase3)
	for i, p2 := range phase2s {
		out, just, next, err := p2.ProcessResponses(allResponses)
		if err != nil {
			return nil, err
		}
		if out != nil {
			outputs[Idx(i)] = out
			continue
		}
		if just != nil {
			allJustifs = append(allJustifs, just)
		}
		phase3s[Idx(i)] = next
	}

	for i, p3 := range phase3s {
		out, err := p3.ProcessJustifications(allJustifs)
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

func TestFreshDKGHappyPath(t *testing.T) {
	n, thr := 5, 3
	cfgs, _, _ := freshSetup(t, n, thr)

	outputs, err := runFreshFull(t, cfgs, false, nil)
	require.NoError(t, err)
	require.Len(t, outputs, n)

	var groupKey []byte
	for i, out := range outputs {
		require.Equal(t, n, out.QUAL.Len())
		pk, err := out.Public.PublicKey().MarshalBinary()
		require.NoError(t, err)
		if groupKey == nil {
			groupKey = pk
		} else {
			require.Equal(t, groupKey, pk, "participant %d disagrees on public key", i)
		}
	}

	msg := []byte("fresh dkg happy path")
	var partials []*tsign.Partial
	var anyOut *DKGOutput
	for _, out := range outputs {
		anyOut = out
		partials = append(partials, tsign.PartialSign(refgroup.NewPairingCurve(), out.Share, msg))
		if len(partials) == thr {
			break
		}
	}
	sig, err := tsign.Aggregate(refgroup.NewPairingCurve(), anyOut.Public, msg, partials, thr)
	require.NoError(t, err)
	require.NoError(t, tsign.Verify(refgroup.NewPairingCurve(), anyOut.Public.PublicKey(), msg, sig))
}

func TestFreshDKGTwoNonPublishersOutOfEightTolerated(t *testing.T) {
	n, thr := 8, 5
	cfgs, _, _ := freshSetup(t, n, thr)

	outputs, err := runFreshFull(t, cfgs, false, map[Idx]bool{1: true, 6: true})
	require.NoError(t, err)
	require.Len(t, outputs, n)
	for _, out := range outputs {
		require.GreaterOrEqual(t, out.QUAL.Len(), thr)
	}
}

func TestFreshDKGTooManyNonPublishersFails(t *testing.T) {
	n, thr := 8, 5
	cfgs, _, _ := freshSetup(t, n, thr)

	// Threshold 5 needs at least 4 peer shares besides one's own; dropping 5
	// of 8 dealers leaves 3 published bundles, so each dropped dealer sees 3
	// peer bundles and each remaining dealer sees 2.
	_, err := runFreshFull(t, cfgs, false, map[Idx]bool{0: true, 1: true, 2: true, 3: true, 4: true})
	require.ErrorIs(t, err, ErrNotEnoughValidShares)
}

func TestFreshDKGInvalidShareTriggersJustification(t *testing.T) {
	n, thr := 4, 3
	cfgs, _, _ := freshSetup(t, n, thr)

	phase0s := make([]*Phase0, n)
	for i, cfg := range cfgs {
		p0, err := NewPhase0(cfg)
		require.NoError(t, err)
		phase0s[i] = p0
	}

	var allShares []*BundledShares
	phase1s := make([]*Phase1, n)
	for i, p0 := range phase0s {
		bundle, next, err := p0.EncryptShares()
		require.NoError(t, err)
		phase1s[i] = next
		allShares = append(allShares, bundle)
	}

	// Corrupt dealer 0's ciphertext to holder 2: holder 2 will fail to
	// decrypt it and raise a Complaint against dealer 0.
	for i := range allShares[0].Shares {
		if allShares[0].Shares[i].ShareIdx == 2 {
			allShares[0].Shares[i].Secret.Payload[0] ^= 0xFF
		}
	}

	var allResponses []*BundledResponses
	phase2s := make([]*Phase2, n)
	for i, p1 := range phase1s {
		resp, next, err := p1.ProcessShares(allShares, false)
		require.NoError(t, err)
		phase2s[i] = next
		if resp != nil {
			allResponses = append(allResponses, resp)
		}
	}
	require.NotEmpty(t, allResponses, "holder 2 should have raised a complaint")

	outputs := make(map[Idx]*DKGOutput, n)
	var allJustifs []*BundledJustification
	phase3s := make(map[Idx]*Phase3)
	for i, p2 := range phase2s {
		out, just, next, err := p2.ProcessResponses(allResponses)
		require.NoError(t, err)
		if out != nil {
			outputs[Idx(i)] = out
			continue
		}
		if just != nil {
			allJustifs = append(allJustifs, just)
		}
		phase3s[Idx(i)] = next
	}
	require.NotEmpty(t, allJustifs, "dealer 0 should have justified the disputed share")

	for i, p3 := range phase3s {
		out, err := p3.ProcessJustifications(allJustifs)
		require.NoError(t, err)
		outputs[i] = out
	}

	require.Len(t, outputs, n)
	var groupKey []byte
	for _, out := range outputs {
		require.Equal(t, n, out.QUAL.Len())
		pk, err := out.Public.PublicKey().MarshalBinary()
		require.NoError(t, err)
		if groupKey == nil {
			groupKey = pk
		} else {
			require.Equal(t, groupKey, pk)
		}
	}
}

func TestFreshDKGPublishAllIncludesSuccesses(t *testing.T) {
	n, thr := 4, 3
	cfgs, _, _ := freshSetup(t, n, thr)

	phase1s := make([]*Phase1, n)
	var allShares []*BundledShares
	for i, cfg := range cfgs {
		p0, err := NewPhase0(cfg)
		require.NoError(t, err)
		bundle, next, err := p0.EncryptShares()
		require.NoError(t, err)
		phase1s[i] = next
		allShares = append(allShares, bundle)
	}

	resp, _, err := phase1s[0].ProcessShares(allShares, true)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, n-1, len(resp.Responses))
	for _, r := range resp.Responses {
		require.Equal(t, status.Success, r.Status)
	}
}
