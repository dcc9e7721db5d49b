package refgroup

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	s := Scalar().Pick(rand.Reader)
	buf, err := s.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, s.MarshalSize())

	s2 := Scalar()
	require.NoError(t, s2.UnmarshalBinary(buf))
	require.True(t, s.Equal(s2))
}

func TestPointRoundTrip(t *testing.T) {
	p := Point().Pick(rand.Reader)
	buf, err := p.MarshalBinary()
	require.NoError(t, err)

	p2 := Point()
	require.NoError(t, p2.UnmarshalBinary(buf))
	require.True(t, p.Equal(p2))
}

func TestPointUnmarshalRejectsTamperedExponent(t *testing.T) {
	p := Point().Pick(rand.Reader)
	buf, err := p.MarshalBinary()
	require.NoError(t, err)
	// Flip a byte in the tracked-exponent half; v no longer matches e.
	buf[len(buf)-1] ^= 0xFF
	require.Error(t, Point().UnmarshalBinary(buf))
}

func TestScalarArithmetic(t *testing.T) {
	a := Scalar().SetInt64(7)
	b := Scalar().SetInt64(3)
	require.True(t, a.Add(b).Equal(Scalar().SetInt64(10)))
	require.True(t, a.Sub(b).Equal(Scalar().SetInt64(4)))
	require.True(t, a.Mul(b).Equal(Scalar().SetInt64(21)))

	inv, err := b.Inv()
	require.NoError(t, err)
	require.True(t, b.Mul(inv).Equal(Scalar().One()))

	_, err = Scalar().Zero().Inv()
	require.Error(t, err)
}

func TestPointGroupLaws(t *testing.T) {
	g := Point().Base()
	x := Scalar().SetInt64(5)
	y := Scalar().SetInt64(6)

	xg := g.Mul(x)
	yg := g.Mul(y)
	sum := xg.Add(yg)
	expected := g.Mul(x.Add(y))
	require.True(t, sum.Equal(expected))
}

func TestPairingIsBilinear(t *testing.T) {
	pc := NewPairingCurve()
	g1 := pc.G1().Point().Base()
	g2 := pc.G2().Point().Base()

	x := pc.Scalar().SetInt64(4)
	y := pc.Scalar().SetInt64(9)

	left := pc.Pair(g1.Mul(x), g2.Mul(y))
	right := pc.Pair(g1, g2).Mul(x.Mul(y))
	require.True(t, left.Equal(right))
}
