package refgroup

import (
	"errors"
	"io"
	"math/big"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

// point is an element of the order-q subgroup of Z_p^*. It keeps the
// discrete logarithm e of v relative to the base generator alongside the
// group element itself (v == baseElem^e mod p), which is what lets Pair
// compute a bilinear map without a real elliptic-curve pairing. See the
// package doc for why this is fine for a reference/test backend only.
type point struct {
	v *big.Int
	e *big.Int
}

var _ curve.Point = (*point)(nil)

func newPoint(e *big.Int) *point {
	ee := new(big.Int).Mod(e, q)
	return &point{v: new(big.Int).Exp(baseElem, ee, p), e: ee}
}

// Point returns a fresh identity point; the Curve factory entry point.
func Point() curve.Point { return newPoint(big.NewInt(0)) }

func (pt *point) Identity() curve.Point { return newPoint(big.NewInt(0)) }
func (pt *point) Base() curve.Point     { return newPoint(big.NewInt(1)) }

func (pt *point) Add(o curve.Point) curve.Point {
	op := o.(*point)
	return newPoint(new(big.Int).Add(pt.e, op.e))
}

func (pt *point) Sub(o curve.Point) curve.Point {
	op := o.(*point)
	return newPoint(new(big.Int).Sub(pt.e, op.e))
}

func (pt *point) Neg() curve.Point {
	return newPoint(new(big.Int).Neg(pt.e))
}

func (pt *point) Mul(s curve.Scalar) curve.Point {
	ss := s.(*scalar)
	return newPoint(new(big.Int).Mul(pt.e, ss.v))
}

func (pt *point) Pick(rand io.Reader) curve.Point {
	e, err := randFieldElement(rand, q)
	if err != nil {
		panic("refgroup: Pick: " + err.Error())
	}
	return newPoint(e)
}

func (pt *point) Map(data []byte) curve.Point {
	return newPoint(hashToScalar(data))
}

func (pt *point) Equal(o curve.Point) bool {
	op, ok := o.(*point)
	return ok && pt.v.Cmp(op.v) == 0
}

func (pt *point) Clone() curve.Point { return newPoint(new(big.Int).Set(pt.e)) }

func (pt *point) MarshalSize() int { return 2 * byteLen }

func (pt *point) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2*byteLen)
	pt.v.FillBytes(buf[:byteLen])
	pt.e.FillBytes(buf[byteLen:])
	return buf, nil
}

func (pt *point) UnmarshalBinary(data []byte) error {
	if len(data) != 2*byteLen {
		return errors.New("refgroup: point: wrong encoding length")
	}
	v := new(big.Int).SetBytes(data[:byteLen])
	e := new(big.Int).SetBytes(data[byteLen:])
	if v.Cmp(p) >= 0 || e.Cmp(q) >= 0 {
		return errors.New("refgroup: point: encoding not canonical")
	}
	if new(big.Int).Exp(baseElem, e, p).Cmp(v) != 0 {
		return errors.New("refgroup: point: element does not match its tracked exponent")
	}
	pt.v = v
	pt.e = e
	return nil
}
