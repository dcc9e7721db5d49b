package refgroup

import (
	"errors"
	"io"
	"math/big"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

// scalar is an element of Z_q, the scalar field shared by G1, G2 and GT.
type scalar struct {
	v *big.Int
}

var _ curve.Scalar = (*scalar)(nil)

func newScalar(v *big.Int) *scalar {
	return &scalar{v: new(big.Int).Mod(v, q)}
}

// Scalar returns a fresh zero scalar; the Curve factory entry point.
func Scalar() curve.Scalar { return newScalar(big.NewInt(0)) }

func (s *scalar) Zero() curve.Scalar { return newScalar(big.NewInt(0)) }
func (s *scalar) One() curve.Scalar  { return newScalar(big.NewInt(1)) }

func (s *scalar) SetInt64(v int64) curve.Scalar { return newScalar(big.NewInt(v)) }

func (s *scalar) Add(o curve.Scalar) curve.Scalar {
	os := o.(*scalar)
	return newScalar(new(big.Int).Add(s.v, os.v))
}

func (s *scalar) Sub(o curve.Scalar) curve.Scalar {
	os := o.(*scalar)
	return newScalar(new(big.Int).Sub(s.v, os.v))
}

func (s *scalar) Neg() curve.Scalar {
	return newScalar(new(big.Int).Neg(s.v))
}

func (s *scalar) Mul(o curve.Scalar) curve.Scalar {
	os := o.(*scalar)
	return newScalar(new(big.Int).Mul(s.v, os.v))
}

func (s *scalar) Inv() (curve.Scalar, error) {
	if s.v.Sign() == 0 {
		return nil, errors.New("refgroup: cannot invert the zero scalar")
	}
	return newScalar(new(big.Int).ModInverse(s.v, q)), nil
}

func (s *scalar) Pick(rand io.Reader) curve.Scalar {
	v, err := randFieldElement(rand, q)
	if err != nil {
		panic("refgroup: Pick: " + err.Error())
	}
	return newScalar(v)
}

func (s *scalar) IsZero() bool { return s.v.Sign() == 0 }

func (s *scalar) Equal(o curve.Scalar) bool {
	os, ok := o.(*scalar)
	return ok && s.v.Cmp(os.v) == 0
}

func (s *scalar) Clone() curve.Scalar { return newScalar(new(big.Int).Set(s.v)) }

func (s *scalar) MarshalSize() int { return byteLen }

func (s *scalar) MarshalBinary() ([]byte, error) {
	buf := make([]byte, byteLen)
	s.v.FillBytes(buf)
	return buf, nil
}

func (s *scalar) UnmarshalBinary(data []byte) error {
	if len(data) != byteLen {
		return errors.New("refgroup: scalar: wrong encoding length")
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(q) >= 0 {
		return errors.New("refgroup: scalar: encoding not canonical")
	}
	s.v = v
	return nil
}

// randFieldElement samples a value in [0, n) by reading byteLen bytes from
// rand once and reducing them modulo n; the result is not exactly uniform.
func randFieldElement(rand io.Reader, n *big.Int) (*big.Int, error) {
	buf := make([]byte, byteLen)
	for {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(buf)
		v.Mod(v, n)
		// negligible bias from the final partial range is acceptable for a
		// reference/test backend; real deployments use a real curve's field.
		return v, nil
	}
}
