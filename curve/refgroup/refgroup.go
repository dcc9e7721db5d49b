// Package refgroup is the reference curve.Curve / curve.PairingCurve
// implementation shipped with this module (spec §1, §4.1: real pairing
// arithmetic is explicitly out of scope, "treated as a pluggable backend").
// It is a Schnorr-style prime-order subgroup of Z_p^*, the same family the
// early dedis/crypto "nist" suites used before kyber grew elliptic-curve and
// pairing suites, with a transparent symmetric pairing bolted on so the
// signing and blinding layers (C9/C10) can be driven end to end in pure Go.
//
// refgroup is explicitly NOT suitable for production: the pairing is made
// computable by tracking each point's discrete logarithm through every
// operation, including across the wire encoding, which would leak every
// private key in a real deployment. A production binding instead wires a
// real elliptic-curve pairing library (e.g. kyber's pairing/bn254 or
// pairing/bls12381/kilic, both of which satisfy exactly the same
// curve.PairingCurve contract) behind the interfaces in package curve.
package refgroup

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// p is RFC 3526's 2048-bit MODP Group 14 prime, a well-known safe prime
// (p = 2q+1 with q prime). q is the order of the unique prime-order
// subgroup of quadratic residues mod p, which is where every refgroup point
// lives.
var p, q = modpGroup14()

func modpGroup14() (*big.Int, *big.Int) {
	const pHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD" +
		"129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A43" +
		"1B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637E" +
		"D6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE4" +
		"5B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA" +
		"3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08C" +
		"A18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF" +
		"06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728" +
		"E5A8AACAA68FFFFFFFFFFFFFFFF"
	p, ok := new(big.Int).SetString(pHex, 16)
	if !ok {
		panic("refgroup: bad prime constant")
	}
	return p, new(big.Int).Rsh(p, 1) // q = (p-1)/2, since p is a safe prime.
}

// byteLen is the fixed encoding length of every field/group element in this package.
var byteLen = (p.BitLen() + 7) / 8

// generator returns a canonical generator of the order-q subgroup: squaring
// any non-identity element of Z_p^* lands in it, since q is prime and the
// subgroup has index 2.
func generator() *big.Int {
	return new(big.Int).Exp(big.NewInt(2), big.NewInt(2), p)
}

var baseElem = generator()

func hashToScalar(data []byte) *big.Int {
	h := sha256.Sum256(data)
	// expand to cover q's bit length so the reduction below isn't badly biased
	buf := make([]byte, 0, byteLen)
	counter := byte(0)
	for len(buf) < byteLen {
		hh := sha256.Sum256(append(append([]byte{}, h[:]...), counter))
		buf = append(buf, hh[:]...)
		counter++
	}
	x := new(big.Int).SetBytes(buf[:byteLen])
	return x.Mod(x, q)
}

func fmtErr(op string, err error) error {
	return fmt.Errorf("refgroup: %s: %w", op, err)
}
