// Package wire implements the length-stable, struct-like byte encodings
// (C11, spec §6.1) shared by every DKG and signing message: little-endian
// fixed-width indices, fixed-length (unprefixed) scalars and points, a
// count-prefixed public polynomial, and
// order-preserving composite records with no self-describing tags.
//
// Grounded on the teacher's key/node.go (binary.Write of a little-endian
// Index into a hash) and its protobuf-free wire conventions; generalized
// here into a standalone codec since this module's transport is
// byte-oriented rather than protobuf (spec §1 scopes RPC/transport out).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

// ErrShortBuffer is returned when decoding a buffer shorter than the
// expected fixed-width prefix, and by DecodePubPoly when the bytes after the
// count are not exactly count points long.
var ErrShortBuffer = errors.New("wire: buffer too short")

// PutIdx appends a little-endian 32-bit index.
func PutIdx(buf []byte, idx uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], idx)
	return append(buf, b[:]...)
}

// GetIdx reads a little-endian 32-bit index from the front of buf,
// returning the value and the remaining bytes.
func GetIdx(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(buf[:4]), buf[4:], nil
}

// EncodeShare serializes a wire Share as Idx(4) || Scalar bytes.
func EncodeShare(idx uint32, v curve.Scalar) ([]byte, error) {
	vb, err := v.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(PutIdx(make([]byte, 0, 4+len(vb)), idx), vb...), nil
}

// DecodeShare parses a wire Share, given the curve's scalar field.
func DecodeShare(field curve.Curve, buf []byte) (idx uint32, v curve.Scalar, err error) {
	idx, rest, err := GetIdx(buf)
	if err != nil {
		return 0, nil, err
	}
	v = field.Scalar()
	if err := v.UnmarshalBinary(rest); err != nil {
		return 0, nil, fmt.Errorf("wire: decode share: %w", err)
	}
	return idx, v, nil
}

// EncodePartial serializes a wire Partial as Idx(4) || signature bytes.
func EncodePartial(idx uint32, sig []byte) []byte {
	return append(PutIdx(make([]byte, 0, 4+len(sig)), idx), sig...)
}

// DecodePartial splits a wire Partial into its index and raw signature
// bytes (the signature's own length is fixed by the curve and known to the
// caller, so the remainder is returned as-is).
func DecodePartial(buf []byte) (idx uint32, sig []byte, err error) {
	idx, rest, err := GetIdx(buf)
	if err != nil {
		return 0, nil, err
	}
	return idx, rest, nil
}

// EncodePubPoly serializes a public polynomial as count(4, LE) || point...
func EncodePubPoly(points []curve.Point) ([]byte, error) {
	out := PutIdx(nil, uint32(len(points)))
	for _, pt := range points {
		pb, err := pt.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, pb...)
	}
	return out, nil
}

// DecodePubPoly parses a public polynomial, given the curve's point group
// and its fixed per-point encoding length.
func DecodePubPoly(field curve.Curve, buf []byte) ([]curve.Point, error) {
	count, rest, err := GetIdx(buf)
	if err != nil {
		return nil, err
	}
	size := field.Point().MarshalSize()
	if len(rest) != int(count)*size {
		return nil, fmt.Errorf("wire: decode pub poly: %w", ErrShortBuffer)
	}
	out := make([]curve.Point, count)
	for i := 0; i < int(count); i++ {
		pt := field.Point()
		if err := pt.UnmarshalBinary(rest[i*size : (i+1)*size]); err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}
