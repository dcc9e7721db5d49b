// Package party describes the DKG group of participants (spec §4.4): each
// member's index and long-term public key, and the group-wide threshold.
//
// Grounded on the teacher's key/node.go (Node wraps an Identity with its
// group Index) and key/group.go (Group holds the node list, the threshold,
// and lookup helpers), generalized from drand's TLS Identity/Group (which
// also carries network addresses and TOML marshaling, both out of scope per
// spec §1) down to the bare index/public-key pair the DKG and signing layers
// need.
package party

import (
	"encoding/binary"
	"errors"
	"hash"

	"github.com/celo-org/celo-threshold-bls-go/curve"
)

// Index identifies a participant's position in the group; it is also the
// holder index threaded through poly.PriShare/poly.PubShare (with the
// one-shift applied at evaluation time, never here).
type Index = uint32

// Node is a participant's long-term identity: its index in the group and
// its long-term public key on the DKG curve, used to address C3 bundles to
// it. Bundle authentication (board.Authenticator) uses a separate secp256k1
// key, not this one.
type Node struct {
	Index Index
	Key   curve.Point
}

// Hash returns a compact, order-sensitive digest of the node, used when
// building a Group.Hash.
func (n *Node) Hash(h hash.Hash) ([]byte, error) {
	if err := binary.Write(h, binary.LittleEndian, n.Index); err != nil {
		return nil, err
	}
	kb, err := n.Key.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.Write(kb)
	return h.Sum(nil), nil
}

// Equal reports whether two nodes have the same index and public key.
func (n *Node) Equal(o *Node) bool {
	return n.Index == o.Index && n.Key.Equal(o.Key)
}

// ErrThresholdTooLow is returned when a Group is built with a threshold
// that would make the secret recoverable by fewer than a majority of
// holders.
var ErrThresholdTooLow = errors.New("party: threshold below the minimum safe value")

// ErrThresholdTooHigh is returned when a Group's threshold exceeds its
// membership.
var ErrThresholdTooHigh = errors.New("party: threshold exceeds group size")

// Group is the fixed membership list and threshold a DKG or resharing run
// operates over (spec §4.4).
type Group struct {
	Nodes     []*Node
	Threshold int
}

// MinimumThreshold returns floor(n/2)+1, the smallest threshold at which a
// secret cannot be reconstructed by a minority of holders.
func MinimumThreshold(n int) int {
	return n/2 + 1
}

// DefaultThreshold returns floor(2n/3)+1, the threshold this module picks
// when the caller does not specify one, matching the Byzantine-fault-
// tolerant convention used across the DKG literature and the teacher's own
// key.DefaultThreshold.
func DefaultThreshold(n int) int {
	return (2*n)/3 + 1
}

// NewGroup validates and constructs a Group. The threshold must be within
// [MinimumThreshold(n), n].
func NewGroup(nodes []*Node, threshold int) (*Group, error) {
	n := len(nodes)
	if threshold < MinimumThreshold(n) {
		return nil, ErrThresholdTooLow
	}
	if threshold > n {
		return nil, ErrThresholdTooHigh
	}
	return &Group{Nodes: nodes, Threshold: threshold}, nil
}

// Len returns the number of participants.
func (g *Group) Len() int { return len(g.Nodes) }

// Contains reports whether pub is a member's public key.
func (g *Group) Contains(pub curve.Point) bool {
	_, ok := g.Index(pub)
	return ok
}

// Index returns the group index of pub, and whether it was found.
func (g *Group) Index(pub curve.Point) (Index, bool) {
	for _, n := range g.Nodes {
		if n.Key.Equal(pub) {
			return n.Index, true
		}
	}
	return 0, false
}

// Public returns the node at index i, or nil if out of range.
func (g *Group) Public(i Index) *Node {
	for _, n := range g.Nodes {
		if n.Index == i {
			return n
		}
	}
	return nil
}

// Points returns the group's public keys in node order.
func (g *Group) Points() []curve.Point {
	pts := make([]curve.Point, len(g.Nodes))
	for i, n := range g.Nodes {
		pts[i] = n.Key
	}
	return pts
}

// Hash returns a deterministic digest of the group's membership and
// threshold, independent of any distributed public key it may later
// produce, so old and new groups in a resharing can still be compared by
// their static membership if needed.
func (g *Group) Hash(h hash.Hash) ([]byte, error) {
	for _, n := range g.Nodes {
		if _, err := n.Hash(h); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(h, binary.LittleEndian, uint32(g.Threshold)); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
