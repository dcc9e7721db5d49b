// Package status implements the per-(dealer, holder) status matrix (C5,
// spec §4.4) that drives the accusation protocol: each cell records whether
// a holder has accepted (Success) or is still disputing (Complaint) a
// dealer's share.
//
// Grounded on the fresh/resharing state machines' row-major access pattern
// described in spec §4.5/§4.6, implemented with github.com/bits-and-blooms/
// bitset (a dependency already pulled transitively by kyber's DKG packages
// in the retrieval pack) rather than a hand-rolled bit array, matching the
// spec's own suggestion of "a plain bit matrix (row-major bitset per
// dealer)" in §9.
package status

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Status is a single matrix cell's value.
type Status bool

const (
	Complaint Status = false
	Success   Status = true
)

// ErrOutOfBounds is returned by Get/Set when the dealer or holder index
// falls outside the matrix's declared dimensions.
var ErrOutOfBounds = errors.New("status: index out of bounds")

// Matrix is a |dealers| x |holders| bit matrix. The zero value is not
// usable; construct with New or NewFresh.
type Matrix struct {
	rows    []*bitset.BitSet
	nHolder uint
}

// New builds a matrix of the given dimensions with every cell defaulted to
// def.
func New(nDealer, nHolder int, def Status) *Matrix {
	m := &Matrix{rows: make([]*bitset.BitSet, nDealer), nHolder: uint(nHolder)}
	for d := range m.rows {
		m.rows[d] = bitset.New(uint(nHolder))
		if def == Success {
			m.rows[d].SetAll()
		}
	}
	return m
}

// NewFresh builds a square matrix for a fresh (non-resharing) DKG of n
// participants: every cell defaults to Complaint except the diagonal,
// which defaults to Success, since dealers trust their own share.
func NewFresh(n int) *Matrix {
	m := New(n, n, Complaint)
	for i := 0; i < n; i++ {
		m.rows[i].Set(uint(i))
	}
	return m
}

func (m *Matrix) bounds(d, h int) error {
	if d < 0 || d >= len(m.rows) || h < 0 || uint(h) >= m.nHolder {
		return fmt.Errorf("%w: dealer=%d holder=%d", ErrOutOfBounds, d, h)
	}
	return nil
}

// Set records the status of the (dealer, holder) cell.
func (m *Matrix) Set(dealer, holder int, s Status) error {
	if err := m.bounds(dealer, holder); err != nil {
		return err
	}
	if s == Success {
		m.rows[dealer].Set(uint(holder))
	} else {
		m.rows[dealer].Clear(uint(holder))
	}
	return nil
}

// Get reads the status of the (dealer, holder) cell.
func (m *Matrix) Get(dealer, holder int) (Status, error) {
	if err := m.bounds(dealer, holder); err != nil {
		return Complaint, err
	}
	return Status(m.rows[dealer].Test(uint(holder))), nil
}

// Row returns a read-only snapshot of a dealer's row, indexed by holder.
func (m *Matrix) Row(dealer int) ([]Status, error) {
	if dealer < 0 || dealer >= len(m.rows) {
		return nil, fmt.Errorf("%w: dealer=%d", ErrOutOfBounds, dealer)
	}
	out := make([]Status, m.nHolder)
	for h := uint(0); h < m.nHolder; h++ {
		out[h] = Status(m.rows[dealer].Test(h))
	}
	return out, nil
}

// Column returns a copy of a holder's column, indexed by dealer.
func (m *Matrix) Column(holder int) ([]Status, error) {
	if holder < 0 || uint(holder) >= m.nHolder {
		return nil, fmt.Errorf("%w: holder=%d", ErrOutOfBounds, holder)
	}
	out := make([]Status, len(m.rows))
	for d, row := range m.rows {
		out[d] = Status(row.Test(uint(holder)))
	}
	return out, nil
}

// AllSuccess reports whether every cell in a dealer's row is Success.
func (m *Matrix) AllSuccess(dealer int) (bool, error) {
	if dealer < 0 || dealer >= len(m.rows) {
		return false, fmt.Errorf("%w: dealer=%d", ErrOutOfBounds, dealer)
	}
	return m.rows[dealer].Count() == m.nHolder, nil
}

// NumDealers returns the matrix's dealer-dimension size.
func (m *Matrix) NumDealers() int { return len(m.rows) }

// NumHolders returns the matrix's holder-dimension size.
func (m *Matrix) NumHolders() int { return int(m.nHolder) }

// QUAL returns the dealer indices whose row is entirely Success (spec
// §4.5 Phase 3), in ascending order.
func (m *Matrix) QUAL() []int {
	var qual []int
	for d := range m.rows {
		if ok, _ := m.AllSuccess(d); ok {
			qual = append(qual, d)
		}
	}
	return qual
}

// String renders the matrix as a grid of 'S'/'C' for debugging; the layout
// carries no protocol meaning.
func (m *Matrix) String() string {
	s := ""
	for d := range m.rows {
		row, _ := m.Row(d)
		for _, c := range row {
			if c == Success {
				s += "S"
			} else {
				s += "C"
			}
		}
		s += "\n"
	}
	return s
}
