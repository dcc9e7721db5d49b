package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreshDiagonalDefaultsToSuccess(t *testing.T) {
	m := NewFresh(4)
	for i := 0; i < 4; i++ {
		st, err := m.Get(i, i)
		require.NoError(t, err)
		require.Equal(t, Success, st)
	}
	st, err := m.Get(0, 1)
	require.NoError(t, err)
	require.Equal(t, Complaint, st)
}

func TestSetAndAllSuccess(t *testing.T) {
	m := NewFresh(3)
	ok, err := m.AllSuccess(0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(0, 1, Success))
	require.NoError(t, m.Set(0, 2, Success))
	ok, err = m.AllSuccess(0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOutOfBounds(t *testing.T) {
	m := NewFresh(2)
	_, err := m.Get(5, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.Error(t, m.Set(0, 9, Success))
}

func TestQUAL(t *testing.T) {
	m := NewFresh(3)
	require.NoError(t, m.Set(0, 1, Success))
	require.NoError(t, m.Set(0, 2, Success))
	require.Equal(t, []int{0}, m.QUAL())
}

func TestRowAndColumn(t *testing.T) {
	m := New(2, 3, Complaint)
	require.NoError(t, m.Set(1, 2, Success))
	row, err := m.Row(1)
	require.NoError(t, err)
	require.Equal(t, []Status{Complaint, Complaint, Success}, row)

	col, err := m.Column(2)
	require.NoError(t, err)
	require.Equal(t, []Status{Complaint, Success}, col)
}
