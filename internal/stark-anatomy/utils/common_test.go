package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 64, 1 << 20} {
		require.True(t, IsPowerOfTwo(n), "%d", n)
	}
	for _, n := range []int{0, -1, 3, 6, 100} {
		require.False(t, IsPowerOfTwo(n), "%d", n)
	}
}

func TestCeilLog2(t *testing.T) {
	require.Equal(t, 0, CeilLog2(1))
	require.Equal(t, 1, CeilLog2(2))
	require.Equal(t, 6, CeilLog2(36))
	require.Equal(t, 6, CeilLog2(64))
	require.Equal(t, 7, CeilLog2(65))
}

func TestNextPowerOfTwo(t *testing.T) {
	require.Equal(t, 1, NextPowerOfTwo(0))
	require.Equal(t, 4, NextPowerOfTwo(3))
	require.Equal(t, 64, NextPowerOfTwo(64))
	require.Equal(t, 128, NextPowerOfTwo(65))
}
