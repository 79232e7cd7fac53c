package motion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	s := Of(Forward, Right)
	require.True(t, s.Has(Forward))
	require.True(t, s.Has(Right))
	require.False(t, s.Has(Stop))
	require.False(t, s.IsStop())
	require.Equal(t, []Command{Forward, Right}, s.List())
	require.Equal(t, "forward+right", s.String())
	require.True(t, Of(Stop).IsStop())
	require.Equal(t, "none", Commands(0).String())
	require.Equal(t, "unknown", Command(0x80).String())
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in     string
		expect Commands
		ok     bool
	}{
		{"stop", Of(Stop), true},
		{"forward+left", Of(Forward, Left), true},
		{"left+forward", Of(Forward, Left), true},
		{"none", 0, true},
		{"up", 0, false},
		{"forward+", 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			s, ok := Parse(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expect, s)
		})
	}
}
