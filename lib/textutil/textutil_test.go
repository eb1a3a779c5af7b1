package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "lightheavyweight", NormalizeName("  Light Heavyweight \n"))
	require.Equal(t, "jonjones", NormalizeName("Jon\tJones"))
}

func TestMatchName(t *testing.T) {
	matchers := []string{"heavyweight", "catchweight"}
	require.True(t, MatchName("Light Heavyweight", matchers))
	require.True(t, MatchName(" Catch Weight Bout ", matchers))
	require.False(t, MatchName("Flyweight", matchers))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "Fight Night: Smith vs Jones", CollapseWhitespace("  Fight Night:\n   Smith vs Jones \t"))
	require.Equal(t, "", CollapseWhitespace(" \n\t "))
}
