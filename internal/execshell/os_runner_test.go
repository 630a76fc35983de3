package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergedEnvironment(testInstance *testing.T) {
	testCases := []struct {
		name      string
		base      []string
		overrides map[string]string
		expected  []string
	}{
		{
			name:     "no_overrides",
			base:     []string{"PATH=/usr/bin"},
			expected: []string{"PATH=/usr/bin"},
		},
		{
			name:      "overrides_sorted_after_base",
			base:      []string{"PATH=/usr/bin", "GH_HOST=github.com"},
			overrides: map[string]string{"GH_TOKEN": "token", "GH_HOST": "github.example.com"},
			expected:  []string{"PATH=/usr/bin", "GH_HOST=github.com", "GH_HOST=github.example.com", "GH_TOKEN=token"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expected, mergedEnvironment(testCase.base, testCase.overrides))
		})
	}
}
