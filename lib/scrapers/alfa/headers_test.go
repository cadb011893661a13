package alfa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomUserAgentCoversWholePool(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 5000; i++ {
		ua := RandomUserAgent()
		require.Contains(t, UserAgents, ua)
		seen[ua] = true
	}
	// every entry must be selectable, the last one included
	require.Len(t, seen, len(UserAgents))
	require.True(t, seen[UserAgents[len(UserAgents)-1]])
}
