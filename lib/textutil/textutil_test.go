package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBetween(t *testing.T) {
	require.Equal(t, "X", ExtractBetween("abc[X]def", "[", "]", false, false))
	require.Equal(t, "[X", ExtractBetween("abc[X]def", "[", "]", true, false))
	require.Equal(t, "X]", ExtractBetween("abc[X]def", "[", "]", false, true))
	require.Equal(t, "[X]", ExtractBetween("abc[X]def", "[", "]", true, true))

	// missing markers or empty input degrade to ""
	require.Equal(t, "", ExtractBetween("abc[Xdef", "[", "]", false, false))
	require.Equal(t, "", ExtractBetween("abcX]def", "[", "]", false, false))
	require.Equal(t, "", ExtractBetween("", "[", "]", false, false))

	// the end marker must occur after the start marker
	require.Equal(t, "", ExtractBetween("]abc[X", "[", "]", false, false))

	// first occurrence wins
	require.Equal(t, "a", ExtractBetween("[a][b]", "[", "]", false, false))
}

func TestExtractBetweenMemberLiteral(t *testing.T) {
	body := `<script>var members = [{"MSISDNNumber":"123"},{"MSISDNNumber":"456"}];</script>`
	data := ExtractBetween(body, "var members = [{", "}];", false, false)
	require.Equal(t, `"MSISDNNumber":"123"},{"MSISDNNumber":"456"`, data)
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "johnsmith", NormalizeName("  John Smith\n"))
}
