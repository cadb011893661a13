package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body>
<form>
	<input type="hidden" name="__RequestVerificationToken" value="first">
	<input type="hidden" name="__RequestVerificationToken" value="second">
	<input type="hidden" name="__RequestVerificationToken" value="third">
	<input type="hidden" name="other" value="unrelated">
</form>
</body></html>`

func TestOrdinalInput(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)

	require.Equal(t, "first", OrdinalInput(doc, "__RequestVerificationToken", 0))
	require.Equal(t, "third", OrdinalInput(doc, "__RequestVerificationToken", 2))
	require.Equal(t, "", OrdinalInput(doc, "__RequestVerificationToken", 3))
	require.Equal(t, "", OrdinalInput(doc, "missing", 0))
	require.Equal(t, "", OrdinalInput(doc, "__RequestVerificationToken", -1))
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div>hello <b>wor</b>ld</div>`,
	))
	require.NoError(t, err)
	require.Equal(t, "hello world", GetText(doc.Find("div").Nodes[0]))
}
