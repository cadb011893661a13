package htmlutil

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// OrdinalInput returns the value attribute of the index-th (zero-based)
// input element named `name` in the document, or "" when the document has
// fewer occurrences or the element carries no value.
func OrdinalInput(doc *goquery.Document, name string, index int) string {
	sel := doc.Find(fmt.Sprintf("input[name=%s]", name))
	if index < 0 || index >= len(sel.Nodes) {
		return ""
	}
	return sel.Eq(index).AttrOr("value", "")
}
