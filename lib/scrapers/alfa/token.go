package alfa

import (
	"alfagate-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const tokenFieldName = "__RequestVerificationToken"

// TokenLocator pulls the anti-forgery token out of the login page. The
// portal repeats the hidden input several times and only one occurrence
// holds the token the form submission accepts; which one is a property
// of the site's unversioned markup, so the strategy is swappable without
// touching the login flow.
type TokenLocator interface {
	Locate(doc *goquery.Document) string
}

// OrdinalInputLocator reads the value of the Index-th (zero-based)
// hidden input named Name.
type OrdinalInputLocator struct {
	Name  string
	Index int
}

func (l OrdinalInputLocator) Locate(doc *goquery.Document) string {
	return htmlutil.OrdinalInput(doc, l.Name, l.Index)
}

// DefaultTokenLocator matches the login page as currently served: the
// usable token is the third occurrence of the hidden input.
func DefaultTokenLocator() TokenLocator {
	return OrdinalInputLocator{Name: tokenFieldName, Index: 2}
}
