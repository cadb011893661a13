package alfa

import (
	"context"
	"net/http"
)

// response is the normalized result of one portal request. Transport
// failure never escapes the adapter: DNS, TLS, timeout and reset errors
// all surface as isError with a synthetic 500 so the step loops branch
// on response shape alone and never catch network errors themselves.
type response struct {
	status  int
	header  http.Header
	body    string
	isError bool
	errMsg  string
}

// location reads the redirect target. Header lookup is canonicalized,
// so both "location" and "Location" spellings resolve.
func (r response) location() string {
	if r.header == nil {
		return ""
	}
	return r.header.Get("Location")
}

func (r response) isRedirect() bool {
	switch r.status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

const maxRedirectHops = 10

func (c *Client) do(ctx context.Context, method, target string, headers map[string]string, form string) response {
	req := c.Http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if form != "" {
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		req.SetBody(form)
	}

	res, err := req.Execute(method, target)
	if err != nil {
		out := response{
			status:  http.StatusInternalServerError,
			isError: true,
			errMsg:  err.Error(),
		}
		// keep whatever the transport managed to read before failing
		if res != nil && res.RawResponse != nil {
			out.status = res.StatusCode()
			out.header = res.Header()
			out.body = res.String()
		}
		return out
	}

	return response{
		status: res.StatusCode(),
		header: res.Header(),
		body:   res.String(),
	}
}

func (c *Client) get(ctx context.Context, target string, headers map[string]string) response {
	return c.do(ctx, http.MethodGet, target, headers, "")
}

// getFollowing issues a GET and walks redirects by hand, so the cookie
// jar still observes every intermediate Set-Cookie.
func (c *Client) getFollowing(ctx context.Context, target string, headers map[string]string) response {
	res := c.get(ctx, target, headers)
	for hops := 0; hops < maxRedirectHops && !res.isError && res.isRedirect(); hops++ {
		next := res.location()
		if next == "" {
			break
		}
		res = c.get(ctx, next, headers)
	}
	return res
}

func (c *Client) post(ctx context.Context, target string, headers map[string]string, form string) response {
	return c.do(ctx, http.MethodPost, target, headers, form)
}
