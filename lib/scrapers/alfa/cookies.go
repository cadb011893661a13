package alfa

import (
	"net/http"
	"time"
)

// CookieState is the serializable form of one session cookie, so an
// account's authentication state can be stored and rehydrated into a
// later session's jar.
type CookieState struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Path     string     `json:"path,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	HttpOnly bool       `json:"http_only,omitempty"`
}

// ExportCookies snapshots the cookies the jar would send to the portal
// origin.
func (c *Client) ExportCookies() []CookieState {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return nil
	}
	cookies := jar.Cookies(c.BaseUrl)
	out := make([]CookieState, len(cookies))
	for i, ck := range cookies {
		out[i] = CookieState{
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     ck.Path,
			Domain:   ck.Domain,
			Secure:   ck.Secure,
			HttpOnly: ck.HttpOnly,
		}
		if !ck.Expires.IsZero() {
			expires := ck.Expires
			out[i].Expires = &expires
		}
	}
	return out
}

// ImportCookies seeds the jar with previously exported cookies and
// marks the session as already authenticated, so the interactive login
// is skipped in favor of the warm-up fetch.
func (c *Client) ImportCookies(cookies []CookieState) {
	if len(cookies) == 0 {
		return
	}
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return
	}

	restored := make([]*http.Cookie, len(cookies))
	for i, ck := range cookies {
		restored[i] = &http.Cookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Path:     ck.Path,
			Domain:   ck.Domain,
			Secure:   ck.Secure,
			HttpOnly: ck.HttpOnly,
		}
		if ck.Expires != nil {
			restored[i].Expires = *ck.Expires
		}
	}
	jar.SetCookies(c.BaseUrl, restored)
	c.hasLoginCookies = true
}

// HasLoginCookies reports whether the session trusts its jar enough to
// skip the interactive login.
func (c *Client) HasLoginCookies() bool {
	return c.hasLoginCookies
}
