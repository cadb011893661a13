// Package alfa drives a cookie-based login session against the Alfa
// subscriber portal and enumerates the panels (lines) the account manages.
//
// The portal has no API: authentication is the browser login form, state
// lives in cookies and an anti-forgery token embedded in the login page
// markup, and the panel inventory is an inline javascript literal on the
// fleet-management page. Everything here exists to reproduce that browser
// flow without a browser.
package alfa

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"alfagate-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://www.alfa.com.lb"

var ErrTokenNotFound = fmt.Errorf("could not find the request verification token in the login page")
var ErrLoginRejected = fmt.Errorf("the portal did not accept the login credentials")
var ErrPollTimeout = fmt.Errorf("gave up waiting for the portal to return a recognized page")

// ProxyConfig describes an optional forward proxy the session tunnels
// through. An empty Host means direct connection.
type ProxyConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p ProxyConfig) url() string {
	u := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u.String()
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl  string
	Username string
	Password string
	Proxy    ProxyConfig
	// InsecureTLS disables certificate verification toward the origin.
	// Required when tunneling through an intercepting debug proxy; it is
	// an explicit opt-in, never the default.
	InsecureTLS bool
	// BrowserBypass wraps the transport with the cloudflare bypass
	// round tripper. Leave off unless the portal starts challenging the
	// plain client: the wrapper rewrites headers the login steps set
	// deliberately.
	BrowserBypass bool
	// TokenLocator overrides how the verification token is pulled out of
	// the login page. Defaults to DefaultTokenLocator().
	TokenLocator TokenLocator
	// Timeout bounds each individual request. Defaults to 2 minutes.
	Timeout time.Duration
	// PollDeadline bounds the warm-up and enumeration polls. Defaults to
	// 5 minutes.
	PollDeadline time.Duration
}

// Client is one automation session for one account. It owns its cookie
// jar and verification token; independent sessions share nothing, so any
// number of them may run concurrently.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// Token is the portal's anti-forgery value, captured once per login
	// cycle and reused verbatim across submission retries. The portal
	// keeps it valid for the lifetime of the page load that produced it.
	Token string

	// SinglePanelType is set when the portal denies fleet access for the
	// account's line type, implying exactly one implicit panel.
	SinglePanelType bool

	username        string
	password        string
	hasLoginCookies bool
	locator         TokenLocator
	pollDeadline    time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", RandomUserAgent())

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Minute * 2
	}
	client.SetTimeout(timeout)

	// redirects are never followed implicitly; the login steps inspect
	// Location themselves and the one step that wants following does it
	// hop by hop in the transport layer
	client.GetClient().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if opts.Proxy.Host != "" {
		client.SetProxy(opts.Proxy.url())
	}
	if opts.InsecureTLS {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.BrowserBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	locator := opts.TokenLocator
	if locator == nil {
		locator = DefaultTokenLocator()
	}
	pollDeadline := opts.PollDeadline
	if pollDeadline == 0 {
		pollDeadline = time.Minute * 5
	}

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		BaseUrl:      baseUrl,
		Http:         client,
		username:     opts.Username,
		password:     opts.Password,
		locator:      locator,
		pollDeadline: pollDeadline,
	}, nil
}

// Username returns the resolved account identifier the session was
// created with.
func (c *Client) Username() string {
	return c.username
}

// StartLogin runs the three steps of the flow in order: acquire the
// verification token, submit credentials, enumerate panels. It short
// circuits on the first step that fails; only a successful enumeration
// returns a panel list.
func (c *Client) StartLogin(ctx context.Context) ([]Panel, error) {
	ctx, span := tracer.Start(ctx, "StartLogin")
	defer span.End()

	err := c.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}
	err = c.SubmitCredentials(ctx)
	if err != nil {
		return nil, err
	}
	return c.EnumeratePanels(ctx)
}
