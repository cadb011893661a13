package alfa

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/codes"
)

const loginPath = "/ar/account/login"
const homePath = "/en/account"
const accountPathMarker = "/account"

// total attempts for credential submission, counting the first
const submitAttempts = 5

func (c *Client) pollBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Second * 30
	b.MaxElapsedTime = c.pollDeadline
	return backoff.WithContext(b, ctx)
}

// AcquireToken fetches the login page and captures the verification
// token. A missing token is structural, not transient: the step fails
// immediately with no retry. When the session already carries trusted
// login cookies the interactive login is skipped entirely in favor of a
// warm-up fetch of the account home page.
func (c *Client) AcquireToken(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "AcquireToken")
	defer span.End()

	if c.hasLoginCookies {
		slog.InfoContext(ctx, "login cookies present, skipping interactive login", "user", c.username)
		return c.warmUp(ctx)
	}

	res := c.getFollowing(ctx, loginPath, navigateHeaders())
	if res.isError {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return fmt.Errorf("%w: %s", ErrTokenNotFound, res.errMsg)
	}
	if res.body == "" {
		span.SetStatus(codes.Error, "login page returned an empty body")
		return fmt.Errorf("%w: status %d with empty body", ErrTokenNotFound, res.status)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login page html")
		return fmt.Errorf("%w: %v", ErrTokenNotFound, err)
	}

	token := c.locator.Locate(doc)
	if token == "" {
		span.SetStatus(codes.Error, "verification token missing from login page")
		slog.WarnContext(
			ctx, "verification token missing",
			"user", c.username,
			"status", res.status,
		)
		return ErrTokenNotFound
	}

	c.Token = token
	return nil
}

// warmUp polls the account home page until it answers 200, giving the
// server time to recognize the restored cookies. Bounded by the poll
// deadline.
func (c *Client) warmUp(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "warmUp")
	defer span.End()

	err := backoff.Retry(func() error {
		res := c.get(ctx, homePath, navigateHeaders())
		if res.status != http.StatusOK {
			return fmt.Errorf("home page returned %d", res.status)
		}
		return nil
	}, c.pollBackoff(ctx))
	if err != nil {
		span.SetStatus(codes.Error, "home page never became ready")
		return fmt.Errorf("%w: %v", ErrPollTimeout, err)
	}
	return nil
}

// SubmitCredentials posts the login form and verifies the portal
// redirected into the account area. The whole step retries up to
// submitAttempts times; the verification token is deliberately not
// re-fetched between attempts since the portal accepts it for the
// lifetime of the original page load.
func (c *Client) SubmitCredentials(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "SubmitCredentials")
	defer span.End()

	if c.hasLoginCookies {
		return nil
	}

	for attempt := 1; attempt <= submitAttempts; attempt++ {
		if c.submitOnce(ctx, attempt) {
			return nil
		}
	}

	span.SetStatus(codes.Error, ErrLoginRejected.Error())
	return ErrLoginRejected
}

func (c *Client) submitOnce(ctx context.Context, attempt int) bool {
	form := url.Values{}
	form.Set(tokenFieldName, c.Token)
	form.Set("Username", c.username)
	form.Set("Password", c.password)
	form.Set("RememberMe", "true")

	res := c.post(ctx, loginPath, navigateHeaders(), form.Encode())

	redirect := res.location()
	if redirect == "" || !strings.Contains(redirect, accountPathMarker) {
		slog.WarnContext(
			ctx, "credential submission not accepted",
			"user", c.username,
			"attempt", attempt,
			"status", res.status,
			"redirect", redirect,
		)
		return false
	}

	// one more fetch against the redirect target finalizes session
	// cookie issuance; its outcome is not load bearing
	c.get(ctx, redirect, xhrHeaders())

	slog.InfoContext(ctx, "login credentials accepted", "user", c.username, "redirect", redirect)
	return true
}
