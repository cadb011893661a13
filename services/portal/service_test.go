package portal

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"alfagate-backend/lib/identity"
	"alfagate-backend/lib/scrapers/alfa"
	"alfagate-backend/lib/telemetry"
	"alfagate-backend/services/portal/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakePortal is a minimal stand-in for the subscriber portal: a login
// form with the repeated hidden token inputs, a redirect-based
// credential check and the fleet page behind a session cookie.
type fakePortal struct {
	mu         sync.Mutex
	sessionId  string
	submitHits int
	homeHits   int
}

// session returns the cookie value the portal currently honors; rotating
// it invalidates every cookie issued before.
func (p *fakePortal) session() string {
	if p.sessionId == "" {
		return "ok"
	}
	return p.sessionId
}

func (p *fakePortal) server(t *testing.T) *httptest.Server {
	const loginPage = `<html><form>
<input type="hidden" name="__RequestVerificationToken" value="a">
<input type="hidden" name="__RequestVerificationToken" value="b">
<input type="hidden" name="__RequestVerificationToken" value="the-token">
</form></html>`

	hasSession := func(r *http.Request) bool {
		ck, err := r.Cookie("portal_session")
		return err == nil && ck.Value == p.session()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ar/account/login", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if r.Method == http.MethodGet {
			w.Write([]byte(loginPage))
			return
		}
		p.submitHits++
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("__RequestVerificationToken") == "the-token" &&
			r.PostFormValue("Username") == "81477690" {
			http.SetCookie(w, &http.Cookie{Name: "portal_session", Value: p.session(), Path: "/"})
			w.Header().Set("Location", "/ar/account/dashboard")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Write([]byte("<html>login failed</html>"))
	})
	mux.HandleFunc("/ar/account/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>dashboard</html>"))
	})
	mux.HandleFunc("/en/account", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.homeHits++
		if !hasSession(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("<html>home</html>"))
	})
	mux.HandleFunc("/en/account/manage-my-fleet", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !hasSession(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`<html><script>var members = [{"MSISDNNumber":"70123456"},{"MSISDNNumber":"70999999"}];</script></html>`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setup(t *testing.T, baseUrl string) (Service, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:services/portal")

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	s := NewService(sqlite, Options{
		BaseUrl: baseUrl,
		Aliases: identity.Table{
			Usernames: map[string]string{"k": "81477690"},
			Passwords: map[string]string{"k": "real-secret"},
		},
	})
	return s, cleanup
}

func TestStartSession(t *testing.T) {
	portal := &fakePortal{}
	service, cleanup := setup(t, portal.server(t).URL)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	res, err := service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err)
	require.Equal(t, "81477690", res.Username)
	require.Len(t, res.Panels, 2)
	require.Equal(t, "70123456", res.Panels[0].MSISDNNumber)
	require.False(t, res.SinglePanelType)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, 1, portal.submitHits)

	// the second session must ride the persisted cookies
	res2, err := service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err)
	require.Len(t, res2.Panels, 2)
	require.Equal(t, 1, portal.submitHits, "a session with persisted cookies must not log in again")
	require.GreaterOrEqual(t, portal.homeHits, 1)
	require.NotEqual(t, res.RunID, res2.RunID)
}

func TestStartSessionStaleCookies(t *testing.T) {
	portal := &fakePortal{}
	server := portal.server(t)

	cleanup := telemetry.SetupForTesting(t, "test:services/portal")
	defer cleanup()

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	// a short poll deadline keeps the dead-cookie warm-up from burning
	// the full default
	service := NewService(sqlite, Options{
		BaseUrl: server.URL,
		Aliases: identity.Table{
			Usernames: map[string]string{"k": "81477690"},
			Passwords: map[string]string{"k": "real-secret"},
		},
		PollDeadlineSeconds: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err = service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err)
	require.Equal(t, 1, portal.submitHits)

	// the server drops the session behind our back; the persisted
	// cookies are now dead
	portal.mu.Lock()
	portal.sessionId = "rotated"
	portal.mu.Unlock()

	res, err := service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err, "stale persisted cookies must fall back to the interactive login")
	require.Len(t, res.Panels, 2)
	require.Equal(t, 2, portal.submitHits)

	// the fallback's fresh cookies must be persisted in place of the
	// dead ones: a third session rides them without logging in again
	_, err = service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err)
	require.Equal(t, 2, portal.submitHits)
}

func TestStartSessionRejected(t *testing.T) {
	portal := &fakePortal{}
	service, cleanup := setup(t, portal.server(t).URL)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := service.StartSession(ctx, SessionRequest{Username: "stranger", Password: "nope"})
	require.ErrorIs(t, err, alfa.ErrLoginRejected)
	require.Equal(t, 5, portal.submitHits)
}

func TestGetPanels(t *testing.T) {
	portal := &fakePortal{}
	service, cleanup := setup(t, portal.server(t).URL)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := service.GetPanels(ctx, "81477690")
	require.ErrorIs(t, err, sql.ErrNoRows)

	started, err := service.StartSession(ctx, SessionRequest{Username: "k", Password: "k"})
	require.NoError(t, err)

	stored, err := service.GetPanels(ctx, "81477690")
	require.NoError(t, err)
	require.Equal(t, started.RunID, stored.RunID)
	require.Len(t, stored.Panels, 2)
	require.Equal(t, "70999999", stored.Panels[1].MSISDNNumber)
}
