// Package portal orchestrates login sessions against the subscriber
// portal: it resolves credential aliases, rehydrates persisted login
// cookies, runs the scripted login flow and records the resulting panel
// inventory.
package portal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"alfagate-backend/lib/identity"
	"alfagate-backend/lib/scrapers/alfa"
	"alfagate-backend/lib/telemetry"
	"alfagate-backend/services/portal/db"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("alfagate.services.portal")

type Options struct {
	BaseUrl       string           `json:"base_url"`
	Aliases       identity.Table   `json:"aliases"`
	Proxy         alfa.ProxyConfig `json:"proxy"`
	InsecureTLS   bool             `json:"insecure_tls"`
	BrowserBypass bool             `json:"browser_bypass"`
	Smtp          SmtpConfig       `json:"smtp"`
	ReportTo      []string         `json:"report_to"`
	// TimeoutSeconds bounds each portal request; PollDeadlineSeconds
	// bounds the warm-up and enumeration polls. Zero keeps the engine
	// defaults.
	TimeoutSeconds      int `json:"timeout_seconds"`
	PollDeadlineSeconds int `json:"poll_deadline_seconds"`
}

type Service struct {
	db       *sql.DB
	qry      *db.Queries
	resolver identity.Resolver
	config   Options
}

func NewService(database *sql.DB, options Options) Service {
	return Service{
		db:       database,
		qry:      db.New(database),
		resolver: identity.NewResolver(options.Aliases),
		config:   options,
	}
}

type SessionRequest struct {
	Username string `json:"user"`
	Password string `json:"password"`
}

type SessionResult struct {
	RunID           string       `json:"run_id"`
	Username        string       `json:"username"`
	SinglePanelType bool         `json:"single_panel_type"`
	Panels          []alfa.Panel `json:"panels"`
}

// StartSession runs the full login flow for one account and returns its
// panel inventory. Cookies persisted by a previous session are restored
// into the client first so an account with a live server session skips
// the interactive login entirely; whatever cookies the flow ends with
// are persisted back. Login failures are reported over email when
// reporting is configured, but reporting never masks the flow's error.
func (s Service) StartSession(ctx context.Context, req SessionRequest) (SessionResult, error) {
	ctx, span := tracer.Start(ctx, "StartSession")
	defer span.End()

	creds := s.resolver.Resolve(identity.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	span.SetAttributes(attribute.String("user", creds.Username))

	runId, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return SessionResult{}, err
	}

	client, err := s.newPortalClient(creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct portal client")
		return SessionResult{}, err
	}

	restored := s.restoreCookies(ctx, client, creds.Username)

	panels, err := client.StartLogin(ctx)
	if err != nil && restored {
		// the server no longer honors the persisted cookies (the fast
		// path times out polling the home page instead of being
		// rejected outright); drop them and log in interactively with
		// the credentials already in hand
		slog.WarnContext(
			ctx, "persisted cookies are stale, retrying interactively",
			"user", creds.Username,
			"err", err,
		)
		if e := s.qry.DeleteLoginCookies(ctx, creds.Username); e != nil {
			slog.WarnContext(ctx, "failed to drop persisted cookies", "err", e)
		}
		client, err = s.newPortalClient(creds)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to construct portal client")
			return SessionResult{}, err
		}
		panels, err = client.StartLogin(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login flow failed")
		if errors.Is(err, alfa.ErrLoginRejected) {
			// a persisted row for rejected credentials would only wedge
			// future sessions
			if e := s.qry.DeleteLoginCookies(ctx, creds.Username); e != nil {
				slog.WarnContext(ctx, "failed to drop persisted cookies", "err", e)
			}
		}
		s.reportFailure(ctx, runId, creds.Username, err)
		return SessionResult{}, err
	}

	s.persistCookies(ctx, client, creds.Username)
	s.persistSnapshot(ctx, runId, client, panels)

	return SessionResult{
		RunID:           runId,
		Username:        creds.Username,
		SinglePanelType: client.SinglePanelType,
		Panels:          panels,
	}, nil
}

func (s Service) newPortalClient(creds identity.Credentials) (*alfa.Client, error) {
	return alfa.NewClient(alfa.ClientOptions{
		BaseUrl:       s.config.BaseUrl,
		Username:      creds.Username,
		Password:      creds.Password,
		Proxy:         s.config.Proxy,
		InsecureTLS:   s.config.InsecureTLS,
		BrowserBypass: s.config.BrowserBypass,
		Timeout:       time.Duration(s.config.TimeoutSeconds) * time.Second,
		PollDeadline:  time.Duration(s.config.PollDeadlineSeconds) * time.Second,
	})
}

// restoreCookies reports whether persisted cookies were imported into
// the client, putting it on the skip-interactive-login fast path.
func (s Service) restoreCookies(ctx context.Context, client *alfa.Client, username string) bool {
	row, err := s.qry.GetLoginCookies(ctx, username)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to load persisted cookies", "user", username, "err", err)
		return false
	}

	var cookies []alfa.CookieState
	if err := json.Unmarshal([]byte(row.Cookies), &cookies); err != nil {
		slog.WarnContext(ctx, "persisted cookies are unreadable", "user", username, "err", err)
		return false
	}
	if len(cookies) == 0 {
		return false
	}

	client.ImportCookies(cookies)
	slog.InfoContext(ctx, "restored persisted login cookies", "user", username, "count", len(cookies))
	return true
}

func (s Service) persistCookies(ctx context.Context, client *alfa.Client, username string) {
	cookies := client.ExportCookies()
	if len(cookies) == 0 {
		return
	}

	data, err := json.Marshal(cookies)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode cookies", "user", username, "err", err)
		return
	}
	err = s.qry.UpsertLoginCookies(ctx, db.UpsertLoginCookiesParams{
		Username:  username,
		Cookies:   string(data),
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to persist cookies", "user", username, "err", err)
	}
}

func (s Service) persistSnapshot(ctx context.Context, runId string, client *alfa.Client, panels []alfa.Panel) {
	data, err := json.Marshal(panels)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode panel snapshot", "err", err)
		return
	}
	err = s.qry.CreatePanelSnapshot(ctx, db.CreatePanelSnapshotParams{
		Username:        client.Username(),
		RunID:           runId,
		TakenAt:         time.Now().Unix(),
		SinglePanelType: client.SinglePanelType,
		Panels:          string(data),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to persist panel snapshot", "err", err)
	}
}

// GetPanels returns the most recently recorded panel inventory for an
// account without touching the portal. sql.ErrNoRows surfaces unchanged
// when the account has never completed a session.
func (s Service) GetPanels(ctx context.Context, username string) (SessionResult, error) {
	ctx, span := tracer.Start(ctx, "GetPanels")
	defer span.End()

	row, err := s.qry.GetLatestPanelSnapshot(ctx, username)
	if err != nil {
		if err != sql.ErrNoRows {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load panel snapshot")
		}
		return SessionResult{}, err
	}

	var panels []alfa.Panel
	if err := json.Unmarshal([]byte(row.Panels), &panels); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "panel snapshot is unreadable")
		return SessionResult{}, err
	}

	return SessionResult{
		RunID:           row.RunID,
		Username:        row.Username,
		SinglePanelType: row.SinglePanelType,
		Panels:          panels,
	}, nil
}
