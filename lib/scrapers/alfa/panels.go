package alfa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"alfagate-backend/lib/textutil"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/codes"
)

const fleetPath = "/en/account/manage-my-fleet"
const membersStart = "var members = [{"
const membersEnd = "}];"
const singlePanelMarker = "Sorry this section is not available for your current line type"

// Panel is one portal-managed line. The member objects carry many more
// fields than the engine interprets; everything is retained in Fields
// with the identifying number lifted out.
type Panel struct {
	MSISDNNumber string
	Fields       map[string]any
}

type panelsState int

const (
	panelsNotReady panelsState = iota
	panelsReady
	panelsMalformed
)

// extractPanels pulls the inline member literal out of the fleet page.
// The three outcomes are distinct on purpose: the caller decides whether
// a malformed literal is worth another poll, instead of a decode error
// silently aliasing "page not ready".
func extractPanels(body string) ([]Panel, panelsState, error) {
	data := textutil.ExtractBetween(body, membersStart, membersEnd, false, false)
	if data == "" {
		return nil, panelsNotReady, nil
	}

	var raw []map[string]any
	err := json.Unmarshal([]byte("[{"+data+"}]"), &raw)
	if err != nil {
		return nil, panelsMalformed, err
	}

	panels := make([]Panel, len(raw))
	for i, fields := range raw {
		id, _ := fields["MSISDNNumber"].(string)
		panels[i] = Panel{MSISDNNumber: id, Fields: fields}
	}
	return panels, panelsReady, nil
}

// EnumeratePanels fetches the fleet-management page and decodes the
// panel inventory. The page is not always ready right after login, so
// the step polls with backoff up to the poll deadline. Accounts whose
// line type has no fleet section yield a single synthetic panel equal to
// the account identifier.
func (c *Client) EnumeratePanels(ctx context.Context) ([]Panel, error) {
	ctx, span := tracer.Start(ctx, "EnumeratePanels")
	defer span.End()

	var panels []Panel
	err := backoff.Retry(func() error {
		res := c.get(ctx, fleetPath, fleetHeaders())
		if res.status != http.StatusOK || res.body == "" {
			redirect := res.location()
			slog.DebugContext(
				ctx, "fleet page not ready",
				"status", res.status,
				"redirect", redirect,
			)
			return fmt.Errorf("fleet page returned %d", res.status)
		}

		if strings.Contains(res.body, singlePanelMarker) {
			c.SinglePanelType = true
			panels = []Panel{{
				MSISDNNumber: c.username,
				Fields:       map[string]any{"MSISDNNumber": c.username},
			}}
			return nil
		}

		found, state, err := extractPanels(res.body)
		switch state {
		case panelsReady:
			panels = found
			return nil
		case panelsMalformed:
			slog.WarnContext(ctx, "fleet page member literal is malformed", "err", err)
			return fmt.Errorf("malformed member literal: %v", err)
		default:
			return fmt.Errorf("fleet page carries no member literal")
		}
	}, c.pollBackoff(ctx))
	if err != nil {
		span.SetStatus(codes.Error, "fleet page never became ready")
		return nil, fmt.Errorf("%w: %v", ErrPollTimeout, err)
	}

	slog.InfoContext(ctx, "enumerated panels", "user", c.username, "count", len(panels))
	return panels, nil
}
