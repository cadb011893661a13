package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// reportFailure emails the operators about a failed session. Reporting
// is best effort: a broken SMTP setup is logged, never returned.
func (s Service) reportFailure(ctx context.Context, runId, username string, cause error) {
	if s.config.Smtp.Server == "" || len(s.config.ReportTo) == 0 {
		return
	}

	ctx, span := tracer.Start(ctx, "reportFailure")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Alfagate <%s>", s.config.Smtp.EmailAddress)
	mail.To = s.config.ReportTo
	mail.Subject = fmt.Sprintf("Portal session failed for %s", username)

	body := fmt.Sprintf(`A portal login session did not complete.

Account:  %s
Run:      %s
Time:     %s
Error:    %v`, username, runId, time.Now().Format(time.RFC3339), cause)
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", s.config.Smtp.EmailAddress, s.config.Smtp.Password, s.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send failure report")
		slog.WarnContext(ctx, "failed to send failure report", "user", username, "err", err)
	}
}
