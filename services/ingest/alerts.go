package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/timezone"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	Recipients   []string `json:"recipients"`
}

// HealthAlerter probes the provider and emails the on-call list when
// the source stops being healthy, degraded included since it means
// syncs are coming back empty. Alerts fire on the transition and then
// at most once a day while the outage lasts, so a broken upstream
// doesn't flood inboxes overnight.
type HealthAlerter struct {
	provider fightdata.Provider
	config   SmtpConfig
	now      func() time.Time

	mu         sync.Mutex
	alerting   bool
	alertedDay time.Time
	last       fightdata.HealthStatus
	probed     bool
}

func NewHealthAlerter(provider fightdata.Provider, config SmtpConfig) *HealthAlerter {
	return &HealthAlerter{
		provider: provider,
		config:   config,
		now:      timezone.Now,
	}
}

// Check runs one health probe and handles alerting transitions. The
// returned status is always the probe's verdict, even when sending the
// alert itself failed.
func (a *HealthAlerter) Check(ctx context.Context) fightdata.HealthStatus {
	ctx, span := tracer.Start(ctx, "HealthAlerter.Check")
	defer span.End()

	status := a.provider.HealthCheck(ctx)
	span.SetAttributes(
		attribute.String("status", string(status.Status)),
		attribute.Int64("latency_ms", status.LatencyMs),
	)

	bad := status.Status != fightdata.Healthy
	today := timezone.StartOfDay(a.now())

	a.mu.Lock()
	wasAlerting := a.alerting
	alertedToday := !a.alertedDay.Before(today)
	a.alerting = bad
	a.last = status
	a.probed = true
	a.mu.Unlock()

	switch {
	case bad && (!wasAlerting || !alertedToday):
		err := a.sendAlert(ctx, status)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to send alert email")
			slog.ErrorContext(ctx, "health alert email failed", "err", err)
		} else {
			a.mu.Lock()
			a.alertedDay = today
			a.mu.Unlock()
		}
	case !bad && wasAlerting:
		slog.InfoContext(
			ctx, "source recovered",
			"status", status.Status,
			"latency_ms", status.LatencyMs,
		)
	}

	return status
}

// Last returns the most recent probe verdict without touching the
// upstream, false until the first probe has run. Serving cached status
// keeps load balancer polls from turning into upstream requests.
func (a *HealthAlerter) Last() (fightdata.HealthStatus, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.probed
}

func (a *HealthAlerter) sendAlert(ctx context.Context, status fightdata.HealthStatus) error {
	ctx, span := tracer.Start(ctx, "sendAlert")
	defer span.End()

	if len(a.config.Recipients) == 0 {
		span.AddEvent("no recipients configured")
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Upset Ingest <%s>", a.config.EmailAddress)
	mail.To = a.config.Recipients
	mail.Subject = fmt.Sprintf("Upset ingest: source %s", status.Status)

	body := fmt.Sprintf(`The fight data source failed its health probe at %s.

status: %s
latency: %dms
error: %s

Sync runs will keep retrying on their regular schedule, this alert
repeats daily until the source recovers.`,
		timezone.Now().Format("2006-01-02 15:04:05 MST"),
		status.Status,
		status.LatencyMs,
		status.Error,
	)
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", a.config.Server, a.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", a.config.EmailAddress, a.config.Password, a.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	slog.WarnContext(
		ctx, "health alert sent",
		"recipients", len(a.config.Recipients),
		"error", status.Error,
	)
	return nil
}
