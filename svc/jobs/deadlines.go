package jobs

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
	"github.com/solo-knight-dev/fyllo-ai/pkg/push"
	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/taxdates"
)

const brandAccentColor = "#00FFFF"
const notificationIcon = "stock_ticker_update"

// ScanStats summarizes one deadline scan run.
type ScanStats struct {
	Alerts  int
	Scanned int
	Sent    int
	Failed  int
}

// DeadlineJob pushes tax-deadline reminders to users in affected
// jurisdictions.
type DeadlineJob struct {
	calendar *taxdates.Calendar
	pagerFor func(country string) Pager
	sender   push.Sender
	logger   *slog.Logger
	now      func() time.Time
}

// DeadlineOption configures a DeadlineJob.
type DeadlineOption func(*DeadlineJob)

// WithScanClock overrides the time source, used in tests.
func WithScanClock(now func() time.Time) DeadlineOption {
	return func(j *DeadlineJob) {
		if now != nil {
			j.now = now
		}
	}
}

// NewDeadlineJob creates the weekly deadline scan. The pager factory returns
// a fresh iteration over the users of one jurisdiction.
func NewDeadlineJob(calendar *taxdates.Calendar, pagerFor func(country string) Pager, sender push.Sender, logger *slog.Logger, opts ...DeadlineOption) *DeadlineJob {
	if logger == nil {
		logger = slog.Default()
	}
	j := &DeadlineJob{
		calendar: calendar,
		pagerFor: pagerFor,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run executes the scan, satisfying the schedule runner's job signature.
func (j *DeadlineJob) Run(ctx context.Context) error {
	_, err := j.RunWithStats(ctx)
	return err
}

// RunWithStats finds deadlines inside a reminder window and fans
// notifications out to every user of the affected jurisdictions. Delivery is
// best effort: per-token failures are tallied, never fatal.
func (j *DeadlineJob) RunWithStats(ctx context.Context) (ScanStats, error) {
	now := j.now()
	alerts := j.calendar.Upcoming(now)

	stats := ScanStats{Alerts: len(alerts)}
	if len(alerts) == 0 {
		j.logger.Info("no tax deadlines in reminder windows")
		return stats, nil
	}

	for _, alert := range alerts {
		j.logger.Info("processing deadline alert",
			slog.String("country", alert.Country),
			slog.Int("days_until", alert.DaysUntil))

		j.scanJurisdiction(ctx, alert, &stats)
	}

	j.logger.Info("tax deadline check complete",
		slog.Int("alerts", stats.Alerts),
		slog.Int("scanned", stats.Scanned),
		slog.Int("sent", stats.Sent),
		slog.Int("failed", stats.Failed))

	return stats, nil
}

func (j *DeadlineJob) scanJurisdiction(ctx context.Context, alert taxdates.Alert, stats *ScanStats) {
	it := j.pagerFor(alert.Country)

	for {
		page, err := it.Next(ctx)
		if err != nil {
			j.logger.Error("deadline scan page failed, skipping jurisdiction",
				slog.String("country", alert.Country),
				slog.String("error", err.Error()))
			return
		}
		if len(page) == 0 {
			return
		}

		stats.Scanned += len(page)
		sent, failed := j.notifyPage(ctx, alert, page)
		stats.Sent += sent
		stats.Failed += failed

		j.logger.Info("deadline page processed",
			slog.String("country", alert.Country),
			slog.Int("page_size", len(page)),
			slog.Int("sent", sent),
			slog.Int("failed", failed))
	}
}

// notifyPage sends one page of notifications concurrently and tallies the
// results once all sends settle.
func (j *DeadlineJob) notifyPage(ctx context.Context, alert taxdates.Alert, page []store.User) (sent, failed int) {
	futures := make([]*async.Future[struct{}], 0, len(page))
	for _, u := range page {
		if u.FCMToken == "" {
			continue
		}
		msg := j.buildMessage(alert, u.FCMToken)
		futures = append(futures, async.Async(ctx, msg, func(ctx context.Context, m push.Message) (struct{}, error) {
			return struct{}{}, j.sender.Send(ctx, m)
		}))
	}

	for _, f := range futures {
		if _, err := f.Await(); err != nil {
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

func (j *DeadlineJob) buildMessage(alert taxdates.Alert, token string) push.Message {
	msg := push.Message{
		Token:    token,
		Title:    alert.Title(),
		Body:     alert.Body(),
		Priority: push.PriorityDefault,
		Color:    brandAccentColor,
		Icon:     notificationIcon,
		Data: map[string]string{
			"type":      "tax_alert",
			"country":   alert.Country,
			"daysUntil": strconv.Itoa(alert.DaysUntil),
			"deadline":  alert.DateLabel(),
		},
	}
	if alert.Urgent() {
		msg.Priority = push.PriorityHigh
	}
	if alert.DaysUntil == 0 {
		msg.Sound = "default"
	}
	return msg
}
