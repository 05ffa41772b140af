package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/screener"
)

const helpText = "Available commands:\n• /check - run an overbought scan now"

// Scheduler owns the cron job and the on-demand check.
type Scheduler struct {
	Cron       *cron.Cron
	Screener   *screener.Screener
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	RunTimeout time.Duration
	Ctx        context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *screener.Screener, n notifier.Notifier, rec recorder.Recorder, runTimeout time.Duration) *Scheduler {
	cronLog := log.With().Str("component", "cron").Logger()
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&cronLog))),
		),
		Screener:   sc,
		Notifier:   n,
		Recorder:   rec,
		RunTimeout: runTimeout,
		Ctx:        ctx,
	}
}

// Register adds the periodic check.
func (s *Scheduler) Register(checkCron string) error {
	if _, err := s.Cron.AddFunc(checkCron, s.checkTask); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) checkTask() {
	res := s.RunCheck(s.Ctx)
	log.Info().Str("run_id", res.ID).Str("status", string(res.Status)).Msg(res.Message)
}

// RunCheck runs one screening pass and delivers the alert if there is one.
// It always returns a terminal result; checks never overlap.
func (s *Scheduler) RunCheck(ctx context.Context) *model.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &model.RunResult{ID: uuid.NewString(), StartedAt: time.Now()}
	runLog := log.With().Str("run_id", res.ID).Logger()
	runLog.Info().Msg("running overbought check")

	runCtx := ctx
	if s.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.RunTimeout)
		defer cancel()
	}

	report, err := s.Screener.Run(runCtx)
	if err != nil {
		runLog.Error().Err(err).Msg("check failed")
		res.Status = model.RunFailed
		res.Err = err
		return s.finish(res)
	}

	res.Scanned = report.Scanned
	res.Volatile = len(report.Volatile)
	res.Skipped = len(report.Skipped)
	res.Alerts = report.Alerts

	if len(report.Alerts) == 0 {
		res.Status = model.RunNoCandidates
		return s.finish(res)
	}

	for _, c := range report.Alerts {
		runLog.Info().
			Str("symbol", c.Symbol).
			Float64("price", c.Price).
			Float64("change_pct", c.ChangePercent).
			Float64("high_24h", c.High24h).
			Float64("rsi", c.RSI).
			Msg("overbought candidate")
	}

	res.Status = model.RunAlertSent
	msg := notifier.FormatAlert(report.Alerts, time.Now())
	switch err := s.Notifier.Send(ctx, msg); {
	case err == nil:
		res.Delivered = true
	case errors.Is(err, notifier.ErrNotConfigured):
		runLog.Warn().Err(err).Msg("alert delivery skipped")
	default:
		runLog.Error().Err(err).Msg("alert delivery failed")
	}
	return s.finish(res)
}

func (s *Scheduler) finish(res *model.RunResult) *model.RunResult {
	res.FinishedAt = time.Now()
	res.Message = notifier.FormatOutcome(res)
	if err := s.Recorder.RecordRun(res); err != nil {
		log.Error().Err(err).Str("run_id", res.ID).Msg("record run")
	}
	return res
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name, _, _ := strings.Cut(fields[0], "@")
	switch name {
	case "/check":
		return s.RunCheck(ctx).Message
	default:
		return helpText
	}
}
