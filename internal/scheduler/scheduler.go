package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"DexSentinel/internal/notifier"
	"DexSentinel/internal/recorder"
	"DexSentinel/internal/strategy"
)

// StatsSource provides the counters reported by the digest and /status.
type StatsSource interface {
	Snapshot() recorder.Stats
}

// Scheduler runs the periodic digest and answers chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Stats  StatsSource
	Sink   notifier.Sink // nil when no chat is configured
	Params strategy.Params
	Rules  []string
	Ctx    context.Context

	log *zap.Logger
}

// NewScheduler creates a new Scheduler. Cron jobs recover from panics and log
// through log.
func NewScheduler(ctx context.Context, stats StatsSource, sink notifier.Sink, params strategy.Params, rules []string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		Stats:  stats,
		Sink:   sink,
		Params: params,
		Rules:  rules,
		Ctx:    ctx,
		log:    log,
	}
}

// RegisterDigest schedules the stats digest.
func (s *Scheduler) RegisterDigest(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunDigestNow sends the digest immediately.
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.log.Info("running digest task")
	s.trySend(FormatDigest(s.Stats.Snapshot()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/status":
		return FormatStatus(s.Stats.Snapshot())
	case "/rules":
		return FormatRules(s.Params, s.Rules)
	case "/digest":
		return FormatDigest(s.Stats.Snapshot())
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sink == nil {
		s.log.Info("no chat sink configured; digest logged only", zap.String("digest", notifier.PlainText(text)))
		return
	}
	if err := s.Sink.Send(s.Ctx, text); err != nil {
		s.log.Error("send digest", zap.String("sink", s.Sink.Name()), zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
