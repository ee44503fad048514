package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"DexSentinel/internal/model"
	"DexSentinel/internal/recorder"
)

// StatsSource provides the counters reported by /healthz.
type StatsSource interface {
	Snapshot() recorder.Stats
}

type lastCycle struct {
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Reasons    []string  `json:"reasons,omitempty"`
}

type report struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Cycles        map[string]int `json:"cycles"`
	Evaluated     int            `json:"evaluated"`
	Skipped       int            `json:"skipped"`
	Rejected      int            `json:"rejected"`
	Alerts        int            `json:"alerts"`
	LastCycle     *lastCycle     `json:"last_cycle,omitempty"`
}

// Server exposes liveness, a JSON status report and Prometheus metrics.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer builds the HTTP handlers on addr.
func NewServer(addr string, stats StatsSource, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(stats, gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Handler returns the mux serving /livez, /healthz and /metrics.
func Handler(stats StatsSource, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body, err := sonic.Marshal(buildReport(stats.Snapshot()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func buildReport(s recorder.Stats) report {
	r := report{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.StartedAt).Seconds()),
		Cycles:        make(map[string]int, len(s.Cycles)),
		Evaluated:     s.Evaluated,
		Skipped:       s.Skipped,
		Rejected:      s.Rejected,
		Alerts:        s.Alerts,
	}
	for k, v := range s.Cycles {
		r.Cycles[string(k)] = v
	}
	if c := s.LastCycle; c != nil {
		if c.Status == model.CycleFailed {
			r.Status = "degraded"
		}
		r.LastCycle = &lastCycle{
			Status:     string(c.Status),
			FinishedAt: c.FinishedAt,
			DurationMS: c.Duration().Milliseconds(),
			Reasons:    c.Reasons,
		}
	}
	return r
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info("health server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("health server", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
