package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/holdfast-io/holdfast/internal/api"
	"github.com/holdfast-io/holdfast/internal/app/escrow"
	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/holdfast-io/holdfast/internal/health"
	"github.com/holdfast-io/holdfast/internal/infra/ledger"
	"github.com/holdfast-io/holdfast/internal/infra/metrics"
	"github.com/holdfast-io/holdfast/internal/infra/sqlite"
)

// Daemon is the core Holdfast runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Book   *ledger.Book
	Escrow *escrow.Service
	Server *api.Server
	Health *health.Checker
	NodeID string
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := holdfastHome()

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	book := ledger.NewBook(db)

	svc := escrow.NewService(db, book, escrow.Config{
		MinTaskPayment:  cfg.Escrow.MinTaskPayment,
		MinReviewBounty: cfg.Escrow.MinReviewBounty,
		Owner:           domain.Principal(cfg.Escrow.TreasuryOwner),
	})

	checker := health.NewChecker(db, book, home)

	srv := api.NewServer(svc)
	srv.SetChecker(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	nodeID, err := resolveNodeID(db, cfg.Node.ID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resolve node id: %w", err)
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Book:   book,
		Escrow: svc,
		Server: srv,
		Health: checker,
		NodeID: nodeID,
	}, nil
}

// resolveNodeID returns the configured node id, the persisted one, or mints
// and persists a fresh one.
func resolveNodeID(db *sqlite.DB, configured string) (string, error) {
	if configured != "" {
		return configured, db.SetNodeInfo("node_id", configured)
	}

	id, err := db.GetNodeInfo("node_id")
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = "node-" + uuid.NewString()[:8]
	return id, db.SetNodeInfo("node_id", id)
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.Config.Logging.File != "" {
		if f, err := os.OpenFile(d.Config.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
			log.SetOutput(io.MultiWriter(os.Stderr, f))
			defer f.Close()
		} else {
			log.Printf("[daemon] log file unavailable: %v", err)
		}
	}

	// Health checker (always runs)
	go d.Health.Run(ctx)

	handler := d.Server.Handler()
	if d.Config.Telemetry.Prometheus {
		go d.publishMetrics(ctx)
		handler = countRequests(handler)
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Holdfast node %s serving on http://%s\n", d.NodeID, addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// ─── Metrics publishing ─────────────────────────────────────────────────────

var escrowStatuses = []domain.EscrowStatus{
	domain.StatusPending,
	domain.StatusCompleted,
	domain.StatusDisputed,
	domain.StatusCancelled,
}

// publishMetrics periodically refreshes the Prometheus gauges from storage.
func (d *Daemon) publishMetrics(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	healthy := make(map[string]bool)
	d.updateMetrics(ctx, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.updateMetrics(ctx, healthy)
		}
	}
}

// updateMetrics refreshes the gauges once. prev carries per-check health
// between rounds so recoveries can be counted.
func (d *Daemon) updateMetrics(ctx context.Context, prev map[string]bool) {
	if counts, err := d.DB.CountTasksByStatus(); err == nil {
		for _, status := range escrowStatuses {
			metrics.EscrowsByStatus.WithLabelValues("task", string(status)).Set(float64(counts[status]))
		}
	}
	if counts, err := d.DB.CountReviewsByStatus(); err == nil {
		for _, status := range escrowStatuses {
			metrics.EscrowsByStatus.WithLabelValues("review", string(status)).Set(float64(counts[status]))
		}
	}
	if gross, err := d.DB.PendingGross(); err == nil {
		metrics.PendingGross.Set(float64(gross))
	}
	if treasury, err := d.DB.Treasury(); err == nil {
		metrics.TreasuryBalance.Set(float64(treasury.Balance))
		metrics.TreasuryAccrued.Set(float64(treasury.LifetimeAccrued))
		metrics.TreasuryWithdrawn.Set(float64(treasury.LifetimeWithdrawn))
	}
	if vault, err := d.Book.Balance(ctx, domain.AccountVault); err == nil {
		metrics.VaultBalance.Set(float64(vault))
	}

	for _, st := range d.Health.Statuses() {
		v := 0.0
		if st.Healthy {
			v = 1
		}
		metrics.HealthCheckStatus.WithLabelValues(st.Name).Set(v)
		if was, seen := prev[st.Name]; seen && !was && st.Healthy {
			metrics.HealthRecoveries.WithLabelValues(st.Name).Inc()
		}
		prev[st.Name] = st.Healthy
	}
}

// countRequests wraps the API handler and counts requests per route and
// status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.APIRequests.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(ww.Status())).Inc()
	})
}

// routeLabel collapses id-bearing paths to their collection prefix to keep
// label cardinality bounded.
func routeLabel(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) >= 2 && parts[0] == "v1" {
		return "/v1/" + parts[1]
	}
	return "/" + parts[0]
}
