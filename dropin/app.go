package dropin

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/alovak/dropin-bridge/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
	_ "github.com/lib/pq"
)

// App is the main application, it contains all the components of the bridge
// service and is responsible for starting and stopping them.
type App struct {
	srv    *http.Server
	wg     *sync.WaitGroup
	Addr   string
	logger *slog.Logger
	config *Config

	launcher  FlowLauncher
	collector FingerprintCollector
	surfaces  SurfaceProvider

	Correlator *Correlator
}

func NewApp(logger *slog.Logger, config *Config, launcher FlowLauncher, collector FingerprintCollector, surfaces SurfaceProvider) *App {
	logger = logger.With(slog.String("app", "dropin-bridge"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:        &sync.WaitGroup{},
		logger:    logger,
		config:    config,
		launcher:  launcher,
		collector: collector,
		surfaces:  surfaces,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(a.logger))

	// Choose journal backend: in-memory unless a Postgres DSN is configured.
	var journal *Repository
	switch backend := getenv("JOURNAL_BACKEND", "mem"); backend {
	case "pg":
		dsn := getenv("DB_DSN", "")
		if dsn == "" {
			return fmt.Errorf("DB_DSN is required for pg backend")
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		journal = NewPGRepository(db)
	case "mem":
		journal = NewRepository()
	default:
		return fmt.Errorf("unsupported JOURNAL_BACKEND=%s", backend)
	}

	builder := NewBuilder(a.logger)
	a.Correlator = NewCorrelator(a.logger, a.config, builder, a.launcher, a.collector, a.surfaces, journal)

	api := NewAPI(a.Correlator, journal)
	api.AppendRoutes(router)

	// Health endpoints
	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := journal.Ping(ctx); err != nil {
			http.Error(w, "journal not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler: router,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	a.srv.Shutdown(context.Background())

	a.wg.Wait()

	a.logger.Info("app stopped")
}
