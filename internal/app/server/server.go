package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"adminportal/internal/domain/auth"
	"adminportal/internal/domain/contract"
	"adminportal/internal/domain/journal"
	"adminportal/internal/domain/session"
	"adminportal/internal/domain/workspace"
	"adminportal/internal/platform/config"
	cryptoutil "adminportal/internal/platform/crypto"
	"adminportal/internal/platform/db"
	"adminportal/internal/platform/jobs"
	"adminportal/internal/platform/metrics"
	"adminportal/internal/platform/webhook"
	authhandler "adminportal/internal/transport/http/handlers/auth"
	contracthandler "adminportal/internal/transport/http/handlers/contract"
	journalhandler "adminportal/internal/transport/http/handlers/journal"
	leavehandler "adminportal/internal/transport/http/handlers/leave"
	"adminportal/internal/transport/http/middleware"
)

type App struct {
	Config     config.Config
	Router     http.Handler
	Journal    *journal.Service
	Workspaces *workspace.Registry
	Jobs       *jobs.Service
	Metrics    *metrics.Collector

	pool   *pgxpool.Pool
	sqlite *gorm.DB
}

// New wires the portal. The journal lives in Postgres when DATABASE_URL is
// set and in a local SQLite file otherwise.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg}
	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}

	store, err := app.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	app.Journal = journal.NewService(store)

	secret, sealer, err := sessionKeys(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	sessions := session.NewCookieStore(secret, sealer, cfg.SessionTTL, cfg.IsProduction())

	client := webhook.NewClient(cfg.Webhooks.Timeout, app.Metrics)
	authSvc := auth.NewService(client, cfg.Webhooks.LoginURL, sessions)
	app.Workspaces = workspace.NewRegistry(client, endpoints(cfg.Webhooks), app.Journal, app.Metrics)
	app.Jobs = jobs.New(cfg, app.Workspaces, app.Journal)

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
		}).Handler)
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Session(sessions))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.Journal.Ping(ctx); err != nil {
			http.Error(w, "journal not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if app.Metrics != nil {
		router.Handle("/metrics", app.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authSvc, app.Journal, app.Workspaces, middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)).RegisterRoutes(r)
		leavehandler.NewHandler(app.Workspaces).RegisterRoutes(r)
		contracthandler.NewHandler(app.Workspaces, contract.PDFRenderer{FontPath: cfg.PDFFontPath}).RegisterRoutes(r)
		journalhandler.NewHandler(app.Journal).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	app.Router = router
	return app, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("portal listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.sqlite != nil {
		if sqlDB, err := a.sqlite.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (a *App) openJournal(ctx context.Context) (journal.StoreAPI, error) {
	cfg := a.Config
	if cfg.DatabaseURL != "" {
		if cfg.RunMigrations {
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect journal database: %w", err)
		}
		a.pool = pool
		return journal.NewPGStore(pool), nil
	}

	gdb, err := db.OpenSQLite(cfg.JournalSQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite: %w", err)
	}
	a.sqlite = gdb
	store, err := journal.NewSQLiteStore(gdb)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate journal sqlite: %w", err)
	}
	return store, nil
}

// sessionKeys returns the cookie signing secret and the sealer for its
// payload. Outside production a missing secret is replaced by a random one,
// so sessions do not survive a restart.
func sessionKeys(cfg config.Config) (string, *cryptoutil.Service, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return "", nil, err
		}
		secret = hex.EncodeToString(buf)
		slog.Warn("SESSION_SECRET not set; using an ephemeral secret")
	}
	if cfg.DataEncryptionKey != "" {
		sealer, err := cryptoutil.New(cfg.DataEncryptionKey)
		return secret, sealer, err
	}
	sealer, err := cryptoutil.Derive(secret, "portal-session")
	return secret, sealer, err
}

func endpoints(w config.WebhookConfig) workspace.Endpoints {
	return workspace.Endpoints{
		LeavePrecheck:  webhook.Endpoint{Name: "leave_precheck", URL: w.LeavePrecheckURL},
		LeaveCommit:    webhook.Endpoint{Name: "leave_commit", URL: w.LeaveCommitURL},
		LeaveQuery:     webhook.Endpoint{Name: "leave_query", URL: w.LeaveQueryURL},
		LeaveCancel:    webhook.Endpoint{Name: "leave_cancel", URL: w.LeaveCancelURL},
		ContractSubmit: webhook.Endpoint{Name: "contract_submit", URL: w.ContractSubmitURL},
		ContractQuery:  webhook.Endpoint{Name: "contract_query", URL: w.ContractQueryURL},
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
