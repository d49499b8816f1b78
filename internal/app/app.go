// Package app wires configuration, infrastructure and services into the
// running API. Both the CLI and the apiserver binary start from Build.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/domain/document"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/redis"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/legajos-penal/internal/infrastructure/pdf"
	"github.com/turtacn/legajos-penal/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/legajos-penal/internal/interfaces/http"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/handlers"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// Version is stamped at build time with -ldflags "-X ...app.Version=".
var Version = "dev"

// App is the assembled API with the resources it owns.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Router  *gin.Engine
	Server  *httpserver.Server
	Uploads upload.Service
	Seed    uint64

	db      *postgres.Connection
	redis   *redis.Client
	storage *minio.Client
}

// Build connects every dependency named in cfg and assembles the router.
// Resources opened before a failure are released.
func Build(ctx context.Context, cfg *config.Config, log logging.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	gin.SetMode(cfg.Server.Mode)

	// --- Storage ---
	a.db, err = postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err = postgres.NewMigrator(a.db.DSN(), log).Up(); err != nil {
			return nil, err
		}
	}
	a.redis, err = redis.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	var (
		archiver upload.Archiver
		remover  upload.ArchiveRemover
	)
	if cfg.MinIO.Enabled {
		a.storage, err = minio.NewClient(cfg.MinIO, log)
		if err != nil {
			return nil, err
		}
		archive := minio.NewArchive(a.storage, log)
		archiver, remover = archive, archive
	}

	// --- Metrics ---
	var appMetrics *prometheus.AppMetrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		collector, cerr := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if cerr != nil {
			return nil, errors.Wrap(cerr, errors.ErrCodeInternal, "create metrics collector")
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	// --- Services ---
	dir, err := NewDirectory(cfg.Auth.Users)
	if err != nil {
		return nil, err
	}
	cases := casefile.NewService(repositories.NewCaseRepository(a.db, log), dir, log)

	reader := pdf.NewReader(log)
	persister, err := upload.NewPersister(cfg.Upload.Dir, reader,
		repositories.NewNotificationRepository(a.db, log), archiver, log)
	if err != nil {
		return nil, err
	}
	library, err := upload.NewLibrary(cfg.Upload.Dir, cfg.Upload.DownloadBases, remover, log)
	if err != nil {
		return nil, err
	}
	// Recorders stay nil interfaces when metrics are disabled.
	var (
		uploadRec upload.Metrics
		loginRec  handlers.LoginRecorder
		caseRec   handlers.CaseUpdateRecorder
		healthRec handlers.HealthRecorder
		httpRec   middleware.HTTPRecorder
	)
	if appMetrics != nil {
		uploadRec, loginRec, caseRec, healthRec, httpRec = appMetrics, appMetrics, appMetrics, appMetrics, appMetrics
	}
	a.Uploads, a.Seed = NewUploadService(cfg.Upload, reader, persister, uploadRec, log)

	// --- HTTP ---
	sessions := redis.NewSessionStore(a.redis, log)
	checkers := []handlers.HealthChecker{
		&postgresHealthAdapter{conn: a.db},
		&redisHealthAdapter{client: a.redis},
	}
	if a.storage != nil {
		checkers = append(checkers, &minioHealthAdapter{client: a.storage})
	}

	rc := httpserver.RouterConfig{
		AuthHandler: handlers.NewAuthHandler(dir, sessions, handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.SessionTTL,
			Secure: cfg.Auth.SecureCookie,
		}, loginRec, log),
		CaseHandler:   handlers.NewCaseHandler(cases, caseRec, log),
		FilingHandler: handlers.NewFilingHandler(a.Uploads, library, log),
		HealthHandler: handlers.NewHealthHandler(Version, healthRec, checkers...),
		Sessions:      middleware.NewSessionMiddleware(sessions, cfg.Auth.CookieName, log),
		CORS:          cfg.CORS,
		LoginLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Auth.LoginRate,
			BurstSize:         cfg.Auth.LoginBurst,
		},
		MaxBodySize:    cfg.Server.MaxBodySize,
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         log,
		HTTPMetrics:    httpRec,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	}
	a.Router = httpserver.NewRouter(rc)
	a.Server = httpserver.NewServer(cfg.Server, a.Router, log)

	log.Info("application assembled",
		logging.String("version", Version),
		logging.String("upload_dir", persister.Dir()),
		logging.Int("users", len(dir.Usernames())),
		logging.Bool("minio", a.storage != nil),
		logging.Bool("metrics", appMetrics != nil))
	return a, nil
}

// NewUploadService builds the dedup pipeline from cfg. persister and metrics
// may be nil; without a persister the service only serves dry runs. It
// returns the tie-break seed in use so runs can be reproduced.
func NewUploadService(cfg config.UploadConfig, reader *pdf.Reader, persister *upload.Persister, metrics upload.Metrics, log logging.Logger) (upload.Service, uint64) {
	tb, seed := document.NewTieBreaker(cfg.TieBreakSeed)
	if cfg.TieBreakSeed == 0 {
		log.Info("tie-break seed generated", logging.Uint64("seed", seed))
	}
	svc := upload.NewService(upload.Deps{
		Pages:     reader,
		Text:      reader,
		Persister: persister,
		Metrics:   metrics,
		Logger:    log,
	}, upload.Options{
		AllowedExtensions: cfg.AllowedExtensions,
		HammingThreshold:  cfg.HammingThreshold,
		Fingerprint: document.FingerprintOptions{
			TrimPageThreshold: cfg.TrimPageThreshold,
			HeadPages:         cfg.HeadPages,
			TailPages:         cfg.TailPages,
		},
		TieBreaker: tb,
	})
	return svc, seed
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close releases the infrastructure clients. Safe on a partially built App.
func (a *App) Close() {
	if a.storage != nil {
		_ = a.storage.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

var _ handlers.UserDirectory = (*user.Directory)(nil)
