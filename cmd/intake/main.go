package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/config"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/events"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/httpapi"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/intake"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/review"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/scheduler"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/store"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	log := logrus.New()
	if err := run(log); err != nil {
		log.WithError(err).Fatal("intake stopped")
	}
}

func run(log *logrus.Logger) error {
	// The data dir holds config.yml; config.Load resolves storage paths
	// against it, so this lock covers everything the process writes.
	dataDir := os.Getenv("INTAKE_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dataDir, "intake.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another intake process is using %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	config.OverlayEnv(&cfg)
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.WithField("path", cfgPath).Warn(w)
	}
	if !v.OK() {
		return fmt.Errorf("invalid config %s: %s", cfgPath, strings.Join(v.Errors, "; "))
	}
	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bk, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer bk.Close()

	hub := events.NewHub()
	files := attachments.NewManager(bk.files, attachments.Policy{
		MaxBytes:          cfg.Attachments.MaxBytes,
		AllowedExtensions: cfg.Attachments.AllowedExtensions,
	})
	rev := review.NewService(bk.store, log)

	var limiter *httpapi.KeyLimiter
	if cfg.RateLimit.SubmitPerMinute > 0 {
		limiter = httpapi.NewKeyLimiter(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.Burst)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Intake:         intake.NewService(bk.store, files, log),
		Review:         rev,
		Files:          files,
		Hub:            hub,
		Log:            log,
		SubmitLimiter:  limiter,
		MaxUploadBytes: cfg.Attachments.MaxBytes,
		CorsOrigins:    cfg.App.CorsOrigins,
	})

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	token, err := shutdownToken(dataDir)
	if err != nil {
		return err
	}
	router.Post("/shutdown", shutdownHandler(token, srv, log))

	log.WithFields(logrus.Fields{
		"addr":        "http://" + addr,
		"config":      cfgPath,
		"storage":     cfg.Storage.Driver,
		"attachments": cfg.Attachments.Backend,
	}).Info("intake listening")

	g.Go(func() error {
		defer cancel()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		return srv.Shutdown(sctx)
	})

	if bk.disk != nil && cfg.Attachments.SweepSeconds > 0 {
		sw := &attachments.Sweeper{
			Disk:       bk.disk,
			References: resumeReferences(rev),
			Grace:      time.Duration(cfg.Attachments.SweepGraceSeconds) * time.Second,
			Log:        log,
		}
		g.Go(func() error {
			scheduler.Every(gctx, time.Duration(cfg.Attachments.SweepSeconds)*time.Second, "attachment-sweep", log, sw.Run)
			return nil
		})
	}

	err = g.Wait()
	log.Info("intake stopped")
	return err
}

func configureLogger(log *logrus.Logger, cfg config.Config) {
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
}

type backends struct {
	store store.Store
	files attachments.Storage
	disk  *attachments.Disk
	db    *store.DB
}

func (b *backends) Close() {
	if b.db != nil {
		_ = b.db.Close()
	}
}

// openBackends builds the application store and attachment storage. Both
// sqlite-backed choices share one database.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	openDB := func() (*store.DB, error) {
		if b.db != nil {
			return b.db, nil
		}
		db, err := store.Open(resolve(cfg.App.DataDir, cfg.Storage.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := store.Migrate(db.Pool); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		b.db = db
		return db, nil
	}

	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		b.store = store.NewSQLite(db.Pool)
	default:
		b.store = store.NewMemory()
	}

	switch cfg.Attachments.Backend {
	case "sqlite":
		db, err := openDB()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.files = &attachments.Blob{DB: db.Pool}
	case "s3":
		s3c := cfg.Attachments.S3
		client, err := attachments.NewS3Client(ctx, s3c.Region, s3c.Endpoint)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		b.files = &attachments.S3{Client: client, Bucket: s3c.Bucket, Prefix: s3c.Prefix}
	default:
		disk, err := attachments.NewDisk(resolve(cfg.App.DataDir, cfg.Attachments.Dir))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("attachment dir: %w", err)
		}
		b.files = disk
		b.disk = disk
	}
	return b, nil
}

// resolve places relative paths under the data dir. Empty stays empty.
func resolve(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

func resumeReferences(rev *review.Service) func(ctx context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		apps, err := rev.List(ctx)
		if err != nil {
			return nil, err
		}
		refs := make([]string, 0, len(apps))
		for _, a := range apps {
			if a.ResumeReference != nil {
				refs = append(refs, *a.ResumeReference)
			}
		}
		return refs, nil
	}
}
