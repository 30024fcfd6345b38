package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"catalog/internal/assets"
	"catalog/internal/catalog"
	"catalog/internal/config"
	mydb "catalog/internal/db"
	"catalog/internal/handlers"
	"catalog/internal/logging"
	"catalog/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "catalog",
		Usage: "product catalog service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update database tables",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func migrate(_ *cli.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Infof("store driver %s needs no migration", cfg.StoreDriver)
		return nil
	}

	db, err := mydb.Open(cfg.DBDSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := mydb.Migrate(db); err != nil {
		return err
	}
	log.Info("migration complete")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	var (
		repo    catalog.ProductRepository
		ping    func(ctx context.Context) error
		closeDB = func() error { return nil }
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := mydb.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		if err := mydb.Migrate(db); err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		repo = store.NewGormProducts(db)
		ping = sqlDB.PingContext
		closeDB = sqlDB.Close
	case config.DriverMemory:
		log.Warn("using in-memory product store, data is lost on exit")
		repo = store.NewMemoryProducts(nil)
	}

	disk, err := assets.NewDisk(cfg.StorageRoot, cfg.StoragePublicURL)
	if err != nil {
		return err
	}

	svc := catalog.NewService(repo, catalog.NewImageManager(disk, log), log)
	router := handlers.NewRouter(handlers.RouterConfig{
		Handlers: &handlers.Config{
			Service:        svc,
			Log:            log,
			MaxUploadBytes: cfg.MaxUploadBytes,
			RequestTimeout: cfg.RequestTimeout,
		},
		SessionSecret: cfg.SessionSecret,
		StorageRoot:   disk.Root(),
		Ping:          ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down, waiting for pending requests")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})

	err = g.Wait()
	if cerr := closeDB(); cerr != nil {
		log.WithError(cerr).Warn("failed to close database")
	}
	if err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
