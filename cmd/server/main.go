package main

import (
	"context"
	"flag"
	"fmt"
	"log/syslog"
	"os"
	"os/signal"
	"time"

	"github.com/confcentral/central"
	"github.com/confcentral/central/booking"
	"github.com/confcentral/central/inmem"
	"github.com/confcentral/central/persistent"
	"github.com/confcentral/central/pgdb"
	"github.com/confcentral/central/transport/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	logrusys "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/tidwall/buntdb"
)

// backend is an opened store plus whatever must be closed on shutdown.
type backend struct {
	store central.Store
	keys  central.KeyAllocator
	close func() error
}

func openBackend(ctx context.Context, cfg config) (backend, error) {
	switch cfg.StoreBackend {
	case backendPostgres:
		db, err := pgdb.Open(ctx, cfg.PostgresDsn, cfg.DbVerbose)
		if err != nil {
			return backend{}, err
		}
		if err := persistent.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return backend{}, fmt.Errorf("create schema: %w", err)
		}
		return backend{
			store: &persistent.Store{DB: db},
			keys:  &persistent.SequenceAllocator{DB: db},
			close: db.Close,
		}, nil

	case backendBunt:
		bdb, err := buntdb.Open(cfg.BuntPath)
		if err != nil {
			return backend{}, fmt.Errorf("open buntdb: %w", err)
		}
		kv := &persistent.KvStore{Buntdb: bdb}
		if err := kv.CreateIndexes(); err != nil {
			_ = bdb.Close()
			return backend{}, err
		}
		return backend{store: kv, keys: kv, close: bdb.Close}, nil

	default:
		logrus.Warningln("Using in-memory store. Data is lost on shutdown.")
		store := inmem.NewStore()
		return backend{store: store, keys: store, close: func() error { return nil }}, nil
	}
}

func listenAndServe(cfg config, b backend) func() error {
	retry := booking.DefaultRetryPolicy
	retry.MaxAttempts = cfg.TxMaxAttempts
	service := booking.NewService(b.store, b.keys, retry)

	profileController := rest.ProfileController{Service: service}
	conferenceController := rest.ConferenceController{Service: service}

	server := fiber.New()
	server.Use(rest.LogHandler())

	api := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})
	api.Use(recover.New())
	api.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	api.Get("/status", monitor.New())
	api.Use(rest.IdentityProvider([]byte(cfg.JwtSecret)))
	profileController.InstallTo(api)
	conferenceController.InstallTo(api)

	server.Mount("/api/", api)
	server.Use(rest.NotFoundHandler)

	go func() {
		if err := server.Listen(cfg.ListenAddr); err != nil {
			logrus.WithError(err).Fatalln("Could not listen.")
		}
	}()

	return server.Shutdown
}

func setupLogger(verbose bool, useSyslog bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if !useSyslog {
		return
	}

	syslogHook, err := logrusys.NewSyslogHook("", "", syslog.LOG_USER, "conference_central")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not create syslog hook.")
		return
	}
	logrus.AddHook(syslogHook)
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func main() {
	flag.Parse()
	cfg, err := loadConfig(nil)
	if err != nil {
		logrus.WithError(err).Fatalln("Invalid configuration.")
	}
	setupLogger(cfg.Debug, cfg.Syslog)
	logrus.Infoln("Starting backend.")

	logrus.WithField("backend", cfg.StoreBackend).Infoln("Opening store.")
	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open store.")
	}
	defer b.close()

	logrus.WithField("addr", cfg.ListenAddr).Infoln("Starting listening... To shut down use ^C")
	shutdown := listenAndServe(cfg, b)

	awaitInterruption()

	logrus.Infoln("Shutting down...")
	if err := shutdown(); err != nil {
		logrus.WithError(err).Warningln("Fiber shutdown failed.")
	}
}
