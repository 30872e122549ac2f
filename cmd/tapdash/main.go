// Package main is the headless tapdash daemon: it starts one bot
// session per configured emulator instance and runs until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tapdash/application"
	"tapdash/application/session"
	"tapdash/core/eventbus"
	"tapdash/domain/artifact"
	"tapdash/domain/config"
	"tapdash/domain/profile"
	"tapdash/infrastructure/input"
	"tapdash/infrastructure/logging"
	"tapdash/infrastructure/ocr"
	"tapdash/infrastructure/repository"
	"tapdash/infrastructure/screen"
)

const version = "0.3.0"

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "bot options file")
		dataDir    = flag.String("data", "data", "directory holding profiles/, templates/ and artifacts/")
		mongoURI   = flag.String("mongo", "", "MongoDB connection URI; empty runs without persistence")
		instances  = flag.String("instances", "", "emulator instances as name@x:y window origins, comma separated")
	)
	flag.Parse()

	logger, closeLog, err := logging.Setup(nil)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("starting tapdash", "version", version)

	if err := run(logger, *configPath, *dataDir, *mongoURI, *instances); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func run(logger *slog.Logger, configPath, dataDir, mongoURI, instanceSpec string) error {
	ctx := context.Background()

	store, err := config.NewStore(configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load options: %w", err)
	}
	defer store.Close()
	opts := store.Snapshot()

	dataFS := os.DirFS(dataDir)

	profiles := profile.NewRegistry()
	if err := profile.NewLoader(profiles).LoadFromFS(dataFS); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	prof := profiles.Get(opts.Resolution)
	if prof == nil {
		return fmt.Errorf("no profile for resolution %s (have %v)", opts.Resolution, profiles.List())
	}
	logger.Info("profile selected", "resolution", prof.Resolution)

	templates, err := screen.LoadTemplates(os.DirFS(dataDir+"/templates"), prof.Templates())
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	catalog := artifact.NewCatalog()
	if err := artifact.NewLoader(catalog).LoadFromFS(dataFS); err != nil {
		return fmt.Errorf("failed to load artifact catalog: %w", err)
	}
	logger.Info("artifact catalog loaded", "count", catalog.Count())

	var sink session.StatsSink
	if mongoURI != "" {
		db, err := repository.NewMongoDB(ctx, &repository.MongoDBConfig{
			URI:            mongoURI,
			Database:       "tapdash",
			ConnectTimeout: repository.DefaultMongoDBConfig().ConnectTimeout,
			PingTimeout:    repository.DefaultMongoDBConfig().PingTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer db.Close(ctx)

		mongoSink := repository.NewMongoStatsSink(db, logger)
		// Sessions left open by a crash are closed out before new ones start.
		if n, err := mongoSink.CloseStale(ctx); err != nil {
			logger.Warn("failed to close stale sessions", "error", err)
		} else if n > 0 {
			logger.Info("closed stale session records", "count", n)
		}
		sink = mongoSink
	} else {
		logger.Warn("running without persistence, session history will be lost")
		sink = repository.NewMemoryStatsSink()
	}

	recognizer := ocr.NewTesseract()
	defer recognizer.Close()

	bus := eventbus.New(256)
	defer bus.Close()

	specs, err := parseInstances(instanceSpec, opts.Emulator)
	if err != nil {
		return err
	}
	clientW, clientH, err := parseResolution(opts.Resolution)
	if err != nil {
		return err
	}

	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		Bus: bus,
		Factory: func(id, instance string) (*session.Session, error) {
			origin, ok := specs[instance]
			if !ok {
				return nil, fmt.Errorf("unknown instance %s", instance)
			}
			frame := screen.Frame{
				Rect:     image.Rect(origin.X, origin.Y, origin.X+clientW, origin.Y+clientH+prof.YPadding),
				YPadding: prof.YPadding,
			}
			log := logging.ForSession(id, instance)

			bot := session.NewBot(session.BotDeps{
				SessionID:  id,
				Instance:   instance,
				Config:     store,
				Profile:    prof,
				Grabber:    screen.NewGrabber(frame, templates, log),
				Input:      input.NewRobot(frame, log),
				Recognizer: recognizer,
				Sink:       sink,
				Bus:        bus,
				Catalog:    catalog,
				Log:        log,
			})
			return session.New(&session.Config{
				ID:       id,
				Instance: instance,
				Version:  version,
				Bot:      bot,
				Sink:     sink,
				Bus:      bus,
				Logger:   log,
			}), nil
		},
		Logger: logger,
	})
	defer coordinator.Stop()

	for instance := range specs {
		if _, err := coordinator.StartInstance(instance); err != nil {
			return err
		}
	}
	logger.Info("all sessions running", "count", coordinator.SessionCount())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("signal received, shutting down", "signal", s)
	return nil
}

// parseInstances parses the -instances flag, entries of the form
// "name@x:y" giving each emulator window's screen origin. An entry
// without an origin sits at 0,0. Empty input falls back to a single
// instance named by the options file.
func parseInstances(spec, fallback string) (map[string]image.Point, error) {
	out := make(map[string]image.Point)

	if strings.TrimSpace(spec) == "" {
		if fallback == "" {
			return nil, fmt.Errorf("no emulator instances configured")
		}
		out[fallback] = image.Point{}
		return out, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, origin, found := strings.Cut(entry, "@")
		pt := image.Point{}
		if found {
			x, y, ok := strings.Cut(origin, ":")
			if !ok {
				return nil, fmt.Errorf("instance %q: origin must be x:y", entry)
			}
			var err error
			if pt.X, err = strconv.Atoi(x); err != nil {
				return nil, fmt.Errorf("instance %q: bad x origin: %w", entry, err)
			}
			if pt.Y, err = strconv.Atoi(y); err != nil {
				return nil, fmt.Errorf("instance %q: bad y origin: %w", entry, err)
			}
		}
		out[name] = pt
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no emulator instances configured")
	}
	return out, nil
}

func parseResolution(res string) (int, int, error) {
	w, h, ok := strings.Cut(res, "x")
	if !ok {
		return 0, 0, fmt.Errorf("bad resolution %q, want WxH", res)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("bad resolution width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("bad resolution height %q: %w", h, err)
	}
	return width, height, nil
}
