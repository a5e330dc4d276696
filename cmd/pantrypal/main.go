package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/erazemk/pantrypal/internal/api"
	"github.com/erazemk/pantrypal/internal/config"
	"github.com/erazemk/pantrypal/internal/db"
	"github.com/erazemk/pantrypal/internal/imaging"
	"github.com/erazemk/pantrypal/internal/jobs"
	"github.com/erazemk/pantrypal/internal/live"
	"github.com/erazemk/pantrypal/internal/pantry"
	"github.com/erazemk/pantrypal/internal/store"
	"github.com/erazemk/pantrypal/internal/telemetry"
)

type flags struct {
	config string
	db     string
	addr   string
	log    string
}

func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("pantrypal", flag.ContinueOnError)

	f := &flags{}
	fs.StringVar(&f.config, "config", "", "")
	fs.StringVar(&f.config, "c", "", "")
	fs.StringVar(&f.db, "db", "", "")
	fs.StringVar(&f.db, "d", "", "")
	fs.StringVar(&f.addr, "addr", "", "")
	fs.StringVar(&f.addr, "a", "", "")
	fs.StringVar(&f.log, "log", "", "")
	fs.StringVar(&f.log, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: pantrypal [flags]

Flags:
  -c, -config <path>      YAML config file (default: built-in defaults)
  -d, -db <path>          SQLite database path (default: pantrypal.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return f, nil
}

// apply overrides the loaded configuration with flags that were given.
func (f *flags) apply(cfg *config.Config) {
	if f.db != "" {
		cfg.Database.Path = f.db
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.log != "" {
		cfg.Log.File = f.log
	}
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	f.apply(cfg)

	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("flushing traces", "error", err)
		}
	}()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.Database.Path)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(ctx, cfg.Live)
	if err != nil {
		return err
	}
	defer notifier.Close()

	svc := pantry.NewService(database, notifier, pantry.WithLocation(loc))

	scheduler := jobs.New(database, svc, loc)
	if err := scheduler.Start(); err != nil {
		return err
	}

	router := api.NewRouter(api.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Pantry:    svc,
		Photos:    imaging.NewThumbnailer(cfg.Photos.MaxDimension, cfg.Photos.Quality),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", router)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	})

	handler := otelhttp.NewHandler(api.LoggingMiddleware(mux), "pantrypal")

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		scheduler.Stop(ctx)
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "live", cfg.Live.Backend, "location", loc.String())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newNotifier builds the configured change notifier.
func newNotifier(ctx context.Context, cfg config.LiveConfig) (live.Notifier, error) {
	if cfg.Backend == config.LiveRedis {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		r, err := live.NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return live.NewBus(), nil
}
