package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"taskmgmt/internal/auth"
	"taskmgmt/internal/config"
	"taskmgmt/internal/ratelimit"
	"taskmgmt/internal/server"
	"taskmgmt/internal/service"
	"taskmgmt/internal/storage"
	"taskmgmt/internal/util"
)

func main() {
	fs := pflag.NewFlagSet("taskmgmt", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", util.EnvOrDefault("TASKMGMT_CONFIG", ""), "path to YAML config file")
	flags := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("taskmgmt stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(startCtx, cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	hasher, err := newHasher(cfg.Auth)
	if err != nil {
		_ = store.Close()
		return err
	}
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})

	deps := server.Dependencies{
		Auth:    service.NewAuthService(store, hasher, tokens, logger),
		Users:   service.NewUserService(store),
		Tasks:   service.NewTaskService(store, store),
		Updates: service.NewUpdateService(store, store),
		Reviews: service.NewReviewService(store, store),
		Tokens:  tokens,
		Health:  store,

		TrustedProxies: cfg.HTTP.TrustedProxies,
	}

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.RateLimit.RedisAddr,
			Password:     cfg.RateLimit.RedisPassword,
			DB:           cfg.RateLimit.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := redisClient.Ping(startCtx).Err(); err != nil {
			// The limiter fails open, so an unreachable Redis only loses throttling.
			logger.Warn("redis unreachable, auth rate limiting degraded",
				slog.String("addr", cfg.RateLimit.RedisAddr), slog.String("error", err.Error()))
		}
		limiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit.KeyPrefix)
		deps.AuthLimiter = ratelimit.Middleware(limiter, ratelimit.Policy{
			Limit:       cfg.RateLimit.Limit,
			Window:      cfg.RateLimit.Window,
			ResetRoutes: []string{server.RouteLogin},
		}, logger)
		logger.Info("auth rate limiting enabled",
			slog.Int("limit", cfg.RateLimit.Limit), slog.Duration("window", cfg.RateLimit.Window))
	}

	srv := server.New(deps, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		_ = closeAll(redisClient, store)
		return fmt.Errorf("unable to listen on %s: %w", httpServer.Addr, err)
	}

	return serve(context.Background(), httpServer, ln, cfg.HTTP.ShutdownTimeout, logger, func() error {
		return closeAll(redisClient, store)
	})
}

// serve runs httpServer on ln until a shutdown signal arrives, ctx is
// cancelled or the server fails. cleanup runs after the server has drained.
// A server failure is returned so the process exits non-zero.
func serve(ctx context.Context, httpServer *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger, cleanup func() error) error {
	trigger, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			serveErr <- err
			cancel()
		}
	}()

	// One operation so the store outlives in-flight requests.
	wait := gfshutdown.GracefulShutdown(trigger, timeout, map[string]gfshutdown.Operation{
		"taskmgmt": func(ctx context.Context) error {
			logger.Info("graceful shutdown initiated")
			return errors.Join(httpServer.Shutdown(ctx), cleanup())
		},
	})

	exitCode := <-wait
	logger.Info("server stopped", slog.Int("exit_code", exitCode))

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}
	if exitCode != 0 {
		return fmt.Errorf("shutdown did not finish within %s", timeout)
	}
	return nil
}

func closeAll(redisClient *redis.Client, store *storage.Store) error {
	var errs []error
	if redisClient != nil {
		errs = append(errs, redisClient.Close())
	}
	errs = append(errs, store.Close())
	return errors.Join(errs...)
}

// newHasher selects the password scheme. The legacy scheme keeps writing
// unsalted digests for compatibility with existing credential stores.
func newHasher(cfg config.AuthConfig) (service.PasswordHasher, error) {
	if cfg.PasswordScheme == auth.SchemeSHA256 {
		return auth.LegacyHasher{}, nil
	}
	return auth.NewPasswordHasher(cfg.BcryptCost)
}
