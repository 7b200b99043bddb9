package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/npezzotti/support-chat/internal/api"
	"github.com/npezzotti/support-chat/internal/config"
	"github.com/npezzotti/support-chat/internal/database"
	"github.com/npezzotti/support-chat/internal/server"
	"github.com/npezzotti/support-chat/internal/stats"
	"github.com/npezzotti/support-chat/internal/support"
	"go.uber.org/zap"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, config.SplitList(value)...)
	return nil
}

var (
	configFile     string
	envFile        string
	addr           string
	dsn            string
	adminEmail     string
	signingKey     string
	allowedOrigins stringSliceFlag
	verifyIdentity bool
	skipMigrations bool
	debug          bool
)

func main() {
	flag.StringVar(&configFile, "config", "", "path to a YAML config file")
	flag.StringVar(&envFile, "env-file", ".env", "path to a dotenv file")
	flag.StringVar(&addr, "addr", config.DefaultServerAddr, "server address")
	flag.StringVar(&dsn, "dsn", config.DefaultDatabaseDSN, "database connection string")
	flag.StringVar(&adminEmail, "admin-email", config.DefaultAdminEmail, "email address granted admin at registration")
	flag.StringVar(&signingKey, "signing-key", "", "base64 encoded key for identity tokens")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.BoolVar(&verifyIdentity, "verify-identity", false, "require a signed identity token for X-User-ID and websocket auth")
	flag.BoolVar(&skipMigrations, "skip-migrations", false, "do not apply database migrations at startup")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.VerifyIdentity {
		logger.Warn("identity verification is disabled, X-User-ID is trusted as sent")
	}

	dbConn, err := database.NewPgRepository(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("db close", zap.Error(err))
		}
	}()

	if !cfg.SkipMigrations {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux, logger)
	notifier := server.NewNotifier(logger, statsUpdater)
	svc := support.NewService(logger, dbConn, notifier, statsUpdater, cfg.AdminEmail)

	srv := api.NewSupportChatApp(mux, logger, notifier, svc, dbConn, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("received signal", zap.Stringer("signal", sig))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
		}
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}

	if err := notifier.Shutdown(shutDownCtx); err != nil {
		logger.Error("notifier shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

// loadConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func loadConfig() (*config.Config, error) {
	opts := config.DefaultOptions()

	if configFile != "" {
		if err := config.LoadFile(configFile, &opts); err != nil {
			return nil, err
		}
	}

	if err := config.LoadEnv(envFile, &opts); err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			opts.ServerAddr = addr
		case "dsn":
			opts.DatabaseDSN = dsn
		case "admin-email":
			opts.AdminEmail = adminEmail
		case "signing-key":
			opts.SigningKey = signingKey
		case "allowed-origins":
			opts.AllowedOrigins = allowedOrigins
		case "verify-identity":
			opts.VerifyIdentity = verifyIdentity
		case "skip-migrations":
			opts.SkipMigrations = skipMigrations
		case "debug":
			opts.Debug = debug
		}
	})

	return config.NewConfig(opts)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
