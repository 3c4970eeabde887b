package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/marincop/internal/claims"
	"github.com/ppiankov/marincop/internal/metrics"
	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/pipeline"
	"github.com/ppiankov/marincop/internal/store"
	"github.com/ppiankov/marincop/internal/store/jsonfile"
	"github.com/ppiankov/marincop/internal/store/memstore"
	"github.com/ppiankov/marincop/internal/store/postgres"
	"github.com/ppiankov/marincop/internal/store/sqlite"
)

// app holds everything a command needs for one invocation
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	store    store.Store
	pipeline *pipeline.Pipeline
	service  *claims.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	m := metrics.New()
	p := pipeline.NewPipeline(cfg,
		pipeline.WithMetrics(m),
		pipeline.WithLogger(logger),
	)
	svc := claims.NewService(st, p,
		claims.WithMetrics(m),
		claims.WithLogger(logger),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		store:    st,
		pipeline: p,
		service:  svc,
	}, nil
}

// Close flushes metrics, closes the store and syncs the logger
func (a *app) Close() error {
	var errs []error
	if err := a.metrics.WriteTextfile(metricsTextfile); err != nil {
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// withApp runs fn against a fully wired app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, a)
}

// openStore selects the claim store backend
func openStore(ctx context.Context, cfg model.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "json":
		return jsonfile.Open(cfg.Path, logger)
	case "sqlite":
		return sqlite.Open(ctx, cfg.Path, logger)
	case "postgres", "postgresql":
		return postgres.Open(ctx, postgres.Config{
			DSN:         cfg.DSN,
			MaxConns:    cfg.MaxConns,
			DialTimeout: 10 * time.Second,
		}, logger)
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s (supported: json, sqlite, postgres, memory)", cfg.Driver)
	}
}

// newLogger builds the process logger. Logs go to stderr so command output stays pipeable.
func newLogger(cfg model.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "", "console":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: console, json)", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// exitCode maps caller-visible errors to process exit codes
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrInvalidInput):
		return 2
	case errors.Is(err, model.ErrNotFound):
		return 3
	default:
		return 1
	}
}

// ExitCode reports the exit code for an error returned by Execute
func ExitCode(err error) int { return exitCode(err) }

func stderrf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
}
