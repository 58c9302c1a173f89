package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"scaleplus-loyalty/pkg/clock"
	"scaleplus-loyalty/pkg/config"
	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/pkg/health"
	"scaleplus-loyalty/pkg/kvstore"
	"scaleplus-loyalty/pkg/logger"
	"scaleplus-loyalty/pkg/otelcol"
	"scaleplus-loyalty/services/loyalty"
	"scaleplus-loyalty/services/tier"
)

const startTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	rt := &runtime{}
	app := fx.New(options(cfg, rt)...)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "failed to build app: %v\n", err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fail(stderr, err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			zap.L().Warn("failed to stop app", zap.Error(err))
		}
	}()

	out, err := cmd.run(context.Background(), rt, args[1:])
	if err != nil {
		return fail(stderr, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "failed to write output: %v\n", err)
		return 1
	}
	return 0
}

func options(cfg *config.Config, rt *runtime) []fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		logger.Module,
		clock.Module,
		gen.Module,
		tier.Module,
		kvstore.Module(cfg),
		loyalty.Module,
		health.Module,
		fxLogger,
		fx.Populate(&rt.svc, &rt.health),
	}
	if cfg.Otel.Addr != "" {
		opts = append(opts, otelcol.Module)
	}
	return opts
}

var fxLogger = fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

// fail writes err to stderr as JSON and maps it to an exit code.
func fail(stderr io.Writer, err error) int {
	var be errutil.BaseError
	if !errors.As(err, &be) {
		be = errutil.BaseError{Code: errutil.StatusInternal, Message: err.Error()}
	}
	enc := json.NewEncoder(stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(be.JSON())
	return be.Code.ExitCode()
}
