package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
	xruntime "github.com/benz9527/xtree/lib/runtime"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/verify"
	"github.com/benz9527/xtree/xlog"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"xtree"}`
}

func (banner) PlainText() string {
	return `
__  __ _____ ____  _____ _____
\ \/ /|_   _|  _ \| ____| ____|
 \  /   | | | |_) |  _| |  _|
 /  \   | | |  _ <| |___| |___
/_/\_\  |_| |_| \_\_____|_____|
`
}

func newLogger(lc fx.Lifecycle, opts *options) xlog.XLogger {
	enc, _ := xlog.ParseLogEncoder(opts.encoder)
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(opts.logLevel)),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerContextFieldExtract(verify.RoundContextKey),
	)
	logger.Banner(banner{})
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	})); err != nil {
		logger.Warn("unable to set GOMAXPROCS", zap.Error(err))
	}
	logger.Info("runtime environment", zap.Object("env", xruntime.Detect()))
	lc.Append(fx.StopHook(logger.Close))
	return logger
}

func newMetrics(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (*observability.TreeStats, error) {
	exporter, err := observability.NewMetricsExporter(
		observability.MetricsExporterType(opts.metrics),
		os.Stdout,
		opts.metricsInterval,
	)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(ctx, "xtree", nil)
	var srv *http.Server
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if exporter.Handler == nil {
				return nil
			}
			ln, err := net.Listen("tcp", opts.metricsAddr)
			if err != nil {
				return infra.WrapErrorStack(err)
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", exporter.Handler)
			srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			var err error
			if srv != nil {
				err = srv.Shutdown(ctx)
			}
			return multierr.Append(err, exporter.Shutdown(ctx))
		},
	})
	return observability.NewTreeStats(exporter.Provider.Meter("xtree/verify")), nil
}

func newRunner(lc fx.Lifecycle, opts *options, logger xlog.XLogger, stats *observability.TreeStats) (*verify.Runner, error) {
	runner, err := verify.NewRunner(opts.verify, logger, stats)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(runner.Release))
	return runner, nil
}

func dumpSample(opts *options, runner *verify.Runner, logger xlog.XLogger) error {
	if opts.dump == 0 && opts.dot == "" {
		return nil
	}
	n := opts.dump
	if n == 0 {
		n = 32
	}
	sample := runner.Sample(n)
	defer sample.Release()

	if opts.dump > 0 {
		if err := verify.Render[uint64, uint64](os.Stdout, sample, !opts.noColor); err != nil {
			return err
		}
	}
	if opts.dot == "" {
		return nil
	}
	f, err := os.Create(opts.dot)
	if err != nil {
		return err
	}
	if err = tree.RBTree2Dot[uint64, uint64](sample, f); err != nil {
		_ = f.Close()
		return err
	}
	logger.Info("sample tree written", zap.String("dot", opts.dot), zap.Int64("len", sample.Len()))
	return f.Close()
}

// run verifies in the background and shuts the application down with
// exit code 1 if any round failed.
func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, opts *options, runner *verify.Runner, logger xlog.XLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if _, err := runner.Run(ctx); err != nil {
					code = 1
				}
				if err := dumpSample(opts, runner, logger); err != nil {
					logger.ErrorStack(infra.WrapErrorStack(err), "dump sample tree failed")
					code = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error(err, "shutdown failed")
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

func newApp(opts *options) *fx.App {
	return fx.New(
		fx.Supply(opts),
		fx.Provide(
			newLogger,
			newMetrics,
			newRunner,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(run),
	)
}
