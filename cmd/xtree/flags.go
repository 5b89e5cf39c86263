package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/verify"
	"github.com/benz9527/xtree/xlog"
)

type options struct {
	verify          verify.Config
	logLevel        string
	encoder         string
	metrics         string
	metricsAddr     string
	metricsInterval time.Duration
	dump            int
	dot             string
	noColor         bool
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	opts := &options{verify: verify.DefaultConfig()}
	fs := pflag.NewFlagSet("xtree", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &opts.verify
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "verification rounds running in parallel")
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "number of verification rounds")
	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "insert operations per round")
	fs.Float64Var(&cfg.RemoveRatio, "remove-ratio", cfg.RemoveRatio, "ratio of the distinct keys removed per round")
	mode := fs.String("mode", string(cfg.Mode), "key mode: sequential, reverse, random or monotonic")
	fs.IntVar(&cfg.CheckEvery, "check-every", cfg.CheckEvery, "validate the tree every n operations, 0 at the end only")
	fs.BoolVar(&cfg.BorrowPred, "pred", cfg.BorrowPred, "splice the predecessor on removal")
	fs.BoolVar(&cfg.Desc, "desc", cfg.Desc, "descending key order")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed of the random key mode")

	fs.StringVar(&opts.logLevel, "log-level", os.Getenv("XLOG_LVL"), "DEBUG, INFO, WARN or ERROR (env XLOG_LVL)")
	fs.StringVar(&opts.encoder, "encoder", "json", "log encoder: json or text")
	fs.StringVar(&opts.metrics, "metrics", string(observability.NoopExporter), "metrics exporter: stdout, prometheus or none")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "prometheus scrape address")
	fs.DurationVar(&opts.metricsInterval, "metrics-interval", 10*time.Second, "stdout metrics export interval")
	fs.IntVar(&opts.dump, "dump", 0, "render a sample tree of n keys to stdout")
	fs.StringVar(&opts.dot, "dot", "", "write the sample tree in Graphviz DOT format to this file")
	fs.BoolVar(&opts.noColor, "no-color", false, "render the sample tree without colors")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Mode = verify.KeyMode(*mode)
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (opts *options) validate() error {
	if err := opts.verify.Validate(); err != nil {
		return err
	}
	if _, ok := xlog.ParseLogEncoder(opts.encoder); !ok {
		return fmt.Errorf("unknown log encoder %q", opts.encoder)
	}
	switch observability.MetricsExporterType(opts.metrics) {
	case observability.StdOutExporter, observability.PrometheusExporter, observability.NoopExporter:
	default:
		return fmt.Errorf("%w: %q", observability.ErrUnknownMetricsExporter, opts.metrics)
	}
	if opts.dump < 0 {
		return fmt.Errorf("dump %d must not be negative", opts.dump)
	}
	if opts.metricsInterval <= 0 {
		return fmt.Errorf("metrics interval %v must be positive", opts.metricsInterval)
	}
	return nil
}
