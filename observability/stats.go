package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
	rss              metric.Int64ObservableGauge
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func appMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process gauges on the otel global meter
// provider once. The shutdown callback runs when ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown func(ctx context.Context) error) {
	once.Do(func() {
		meter := otel.Meter(
			appMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		proc, procErr := process.NewProcessWithContext(ctx, int32(os.Getpid()))
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
			rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.core.rss",
				metric.WithDescription(`The application resident set size.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					if procErr != nil {
						return procErr
					}
					mem, err := proc.MemoryInfoWithContext(ctx)
					if err != nil {
						return err
					}
					ob.Observe(int64(mem.RSS))
					return nil
				}),
			)),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}

const (
	MetricTreeInserts    = "xtree.ops.insert"
	MetricTreeRemoves    = "xtree.ops.remove"
	MetricTreeSearches   = "xtree.ops.search"
	MetricTreeViolations = "xtree.violations"
	MetricTreeHeight     = "xtree.height"
)

// TreeStats records the tree operations of the verification rounds.
// A nil *TreeStats records nothing.
type TreeStats struct {
	inserts    metric.Int64Counter
	removes    metric.Int64Counter
	searches   metric.Int64Counter
	violations metric.Int64Counter
	height     metric.Int64Histogram
}

// NewTreeStats uses the otel global meter provider if meter is nil.
func NewTreeStats(meter metric.Meter) *TreeStats {
	if meter == nil {
		meter = otel.Meter("xtree/tree")
	}
	return &TreeStats{
		inserts: lo.Must[metric.Int64Counter](meter.Int64Counter(
			MetricTreeInserts,
			metric.WithDescription("The number of applied inserts."),
		)),
		removes: lo.Must[metric.Int64Counter](meter.Int64Counter(
			MetricTreeRemoves,
			metric.WithDescription("The number of applied removals."),
		)),
		searches: lo.Must[metric.Int64Counter](meter.Int64Counter(
			MetricTreeSearches,
			metric.WithDescription("The number of searches."),
		)),
		violations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			MetricTreeViolations,
			metric.WithDescription("The number of failed tree validations."),
		)),
		height: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			MetricTreeHeight,
			metric.WithDescription("The tree height at the end of a round."),
		)),
	}
}

func modeAttr(mode string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("mode", mode))
}

func (s *TreeStats) RecordInserts(ctx context.Context, mode string, n int64) {
	if s == nil || n == 0 {
		return
	}
	s.inserts.Add(ctx, n, modeAttr(mode))
}

func (s *TreeStats) RecordRemoves(ctx context.Context, mode string, n int64) {
	if s == nil || n == 0 {
		return
	}
	s.removes.Add(ctx, n, modeAttr(mode))
}

func (s *TreeStats) RecordSearches(ctx context.Context, mode string, n int64) {
	if s == nil || n == 0 {
		return
	}
	s.searches.Add(ctx, n, modeAttr(mode))
}

func (s *TreeStats) RecordViolation(ctx context.Context, mode string) {
	if s == nil {
		return
	}
	s.violations.Add(ctx, 1, modeAttr(mode))
}

func (s *TreeStats) RecordHeight(ctx context.Context, mode string, height int) {
	if s == nil {
		return
	}
	s.height.Record(ctx, int64(height), modeAttr(mode))
}
