package verify

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

func testLogger() xlog.XLogger {
	return xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError))
}

func testConfig(mode KeyMode) Config {
	return Config{
		Workers:     2,
		Rounds:      4,
		Keys:        600,
		RemoveRatio: 0.5,
		Mode:        mode,
		CheckEvery:  97,
		Seed:        42,
	}
}

func TestRunner_Modes(t *testing.T) {
	testcases := []struct {
		name string
		cfg  func() Config
	}{
		{name: "sequential", cfg: func() Config { return testConfig(SequentialKeys) }},
		{name: "reverse", cfg: func() Config { return testConfig(ReverseKeys) }},
		{name: "random", cfg: func() Config { return testConfig(RandomKeys) }},
		{name: "monotonic", cfg: func() Config { return testConfig(MonotonicKeys) }},
		{
			name: "random desc pred",
			cfg: func() Config {
				cfg := testConfig(RandomKeys)
				cfg.Desc, cfg.BorrowPred = true, true
				return cfg
			},
		},
		{
			name: "sequential remove all",
			cfg: func() Config {
				cfg := testConfig(SequentialKeys)
				cfg.RemoveRatio, cfg.CheckEvery = 1, 0
				return cfg
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			cfg := tc.cfg()
			runner, err := NewRunner(cfg, testLogger(), nil)
			require.NoError(tt, err)
			defer runner.Release()

			report, err := runner.Run(context.Background())
			require.NoError(tt, err)
			require.Equal(tt, cfg.Rounds, report.Rounds)
			require.Zero(tt, report.Failed)
			require.Zero(tt, report.Skipped)
			require.Len(tt, report.Results, cfg.Rounds)
			require.Positive(tt, report.Inserted)
			require.Equal(tt, int64(cfg.Rounds*(cfg.Keys+16)), report.Searched)
			require.LessOrEqual(tt, float64(report.MaxHeight), 2*math.Log2(float64(cfg.Keys)+1))
			for i, res := range report.Results {
				require.Equal(tt, i, res.Round)
				require.NoError(tt, res.Err)
				require.Equal(tt, res.Inserted-res.Removed, res.Len)
			}
			if cfg.Mode != RandomKeys {
				require.Equal(tt, int64(cfg.Rounds*cfg.Keys), report.Inserted)
				require.Equal(tt, int64(cfg.Rounds)*int64(float64(cfg.Keys)*cfg.RemoveRatio), report.Removed)
			}
		})
	}
}

func TestRunner_RecordsStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()
	stats := observability.NewTreeStats(mp.Meter("verify"))

	runner, err := NewRunner(testConfig(SequentialKeys), testLogger(), stats)
	require.NoError(t, err)
	defer runner.Release()
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	require.Equal(t, report.Inserted, sums[observability.MetricTreeInserts])
	require.Equal(t, report.Removed, sums[observability.MetricTreeRemoves])
	require.Equal(t, report.Searched, sums[observability.MetricTreeSearches])
	require.Zero(t, sums[observability.MetricTreeViolations])
}

func TestRunner_Cancelled(t *testing.T) {
	runner, err := NewRunner(testConfig(RandomKeys), testLogger(), nil)
	require.NoError(t, err)
	defer runner.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, report.Rounds, report.Skipped)
	require.Zero(t, report.Inserted)
}

func TestRunner_Lifecycle(t *testing.T) {
	cfg := testConfig(RandomKeys)
	cfg.Workers = 0
	_, err := NewRunner(cfg, testLogger(), nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRunner(testConfig(RandomKeys), nil, nil)
	require.Error(t, err)

	runner, err := NewRunner(testConfig(RandomKeys), testLogger(), nil)
	require.NoError(t, err)
	runner.Release()
	runner.Release()
	_, err = runner.Run(context.Background())
	require.ErrorIs(t, err, ErrRunnerReleased)
}

func TestRoundState_DetectsOracleMismatch(t *testing.T) {
	res := &RoundResult{}
	state := &roundState{
		ctx:    context.Background(),
		cfg:    testConfig(RandomKeys),
		tree:   tree.NewRBTree[uint64, uint64](),
		oracle: map[uint64]uint64{},
		res:    res,
	}
	require.NoError(t, state.insert(1, 10))
	require.NoError(t, state.insert(1, 11))
	require.Equal(t, int64(1), res.Inserted)
	require.NoError(t, state.search(1))

	// The oracle claims a key the tree never saw.
	state.oracle[2] = 20
	require.ErrorIs(t, state.search(2), ErrOracleMismatch)
	require.ErrorIs(t, state.final(), ErrOracleMismatch)
	require.ErrorIs(t, state.remove(2), ErrOracleMismatch)
	// The insert is applied, both sides hold 1 and 2 again.
	require.ErrorIs(t, state.insert(2, 20), ErrOracleMismatch)
	require.NoError(t, state.final())

	require.NoError(t, state.remove(1))
	require.NoError(t, state.remove(1))
	require.Equal(t, int64(1), res.Removed)
	require.NoError(t, state.final())
}

func TestRunner_Sample(t *testing.T) {
	cfg := testConfig(SequentialKeys)
	cfg.Desc = true
	runner, err := NewRunner(cfg, testLogger(), nil)
	require.NoError(t, err)
	defer runner.Release()

	sample := runner.Sample(15)
	require.Equal(t, int64(15), sample.Len())
	require.NoError(t, tree.Validate[uint64, uint64](sample))
	require.Equal(t, uint64(15), sample.Min().Key())
	require.Equal(t, uint64(1), sample.Max().Key())
	require.Zero(t, runner.Sample(0).Len())
}
