package main

import (
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/verify"
)

func TestParseOptions_Defaults(t *testing.T) {
	t.Setenv("XLOG_LVL", "WARN")
	opts, err := parseOptions(nil, io.Discard)
	require.NoError(t, err)
	require.Equal(t, verify.DefaultConfig(), opts.verify)
	require.Equal(t, "WARN", opts.logLevel)
	require.Equal(t, "json", opts.encoder)
	require.Equal(t, string(observability.NoopExporter), opts.metrics)
	require.Equal(t, 0, opts.dump)
}

func TestParseOptions_Flags(t *testing.T) {
	opts, err := parseOptions([]string{
		"--workers=2", "--rounds=3", "--keys=100",
		"--remove-ratio=0.25", "--mode=monotonic", "--check-every=0",
		"--pred", "--desc", "--seed=42",
		"--encoder=text", "--metrics=stdout", "--dump=16", "--dot=/tmp/x.dot",
	}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, verify.Config{
		Workers:     2,
		Rounds:      3,
		Keys:        100,
		RemoveRatio: 0.25,
		Mode:        verify.KeyMode("monotonic"),
		CheckEvery:  0,
		BorrowPred:  true,
		Desc:        true,
		Seed:        42,
	}, opts.verify)
	require.Equal(t, "text", opts.encoder)
	require.Equal(t, 16, opts.dump)
	require.Equal(t, "/tmp/x.dot", opts.dot)
}

func TestParseOptions_Invalid(t *testing.T) {
	testcases := []struct {
		name string
		args []string
	}{
		{name: "workers", args: []string{"--workers=0"}},
		{name: "ratio", args: []string{"--remove-ratio=1.5"}},
		{name: "mode", args: []string{"--mode=zigzag"}},
		{name: "encoder", args: []string{"--encoder=xml"}},
		{name: "metrics", args: []string{"--metrics=statsd"}},
		{name: "dump", args: []string{"--dump=-1"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := parseOptions(tc.args, io.Discard)
			require.Error(tt, err)
		})
	}
}

func TestParseOptions_Help(t *testing.T) {
	_, err := parseOptions([]string{"--help"}, io.Discard)
	require.ErrorIs(t, err, pflag.ErrHelp)
}
