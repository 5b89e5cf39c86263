package verify

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	testcases := []struct {
		name   string
		modify func(cfg *Config)
		errs   int
	}{
		{name: "workers", modify: func(cfg *Config) { cfg.Workers = 0 }, errs: 1},
		{name: "rounds", modify: func(cfg *Config) { cfg.Rounds = -1 }, errs: 1},
		{name: "keys", modify: func(cfg *Config) { cfg.Keys = -1 }, errs: 1},
		{name: "ratio", modify: func(cfg *Config) { cfg.RemoveRatio = 1.5 }, errs: 1},
		{name: "mode", modify: func(cfg *Config) { cfg.Mode = "zigzag" }, errs: 1},
		{name: "check every", modify: func(cfg *Config) { cfg.CheckEvery = -3 }, errs: 1},
		{
			name: "all at once",
			modify: func(cfg *Config) {
				cfg.Workers, cfg.Rounds, cfg.Mode = 0, 0, ""
			},
			errs: 3,
		},
		{name: "zero keys", modify: func(cfg *Config) { cfg.Keys = 0 }, errs: 0},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.errs == 0 {
				require.NoError(tt, err)
				return
			}
			require.ErrorIs(tt, err, ErrInvalidConfig)
			require.Len(tt, multierr.Errors(err), tc.errs)
		})
	}
}
