package verify

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

type KeyMode string

const (
	SequentialKeys KeyMode = "sequential"
	ReverseKeys    KeyMode = "reverse"
	RandomKeys     KeyMode = "random"
	MonotonicKeys  KeyMode = "monotonic"
)

func (m KeyMode) valid() bool {
	switch m {
	case SequentialKeys, ReverseKeys, RandomKeys, MonotonicKeys:
		return true
	default:
	}
	return false
}

var ErrInvalidConfig = errors.New("[verify] invalid config")

type Config struct {
	// Workers is the ants pool size, rounds run in parallel.
	Workers int
	Rounds  int
	// Keys is the number of insert operations per round.
	Keys int
	// RemoveRatio of the distinct inserted keys is removed afterwards.
	RemoveRatio float64
	Mode        KeyMode
	// CheckEvery runs the full tree validation every n operations.
	// 0 only validates at the end of a round.
	CheckEvery int
	BorrowPred bool
	Desc       bool
	// Seed makes the random key mode reproducible.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		Workers:     4,
		Rounds:      8,
		Keys:        10_000,
		RemoveRatio: 0.5,
		Mode:        RandomKeys,
		CheckEvery:  1000,
		Seed:        1,
	}
}

// Validate reports all invalid fields at once.
func (c Config) Validate() error {
	var err error
	if c.Workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: workers %d must be positive", ErrInvalidConfig, c.Workers))
	}
	if c.Rounds <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: rounds %d must be positive", ErrInvalidConfig, c.Rounds))
	}
	if c.Keys < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: keys %d must not be negative", ErrInvalidConfig, c.Keys))
	}
	if c.RemoveRatio < 0 || c.RemoveRatio > 1 {
		err = multierr.Append(err, fmt.Errorf("%w: remove ratio %v out of [0, 1]", ErrInvalidConfig, c.RemoveRatio))
	}
	if !c.Mode.valid() {
		err = multierr.Append(err, fmt.Errorf("%w: unknown key mode %q", ErrInvalidConfig, c.Mode))
	}
	if c.CheckEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: check every %d must not be negative", ErrInvalidConfig, c.CheckEvery))
	}
	return err
}
