package verify

import (
	"context"
	"errors"
	"fmt"
	"math"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

// RoundContextKey carries the round number for the xlog context fields.
const RoundContextKey = "round"

var (
	ErrOracleMismatch = errors.New("[verify] tree and oracle mismatch")
	ErrRoundPanic     = errors.New("[verify] round panicked")
	ErrRunnerReleased = errors.New("[verify] runner released")
)

type RoundResult struct {
	Round    int
	Len      int64
	Height   int
	Inserted int64
	Removed  int64
	Searched int64
	Elapsed  time.Duration
	Err      error
}

type Report struct {
	Mode      KeyMode
	Rounds    int
	Failed    int
	Skipped   int
	Inserted  int64
	Removed   int64
	Searched  int64
	MaxHeight int
	Elapsed   time.Duration
	Results   []RoundResult
}

// Runner cross-checks red-black trees against a Go map oracle.
// Each round owns its tree, rounds run on an ants pool.
type Runner struct {
	cfg    Config
	logger xlog.XLogger
	stats  *observability.TreeStats
	pool   *ants.Pool
	ids    id.Generator
	lock   sync.Mutex
	closed bool
}

// NewRunner accepts a nil stats to record nothing.
func NewRunner(cfg Config, logger xlog.XLogger, stats *observability.TreeStats) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, infra.NewErrorStack("[verify] nil logger")
	}
	pool, err := ants.NewPool(cfg.Workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	ids, err := id.MonotonicNonZeroID()
	if err != nil {
		pool.Release()
		return nil, infra.WrapErrorStack(err)
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		stats:  stats,
		pool:   pool,
		ids:    ids,
	}, nil
}

func (r *Runner) Release() {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Release()
}

// Run stops submitting rounds once ctx is done, the running rounds
// stop at their next operation. The returned error combines the
// failed rounds and the context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		return nil, ErrRunnerReleased
	}
	r.lock.Unlock()

	start := time.Now()
	results := make([]RoundResult, r.cfg.Rounds)
	submitted := make([]bool, r.cfg.Rounds)
	var (
		wg   sync.WaitGroup
		merr error
	)
	for round := 0; round < r.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			results[round] = r.runRound(ctx, round)
		})
		if err != nil {
			wg.Done()
			results[round] = RoundResult{Round: round, Err: infra.WrapErrorStack(err)}
			continue
		}
		submitted[round] = true
	}
	wg.Wait()

	report := &Report{
		Mode:    r.cfg.Mode,
		Rounds:  r.cfg.Rounds,
		Results: results,
		Elapsed: time.Since(start),
	}
	for round, res := range results {
		if !submitted[round] && res.Err == nil {
			report.Skipped++
			continue
		}
		report.Inserted += res.Inserted
		report.Removed += res.Removed
		report.Searched += res.Searched
		report.MaxHeight = max(report.MaxHeight, res.Height)
		if res.Err != nil {
			report.Failed++
			merr = multierr.Append(merr, res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		merr = multierr.Append(merr, err)
	}

	fields := []zap.Field{
		zap.String("mode", string(report.Mode)),
		zap.Int("rounds", report.Rounds),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int64("inserted", report.Inserted),
		zap.Int64("removed", report.Removed),
		zap.Int64("searched", report.Searched),
		zap.Int("maxHeight", report.MaxHeight),
		zap.Duration("elapsed", report.Elapsed),
	}
	if merr != nil {
		r.logger.Error(merr, "verification failed", fields...)
	} else {
		r.logger.Info("verification passed", fields...)
	}
	return report, merr
}

func (r *Runner) treeOpts() []tree.RBTreeOpt[uint64, uint64] {
	opts := make([]tree.RBTreeOpt[uint64, uint64], 0, 2)
	if r.cfg.Desc {
		opts = append(opts, tree.WithRBTreeDesc[uint64, uint64]())
	}
	if r.cfg.BorrowPred {
		opts = append(opts, tree.WithRBTreeRemoveBorrowPred[uint64, uint64]())
	}
	return opts
}

// genKeys may return duplicates in the random mode, they exercise
// the no-op insert.
func (r *Runner) genKeys(rng *randv2.Rand, n int) []uint64 {
	keys := make([]uint64, 0, n)
	switch r.cfg.Mode {
	case SequentialKeys:
		for i := 1; i <= n; i++ {
			keys = append(keys, uint64(i))
		}
	case ReverseKeys:
		for i := n; i >= 1; i-- {
			keys = append(keys, uint64(i))
		}
	case MonotonicKeys:
		for i := 0; i < n; i++ {
			keys = append(keys, r.ids.Number())
		}
	case RandomKeys:
		fallthrough
	default:
		bound := uint64(2*n + 1)
		for i := 0; i < n; i++ {
			keys = append(keys, rng.Uint64N(bound))
		}
	}
	return keys
}

// Sample builds a tree from n keys of the configured mode and options,
// for rendering.
func (r *Runner) Sample(n int) tree.RBTree[uint64, uint64] {
	rng := randv2.New(randv2.NewPCG(r.cfg.Seed, math.MaxUint64))
	t := tree.NewRBTree[uint64, uint64](r.treeOpts()...)
	for i, key := range r.genKeys(rng, n) {
		t.Insert(key, uint64(i))
	}
	return t
}

type roundState struct {
	ctx    context.Context
	cfg    Config
	tree   tree.RBTree[uint64, uint64]
	oracle map[uint64]uint64
	ops    int
	res    *RoundResult
}

func (s *roundState) step() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.ops++
	if s.cfg.CheckEvery > 0 && s.ops%s.cfg.CheckEvery == 0 {
		if err := tree.Validate[uint64, uint64](s.tree); err != nil {
			return fmt.Errorf("after %d operations: %w", s.ops, err)
		}
	}
	return nil
}

func (s *roundState) insert(key, val uint64) error {
	_, exists := s.oracle[key]
	if inserted := s.tree.Insert(key, val); inserted == exists {
		return fmt.Errorf("%w: insert %d returned %v, present %v", ErrOracleMismatch, key, inserted, exists)
	}
	if !exists {
		s.oracle[key] = val
		s.res.Inserted++
	}
	return s.step()
}

func (s *roundState) search(key uint64) error {
	expected, exists := s.oracle[key]
	val, ok := s.tree.Search(key)
	s.res.Searched++
	if ok != exists || val != expected {
		return fmt.Errorf("%w: search %d got (%d, %v), expected (%d, %v)",
			ErrOracleMismatch, key, val, ok, expected, exists)
	}
	return s.step()
}

func (s *roundState) remove(key uint64) error {
	expected, exists := s.oracle[key]
	node, ok := s.tree.Remove(key)
	if ok != exists {
		return fmt.Errorf("%w: remove %d returned %v, present %v", ErrOracleMismatch, key, ok, exists)
	}
	if ok {
		if node.Key() != key || node.Val() != expected {
			return fmt.Errorf("%w: remove %d detached (%d, %d)", ErrOracleMismatch, key, node.Key(), node.Val())
		}
		delete(s.oracle, key)
		s.res.Removed++
	}
	if _, again := s.tree.Remove(key); again {
		return fmt.Errorf("%w: remove %d twice", ErrOracleMismatch, key)
	}
	return s.step()
}

// final compares the whole content in key order and validates the tree.
func (s *roundState) final() error {
	if l := s.tree.Len(); l != int64(len(s.oracle)) {
		return fmt.Errorf("%w: len %d, oracle %d", ErrOracleMismatch, l, len(s.oracle))
	}
	expected := lo.Keys(s.oracle)
	slices.Sort(expected)
	if s.cfg.Desc {
		slices.Reverse(expected)
	}
	actual := make([]uint64, 0, len(expected))
	s.tree.Order(func(key uint64, val uint64) {
		actual = append(actual, key)
	})
	if !slices.Equal(expected, actual) {
		return fmt.Errorf("%w: in-order keys differ", ErrOracleMismatch)
	}
	return tree.Validate[uint64, uint64](s.tree)
}

func (r *Runner) runRound(ctx context.Context, round int) (res RoundResult) {
	start := time.Now()
	res.Round = round
	ctx = context.WithValue(ctx, RoundContextKey, round)
	rng := randv2.New(randv2.NewPCG(r.cfg.Seed, uint64(round)))
	state := &roundState{
		ctx:    ctx,
		cfg:    r.cfg,
		tree:   tree.NewRBTree[uint64, uint64](r.treeOpts()...),
		oracle: make(map[uint64]uint64, r.cfg.Keys),
		res:    &res,
	}
	mode := string(r.cfg.Mode)

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%w: %v", ErrRoundPanic, p)
		}
		res.Len = state.tree.Len()
		res.Height = state.tree.Height()
		res.Elapsed = time.Since(start)
		r.stats.RecordInserts(ctx, mode, res.Inserted)
		r.stats.RecordRemoves(ctx, mode, res.Removed)
		r.stats.RecordSearches(ctx, mode, res.Searched)
		r.stats.RecordHeight(ctx, mode, res.Height)
		if res.Err != nil {
			res.Err = infra.WrapErrorStack(fmt.Errorf("round %d: %w", round, res.Err))
			if !errors.Is(res.Err, context.Canceled) && !errors.Is(res.Err, context.DeadlineExceeded) {
				r.stats.RecordViolation(ctx, mode)
			}
			r.logger.ErrorStackContext(ctx, res.Err, "round failed")
		} else {
			r.logger.DebugContext(ctx, "round passed",
				zap.Int64("len", res.Len),
				zap.Int("height", res.Height),
				zap.Duration("elapsed", res.Elapsed),
			)
		}
		state.tree.Release()
	}()

	res.Err = r.playRound(state, rng)
	return res
}

func (r *Runner) playRound(state *roundState, rng *randv2.Rand) error {
	keys := r.genKeys(rng, r.cfg.Keys)
	for i, key := range keys {
		if err := state.insert(key, uint64(i)); err != nil {
			return err
		}
	}
	for _, key := range keys {
		if err := state.search(key); err != nil {
			return err
		}
	}
	// Absent keys.
	for i := 0; i < min(len(keys), 16); i++ {
		if err := state.search(rng.Uint64() | 1<<63); err != nil {
			return err
		}
	}

	distinct := lo.Uniq(keys)
	rng.Shuffle(len(distinct), func(i, j int) {
		distinct[i], distinct[j] = distinct[j], distinct[i]
	})
	for _, key := range distinct[:int(float64(len(distinct))*r.cfg.RemoveRatio)] {
		if err := state.remove(key); err != nil {
			return err
		}
	}
	return state.final()
}
