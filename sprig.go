package sprig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/sprig/internal/adapters/file"
	sprighttp "github.com/aretw0/sprig/internal/adapters/http"
	"github.com/aretw0/sprig/internal/adapters/memory"
	"github.com/aretw0/sprig/internal/adapters/redis"
	"github.com/aretw0/sprig/internal/config"
	"github.com/aretw0/sprig/internal/logging"
	"github.com/aretw0/sprig/pkg/chain"
	"github.com/aretw0/sprig/pkg/observability"
	"github.com/aretw0/sprig/pkg/operator"
	"github.com/aretw0/sprig/pkg/ports"
)

// Version is the release of this module, overridable at link time.
var Version = "0.1.0"

// ErrChainBusy is returned when another run holds the lock of a chain.
var ErrChainBusy = errors.New("chain is locked by another run")

// Sampler runs the replicate chains described by a run file.
type Sampler struct {
	Name string

	cfg       *config.Config
	chains    []*chain.Chain
	store     ports.CheckpointStore
	locker    ports.ChainLocker
	lockTTL   time.Duration
	lockWait  time.Duration
	hooks     chain.Hooks
	logger    *slog.Logger
	logOut    io.Writer
	logJSON   bool
	addr      *string
	resumeOpt *bool
	streams   *sprighttp.StreamManager
	collector *observability.Collector
	registry  *prometheus.Registry
	closers   []io.Closer
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the structured logger for the sampler and its chains.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) { s.logger = logger }
}

// WithLogOutput logs to w at the level named in the run file, as text or
// JSON. WithLogger takes precedence.
func WithLogOutput(w io.Writer, json bool) Option {
	return func(s *Sampler) {
		s.logOut = w
		s.logJSON = json
	}
}

// WithDiagnostics overrides the diagnostics address of the run file. An
// empty address disables the server.
func WithDiagnostics(addr string) Option {
	return func(s *Sampler) { s.addr = &addr }
}

// WithResume overrides whether chains resume from their checkpoints.
func WithResume(resume bool) Option {
	return func(s *Sampler) { s.resumeOpt = &resume }
}

// WithHooks registers lifecycle callbacks on every chain.
func WithHooks(hooks chain.Hooks) Option {
	return func(s *Sampler) { s.hooks = hooks }
}

// WithStore replaces the checkpoint store named in the run file.
func WithStore(store ports.CheckpointStore) Option {
	return func(s *Sampler) { s.store = store }
}

// WithLocker replaces the default chain locker.
func WithLocker(l ports.ChainLocker) Option {
	return func(s *Sampler) { s.locker = l }
}

// WithLockTiming sets how long a chain lock lives and how long Run waits to
// acquire it.
func WithLockTiming(ttl, wait time.Duration) Option {
	return func(s *Sampler) {
		s.lockTTL = ttl
		s.lockWait = wait
	}
}

// WithName sets the run name used as the chain ID prefix. It defaults to
// the base name of the run file.
func WithName(name string) Option {
	return func(s *Sampler) { s.Name = name }
}

// New loads the run file at path and builds every replicate.
func New(path string, opts ...Option) (*Sampler, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return build(cfg, append([]Option{WithName(name)}, opts...))
}

// NewFromYAML builds a sampler from the contents of a run file.
func NewFromYAML(data []byte, opts ...Option) (*Sampler, error) {
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	return build(cfg, opts)
}

func build(cfg *config.Config, opts []Option) (*Sampler, error) {
	s := &Sampler{
		Name:     "run",
		cfg:      cfg,
		lockTTL:  24 * time.Hour,
		lockWait: 5 * time.Second,
		streams:  sprighttp.NewStreamManager(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.addr != nil {
		cfg.Diagnostics.Addr = *s.addr
	}
	if s.resumeOpt != nil {
		cfg.Checkpoint.Resume = *s.resumeOpt
	}
	if s.logger == nil && s.logOut != nil {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		s.logger = logging.NewWriter(s.logOut, level, s.logJSON)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.logger = s.logger.With("run", s.Name)

	s.openStore()
	if cfg.Checkpoint.Resume && s.store == nil {
		s.Close()
		return nil, errors.New("resume requires a checkpoint store")
	}
	s.collector = observability.NewCollector("sprig")
	if err := s.registry.Register(s.collector); err != nil {
		return nil, err
	}

	hooks := chain.MergeHooks(s.hooks, s.streams.Hooks())
	for i := 0; i < cfg.Replicates; i++ {
		seed := chain.Seed(cfg.Seed, i)
		model, err := cfg.Build(rand.New(rand.NewPCG(seed, ^seed)))
		if err != nil {
			s.Close()
			return nil, err
		}
		opts := []chain.Option{
			chain.WithID(fmt.Sprintf("%s-%d", s.Name, i)),
			chain.WithTrees(model.Tree),
			chain.WithParameters(model.Parameters...),
			chain.WithTraits(model.Traits...),
			chain.WithLogger(s.logger),
			chain.WithHooks(hooks),
		}
		if s.store != nil {
			opts = append(opts, chain.WithCheckpoints(s.store, cfg.Checkpoint.Every))
		}
		c, err := chain.New(model.Density, model.Schedule, seed, opts...)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.chains = append(s.chains, c)
		s.collector.Add(c)
	}
	return s, nil
}

func (s *Sampler) openStore() {
	cp := s.cfg.Checkpoint
	if s.store == nil {
		switch cp.Store {
		case config.StoreMemory:
			s.store = memory.New()
		case config.StoreFile:
			s.store = file.New(cp.Path)
		case config.StoreRedis:
			prefix := cp.Prefix
			if prefix == "" {
				prefix = "sprig:"
			}
			rs := redis.New(cp.Redis, "", 0, redis.WithPrefix(prefix+"checkpoint:"))
			s.store = rs
			s.closers = append(s.closers, rs)
			if s.locker == nil {
				s.locker = redis.NewLocker(rs.Client(), prefix)
			}
		}
	}
	if s.locker == nil {
		s.locker = memory.NewLocker()
	}
}

// Chains returns the replicate chains.
func (s *Sampler) Chains() []*chain.Chain { return s.chains }

// Run advances every chain to the configured number of steps. Chains that
// resume from a checkpoint only run the remaining steps. When the run file
// names a diagnostics address, the diagnostics server is up for the duration
// of the run.
func (s *Sampler) Run(ctx context.Context) error {
	if addr := s.cfg.Diagnostics.Addr; addr != "" {
		stop, err := s.serve(addr)
		if err != nil {
			return err
		}
		defer stop()
	}

	var unlocks []ports.UnlockFunc
	defer func() {
		for _, unlock := range unlocks {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("unlock failed", "error", err)
			}
		}
	}()
	for _, c := range s.chains {
		unlock, err := s.lock(ctx, c.ID())
		if err != nil {
			return err
		}
		unlocks = append(unlocks, unlock)
		if s.cfg.Checkpoint.Resume {
			if err := s.resume(ctx, c); err != nil {
				return err
			}
		}
	}

	s.logger.Info("run started", "chains", len(s.chains), "steps", s.cfg.Steps)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.chains {
		g.Go(func() error {
			if done := c.State(); done < s.cfg.Steps {
				if err := c.Run(gctx, s.cfg.Steps-done); err != nil {
					return fmt.Errorf("chain %s: %w", c.ID(), err)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	if s.store != nil && (err == nil || errors.Is(err, context.Canceled)) {
		for _, c := range s.chains {
			if serr := c.SaveCheckpoint(context.WithoutCancel(ctx)); serr != nil {
				err = errors.Join(err, serr)
			}
		}
	}
	if err != nil {
		s.logger.Error("run stopped", "error", err)
		return err
	}
	s.logger.Info("run finished")
	return nil
}

func (s *Sampler) lock(ctx context.Context, id string) (ports.UnlockFunc, error) {
	lctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lctx, id, s.lockTTL)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w: %s", ErrChainBusy, id)
	}
	return unlock, err
}

func (s *Sampler) resume(ctx context.Context, c *chain.Chain) error {
	err := c.Resume(ctx)
	switch {
	case errors.Is(err, ports.ErrCheckpointNotFound):
		s.logger.Info("no checkpoint, starting fresh", "chain", c.ID())
		return nil
	case err != nil:
		return fmt.Errorf("resume %s: %w", c.ID(), err)
	}
	return nil
}

// serve starts the diagnostics server and returns its shutdown function.
func (s *Sampler) serve(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("diagnostics server failed", "error", err)
		}
	}()
	s.logger.Info("diagnostics listening", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}

// Handler returns the diagnostics HTTP handler for these chains.
func (s *Sampler) Handler() http.Handler {
	return sprighttp.NewHandler(registry{s},
		sprighttp.WithGatherer(s.registry),
		sprighttp.WithStreams(s.streams),
		sprighttp.WithVersion(Version),
		sprighttp.WithLogger(s.logger),
	)
}

type registry struct{ s *Sampler }

func (r registry) Chains() []sprighttp.Chain {
	out := make([]sprighttp.Chain, len(r.s.chains))
	for i, c := range r.s.chains {
		out[i] = c
	}
	return out
}

// Gatherer returns the Prometheus registry holding the operator metrics.
func (s *Sampler) Gatherer() prometheus.Gatherer { return s.registry }

// ChainReport is the operator analysis of one chain.
type ChainReport struct {
	ID    string
	State uint64
	Rows  []operator.AnalysisRow
}

// Analysis returns the operator analysis of every chain.
func (s *Sampler) Analysis() []ChainReport {
	out := make([]ChainReport, len(s.chains))
	for i, c := range s.chains {
		out[i] = ChainReport{ID: c.ID(), State: c.State(), Rows: operator.Analyse(c.Schedule())}
	}
	return out
}

// Close releases external connections.
func (s *Sampler) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
