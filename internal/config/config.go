// Package config reads the YAML description of a sampling run: the model
// (tree, parameters, tip traits), the operators and their schedule weights,
// and how the run is executed and checkpointed.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/sprig/internal/logging"
)

// Operator types accepted in the operators list.
const (
	TypeNarrowExchange = "narrowExchange"
	TypeWideExchange   = "wideExchange"
	TypePruneRegraft   = "fixedHeightSubtreePruneRegraft"
	TypeSubtreeJump    = "subtreeJump"
	TypeUniformHeight  = "uniformHeight"
	TypeTipSwap        = "tipSwap"
	TypeScale          = "scale"
	TypeRandomWalk     = "randomWalk"
)

var operatorTypes = []string{
	TypeNarrowExchange, TypeWideExchange, TypePruneRegraft, TypeSubtreeJump,
	TypeUniformHeight, TypeTipSwap, TypeScale, TypeRandomWalk,
}

// Checkpoint store kinds.
const (
	StoreNone   = ""
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the root of a run file.
type Config struct {
	Seed        uint64      `yaml:"seed"`
	Steps       uint64      `yaml:"steps"`
	Replicates  int         `yaml:"replicates"`
	LogLevel    string      `yaml:"log_level"`
	Model       Model       `yaml:"model"`
	Operators   []Operator  `yaml:"operators"`
	Checkpoint  Checkpoint  `yaml:"checkpoint"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
}

// Model describes the state the operators act on.
type Model struct {
	Tree       Tree        `yaml:"tree"`
	Parameters []Parameter `yaml:"parameters"`
	Traits     []Trait     `yaml:"traits"`
}

// Tree is either a Newick string or a list of taxa for a random start.
type Tree struct {
	Newick string   `yaml:"newick"`
	Taxa   []string `yaml:"taxa"`
	// Rate is the coalescent rate of a random starting tree and the rate of
	// the exponential prior on branch lengths.
	Rate float64 `yaml:"rate"`
}

// Parameter is a named real vector.
type Parameter struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
	Lower  *float64  `yaml:"lower"`
	Upper  *float64  `yaml:"upper"`
	Prior  Prior     `yaml:"prior"`
}

// Prior of a parameter in the reference density. Kind is lognormal, normal
// or uniform (flat within the bounds).
type Prior struct {
	Kind  string  `yaml:"kind"`
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

// Trait holds discrete state vectors keyed by tip name.
type Trait struct {
	Name   string           `yaml:"name"`
	States map[string][]int `yaml:"states"`
}

// Operator is one entry of the schedule. Params are decoded according to
// Type.
type Operator struct {
	Type   string         `yaml:"type"`
	Name   string         `yaml:"name"`
	Weight float64        `yaml:"weight"`
	Params map[string]any `yaml:"params"`
	Adapt  *Adapt         `yaml:"adapt"`
}

// Adapt configures the adaptive controller of a tunable operator.
type Adapt struct {
	Enabled *bool   `yaml:"enabled"`
	Target  float64 `yaml:"target"`
	Delay   uint64  `yaml:"delay"`
	Step    Step    `yaml:"step"`
}

// Step selects a step-size schedule: harmonic, power or inverseSqrt.
type Step struct {
	Kind  string  `yaml:"kind"`
	Kappa float64 `yaml:"kappa"`
	Max   float64 `yaml:"max"`
}

// Checkpoint configures where and how often chains are saved.
type Checkpoint struct {
	Store  string `yaml:"store"`
	Path   string `yaml:"path"`
	Redis  string `yaml:"redis"`
	Prefix string `yaml:"prefix"`
	Every  uint64 `yaml:"every"`
	Resume bool   `yaml:"resume"`
}

// Diagnostics configures the HTTP diagnostics server.
type Diagnostics struct {
	Addr string `yaml:"addr"`
}

// Load reads and validates a run file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a run file. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); errors.Is(err, io.EOF) {
		return nil, errors.New("decode config: empty document")
	} else if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) defaults() {
	if c.Replicates == 0 {
		c.Replicates = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Model.Tree.Rate == 0 {
		c.Model.Tree.Rate = 1
	}
	for i := range c.Operators {
		if c.Operators[i].Weight == 0 {
			c.Operators[i].Weight = 1
		}
	}
	for i := range c.Model.Parameters {
		if c.Model.Parameters[i].Prior.Kind == "" {
			c.Model.Parameters[i].Prior.Kind = "uniform"
		}
	}
	if c.Checkpoint.Store != StoreNone && c.Checkpoint.Every == 0 {
		c.Checkpoint.Every = 1000
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Steps == 0 {
		add("steps: must be positive")
	}
	if c.Replicates < 1 {
		add("replicates: must be at least 1")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level: %w", err)
	}
	t := c.Model.Tree
	switch {
	case t.Newick == "" && len(t.Taxa) == 0:
		add("model.tree: newick or taxa is required")
	case t.Newick != "" && len(t.Taxa) > 0:
		add("model.tree: newick and taxa are exclusive")
	case len(t.Taxa) == 1:
		add("model.tree.taxa: need at least two taxa")
	}
	if !(t.Rate > 0) {
		add("model.tree.rate: must be positive")
	}

	params := map[string]bool{}
	for i, p := range c.Model.Parameters {
		if p.Name == "" {
			add("model.parameters[%d].name: required", i)
		} else if params[p.Name] {
			add("model.parameters[%d].name: duplicate %q", i, p.Name)
		}
		params[p.Name] = true
		if len(p.Values) == 0 {
			add("model.parameters[%d].values: required", i)
		}
		switch p.Prior.Kind {
		case "uniform":
		case "lognormal", "normal":
			if !(p.Prior.Sigma > 0) {
				add("model.parameters[%d].prior.sigma: must be positive", i)
			}
		default:
			add("model.parameters[%d].prior.kind: unknown %q", i, p.Prior.Kind)
		}
	}
	traits := map[string]bool{}
	for i, tr := range c.Model.Traits {
		if tr.Name == "" {
			add("model.traits[%d].name: required", i)
		}
		traits[tr.Name] = true
		if len(tr.States) == 0 {
			add("model.traits[%d].states: required", i)
		}
	}

	names := map[string]bool{}
	for i, op := range c.Operators {
		if !slices.Contains(operatorTypes, op.Type) {
			add("operators[%d].type: unknown %q", i, op.Type)
			continue
		}
		name := op.DisplayName()
		if names[name] {
			add("operators[%d]: duplicate name %q, set name to disambiguate", i, name)
		}
		names[name] = true
		if !(op.Weight > 0) {
			add("operators[%d].weight: must be positive", i)
		}
		if err := op.check(params, traits); err != nil {
			add("operators[%d] (%s): %w", i, name, err)
		}
	}
	if len(c.Operators) == 0 {
		add("operators: at least one operator is required")
	}

	switch c.Checkpoint.Store {
	case StoreNone, StoreMemory, StoreFile:
	case StoreRedis:
		if c.Checkpoint.Redis == "" {
			add("checkpoint.redis: address required for the redis store")
		}
	default:
		add("checkpoint.store: unknown %q", c.Checkpoint.Store)
	}
	if c.Checkpoint.Resume && c.Checkpoint.Store == StoreNone {
		add("checkpoint.resume: requires a store")
	}
	return errors.Join(errs...)
}

// DisplayName is the operator name used in the schedule.
func (op Operator) DisplayName() string {
	if op.Name != "" {
		return op.Name
	}
	p := struct {
		Parameter string `mapstructure:"parameter"`
	}{}
	_ = decode(op.Params, &p, false)
	if p.Parameter != "" {
		return op.Type + "(" + p.Parameter + ")"
	}
	return op.Type
}
