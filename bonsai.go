package bonsai

import (
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mathemads/bonsai/internal/logging"
	"github.com/mathemads/bonsai/internal/passes"
	"github.com/mathemads/bonsai/pkg/config"
	"github.com/mathemads/bonsai/pkg/observability"
	"github.com/mathemads/bonsai/pkg/tree"
)

// Converter runs the tree-to-text pipeline. It holds no per-conversion
// state, so one Converter may serve any number of conversions; each
// conversion exclusively owns its tree and conversions over distinct trees
// are safe to run concurrently.
type Converter struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option defines a functional option for configuring the Converter.
type Option func(*Converter)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation of conversions.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// New initializes a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs the full pass pipeline over the caller-owned tree and
// returns the Bonsai text. The tree is mutated in place and should be
// discarded afterwards. Conversion is all-or-nothing: on error no partial
// output is returned.
func (c *Converter) Convert(t *tree.Tree, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.New()
	}
	id := uuid.NewString()
	start := time.Now()
	log := c.logger.With("conversion", id)
	log.Debug("starting conversion", "nodes", t.Len())

	text, err := c.run(t, cfg)
	if err != nil {
		log.Error("conversion failed", "error", err)
		if c.metrics != nil {
			c.metrics.ObserveFailure()
		}
		return "", err
	}

	log.Debug("conversion complete", "nodes", t.Len(), "duration", time.Since(start))
	if c.metrics != nil {
		c.metrics.ObserveSuccess(t.Len())
	}
	return text, nil
}

func (c *Converter) run(t *tree.Tree, cfg *config.Config) (string, error) {
	if err := passes.Normalize(t); err != nil {
		return "", err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return "", err
	}
	if err := passes.Validate(t, rules); err != nil {
		return "", err
	}
	if len(cfg.SliceFeatures) > 0 {
		if err := passes.Slice(t, cfg.SliceFeatures, cfg.SliceFeatureValues); err != nil {
			return "", err
		}
	}
	if err := passes.Order(t, cfg); err != nil {
		return "", err
	}
	if err := passes.Indent(t); err != nil {
		return "", err
	}
	if err := passes.Switches(t); err != nil {
		return "", err
	}
	return passes.Emit(t, cfg)
}

// ConvertBase64 returns the converted text base64-encoded, for transports
// that forbid raw control characters.
func (c *Converter) ConvertBase64(t *tree.Tree, cfg *config.Config) (string, error) {
	text, err := c.Convert(t, cfg)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(text)), nil
}

// Convert is a convenience wrapper around a default Converter.
func Convert(t *tree.Tree, cfg *config.Config) (string, error) {
	return New().Convert(t, cfg)
}
