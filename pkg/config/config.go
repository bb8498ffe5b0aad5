// Package config describes a conversion: priority orders for deterministic
// emission, absence markers, the slice plan and the feature rule table.
// Hosts usually populate the struct directly; Load reads it from a YAML or
// JSON file for convenience.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mathemads/bonsai/pkg/features"
)

// Group is one feature_order entry: a single feature or a tuple of
// features sharing a rank. It unmarshals from a scalar or a sequence.
type Group []string

// UnmarshalYAML accepts either "feature" or ["a", "b"].
func (g *Group) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*g = Group{value.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*g = Group(names)
		return nil
	}
	return fmt.Errorf("feature_order entry must be a scalar or a sequence")
}

// UnmarshalJSON accepts either a string or an array of strings.
func (g *Group) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*g = Group{name}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("feature_order entry must be a string or string array: %w", err)
	}
	*g = Group(names)
	return nil
}

// RuleSpec is the serialized form of a feature's clamp/cast rule.
type RuleSpec struct {
	Floor   *float64 `yaml:"floor" json:"floor,omitempty"`
	Ceiling *float64 `yaml:"ceiling" json:"ceiling,omitempty"`
	Type    string   `yaml:"type" json:"type,omitempty"`
}

// Config carries everything a conversion needs besides the graph itself.
type Config struct {
	// FeatureOrder ranks features for sibling ordering; earlier is first.
	FeatureOrder []Group `yaml:"feature_order" json:"feature_order,omitempty"`

	// FeatureValueOrder ranks the values of individual features. Values
	// are matched against the canonical string rendering (tree.Value).
	FeatureValueOrder map[string][]string `yaml:"feature_value_order" json:"feature_value_order,omitempty"`

	// AbsenceValues lists, per feature, the values meaning "feature
	// absent"; matching edge values render as an absence clause.
	AbsenceValues map[string][]string `yaml:"absence_values" json:"absence_values,omitempty"`

	// SliceFeatures, in order, are removed from the tree, each retaining
	// only the subtree consistent with its SliceFeatureValues entry.
	SliceFeatures      []string          `yaml:"slice_features" json:"slice_features,omitempty"`
	SliceFeatureValues map[string]string `yaml:"slice_feature_values" json:"slice_feature_values,omitempty"`

	// AggregationFeatures render two-bounded range tests as bound
	// comparisons instead of a "range (lo, hi)" clause.
	AggregationFeatures []string `yaml:"aggregation_features" json:"aggregation_features,omitempty"`

	// IndexedFeatures render assignments as feature[value]. Features that
	// appear as the object part of a compound feature are indexed
	// automatically; this list covers the rest.
	IndexedFeatures []string `yaml:"indexed_features" json:"indexed_features,omitempty"`

	// Features is the pluggable clamp table used by the validation pass.
	Features map[string]RuleSpec `yaml:"features" json:"features,omitempty"`
}

// New returns an empty configuration.
func New() *Config {
	return &Config{}
}

// Load reads a configuration file, YAML or JSON by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config yaml: %w", err)
		}
	}
	return &cfg, nil
}

// Rules builds the features.Rules table from the serialized specs.
func (c *Config) Rules() (features.Rules, error) {
	rules := make(features.Rules, len(c.Features))
	for name, spec := range c.Features {
		cast, err := features.ParseCast(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		rules[name] = features.Rule{Floor: spec.Floor, Ceiling: spec.Ceiling, Cast: cast}
	}
	return rules, nil
}

// FeatureRanking returns a fresh ranking over FeatureOrder.
func (c *Config) FeatureRanking() *features.Ranking {
	groups := make([][]string, len(c.FeatureOrder))
	for i, g := range c.FeatureOrder {
		groups[i] = []string(g)
	}
	return features.NewRanking(groups)
}

// ValueRanking returns a fresh ranking over a feature's value priorities.
func (c *Config) ValueRanking(feature string) *features.Ranking {
	return features.NewValueRanking(c.FeatureValueOrder[feature])
}

// IsAbsence reports whether a rendered value means "absent" for a feature.
func (c *Config) IsAbsence(feature, rendered string) bool {
	for _, v := range c.AbsenceValues[feature] {
		if v == rendered {
			return true
		}
	}
	return false
}
