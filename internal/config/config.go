package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document. Rule sections keep the
// order in which patterns appear in the file; the first matching pattern
// always wins.
type Config struct {
	Class              RuleList `yaml:"class"`
	ClassActive        RuleList `yaml:"class_active"`
	InitialClass       RuleList `yaml:"initial_class"`
	InitialClassActive RuleList `yaml:"initial_class_active"`

	TitleInClass                     TitleRules `yaml:"title_in_class"`
	TitleInClassActive               TitleRules `yaml:"title_in_class_active"`
	TitleInInitialClass              TitleRules `yaml:"title_in_initial_class"`
	TitleInInitialClassActive        TitleRules `yaml:"title_in_initial_class_active"`
	InitialTitleInClass              TitleRules `yaml:"initial_title_in_class"`
	InitialTitleInClassActive        TitleRules `yaml:"initial_title_in_class_active"`
	InitialTitleInInitialClass       TitleRules `yaml:"initial_title_in_initial_class"`
	InitialTitleInInitialClassActive TitleRules `yaml:"initial_title_in_initial_class_active"`

	Exclude        RuleList `yaml:"exclude"`
	WorkspacesName RuleList `yaml:"workspaces_name"`
	Format         Format   `yaml:"format"`
}

// Entry is one ordered (pattern, value) pair from a rule mapping.
type Entry struct {
	Pattern string
	Value   string
}

// RuleList is an ordered class-pattern mapping. YAML mappings lose ordering
// when decoded into a Go map, so decoding walks the raw node content instead.
type RuleList []Entry

// UnmarshalYAML decodes a mapping node while preserving key order and
// rejecting duplicate patterns.
func (r *RuleList) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*r = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping of patterns")
	}
	entries := make([]Entry, 0, len(value.Content)/2)
	seen := map[string]struct{}{}
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("pattern must be a string")
		}
		if valNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("pattern %q: value must be a string", keyNode.Value)
		}
		if _, exists := seen[keyNode.Value]; exists {
			return fmt.Errorf("duplicate pattern %q", keyNode.Value)
		}
		seen[keyNode.Value] = struct{}{}
		entries = append(entries, Entry{Pattern: keyNode.Value, Value: valNode.Value})
	}
	*r = entries
	return nil
}

// TitleGroup nests an ordered title mapping under one class pattern.
type TitleGroup struct {
	Pattern string
	Titles  RuleList
}

// TitleRules is an ordered class-pattern mapping whose values are ordered
// title-pattern mappings.
type TitleRules []TitleGroup

// UnmarshalYAML decodes the nested mapping while preserving order at both
// levels.
func (tr *TitleRules) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*tr = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping of class patterns")
	}
	groups := make([]TitleGroup, 0, len(value.Content)/2)
	seen := map[string]struct{}{}
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("class pattern must be a string")
		}
		if _, exists := seen[keyNode.Value]; exists {
			return fmt.Errorf("duplicate class pattern %q", keyNode.Value)
		}
		seen[keyNode.Value] = struct{}{}
		var titles RuleList
		if err := valNode.Decode(&titles); err != nil {
			return fmt.Errorf("class pattern %q: %w", keyNode.Value, err)
		}
		groups = append(groups, TitleGroup{Pattern: keyNode.Value, Titles: titles})
	}
	*tr = groups
	return nil
}

// Format holds the display templates and dedup switches.
type Format struct {
	Dedup                   bool   `yaml:"dedup"`
	DedupInactiveFullscreen bool   `yaml:"dedup_inactive_fullscreen"`
	Delim                   string `yaml:"delim"`
	Workspace               string `yaml:"workspace"`
	WorkspaceEmpty          string `yaml:"workspace_empty"`
	Client                  string `yaml:"client"`
	ClientActive            string `yaml:"client_active"`
	ClientFullscreen        string `yaml:"client_fullscreen"`
	ClientDup               string `yaml:"client_dup"`
	ClientDupFullscreen     string `yaml:"client_dup_fullscreen"`
}

// Load reads a configuration file and applies defaults. Invalid regular
// expressions are not rejected here; they surface through Lint and degrade to
// never-matching rules at compile time.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a serialized configuration document and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	f := &c.Format
	if f.Delim == "" {
		f.Delim = " "
	}
	if f.Workspace == "" {
		f.Workspace = "{id}:{delim}{clients}"
	}
	if f.WorkspaceEmpty == "" {
		f.WorkspaceEmpty = "{id}"
	}
	if f.Client == "" {
		f.Client = "{icon}"
	}
	if f.ClientActive == "" {
		f.ClientActive = "*{icon}*"
	}
	if f.ClientFullscreen == "" {
		f.ClientFullscreen = "[{icon}]"
	}
	if f.ClientDup == "" {
		f.ClientDup = "{client}{counter_sup}"
	}
	if f.ClientDupFullscreen == "" {
		f.ClientDupFullscreen = "[{icon}]{counter_sup}"
	}
}
