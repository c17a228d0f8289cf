// Package config loads the JSON configuration file shared by the extract and
// process commands.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Filter is a single tag predicate. A relation matches a Filter if it has the
// key set and, when Value is non-nil, the value equals *Value.
type Filter struct {
	Key   string
	Value *string
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*string{&f.Key, f.Value})
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw [2]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "filter entry must be a 2-element array")
	}
	if raw[0] == nil {
		return errors.New("filter key must not be null")
	}
	f.Key = *raw[0]
	f.Value = raw[1]
	return nil
}

// Matches reports whether the given tag map satisfies this filter.
func (f Filter) Matches(tags map[string]string) bool {
	value, ok := tags[f.Key]
	if !ok {
		return false
	}
	return f.Value == nil || *f.Value == value
}

// PropertyMapping selects one source tag key and, optionally, renames it in
// the emitted feature's attribute map.
type PropertyMapping struct {
	SourceKey  string
	RenamedKey *string
}

func (p PropertyMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*string{&p.SourceKey, p.RenamedKey})
}

func (p *PropertyMapping) UnmarshalJSON(data []byte) error {
	var raw [2]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "extract_properties entry must be a 2-element array")
	}
	if raw[0] == nil {
		return errors.New("extract_properties source key must not be null")
	}
	p.SourceKey = *raw[0]
	p.RenamedKey = raw[1]
	return nil
}

// OutputKey is the attribute key under which this property is stored in the
// emitted feature.
func (p PropertyMapping) OutputKey() string {
	if p.RenamedKey != nil {
		return *p.RenamedKey
	}
	return p.SourceKey
}

// Config is the configuration file described in the "extract" and "process"
// commands.
type Config struct {
	Filters             []Filter          `json:"filters"`
	ExtractProperties   []PropertyMapping `json:"extract_properties"`
	ProcessPropertyName string            `json:"process_property_name"`
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	var cfg Config
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "malformed config JSON in %s", path)
	}

	return &cfg, nil
}

// MatchesAll reports whether tags satisfy every configured filter (logical AND).
func (c *Config) MatchesAll(tags map[string]string) bool {
	for _, filter := range c.Filters {
		if !filter.Matches(tags) {
			return false
		}
	}
	return true
}

// ExtractTags returns the configured subset of tags, renamed as directed.
func (c *Config) ExtractTags(tags map[string]string) map[string]any {
	result := make(map[string]any, len(c.ExtractProperties))
	for _, mapping := range c.ExtractProperties {
		if value, ok := tags[mapping.SourceKey]; ok {
			result[mapping.OutputKey()] = value
		}
	}
	return result
}
