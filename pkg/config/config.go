// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/correction"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/text"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DotFile is the config name tried as YAML first, then HCL
const DotFile = ".docscrub"

const (
	defaultLanguage    = "en-US"
	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 1
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ✂️ NormalizeConfig selects the normalization variant
type NormalizeConfig struct {
	CommaPolicy string `json:"comma_policy,omitempty" yaml:"comma_policy,omitempty" toml:"comma_policy"`
}

// 🔧 CorrectionConfig selects and tunes the correction provider
type CorrectionConfig struct {
	Provider    string `json:"provider,omitempty" yaml:"provider,omitempty" toml:"provider"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty" toml:"language"`
	Timeout     string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout"` // Go duration, e.g. "10s"
	Concurrency int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency"`
	APIKeyEnv   string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty" toml:"api_key_env"`
	Deployment  string `json:"deployment,omitempty" yaml:"deployment,omitempty" toml:"deployment"`

	timeout time.Duration
}

// 📏 LimitsConfig bounds what the gate admits
type LimitsConfig struct {
	MaxBytes   int64    `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty" toml:"max_bytes"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" toml:"extensions"`
}

// 🔢 QuotaConfig limits documents per client and day
type QuotaConfig struct {
	DailyLimit int    `json:"daily_limit,omitempty" yaml:"daily_limit,omitempty" toml:"daily_limit"` // 0 is unlimited
	Store      string `json:"store,omitempty" yaml:"store,omitempty" toml:"store"`                   // sqlite path, empty keeps usage in memory
}

// 🎯 TargetsConfig adds text entries beyond the format defaults
type TargetsConfig struct {
	ExtraPatterns []string `json:"extra_patterns,omitempty" yaml:"extra_patterns,omitempty" toml:"extra_patterns"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Normalize  NormalizeConfig  `json:"normalize" yaml:"normalize" toml:"normalize"`
	Correction CorrectionConfig `json:"correction" yaml:"correction" toml:"correction"`
	Limits     LimitsConfig     `json:"limits" yaml:"limits" toml:"limits"`
	Quota      QuotaConfig      `json:"quota" yaml:"quota" toml:"quota"`
	Targets    TargetsConfig    `json:"targets" yaml:"targets" toml:"targets"`
}

// 🏭 Default returns a validated configuration with every default filled in
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if filepath.Base(path) == DotFile {
		cfg, err = parseDotFile(ctx, data)
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", path)
		}
		cfg, err = p.Parse(ctx, data)
	}
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// parseDotFile tries YAML first, then HCL
func parseDotFile(ctx context.Context, data []byte) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr == nil {
		return cfg, nil
	}
	cfg, err := (&HCLParser{}).Parse(ctx, data)
	if err == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("%s is neither YAML (%v) nor HCL: %w", DotFile, yamlErr, err)
}

// 🔍 Validate fills defaults and rejects bad values
func (cfg *Config) Validate() error {
	policy, err := text.ParseCommaPolicy(cfg.Normalize.CommaPolicy)
	if err != nil {
		return errors.Errorf("normalize.comma_policy: %w", err)
	}
	cfg.Normalize.CommaPolicy = string(policy)

	c := &cfg.Correction
	if c.Provider == "" {
		c.Provider = correction.NoneProvider
	}
	if !slices.Contains(correction.Providers(), c.Provider) {
		return errors.Errorf("correction.provider %q is not one of: %s", c.Provider, strings.Join(correction.Providers(), ", "))
	}
	if c.Provider == correction.AzureOpenAIProvider && (c.Endpoint == "" || c.Deployment == "") {
		return errors.Errorf("correction.endpoint and correction.deployment are required for %s", c.Provider)
	}
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.Timeout == "" {
		c.timeout = defaultTimeout
		c.Timeout = defaultTimeout.String()
	} else {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return errors.Errorf("correction.timeout: %w", err)
		}
		if d <= 0 {
			return errors.Errorf("correction.timeout must be positive, got %s", c.Timeout)
		}
		c.timeout = d
	}
	if c.Concurrency < 0 {
		return errors.Errorf("correction.concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaultConcurrency
	}

	if cfg.Limits.MaxBytes < 0 {
		return errors.Errorf("limits.max_bytes must not be negative, got %d", cfg.Limits.MaxBytes)
	}
	if cfg.Limits.MaxBytes == 0 {
		cfg.Limits.MaxBytes = gate.DefaultMaxBytes
	}
	if len(cfg.Limits.Extensions) == 0 {
		cfg.Limits.Extensions = slices.Clone(gate.DefaultExtensions)
	}
	for i, ext := range cfg.Limits.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(gate.DefaultExtensions, ext) {
			return errors.Errorf("limits.extensions: %q is not a supported format, options: %s", cfg.Limits.Extensions[i], strings.Join(gate.DefaultExtensions, ", "))
		}
		cfg.Limits.Extensions[i] = ext
	}

	if cfg.Quota.DailyLimit < 0 {
		return errors.Errorf("quota.daily_limit must not be negative, got %d", cfg.Quota.DailyLimit)
	}
	if cfg.Quota.Store != "" {
		cfg.Quota.Store = filepath.Clean(cfg.Quota.Store)
	}

	for _, p := range cfg.Targets.ExtraPatterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("targets.extra_patterns: invalid pattern %q", p)
		}
	}

	return nil
}

// CommaPolicy returns the validated comma policy
func (cfg *Config) CommaPolicy() text.CommaPolicy {
	return text.CommaPolicy(cfg.Normalize.CommaPolicy)
}

// CorrectionOptions converts the correction section for correction.New
func (cfg *Config) CorrectionOptions() correction.Options {
	return correction.Options{
		Provider:   cfg.Correction.Provider,
		Endpoint:   cfg.Correction.Endpoint,
		Language:   cfg.Correction.Language,
		Timeout:    cfg.Correction.timeout,
		APIKeyEnv:  cfg.Correction.APIKeyEnv,
		Deployment: cfg.Correction.Deployment,
	}
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	quota := "unlimited"
	if cfg.Quota.DailyLimit > 0 {
		quota = fmt.Sprintf("%d/day", cfg.Quota.DailyLimit)
	}
	return fmt.Sprintf("comma=%s correction=%s(%s) max=%dB quota=%s",
		cfg.Normalize.CommaPolicy, cfg.Correction.Provider, cfg.Correction.Language, cfg.Limits.MaxBytes, quota)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// an empty document is a config with every section omitted
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
