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
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// hclConfig mirrors Config with one optional block per section
type hclConfig struct {
	Normalize *struct {
		CommaPolicy string `hcl:"comma_policy,optional"`
	} `hcl:"normalize,block"`
	Correction *struct {
		Provider    string `hcl:"provider,optional"`
		Endpoint    string `hcl:"endpoint,optional"`
		Language    string `hcl:"language,optional"`
		Timeout     string `hcl:"timeout,optional"`
		Concurrency int    `hcl:"concurrency,optional"`
		APIKeyEnv   string `hcl:"api_key_env,optional"`
		Deployment  string `hcl:"deployment,optional"`
	} `hcl:"correction,block"`
	Limits *struct {
		MaxBytes   int64    `hcl:"max_bytes,optional"`
		Extensions []string `hcl:"extensions,optional"`
	} `hcl:"limits,block"`
	Quota *struct {
		DailyLimit int    `hcl:"daily_limit,optional"`
		Store      string `hcl:"store,optional"`
	} `hcl:"quota,block"`
	Targets *struct {
		ExtraPatterns []string `hcl:"extra_patterns,optional"`
	} `hcl:"targets,block"`
}

// 📝 Parse parses the config from HCL. The env object exposes environment
// variables, e.g. endpoint = env.LT_ENDPOINT.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{}
	if n := hclCfg.Normalize; n != nil {
		cfg.Normalize.CommaPolicy = n.CommaPolicy
	}
	if c := hclCfg.Correction; c != nil {
		cfg.Correction = CorrectionConfig{
			Provider:    c.Provider,
			Endpoint:    c.Endpoint,
			Language:    c.Language,
			Timeout:     c.Timeout,
			Concurrency: c.Concurrency,
			APIKeyEnv:   c.APIKeyEnv,
			Deployment:  c.Deployment,
		}
	}
	if l := hclCfg.Limits; l != nil {
		cfg.Limits = LimitsConfig{MaxBytes: l.MaxBytes, Extensions: l.Extensions}
	}
	if q := hclCfg.Quota; q != nil {
		cfg.Quota = QuotaConfig{DailyLimit: q.DailyLimit, Store: q.Store}
	}
	if t := hclCfg.Targets; t != nil {
		cfg.Targets.ExtraPatterns = t.ExtraPatterns
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
