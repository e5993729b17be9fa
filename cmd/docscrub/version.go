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

package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/docscrub/cmd/docscrub/opts"
	"github.com/walteh/docscrub/pkg/correction"
	"github.com/walteh/docscrub/pkg/sanitize"
)

// collaboratorModules are the modules whose versions decide how documents
// get corrected and how quota is stored
var collaboratorModules = []string{
	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai",
	"modernc.org/sqlite",
}

// VersionInfo describes the binary and what it can sanitize
type VersionInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	Formats    []string          `json:"formats"`
	Providers  []string          `json:"providers"`
	Correction string            `json:"correction,omitempty"`
	Modules    map[string]string `json:"modules,omitempty"`
}

// GetVersionInfo reads build info and, when o carries a config, the active
// correction provider
func GetVersionInfo(o *opts.RootOpts) *VersionInfo {
	info := &VersionInfo{
		Version:   "dev",
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Formats:   sanitize.Extensions(),
		Providers: correction.Providers(),
	}
	if o != nil && o.Config != nil {
		info.Correction = fmt.Sprintf("%s (%s)", o.Config.Correction.Provider, o.Config.Correction.Language)
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	for _, dep := range buildInfo.Deps {
		for _, path := range collaboratorModules {
			if dep.Path == path {
				if info.Modules == nil {
					info.Modules = map[string]string{}
				}
				info.Modules[path] = dep.Version
			}
		}
	}
	return info
}

// FormatVersion renders info for the terminal
func FormatVersion(info *VersionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 docscrub %s", info.Version)
	if info.Revision != "" {
		fmt.Fprintf(&b, " (%s", info.Revision)
		if info.Modified {
			b.WriteString(", modified")
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, "\nGo:          %s %s\n", info.GoVersion, info.Platform)
	fmt.Fprintf(&b, "Formats:     %s\n", strings.Join(info.Formats, " "))
	fmt.Fprintf(&b, "Providers:   %s\n", strings.Join(info.Providers, " "))
	if info.Correction != "" {
		fmt.Fprintf(&b, "Correction:  %s\n", info.Correction)
	}
	for _, path := range collaboratorModules {
		if v, ok := info.Modules[path]; ok {
			fmt.Fprintf(&b, "Module:      %s %s\n", path, v)
		}
	}
	return b.String()
}

// newVersionCmd prints build information and the supported formats
func newVersionCmd(o *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version, supported formats and correction providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo(o)
			if !asJSON {
				fmt.Fprint(cmd.OutOrStdout(), FormatVersion(info))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
