package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/docscrub/cmd/docscrub/opts"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/sanitize"
	"gitlab.com/tozd/go/errors"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the text entries and metadata a sanitize run would touch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Errorf("reading input: %w", err)
			}

			// inspecting never charges the quota
			g := gate.New(gate.Options{
				MaxBytes:   o.Config.Limits.MaxBytes,
				Extensions: o.Config.Limits.Extensions,
				Check:      sanitize.Check,
			})
			ticket, err := g.Admit(ctx, gate.Request{Filename: filepath.Base(path), Size: int64(len(data)), Data: data})
			if err != nil {
				return err
			}

			ins, err := o.Engine.Inspect(ctx, ticket, data)
			if err != nil {
				return errors.Errorf("inspecting %s: %w", path, err)
			}

			return pterm.DefaultTable.WithHasHeader().WithData(inspectionTable(ins)).Render()
		},
	}

	return cmd
}

// inspectionTable renders text targets first, then metadata entries by name
func inspectionTable(ins *sanitize.Inspection) pterm.TableData {
	data := pterm.TableData{{"Entry", "Kind", "Tag", "Count"}}
	for _, e := range ins.Entries {
		tag := string(e.Tag)
		if tag == "" {
			tag = "-"
		}
		data = append(data, []string{e.Name, "text", tag, fmt.Sprintf("%d spans", e.Spans)})
	}

	names := make([]string, 0, len(ins.Metadata))
	for name := range ins.Metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data = append(data, []string{name, "metadata", "-", fmt.Sprintf("%d fields", ins.Metadata[name])})
	}
	return data
}
