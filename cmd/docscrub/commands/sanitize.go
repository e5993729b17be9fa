package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/docscrub/cmd/docscrub/opts"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/log"
	"github.com/walteh/docscrub/pkg/sanitize"
	"github.com/walteh/docscrub/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// OutputSuffix is inserted before the extension of sanitized copies
const OutputSuffix = ".scrubbed"

// NewSanitizeCmd creates the sanitize command
func NewSanitizeCmd(o *opts.RootOpts) *cobra.Command {
	var (
		output string
		outDir string
		client string
	)

	cmd := &cobra.Command{
		Use:   "sanitize <file>...",
		Short: "Normalize text and clear metadata in documents",
		Long: `Sanitize rewrites the visible text of each document and clears its
authoring metadata. It will:
1. Check extension, size and daily quota
2. Clear metadata fields (OPC, ODF or PDF)
3. Normalize and correct every text span
4. Write a sanitized copy next to the input (or to --output / --out-dir)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return errors.Errorf("--output needs exactly one input, got %d", len(args))
			}

			ctx := cmd.Context()
			o.Console.Header("sanitizing documents")
			progress := status.NewDefaultEntryFormatter()

			for i, path := range args {
				dst := output
				if dst == "" {
					dst = OutputPath(path, outDir)
				}
				if err := SanitizeFile(ctx, o, path, dst, client); err != nil {
					return errors.Errorf("sanitizing %s: %w", path, err)
				}
				zerolog.Ctx(ctx).Debug().Msg(progress.FormatProgress(i+1, len(args)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for sanitized copies")
	cmd.Flags().StringVar(&client, "client", "", "quota bucket to charge")

	return cmd
}

// OutputPath names the sanitized copy of path, e.g. plan.docx -> plan.scrubbed.docx
func OutputPath(path, outDir string) string {
	dir, base := filepath.Split(path)
	if outDir != "" {
		dir = outDir
	}
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+OutputSuffix+ext)
}

// SanitizeFile runs one document through the gate and engine and writes dst
func SanitizeFile(ctx context.Context, o *opts.RootOpts, path, dst, client string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading input: %w", err)
	}

	ticket, err := o.Gate.Admit(ctx, gate.Request{
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
		Client:   client,
		Data:     data,
	})
	if err != nil {
		return err
	}

	res, err := o.Engine.Process(ctx, ticket, data)
	if err != nil {
		return err
	}

	o.Console.StartDocument(ctx, log.DocumentOperation{
		Filename: ticket.Filename(),
		Format:   string(res.Format),
		Size:     ticket.Size(),
	})
	o.Console.LogReport(ctx, res.Report)
	defer o.Console.EndDocument(ctx)

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(dst, res.Data, 0o644); err != nil {
		return errors.Errorf("writing output: %w", err)
	}

	printResult(ticket, res, dst)
	return nil
}

func printResult(ticket gate.Ticket, res *sanitize.Result, dst string) {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Printfln("%s → %s", ticket.Filename(), dst)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📝"}).Println(res.Summary)
	pterm.Debug.WithPrefix(pterm.Prefix{Text: "🔑"}).Printfln("blake3 %s request %s", res.Digest, res.RequestID)

	if u := ticket.Usage(); u.Remaining() >= 0 {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Printfln("%d of %d documents left today", u.Remaining(), u.Limit)
	}
}
