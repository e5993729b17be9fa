package opts

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/config"
	"github.com/walteh/docscrub/pkg/correction"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/log"
	"github.com/walteh/docscrub/pkg/sanitize"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger
	Gate    *gate.Gate
	Engine  *sanitize.Engine

	closers []io.Closer
}

// Build wires the gate and engine from cfg
func Build(ctx context.Context, cfg *config.Config, console io.Writer) (*RootOpts, error) {
	o := &RootOpts{
		Config:  cfg,
		Console: log.New(console, *zerolog.Ctx(ctx)),
	}

	var quota gate.Quota
	switch {
	case cfg.Quota.Store != "":
		q, err := gate.OpenSQLiteQuota(ctx, cfg.Quota.Store, cfg.Quota.DailyLimit, nil)
		if err != nil {
			return nil, errors.Errorf("opening quota store: %w", err)
		}
		o.closers = append(o.closers, q)
		quota = q
	case cfg.Quota.DailyLimit > 0:
		quota = gate.NewDailyQuota(cfg.Quota.DailyLimit, nil)
	}

	o.Gate = gate.New(gate.Options{
		MaxBytes:   cfg.Limits.MaxBytes,
		Extensions: cfg.Limits.Extensions,
		Quota:      quota,
		Check:      sanitize.Check,
	})

	corrector, err := correction.New(ctx, cfg.CorrectionOptions())
	if err != nil {
		o.Close()
		return nil, errors.Errorf("creating corrector: %w", err)
	}

	o.Engine = sanitize.New(sanitize.Options{
		CommaPolicy:   cfg.CommaPolicy(),
		Corrector:     corrector,
		Language:      cfg.Correction.Language,
		Concurrency:   cfg.Correction.Concurrency,
		ExtraPatterns: cfg.Targets.ExtraPatterns,
	})

	return o, nil
}

// Close releases the quota store, returning the first failure
func (o *RootOpts) Close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = errors.Errorf("closing: %w", err)
		}
	}
	o.closers = nil
	return first
}
