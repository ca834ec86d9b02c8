package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/ingest"
	"github.com/sells-group/hazus-cli/internal/model"
)

var (
	ingestOut       outputFlags
	ingestKeepDB    bool
	ingestSummaries bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <package.hpr>...",
	Short: "Restore Hazus packages and export their results",
	Long:  "Unzips each package, restores its backup as bk_<name>, exports every hazard it carries with default selections, then drops the restored database and removes the extracted files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}
		connector, err := db.Open(cfg.Store.Driver, cfg.Store.DSN, queryTimeout())
		if err != nil {
			return err
		}
		p := ingest.New(connector, ingest.Options{TempDir: cfg.Ingest.TempDir, KeepFiles: cfg.Ingest.KeepFiles})

		var failed int
		for _, path := range args {
			if err := ingestPackage(ctx, p, path); err != nil {
				failed++
				zap.L().Error("package failed", zap.String("package", path), zap.Error(err))
			}
		}
		if failed == len(args) {
			return eris.Errorf("ingest: all %d packages failed", failed)
		}
		return nil
	},
}

func init() {
	ingestOut.register(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestKeepDB, "keep-db", false, "leave the restored database in place")
	ingestCmd.Flags().BoolVar(&ingestSummaries, "summaries", true, "also export summary tables")
	rootCmd.AddCommand(ingestCmd)
}

func ingestPackage(ctx context.Context, p *ingest.Pipeline, path string) error {
	pkg, err := p.Ingest(ctx, path)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("package", path), zap.String("database", pkg.Database))
	defer func() {
		if ingestKeepDB {
			log.Info("restored database kept")
			return
		}
		// the caller's context may already be cancelled
		if err := p.Teardown(context.WithoutCancel(ctx), pkg); err != nil {
			log.Warn("teardown failed", zap.Error(err))
		}
	}()

	opts, err := regionOptions()
	if err != nil {
		return err
	}
	r, err := p.Region(pkg, opts...)
	if err != nil {
		return err
	}
	dir, formats := ingestOut.resolve()
	pool, closePool, err := publishPool(ctx, formats)
	if err != nil {
		return err
	}
	defer closePool()

	w, err := newWriter(r, dir, formats, pool)
	if err != nil {
		return err
	}
	for _, h := range pkg.Meta.Hazards {
		if err := r.Select(ctx, model.Selection{Hazard: h}); err != nil {
			log.Warn("hazard skipped", zap.String("hazard", string(h)), zap.Error(err))
			continue
		}
		written, failed := exportSelection(ctx, r, w, ingestSummaries, true)
		log.Info("hazard exported",
			zap.String("hazard", string(h)),
			zap.String("version", pkg.Meta.HazusVersion),
			zap.Int("written", written),
			zap.Int("failed", failed),
		)
	}
	return nil
}
