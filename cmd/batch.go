package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/region"
)

var (
	batchAll    bool
	batchHazard string
	batchOut    outputFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch [region...]",
	Short: "Export results, surfaces and summaries for many regions",
	Long:  "Exports every analysed hazard of each named region (or of every catalog region with --all) using default selections. Failed artifacts are logged and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		connector, err := openStore()
		if err != nil {
			return err
		}
		names := args
		if batchAll {
			infos, err := region.ListRegions(ctx, connector, cfg.Store.CatalogDB)
			if err != nil {
				return eris.Wrap(err, "batch: list regions")
			}
			names = names[:0]
			for _, info := range infos {
				names = append(names, info.Name)
			}
		}
		if len(names) == 0 {
			return eris.New("batch: name at least one region or pass --all")
		}

		dir, formats := batchOut.resolve()
		pool, closePool, err := publishPool(ctx, formats)
		if err != nil {
			return err
		}
		defer closePool()

		return processBatch(ctx, names, cfg.Batch.Concurrency, func(ctx context.Context, name string) (int, int, error) {
			return exportRegion(ctx, connector, name, dir, formats, pool)
		})
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "process every region in the catalog")
	batchCmd.Flags().StringVar(&batchHazard, "hazard", "", "only export this hazard")
	batchOut.register(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

// regionFunc exports one region and reports artifacts written and failed.
type regionFunc func(ctx context.Context, name string) (written, failed int, err error)

// processBatch runs fn over regions with bounded concurrency. A failing
// region is logged and does not stop the others.
func processBatch(ctx context.Context, names []string, concurrency int, fn regionFunc) error {
	zap.L().Info("processing batch",
		zap.Int("regions", len(names)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, artifacts atomic.Int64

	for _, name := range names {
		g.Go(func() error {
			log := zap.L().With(zap.String("region", name))

			written, bad, err := fn(gctx, name)
			artifacts.Add(int64(written))
			if err != nil {
				failed.Add(1)
				log.Error("region failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("region complete",
				zap.Int("written", written),
				zap.Int("failed", bad),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "batch interrupted")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("artifacts", artifacts.Load()),
	)
	return nil
}

// exportRegion exports every hazard the region carries. Each hazard gets its
// own Region value since selections are not safe to share.
func exportRegion(ctx context.Context, connector db.Connector, name, dir string, formats []string, pool db.Pool) (int, int, error) {
	opts, err := regionOptions()
	if err != nil {
		return 0, 0, err
	}
	hs := []model.Hazard{model.Hazard(batchHazard)}
	if batchHazard == "" {
		hs, err = region.New(connector, name, opts...).Hazards(ctx)
		if err != nil {
			return 0, 0, err
		}
	}

	var written, failed int
	for _, h := range hs {
		r := region.New(connector, name, opts...)
		if err := r.Select(ctx, model.Selection{Hazard: h}); err != nil {
			zap.L().Warn("hazard skipped", zap.String("region", name), zap.String("hazard", string(h)), zap.Error(err))
			failed++
			continue
		}
		w, err := newWriter(r, dir, formats, pool)
		if err != nil {
			return written, failed, err
		}
		n, bad := exportSelection(ctx, r, w, true, true)
		written += n
		failed += bad
	}
	return written, failed, nil
}
