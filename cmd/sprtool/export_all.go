package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/mobispr/internal/assets"
	"github.com/Faultbox/mobispr/internal/config"
	"github.com/Faultbox/mobispr/internal/logger"
	"github.com/Faultbox/mobispr/pkg/formats"
)

// exportResult summarizes one archive entry processed by export-all.
type exportResult struct {
	entry   int
	tiles   int
	poses   int
	skipped bool // entry does not start with the sprite magic
	err     error
}

func cmdExportAll(c *cli.Context) error {
	requireArgs(c, 1)
	cfg := configFrom(c)
	dir := outputDir(c, 1, cfg)

	start := time.Now()
	results, err := exportEntries(managerFrom(c), c.Args().First(), dir, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}

	var tiles, poses, sprites, skipped int
	var errs []error
	for _, r := range results {
		switch {
		case r.skipped:
			skipped++
		case r.err != nil:
			errs = append(errs, r.err)
		default:
			sprites++
			tiles += r.tiles
			poses += r.poses
		}
	}

	fmt.Printf("Exported %d sprites (%d tiles, %d poses) to %s in %s\n",
		sprites, tiles, poses, dir, time.Since(start).Round(time.Millisecond))
	if skipped > 0 {
		fmt.Printf("Skipped %d non-sprite entries\n", skipped)
	}
	if len(errs) > 0 {
		return cli.Exit(errors.Join(errs...), 1)
	}
	return nil
}

// exportEntries processes every entry of the archive at path with at most
// cfg.Export.Workers entries in flight. Results are indexed by entry.
func exportEntries(mgr *assets.Manager, path, dir string, cfg *config.Config) ([]exportResult, error) {
	archive, err := mgr.Archive(path)
	if err != nil {
		return nil, err
	}

	log := logger.Named("export")
	results := make([]exportResult, archive.Count())
	swg := sizedwaitgroup.New(cfg.Export.Workers)

	for i := 0; i < archive.Count(); i++ {
		swg.Add()
		go func(i int) {
			defer swg.Done()

			r := exportEntry(mgr, path, i, filepath.Join(dir, fmt.Sprintf("entry_%03d", i)), cfg)
			if r.err != nil {
				log.Warn("export failed", zap.Int("entry", i), zap.Error(r.err))
			}
			results[i] = r
		}(i)
	}
	swg.Wait()
	return results, nil
}

func exportEntry(mgr *assets.Manager, path string, index int, dir string, cfg *config.Config) exportResult {
	res := exportResult{entry: index}

	archive, err := mgr.Archive(path)
	if err != nil {
		res.err = err
		return res
	}
	data, err := archive.Entry(index)
	if err != nil {
		res.err = err
		return res
	}
	if !bytes.HasPrefix(data, formats.SpriteMagic[:]) {
		res.skipped = true
		return res
	}

	spr, err := mgr.Sprite(path, index)
	if err != nil {
		res.err = err
		return res
	}

	if res.tiles, err = exportTiles(spr, dir, cfg); err != nil {
		res.err = fmt.Errorf("entry %d: %w", index, err)
		return res
	}
	if res.poses, err = exportPoses(spr, dir, cfg); err != nil {
		res.err = fmt.Errorf("entry %d: %w", index, err)
		return res
	}

	logger.Named("export").Debug("exported entry",
		zap.Int("entry", index),
		zap.Int("tiles", res.tiles),
		zap.Int("poses", res.poses))
	return res
}
