package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/mobispr/internal/config"
	"github.com/Faultbox/mobispr/internal/logger"
	"github.com/Faultbox/mobispr/internal/render"
	"github.com/Faultbox/mobispr/internal/render/anim"
	"github.com/Faultbox/mobispr/pkg/chunk"
	"github.com/Faultbox/mobispr/pkg/formats"
)

func requireArgs(c *cli.Context, n int) {
	if c.NArg() < n {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}
}

func entryIndex(c *cli.Context, i int) (int, error) {
	s := c.Args().Get(i)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("entry must be a number, got %q", s)
	}
	return n, nil
}

func outputDir(c *cli.Context, i int, cfg *config.Config) string {
	if c.NArg() > i {
		return c.Args().Get(i)
	}
	return cfg.Export.OutputDir
}

func cmdInfo(c *cli.Context) error {
	requireArgs(c, 1)
	mgr := managerFrom(c)

	path := c.Args().First()
	archive, err := mgr.Archive(path)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Printf("Archive: %s\n", path)
	fmt.Printf("Entries: %d\n", archive.Count())
	fmt.Printf("Payload: %s\n", humanize.Bytes(uint64(archive.Size())))
	fmt.Println()

	for i, e := range archive.Entries() {
		line := fmt.Sprintf("  %3d  @%-8d %10s", i, e.Offset, humanize.Bytes(uint64(e.Size)))

		spr, err := mgr.Sprite(path, i)
		if err != nil {
			logger.Debug("entry is not a sprite", zap.Int("entry", i), zap.Error(err))
			fmt.Println(line + "  (data)")
			continue
		}
		fmt.Printf("%s  sprite: %d tiles, %d palettes (%s), %s, %d poses, %d animations\n",
			line, spr.TileCount(), spr.PaletteCount(), spr.PaletteFormat(), spr.EncodeFormat(),
			len(spr.CompositeGroups()), len(spr.AnimationGroups()))
	}
	return nil
}

func cmdList(c *cli.Context) error {
	requireArgs(c, 2)

	index, err := entryIndex(c, 1)
	if err != nil {
		return cli.Exit(err, 1)
	}
	spr, err := managerFrom(c).Sprite(c.Args().First(), index)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Printf("Scale:    %d\n", spr.Scale())
	fmt.Printf("Encoding: %s\n", spr.EncodeFormat())
	fmt.Printf("Palettes: %d x %s\n", spr.PaletteCount(), spr.PaletteFormat())
	fmt.Println()

	fmt.Printf("Tiles (%d):\n", spr.TileCount())
	for i := 0; i < spr.TileCount(); i++ {
		d, _ := spr.Dimensions(i)
		data, _ := spr.TileData(i)
		fmt.Printf("  %3d  %3dx%-3d %8s\n", i, d.Width, d.Height, humanize.Bytes(uint64(len(data))))
	}

	bounds := spr.GroupBounds()
	fmt.Printf("\nPoses (%d):\n", len(spr.CompositeGroups()))
	for i := range spr.CompositeGroups() {
		refs, _ := spr.Pose(i)
		b := bounds[i]
		fmt.Printf("  %3d  bounds (%d,%d %dx%d)\n", i, b.X, b.Y, b.Width, b.Height)
		for _, ref := range refs {
			fmt.Printf("         tile %3d at (%4d,%4d) %s\n", ref.Tile, ref.X, ref.Y, ref.Transform)
		}
	}

	fmt.Printf("\nAnimations (%d):\n", len(spr.AnimationGroups()))
	for i := range spr.AnimationGroups() {
		frames, _ := spr.Animation(i)
		fmt.Printf("  %3d  %d frames\n", i, len(frames))
		for _, f := range frames {
			fmt.Printf("         pose %3d for %3d ticks at (%4d,%4d) %s\n", f.Pose, f.Ticks, f.X, f.Y, f.Transform)
		}
	}
	return nil
}

func cmdExtract(c *cli.Context) error {
	requireArgs(c, 2)

	index, err := entryIndex(c, 1)
	if err != nil {
		return cli.Exit(err, 1)
	}
	archive, err := managerFrom(c).Archive(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	data, err := archive.Entry(index)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := fmt.Sprintf("entry_%03d.bin", index)
	if c.NArg() > 2 {
		out = c.Args().Get(2)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return cli.Exit(fmt.Errorf("creating directory: %w", err), 1)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return cli.Exit(fmt.Errorf("writing file: %w", err), 1)
	}

	fmt.Printf("Extracted: %s (%s)\n", out, humanize.Bytes(uint64(len(data))))
	return nil
}

func cmdPack(c *cli.Context) error {
	requireArgs(c, 2)

	out := c.Args().First()
	inputs := c.Args().Slice()[1:]
	if err := chunk.PackFiles(out, inputs); err != nil {
		return cli.Exit(err, 1)
	}

	info, err := os.Stat(out)
	if err != nil {
		return cli.Exit(err, 1)
	}
	logger.Sugar.Infof("packed %d entries into %s", len(inputs), out)
	fmt.Printf("Packed: %s (%d entries, %s)\n", out, len(inputs), humanize.Bytes(uint64(info.Size())))
	return nil
}

func cmdExport(c *cli.Context) error {
	requireArgs(c, 2)
	cfg := configFrom(c)

	index, err := entryIndex(c, 1)
	if err != nil {
		return cli.Exit(err, 1)
	}
	spr, err := managerFrom(c).Sprite(c.Args().First(), index)
	if err != nil {
		return cli.Exit(err, 1)
	}

	dir := outputDir(c, 2, cfg)
	n, err := exportTiles(spr, dir, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("Exported %d tiles to %s\n", n, dir)
	return nil
}

func cmdFrames(c *cli.Context) error {
	requireArgs(c, 2)
	cfg := configFrom(c)

	index, err := entryIndex(c, 1)
	if err != nil {
		return cli.Exit(err, 1)
	}
	spr, err := managerFrom(c).Sprite(c.Args().First(), index)
	if err != nil {
		return cli.Exit(err, 1)
	}

	dir := outputDir(c, 2, cfg)
	poses, err := exportPoses(spr, dir, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}
	frames, err := exportAnimations(spr, dir, cfg)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("Rendered %d poses and %d animation frames to %s\n", poses, frames, dir)
	return nil
}

// exportTiles writes every non-empty tile in the configured palette.
func exportTiles(spr *formats.Sprite, dir string, cfg *config.Config) (int, error) {
	if err := spr.SetPalette(cfg.Decode.Palette); err != nil {
		return 0, err
	}
	ext := strings.ToLower(cfg.Export.Format)
	written := 0

	for i := 0; i < spr.TileCount(); i++ {
		if d, _ := spr.Dimensions(i); d.Width == 0 || d.Height == 0 {
			logger.Debug("skipping empty tile", zap.Int("tile", i))
			continue
		}
		tex, err := spr.Tile(i)
		if err != nil {
			return written, fmt.Errorf("decoding tile %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("tile_%03d.%s", i, ext))
		if err := render.Save(tex.NRGBA(), path, ext); err != nil {
			return written, err
		}
		written++
		logger.Debug("exported tile", zap.Int("tile", i), zap.String("path", path))
	}
	return written, nil
}

// exportPoses renders every non-empty composite pose.
func exportPoses(spr *formats.Sprite, dir string, cfg *config.Config) (int, error) {
	ext := strings.ToLower(cfg.Export.Format)
	written := 0

	for i := range spr.CompositeGroups() {
		canvas, err := render.RenderPose(spr, cfg.Decode.Palette, i)
		if errors.Is(err, render.ErrEmpty) {
			logger.Debug("skipping empty pose", zap.Int("pose", i))
			continue
		}
		if err != nil {
			return written, fmt.Errorf("rendering pose %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("pose_%03d.%s", i, ext))
		if err := render.Save(canvas.Image, path, ext); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// exportAnimations renders each animation as a numbered frame sequence and
// prints its timeline at the configured tick length.
func exportAnimations(spr *formats.Sprite, dir string, cfg *config.Config) (int, error) {
	ext := strings.ToLower(cfg.Export.Format)
	tick := time.Duration(cfg.Export.TickMS) * time.Millisecond
	written := 0

	for a := range spr.AnimationGroups() {
		canvases, err := render.RenderAnimation(spr, cfg.Decode.Palette, a)
		if errors.Is(err, render.ErrEmpty) {
			logger.Debug("skipping empty animation", zap.Int("animation", a))
			continue
		}
		if err != nil {
			return written, fmt.Errorf("rendering animation %d: %w", a, err)
		}
		for i, canvas := range canvases {
			path := filepath.Join(dir, fmt.Sprintf("anim_%02d_%03d.%s", a, i, ext))
			if err := render.Save(canvas.Image, path, ext); err != nil {
				return written, err
			}
			written++
		}

		player, err := anim.NewPlayer(spr, a, tick)
		if err != nil {
			return written, err
		}
		player.SetLoop(false)
		fmt.Printf("animation %d: %d frames, %v\n", a, player.Len(), player.Duration())
		var at time.Duration
		for !player.Done() {
			f := player.Advance(0)
			fmt.Printf("  %8v  frame %3d  pose %3d\n", at, player.FrameIndex(), f.Pose)
			d := time.Duration(max(f.Ticks, 1)) * tick
			at += d
			player.Advance(d)
		}
	}
	return written, nil
}
