package main

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ayusman/hanuman/internal/app"
	"github.com/ayusman/hanuman/internal/fixtures"
	"github.com/ayusman/hanuman/internal/morph"
	"github.com/ayusman/hanuman/internal/preview"
	"github.com/ayusman/hanuman/internal/session"
	"github.com/ayusman/hanuman/internal/shape"
)

// snapshotFPS is the simulated frame rate of a headless run.
const snapshotFPS = 60

var (
	snapshotShape  string
	snapshotSeed   uint64
	snapshotOut    string
	snapshotWidth  int
	snapshotHeight int
	snapshotCopy   bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one settled shape to a PNG without a camera",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotShape, "shape", "EARTH", "target shape")
	snapshotCmd.Flags().Uint64Var(&snapshotSeed, "seed", 1, "geometry seed")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "hanuman.png", "output file")
	snapshotCmd.Flags().IntVar(&snapshotWidth, "width", preview.DefaultWidth, "image width")
	snapshotCmd.Flags().IntVar(&snapshotHeight, "height", preview.DefaultHeight, "image height")
	snapshotCmd.Flags().BoolVar(&snapshotCopy, "copy", false, "copy the output path to the clipboard")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	target, err := shape.Parse(snapshotShape)
	if err != nil {
		return err
	}
	if snapshotWidth <= 0 || snapshotHeight <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", snapshotWidth, snapshotHeight)
	}

	engine := app.New(app.Config{Set: shape.FromSeed(snapshotSeed), RenderFPS: snapshotFPS})
	snap := settleOn(engine, target)

	status := preview.StatusOf(snap, engine.RotationFollow())
	if err := preview.SavePNG(snapshotOut, snap.Frame, status, snapshotWidth, snapshotHeight); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	path, err := filepath.Abs(snapshotOut)
	if err != nil {
		path = snapshotOut
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, target.Title())

	if snapshotCopy {
		if err := clipboard.WriteAll(path); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}
	return nil
}

// settleOn pinches a still hand until target is reached, letting each morph
// finish, and returns the settled snapshot.
func settleOn(engine *app.App, target shape.ID) session.Snapshot {
	settle := int(1/morph.Step) + 1
	frame := 0
	tick := func() session.Snapshot {
		frame++
		return engine.Tick(float64(frame) / snapshotFPS)
	}

	var snap session.Snapshot
	for _, hand := range fixtures.Pinches(int(target)) {
		engine.Feed(hand)
		snap = tick()
		for range settle {
			snap = tick()
		}
	}
	return snap
}
