package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ayusman/hanuman/internal/app"
	"github.com/ayusman/hanuman/internal/preview"
	"github.com/ayusman/hanuman/internal/shape"
)

var (
	demoFPS  int
	demoSeed uint64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive the particle field from the keyboard in the terminal",
	Long: `Render the particle field as terminal glyphs with a keyboard hand:
  p       pinch (advance the shape)
  f       flick the wrist (explosion)
  arrows  move the hand
  + / -   open or close the hand (zoom)
  h       hide or show the hand
  r       toggle rotation follow
  q, Esc  quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().IntVar(&demoFPS, "fps", 30, "frames per second")
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 0, "geometry seed (0 for random)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	if demoFPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", demoFPS)
	}

	cfg := app.Config{RenderFPS: demoFPS}
	if demoSeed != 0 {
		cfg.Set = shape.FromSeed(demoSeed)
	}
	engine := app.New(cfg)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	return runDemoLoop(engine, preview.NewTerminal(screen), demoFPS)
}

// runDemoLoop feeds the puppet hand into engine and draws one frame per tick
// until the quit key.
func runDemoLoop(engine *app.App, term *preview.Terminal, fps int) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := term.Screen().PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	puppet := preview.NewPuppet()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch puppet.HandleKey(ev) {
				case preview.KeyQuit:
					return nil
				case preview.KeyToggleRotation:
					if err := engine.SetRotationFollow(!engine.RotationFollow()); err != nil {
						return err
					}
				}
			case *tcell.EventResize:
				term.Screen().Sync()
			}
		case <-ticker.C:
			engine.Feed(puppet.Hand())
			snap := engine.Tick(time.Since(start).Seconds())
			term.Draw(snap.Frame, preview.StatusOf(snap, engine.RotationFollow()))
		}
	}
}
