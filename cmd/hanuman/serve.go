package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/hanuman/internal/app"
	"github.com/ayusman/hanuman/internal/capture"
	"github.com/ayusman/hanuman/internal/chime"
	"github.com/ayusman/hanuman/internal/config"
	"github.com/ayusman/hanuman/internal/detector"
	"github.com/ayusman/hanuman/internal/imagegen"
	"github.com/ayusman/hanuman/internal/plugin"
	"github.com/ayusman/hanuman/internal/server"
	"github.com/ayusman/hanuman/internal/shape"
	"github.com/ayusman/hanuman/internal/store"
	"github.com/ayusman/hanuman/internal/tray"
)

const shutdownTimeout = 5 * time.Second

var (
	serveAddr     string
	serveNoCamera bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine with the webcam and serve the viewer",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveNoCamera, "no-camera", false, "run without the webcam")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveNoCamera {
		cfg.Camera.Enabled = false
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	engine := app.New(engineConfig(cfg, st))

	var manifester *imagegen.Manifester
	if cfg.Manifest.Enabled {
		manifester, err = newManifester(cfg, st)
		if err != nil {
			return err
		}
		defer manifester.Close()
	}

	var bell *chime.Chime
	if cfg.Audio.Enabled {
		bell = chime.New()
		if err := bell.Initialize(); err != nil {
			log.Printf("Audio disabled: %v", err)
			bell = nil
		} else {
			defer bell.Close()
		}
	}

	var menu *tray.Tray
	if cfg.Tray.Enabled {
		snap := engine.Snapshot()
		menu = tray.New(engine.RotationFollow(), snap.Morph.Target.Title())
	}

	engine.OnShapeChange(func(id shape.ID) {
		log.Printf("Shape changed to %s", id.Title())
		if manifester != nil {
			manifester.Notify(id)
		}
		if bell != nil {
			if err := bell.Play(id); err != nil {
				log.Printf("Failed to play chime: %v", err)
			}
		}
		if menu != nil {
			menu.SetShape(id.Title())
		}
	})

	srvCfg := serverConfig(cfg, st, engine)
	if manifester != nil {
		srvCfg.Summoner = manifester
	}
	if menu != nil {
		srvCfg.OnRotationChange = func(follow bool) { menu.SetRotationFollow(follow, false) }
	}
	if srvCfg.StaticDir != "" {
		log.Printf("Serving static files from: %s", srvCfg.StaticDir)
	}

	srv := server.New(srvCfg)
	defer srv.Close()

	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
	}()

	if menu != nil {
		menu.OnRotationToggle(func(follow bool) {
			if err := engine.SetRotationFollow(follow); err != nil {
				log.Printf("Failed to save rotation setting: %v", err)
			}
		})
		menu.OnOpenViewer(func() { openBrowser(viewerURL(cfg.Server.Addr)) })
		menu.OnQuit(stop)
		go func() {
			<-ctx.Done()
			menu.Quit()
		}()
		menu.Run()
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	default:
		return nil
	}
}

// engineConfig builds the app configuration, opening the webcam and the hand
// detector when the camera is enabled. Without a detector the engine runs
// without capture.
func engineConfig(cfg config.Config, st *store.Store) app.Config {
	ac := app.Config{
		Settings:        st.Settings(),
		RenderFPS:       cfg.Render.FPS,
		IdleFPS:         cfg.Camera.IdleFPS,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		MotionThreshold: cfg.Camera.MotionThreshold,
		IdleTimeout:     cfg.Camera.IdleTimeout(),
		RotationFollow:  cfg.Render.RotationFollow,
	}
	if cfg.Render.Seed != 0 {
		ac.Set = shape.FromSeed(cfg.Render.Seed)
	}
	if !cfg.Camera.Enabled {
		return ac
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Printf("Hand tracking disabled: %v", err)
		return ac
	}
	ac.Detector = det
	ac.Camera = capture.NewCamera(capture.Config{
		DeviceID: cfg.Camera.DeviceID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.IdleFPS,
	})
	return ac
}

// serverConfig wires the HTTP server to engine. The MJPEG stream is only
// offered when the engine actually owns a camera.
func serverConfig(cfg config.Config, st *store.Store, engine *app.App) server.Config {
	return server.Config{
		StaticDir: findWebDir(cfg.Server),
		Store:     st,
		Engine:    engine,
		Stream:    engine.Camera() != nil,
	}
}

func newManifester(cfg config.Config, st *store.Store) (*imagegen.Manifester, error) {
	plugins := plugin.NewManager(findPluginDir(cfg.Manifest.PluginDir))
	if err := plugins.Discover(); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}
	log.Printf("Found %d plugin(s) in %s", len(plugins.List()), plugins.PluginDir())

	executor := plugin.NewExecutor(cfg.Manifest.Timeout())
	m := imagegen.New(plugins, executor, st.Manifestations(), imagegen.Options{
		Plugin: cfg.Manifest.Plugin,
		Prompt: cfg.Manifest.Prompt,
		Model:  cfg.Manifest.Model,
	})
	m.OnReady(func(ms *store.Manifestation) {
		log.Printf("Manifestation available at /api/manifestations/%s/image", ms.ID)
	})
	return m, nil
}

// findWebDir returns the configured static directory, or the first of "web",
// "../web" and <data_dir>/web that exists.
func findWebDir(cfg config.Server) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}
	return firstDir("web", "../web", filepath.Join(cfg.DataDir, "web"))
}

// findPluginDir prefers the configured directory and falls back to the
// plugins directory of a source checkout.
func findPluginDir(dir string) string {
	if found := firstDir(dir, "plugins"); found != "" {
		return found
	}
	return dir
}

func firstDir(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func viewerURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", url, err)
	}
}
