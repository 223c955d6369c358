package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/wanderspectrum/internal/app"
	"github.com/rook-computer/wanderspectrum/internal/render"
	"github.com/rook-computer/wanderspectrum/internal/settings"
	"github.com/rook-computer/wanderspectrum/internal/system"
	"github.com/rook-computer/wanderspectrum/internal/visibility"
	"github.com/rook-computer/wanderspectrum/internal/web"
)

// The terminal has far fewer pixels than a display, so the simulator defaults to one
// cell per pixel.
const simPixelSize = 1

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve the settings page from this directory (optional); when empty, the embedded page is served")
	settingsPath := flag.String("settings", "", "persistent settings file; when empty, settings live in memory")
	logPath := flag.String("log", "", "write debug logs to this file (the terminal is taken by the animation)")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr to this file; also configurable via "+system.EnvStdioLog)
	flag.Parse()

	if *stdioLog == "" {
		*stdioLog = os.Getenv(system.EnvStdioLog)
	}
	if err := system.RedirectStdIO(*stdioLog); err != nil {
		fmt.Println("stdio log redirect error:", err)
	}

	var logger app.Logger = app.NoopLogger{}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println("log open error:", err)
			os.Exit(2)
		}
		defer f.Close()
		logger = app.NewFileLogger(f)
	}

	base := settings.Defaults()
	base.PixelSize = simPixelSize
	simDefaults, err := settings.DefaultsFromEnv(base)
	if err != nil {
		fmt.Println("settings defaults error:", err)
		os.Exit(2)
	}

	var store settings.Store = settings.NewMemoryStore()
	if *settingsPath != "" {
		fileStore, err := settings.OpenFileStore(*settingsPath)
		if err != nil {
			logger.Errorf("sim", "settings file: %v", err)
		}
		logger.Infof("sim", "settings stored in %s", fileStore.Path())
		store = fileStore
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := visibility.NewSwitch()
	term := render.NewTerminalRenderer()
	term.Logger = logger

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.Logger = logger

	a := app.New(store, term, sw, server)
	a.Defaults = simDefaults
	a.Logger = logger
	server.Handler = web.NewDefaultMux(*staticDir, web.APIV1Config{Deps: web.APIV1Deps{
		Settings:   store,
		Defaults:   simDefaults,
		Status:     a.Status,
		Visibility: sw,
		Logger:     logger,
	}})

	term.OnToggle = func() { sw.Toggle() }
	term.OnExit = func() { a.Exit(nil) }
	sw.Set(true)

	err = a.Run(processCtx)
	// The terminal is restored by now; safe to print again.
	if err != nil {
		fmt.Println("simulator error:", err)
		os.Exit(1)
	}
	fmt.Println("WanderSpectrum simulator stopped")
	fmt.Println("API: http://" + trimLeadingColon(server.Addr) + "/api/v1/")
}

func trimLeadingColon(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}
