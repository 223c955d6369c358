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
	"github.com/rook-computer/wanderspectrum/internal/render/layout"
	"github.com/rook-computer/wanderspectrum/internal/settings"
	"github.com/rook-computer/wanderspectrum/internal/system"
	"github.com/rook-computer/wanderspectrum/internal/visibility"
	"github.com/rook-computer/wanderspectrum/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println("WanderSpectrum starting")

	serverDefaults, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		fmt.Println("server config error:", err)
		return 2
	}

	// Flags
	debug := flag.Bool("debug", false, "enable debug logging to ./wanderspectrum-debug.log and draw the status overlay")
	noHUD := flag.Bool("no-hud", false, "do not draw the status overlay in debug mode")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+system.EnvStdioLog)
	settingsPath := flag.String("settings", "./wanderspectrum.json", "persistent settings file")
	fbPath := flag.String("fb", render.DefaultFramebuffer, "framebuffer device")
	logicalSize := flag.String("logical-size", "", "draw at this WxH and scale to the framebuffer (e.g. 640x360); empty uses the framebuffer resolution")
	listenAddr := flag.String("listen", serverDefaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", serverDefaults.DevMode, "enable dev mode (permissive CORS); also configurable via "+web.EnvDevMode)
	startHidden := flag.Bool("start-hidden", false, "stay idle until shown via F5 or the API")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(system.EnvStdioLog)
	}
	if logPath != "" {
		if err := system.RedirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./wanderspectrum-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	logicalWidth, logicalHeight, err := layout.ParseSize(*logicalSize)
	if err != nil {
		fmt.Println("logical size error:", err)
		return 2
	}

	defaults, err := settings.DefaultsFromEnv(settings.Defaults())
	if err != nil {
		fmt.Println("settings defaults error:", err)
		return 2
	}
	store, err := settings.OpenFileStore(*settingsPath)
	if err != nil {
		// The store starts empty; the next save rewrites the file.
		logger.Errorf("main", "settings file: %v", err)
	}
	logger.Infof("main", "settings stored in %s", store.Path())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := visibility.NewSwitch()
	renderer := render.NewFBRenderer()
	renderer.Path = *fbPath
	renderer.LogicalWidth, renderer.LogicalHeight = logicalWidth, logicalHeight
	renderer.Logger = logger
	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.Logger = logger

	a := app.New(store, renderer, sw, server)
	a.Defaults = defaults
	a.Logger = logger
	server.Handler = web.NewDefaultMux("", web.APIV1Config{Deps: web.APIV1Deps{
		Settings:   store,
		Defaults:   defaults,
		Status:     a.Status,
		Visibility: sw,
		Logger:     logger,
	}})
	if *debug && !*noHUD {
		hud := render.NewHUD(app.HUDLines(a.Status))
		hud.Logger = logger
		renderer.Overlay = hud
	}

	// Switch console to KD_GRAPHICS to suppress hardware cursor
	restoreConsole := system.TakeConsole(logger)
	defer restoreConsole()

	system.WatchKeys(ctx, logger, map[uint16]func(){
		system.KeyF4: func() { a.Exit(nil) },
		system.KeyF5: func() { sw.Toggle() },
	})

	if !*startHidden {
		sw.Set(true)
	}

	if err := a.Run(ctx); err != nil {
		logger.Errorf("main", "app error: %v", err)
		fmt.Println("app error:", err)
		return 1
	}
	logger.Infof("main", "stopped")
	return 0
}
