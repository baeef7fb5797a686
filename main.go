package main

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"pinote/internal/app"
	"pinote/internal/applog"
	"pinote/internal/hotkeys"
	"pinote/internal/ipc"
	"pinote/internal/settings"
	"pinote/internal/singleinstance"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var appIcon []byte

func main() {
	cliApp := &cli.App{
		Name:  "pinote",
		Usage: "sticky-note desktop shell",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level (also enabled by " + applog.DebugEnv + ")",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directory holding " + settings.FileName + ", overrides --identifier",
			},
			&cli.StringFlag{
				Name:  "identifier",
				Usage: "application identifier naming the per-user data directory",
				Value: settings.DefaultIdentifier,
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("[app] exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	forwarder := applog.Install(applog.Options{
		Debug: c.Bool("debug") || applog.DebugFromEnv(),
		Out:   os.Stdout,
	})

	// Single-instance check before any window or webview exists.
	lock, err := singleinstance.TryLock(singleinstance.DefaultName())
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		slog.Info("[app] another instance is already running, signaling activation")
		if _, sendErr := ipc.Send("", ipc.NewRequest(ipc.CommandActivate)); sendErr != nil {
			slog.Warn("[app] failed to signal existing instance", "error", sendErr)
		}
		return nil
	}
	serveActivation := true
	if err != nil {
		// Without the lock another instance may own the endpoint.
		slog.Warn("[app] single-instance lock failed, activation listener disabled", "error", err)
		serveActivation = false
	}
	if lock != nil {
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				slog.Warn("[app] single-instance lock release failed", "error", releaseErr)
			}
		}()
	}

	resolve := settings.IdentifierDir(c.String("identifier"))
	if dir := c.String("data-dir"); dir != "" {
		resolve = settings.FixedDir(dir)
	}

	service := &ShellService{}
	var shell *app.App

	wailsApp := application.New(application.Options{
		Name:        "Pinote",
		Description: "Sticky notes that stay out of the way",
		Icon:        appIcon,
		Services: []application.Service{
			application.NewService(service),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// The tray keeps the process alive with every window hidden.
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
		OnShutdown: func() {
			if shell != nil {
				shell.Shutdown()
			}
		},
	})

	shell, err = app.New(app.Options{
		Settings: resolve,
		Hotkeys:  hotkeys.NewManager(),
		Windows:  newWindowHost(wailsApp),
		Tray:     newTrayBuilder(wailsApp),
		Icon:     appIcon,
		Quit:     wailsApp.Quit,
		Emit: func(name string, data any) {
			wailsApp.Event.Emit(name, data)
		},
		ServeActivation: serveActivation,
		DeferShortcut:   hotkeys.NeedsRunningMainLoop,
	})
	if err != nil {
		return err
	}
	service.shell = shell
	forwarder.Set(shell.ForwardLog)
	defer forwarder.Set(nil)

	if err := shell.Startup(); err != nil {
		shell.Shutdown()
		return fmt.Errorf("startup: %w", err)
	}

	shortcutErr := make(chan error, 1)
	if hotkeys.NeedsRunningMainLoop {
		wailsApp.Event.OnApplicationEvent(events.Common.ApplicationStarted, func(*application.ApplicationEvent) {
			go func() {
				if err := shell.StartShortcut(); err != nil {
					slog.Error("[shortcut] toggle shortcut setup failed, quitting", "error", err)
					shortcutErr <- err
					wailsApp.Quit()
				}
			}()
		})
	}

	if err := wailsApp.Run(); err != nil {
		shell.Shutdown()
		return fmt.Errorf("run: %w", err)
	}
	select {
	case err := <-shortcutErr:
		return fmt.Errorf("startup: %w", err)
	default:
		return nil
	}
}
