package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
)

// Backend names accepted by --backend and the config file.
const (
	BackendAuto   = "auto"
	BackendEbiten = "ebiten"
	BackendKitty  = "kitty"
)

var errBackend = errors.New("failed to initialize display")

// openBackend acquires the display named by cfg.Backend. The caller owns
// the result and must Close it.
func openBackend(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case BackendEbiten:
		return newEbitenBackend(cfg)
	case BackendKitty:
		return newTermBackend(false)
	case BackendAuto, "":
		if hasDesktopDisplay() {
			return newEbitenBackend(cfg)
		}
		b, err := newTermBackend(true)
		if err != nil {
			slog.Info("Terminal backend unavailable, using window", slog.String("error", err.Error()))
			return newEbitenBackend(cfg)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", errBackend, cfg.Backend)
	}
}

// hasDesktopDisplay guesses whether a window can be opened.
func hasDesktopDisplay() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	default:
		return true
	}
}
