package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
	"github.com/soar/simrx/internal/demand"
	"github.com/soar/simrx/internal/gamepad"
	"github.com/soar/simrx/internal/hub"
	"github.com/soar/simrx/internal/loop"
	_ "github.com/soar/simrx/internal/remote"
	"github.com/soar/simrx/internal/server"
	"github.com/soar/simrx/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func monitorURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://localhost" + listen
	}
	return "http://" + listen
}

// openSource opens the configured backend and gives a hotplugged device the
// configured time to appear, so its profile can be detected.
func openSource(cfg config.Backend) (axis.Source, error) {
	src, err := axis.Open(cfg)
	if err != nil {
		return nil, err
	}
	if w, ok := src.(axis.Waiter); ok && cfg.WaitTimeout > 0 {
		log.Printf("Waiting up to %v for the %s device", cfg.WaitTimeout, cfg.Name)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.WaitTimeout)
		defer cancel()
		if err := w.WaitReady(ctx); err != nil {
			log.Printf("No device yet (%v), frames are held until one reports", err)
		}
	}
	return src, nil
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	src, err := openSource(cfg.Backend)
	if err != nil {
		log.Fatalf("Axis backend error: %v", err)
	}

	ctrl := demand.NewController(src, gamepad.NewResolver(cfg.Controller))
	if err := ctrl.Begin(); err != nil {
		log.Fatalf("Receiver setup failed: %v", err)
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	runner := loop.New(ctrl, cfg.PollInterval())

	// Create and start hub
	h := hub.NewHub()
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, runner.Changes())
	go broadcaster.Run()

	srv := server.New(h, broadcaster, getFrontendFS(), cfg.Listen)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	url := monitorURL(cfg.Listen)
	log.Printf("simrx started: %s", url)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	// Initialize system tray on Windows only
	var t *tray.Tray
	if runtime.GOOS == "windows" && cfg.Tray {
		t = tray.New(url, func() {
			close(shutdownRequested)
		})
		go t.Run(tray.GetIcon())
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					t.UpdateStatus(ctrl.Stats())
				}
			}
		}()
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	loopDone := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(loopDone)
	}()

	// Wait for shutdown signal, tray request, or server error
	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
	}
	cancel()
	if t != nil {
		t.Quit()
	}

	// Wait for the poll loop to finish before releasing the device
	<-loopDone
	if err := ctrl.Halt(); err != nil {
		log.Printf("Axis backend close error: %v", err)
	}

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	stats := ctrl.Stats()
	log.Printf("simrx stopped after %d frames (%d failed polls)", stats.Frames, stats.Failures)
}
