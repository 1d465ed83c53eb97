package tray

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"

	"github.com/soar/simrx/internal/demand"
)

// ShutdownFunc is called when "Exit" is clicked
type ShutdownFunc func()

// Tray manages the system tray icon and menu
type Tray struct {
	monitorURL   string
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuStatus   *systray.MenuItem
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem

	mu     sync.Mutex
	ready  bool
	last   demand.Stats
	status string
}

// statusText describes the receiver from two consecutive stats samples.
func statusText(prev, cur demand.Stats) string {
	switch {
	case cur.Frames == 0 && cur.Failures == 0:
		return "Waiting for the first poll"
	case cur.Frames == 0:
		return fmt.Sprintf("No device sample yet (%d failed polls)", cur.Failures)
	case cur.Failures > prev.Failures:
		return fmt.Sprintf("Holding last frame (%d failed polls)", cur.Failures)
	default:
		return fmt.Sprintf("Receiving (%d frames)", cur.Frames)
	}
}

// New creates a new Tray instance. monitorURL is opened by "Open Monitor".
func New(monitorURL string, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		monitorURL:   monitorURL,
		shutdownFunc: shutdownFn,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Quit removes the tray icon, used when shutdown starts elsewhere.
func (t *Tray) Quit() {
	if t.shuttingDown.CompareAndSwap(false, true) {
		systray.Quit()
	}
}

// UpdateStatus records the latest receiver stats and shows them in the tray.
// It may be called before the tray is ready.
func (t *Tray) UpdateStatus(cur demand.Stats) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = statusText(t.last, cur)
	t.last = cur
	if t.ready {
		t.showStatus()
	}
	return t.status
}

// showStatus must be called with mu held.
func (t *Tray) showStatus() {
	t.menuStatus.SetTitle(t.status)
	systray.SetTooltip("simrx - " + t.status)
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("simrx")
	systray.SetTooltip("simrx demand monitor - " + t.monitorURL)

	t.menuStatus = systray.AddMenuItem("Waiting for the first poll", "Receiver status")
	t.menuStatus.Disable()
	systray.AddSeparator()
	t.menuOpen = systray.AddMenuItem("Open Monitor", "Open the demand monitor")
	t.menuExit = systray.AddMenuItem("Exit", "Stop the receiver")

	t.mu.Lock()
	t.ready = true
	if t.status != "" {
		t.showStatus()
	}
	t.mu.Unlock()

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
	log.Println("System tray exiting")
}

func (t *Tray) openBrowser() {
	if t.shuttingDown.Load() {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.monitorURL)
	case "darwin":
		cmd = exec.Command("open", t.monitorURL)
	default:
		cmd = exec.Command("xdg-open", t.monitorURL)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
