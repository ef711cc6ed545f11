package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/getlantern/systray"
	"golang.design/x/hotkey"
)

const trayTitle = "snapcal"

// runTray blocks until the tray exits or ctx is cancelled
func runTray(ctx context.Context, m *Monitor, interval time.Duration) {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	onExit := func() {
		fmt.Println("Exiting...")
		fmt.Printf("Total screenshots taken: %d\n", m.Taker.Count())
	}
	systray.Run(func() { onTrayReady(ctx, m, interval) }, onExit)
}

// never blocks, the update is dropped when nobody is draining ch
func sendState(ch chan<- TaskState, state TaskState) bool {
	select {
	case ch <- state:
		return true
	default:
		slog.Debug("dropped tray state update", "state", state)
		return false
	}
}

func onTrayReady(ctx context.Context, m *Monitor, interval time.Duration) {
	systray.SetIcon(iconBlue)
	systray.SetTitle(trayTitle)
	systray.SetTooltip("Ready")

	mCapture := systray.AddMenuItem("Capture now", "Take a screenshot (Ctrl+Shift+S)")
	mAnalyze := systray.AddMenuItem("Analyze screen", "Capture the screen and estimate calories")
	mPause := systray.AddMenuItem("Pause capture", "Stop the periodic capture")
	mAnalyzeAfter := systray.AddMenuItemCheckbox("Analyze after capture", "Run food detection on every capture", config.AnalyzeAfterCapture)
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Exit the application")

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS)
	var hotkeyCh <-chan hotkey.Event
	if err := hk.Register(); err != nil {
		slog.Warn("could not register hotkey", "err", err)
	} else {
		hotkeyCh = hk.Keydown()
	}

	stateCh := make(chan TaskState, 10)
	var busy atomic.Bool
	var paused bool

	// one capture at a time, extra triggers while busy are dropped
	capture := func(analyze bool) {
		if !busy.CompareAndSwap(false, true) {
			slog.Debug("capture already running, skipping")
			return
		}
		go func() {
			defer busy.Store(false)
			defer sendState(stateCh, TaskStateIdle)

			sendState(stateCh, TaskStateCapturing)
			path, err := m.Shoot()
			if err != nil {
				slog.Error("error taking screenshot", "err", err)
				return
			}
			if analyze {
				sendState(stateCh, TaskStateAnalyzing)
				m.Analyze(ctx, path)
			}
		}()
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		defer hk.Unregister()

		for {
			select {
			case state := <-stateCh:
				switch state {
				case TaskStateCapturing:
					systray.SetIcon(iconRed)
					systray.SetTooltip("Capturing screen...")
				case TaskStateAnalyzing:
					systray.SetIcon(iconGreen)
					systray.SetTooltip("Analyzing screenshot...")
				default:
					if paused {
						systray.SetIcon(iconGrey)
						systray.SetTooltip("Paused")
					} else {
						systray.SetIcon(iconBlue)
						systray.SetTooltip(fmt.Sprintf("Ready, %d screenshots", m.Taker.Count()))
					}
				}

			case <-ticker.C:
				if !paused {
					capture(mAnalyzeAfter.Checked())
				}
			case <-hotkeyCh:
				capture(mAnalyzeAfter.Checked())
			case <-mCapture.ClickedCh:
				capture(mAnalyzeAfter.Checked())
			case <-mAnalyze.ClickedCh:
				capture(true)

			case <-mPause.ClickedCh:
				paused = !paused
				if paused {
					mPause.SetTitle("Resume capture")
				} else {
					mPause.SetTitle("Pause capture")
				}
				sendState(stateCh, TaskStateIdle)

			case <-mAnalyzeAfter.ClickedCh:
				if mAnalyzeAfter.Checked() {
					mAnalyzeAfter.Uncheck()
				} else {
					mAnalyzeAfter.Check()
				}

				config.AnalyzeAfterCapture = mAnalyzeAfter.Checked()

				if err := writeConfig(); err != nil {
					slog.Error("error writing config", "err", err)
				}

			case <-mExit.ClickedCh:
				systray.Quit()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
