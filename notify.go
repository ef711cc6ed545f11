package main

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const notifySubtitleMax = 50

// Notifier shows desktop notifications
type Notifier interface {
	Notify(title, message string) error
}

type desktopNotifier struct{}

func (desktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

func newNotifier(enabled bool) Notifier {
	if !enabled {
		return nopNotifier{}
	}
	return desktopNotifier{}
}

// best effort, failures are only logged
func sendNotification(n Notifier, title, message string) {
	if err := n.Notify(title, message); err != nil {
		slog.Warn("notification failed", "title", title, "err", err)
		return
	}
	slog.Debug("sent notification", "title", title, "message", message)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
