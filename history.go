package main

import "sync/atomic"

type TaskState int

const (
	TaskStateIdle TaskState = iota
	TaskStateCapturing
	TaskStateAnalyzing
)

func (s TaskState) String() string {
	switch s {
	case TaskStateCapturing:
		return "capturing"
	case TaskStateAnalyzing:
		return "analyzing"
	}
	return "idle"
}

const maxHistoryLength = 100

// History is a lock free record of recent captures and results, bounded to
// maxHistoryLength entries
type History struct {
	results  atomic.Pointer[[]*Result]
	lastShot atomic.Pointer[string]
	shots    atomic.Int64
}

func (h *History) RecordShot(path string) {
	h.lastShot.Store(&path)
	h.shots.Add(1)
}

func (h *History) LastShot() string {
	if p := h.lastShot.Load(); p != nil {
		return *p
	}
	return ""
}

func (h *History) Shots() int64 {
	return h.shots.Load()
}

func (h *History) Append(entries ...*Result) {
	for {
		oldHistory := h.results.Load()
		var newHistory []*Result
		if oldHistory != nil {
			newHistory = append(newHistory, *oldHistory...)
		}
		newHistory = append(newHistory, entries...)
		if len(newHistory) > maxHistoryLength {
			newHistory = newHistory[len(newHistory)-maxHistoryLength:]
		}
		if h.results.CompareAndSwap(oldHistory, &newHistory) {
			return
		}
	}
}

// get a copy of the current history
func (h *History) Results() []*Result {
	history := h.results.Load()
	if history == nil {
		return []*Result{}
	}
	return append([]*Result(nil), *history...)
}
