package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

var indexPageTemplate = template.Must(template.New("index").Parse(`
	<!DOCTYPE html>
	<html>
	<head>
		<title>snapcal</title>
	</head>
	<body>
		<h1>snapcal is running</h1>
		<p>Screenshots taken: {{.Shots}}</p>
		{{if .LastShot}}<p>Last screenshot: <code>{{.LastShot}}</code></p>{{end}}
		<p>HTTP API:</p>
		<ul>
			<li><a href="/capture">Capture</a></li>
			<li><a href="/analyze">Capture and analyze</a></li>
			<li><a href="/history">History (JSON)</a></li>
			<li><a href="/report">Report</a></li>
		</ul>
	</body>
	</html>
`))

func withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handler(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

func newMux(m *Monitor) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		err := indexPageTemplate.Execute(w, map[string]any{
			"Shots":    m.History.Shots(),
			"LastShot": m.History.LastShot(),
		})
		if err != nil {
			http.Error(w, "Error rendering template", http.StatusInternalServerError)
		}
	}))

	mux.HandleFunc("/capture", withCORS(func(w http.ResponseWriter, r *http.Request) {
		path, err := m.Shoot()
		if err != nil {
			http.Error(w, fmt.Sprintf("Error taking screenshot: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": path})
	}))

	mux.HandleFunc("/analyze", withCORS(func(w http.ResponseWriter, r *http.Request) {
		if m.Detector == nil {
			http.Error(w, "no detector configured", http.StatusServiceUnavailable)
			return
		}
		path, result, err := m.CaptureOnce(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Error taking screenshot: %v", err), http.StatusInternalServerError)
			return
		}
		status := http.StatusOK
		if result.Status == statusError {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]any{"path": path, "result": result})
	}))

	mux.HandleFunc("/history", withCORS(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.History.Results())
	}))

	mux.HandleFunc("/report", withCORS(func(w http.ResponseWriter, r *http.Request) {
		provider := ""
		if m.Detector != nil {
			provider = m.Detector.Name()
		}
		var buf bytes.Buffer
		PrintReport(&buf, provider, m.History.Results())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(buf.Bytes())
	}))

	return mux
}

// serves the control API until ctx is cancelled
func startServer(ctx context.Context, addr string, m *Monitor) error {
	srv := &http.Server{Addr: addr, Handler: newMux(m)}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server is starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// runs the control API and, when interval > 0, the capture loop. Returns
// once both have stopped.
func serve(ctx context.Context, addr string, m *Monitor, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Run(ctx, interval); err != nil {
				slog.Error("capture loop stopped", "err", err)
			}
		}()
	}

	err := startServer(ctx, addr, m)
	cancel()
	wg.Wait()
	return err
}
