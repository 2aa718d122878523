package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// HTTPServer returns a configured http.Server exposing the revenue endpoints
// and a sync trigger. Call ListenAndServe on the returned server in a
// goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /revenue?year=2026 — per-entity monthly recognized revenue.
	mux.HandleFunc("/revenue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		year := parseYear(r.URL.Query().Get("year"))
		results, err := a.revenue.Compute(r.Context(), year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"year": year, "entities": results})
	})

	// /overview?year=2026 — aggregated totals vs monthly targets.
	mux.HandleFunc("/overview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		year := parseYear(r.URL.Query().Get("year"))
		overview, err := a.revenue.Overview(r.Context(), year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, overview)
	})

	// /sync?year=2026 — trigger a CRM pull for the year.
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		year := parseYear(r.URL.Query().Get("year"))
		if err := a.SyncOnce(r.Context(), year); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"status": "ok", "year": year})
	})

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, mux)}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// parseYear defaults to the current year on empty or invalid input.
func parseYear(val string) int {
	if y, err := strconv.Atoi(val); err == nil && y > 0 {
		return y
	}
	return time.Now().UTC().Year()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "error",
		"error":  err.Error(),
	})
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
