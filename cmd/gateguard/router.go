package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrymomot/gateguard/core/apikey"
	"github.com/dmitrymomot/gateguard/core/permission"
	"github.com/dmitrymomot/gateguard/core/ratelimiter"
	"github.com/dmitrymomot/gateguard/core/token"
	"github.com/dmitrymomot/gateguard/middleware"
)

// logicalEndpoint collapses parameterized paths onto the endpoint names used
// in the permission table, so /keys/<id> is checked as /keys.
func logicalEndpoint(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/keys") {
		return "/keys"
	}
	return r.URL.Path
}

func newRouter(limiter *ratelimiter.MemoryLimiter, keys *apikey.Store, tokens *token.Issuer, checker *permission.Checker, limiterCfg ratelimiter.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := limiter.Healthcheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		stats := limiter.Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"strategy":            limiterCfg.Strategy,
			"requests_per_minute": limiterCfg.RequestsPerMinute,
			"burst_size":          limiterCfg.BurstSize,
			"active_clients":      stats.ActiveClients,
			"clients_evicted":     stats.ClientsEvicted,
			"cleanup_running":     stats.IsRunning,
			"endpoints":           checker.Endpoints(),
		})
	})

	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject     string         `json:"subject"`
			Permissions []string       `json:"permissions"`
			Custom      map[string]any `json:"custom"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		signed, err := tokens.Issue(req.Subject, req.Permissions, req.Custom)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": signed, "token_type": "Bearer"})
	})

	mux.HandleFunc("GET /keys", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"keys": keys.List()})
	})

	mux.HandleFunc("POST /keys", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string   `json:"name"`
			Permissions []string `json:"permissions"`
			RateLimit   int      `json:"rate_limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		secret, err := keys.Create(req.Name,
			apikey.WithPermissions(req.Permissions...),
			apikey.WithRateLimit(req.RateLimit),
		)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "key generation failed"})
			return
		}
		// The plaintext secret appears in this response and nowhere else.
		writeJSON(w, http.StatusCreated, map[string]string{"api_key": secret})
	})

	mux.HandleFunc("DELETE /keys/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := keys.Revoke(r.PathValue("id")); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "key not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Gated demo endpoints standing in for the upstream scoring service.
	for _, endpoint := range []string{
		"/predict", "/explain", "/features", "/metrics", "/demo-data",
		"/control/start", "/control/stop", "/control/config",
	} {
		mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
			d, _ := middleware.GetDecision(r.Context())
			writeJSON(w, http.StatusOK, map[string]any{
				"endpoint":    r.URL.Path,
				"subject":     d.Subject,
				"permissions": d.Permissions,
			})
		})
	}

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
