// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/recommend"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the Crop Market Recommender API"

// healthCheckTimeout bounds the database ping in the readiness check.
const healthCheckTimeout = 2 * time.Second

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// Markets handles GET /api/v1/markets.
func (h *Handler) Markets(w http.ResponseWriter, r *http.Request) {
	markets := h.engine.Markets()
	if markets == nil {
		markets = []recommend.Market{}
	}
	respondData(w, r, markets, len(markets))
}

// CommodityInfo describes one commodity present in the price history.
type CommodityInfo struct {
	Name        string `json:"name"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Commodities handles GET /api/v1/commodities.
func (h *Handler) Commodities(w http.ResponseWriter, r *http.Request) {
	loaded := make(map[string]struct{})
	if h.models != nil {
		for _, c := range h.models.Loaded() {
			loaded[c] = struct{}{}
		}
	}

	names := h.features.Commodities()
	out := make([]CommodityInfo, len(names))
	for i, name := range names {
		_, ok := loaded[name]
		out[i] = CommodityInfo{Name: name, ModelLoaded: ok}
	}
	respondData(w, r, out, len(out))
}

// HealthLive handles liveness checks. It succeeds while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthReady handles readiness checks. The service is ready once the
// feature table holds rows and, when configured, the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rows := h.features.Len()
	checks := map[string]interface{}{
		"feature_rows": rows,
	}

	ready := rows > 0
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := h.db.Ping(ctx)
		cancel()
		checks["database"] = err == nil
		if err != nil {
			ready = false
		}
	}
	checks["ready"] = ready

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Status: "error",
			Data:   checks,
			Error:  newAPIError("NOT_READY", "Service is not ready"),
		})
		return
	}
	respondData(w, r, checks, 0)
}
