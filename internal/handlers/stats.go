// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"casetracker/internal/cache"
	"casetracker/internal/stats"
)

// Stats groups the /api/stats handlers.
type Stats struct {
	engine *stats.Engine
	cache  *cache.StatsCache
}

// NewStats creates the stats handlers. statsCache may be nil.
func NewStats(engine *stats.Engine, statsCache *cache.StatsCache) *Stats {
	return &Stats{engine: engine, cache: statsCache}
}

// Medium handles GET /api/stats/medium.
func (h *Stats) Medium(w http.ResponseWriter, r *http.Request) {
	params, rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	h.serve(w, r, "medium", params, func() (any, error) {
		return h.engine.MediumCounts(r.Context(), rng.Start, rng.End)
	})
}

// Category handles GET /api/stats/category.
func (h *Stats) Category(w http.ResponseWriter, r *http.Request) {
	params, rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	h.serve(w, r, "category", params, func() (any, error) {
		return h.engine.ByCategory(r.Context(), rng.Start, rng.End)
	})
}

// Periods handles GET /api/stats/periods.
func (h *Stats) Periods(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := stats.ParsePeriodRequest(params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.serve(w, r, "periods", params, func() (any, error) {
		return h.engine.Periods(r.Context(), req.Start, req.Delta, req.Intervals)
	})
}

func (h *Stats) parseRange(w http.ResponseWriter, r *http.Request) (map[string]string, stats.Range, bool) {
	params, err := queryParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, stats.Range{}, false
	}
	rng, err := stats.ParseRange(params)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, stats.Range{}, false
	}
	return params, rng, true
}

// serve answers from the stats cache when it can, otherwise computes the
// result and caches its encoding.
func (h *Stats) serve(w http.ResponseWriter, r *http.Request, endpoint string, params map[string]string, compute func() (any, error)) {
	key := cache.StatsKey(endpoint, params)
	if body, ok := h.cache.Get(r.Context(), key); ok {
		writeRaw(w, body)
		return
	}

	v, err := compute()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cache.Set(r.Context(), key, body)
	writeRaw(w, body)
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
