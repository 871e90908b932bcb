// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"casetracker/internal/cache"
	"casetracker/internal/cases"
	"casetracker/internal/metrics"
	"casetracker/internal/middleware"
	"casetracker/internal/models"
)

// CaseWriter persists cases validated by the case service.
type CaseWriter interface {
	Create(ctx context.Context, c *models.Case, createdBy *int64) (*models.Case, error)
	Update(ctx context.Context, c *models.Case, editor *int64) error
}

// Cases groups the /api/case handlers.
type Cases struct {
	service    *cases.Service
	writer     CaseWriter
	statsCache *cache.StatsCache
}

// NewCases creates the case handlers. statsCache may be nil.
func NewCases(service *cases.Service, writer CaseWriter, statsCache *cache.StatsCache) *Cases {
	return &Cases{service: service, writer: writer, statsCache: statsCache}
}

// List handles GET /api/case.
func (h *Cases) List(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.service.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create handles POST /api/case and responds with the stored case.
func (h *Cases) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c, err := h.service.Create(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	actor := middleware.ActorFromCtx(r.Context())
	stored, err := h.writer.Create(r.Context(), c, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.mutated(r.Context(), "create")
	slog.Info("case created", "id", stored.ID, "actor", actorValue(actor))

	view, err := h.service.Describe(r.Context(), *stored)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Update handles PATCH /api/case/{id}.
func (h *Cases) Update(w http.ResponseWriter, r *http.Request) {
	id, err := caseIDParam(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	raw, err := decodeFields(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	c, err := h.service.Update(r.Context(), id, raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	actor := middleware.ActorFromCtx(r.Context())
	if err := h.writer.Update(r.Context(), c, actor); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.mutated(r.Context(), "update")
	slog.Info("case updated", "id", id, "actor", actorValue(actor))
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/case/{id}.
func (h *Cases) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := caseIDParam(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.mutated(r.Context(), "delete")
	slog.Info("case deleted", "id", id, "actor", actorValue(middleware.ActorFromCtx(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/case/categories.
func (h *Cases) Categories(w http.ResponseWriter, r *http.Request) {
	roots, err := h.service.Categories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roots)
}

func (h *Cases) mutated(ctx context.Context, op string) {
	metrics.CaseMutations.WithLabelValues(op).Inc()
	h.statsCache.InvalidateAll(ctx)
}

// actorValue dereferences the actor id for logging; anonymous is 0.
func actorValue(actor *int64) int64 {
	if actor == nil {
		return 0
	}
	return *actor
}
