// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store, so no database is needed.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"casetracker/internal/cache"
	"casetracker/internal/cases"
	"casetracker/internal/middleware"
	"casetracker/internal/stats"
	"casetracker/internal/store/memstore"
)

// testAPI is the handler stack wired to an in-memory store.
type testAPI struct {
	handler http.Handler
	store   *memstore.Store
}

func newTestAPI(t *testing.T, statsCache *cache.StatsCache) *testAPI {
	t.Helper()
	st := memstore.New()

	caseHandlers := NewCases(cases.NewService(st.Categories(), st.Cases()), st.Cases(), statsCache)
	statsHandlers := NewStats(stats.NewEngine(st.Categories(), st.Cases()), statsCache)

	r := chi.NewRouter()
	r.Use(middleware.Actor(true))
	r.Get("/api/case", caseHandlers.List)
	r.Post("/api/case", caseHandlers.Create)
	r.Get("/api/case/categories", caseHandlers.Categories)
	r.Patch("/api/case/{id}", caseHandlers.Update)
	r.Delete("/api/case/{id}", caseHandlers.Delete)
	r.Get("/api/stats/medium", statsHandlers.Medium)
	r.Get("/api/stats/category", statsHandlers.Category)
	r.Get("/api/stats/periods", statsHandlers.Periods)

	return &testAPI{handler: r, store: st}
}

// do sends a request and returns the recorder. body may be empty.
func (a *testAPI) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the recorder body into v.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

// errorMessage returns the "error" field of a JSON error body.
func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rr, &body)
	return body["error"]
}
