// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"casetracker/internal/apperr"
)

// Request limits for case bodies.
const (
	maxBodyBytes = 64 << 10
	maxNotesLen  = 10_000
)

// decodeFields reads a JSON object body into raw fields.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.Validationf("request body must be a JSON object")
		}
		return nil, apperr.Validationf("invalid JSON body: %v", err)
	}
	if raw == nil {
		return nil, apperr.Validationf("request body must be a JSON object")
	}
	if err := validateNotes(raw["notes"]); err != nil {
		return nil, err
	}
	return raw, nil
}

// validateNotes enforces the notes length limit. Type errors are left to
// cases.ParseFields.
func validateNotes(raw json.RawMessage) error {
	var notes string
	if raw == nil || json.Unmarshal(raw, &notes) != nil {
		return nil
	}
	if utf8.RuneCountInString(notes) > maxNotesLen {
		return apperr.Validationf("notes are too long (max %s characters)", formatCount(maxNotesLen))
	}
	return nil
}

// caseIDParam parses the {id} URL parameter.
func caseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid case id %q", raw)
	}
	return id, nil
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	return fmt.Sprintf("%s,%s", formatCount(n/1000), s[len(s)-3:])
}
