// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cases

import (
	"bytes"
	"encoding/json"
	"sort"

	"casetracker/internal/apperr"
	"casetracker/internal/models"
)

// Field is an optional value from a create or update body. Set reports
// whether the key was present; Value is nil when it was present as null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Fields is the closed set of case attributes a client may write.
type Fields struct {
	Notes          Field[string]
	Medium         Field[models.Medium]
	CustomerTime   Field[float64]
	AdditionalTime Field[float64]
	FormFillTime   Field[float64]
	CategoryID     Field[int64]
	CaseID         Field[int64]
}

type fieldDecoder func(f *Fields, raw json.RawMessage) error

var decoders = map[string]fieldDecoder{
	"notes": func(f *Fields, raw json.RawMessage) error {
		return decode(&f.Notes, "notes", "a string", raw)
	},
	"medium": func(f *Fields, raw json.RawMessage) error {
		if err := decode(&f.Medium, "medium", "a string", raw); err != nil {
			return err
		}
		if f.Medium.Value != nil {
			if _, err := models.ParseMedium(string(*f.Medium.Value)); err != nil {
				return apperr.Validationf("%v", err)
			}
		}
		return nil
	},
	"customer_time": func(f *Fields, raw json.RawMessage) error {
		return decodeSeconds(&f.CustomerTime, "customer_time", raw)
	},
	"additional_time": func(f *Fields, raw json.RawMessage) error {
		return decodeSeconds(&f.AdditionalTime, "additional_time", raw)
	},
	"form_fill_time": func(f *Fields, raw json.RawMessage) error {
		return decodeSeconds(&f.FormFillTime, "form_fill_time", raw)
	},
	"category_id": func(f *Fields, raw json.RawMessage) error {
		return decode(&f.CategoryID, "category_id", "an integer", raw)
	},
	"case_id": func(f *Fields, raw json.RawMessage) error {
		return decode(&f.CaseID, "case_id", "an integer", raw)
	},
}

// FieldNames returns the writable field names in sorted order.
func FieldNames() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFields validates a decoded JSON object against the writable field
// set. Unknown keys and malformed values fail the whole call.
func ParseFields(raw map[string]json.RawMessage) (Fields, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Fields
	for _, k := range keys {
		dec, ok := decoders[k]
		if !ok {
			return Fields{}, apperr.Validationf("unknown field %q", k)
		}
		if err := dec(&f, raw[k]); err != nil {
			return Fields{}, err
		}
	}
	return f, nil
}

func decode[T any](dst *Field[T], name, want string, raw json.RawMessage) error {
	dst.Set = true
	if isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return apperr.Validationf("invalid %s: must be %s or null", name, want)
	}
	dst.Value = &v
	return nil
}

func decodeSeconds(dst *Field[float64], name string, raw json.RawMessage) error {
	if err := decode(dst, name, "a number of seconds", raw); err != nil {
		return err
	}
	if dst.Value != nil && *dst.Value < 0 {
		return apperr.Validationf("invalid %s: must not be negative", name)
	}
	// Also rejects NaN.
	if dst.Value != nil && !(*dst.Value < models.MaxSeconds) {
		return apperr.Validationf("invalid %s: must be less than %.0f seconds", name, models.MaxSeconds)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
