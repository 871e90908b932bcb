// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/filter"
)

// MaxIntervals bounds the number of buckets a single Periods call may
// count. Each bucket is one query.
const MaxIntervals = 10_000

// maxDeltaSeconds is the largest step, in seconds, a time.Duration holds.
const maxDeltaSeconds = math.MaxInt64 / int64(time.Second)

// Range is a closed time window.
type Range struct {
	Start time.Time
	End   time.Time
}

// PeriodRequest describes a Periods call.
type PeriodRequest struct {
	Start     time.Time
	Delta     time.Duration
	Intervals int
}

// ParseRange reads start-time and end-time. Both are required and no other
// parameter is accepted.
func ParseRange(params map[string]string) (Range, error) {
	if err := requireExactly(params, "start-time", "end-time"); err != nil {
		return Range{}, err
	}
	start, err := parseInstant("start-time", params["start-time"])
	if err != nil {
		return Range{}, err
	}
	end, err := parseInstant("end-time", params["end-time"])
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

// ParsePeriodRequest reads start-time, delta (whole seconds, may be
// negative) and intervals. All three are required and no other parameter
// is accepted.
func ParsePeriodRequest(params map[string]string) (PeriodRequest, error) {
	if err := requireExactly(params, "start-time", "delta", "intervals"); err != nil {
		return PeriodRequest{}, err
	}
	start, err := parseInstant("start-time", params["start-time"])
	if err != nil {
		return PeriodRequest{}, err
	}
	delta, err := strconv.ParseInt(params["delta"], 10, 64)
	if err != nil {
		return PeriodRequest{}, apperr.Validationf("invalid delta %q: must be an integer number of seconds", params["delta"])
	}
	intervals, err := strconv.Atoi(params["intervals"])
	if err != nil || intervals < 0 {
		return PeriodRequest{}, apperr.Validationf("invalid intervals %q: must be a non-negative integer", params["intervals"])
	}
	if intervals > MaxIntervals {
		return PeriodRequest{}, apperr.Validationf("invalid intervals %d: must be at most %d", intervals, MaxIntervals)
	}
	if delta > maxDeltaSeconds || delta < -maxDeltaSeconds {
		return PeriodRequest{}, apperr.Validationf("invalid delta %d: must be within ±%d seconds", delta, maxDeltaSeconds)
	}
	if intervals > 0 && (delta > maxDeltaSeconds/int64(intervals) || delta < -maxDeltaSeconds/int64(intervals)) {
		return PeriodRequest{}, apperr.Validationf("invalid delta %d: %d intervals would span more than %d seconds", delta, intervals, maxDeltaSeconds)
	}
	return PeriodRequest{
		Start:     start,
		Delta:     time.Duration(delta) * time.Second,
		Intervals: intervals,
	}, nil
}

func requireExactly(params map[string]string, names ...string) error {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !allowed[k] {
			return apperr.Validationf("unknown parameter %q", k)
		}
	}
	for _, n := range names {
		if _, ok := params[n]; !ok {
			return apperr.Validationf("missing parameter %q", n)
		}
	}
	return nil
}

func parseInstant(name, v string) (time.Time, error) {
	t, err := filter.ParseTime(v)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid %s %q: must be an ISO-8601 timestamp", name, v)
	}
	return t, nil
}
