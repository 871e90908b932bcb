// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"math"
	"time"
)

// Medium is the channel a case was received through.
type Medium string

const (
	MediumPhone Medium = "phone"
	MediumEmail Medium = "email"
)

// ParseMedium returns the Medium for s, or an error if s is not one of the
// known channels. Matching is exact.
func ParseMedium(s string) (Medium, error) {
	switch Medium(s) {
	case MediumPhone, MediumEmail:
		return Medium(s), nil
	}
	return "", fmt.Errorf("invalid medium %q: must be %q or %q", s, MediumPhone, MediumEmail)
}

// Case is a logged customer contact with its handling-time measurements.
// Durations are nil when never recorded.
type Case struct {
	ID             int64
	Notes          *string
	Medium         *Medium
	CustomerTime   *time.Duration
	AdditionalTime *time.Duration
	FormFillTime   *time.Duration
	CreatedAt      time.Time
	EditedAt       time.Time
	CaseID         *int64
	CategoryID     *int64
	CreatedBy      *int64
	EditedBy       []int64
}

// CaseTotals is the aggregate of a set of cases: how many there are and the
// sum of each duration field. Missing durations count as zero.
type CaseTotals struct {
	Count          int64
	CustomerTime   time.Duration
	AdditionalTime time.Duration
	FormFillTime   time.Duration
}

// Add accumulates other into t.
func (t *CaseTotals) Add(other CaseTotals) {
	t.Count += other.Count
	t.CustomerTime += other.CustomerTime
	t.AdditionalTime += other.AdditionalTime
	t.FormFillTime += other.FormFillTime
}

// Seconds converts a duration to float seconds. Nil passes through.
func Seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}

// MaxSeconds is the exclusive upper bound on seconds FromSeconds can
// represent.
const MaxSeconds = float64(math.MaxInt64) / float64(time.Second)

// FromSeconds converts float seconds to a time.Duration. s must be below
// MaxSeconds.
func FromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
