// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Score bounds for pitch criteria.
const (
	MinScore     = 1
	MaxScore     = 5
	DefaultScore = 5
)

// Score is a permissive 1-5 pitch criterion. Malformed client input never
// fails a vote: non-numeric values become DefaultScore and numbers are
// clamped into range.
type Score int

// UnmarshalJSON accepts numbers, numeric strings and anything else.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = DefaultScore
		return nil
	}
	*s = Score(ClampScore(raw))
	return nil
}

// Value returns the stored score; an absent field reads as DefaultScore.
func (s Score) Value() int {
	if s == 0 {
		return DefaultScore
	}
	return int(s)
}

// ClampScore maps arbitrary input to [MinScore, MaxScore].
func ClampScore(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return DefaultScore
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return DefaultScore
		}
		f = parsed
	default:
		return DefaultScore
	}

	if math.IsNaN(f) {
		return DefaultScore
	}
	n := math.Round(f)
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return int(n)
}
