package policy

import (
	"math"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ParseRetrySentryMetadata is a generic helper to unmarshal a map[string]string
// into a strongly-typed policy struct using JSON tags.
// It uses weak typing to handle string-to-float conversions and parses durations ("2s", "500ms").
// Keys that match no field are rejected so a misspelled parameter can't silently fall back to a default.
func ParseRetrySentryMetadata[T any](metadata map[string]string) (*T, error) {
	var result T

	config := &mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(metadata); err != nil {
		return nil, err
	}

	return &result, nil
}

// helperNormalizeAttempt clamps an attempt index to the first retry.
func helperNormalizeAttempt(attempt int) int {
	if attempt < 1 {
		return 1
	}
	return attempt
}

// helperNormalizeBase falls back to DefaultBase for an unset base.
// An explicitly configured zero is kept. Zero and negative bases are turned into a
// zero delay by helperPower.
func helperNormalizeBase(base float64, set bool) float64 {
	if math.IsNaN(base) || (base == 0 && !set) {
		return DefaultBase
	}
	return base
}

// helperNormalizeUnit falls back to DefaultUnit for an unset or negative unit.
func helperNormalizeUnit(unit time.Duration) time.Duration {
	if unit <= 0 {
		return DefaultUnit
	}
	return unit
}

// helperPower computes unit * base^attempt in nanoseconds.
// A negative base yields zero instead of an oscillating sign.
func helperPower(unit time.Duration, base float64, attempt int) float64 {
	if base <= 0 || unit <= 0 {
		return 0
	}
	return float64(unit) * math.Pow(base, float64(attempt))
}

// helperSaturate converts nanoseconds to a Duration, flooring at zero and
// saturating at the largest representable Duration instead of overflowing.
func helperSaturate(ns float64) time.Duration {
	if math.IsNaN(ns) || ns <= 0 {
		return 0
	}
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// helperHasKey reports whether key is present in metadata, even with a zero value.
func helperHasKey(metadata map[string]string, key string) bool {
	_, ok := metadata[key]
	return ok
}

// helperSplitKey separates key from the rest of metadata.
func helperSplitKey(metadata map[string]string, key string) (picked, rest map[string]string) {
	picked = map[string]string{}
	rest = make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == key {
			picked[k] = v
			continue
		}
		rest[k] = v
	}
	return picked, rest
}

// helperFormatFloat renders a float the shortest way that parses back to the same value.
func helperFormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
