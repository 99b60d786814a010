package transform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// String layouts tried when parsing incoming date values.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDate renders a date value for the wire. Unparseable input yields an
// empty string, never an error.
func formatDate(v any, pattern string) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	switch pattern {
	case "", FormatRFC3339:
		return t.UTC().Format(time.RFC3339)
	case FormatUnixMillis:
		return strconv.FormatInt(t.UnixMilli(), 10)
	default:
		return formatPattern(t.UTC(), pattern)
	}
}

// parseDate turns a wire date value into a time.Time, or nil when the value
// cannot be interpreted as a date.
func parseDate(v any) any {
	t, ok := asTime(v)
	if !ok {
		return nil
	}
	return t
}

// formatPattern substitutes YYYY, MM, DD, HH, mm and ss tokens.
func formatPattern(t time.Time, pattern string) string {
	r := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", t.Year()),
		"MM", fmt.Sprintf("%02d", int(t.Month())),
		"DD", fmt.Sprintf("%02d", t.Day()),
		"HH", fmt.Sprintf("%02d", t.Hour()),
		"mm", fmt.Sprintf("%02d", t.Minute()),
		"ss", fmt.Sprintf("%02d", t.Second()),
	)
	return r.Replace(pattern)
}

// epochThreshold separates epoch-seconds from epoch-milliseconds values.
// Anything above it is read as milliseconds.
const epochThreshold = int64(1e11)

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return epochTime(n), true
		}
		return time.Time{}, false
	case float64:
		return epochTime(int64(t)), true
	case int:
		return epochTime(int64(t)), true
	case int64:
		return epochTime(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return epochTime(n), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func epochTime(n int64) time.Time {
	if n > epochThreshold || n < -epochThreshold {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

// coerceBool applies the boolean coercion table: bool passthrough, numeric
// zero/non-zero, and the true/1/yes and false/0/no string forms. Anything
// else maps to nil.
func coerceBool(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f != 0
		}
		return nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		return nil
	default:
		return nil
	}
}

// coerceNumber parses a value as a float64. Empty, nil and unparseable
// values map to nil.
func coerceNumber(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return nil
	default:
		return nil
	}
}
