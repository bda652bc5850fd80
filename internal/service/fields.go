// internal/service/fields.go
// Coercion helpers for the loosely-typed RawCDR payloads. Sources hand us
// strings, JSON numbers, and native ints interchangeably; everything the
// pipeline reads goes through these.
package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cdr-mediation/internal/models"
)

// timestampLayouts are tried in order when parsing usage timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

func fieldString(raw models.RawCDR, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}

	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func fieldFloat(raw models.RawCDR, key string) (float64, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false, nil
	}

	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, fmt.Errorf("field %s is not numeric: %q", key, n)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("field %s has unsupported type %T", key, v)
	}
}

func fieldTime(raw models.RawCDR, key string) (time.Time, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return time.Time{}, false, nil
	}

	if t, isTime := v.(time.Time); isTime {
		return t, true, nil
	}

	s := fieldString(raw, key)
	if s == "" {
		return time.Time{}, false, nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}

	return time.Time{}, true, fmt.Errorf("field %s is not a parseable timestamp: %q", key, s)
}

// fieldPresent reports whether a key exists with a non-empty value.
func fieldPresent(raw models.RawCDR, key string) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// NormalizePhoneNumber strips all non-digit characters and prepends the
// US country code when a bare 10-digit number lacks a leading 1.
func NormalizePhoneNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) == 10 && !strings.HasPrefix(digits, "1") {
		return "1" + digits
	}
	return digits
}
