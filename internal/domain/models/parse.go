package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by form dates and filters.
const DateLayout = "2006-01-02"

func requireText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ValidationError{Field: field, Reason: "must not be empty"}
	}
	return trimmed, nil
}

func parsePackets(field, value string, min int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ValidationError{Field: field, Reason: "must not be empty"}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, ValidationError{Field: field, Reason: "must be a whole number"}
	}
	if n < min {
		return 0, ValidationError{Field: field, Reason: "must be at least " + strconv.Itoa(min)}
	}
	return n, nil
}

func parseAmount(field, value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ValidationError{Field: field, Reason: "must not be empty"}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ValidationError{Field: field, Reason: "must be a number"}
	}
	if v < 0 {
		return 0, ValidationError{Field: field, Reason: "must not be negative"}
	}
	return v, nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Reason: "must be a date in " + DateLayout + " form"}
	}
	return d, nil
}

func parseOptionalDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return parseDate(field, value)
}
