package transform

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseInt parses an integer cell, tolerating integral float renderings
// ("40.0") that show up when a numeric column passed through a float stage.
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}

// zeroDefaultInt implements the products null policy: absent values default
// to 0 (not null); a value that is present but not numeric is a structural
// error.
func zeroDefaultInt(s string) (sql.NullInt64, error) {
	if s == "" {
		return sql.NullInt64{Int64: 0, Valid: true}, nil
	}
	n, err := parseInt(s)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

// coerceInt implements the data-quality null policy: absent or unparseable
// values become null and the row proceeds.
func coerceInt(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	n, err := parseInt(s)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// coerceBool treats numeric cells as nonzero-is-true and otherwise falls back
// to strconv's boolean forms. Anything else is false.
func coerceBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if n, err := parseInt(s); err == nil {
		return n != 0
	}
	if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		return b
	}
	return false
}
