package transform

import (
	"database/sql"
	"strings"
	"time"
)

// bucketLayout is the hourly key format shared by Bucket and TimeDimension.
// The foreign-key relationship between bucketed timestamps and the time
// dimension only holds because both sides use this exact format.
const bucketLayout = "2006010215"

// timestampLayouts are the source date/time shapes the raw extracts use.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Bucket maps a raw date/time value onto its hourly bucket key (YYYYMMDDHH,
// 10 digits). Minutes and seconds are discarded; the pipeline's entire time
// granularity is one hour. Null or unparseable input yields null, never an
// error.
func Bucket(v sql.NullString) sql.NullString {
	if !v.Valid {
		return sql.NullString{}
	}
	raw := strings.TrimSpace(v.String)
	if raw == "" {
		return sql.NullString{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return sql.NullString{String: t.Format(bucketLayout), Valid: true}
		}
	}
	return sql.NullString{}
}
