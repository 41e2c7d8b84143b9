package transform

import "time"

// TimeDimension synthesizes the complete hourly time dimension: one row per
// hour, inclusive, from startYear-01-01 00:00 through endYear-12-31 23:00.
// It is independent of any input file, so observed timestamps outside the
// configured range simply dangle.
func TimeDimension(startYear, endYear int) []TimeBucket {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 23, 0, 0, 0, time.UTC)

	out := make([]TimeBucket, 0, int(end.Sub(start)/time.Hour)+1)
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		out = append(out, TimeBucket{
			Timestamp: t.Format(bucketLayout),
			Year:      t.Year(),
			Month:     int(t.Month()),
			Day:       t.Day(),
			Hour:      t.Hour(),
		})
	}
	return out
}
