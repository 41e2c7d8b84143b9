package transform

import (
	"database/sql"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	texttransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks (accents, cedillas),
// and recomposes.
var stripMarks = texttransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a free-text join key: diacritics stripped,
// lowercased. Null stays null. Idempotent, so already-normalized values pass
// through unchanged.
func Normalize(s sql.NullString) sql.NullString {
	if !s.Valid {
		return s
	}
	out, _, err := texttransform.String(stripMarks, s.String)
	if err != nil {
		// A value the stripper cannot transform is left as-is; lowercasing
		// alone still matches same-spelling keys.
		out = s.String
	}
	return sql.NullString{String: strings.ToLower(out), Valid: true}
}
