package transform

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("strips_diacritics_and_lowercases", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"São Paulo":      "sao paulo",
			"Florianópolis":  "florianopolis",
			"BRASÍLIA":       "brasilia",
			"Paraná":         "parana",
			"Conceição":      "conceicao",
			"already plain":  "already plain",
		}
		for in, want := range cases {
			got := Normalize(sql.NullString{String: in, Valid: true})
			require.True(t, got.Valid)
			require.Equal(t, want, got.String)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once := Normalize(sql.NullString{String: "São José dos Campos", Valid: true})
		twice := Normalize(once)
		require.Equal(t, once, twice)
	})

	t.Run("null_stays_null", func(t *testing.T) {
		t.Parallel()

		require.False(t, Normalize(sql.NullString{}).Valid)
	})
}
