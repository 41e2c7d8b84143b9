package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

var reviewHeader = []string{
	"review_id", "order_id", "review_score",
	"review_comment_title", "review_comment_message",
	"review_creation_date", "review_answer_timestamp",
}

func TestReviews(t *testing.T) {
	t.Parallel()

	t.Run("coerces_score_and_buckets_dates", func(t *testing.T) {
		t.Parallel()

		reviews := extract.NewTable("reviews", reviewHeader, [][]string{
			{"r1", "o1", "5", "title", "message", "2018-01-18 00:00:00", "2018-01-18 21:46:59"},
			{"r2", "o2", "not_a_score", "", "", "2018-03-10 00:00:00", ""},
			{"r3", "o3", "", "", "", "", ""},
		})

		out, err := Reviews(reviews)
		require.NoError(t, err)
		require.Len(t, out, 3)

		require.Equal(t, int64(5), out[0].Score.Int64)
		require.Equal(t, "2018011800", out[0].CreationTimestamp.String)
		require.Equal(t, "2018011821", out[0].AnswerTimestamp.String)

		require.False(t, out[1].Score.Valid)
		require.True(t, out[1].CreationTimestamp.Valid)
		require.False(t, out[1].AnswerTimestamp.Valid)

		require.False(t, out[2].Score.Valid)
		require.False(t, out[2].CreationTimestamp.Valid)
	})

	t.Run("dedup_by_review_id_keeps_first", func(t *testing.T) {
		t.Parallel()

		reviews := extract.NewTable("reviews", reviewHeader, [][]string{
			{"r1", "o1", "4", "", "", "2018-01-18 00:00:00", ""},
			{"r1", "o9", "1", "", "", "2018-02-20 00:00:00", ""},
		})

		out, err := Reviews(reviews)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "o1", out[0].OrderID)
		require.Equal(t, int64(4), out[0].Score.Int64)
	})

	t.Run("missing_required_column_is_structural", func(t *testing.T) {
		t.Parallel()

		reviews := extract.NewTable("reviews", []string{"review_id", "order_id"}, nil)
		_, err := Reviews(reviews)
		require.Error(t, err)
	})
}
