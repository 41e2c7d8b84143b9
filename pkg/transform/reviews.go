package transform

import (
	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

// Reviews reshapes the raw reviews extract into the reviews dimension:
// review_score coerced to a nullable integer (unparseable values become
// null), creation/answer dates bucketed, the free-text comment fields
// dropped entirely, and rows deduplicated by review_id keeping the first
// occurrence.
func Reviews(reviews *extract.Table) ([]Review, error) {
	colReviewID, err := reviews.Column("review_id")
	if err != nil {
		return nil, err
	}
	colOrderID, err := reviews.Column("order_id")
	if err != nil {
		return nil, err
	}
	colScore, err := reviews.Column("review_score")
	if err != nil {
		return nil, err
	}
	colCreation, err := reviews.Column("review_creation_date")
	if err != nil {
		return nil, err
	}
	colAnswer, err := reviews.Column("review_answer_timestamp")
	if err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(reviews.Rows))
	seen := make(map[string]struct{}, len(reviews.Rows))
	for _, row := range reviews.Rows {
		reviewID := row[colReviewID]
		if _, ok := seen[reviewID]; ok {
			continue
		}
		seen[reviewID] = struct{}{}

		out = append(out, Review{
			ReviewID:          reviewID,
			OrderID:           row[colOrderID],
			Score:             coerceInt(row[colScore]),
			CreationTimestamp: Bucket(nullable(row[colCreation])),
			AnswerTimestamp:   Bucket(nullable(row[colAnswer])),
		})
	}

	return out, nil
}
