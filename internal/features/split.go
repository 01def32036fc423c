package features

import (
	"fmt"
	"math"

	"retailcli/pkg/contracts/domain"
)

// SplitChronological partitions engineered rows into train and test sets at
// the given holdout fraction without shuffling. The split is taken per
// product: each product's most recent rows become the test tail, so every
// test row is strictly later in time than that product's train rows and no
// future information leaks into training.
func SplitChronological(rows []domain.FeatureRow, holdout float64) (train, test []domain.FeatureRow, err error) {
	if holdout <= 0 || holdout >= 1 {
		return nil, nil, fmt.Errorf("holdout fraction must be in (0,1), got %.3f", holdout)
	}

	// rows arrive ordered by (stock_code, event_date); walk product spans.
	start := 0
	for start < len(rows) {
		end := start
		for end < len(rows) && rows[end].StockCode == rows[start].StockCode {
			end++
		}

		span := rows[start:end]
		testSize := int(math.Floor(float64(len(span)) * holdout))
		if testSize >= len(span) {
			testSize = len(span) - 1
		}
		cut := len(span) - testSize

		train = append(train, span[:cut]...)
		test = append(test, span[cut:]...)

		start = end
	}

	return train, test, nil
}
