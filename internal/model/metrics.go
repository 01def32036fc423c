package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds the advisory holdout diagnostics reported after training.
// They do not gate anything; operators read them.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
	Rows int     `json:"rows"`
}

// Evaluate computes RMSE, MAE and R² of the model on a holdout set.
func (m *DemandModel) Evaluate(X [][]float64, y []float64) (Metrics, error) {
	if len(X) == 0 {
		return Metrics{}, fmt.Errorf("no evaluation rows provided")
	}
	if len(X) != len(y) {
		return Metrics{}, fmt.Errorf("feature rows (%d) and targets (%d) differ in length", len(X), len(y))
	}

	predictions := make([]float64, len(X))
	var squaredSum, absSum float64

	for i, row := range X {
		yhat, err := m.Predict(row)
		if err != nil {
			return Metrics{}, fmt.Errorf("predict evaluation row %d: %w", i, err)
		}
		predictions[i] = yhat

		residual := y[i] - yhat
		squaredSum += residual * residual
		absSum += math.Abs(residual)
	}

	n := float64(len(X))
	return Metrics{
		RMSE: math.Sqrt(squaredSum / n),
		MAE:  absSum / n,
		R2:   stat.RSquaredFrom(predictions, y, nil),
		Rows: len(X),
	}, nil
}
