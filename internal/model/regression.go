// Package model implements the demand regressor: a ridge-regularized
// least-squares model over the 8 engineered features.
package model

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// DemandModel is a trained linear demand regressor. The feature names are
// part of the artifact: inference must present exactly these names in
// exactly this order.
type DemandModel struct {
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	RidgeLambda  float64   `json:"ridge_lambda"`
	TrainRows    int       `json:"train_rows"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Train fits a ridge regression of y on X by solving the regularized normal
// equations. The intercept is not penalized. X rows must all have
// len(featureNames) columns.
func Train(featureNames []string, X [][]float64, y []float64, lambda float64) (*DemandModel, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("no training rows provided")
	}
	if len(y) != n {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) differ in length", n, len(y))
	}
	if lambda < 0 {
		return nil, fmt.Errorf("ridge lambda must be non-negative, got %g", lambda)
	}

	p := len(featureNames)
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}

	// Augment with a bias column so the intercept is solved jointly.
	design := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		for j, v := range row {
			design.Set(i, j, v)
		}
		design.Set(i, p, 1)
	}
	target := mat.NewVecDense(n, y)

	// Normal equations: (XᵀX + λI)w = Xᵀy, intercept unpenalized.
	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}

	var moment mat.VecDense
	moment.MulVec(design.T(), target)

	var solution mat.VecDense
	if err := solution.SolveVec(&gram, &moment); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	weights := make([]float64, p)
	for j := 0; j < p; j++ {
		weights[j] = solution.AtVec(j)
	}

	return &DemandModel{
		FeatureNames: append([]string{}, featureNames...),
		Weights:      weights,
		Intercept:    solution.AtVec(p),
		RidgeLambda:  lambda,
		TrainRows:    n,
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// Predict returns the non-negative demand prediction for a feature vector
// given in artifact order.
func (m *DemandModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(m.Weights))
	}

	yhat := m.Intercept
	for i, w := range m.Weights {
		yhat += w * x[i]
	}

	if yhat < 0 {
		return 0, nil
	}
	return yhat, nil
}

// PredictNamed predicts demand for a feature vector with explicit names.
// The names must match the artifact's feature names exactly, in order; a
// mismatch fails instead of silently reordering.
func (m *DemandModel) PredictNamed(names []string, x []float64) (float64, error) {
	if len(names) != len(m.FeatureNames) {
		return 0, fmt.Errorf("got %d feature names, model expects %d", len(names), len(m.FeatureNames))
	}
	for i, name := range names {
		if name != m.FeatureNames[i] {
			return 0, fmt.Errorf("feature %d is %q, model expects %q", i, name, m.FeatureNames[i])
		}
	}

	return m.Predict(x)
}
