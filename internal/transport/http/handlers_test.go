package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/exporter"
	"retailcli/internal/model"
	"retailcli/internal/services"
	"retailcli/pkg/contracts/domain"
)

type testEnv struct {
	cfg    *config.Config
	paths  *config.Paths
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Pricing: config.PricingConfig{
			Mode:        "discrete_grid",
			Multipliers: []float64{0.9, 1.0, 1.1},
			MarkupRate:  0.05,
			GridMin:     1.0,
			GridMax:     50.0,
			GridSteps:   200,
			TopN:        10,
		},
	}

	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	forecast := services.NewForecastService(cfg, paths, logger)
	products := services.NewProductService(cfg, paths, logger)
	health := services.NewHealthService("test", paths, forecast, logger)

	router := NewRouter(RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Forecast: forecast,
		Products: products,
		Health:   health,
	})

	return &testEnv{cfg: cfg, paths: paths, router: router}
}

// saveModel persists a model predicting quantity = intercept + w*avg_price.
func (e *testEnv) saveModel(t *testing.T, intercept, priceWeight float64) {
	t.Helper()
	m := &model.DemandModel{
		FeatureNames: domain.FeatureNames,
		Weights:      []float64{0, 0, 0, 0, 0, 0, 0, priceWeight},
		Intercept:    intercept,
		TrainRows:    100,
		TrainedAt:    time.Now().UTC(),
	}
	require.NoError(t, m.Save(e.paths.ModelFile))
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

const predictBody = `{
	"stock_code": "85123A",
	"avg_price": 10, "daily_quantity": 5, "event_date": "2024-03-04"
}`

func TestPredictHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.saveModel(t, 0, 2) // quantity = 2 * avg_price

	rec := env.do(t, http.MethodPost, "/api/v1/predict", predictBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp services.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 20.0, resp.PredictedQuantity, 1e-6)
	assert.InDelta(t, 10.5, resp.RecommendedPrice, 1e-6)
	assert.InDelta(t, 210.0, resp.Revenue, 1e-6)
	assert.Equal(t, "markup_only", resp.Policy)
}

func TestPredictDerivesCalendarFeatures(t *testing.T) {
	env := newTestEnv(t)

	// Weight only the calendar features: quantity = dow + 10*month +
	// 100*quarter. 2024-03-04 is a Monday in Q1.
	m := &model.DemandModel{
		FeatureNames: domain.FeatureNames,
		Weights:      []float64{0, 0, 0, 0, 1, 10, 100, 0},
		Intercept:    0,
		TrainRows:    100,
		TrainedAt:    time.Now().UTC(),
	}
	require.NoError(t, m.Save(env.paths.ModelFile))

	rec := env.do(t, http.MethodPost, "/api/v1/predict", predictBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp services.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 130.0, resp.PredictedQuantity, 1e-6) // 0 + 10*3 + 100*1
}

func TestPredictWithoutModelReturns503(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/predict", predictBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestPredictValidation(t *testing.T) {
	env := newTestEnv(t)
	env.saveModel(t, 0, 2)

	bad := strings.Replace(predictBody, `"avg_price": 10`, `"avg_price": 0`, 1)
	rec := env.do(t, http.MethodPost, "/api/v1/predict", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = strings.Replace(predictBody, `"2024-03-04"`, `"04/03/2024"`, 1)
	rec = env.do(t, http.MethodPost, "/api/v1/predict", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/predict", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopProductsFromArtifact(t *testing.T) {
	env := newTestEnv(t)
	writer := exporter.NewCSVWriter(nil)
	require.NoError(t, dataset.SaveTopProducts(writer, env.paths.TopProductsCSV, []domain.TopProduct{
		{ProductName: "Heart", TotalRevenue: 500},
		{ProductName: "Lantern", TotalRevenue: 300},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/products/top?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []domain.TopProduct `json:"products"`
		Count    int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Heart", resp.Products[0].ProductName)
}

func TestTopProductsWithoutArtifactsReturns503(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products/top", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOptimalPrice(t *testing.T) {
	env := newTestEnv(t)
	env.saveModel(t, 100, -2) // quantity = 100 - 2*price, optimum 25

	writer := exporter.NewCSVWriter(nil)
	require.NoError(t, dataset.SaveDailySales(writer, env.paths.DailySalesCSV, []domain.DailySales{
		{StockCode: "85123A", ProductName: "Heart",
			EventDate:     time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC),
			DailyQuantity: 10, DailyRevenue: 200, AvgPrice: 20},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/products/85123A/optimal-price", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		BestPrice float64 `json:"best_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 25.0, resp.BestPrice, 0.25)
}

func TestOptimalPriceGridOverride(t *testing.T) {
	env := newTestEnv(t)
	env.saveModel(t, 100, -2)

	writer := exporter.NewCSVWriter(nil)
	require.NoError(t, dataset.SaveDailySales(writer, env.paths.DailySalesCSV, []domain.DailySales{
		{StockCode: "85123A", ProductName: "Heart",
			EventDate:     time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC),
			DailyQuantity: 10, DailyRevenue: 200, AvgPrice: 20},
	}))

	// Grid capped below the unconstrained optimum of 25.
	rec := env.do(t, http.MethodGet, "/api/v1/products/85123A/optimal-price?min=1&max=20&steps=20", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		BestPrice float64 `json:"best_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 20.0, resp.BestPrice, 1e-9)

	rec = env.do(t, http.MethodGet, "/api/v1/products/85123A/optimal-price?steps=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimalPriceUnknownProductReturns404(t *testing.T) {
	env := newTestEnv(t)
	env.saveModel(t, 100, -2)

	writer := exporter.NewCSVWriter(nil)
	require.NoError(t, dataset.SaveDailySales(writer, env.paths.DailySalesCSV, []domain.DailySales{
		{StockCode: "85123A", EventDate: time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC),
			DailyQuantity: 10, AvgPrice: 20},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/products/MISSING/optimal-price", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsFilterByStockCode(t *testing.T) {
	env := newTestEnv(t)
	writer := exporter.NewCSVWriter(nil)

	day := time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, dataset.SavePredictions(writer, env.paths.RecommendationsCSV, []domain.PredictionRow{
		{FeatureRow: domain.FeatureRow{StockCode: "A", ProductName: "Heart", EventDate: day, AvgPrice: 10},
			PredictedQuantity: 5, RecommendedPrice: 11, Revenue: 55},
		{FeatureRow: domain.FeatureRow{StockCode: "B", ProductName: "Lantern", EventDate: day, AvgPrice: 3},
			PredictedQuantity: 2, RecommendedPrice: 3.3, Revenue: 6.6},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/recommendations?stock_code=A", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Recommendations []domain.PredictionRow `json:"recommendations"`
		Count           int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "A", resp.Recommendations[0].StockCode)

	rec = env.do(t, http.MethodGet, "/api/v1/recommendations?from=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzReportsArtifacts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.Artifacts["model"].Present)

	env.saveModel(t, 0, 1)
	rec = env.do(t, http.MethodGet, "/healthz", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Artifacts["model"].Present)
}

func TestRecommendationsRevenueBackfill(t *testing.T) {
	env := newTestEnv(t)
	writer := exporter.NewCSVWriter(nil)

	day := time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, dataset.SavePredictions(writer, env.paths.RecommendationsCSV, []domain.PredictionRow{
		{FeatureRow: domain.FeatureRow{StockCode: "A", EventDate: day, AvgPrice: 10},
			PredictedQuantity: 5, RecommendedPrice: 12},
		{FeatureRow: domain.FeatureRow{StockCode: "B", EventDate: day, AvgPrice: 3},
			PredictedQuantity: 2},
	}))

	rec := env.do(t, http.MethodGet, "/api/v1/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Recommendations []domain.PredictionRow `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 2)

	byCode := map[string]domain.PredictionRow{}
	for _, row := range resp.Recommendations {
		byCode[row.StockCode] = row
	}
	// Missing revenue is recomputed from the recommended price, falling
	// back to the average price.
	assert.InDelta(t, 60.0, byCode["A"].Revenue, 1e-9)
	assert.InDelta(t, 6.0, byCode["B"].Revenue, 1e-9)
}
