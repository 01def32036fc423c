package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "retailcli/internal/errors"
	"retailcli/internal/services"
	"retailcli/pkg/contracts/domain"
)

// PredictRequest is the body of POST /api/v1/predict: a single day's
// sales snapshot. The engineered features are derived server-side.
type PredictRequest struct {
	StockCode     string  `json:"stock_code"`
	AvgPrice      float64 `json:"avg_price" validate:"required,gt=0"`
	DailyQuantity float64 `json:"daily_quantity" validate:"gte=0"`
	EventDate     string  `json:"event_date" validate:"required"`
}

// featureRow expands the snapshot into the model's input row: the moving
// averages and the quantity lag collapse to the observed daily quantity,
// the price lag to the current price, and the calendar fields come from
// event_date.
func (req *PredictRequest) featureRow() (domain.FeatureRow, error) {
	day, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return domain.FeatureRow{}, err
	}

	return domain.FeatureRow{
		StockCode: req.StockCode,
		EventDate: day,
		DayOfWeek: domain.DayOfWeek(day),
		Month:     int(day.Month()),
		Quarter:   domain.Quarter(day),
		Qty7dMA:   req.DailyQuantity,
		Qty30dMA:  req.DailyQuantity,
		QtyLag1:   req.DailyQuantity,
		PriceLag1: req.AvgPrice,
		AvgPrice:  req.AvgPrice,
	}, nil
}

// ForecastHandler serves on-demand demand predictions.
type ForecastHandler struct {
	service      *services.ForecastService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewForecastHandler creates a forecast handler.
func NewForecastHandler(service *services.ForecastService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "forecast_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Predict handles POST /api/v1/predict.
func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			h.errorHandler.HandleError(w, r,
				apierrors.ErrValidation(first.Field(), "failed "+first.Tag()+" validation"))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidationFailed)
		return
	}

	row, err := req.featureRow()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("event_date", "must be YYYY-MM-DD"))
		return
	}

	prediction, err := h.service.Predict(r.Context(), row)
	if err != nil {
		if errors.Is(err, services.ErrModelNotTrained) {
			h.errorHandler.HandleError(w, r, apierrors.ErrModelNotReady)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	predictionsServed.Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, prediction)
}
