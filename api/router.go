package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-price/metrics"
	"smart-price/models"
	"smart-price/services"
	"smart-price/utils"
)

// Handler serves predictions over HTTP. It only reads shared state.
type Handler struct {
	predictor *services.Predictor
	options   *models.FormOptions
	metrics   *metrics.Metrics
	logger    *utils.Logger
}

// predictBody mirrors models.PredictionRequest with presence checks.
type predictBody struct {
	Year         *float64 `json:"year" binding:"required"`
	KmDriven     *float64 `json:"km_driven" binding:"required"`
	Mileage      *float64 `json:"mileage" binding:"required"`
	Engine       *float64 `json:"engine" binding:"required"`
	MaxPower     *float64 `json:"max_power" binding:"required"`
	Seats        *float64 `json:"seats" binding:"required"`
	Brand        string   `json:"brand" binding:"required"`
	Fuel         string   `json:"fuel" binding:"required"`
	SellerType   string   `json:"seller_type" binding:"required"`
	Transmission string   `json:"transmission" binding:"required"`
	Owner        string   `json:"owner" binding:"required"`
}

func (b *predictBody) request() *models.PredictionRequest {
	return &models.PredictionRequest{
		Year:         *b.Year,
		KmDriven:     *b.KmDriven,
		Mileage:      *b.Mileage,
		Engine:       *b.Engine,
		MaxPower:     *b.MaxPower,
		Seats:        *b.Seats,
		Brand:        b.Brand,
		Fuel:         b.Fuel,
		SellerType:   b.SellerType,
		Transmission: b.Transmission,
		Owner:        b.Owner,
	}
}

// predictResponse is the JSON body of a successful prediction. The price is
// a plain number, already rounded to whole currency units.
type predictResponse struct {
	Price      float64 `json:"price"`
	Raw        float64 `json:"raw"`
	Floored    bool    `json:"floored"`
	ArtifactID string  `json:"artifact_id"`
}

func newPredictResponse(p *models.Prediction) predictResponse {
	return predictResponse{
		Price:      p.Price.InexactFloat64(),
		Raw:        p.Raw,
		Floored:    p.Floored,
		ArtifactID: p.ArtifactID,
	}
}

// NewRouter wires the HTTP routes. opts may be nil when no live dataset is
// available, in which case /api/options answers 503.
func NewRouter(p *services.Predictor, opts *models.FormOptions, m *metrics.Metrics, logger *utils.Logger) *gin.Engine {
	h := &Handler{predictor: p, options: opts, metrics: m, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), h.observe())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	{
		api.POST("/predict", h.Predict)
		api.GET("/options", h.Options)
	}
	return r
}

func (h *Handler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.HTTPRequest(route, c.Writer.Status(), time.Since(start))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"artifact_id": h.predictor.Artifact().ID.String(),
	})
}

func (h *Handler) Predict(c *gin.Context) {
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_request"})
		return
	}

	pred, err := h.predictor.Predict(body.request())
	if err != nil {
		var unknown *services.UnknownCategoryError
		switch {
		case errors.As(err, &unknown):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"kind":   "unknown_category",
				"column": unknown.Column,
				"label":  unknown.Label,
			})
		case errors.Is(err, services.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_request"})
		default:
			h.logger.Error("[api] Prediction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		}
		return
	}

	c.JSON(http.StatusOK, newPredictResponse(pred))
}

func (h *Handler) Options(c *gin.Context) {
	if h.options == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrEmptyDataset.Error()})
		return
	}
	c.JSON(http.StatusOK, h.options)
}
