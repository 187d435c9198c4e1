package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickpulse/internal/domain/dto"
	"github.com/guttosm/tickpulse/internal/middleware"
	"github.com/guttosm/tickpulse/internal/ohlcv"
	"github.com/guttosm/tickpulse/internal/service"
	"github.com/guttosm/tickpulse/internal/storage"
)

// Handler provides HTTP handlers for bar generation and stored runs.
type Handler struct {
	svc service.OHLCVService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.OHLCVService) *Handler {
	return &Handler{svc: svc}
}

// GenerateOHLCV handles POST /api/v1/ohlcv.
//
// Responses:
//   - 200 OK: bars for the window, plus run_id when persisted.
//   - 400 Bad Request: malformed body, datetimes or interval.
//   - 404 Not Found: no shard or no tick inside the window.
//   - 500 Internal Server Error: filesystem or database failure.
//
// GenerateOHLCV godoc
// @Summary      Generate OHLCV bars
// @Description  Aggregates cleaned ticks in [start, end) into fixed-interval bars
// @Tags         ohlcv
// @Accept       json
// @Produce      json
// @Param        request  body      dto.OHLCVRequest   true  "Window and interval"
// @Success      200      {object}  dto.OHLCVResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404      {object}  dto.ErrorResponse  "Not Found"
// @Failure      500      {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/ohlcv [post]
func (h *Handler) GenerateOHLCV(c *gin.Context) {
	var req dto.OHLCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), service.GenerateRequest{
		Start:    req.Start,
		End:      req.End,
		Interval: req.Interval,
		Persist:  req.Persist,
	})
	if err != nil {
		_ = c.Error(generateError(err))
		return
	}

	c.JSON(http.StatusOK, dto.OHLCVResponse{
		RunID:       res.RunID,
		Files:       res.Files,
		Ticks:       res.Ticks,
		FailedFiles: res.FailedFiles,
		Bars:        dto.NewBarResponses(res.Bars),
	})
}

func generateError(err error) *middleware.HTTPError {
	switch {
	case errors.Is(err, ohlcv.ErrNoShards), errors.Is(err, ohlcv.ErrNoTicks):
		return &middleware.HTTPError{Status: http.StatusNotFound, Message: "no data found", Err: err}
	case errors.Is(err, ohlcv.ErrInvalidRequest):
		return &middleware.HTTPError{Status: http.StatusBadRequest, Message: "invalid request", Err: err}
	case errors.Is(err, service.ErrPersistenceDisabled):
		return &middleware.HTTPError{Status: http.StatusServiceUnavailable, Message: "persistence unavailable", Err: err}
	default:
		return &middleware.HTTPError{Status: http.StatusInternalServerError, Message: "failed to generate bars", Err: err}
	}
}

// GetRunBars handles GET /api/v1/runs/:id/bars.
//
// GetRunBars godoc
// @Summary      Get stored bars
// @Description  Returns the bars of a persisted generation run
// @Tags         ohlcv
// @Produce      json
// @Param        id   path      string             true  "Run id"
// @Success      200  {object}  dto.OHLCVResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse  "Not Found"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs/{id}/bars [get]
func (h *Handler) GetRunBars(c *gin.Context) {
	id := c.Param("id")

	run, bars, err := h.svc.GetRunBars(c.Request.Context(), id)
	switch {
	case errors.Is(err, storage.ErrRunNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "run not found", nil)
		return
	case errors.Is(err, service.ErrPersistenceDisabled):
		middleware.AbortWithError(c, http.StatusServiceUnavailable, "persistence unavailable", err)
		return
	case err != nil:
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.OHLCVResponse{
		RunID: run.ID,
		Ticks: run.TickCount,
		Bars:  dto.NewBarResponses(bars),
	})
}
