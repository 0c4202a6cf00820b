package handler

import (
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"leftoverapi/internal/http/middleware"
	"leftoverapi/internal/leftover"
	"leftoverapi/internal/service"
)

type retakePayload struct {
	RequestID string                `json:"request_id"`
	Error     errorEnvelope         `json:"error"`
	Diag      *leftover.Diagnostics `json:"diag,omitempty"`
}

type historyResponse struct {
	History any `json:"history"`
}

type ratioResponse struct {
	LeftoverRatio float64 `json:"leftover_ratio"`
}

// uploadError rejects a malformed multipart upload with a 400.
type uploadError struct {
	code    string
	message string
}

func (e *uploadError) Error() string { return e.message }

// readUpload reads the multipart "file" field.
func readUpload(c *fiber.Ctx) (service.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, &uploadError{"FILE_REQUIRED", "file is required"}
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, &uploadError{"FILE_OPEN_ERROR", "cannot open uploaded file"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, &uploadError{"FILE_OPEN_ERROR", "cannot read uploaded file"}
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return service.Upload{Data: data, Filename: fh.Filename, ContentType: ct}, nil
}

// Predict measures, stores and records the leftover ratio of an uploaded photo.
// @Summary Measure leftovers
// @Tags measurements
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "tray photo"
// @Success 200 {object} service.MeasureResult
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 422 {object} retakePayload
// @Router /api/predict [post]
func Predict(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		up, err := readUpload(c)
		if err != nil {
			return measurementError(c, err)
		}
		res, err := svc.Measure(c.UserContext(), userID, up)
		if err != nil {
			return measurementError(c, err)
		}
		return c.JSON(res)
	}
}

// LegacyPredict returns only the ratio. Rejected shots report 0.
// @Summary Leftover ratio (legacy)
// @Tags measurements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "tray photo"
// @Success 200 {object} ratioResponse
// @Failure 400 {object} errorPayload
// @Router /predict/leftover_ratio [post]
func LegacyPredict(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, err := readUpload(c)
		if err != nil {
			return measurementError(c, err)
		}
		ratio, err := svc.Estimate(c.UserContext(), up)
		if err != nil {
			return measurementError(c, err)
		}
		return c.JSON(ratioResponse{LeftoverRatio: ratio})
	}
}

// Analyze returns the estimate with the shot quality verdict.
// @Summary Analyze a photo without saving it
// @Tags measurements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "tray photo"
// @Success 200 {object} service.AnalyzeResult
// @Failure 400 {object} errorPayload
// @Router /api/analyze [post]
func Analyze(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, err := readUpload(c)
		if err != nil {
			return measurementError(c, err)
		}
		res, err := svc.Analyze(c.UserContext(), up)
		if err != nil {
			return measurementError(c, err)
		}
		return c.JSON(res)
	}
}

// History lists the caller's measurements, newest first.
// @Summary Measurement history
// @Tags measurements
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max items (default 50, max 200)"
// @Success 200 {object} historyResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /api/history [get]
func History(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
			}
			limit = n
		}
		items, err := svc.History(c.UserContext(), userID, limit)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(historyResponse{History: items})
	}
}

// MeasurementImage streams the stored photo of one of the caller's measurements.
// @Summary Measurement photo
// @Tags measurements
// @Produce image/jpeg,image/png
// @Security BearerAuth
// @Param id path int true "measurement id"
// @Success 200
// @Failure 404 {object} errorPayload
// @Router /api/measurements/{id}/image [get]
func MeasurementImage(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := svc.Image(c.UserContext(), id, userID)
		if err != nil {
			return measurementError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}

// DeleteMeasurement removes one of the caller's measurements.
// @Summary Delete a measurement
// @Tags measurements
// @Security BearerAuth
// @Param id path int true "measurement id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/measurements/{id} [delete]
func DeleteMeasurement(svc service.MeasurementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.UserID(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id, userID); err != nil {
			return measurementError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func measurementError(c *fiber.Ctx, err error) error {
	var (
		retake *service.RetakeError
		badUp  *uploadError
	)
	switch {
	case errors.As(err, &badUp):
		return writeError(c, fiber.StatusBadRequest, badUp.code, badUp.message)
	case errors.As(err, &retake):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(retakePayload{
			RequestID: requestIDFromCtx(c),
			Error:     errorEnvelope{Code: "RETAKE_REQUIRED", Message: service.RetakeMessage},
			Diag:      retake.Diag,
		})
	case errors.Is(err, service.ErrNotImage):
		return writeError(c, fiber.StatusBadRequest, "NOT_IMAGE", "uploaded file is not an image")
	case errors.Is(err, service.ErrUndecodableImage):
		return writeError(c, fiber.StatusBadRequest, "INVALID_IMAGE", "image could not be decoded")
	case errors.Is(err, service.ErrMeasurementNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "measurement not found")
	case errors.Is(err, service.ErrEstimation):
		slog.WarnContext(c.UserContext(), "estimation failed", slog.String("error", err.Error()))
		return writeError(c, fiber.StatusBadGateway, "MODEL_UNAVAILABLE", "leftover estimation failed")
	default:
		return internalError(c, err)
	}
}
