package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"leftoverapi/internal/leftover"
	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
	"leftoverapi/internal/segmentation"
	"leftoverapi/internal/storage"
)

var (
	ErrNotImage            = errors.New("uploaded file is not an image")
	ErrUndecodableImage    = errors.New("image could not be decoded")
	ErrEstimation          = errors.New("leftover estimation failed")
	ErrMeasurementNotFound = errors.New("measurement not found")
)

// RetakeMessage asks the user for a new photo after the quality gate rejects a shot.
const RetakeMessage = "Please retake the photo so the whole tray is visible."

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// RetakeError reports a shot rejected by the quality gate. It matches ErrRetake.
type RetakeError struct {
	Diag *leftover.Diagnostics
}

// ErrRetake is the sentinel matched by every RetakeError.
var ErrRetake = errors.New("shot rejected, retake required")

func (e *RetakeError) Error() string {
	if e.Diag == nil {
		return ErrRetake.Error()
	}
	return ErrRetake.Error() + ": " + e.Diag.Reason
}

func (e *RetakeError) Is(target error) bool { return target == ErrRetake }

// Upload is an image received from a client.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// MeasureResult is returned after a measurement has been stored.
type MeasureResult struct {
	MeasurementID int64   `json:"measurement_id"`
	LeftoverRatio float64 `json:"leftover_ratio"`
	ImageURL      string  `json:"image_url"`
}

// AnalyzeResult is the full estimate including the quality gate outcome.
// LeftoverRatio is nil when a retake is required.
type AnalyzeResult struct {
	Status        leftover.Status       `json:"status"`
	LeftoverRatio *float64              `json:"leftover_ratio"`
	Message       string                `json:"message,omitempty"`
	Diag          *leftover.Diagnostics `json:"diag,omitempty"`
}

// MeasurementOptions configures where images go and how they are linked.
type MeasurementOptions struct {
	KeyPrefix string
	// Location decides the date folders of stored images. Nil means UTC.
	Location *time.Location
	// PresignTTL > 0 replaces history image URLs with presigned links.
	PresignTTL time.Duration
}

// MeasurementService defines the leftover measurement use cases.
type MeasurementService interface {
	// Measure estimates the leftover ratio of an image, stores the image and records the result.
	// A rejected shot returns a *RetakeError and persists nothing.
	Measure(ctx context.Context, userID int64, img Upload) (*MeasureResult, error)

	// Estimate returns the leftover ratio without storing anything. Rejected shots report 0.
	Estimate(ctx context.Context, img Upload) (float64, error)

	// Analyze returns the estimate with its quality gate diagnostics without storing anything.
	Analyze(ctx context.Context, img Upload) (*AnalyzeResult, error)

	// History returns the newest measurements of userID. limit <= 0 uses DefaultHistoryLimit.
	History(ctx context.Context, userID int64, limit int) ([]model.Measurement, error)

	// Image streams the stored photo of a measurement owned by userID.
	Image(ctx context.Context, id, userID int64) (io.ReadCloser, storage.ObjectInfo, error)

	// Delete removes a measurement owned by userID and, best effort, its stored image.
	Delete(ctx context.Context, id, userID int64) error
}

type measurementService struct {
	est    segmentation.Estimator
	store  storage.Storage
	repo   repository.MeasurementRepository
	logger *slog.Logger
	opt    MeasurementOptions
	now    func() time.Time
}

// NewMeasurementService constructs a new MeasurementService.
func NewMeasurementService(est segmentation.Estimator, store storage.Storage, repo repository.MeasurementRepository, logger *slog.Logger, opt MeasurementOptions) MeasurementService {
	if opt.Location == nil {
		opt.Location = time.UTC
	}
	if opt.KeyPrefix == "" {
		opt.KeyPrefix = "leftover-images"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &measurementService{est: est, store: store, repo: repo, logger: logger, opt: opt, now: time.Now}
}

func (s *measurementService) Measure(ctx context.Context, userID int64, img Upload) (*MeasureResult, error) {
	format, err := checkImage(img)
	if err != nil {
		return nil, err
	}
	est, err := s.estimate(ctx, img)
	if err != nil {
		return nil, err
	}
	if est.Status != leftover.StatusOK {
		return nil, &RetakeError{Diag: est.Diag}
	}

	key := s.objectKey(format)
	obj, err := s.store.Put(ctx, key, bytes.NewReader(img.Data), storage.PutObjectOptions{
		Size:        int64(len(img.Data)),
		ContentType: img.ContentType,
		Metadata:    map[string]string{"user-id": fmt.Sprint(userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.repo.Create(ctx, &model.Measurement{
		UserID:        userID,
		ImageURL:      s.store.PublicURL(obj.Key),
		LeftoverRatio: est.Ratio,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.logger.InfoContext(ctx, "measurement stored",
		slog.Int64("user_id", userID),
		slog.Int64("measurement_id", stored.ID),
		slog.Float64("leftover_ratio", stored.LeftoverRatio),
	)
	return &MeasureResult{
		MeasurementID: stored.ID,
		LeftoverRatio: stored.LeftoverRatio,
		ImageURL:      stored.ImageURL,
	}, nil
}

func (s *measurementService) Estimate(ctx context.Context, img Upload) (float64, error) {
	if _, err := checkImage(img); err != nil {
		return 0, err
	}
	est, err := s.estimate(ctx, img)
	if err != nil {
		return 0, err
	}
	return est.LegacyRatio(), nil
}

func (s *measurementService) Analyze(ctx context.Context, img Upload) (*AnalyzeResult, error) {
	if _, err := checkImage(img); err != nil {
		return nil, err
	}
	est, err := s.estimate(ctx, img)
	if err != nil {
		return nil, err
	}
	res := &AnalyzeResult{Status: est.Status, Diag: est.Diag}
	if est.Status == leftover.StatusOK {
		ratio := est.Ratio
		res.LeftoverRatio = &ratio
	} else {
		res.Message = RetakeMessage
	}
	return res, nil
}

func (s *measurementService) History(ctx context.Context, userID int64, limit int) ([]model.Measurement, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	res, err := s.repo.ListByUser(ctx, userID, repository.PageQuery{Limit: limit})
	if err != nil {
		return nil, err
	}
	if s.opt.PresignTTL > 0 {
		for i := range res.Items {
			res.Items[i].ImageURL = s.presign(ctx, res.Items[i].ImageURL)
		}
	}
	return res.Items, nil
}

func (s *measurementService) Image(ctx context.Context, id, userID int64) (io.ReadCloser, storage.ObjectInfo, error) {
	m, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, ErrMeasurementNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	key, err := s.store.KeyFromURL(m.ImageURL)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("resolve image key: %w", err)
	}
	return s.store.Get(ctx, key)
}

func (s *measurementService) Delete(ctx context.Context, id, userID int64) error {
	m, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMeasurementNotFound
		}
		return err
	}

	// The row is gone either way; a leaked object is only logged.
	key, err := s.store.KeyFromURL(m.ImageURL)
	if err != nil {
		s.logger.WarnContext(ctx, "stored image not removed",
			slog.Int64("measurement_id", id),
			slog.String("image_url", m.ImageURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "stored image not removed",
			slog.Int64("measurement_id", id),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *measurementService) estimate(ctx context.Context, img Upload) (leftover.Estimate, error) {
	est, err := s.est.Estimate(ctx, img.Data, img.ContentType)
	if err != nil {
		return leftover.Estimate{}, fmt.Errorf("%w: %v", ErrEstimation, err)
	}
	return est, nil
}

func (s *measurementService) presign(ctx context.Context, imageURL string) string {
	key, err := s.store.KeyFromURL(imageURL)
	if err != nil {
		return imageURL
	}
	signed, err := s.store.PresignGet(ctx, key, s.opt.PresignTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "presign failed", slog.String("key", key), slog.String("error", err.Error()))
		return imageURL
	}
	return signed
}

// objectKey builds <prefix>/YYYY/MM/DD/<uuid>.<ext>.
func (s *measurementService) objectKey(format string) string {
	day := s.now().In(s.opt.Location).Format("2006/01/02")
	return path.Join(s.opt.KeyPrefix, day, uuid.NewString()+formatExt(format))
}

// checkImage rejects non-image uploads and returns the decoded format name.
func checkImage(img Upload) (string, error) {
	if !strings.HasPrefix(strings.ToLower(img.ContentType), "image/") {
		return "", ErrNotImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	return format, nil
}

func formatExt(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
