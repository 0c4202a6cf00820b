package segmentation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/semaphore"

	"leftoverapi/internal/config"
	"leftoverapi/internal/leftover"
)

const (
	segmentPath = "/v1/segment"
	healthPath  = "/health"

	maxResponseBytes = 64 << 20
)

type segmentResponse struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Instances []instancePayload `json:"instances"`
	LabelMap  string            `json:"label_map"`
}

type instancePayload struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	Mask       string  `json:"mask"`
}

// HTTPSegmenter is a Segmenter backed by the model server's HTTP API.
// It is safe for concurrent use; at most MaxConcurrent calls are in flight.
type HTTPSegmenter struct {
	baseURL  string
	client   *http.Client
	sem      *semaphore.Weighted
	duration *prometheus.HistogramVec
}

var _ Segmenter = (*HTTPSegmenter)(nil)

// NewHTTPSegmenter builds a client for the model server. reg may be nil to skip metrics.
func NewHTTPSegmenter(cfg config.SegmenterConfig, reg prometheus.Registerer) (*HTTPSegmenter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("segmenter url is required")
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &HTTPSegmenter{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		sem: semaphore.NewWeighted(int64(limit)),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "segmenter_request_duration_seconds",
				Help:    "Latency of model server segmentation calls.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		if err := reg.Register(s.duration); err != nil {
			return nil, fmt.Errorf("register segmenter metrics: %w", err)
		}
	}
	return s, nil
}

// Segment uploads the image and decodes the returned masks.
func (s *HTTPSegmenter) Segment(ctx context.Context, img []byte, contentType string) (*Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for segmenter slot: %w", err)
	}
	defer s.sem.Release(1)

	start := time.Now()
	res, err := s.segment(ctx, img, contentType)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return res, err
}

func (s *HTTPSegmenter) segment(ctx context.Context, img []byte, contentType string) (*Result, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+segmentPath, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("segmenter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("segmenter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload segmentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return decodeResponse(&payload)
}

// Ping calls the model server health endpoint.
func (s *HTTPSegmenter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("segmenter health returned status %d", resp.StatusCode)
	}
	return nil
}

func decodeResponse(p *segmentResponse) (*Result, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid image size %dx%d", ErrBadResponse, p.Width, p.Height)
	}
	res := &Result{Width: p.Width, Height: p.Height}

	for i, inst := range p.Instances {
		m, err := decodeMask(inst.Mask)
		if err != nil {
			return nil, fmt.Errorf("%w: instance %d: %v", ErrBadResponse, i, err)
		}
		res.Instances = append(res.Instances, leftover.Instance{
			ClassName:  inst.ClassName,
			Confidence: inst.Confidence,
			Mask:       m,
		})
	}

	if p.LabelMap != "" {
		lm, err := decodeLabelMap(p.LabelMap)
		if err != nil {
			return nil, fmt.Errorf("%w: label map: %v", ErrBadResponse, err)
		}
		if lm.Width != p.Width || lm.Height != p.Height {
			return nil, fmt.Errorf("%w: label map is %dx%d, image is %dx%d",
				ErrBadResponse, lm.Width, lm.Height, p.Width, p.Height)
		}
		res.LabelMap = lm
	}
	return res, nil
}

func decodePNG(b64 string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(raw))
}

func decodeMask(b64 string) (*leftover.Mask, error) {
	img, err := decodePNG(b64)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	m := leftover.NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if classAt(img, b.Min.X+x, b.Min.Y+y) != 0 {
				m.Set(x, y, true)
			}
		}
	}
	return m, nil
}

func decodeLabelMap(b64 string) (*leftover.LabelMap, error) {
	img, err := decodePNG(b64)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	lm := &leftover.LabelMap{Width: b.Dx(), Height: b.Dy(), Labels: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := classAt(img, b.Min.X+x, b.Min.Y+y)
			if c > math.MaxUint8 {
				return nil, fmt.Errorf("class %d at (%d,%d) out of range", c, x, y)
			}
			lm.Labels[y*lm.Width+x] = uint8(c)
		}
	}
	return lm, nil
}

// classAt reads a class value. Paletted images carry the class in the palette
// index, 16-bit grey images in the full sample.
func classAt(img image.Image, x, y int) uint16 {
	switch m := img.(type) {
	case *image.Gray:
		return uint16(m.GrayAt(x, y).Y)
	case *image.Gray16:
		return m.Gray16At(x, y).Y
	case *image.Paletted:
		return uint16(m.ColorIndexAt(x, y))
	}
	return uint16(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
}
