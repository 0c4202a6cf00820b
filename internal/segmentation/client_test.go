package segmentation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leftoverapi/internal/config"
)

func encodeGray(t *testing.T, w, h int, px func(x, y int) uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: px(x, y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func encodeGray16(t *testing.T, w, h int, px func(x, y int) uint16) string {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: px(x, y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestSegmenter(t *testing.T, url string, reg prometheus.Registerer) *HTTPSegmenter {
	t.Helper()
	s, err := NewHTTPSegmenter(config.SegmenterConfig{URL: url, TimeoutSec: 5, MaxConcurrent: 1}, reg)
	require.NoError(t, err)
	return s
}

func TestHTTPSegmenter_Segment(t *testing.T) {
	mask := encodeGray(t, 2, 1, func(x, y int) uint8 {
		if x == 0 {
			return 255
		}
		return 0
	})
	labels := encodeGray(t, 4, 2, func(x, y int) uint8 { return uint8(x % 3) })

	var gotCT string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, segmentPath, r.URL.Path)
		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotCT = fh.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(f)

		_ = json.NewEncoder(w).Encode(segmentResponse{
			Width:  4,
			Height: 2,
			Instances: []instancePayload{{
				ClassName:  "leftovers",
				Confidence: 0.8,
				Mask:       mask,
			}},
			LabelMap: labels,
		})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	s := newTestSegmenter(t, srv.URL+"/", reg)

	res, err := s.Segment(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", gotCT)
	assert.Equal(t, []byte("jpeg-bytes"), gotBody)
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 2, res.Height)
	require.Len(t, res.Instances, 1)
	assert.Equal(t, "leftovers", res.Instances[0].ClassName)
	assert.Equal(t, []bool{true, false}, res.Instances[0].Mask.Bits)
	require.NotNil(t, res.LabelMap)
	assert.Equal(t, []uint8{0, 1, 2, 0, 0, 1, 2, 0}, res.LabelMap.Labels)
	assert.Equal(t, 1, testutil.CollectAndCount(s.duration))
}

func TestDecodeLabelMap_Gray16(t *testing.T) {
	t.Run("small class ids survive", func(t *testing.T) {
		lm, err := decodeLabelMap(encodeGray16(t, 2, 1, func(x, y int) uint16 { return uint16(x + 1) }))
		require.NoError(t, err)
		assert.Equal(t, []uint8{1, 2}, lm.Labels)
	})

	t.Run("class id above 255", func(t *testing.T) {
		_, err := decodeLabelMap(encodeGray16(t, 2, 1, func(x, y int) uint16 { return 300 }))
		assert.ErrorContains(t, err, "class 300 at (0,0) out of range")
	})

	t.Run("16 bit instance mask", func(t *testing.T) {
		m, err := decodeMask(encodeGray16(t, 2, 1, func(x, y int) uint16 { return uint16(x) }))
		require.NoError(t, err)
		assert.Equal(t, []bool{false, true}, m.Bits)
	})
}

func TestHTTPSegmenter_Errors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestSegmenter(t, srv.URL, nil).Segment(context.Background(), []byte("x"), "image/png")
		assert.ErrorContains(t, err, "segmenter returned status 503: model not loaded")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}))
		defer srv.Close()

		_, err := newTestSegmenter(t, srv.URL, nil).Segment(context.Background(), []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("label map size mismatch", func(t *testing.T) {
		labels := encodeGray(t, 2, 2, func(x, y int) uint8 { return 1 })
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(segmentResponse{
				Width:    3,
				Height:   3,
				LabelMap: labels,
			})
		}))
		defer srv.Close()

		_, err := newTestSegmenter(t, srv.URL, nil).Segment(context.Background(), []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("invalid mask encoding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(segmentResponse{
				Width:     2,
				Height:    2,
				Instances: []instancePayload{{ClassName: "dishes", Mask: "not-base64!"}},
			})
		}))
		defer srv.Close()

		_, err := newTestSegmenter(t, srv.URL, nil).Segment(context.Background(), []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("label map class out of range", func(t *testing.T) {
		labels := encodeGray16(t, 1, 1, func(x, y int) uint16 { return 1024 })
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(segmentResponse{Width: 1, Height: 1, LabelMap: labels})
		}))
		defer srv.Close()

		_, err := newTestSegmenter(t, srv.URL, nil).Segment(context.Background(), []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := NewHTTPSegmenter(config.SegmenterConfig{}, nil)
		assert.Error(t, err)
	})
}

func TestHTTPSegmenter_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_ = json.NewEncoder(w).Encode(segmentResponse{Width: 1, Height: 1})
	}))
	defer srv.Close()

	s := newTestSegmenter(t, srv.URL, nil)
	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := s.Segment(context.Background(), []byte("x"), "image/png")
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestHTTPSegmenter_WaitingCallerHonoursContext(t *testing.T) {
	var calls int32
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		_ = json.NewEncoder(w).Encode(segmentResponse{Width: 1, Height: 1})
	}))
	defer srv.Close()

	s := newTestSegmenter(t, srv.URL, nil)

	first := make(chan error, 1)
	go func() {
		_, err := s.Segment(context.Background(), []byte("x"), "image/png")
		first <- err
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := s.Segment(ctx, []byte("y"), "image/png")
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.ErrorContains(t, err, "wait for segmenter slot")

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPSegmenter_Ping(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestSegmenter(t, srv.URL, nil)
	assert.NoError(t, s.Ping(context.Background()))

	healthy.Store(false)
	assert.Error(t, s.Ping(context.Background()))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("semantic")
	assert.NoError(t, err)
	assert.Equal(t, ModeSemantic, m)

	_, err = ParseMode("panoptic")
	assert.Error(t, err)
}
