package mocks

import (
	"context"

	"leftoverapi/internal/leftover"
	"leftoverapi/internal/segmentation"

	"github.com/stretchr/testify/mock"
)

type MockSegmenter struct {
	mock.Mock
}

func (m *MockSegmenter) Segment(ctx context.Context, image []byte, contentType string) (*segmentation.Result, error) {
	args := m.Called(ctx, image, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*segmentation.Result), args.Error(1)
}

func (m *MockSegmenter) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Estimate(ctx context.Context, image []byte, contentType string) (leftover.Estimate, error) {
	args := m.Called(ctx, image, contentType)
	return args.Get(0).(leftover.Estimate), args.Error(1)
}
