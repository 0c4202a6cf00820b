package mocks

import (
	"context"
	"io"

	"leftoverapi/internal/model"
	"leftoverapi/internal/service"
	"leftoverapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockMeasurementService struct {
	mock.Mock
}

func (m *MockMeasurementService) Measure(ctx context.Context, userID int64, img service.Upload) (*service.MeasureResult, error) {
	args := m.Called(ctx, userID, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MeasureResult), args.Error(1)
}

func (m *MockMeasurementService) Estimate(ctx context.Context, img service.Upload) (float64, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockMeasurementService) Analyze(ctx context.Context, img service.Upload) (*service.AnalyzeResult, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeResult), args.Error(1)
}

func (m *MockMeasurementService) History(ctx context.Context, userID int64, limit int) ([]model.Measurement, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Measurement), args.Error(1)
}

func (m *MockMeasurementService) Image(ctx context.Context, id, userID int64) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockMeasurementService) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
