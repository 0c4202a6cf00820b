package mocks

import (
	"context"

	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockMeasurementRepository struct {
	mock.Mock
}

func (m *MockMeasurementRepository) Create(ctx context.Context, ms *model.Measurement) (*model.Measurement, error) {
	args := m.Called(ctx, ms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Measurement), args.Error(1)
}

func (m *MockMeasurementRepository) ListByUser(ctx context.Context, userID int64, pq repository.PageQuery) (*repository.PageResult[model.Measurement], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Measurement]), args.Error(1)
}

func (m *MockMeasurementRepository) FindOwned(ctx context.Context, id, userID int64) (*model.Measurement, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Measurement), args.Error(1)
}

func (m *MockMeasurementRepository) DeleteOwned(ctx context.Context, id, userID int64) (*model.Measurement, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Measurement), args.Error(1)
}
