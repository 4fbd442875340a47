package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource is a row source that also holds a connectable handle.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(ctx context.Context) ([][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *MockSource) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// panicSource fails with a runtime error while fetching.
type panicSource struct{}

func (panicSource) Name() string { return "panic" }

func (panicSource) Fetch(context.Context) ([][]string, error) {
	var grid [][]string
	return [][]string{grid[3]}, nil
}
