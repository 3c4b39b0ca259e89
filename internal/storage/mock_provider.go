package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// MockSink is a mock implementation of bulletin.TextSink for testing.
type MockSink struct {
	mock.Mock
}

// Write is the mock implementation of the Write method.
func (m *MockSink) Write(ctx context.Context, text bulletin.ExtractedText) error {
	args := m.Called(ctx, text)
	return args.Error(0) //nolint:wrapcheck
}

// Finish is the mock implementation of the Finish method.
func (m *MockSink) Finish(ctx context.Context, total int) error {
	args := m.Called(ctx, total)
	return args.Error(0) //nolint:wrapcheck
}
