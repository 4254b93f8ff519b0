package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/moderationhq/modgate/pkg/moderation"
)

type MockImageClassifier struct {
	mock.Mock
}

func (m *MockImageClassifier) ClassifyImage(ctx context.Context, image moderation.ImageInput) (*moderation.ImageSignals, error) {
	args := m.Called(ctx, image)
	signals, _ := args.Get(0).(*moderation.ImageSignals)
	return signals, args.Error(1)
}

type MockTextClassifier struct {
	mock.Mock
}

func (m *MockTextClassifier) ClassifyText(ctx context.Context, text string) (*moderation.TextSignals, error) {
	args := m.Called(ctx, text)
	signals, _ := args.Get(0).(*moderation.TextSignals)
	return signals, args.Error(1)
}

type MockImageFetcher struct {
	mock.Mock
}

func (m *MockImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
