package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	args := m.Called(ctx, text, categories)
	return args.String(0), args.Error(1)
}

var (
	_ Extractor  = (*mockExtractor)(nil)
	_ Classifier = (*mockClassifier)(nil)
)
