package classify

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/classify-cli/pkg/huggingface"
)

type mockHFClient struct {
	mock.Mock
}

func (m *mockHFClient) ZeroShot(ctx context.Context, req huggingface.ZeroShotRequest) (*huggingface.ZeroShotResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*huggingface.ZeroShotResponse), args.Error(1)
}

var _ huggingface.Client = (*mockHFClient)(nil)
