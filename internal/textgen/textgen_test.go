package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aisleworks/vendor-research/pkg/anthropic"
	"github.com/aisleworks/vendor-research/pkg/perplexity"
)

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockPerplexityClient struct {
	mock.Mock
}

func (m *mockPerplexityClient) ChatCompletion(ctx context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*perplexity.ChatCompletionResponse), args.Error(1)
}

func TestAnthropicGenerator(t *testing.T) {
	client := new(mockAnthropicClient)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			len(req.Messages) == 1 &&
			req.Messages[0].Content == "rank these vendors"
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `["Spin Master"]`}},
	}, nil)

	g := NewAnthropic(client, "claude-haiku-4-5-20251001")
	out, err := g.Generate(context.Background(), "rank these vendors")
	require.NoError(t, err)
	assert.Equal(t, `["Spin Master"]`, out)
	client.AssertExpectations(t)
}

func TestAnthropicGenerator_Error(t *testing.T) {
	client := new(mockAnthropicClient)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	g := NewAnthropic(client, "claude-haiku-4-5-20251001")
	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
}

func TestPerplexityGenerator(t *testing.T) {
	client := new(mockPerplexityClient)
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return req.Model == "sonar-pro" && len(req.Messages) == 1
	})).Return(&perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{
			{Message: perplexity.Message{Role: "assistant", Content: "no suitable vendors"}},
		},
	}, nil)

	g := NewPerplexity(client, "sonar-pro")
	out, err := g.Generate(context.Background(), "rank these vendors")
	require.NoError(t, err)
	assert.Equal(t, "no suitable vendors", out)
	client.AssertExpectations(t)
}
