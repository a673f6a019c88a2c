package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockModel) Stream(ctx context.Context, req llm.Request, onDelta func(string) error) error {
	args := m.Called(ctx, req)
	for _, d := range args.Get(0).([]string) {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func systemPrompted(req llm.Request) bool {
	return strings.Contains(req.System, "AI app generator")
}

func TestComplete(t *testing.T) {
	m := new(mockModel)
	svc := NewService(ServiceConfig{Model: m})
	msgs := []llm.Message{
		{Role: "user", Content: "tell me about analytics"},
		{Role: "assistant", Content: "sure"},
		{Role: "user", Content: "can I sell things in a shop?"},
	}
	m.On("Complete", mock.Anything, mock.MatchedBy(systemPrompted)).Return("Yes.", nil)

	reply, err := svc.Complete(context.Background(), Input{Messages: msgs})
	require.NoError(t, err)
	assert.Equal(t, "Yes.", reply.Content)
	require.Len(t, reply.Upsells, 1)
	assert.Equal(t, "ecommerce", reply.Upsells[0].ID)
}

func TestStream(t *testing.T) {
	m := new(mockModel)
	svc := NewService(ServiceConfig{Model: m})
	m.On("Stream", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Model == "gpt-4o" && systemPrompted(req)
	})).Return([]string{"Hel", "lo"}, nil)

	var got strings.Builder
	upsells, err := svc.Stream(context.Background(), Input{
		Model:    "gpt-4o",
		Messages: []llm.Message{{Role: "user", Content: "hello"}},
	}, func(d string) error {
		got.WriteString(d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.String())
	assert.NotNil(t, upsells)
	assert.Empty(t, upsells)
}

func TestStream_UpstreamError(t *testing.T) {
	m := new(mockModel)
	svc := NewService(ServiceConfig{Model: m})
	m.On("Stream", mock.Anything, mock.Anything).Return([]string{"partial"}, shared.ErrRateLimited)

	_, err := svc.Stream(context.Background(), Input{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	}, func(string) error { return nil })
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}

func TestValidation(t *testing.T) {
	svc := NewService(ServiceConfig{Model: new(mockModel)})

	_, err := svc.Complete(context.Background(), Input{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	many := make([]llm.Message, MaxMessages+1)
	for i := range many {
		many[i] = llm.Message{Role: "user", Content: "x"}
	}
	_, err = svc.Stream(context.Background(), Input{Messages: many}, func(string) error { return nil })
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpsells_LastUserMessage(t *testing.T) {
	got := Upsells([]llm.Message{
		{Role: "user", Content: "custom domain please"},
		{Role: "assistant", Content: "what about seo?"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "custom-domain", got[0].ID)

	assert.Empty(t, Upsells(nil))
}
