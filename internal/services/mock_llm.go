package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc        func(ctx context.Context) error
	GenerateResponseFunc func(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error)

	// Track calls for testing
	InitModelCalls        int
	GenerateResponseCalls []GenerateResponseCall

	mu sync.Mutex // protects all fields above
}

type GenerateResponseCall struct {
	Messages []chat.ChatMessage
	Options  chat.CompletionOptions
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		GenerateResponseCalls: make([]GenerateResponseCall, 0),
	}
}

func (m *MockLLMAPI) Name() string {
	return "mock"
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls++
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx)
	}
	return nil
}

// GetChatResponse mocks response generation
func (m *MockLLMAPI) GetChatResponse(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error) {
	m.mu.Lock()
	m.GenerateResponseCalls = append(m.GenerateResponseCalls, GenerateResponseCall{
		Messages: messages,
		Options:  opts,
	})
	fn := m.GenerateResponseFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, opts)
	}

	return &chat.Completion{
		Message: "Mock response",
	}, nil
}

// SetResponse makes every call return message
func (m *MockLLMAPI) SetResponse(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateResponseFunc = func(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error) {
		return &chat.Completion{Message: message}, nil
	}
}

// SetGenerateResponseError sets up the mock to return an error on GetChatResponse
func (m *MockLLMAPI) SetGenerateResponseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateResponseFunc = func(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error) {
		return nil, err
	}
}

// SetBlockUntilCancelled makes calls hang until their context ends
func (m *MockLLMAPI) SetBlockUntilCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateResponseFunc = func(ctx context.Context, messages []chat.ChatMessage, opts chat.CompletionOptions) (*chat.Completion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

// GetCalls returns a copy of the recorded calls
func (m *MockLLMAPI) GetCalls() []GenerateResponseCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]GenerateResponseCall, len(m.GenerateResponseCalls))
	copy(calls, m.GenerateResponseCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = 0
	m.GenerateResponseCalls = make([]GenerateResponseCall, 0)
}
