package services

import (
	"context"
	"sync"

	"github.com/rcosta/eldrida-engine/pkg/chat"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	GenerateFunc  func(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error)

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall
	GenerateCalls  []GenerateCall

	// Queued raw responses, consumed in order by Generate and Chat when
	// no Func override is set.
	queued []string

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
}

type GenerateCall struct {
	Messages    []chat.ChatMessage
	Temperature float64
}

var _ LLMService = (*MockLLMService)(nil)

// NewMockLLMService creates a new mock LLM service
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
		GenerateCalls:  make([]GenerateCall, 0),
	}
}

// Queue appends scripted responses returned in order by Generate and Chat.
func (m *MockLLMService) Queue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, responses...)
}

func (m *MockLLMService) dequeue() (string, bool) {
	if len(m.queued) == 0 {
		return "", false
	}
	next := m.queued[0]
	m.queued = m.queued[1:]
	return next, true
}

func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}
	return nil
}

func (m *MockLLMService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages})
	fn := m.ChatFunc
	next, ok := "", false
	if fn == nil {
		next, ok = m.dequeue()
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	if ok {
		return &chat.ChatResponse{Message: next}, nil
	}
	return &chat.ChatResponse{Message: "The story continues."}, nil
}

func (m *MockLLMService) Generate(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Messages: messages, Temperature: temperature})
	fn := m.GenerateFunc
	next, ok := "", false
	if fn == nil {
		next, ok = m.dequeue()
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, temperature)
	}
	if ok {
		return next, nil
	}
	return "{}", nil
}

// ChatCallCount returns the number of Chat calls made
func (m *MockLLMService) ChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// GenerateCallCount returns the number of Generate calls made
func (m *MockLLMService) GenerateCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	GenerateImageFunc func(ctx context.Context, prompt string) (string, error)

	GenerateImageCalls []string
	mu                 sync.Mutex
}

var _ ImageService = (*MockImageService)(nil)

func (m *MockImageService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateImageCalls = append(m.GenerateImageCalls, prompt)
	fn := m.GenerateImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return "/static/images/mock.png", nil
}
