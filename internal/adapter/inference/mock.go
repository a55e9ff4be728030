package inference

import (
	"context"
	"fmt"
	"sync"

	"textsum/internal/domain"
	"textsum/internal/port"
)

// Call records one invocation seen by MockBackend.
type Call struct {
	Key       domain.ModelKey
	Text      string
	MinLength int
	MaxLength int
}

// MockBackend records calls and answers with a scripted function. The default
// reply is "summary of <n> chars." so outputs stay short and deterministic.
type MockBackend struct {
	Reply   func(call Call) (string, error)
	LoadErr error

	mu    sync.Mutex
	calls []Call
	loads []domain.ModelKey
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (b *MockBackend) Load(ctx context.Context, key domain.ModelKey) (port.Model, error) {
	b.mu.Lock()
	b.loads = append(b.loads, key)
	err := b.LoadErr
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &mockModel{backend: b, key: key}, nil
}

// Calls returns a copy of the recorded invocations.
func (b *MockBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Loads returns the keys loaded so far.
func (b *MockBackend) Loads() []domain.ModelKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ModelKey, len(b.loads))
	copy(out, b.loads)
	return out
}

type mockModel struct {
	backend *MockBackend
	key     domain.ModelKey
}

func (m *mockModel) Invoke(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	call := Call{Key: m.key, Text: text, MinLength: minLength, MaxLength: maxLength}

	m.backend.mu.Lock()
	m.backend.calls = append(m.backend.calls, call)
	reply := m.backend.Reply
	m.backend.mu.Unlock()

	if reply != nil {
		return reply(call)
	}
	return fmt.Sprintf("summary of %d chars.", len([]rune(text))), nil
}
