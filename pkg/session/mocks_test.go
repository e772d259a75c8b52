package session

import (
	"context"
	"sync"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// --- Mocks ---

type generateCall struct {
	instruction string
	tier        domain.ModelTier
	input       domain.EncodedImage
}

type mockClient struct {
	mu           sync.Mutex
	calls        []generateCall
	generateFunc func(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error)
}

func (m *mockClient) Generate(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generateCall{instruction: instruction, tier: tier, input: img})
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, img, instruction, tier)
	}
	return domain.EncodedImage{Data: []byte("generated"), MimeType: domain.MimeJPEG}, nil
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockClient) lastCall() generateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

type mockGate struct {
	hasCred       bool
	requestErr    error
	requestCalled bool
	hasCredCalled bool
}

func (m *mockGate) HasCredential(ctx context.Context) bool {
	m.hasCredCalled = true
	return m.hasCred
}

func (m *mockGate) RequestCredential(ctx context.Context) error {
	m.requestCalled = true
	return m.requestErr
}

type mockFetcher struct {
	data []byte
	err  error
	uris []string
}

func (m *mockFetcher) FetchBytes(ctx context.Context, uri string) ([]byte, error) {
	m.uris = append(m.uris, uri)
	return m.data, m.err
}
