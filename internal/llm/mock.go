package llm

import (
	"context"
	"sync"
)

// MockTextResponse is a canned text response for the MockProvider.
type MockTextResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockMediaResponse is a canned media response for the MockProvider.
type MockMediaResponse struct {
	Data     []byte
	URL      string
	MIMEType string
	Err      error
}

// MockCall records a single request made against the MockProvider.
type MockCall struct {
	Capability string // "text", "image", "speech", "video"
	Prompt     string
	System     string
	Voice      string
	Aspect     AspectRatio
}

// MockProvider is a deterministic Provider for testing. Each capability
// returns its canned responses in FIFO order, and all requests are recorded.
type MockProvider struct {
	mu     sync.Mutex
	text   []MockTextResponse
	image  []MockMediaResponse
	speech []MockMediaResponse
	video  []MockMediaResponse
	Calls  []MockCall
}

// NewMockProvider creates an empty MockProvider. Queue responses with the
// Add* methods.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) GenerateText(_ context.Context, req TextRequest) (*TextResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Capability: "text", Prompt: req.Prompt, System: req.System})

	if len(m.text) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}
	resp := m.text[0]
	m.text = m.text[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &TextResponse{Text: resp.Text, Usage: resp.Usage, Model: "mock"}, nil
}

func (m *MockProvider) GenerateImage(_ context.Context, req ImageRequest) (*MediaResult, error) {
	return m.nextMedia(&m.image, MockCall{Capability: "image", Prompt: req.Prompt})
}

func (m *MockProvider) GenerateSpeech(_ context.Context, req SpeechRequest) (*MediaResult, error) {
	return m.nextMedia(&m.speech, MockCall{Capability: "speech", Prompt: req.Text, Voice: req.Voice})
}

func (m *MockProvider) GenerateVideo(_ context.Context, req VideoRequest) (*MediaResult, error) {
	if req.OnProgress != nil {
		req.OnProgress("Setting up the scene...")
	}
	return m.nextMedia(&m.video, MockCall{Capability: "video", Prompt: req.Prompt, Aspect: req.AspectRatio})
}

func (m *MockProvider) nextMedia(queue *[]MockMediaResponse, call MockCall) (*MediaResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, call)

	if len(*queue) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}
	resp := (*queue)[0]
	*queue = (*queue)[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &MediaResult{Data: resp.Data, URL: resp.URL, MIMEType: resp.MIMEType}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddText queues a canned text response.
func (m *MockProvider) AddText(resp MockTextResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = append(m.text, resp)
}

// AddImage queues a canned image response.
func (m *MockProvider) AddImage(resp MockMediaResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = append(m.image, resp)
}

// AddSpeech queues a canned speech response.
func (m *MockProvider) AddSpeech(resp MockMediaResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speech = append(m.speech, resp)
}

// AddVideo queues a canned video response.
func (m *MockProvider) AddVideo(resp MockMediaResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.video = append(m.video, resp)
}

// CallCount returns the total number of requests made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
