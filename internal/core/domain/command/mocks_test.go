package command

import (
	"context"
	"picturebot/internal/core/domain"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockTextSender struct {
	mu      sync.Mutex
	err     error
	Message string
}

func (m *MockTextSender) SendMessageReply(_ context.Context, _ *domain.Message, message string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Message = message
	return 0, m.err
}

func (m *MockTextSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Message = err.Error()
	if m.err != nil {
		return m.err
	}
	return err
}

func (m *MockTextSender) SendChatAction(_ context.Context, _ int64, _ domain.Action) {}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendChatAction(_ context.Context, _ int64, _ domain.Action) {
	// mocked
}

func (m *MockSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	return err
}

func (m *MockSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	args := m.Called(ctx, message, text)
	return args.Int(0), args.Error(1)
}

type MockImageSender struct {
	file   []byte
	called bool
	err    error
}

func (m *MockImageSender) SendImageFileReply(_ context.Context, _ *domain.Message, file []byte) error {
	m.file = file
	m.called = true
	return m.err
}

type MockStore struct {
	path        string
	downloadErr error
	files       map[string][]byte
	downloaded  string
}

func (m *MockStore) Download(_ context.Context, url string) (string, error) {
	m.downloaded = url
	return m.path, m.downloadErr
}

func (m *MockStore) Read(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, domain.ErrMissingImage
	}
	return data, nil
}

type MockLoader struct {
	source *domain.Image
	err    error
}

func (m *MockLoader) Open(_ context.Context, _ string) (*domain.Image, error) {
	return m.source, m.err
}

type MockAssembler struct {
	picture *domain.PictureDescriptor
	err     error
	style   domain.Style
	source  *domain.Image
}

func (m *MockAssembler) Assemble(_ context.Context, source *domain.Image,
	style domain.Style) (*domain.PictureDescriptor, error) {
	m.source = source
	m.style = style
	return m.picture, m.err
}

type MockRetina struct {
	img    *domain.Image
	ok     bool
	err    error
	factor string
}

func (m *MockRetina) Retina(_ context.Context, _ *domain.Image, factor string) (*domain.Image, bool, error) {
	m.factor = factor
	return m.img, m.ok, m.err
}
