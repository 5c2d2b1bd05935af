package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voicenote/internal/app/api/openai/chat"
	"voicenote/internal/app/api/openai/whisper"
	"voicenote/internal/app/model"
)

// MockSpeechToText is a testify mock of the speech-to-text client.
type MockSpeechToText struct {
	mock.Mock
}

// Transcribe records the call and returns the configured result.
func (m *MockSpeechToText) Transcribe(ctx context.Context, data []byte, filename string) (whisper.Result, error) {
	args := m.Called(ctx, data, filename)
	return args.Get(0).(whisper.Result), args.Error(1)
}

// MockEnhancer is a testify mock of the text enhancement client.
type MockEnhancer struct {
	mock.Mock
}

// Enhance records the call and returns the configured result.
func (m *MockEnhancer) Enhance(ctx context.Context, text string) chat.EnhanceResult {
	args := m.Called(ctx, text)
	return args.Get(0).(chat.EnhanceResult)
}

// MockArchiver is a testify mock of the audio archive.
type MockArchiver struct {
	mock.Mock
}

// Archive records the call and returns the configured error.
func (m *MockArchiver) Archive(ctx context.Context, t *model.Transcription, data []byte) error {
	args := m.Called(ctx, t, data)
	return args.Error(0)
}
