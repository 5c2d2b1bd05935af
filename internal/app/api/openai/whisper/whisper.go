package whisper

import (
	"bytes"
	"context"

	"github.com/sashabaranov/go-openai"

	"voicenote/internal/app/audio"
	apperrors "voicenote/internal/app/errors"
)

// Result is the outcome of one speech-to-text call.
type Result struct {
	Text            string
	DurationSeconds *float64
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, model, language string) *RemoteTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &RemoteTranscriber{client: client, model: model, language: language}
}

// audioFile lets the multipart writer pick up the file name and MIME type.
type audioFile struct {
	*bytes.Reader
	name        string
	contentType string
}

func (f *audioFile) Name() string        { return f.name }
func (f *audioFile) ContentType() string { return f.contentType }

// Transcribe sends the raw audio bytes upstream and returns text and duration.
// Every failure is reported as a TranscriptionFailed error.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, data []byte, filename string) (Result, error) {
	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: filename,
		Reader: &audioFile{
			Reader:      bytes.NewReader(data),
			name:        filename,
			contentType: audio.ContentType(filename),
		},
		Language: rt.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.KindTranscriptionFailed, "createTranscription failed")
	}

	result := Result{Text: resp.Text}
	if resp.Duration > 0 {
		d := resp.Duration
		result.DurationSeconds = &d
	}
	return result, nil
}
