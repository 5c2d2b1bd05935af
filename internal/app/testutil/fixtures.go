package testutil

import (
	"fmt"
	"time"

	"voicenote/internal/app/model"
)

// Sizes used across pipeline and handler tests.
const (
	SmallClipSize int64 = 10 * 1024
	OversizeClip  int64 = 30 * 1024 * 1024
)

// AudioBytes returns n bytes of fake audio payload.
func AudioBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CompletedTranscription builds a completed record owned by userID.
func CompletedTranscription(id, userID string, createdAt time.Time) model.Transcription {
	return model.Transcription{
		ID:              id,
		UserID:          userID,
		Filename:        fmt.Sprintf("%s.mp3", id),
		OriginalText:    "hello world",
		ProcessedText:   Ptr("Hello, world."),
		Status:          model.StatusCompleted,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt.Add(2 * time.Second),
		FileSize:        Ptr(SmallClipSize),
		DurationSeconds: Ptr(3.0),
		Format:          Ptr("mp3"),
	}
}

// TranscriptionPage builds n completed records for userID, newest first,
// one minute apart starting at newest.
func TranscriptionPage(userID string, n int, newest time.Time) []model.Transcription {
	page := make([]model.Transcription, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("transcription_%d_%016d", newest.Add(-time.Duration(i)*time.Minute).UnixMilli(), i)
		page = append(page, CompletedTranscription(id, userID, newest.Add(-time.Duration(i)*time.Minute)))
	}
	return page
}
