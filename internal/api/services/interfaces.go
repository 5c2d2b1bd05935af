package services

import (
	"context"

	"voicenote/internal/api/dto"
	"voicenote/internal/app/model"
)

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	Submit(ctx context.Context, userID, filename string, size int64, audio []byte) (*dto.SubmitResponse, error)
	List(ctx context.Context, userID string, query dto.ListTranscriptionsQuery) (*dto.ListTranscriptionsResponse, error)
	Delete(ctx context.Context, userID, id string) (*dto.SuccessResponse, error)
}

// AuthService defines the interface for sign-in operations
type AuthService interface {
	LoginURL(state string) string
	Callback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	Authenticate(ctx context.Context, token string) (string, error)
}
