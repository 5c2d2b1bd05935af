package repository

import (
	"context"

	"voicenote/internal/app/model"
)

// TranscriptionDAO persists transcription records. Every read and delete is
// scoped to the owning user.
type TranscriptionDAO interface {
	CreateTranscription(ctx context.Context, t *model.Transcription) error
	CompleteTranscription(ctx context.Context, id string, c model.Completion) error
	ListTranscriptionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transcription, error)
	DeleteTranscription(ctx context.Context, id, userID string) (int64, error)
}

// UserDAO persists users and their linked OAuth accounts.
type UserDAO interface {
	UpsertOAuthUser(ctx context.Context, user model.User, account model.Account) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// SessionDAO persists server-side login sessions.
type SessionDAO interface {
	CreateSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	TranscriptionDAO
	UserDAO
	SessionDAO
	Ping(ctx context.Context) error
	Close() error
}
