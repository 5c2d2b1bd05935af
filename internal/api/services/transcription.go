package services

import (
	"context"

	"go.uber.org/zap"

	"voicenote/internal/api/dto"
	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/pipeline"
	"voicenote/internal/app/repository"
)

// Submitter runs the transcription pipeline.
type Submitter interface {
	Submit(ctx context.Context, req pipeline.SubmitRequest) (*model.Transcription, error)
}

// AudioRemover deletes archived audio.
type AudioRemover interface {
	Remove(ctx context.Context, userID, id string) error
}

// TranscriptionServiceImpl implements TranscriptionService
type TranscriptionServiceImpl struct {
	pipeline   Submitter
	repository repository.TranscriptionDAO
	remover    AudioRemover
	logger     *zap.Logger
}

// NewTranscriptionService creates a new transcription service. remover may be nil.
func NewTranscriptionService(
	pipeline Submitter,
	repository repository.TranscriptionDAO,
	remover AudioRemover,
	logger *zap.Logger,
) *TranscriptionServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionServiceImpl{
		pipeline:   pipeline,
		repository: repository,
		remover:    remover,
		logger:     logger,
	}
}

// Submit runs one upload through the pipeline.
func (s *TranscriptionServiceImpl) Submit(ctx context.Context, userID, filename string, size int64, audio []byte) (*dto.SubmitResponse, error) {
	record, err := s.pipeline.Submit(ctx, pipeline.SubmitRequest{
		UserID:   userID,
		Filename: filename,
		Audio:    audio,
		Size:     size,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmitResponse(record), nil
}

// List returns one page of the caller's transcriptions, newest first.
func (s *TranscriptionServiceImpl) List(ctx context.Context, userID string, query dto.ListTranscriptionsQuery) (*dto.ListTranscriptionsResponse, error) {
	page, err := s.repository.ListTranscriptionsByUser(ctx, userID, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return dto.NewListTranscriptionsResponse(page, query.Limit), nil
}

// Delete removes the caller's transcription. An id the caller does not own is
// left untouched and still reported as success.
func (s *TranscriptionServiceImpl) Delete(ctx context.Context, userID, id string) (*dto.SuccessResponse, error) {
	if id == "" {
		return nil, apperrors.ErrMissingID
	}

	affected, err := s.repository.DeleteTranscription(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if affected > 0 && s.remover != nil {
		if err := s.remover.Remove(context.WithoutCancel(ctx), userID, id); err != nil {
			s.logger.Warn("failed to remove archived audio",
				zap.String("transcription_id", id),
				zap.Error(err),
			)
		}
	}

	return &dto.SuccessResponse{Success: true}, nil
}
