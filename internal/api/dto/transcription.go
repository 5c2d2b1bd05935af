package dto

import (
	"time"

	"github.com/samber/lo"

	"voicenote/internal/app/model"
)

// ListTranscriptionsQuery represents query parameters for listing transcriptions
type ListTranscriptionsQuery struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// SubmitResponse is returned after an upload has been processed.
type SubmitResponse struct {
	ID            string       `json:"id"`
	OriginalText  string       `json:"originalText"`
	ProcessedText string       `json:"processedText"`
	Duration      *float64     `json:"duration,omitempty"`
	Status        model.Status `json:"status"`
}

// NewSubmitResponse builds the response for a completed record.
func NewSubmitResponse(t *model.Transcription) *SubmitResponse {
	return &SubmitResponse{
		ID:            t.ID,
		OriginalText:  t.OriginalText,
		ProcessedText: lo.FromPtr(t.ProcessedText),
		Duration:      t.DurationSeconds,
		Status:        t.Status,
	}
}

// TranscriptionResponse represents a transcription in API responses
type TranscriptionResponse struct {
	ID            string       `json:"id"`
	Filename      string       `json:"filename"`
	OriginalText  string       `json:"originalText"`
	ProcessedText *string      `json:"processedText"`
	Status        model.Status `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	FileSize      *int64       `json:"fileSize"`
	Duration      *float64     `json:"duration"`
	Format        *string      `json:"format"`
}

// ListTranscriptionsResponse is one page of the caller's history.
type ListTranscriptionsResponse struct {
	Transcriptions []TranscriptionResponse `json:"transcriptions"`
	HasMore        bool                    `json:"hasMore"`
}

// NewListTranscriptionsResponse maps a page; hasMore is set when the page is full.
func NewListTranscriptionsResponse(page []model.Transcription, limit int) *ListTranscriptionsResponse {
	return &ListTranscriptionsResponse{
		Transcriptions: lo.Map(page, func(t model.Transcription, _ int) TranscriptionResponse {
			return TranscriptionResponse{
				ID:            t.ID,
				Filename:      t.Filename,
				OriginalText:  t.OriginalText,
				ProcessedText: t.ProcessedText,
				Status:        t.Status,
				CreatedAt:     t.CreatedAt,
				UpdatedAt:     t.UpdatedAt,
				FileSize:      t.FileSize,
				Duration:      t.DurationSeconds,
				Format:        t.Format,
			}
		}),
		HasMore: len(page) == limit,
	}
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}
