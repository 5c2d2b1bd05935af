package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a transcription record.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown transcription status %q", s)
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	case StatusProcessing:
		return false
	default:
		panic(fmt.Sprintf("unhandled status %q", string(s)))
	}
}

// Transcription is one uploaded audio file and its processing outcome.
type Transcription struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Filename        string    `json:"filename"`
	OriginalText    string    `json:"originalText"`
	ProcessedText   *string   `json:"processedText"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	FileSize        *int64    `json:"fileSize"`
	DurationSeconds *float64  `json:"duration"`
	Format          *string   `json:"format"`
}

// Completion carries the values written when a record reaches its final state.
type Completion struct {
	Status          Status
	OriginalText    string
	ProcessedText   string
	DurationSeconds *float64
	UpdatedAt       time.Time
}
