package testutil

import (
	"context"
	"sort"
	"sync"

	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/repository"
)

// MockTranscriptionDAO is an in-memory repository.TranscriptionDAO that
// enforces the processing -> terminal transition and counts calls.
type MockTranscriptionDAO struct {
	mu sync.RWMutex

	transcriptions map[string]model.Transcription

	// ErrorMap forces a method (by name) to fail.
	ErrorMap map[string]error

	// CallCount tracks calls per method name.
	CallCount map[string]int
}

var _ repository.TranscriptionDAO = (*MockTranscriptionDAO)(nil)

// NewMockTranscriptionDAO creates an empty MockTranscriptionDAO.
func NewMockTranscriptionDAO() *MockTranscriptionDAO {
	return &MockTranscriptionDAO{
		transcriptions: make(map[string]model.Transcription),
		ErrorMap:       make(map[string]error),
		CallCount:      make(map[string]int),
	}
}

func (m *MockTranscriptionDAO) track(method string) error {
	m.CallCount[method]++
	return m.ErrorMap[method]
}

// CreateTranscription implements repository.TranscriptionDAO
func (m *MockTranscriptionDAO) CreateTranscription(_ context.Context, t *model.Transcription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track("CreateTranscription"); err != nil {
		return err
	}
	if _, exists := m.transcriptions[t.ID]; exists {
		return apperrors.Newf(apperrors.KindPersistence, "duplicate id %s", t.ID)
	}
	m.transcriptions[t.ID] = *t
	return nil
}

// CompleteTranscription implements repository.TranscriptionDAO
func (m *MockTranscriptionDAO) CompleteTranscription(_ context.Context, id string, c model.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track("CompleteTranscription"); err != nil {
		return err
	}
	t, ok := m.transcriptions[id]
	if !ok || t.Status != model.StatusProcessing {
		return apperrors.Wrapf(apperrors.ErrUpdateFailed, apperrors.KindPersistence, "no processing transcription %s", id)
	}

	t.Status = c.Status
	t.UpdatedAt = c.UpdatedAt
	switch c.Status {
	case model.StatusCompleted:
		processed := c.ProcessedText
		t.OriginalText = c.OriginalText
		t.ProcessedText = &processed
		t.DurationSeconds = c.DurationSeconds
	case model.StatusFailed:
	case model.StatusProcessing:
		return apperrors.New(apperrors.KindPersistence, "cannot complete as processing")
	}
	m.transcriptions[id] = t
	return nil
}

// ListTranscriptionsByUser implements repository.TranscriptionDAO
func (m *MockTranscriptionDAO) ListTranscriptionsByUser(_ context.Context, userID string, limit, offset int) ([]model.Transcription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track("ListTranscriptionsByUser"); err != nil {
		return nil, err
	}

	var owned []model.Transcription
	for _, t := range m.transcriptions {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	result := make([]model.Transcription, 0, limit)
	if offset >= len(owned) {
		return result, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return append(result, owned[offset:end]...), nil
}

// DeleteTranscription implements repository.TranscriptionDAO
func (m *MockTranscriptionDAO) DeleteTranscription(_ context.Context, id, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track("DeleteTranscription"); err != nil {
		return 0, err
	}
	t, ok := m.transcriptions[id]
	if !ok || t.UserID != userID {
		return 0, nil
	}
	delete(m.transcriptions, id)
	return 1, nil
}

// Get returns a stored record.
func (m *MockTranscriptionDAO) Get(id string) (model.Transcription, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transcriptions[id]
	return t, ok
}

// All returns every stored record.
func (m *MockTranscriptionDAO) All() []model.Transcription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Transcription, 0, len(m.transcriptions))
	for _, t := range m.transcriptions {
		out = append(out, t)
	}
	return out
}

// Calls returns how many times method was invoked.
func (m *MockTranscriptionDAO) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCount[method]
}
