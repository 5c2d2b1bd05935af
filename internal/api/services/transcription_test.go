package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voicenote/internal/api/dto"
	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/pipeline"
	"voicenote/internal/app/testutil"
)

type stubSubmitter struct {
	mock.Mock
}

func (s *stubSubmitter) Submit(ctx context.Context, req pipeline.SubmitRequest) (*model.Transcription, error) {
	args := s.Called(ctx, req)
	rec, _ := args.Get(0).(*model.Transcription)
	return rec, args.Error(1)
}

type stubRemover struct {
	mock.Mock
}

func (s *stubRemover) Remove(ctx context.Context, userID, id string) error {
	return s.Called(ctx, userID, id).Error(0)
}

func TestTranscriptionService_Submit(t *testing.T) {
	submitter := &stubSubmitter{}
	svc := NewTranscriptionService(submitter, testutil.NewMockTranscriptionDAO(), nil, nil)
	rec := testutil.CompletedTranscription("t1", "u1", time.Now())

	submitter.On("Submit", mock.Anything, pipeline.SubmitRequest{
		UserID: "u1", Filename: "clip.mp3", Audio: []byte("abc"), Size: 3,
	}).Return(&rec, nil)

	resp, err := svc.Submit(context.Background(), "u1", "clip.mp3", 3, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.ID)
	assert.Equal(t, "Hello, world.", resp.ProcessedText)
	assert.Equal(t, model.StatusCompleted, resp.Status)
}

func TestTranscriptionService_Submit_FailedRecordIsError(t *testing.T) {
	submitter := &stubSubmitter{}
	svc := NewTranscriptionService(submitter, testutil.NewMockTranscriptionDAO(), nil, nil)
	failed := &model.Transcription{ID: "t1", Status: model.StatusFailed}

	submitter.On("Submit", mock.Anything, mock.Anything).Return(failed, apperrors.ErrTranscriptionFailed)

	resp, err := svc.Submit(context.Background(), "u1", "clip.mp3", 3, []byte("abc"))
	assert.Nil(t, resp)
	assert.True(t, apperrors.Is(err, apperrors.KindTranscriptionFailed))
}

func TestTranscriptionService_List(t *testing.T) {
	dao := testutil.NewMockTranscriptionDAO()
	svc := NewTranscriptionService(&stubSubmitter{}, dao, nil, nil)
	ctx := context.Background()
	newest := time.Now().UTC()

	for _, rec := range testutil.TranscriptionPage("u1", 3, newest) {
		rec := rec
		require.NoError(t, dao.CreateTranscription(ctx, &rec))
	}
	other := testutil.CompletedTranscription("other", "u2", newest.Add(time.Hour))
	require.NoError(t, dao.CreateTranscription(ctx, &other))

	full, err := svc.List(ctx, "u1", dto.ListTranscriptionsQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, full.Transcriptions, 2)
	assert.True(t, full.HasMore)
	assert.True(t, full.Transcriptions[0].CreatedAt.After(full.Transcriptions[1].CreatedAt))

	rest, err := svc.List(ctx, "u1", dto.ListTranscriptionsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Transcriptions, 1)
	assert.False(t, rest.HasMore)
}

func TestTranscriptionService_List_StoreError(t *testing.T) {
	dao := testutil.NewMockTranscriptionDAO()
	dao.ErrorMap["ListTranscriptionsByUser"] = apperrors.Wrap(errors.New("timeout"), apperrors.KindPersistence, "query failed")
	svc := NewTranscriptionService(&stubSubmitter{}, dao, nil, nil)

	_, err := svc.List(context.Background(), "u1", dto.ListTranscriptionsQuery{Limit: 20})
	assert.True(t, apperrors.Is(err, apperrors.KindPersistence))
}

func TestTranscriptionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner delete removes archive", func(t *testing.T) {
		dao := testutil.NewMockTranscriptionDAO()
		remover := &stubRemover{}
		svc := NewTranscriptionService(&stubSubmitter{}, dao, remover, nil)
		rec := testutil.CompletedTranscription("t1", "u1", time.Now())
		require.NoError(t, dao.CreateTranscription(ctx, &rec))

		remover.On("Remove", mock.Anything, "u1", "t1").Return(nil).Once()

		resp, err := svc.Delete(ctx, "u1", "t1")
		require.NoError(t, err)
		assert.True(t, resp.Success)
		_, exists := dao.Get("t1")
		assert.False(t, exists)
		remover.AssertExpectations(t)
	})

	t.Run("foreign id is a successful no-op", func(t *testing.T) {
		dao := testutil.NewMockTranscriptionDAO()
		remover := &stubRemover{}
		svc := NewTranscriptionService(&stubSubmitter{}, dao, remover, nil)
		rec := testutil.CompletedTranscription("t1", "owner", time.Now())
		require.NoError(t, dao.CreateTranscription(ctx, &rec))

		resp, err := svc.Delete(ctx, "intruder", "t1")
		require.NoError(t, err)
		assert.True(t, resp.Success)
		_, exists := dao.Get("t1")
		assert.True(t, exists)
		remover.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("archive failure does not fail delete", func(t *testing.T) {
		dao := testutil.NewMockTranscriptionDAO()
		remover := &stubRemover{}
		svc := NewTranscriptionService(&stubSubmitter{}, dao, remover, nil)
		rec := testutil.CompletedTranscription("t1", "u1", time.Now())
		require.NoError(t, dao.CreateTranscription(ctx, &rec))

		remover.On("Remove", mock.Anything, "u1", "t1").Return(errors.New("bucket gone"))

		resp, err := svc.Delete(ctx, "u1", "t1")
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("missing id", func(t *testing.T) {
		svc := NewTranscriptionService(&stubSubmitter{}, testutil.NewMockTranscriptionDAO(), nil, nil)
		_, err := svc.Delete(ctx, "u1", "")
		assert.ErrorIs(t, err, apperrors.ErrMissingID)
	})
}
