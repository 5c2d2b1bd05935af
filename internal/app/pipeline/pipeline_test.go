package pipeline_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voicenote/internal/app/api/openai/chat"
	"voicenote/internal/app/api/openai/whisper"
	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/pipeline"
	fakes "voicenote/internal/app/testutil"
)

type harness struct {
	stt      *fakes.MockSpeechToText
	enhancer *fakes.MockEnhancer
	dao      *fakes.MockTranscriptionDAO
	metrics  *pipeline.Metrics
	registry *prometheus.Registry
	pipeline *pipeline.Pipeline
}

func newHarness(t *testing.T, opts ...pipeline.Option) *harness {
	t.Helper()
	h := &harness{
		stt:      &fakes.MockSpeechToText{},
		enhancer: &fakes.MockEnhancer{},
		dao:      fakes.NewMockTranscriptionDAO(),
		registry: prometheus.NewRegistry(),
	}
	h.stt.Test(t)
	h.enhancer.Test(t)
	h.metrics = pipeline.NewMetrics(h.registry)

	opts = append([]pipeline.Option{pipeline.WithMetrics(h.metrics)}, opts...)
	h.pipeline = pipeline.New(h.stt, h.enhancer, h.dao, zap.NewNop(), opts...)
	return h
}

func (h *harness) outcome(status string) float64 {
	return h.counter("voicenote_submissions_total", "status", status)
}

// counter reads a counter from the registry; an empty label matches any series.
func (h *harness) counter(name, label, value string) float64 {
	mfs, err := h.registry.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func clip(filename string, size int64) pipeline.SubmitRequest {
	return pipeline.SubmitRequest{
		UserID:   "user-1",
		Filename: filename,
		Audio:    fakes.AudioBytes(64),
		Size:     size,
	}
}

func TestSubmit_CompletedScenario(t *testing.T) {
	h := newHarness(t)
	req := clip("clip.mp3", fakes.SmallClipSize)

	h.stt.On("Transcribe", mock.Anything, req.Audio, "clip.mp3").
		Return(whisper.Result{Text: "hello world", DurationSeconds: fakes.Ptr(3.0)}, nil).Once()
	h.enhancer.On("Enhance", mock.Anything, "hello world").
		Return(chat.EnhanceResult{Text: "Hello, world.", Enhanced: true}).Once()

	got, err := h.pipeline.Submit(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "hello world", got.OriginalText)
	require.NotNil(t, got.ProcessedText)
	assert.Equal(t, "Hello, world.", *got.ProcessedText)
	require.NotNil(t, got.DurationSeconds)
	assert.Equal(t, 3.0, *got.DurationSeconds)
	assert.Equal(t, "user-1", got.UserID)
	assert.Regexp(t, regexp.MustCompile(`^transcription_\d+_[0-9a-f]{16}$`), got.ID)

	stored, ok := h.dao.Get(got.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, "Hello, world.", *stored.ProcessedText)
	require.NotNil(t, stored.FileSize)
	assert.Equal(t, fakes.SmallClipSize, *stored.FileSize)
	require.NotNil(t, stored.Format)
	assert.Equal(t, "mp3", *stored.Format)

	assert.Equal(t, 1, h.dao.Calls("CreateTranscription"))
	assert.Equal(t, 1, h.dao.Calls("CompleteTranscription"))
	assert.Equal(t, 1.0, h.outcome(pipeline.OutcomeCompleted))
	h.stt.AssertExpectations(t)
	h.enhancer.AssertExpectations(t)
}

func TestSubmit_RejectedInput(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		sentinel error
	}{
		{"unsupported extension", "clip.xyz", fakes.SmallClipSize, apperrors.ErrUnsupportedFormat},
		{"no extension", "clip", fakes.SmallClipSize, apperrors.ErrUnsupportedFormat},
		{"oversized", "big.wav", fakes.OversizeClip, apperrors.ErrFileTooLarge},
		{"oversized and unsupported", "big.xyz", fakes.OversizeClip, apperrors.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			got, err := h.pipeline.Submit(context.Background(), clip(tt.filename, tt.size))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
			assert.ErrorIs(t, err, tt.sentinel)

			assert.Empty(t, h.dao.All())
			assert.Zero(t, h.dao.Calls("CreateTranscription"))
			h.stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
			h.enhancer.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
			assert.Equal(t, 1.0, h.outcome(pipeline.OutcomeRejected))
		})
	}
}

func TestSubmit_ExactlyMaxSizeAccepted(t *testing.T) {
	h := newHarness(t)
	req := clip("edge.FLAC", 25*1024*1024)

	h.stt.On("Transcribe", mock.Anything, mock.Anything, "edge.FLAC").Return(whisper.Result{Text: "edge"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "edge").Return(chat.EnhanceResult{Text: "Edge.", Enhanced: true})

	got, err := h.pipeline.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "flac", *got.Format)
	assert.Nil(t, got.DurationSeconds)
}

func TestSubmit_EnhancementFallback(t *testing.T) {
	h := newHarness(t)
	req := clip("clip.wav", fakes.SmallClipSize)

	h.stt.On("Transcribe", mock.Anything, mock.Anything, "clip.wav").
		Return(whisper.Result{Text: "hello world", DurationSeconds: fakes.Ptr(3.0)}, nil)
	h.enhancer.On("Enhance", mock.Anything, "hello world").
		Return(chat.EnhanceResult{Text: "hello world", Err: apperrors.ErrEnhancementFailed})

	got, err := h.pipeline.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedText)
	assert.Equal(t, got.OriginalText, *got.ProcessedText)

	stored, _ := h.dao.Get(got.ID)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, "hello world", *stored.ProcessedText)
	assert.Equal(t, 1.0, h.counter("voicenote_enhancement_fallbacks_total", "", ""))
}

func TestSubmit_SpeechToTextFailure(t *testing.T) {
	h := newHarness(t)
	req := clip("clip.ogg", fakes.SmallClipSize)

	upstream := errors.New("connection reset")
	h.stt.On("Transcribe", mock.Anything, mock.Anything, "clip.ogg").Return(whisper.Result{}, upstream)

	got, err := h.pipeline.Submit(context.Background(), req)
	require.Error(t, err)
	require.NotNil(t, got)

	assert.True(t, apperrors.Is(err, apperrors.KindTranscriptionFailed))
	assert.ErrorIs(t, err, apperrors.ErrTranscriptionFailed)
	assert.ErrorIs(t, err, upstream)

	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Equal(t, "", got.OriginalText)
	assert.Nil(t, got.ProcessedText)

	stored, ok := h.dao.Get(got.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusFailed, stored.Status)
	assert.Equal(t, 1, h.dao.Calls("CompleteTranscription"))
	h.enhancer.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, h.outcome(pipeline.OutcomeFailed))
}

func TestSubmit_EmptyTranscriptionFails(t *testing.T) {
	h := newHarness(t)
	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "  "}, nil)

	got, err := h.pipeline.Submit(context.Background(), clip("silence.webm", fakes.SmallClipSize))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindTranscriptionFailed))
	assert.Equal(t, model.StatusFailed, got.Status)
	h.enhancer.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
}

func TestSubmit_InsertFailureMakesNoExternalCalls(t *testing.T) {
	h := newHarness(t)
	h.dao.ErrorMap["CreateTranscription"] = errors.New("disk full")

	got, err := h.pipeline.Submit(context.Background(), clip("clip.mp3", fakes.SmallClipSize))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.Is(err, apperrors.KindPersistence))

	h.stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
	h.enhancer.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
	assert.Zero(t, h.dao.Calls("CompleteTranscription"))
}

func TestSubmit_FinalUpdateFailure(t *testing.T) {
	h := newHarness(t)
	h.dao.ErrorMap["CompleteTranscription"] = apperrors.Wrap(errors.New("lock timeout"), apperrors.KindPersistence, "update")
	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "hi"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "hi").Return(chat.EnhanceResult{Text: "Hi.", Enhanced: true})

	got, err := h.pipeline.Submit(context.Background(), clip("clip.m4a", fakes.SmallClipSize))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.Is(err, apperrors.KindPersistence))
	assert.Equal(t, 1, h.dao.Calls("CompleteTranscription"))
	assert.Equal(t, 1.0, h.outcome(pipeline.OutcomeError))
}

func TestSubmit_CanceledRequestStillCompletes(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callCtx := args.Get(0).(context.Context)
			assert.NoError(t, callCtx.Err())
			_, ok := callCtx.Deadline()
			assert.True(t, ok)
		}).
		Return(whisper.Result{Text: "hello world"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "hello world").
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(chat.EnhanceResult{Text: "Hello, world.", Enhanced: true})

	got, err := h.pipeline.Submit(ctx, clip("clip.mp3", fakes.SmallClipSize))
	require.NoError(t, err)
	require.NotNil(t, got)

	stored, ok := h.dao.Get(got.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, "hello world", stored.OriginalText)
	require.NotNil(t, stored.ProcessedText)
	assert.Equal(t, "Hello, world.", *stored.ProcessedText)
	assert.Zero(t, h.counter("voicenote_enhancement_fallbacks_total", "", ""))
}

func TestSubmit_CancelAfterTranscriptionStillEnhances(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(whisper.Result{Text: "hi there"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "hi there").
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(chat.EnhanceResult{Text: "Hi there.", Enhanced: true})

	got, err := h.pipeline.Submit(ctx, clip("clip.wav", fakes.SmallClipSize))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "Hi there.", *got.ProcessedText)
}

func TestSubmit_Timeouts(t *testing.T) {
	h := newHarness(t, pipeline.WithTimeouts(pipeline.Timeouts{SpeechToText: 20 * time.Millisecond}))

	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Return(whisper.Result{}, context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(20*time.Millisecond), deadline, time.Second)
		})

	got, err := h.pipeline.Submit(context.Background(), clip("clip.mp3", fakes.SmallClipSize))
	require.Error(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
}

func TestSubmit_NoRecordLeftProcessing(t *testing.T) {
	h := newHarness(t)
	h.stt.On("Transcribe", mock.Anything, mock.Anything, "ok.mp3").Return(whisper.Result{Text: "fine"}, nil)
	h.stt.On("Transcribe", mock.Anything, mock.Anything, "bad.mp3").Return(whisper.Result{}, errors.New("boom"))
	h.enhancer.On("Enhance", mock.Anything, "fine").Return(chat.EnhanceResult{Text: "Fine.", Enhanced: true})

	for i := 0; i < 5; i++ {
		_, _ = h.pipeline.Submit(context.Background(), clip("ok.mp3", fakes.SmallClipSize))
		_, _ = h.pipeline.Submit(context.Background(), clip("bad.mp3", fakes.SmallClipSize))
	}

	all := h.dao.All()
	assert.Len(t, all, 10)
	for _, rec := range all {
		assert.True(t, rec.Status.Terminal(), rec.ID)
		if rec.Status == model.StatusCompleted {
			assert.NotEmpty(t, rec.OriginalText)
		}
		assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))
	}
	assert.Equal(t, 10, h.dao.Calls("CreateTranscription"))
	assert.Equal(t, 10, h.dao.Calls("CompleteTranscription"))
}

func TestSubmit_UpdatedAtNeverPrecedesCreatedAt(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Minute)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}

	h := newHarness(t, pipeline.WithClock(clock))
	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "x"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "x").Return(chat.EnhanceResult{Text: "X.", Enhanced: true})

	got, err := h.pipeline.Submit(context.Background(), clip("clip.mp3", fakes.SmallClipSize))
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(base))
	assert.True(t, got.UpdatedAt.Equal(base))
}

func TestSubmit_TimestampsStoredInUTC(t *testing.T) {
	zone := time.FixedZone("UTC+8", 8*60*60)
	local := time.Date(2025, 6, 1, 20, 0, 0, 0, zone)

	h := newHarness(t, pipeline.WithClock(func() time.Time { return local }))
	h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "x"}, nil)
	h.enhancer.On("Enhance", mock.Anything, "x").Return(chat.EnhanceResult{Text: "X.", Enhanced: true})

	got, err := h.pipeline.Submit(context.Background(), clip("clip.mp3", fakes.SmallClipSize))
	require.NoError(t, err)

	stored, ok := h.dao.Get(got.ID)
	require.True(t, ok)
	assert.Equal(t, time.UTC, stored.CreatedAt.Location())
	assert.Equal(t, time.UTC, stored.UpdatedAt.Location())
	assert.True(t, stored.CreatedAt.Equal(local))
}

func TestSubmit_Archive(t *testing.T) {
	t.Run("archived before transcription", func(t *testing.T) {
		archiver := &fakes.MockArchiver{}
		h := newHarness(t, pipeline.WithArchiver(archiver))
		req := clip("clip.mp3", fakes.SmallClipSize)

		archiver.On("Archive", mock.Anything, mock.MatchedBy(func(rec *model.Transcription) bool {
			return rec.Status == model.StatusProcessing && rec.UserID == "user-1"
		}), req.Audio).Return(nil).Once()
		h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "a"}, nil)
		h.enhancer.On("Enhance", mock.Anything, "a").Return(chat.EnhanceResult{Text: "A.", Enhanced: true})

		_, err := h.pipeline.Submit(context.Background(), req)
		require.NoError(t, err)
		archiver.AssertExpectations(t)
	})

	t.Run("archive failure is ignored", func(t *testing.T) {
		archiver := &fakes.MockArchiver{}
		h := newHarness(t, pipeline.WithArchiver(archiver))

		archiver.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket missing"))
		h.stt.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return(whisper.Result{Text: "a"}, nil)
		h.enhancer.On("Enhance", mock.Anything, "a").Return(chat.EnhanceResult{Text: "A.", Enhanced: true})

		got, err := h.pipeline.Submit(context.Background(), clip("clip.mp3", fakes.SmallClipSize))
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
	})
}

func TestNewID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := pipeline.NewID(now)
		_, dup := seen[id]
		require.False(t, dup, id)
		seen[id] = struct{}{}
	}
}

func TestValidate(t *testing.T) {
	format, err := pipeline.Validate("Voice.MP3", 1)
	require.NoError(t, err)
	assert.Equal(t, "mp3", format)

	_, err = pipeline.Validate("voice.aac", 1)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}
