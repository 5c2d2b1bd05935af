package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicenote/internal/app/api/openai/chat"
	"voicenote/internal/app/api/openai/whisper"
	"voicenote/internal/app/audio"
	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/repository"
)

// SpeechToText turns raw audio into text.
type SpeechToText interface {
	Transcribe(ctx context.Context, data []byte, filename string) (whisper.Result, error)
}

// Enhancer cleans up a raw transcription. It never fails.
type Enhancer interface {
	Enhance(ctx context.Context, text string) chat.EnhanceResult
}

// Archiver keeps a copy of the uploaded audio.
type Archiver interface {
	Archive(ctx context.Context, t *model.Transcription, data []byte) error
}

// Timeouts bound each outbound call.
type Timeouts struct {
	SpeechToText time.Duration
	Enhancement  time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		SpeechToText: 120 * time.Second,
		Enhancement:  60 * time.Second,
	}
}

// SubmitRequest is one uploaded file.
type SubmitRequest struct {
	UserID   string
	Filename string
	Audio    []byte
	Size     int64
}

// Pipeline runs validate, persist, transcribe, enhance and finalize for one upload.
type Pipeline struct {
	stt      SpeechToText
	enhancer Enhancer
	dao      repository.TranscriptionDAO
	archiver Archiver
	metrics  *Metrics
	logger   *zap.Logger
	timeouts Timeouts
	now      func() time.Time
	newID    func(time.Time) string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithArchiver enables best-effort archiving of uploads.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

// WithMetrics records outcomes and stage latency.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTimeouts overrides DefaultTimeouts; zero fields keep the default.
func WithTimeouts(t Timeouts) Option {
	return func(p *Pipeline) {
		if t.SpeechToText > 0 {
			p.timeouts.SpeechToText = t.SpeechToText
		}
		if t.Enhancement > 0 {
			p.timeouts.Enhancement = t.Enhancement
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(p *Pipeline) { p.newID = gen }
}

// New creates a Pipeline.
func New(stt SpeechToText, enhancer Enhancer, dao repository.TranscriptionDAO, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		stt:      stt,
		enhancer: enhancer,
		dao:      dao,
		logger:   logger,
		timeouts: DefaultTimeouts(),
		now:      time.Now,
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewID returns "transcription_<unix millis>_<16 hex chars>".
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("transcription_%d_%s", now.UnixMilli(), suffix)
}

// Validate checks size and format without side effects and returns the format.
func Validate(filename string, size int64) (string, error) {
	if size > audio.MaxFileSize {
		return "", apperrors.Wrapf(apperrors.ErrFileTooLarge, apperrors.KindInvalidInput,
			"file too large, maximum size is %dMB", audio.MaxFileSize/(1024*1024))
	}
	format := audio.DetectFormat(filename)
	if !audio.IsSupported(format) {
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedFormat, apperrors.KindInvalidInput,
			"unsupported format, supported formats: %s", strings.Join(audio.SupportedFormats, ", "))
	}
	return format, nil
}

// Submit processes one upload. Rejected input creates nothing. Otherwise the
// record is inserted as processing and updated exactly once; on the failed
// branch the record is returned together with a TranscriptionFailed error.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*model.Transcription, error) {
	format, err := Validate(req.Filename, req.Size)
	if err != nil {
		p.metrics.recordOutcome(OutcomeRejected)
		return nil, err
	}

	// once accepted, a submission runs to completion even if the caller goes away
	detached := context.WithoutCancel(ctx)

	created := p.now().UTC()
	size := req.Size
	record := &model.Transcription{
		ID:        p.newID(created),
		UserID:    req.UserID,
		Filename:  req.Filename,
		Status:    model.StatusProcessing,
		CreatedAt: created,
		UpdatedAt: created,
		FileSize:  &size,
		Format:    &format,
	}
	log := p.logger.With(zap.String("transcription_id", record.ID), zap.String("user_id", req.UserID))

	start := time.Now()
	err = p.dao.CreateTranscription(detached, record)
	p.metrics.observeStage(StageInsert, start)
	if err != nil {
		log.Error("failed to insert pending transcription", zap.Error(err))
		p.metrics.recordOutcome(OutcomeError)
		return nil, asPersistence(err, "insert transcription")
	}

	p.archive(detached, record, req.Audio, log)

	result, err := p.transcribe(detached, req)
	if err != nil {
		log.Warn("speech-to-text failed", zap.Error(err))
		if ferr := p.finalize(detached, record, model.Completion{Status: model.StatusFailed}); ferr != nil {
			log.Error("failed to mark transcription failed", zap.Error(ferr))
			p.metrics.recordOutcome(OutcomeError)
			return nil, ferr
		}
		p.metrics.recordOutcome(OutcomeFailed)
		return record, apperrors.Wrap(err, apperrors.KindTranscriptionFailed, apperrors.ErrTranscriptionFailed.Error())
	}

	enhanced := p.enhance(detached, result.Text)
	if !enhanced.Enhanced && enhanced.Err != nil {
		log.Warn("enhancement failed, keeping original text", zap.Error(enhanced.Err))
		p.metrics.recordFallback()
	}

	err = p.finalize(detached, record, model.Completion{
		Status:          model.StatusCompleted,
		OriginalText:    result.Text,
		ProcessedText:   enhanced.Text,
		DurationSeconds: result.DurationSeconds,
	})
	if err != nil {
		log.Error("failed to complete transcription", zap.Error(err))
		p.metrics.recordOutcome(OutcomeError)
		return nil, err
	}

	log.Info("transcription completed", zap.Bool("enhanced", enhanced.Enhanced))
	p.metrics.recordOutcome(OutcomeCompleted)
	return record, nil
}

func (p *Pipeline) archive(ctx context.Context, record *model.Transcription, data []byte, log *zap.Logger) {
	if p.archiver == nil {
		return
	}
	start := time.Now()
	defer p.metrics.observeStage(StageArchive, start)

	if err := p.archiver.Archive(ctx, record, data); err != nil {
		log.Warn("failed to archive audio", zap.Error(err))
	}
}

func (p *Pipeline) transcribe(ctx context.Context, req SubmitRequest) (whisper.Result, error) {
	start := time.Now()
	defer p.metrics.observeStage(StageTranscribe, start)

	callCtx, cancel := context.WithTimeout(ctx, p.timeouts.SpeechToText)
	defer cancel()

	result, err := p.stt.Transcribe(callCtx, req.Audio, req.Filename)
	if err != nil {
		return whisper.Result{}, err
	}
	// a completed record must carry text
	if strings.TrimSpace(result.Text) == "" {
		return whisper.Result{}, apperrors.New(apperrors.KindTranscriptionFailed, "empty transcription")
	}
	return result, nil
}

func (p *Pipeline) enhance(ctx context.Context, text string) chat.EnhanceResult {
	start := time.Now()
	defer p.metrics.observeStage(StageEnhance, start)

	callCtx, cancel := context.WithTimeout(ctx, p.timeouts.Enhancement)
	defer cancel()

	return p.enhancer.Enhance(callCtx, text)
}

// finalize writes the terminal state and mirrors it onto record.
func (p *Pipeline) finalize(ctx context.Context, record *model.Transcription, c model.Completion) error {
	start := time.Now()
	defer p.metrics.observeStage(StageFinalize, start)

	c.UpdatedAt = p.now().UTC()
	if c.UpdatedAt.Before(record.CreatedAt) {
		c.UpdatedAt = record.CreatedAt
	}

	if err := p.dao.CompleteTranscription(ctx, record.ID, c); err != nil {
		return asPersistence(err, "finalize transcription")
	}

	record.Status = c.Status
	record.UpdatedAt = c.UpdatedAt
	switch c.Status {
	case model.StatusCompleted:
		processed := c.ProcessedText
		record.OriginalText = c.OriginalText
		record.ProcessedText = &processed
		record.DurationSeconds = c.DurationSeconds
	case model.StatusFailed:
	case model.StatusProcessing:
		panic("finalize called with processing status")
	}
	return nil
}

func asPersistence(err error, msg string) error {
	if apperrors.Is(err, apperrors.KindPersistence) {
		return err
	}
	return apperrors.Wrap(err, apperrors.KindPersistence, msg)
}
