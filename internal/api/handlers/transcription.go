package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voicenote/internal/api/dto"
	"voicenote/internal/api/middleware"
	"voicenote/internal/api/services"
	"voicenote/internal/app/audio"
	apperrors "voicenote/internal/app/errors"
)

// multipartOverhead is the slack allowed on top of MaxFileSize for form framing.
const multipartOverhead = 1 << 20

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
	}
}

// Submit handles POST /transcribe
// Transcribes and enhances the uploaded "file" field.
func (h *TranscriptionHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, audio.MaxFileSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		switch {
		case isBodyTooLarge(err):
			middleware.HandleError(c, apperrors.Wrapf(apperrors.ErrFileTooLarge, apperrors.KindInvalidInput,
				"file too large, maximum size is %dMB", audio.MaxFileSize/(1024*1024)))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			middleware.HandleError(c, apperrors.ErrMissingFile)
		default:
			// truncated bodies and read deadlines land here
			middleware.HandleError(c, apperrors.ErrUploadUnreadable.WithCause(err))
		}
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.HandleError(c, apperrors.ErrUploadUnreadable.WithCause(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.HandleError(c, apperrors.ErrUploadUnreadable.WithCause(err))
		return
	}

	response, err := h.service.Submit(c.Request.Context(), middleware.UserID(c), header.Filename, header.Size, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /transcriptions
// Lists the caller's transcriptions, newest first.
func (h *TranscriptionHandler) List(c *gin.Context) {
	var query dto.ListTranscriptionsQuery

	// Validate query parameters
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.List(c.Request.Context(), middleware.UserID(c), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /transcriptions?id=
// Deletes one of the caller's transcriptions.
func (h *TranscriptionHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))

	response, err := h.service.Delete(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
