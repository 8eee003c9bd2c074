package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// MediaHandler serves OCR and speech endpoints.
type MediaHandler struct {
	speech *app.SpeechService
	ocr    *app.OCRService
}

// NewMediaHandler creates the handler. Either service may be nil.
func NewMediaHandler(speech *app.SpeechService, ocr *app.OCRService) *MediaHandler {
	return &MediaHandler{speech: speech, ocr: ocr}
}

// OCR handles POST /api/v1/ocr with a multipart "image" file and an
// optional "targetLang" field.
func (h *MediaHandler) OCR(c *gin.Context) {
	if h.ocr == nil {
		dto.HandleError(c, domain.NewProviderError("ocr", "extract", domain.ErrProviderUnavailable))
		return
	}

	up, err := readUpload(c, dto.FieldImage)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	var form dto.OCRForm
	if err := dto.BindFormAndValidate(c, &form); err != nil {
		dto.HandleError(c, err)
		return
	}

	res, err := h.ocr.ExtractAndTranslate(c.Request.Context(), domain.Image(up), form.TargetLang)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOCRResponse(res))
}

// SpeechToText handles POST /api/v1/speech-to-text with a multipart "audio"
// file. Setting "targetLang" also translates the transcript.
func (h *MediaHandler) SpeechToText(c *gin.Context) {
	if h.speech == nil {
		dto.HandleError(c, domain.NewProviderError("speech", "transcribe", domain.ErrProviderUnavailable))
		return
	}

	up, err := readUpload(c, dto.FieldAudio)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	var form dto.SpeechForm
	if err := dto.BindFormAndValidate(c, &form); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	audio := domain.Audio(up)

	if form.TargetLang == "" {
		tr, err := h.speech.Transcribe(ctx, audio, form.Language)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.NewSpeechToTextResponse(tr))
		return
	}

	v, err := h.speech.VoiceTranslate(ctx, audio, form.Language, form.TargetLang, form.Speak)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVoiceTranslationResponse(v))
}

// TextToSpeech handles POST /api/v1/text-to-speech.
func (h *MediaHandler) TextToSpeech(c *gin.Context) {
	var req dto.TextToSpeechRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	if !h.speech.CanSpeak() {
		dto.HandleError(c, domain.NewProviderError("speech", "synthesize", domain.ErrProviderUnavailable))
		return
	}

	audio, err := h.speech.Synthesize(c.Request.Context(), domain.SpeechRequest{
		Text:     req.Text,
		Language: req.Language,
		Voice:    req.Voice,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TextToSpeechResponse{Meta: dto.OK(), AudioBody: dto.NewAudioBody(audio)})
}

// Audio handles GET /api/v1/audio/:id and streams stored speech.
func (h *MediaHandler) Audio(c *gin.Context) {
	var uri dto.AudioURI
	if err := c.ShouldBindUri(&uri); err != nil {
		dto.HandleError(c, fmt.Errorf("%w: %w", dto.ErrBinding, err))
		return
	}
	if err := dto.Validate(&uri); err != nil {
		dto.HandleError(c, err)
		return
	}

	if h.speech == nil {
		dto.HandleError(c, domain.NewNotFoundError("audio", uri.ID))
		return
	}

	obj, err := h.speech.Audio(c.Request.Context(), uri.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "private, max-age=3600")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

// upload is a file read from a multipart form. Its fields line up with
// domain.Audio and domain.Image so it converts to either.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

var errUploadTooLarge = errors.New("file exceeds 10MB limit")

func readUpload(c *gin.Context, field string) (upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return upload{}, err
	}
	if fh.Size > domain.MaxUploadBytes {
		return upload{}, errUploadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return upload{}, fmt.Errorf("opening %s upload: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, domain.MaxUploadBytes+1))
	if err != nil {
		return upload{}, fmt.Errorf("reading %s upload: %w", field, err)
	}
	if len(data) > domain.MaxUploadBytes {
		return upload{}, errUploadTooLarge
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

func handleUploadError(c *gin.Context, err error) {
	var tooBig *http.MaxBytesError

	switch {
	case errors.Is(err, http.ErrMissingFile):
		dto.RespondWithCode(c, dto.ErrorCodeValidation, "no file provided")
	case errors.Is(err, errUploadTooLarge), errors.As(err, &tooBig):
		dto.RespondWithCode(c, dto.ErrorCodeTooLarge, errUploadTooLarge.Error())
	case errors.Is(err, http.ErrNotMultipart):
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "expected a multipart/form-data body")
	default:
		dto.HandleError(c, fmt.Errorf("%w: %w", dto.ErrBinding, err))
	}
}
