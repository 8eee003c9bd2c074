package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/dto"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http/middleware"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// testAllProviders is the provider name that tests every provider at once.
const testAllProviders = "all"

// TranslationHandler serves text translation, detection and provider endpoints.
type TranslationHandler struct {
	engine  *app.TranslationService
	smart   *app.SmartService
	primary string
}

// NewTranslationHandler creates the handler. smart may be nil.
func NewTranslationHandler(engine *app.TranslationService, smart *app.SmartService, primary string) *TranslationHandler {
	return &TranslationHandler{engine: engine, smart: smart, primary: primary}
}

// Translate handles POST /api/v1/translate. With "save": true the result is
// also archived to the caller's history.
func (h *TranslationHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	in := req.Domain(middleware.UserID(c))

	var (
		t   *domain.Translation
		err error
	)
	if req.Save {
		t, err = h.engine.TranslateAndRecord(ctx, in)
	} else {
		t, err = h.engine.Translate(ctx, in)
	}
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranslationResponse{Meta: dto.OK(), TranslationBody: dto.NewTranslationBody(t), Saved: req.Save})
}

// SmartTranslate handles POST /api/v1/smart-translate.
func (h *TranslationHandler) SmartTranslate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	if h.smart == nil {
		dto.HandleError(c, domain.NewProviderError("smart", "translate", domain.ErrProviderUnavailable))
		return
	}

	res, err := h.smart.SmartTranslate(c.Request.Context(), req.Domain(middleware.UserID(c)))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSmartTranslationResponse(res, domain.ContentType(req.ContentType)))
}

// TranslateMulti handles POST /api/v1/translate/multi. Providers that fail
// are left out; an empty result list is still a success.
func (h *TranslationHandler) TranslateMulti(c *gin.Context) {
	var req dto.TranslateRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	results, err := h.engine.TranslateMulti(c.Request.Context(), req.Domain(middleware.UserID(c)))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMultiTranslationResponse(results))
}

// Detect handles POST /api/v1/detect.
func (h *TranslationHandler) Detect(c *gin.Context) {
	var req dto.DetectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	d, err := h.engine.DetectLanguage(c.Request.Context(), req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDetectResponse(d))
}

// Providers handles GET /api/v1/providers.
func (h *TranslationHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewProvidersResponse(h.primary, h.engine.Providers()))
}

// Stats handles GET /api/v1/providers/stats.
func (h *TranslationHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatsResponse{Meta: dto.OK(), UsageStats: h.engine.UsageStats()})
}

// TestProvider handles POST /api/v1/providers/:name/test. The name "all"
// tests every provider concurrently. Provider failures are reported in the
// body; only an unknown provider name fails the request.
func (h *TranslationHandler) TestProvider(c *gin.Context) {
	var req dto.ProviderTestRequest
	if c.Request.ContentLength != 0 {
		if err := dto.BindAndValidate(c, &req); err != nil {
			dto.HandleError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	name := strings.ToLower(c.Param("name"))

	if name == testAllProviders {
		results := h.engine.TestAllProviders(ctx, req.Text)

		resp := dto.ProviderTestResponse{Meta: dto.OK(), Results: make([]dto.ProviderTestBody, 0, len(results))}
		for _, p := range h.engine.Providers() {
			if r, ok := results[p.Name]; ok {
				resp.Results = append(resp.Results, dto.NewProviderTestBody(p.Name, r))
			}
		}

		c.JSON(http.StatusOK, resp)
		return
	}

	start := time.Now()
	t, err := h.engine.TestProvider(ctx, name, req.Text)
	if domain.IsNotFound(err) {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProviderTestResponse{
		Meta: dto.OK(),
		Results: []dto.ProviderTestBody{
			dto.NewProviderTestBody(name, app.ProviderTestResult{Translation: t, Duration: time.Since(start), Err: err}),
		},
	})
}

// Languages handles GET /api/v1/languages.
func (h *TranslationHandler) Languages(c *gin.Context) {
	langs := domain.Languages()
	c.JSON(http.StatusOK, dto.LanguagesResponse{Meta: dto.OK(), Languages: langs, Count: len(langs)})
}
